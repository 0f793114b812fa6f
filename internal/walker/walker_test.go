package walker

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func buildTree(t *testing.T, files []string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func collect(t *testing.T, w *Walker, roots []string) []string {
	t.Helper()
	out := make(chan string)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Walk(context.Background(), roots, out) }()

	var got []string
	for path := range out {
		got = append(got, path)
	}
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	return got
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

func TestWalkExcludesAndHidden(t *testing.T) {
	root := buildTree(t, []string{
		"main.go",
		"sub/lib.go",
		"vendor/dep.go",
		"build/out.min.js",
		".git/config",
		".hidden.go",
		"sub/.cache/blob",
	})

	w, err := New(Options{
		ExcludeDirs:  []string{"./vendor"},
		ExcludeFiles: []string{"*.min.js"},
	})
	if err != nil {
		t.Fatal(err)
	}

	got := relAll(t, root, collect(t, w, []string{root}))
	want := []string{"main.go", "sub/lib.go"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWalkHiddenIncluded(t *testing.T) {
	root := buildTree(t, []string{"a.go", ".env/conf.toml", ".secret.go"})
	w, err := New(Options{Hidden: true})
	if err != nil {
		t.Fatal(err)
	}
	got := collect(t, w, []string{root})
	if len(got) != 3 {
		t.Fatalf("got %d paths %v, want 3", len(got), got)
	}
}

func TestWalkFileRoot(t *testing.T) {
	root := buildTree(t, []string{"solo.go"})
	w, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "solo.go")
	got := collect(t, w, []string{path})
	if len(got) != 1 || got[0] != path {
		t.Fatalf("got %v, want just %s", got, path)
	}
}

func TestWalkSymlinks(t *testing.T) {
	root := buildTree(t, []string{"real/a.go"})
	link := filepath.Join(root, "alias")
	if err := os.Symlink(filepath.Join(root, "real"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	t.Run("ignored by default", func(t *testing.T) {
		w, err := New(Options{})
		if err != nil {
			t.Fatal(err)
		}
		if got := collect(t, w, []string{root}); len(got) != 1 {
			t.Fatalf("got %v, want only the real file", got)
		}
	})
	t.Run("followed when enabled", func(t *testing.T) {
		w, err := New(Options{FollowSymlinks: true})
		if err != nil {
			t.Fatal(err)
		}
		if got := collect(t, w, []string{root}); len(got) != 2 {
			t.Fatalf("got %v, want the file via both paths", got)
		}
	})
}

func TestWalkMissingRoot(t *testing.T) {
	w, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	out := make(chan string)
	errCh := make(chan error, 1)
	go func() { errCh <- w.Walk(context.Background(), []string{filepath.Join(t.TempDir(), "gone")}, out) }()
	for range out {
	}
	if err := <-errCh; err == nil {
		t.Fatal("want an error for a missing root")
	}
}

func TestInvalidPattern(t *testing.T) {
	if _, err := New(Options{ExcludeDirs: []string{"["}}); err == nil {
		t.Fatal("want a compile error for a malformed pattern")
	}
}
