package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"loclens/internal/lang"
)

func testCatalog(t *testing.T) *lang.Catalog {
	t.Helper()
	catalog, err := lang.DefaultCatalog()
	if err != nil {
		t.Fatal(err)
	}
	return catalog
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func scanPaths(t *testing.T, a *Analyzer, paths []string) *ScanResult {
	t.Helper()
	ch := make(chan string)
	go func() {
		defer close(ch)
		for _, p := range paths {
			ch <- p
		}
	}()
	result, err := a.Scan(context.Background(), ch)
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func treePaths(t *testing.T, root string) []string {
	t.Helper()
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return paths
}

func TestScanMixedTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":     "package main\n\n// entry point\nfunc main() {}\n",
		"lib/util.py": "#!/usr/bin/env python3\n# helper\nx = 1\n",
		"README.md":   "# Title\n\nbody\n",
		"data.bin":    "\x00\x01\x02\x03binary",
		"notes.xyz":   "unrecognized extension\n",
		"empty.go":    "",
	})

	a := New(testCatalog(t), Options{Workers: 2})
	result := scanPaths(t, a, treePaths(t, root))

	if result.Unrecognized != 1 {
		t.Fatalf("unrecognized = %d, want 1", result.Unrecognized)
	}
	if result.SkipCount() != 1 || result.Skipped[0].Reason != ReasonBinary {
		t.Fatalf("skipped = %+v, want one binary skip", result.Skipped)
	}

	goStats := result.Languages["Go"]
	if goStats == nil || goStats.Files != 2 {
		t.Fatalf("Go stats = %+v, want 2 files", goStats)
	}
	if goStats.Code != 2 || goStats.Comment != 1 || goStats.Blank != 1 {
		t.Fatalf("Go split = %+v", goStats)
	}

	pyStats := result.Languages["Python"]
	if pyStats == nil || pyStats.Files != 1 || pyStats.Shebang != 1 {
		t.Fatalf("Python stats = %+v", pyStats)
	}

	if result.Lines != result.Code+result.Comment+result.Blank+result.Shebang {
		t.Fatalf("class totals do not sum to lines: %+v", result)
	}
	var files, lines int64
	for _, stats := range result.Languages {
		files += stats.Files
		lines += stats.Lines
	}
	if files != result.Files || lines != result.Lines {
		t.Fatalf("language sums (%d files, %d lines) disagree with totals (%d, %d)",
			files, lines, result.Files, result.Lines)
	}
}

func TestScanWorkerCountInvariance(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 26; i++ {
		files[filepath.Join("pkg", string(rune('a'+i))+".go")] = "package pkg\n\nvar x = 1 // v\n"
	}
	files["script.sh"] = "#!/bin/sh\necho hi\n"
	files["doc.md"] = "# hi\n"
	root := writeTree(t, files)
	paths := treePaths(t, root)

	catalog := testCatalog(t)
	baseline := scanPaths(t, New(catalog, Options{Workers: 1}), paths)
	for _, workers := range []int{2, 4, 8} {
		got := scanPaths(t, New(catalog, Options{Workers: workers}), paths)
		if got.Files != baseline.Files || got.Lines != baseline.Lines ||
			got.Code != baseline.Code || got.Comment != baseline.Comment ||
			got.Blank != baseline.Blank || got.Shebang != baseline.Shebang {
			t.Fatalf("workers=%d totals %+v differ from baseline %+v", workers, got, baseline)
		}
		for name, stats := range baseline.Languages {
			other := got.Languages[name]
			if other == nil || other.Lines != stats.Lines || other.Files != stats.Files {
				t.Fatalf("workers=%d %s stats differ: %+v vs %+v", workers, name, other, stats)
			}
		}
	}
}

func TestScanIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go": "package a\n",
		"b.rs": "// doc\nfn main() {}\n",
	})
	paths := treePaths(t, root)
	a := New(testCatalog(t), Options{Workers: 2})

	first := scanPaths(t, a, paths)
	second := scanPaths(t, a, paths)
	if first.Files != second.Files || first.Lines != second.Lines || first.Code != second.Code {
		t.Fatalf("repeated scans disagree: %+v vs %+v", first, second)
	}
}

func TestScanUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}
	root := writeTree(t, map[string]string{"locked.go": "package locked\n"})
	path := filepath.Join(root, "locked.go")
	if err := os.Chmod(path, 0o000); err != nil {
		t.Fatal(err)
	}

	result := scanPaths(t, New(testCatalog(t), Options{}), []string{path})
	if result.SkipCount() != 1 || result.Skipped[0].Reason != ReasonUnreadable {
		t.Fatalf("skipped = %+v, want one unreadable skip", result.Skipped)
	}
	if result.Files != 0 {
		t.Fatalf("files = %d, want 0", result.Files)
	}
}

func TestScanLanguageFilters(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go": "package a\n",
		"b.py": "x = 1\n",
		"c.rb": "puts 1\n",
	})
	paths := treePaths(t, root)
	catalog := testCatalog(t)

	t.Run("include", func(t *testing.T) {
		result := scanPaths(t, New(catalog, Options{IncludeLanguages: []string{"go"}}), paths)
		if len(result.Languages) != 1 || result.Languages["Go"] == nil {
			t.Fatalf("languages = %v, want only Go", result.Languages)
		}
	})
	t.Run("exclude", func(t *testing.T) {
		result := scanPaths(t, New(catalog, Options{ExcludeLanguages: []string{"Python"}}), paths)
		if result.Languages["Python"] != nil {
			t.Fatal("Python should be excluded")
		}
		if result.Languages["Go"] == nil || result.Languages["Ruby"] == nil {
			t.Fatalf("languages = %v, want Go and Ruby", result.Languages)
		}
	})
}

func TestScanDetailRetainsFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})
	result := scanPaths(t, New(testCatalog(t), Options{Detail: true}), treePaths(t, root))

	goStats := result.Languages["Go"]
	if goStats == nil || len(goStats.FileList) != 2 {
		t.Fatalf("detail = %+v, want 2 per-file entries", goStats)
	}
	for _, fs := range goStats.FileList {
		if fs.Path == "" || fs.Lines == 0 {
			t.Fatalf("incomplete per-file entry: %+v", fs)
		}
	}
}

func TestScanEmptyFileCounts(t *testing.T) {
	root := writeTree(t, map[string]string{"empty.rs": ""})
	result := scanPaths(t, New(testCatalog(t), Options{}), treePaths(t, root))

	rust := result.Languages["Rust"]
	if rust == nil || rust.Files != 1 || rust.Lines != 0 {
		t.Fatalf("rust stats = %+v, want one file with zero lines", rust)
	}
}
