package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	var fired atomic.Int64

	w, err := NewWatcher(100*time.Millisecond, nil, false, func() {
		fired.Add(1)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch([]string{root}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "f"+string(rune('0'+i))+".go")
		if err := os.WriteFile(name, []byte("package x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("change callback never fired")
		case <-time.After(20 * time.Millisecond):
		}
	}
	// Let any stragglers land before asserting the burst coalesced.
	time.Sleep(300 * time.Millisecond)
	if n := fired.Load(); n > 2 {
		t.Fatalf("callback fired %d times for one burst", n)
	}
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	var fired atomic.Int64

	w, err := NewWatcher(50*time.Millisecond, nil, false, func() {
		fired.Add(1)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch([]string{root}); err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(root, "pkg")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register the new directory.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "a.go"), []byte("package pkg\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for fired.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no callback for a file in a new directory")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestWatcherIgnoresExcludedDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "vendor"), 0o755); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int64
	w, err := NewWatcher(50*time.Millisecond, []string{"vendor"}, false, func() {
		fired.Add(1)
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch([]string{root}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "vendor", "dep.go"), []byte("package dep\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatal("excluded directory triggered a rescan")
	}
}

func TestWatcherInvalidPattern(t *testing.T) {
	if _, err := NewWatcher(time.Second, []string{"["}, false, func() {}); err == nil {
		t.Fatal("want a compile error for a malformed pattern")
	}
}
