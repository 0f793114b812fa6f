package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"loclens/internal/core/config"
)

func testApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":        "package main\n\nfunc main() {}\n",
		"vendor/dep.go":  "package dep\n",
		"scripts/run.sh": "#!/bin/sh\necho hi\n",
	}
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

func TestRunScanRespectsExcludes(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = []string{writeProject(t)}

	app := testApp(t, cfg)
	result, err := app.RunScan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	// vendor/ is excluded by default.
	if result.Files != 2 {
		t.Fatalf("files = %d, want 2", result.Files)
	}
	if result.Languages["Go"] == nil {
		t.Fatal("expected Go stats")
	}
}

func TestWriteReportToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = []string{writeProject(t)}
	cfg.Output.Format = "json"
	cfg.Output.Path = filepath.Join(t.TempDir(), "report.json")

	app := testApp(t, cfg)
	result, err := app.RunScan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if err := app.WriteReport(result); err != nil {
		t.Fatalf("write report: %v", err)
	}

	data, err := os.ReadFile(cfg.Output.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) {
		t.Fatal("report file is not valid json")
	}
}

func TestTrendsAcrossScans(t *testing.T) {
	root := writeProject(t)
	cfg := config.Default()
	cfg.Paths = []string{root}
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	app := testApp(t, cfg)
	if _, err := app.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	extra := filepath.Join(root, "extra.go")
	if err := os.WriteFile(extra, []byte("package main\n\nvar x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := app.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	trend, err := app.Trends(5)
	if err != nil {
		t.Fatalf("trends: %v", err)
	}
	if trend.ScanCount != 2 {
		t.Fatalf("scan count = %d, want 2", trend.ScanCount)
	}
	last := trend.Points[len(trend.Points)-1]
	if last.DeltaFiles != 1 {
		t.Fatalf("delta files = %d, want 1", last.DeltaFiles)
	}
	if last.DeltaLines <= 0 {
		t.Fatalf("delta lines = %d, want > 0", last.DeltaLines)
	}
}

func TestTrendsRequiresHistory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = []string{writeProject(t)}

	app := testApp(t, cfg)
	if _, err := app.Trends(5); err == nil {
		t.Fatal("expected an error with history disabled")
	}
}

func TestRunScanSavesHistory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths = []string{writeProject(t)}
	cfg.History.Enabled = true
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")

	app := testApp(t, cfg)
	if _, err := app.RunScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	snapshots, err := app.store.RecentSnapshots(cfg.History.Label, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snapshots))
	}
	if snapshots[0].Files != 2 {
		t.Fatalf("snapshot files = %d", snapshots[0].Files)
	}
}
