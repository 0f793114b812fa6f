package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loclens.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if len(cfg.Paths) != 1 || cfg.Paths[0] != "." {
		t.Fatalf("paths = %v", cfg.Paths)
	}
	if cfg.Output.Format != "human" {
		t.Fatalf("format = %q", cfg.Output.Format)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.Watch.Debounce)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
paths = ["src", "docs"]

[exclude]
dirs = ["build"]
files = ["*.gen.go"]

[scan]
workers = 4
hidden = true
by_file = true
fail_on_error = true
include_languages = ["Go", "Python"]

[output]
format = "json"
path = "report.json"

[languages.Go]
patterns = ["*.gox"]

[languages.Markdown]
enabled = false

[history]
enabled = true
path = "snapshots.db"
keep = 30
label = "nightly"

[watch]
debounce = "750ms"

[metrics]
enabled = true
listen = "0.0.0.0:9751"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Paths) != 2 || cfg.Paths[0] != "src" {
		t.Fatalf("paths = %v", cfg.Paths)
	}
	if cfg.Scan.Workers != 4 || !cfg.Scan.ByFile || !cfg.Scan.FailOnError {
		t.Fatalf("scan = %+v", cfg.Scan)
	}
	if cfg.Output.Format != "json" || cfg.Output.Path != "report.json" {
		t.Fatalf("output = %+v", cfg.Output)
	}
	if cfg.Watch.Debounce != 750*time.Millisecond {
		t.Fatalf("debounce = %v", cfg.Watch.Debounce)
	}
	if cfg.History.Keep != 30 || cfg.History.Label != "nightly" {
		t.Fatalf("history = %+v", cfg.History)
	}

	overrides := cfg.Overrides()
	if got := overrides["Go"].ExtraPatterns; len(got) != 1 || got[0] != "*.gox" {
		t.Fatalf("Go override = %+v", overrides["Go"])
	}
	if !overrides["Markdown"].Disabled {
		t.Fatal("Markdown override should be disabled")
	}
}

func TestLoadDefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, `paths = ["."]`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Output.Format != "human" {
		t.Fatalf("format = %q", cfg.Output.Format)
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Fatal("expected default exclude dirs")
	}
	if cfg.Metrics.Listen == "" {
		t.Fatal("expected default metrics listen address")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad format", "[output]\nformat = \"yaml\"\n"},
		{"negative workers", "[scan]\nworkers = -1\n"},
		{"include and exclude", "[scan]\ninclude_languages = [\"Go\"]\nexclude_languages = [\"C\"]\n"},
		{"empty language pattern", "[languages.Go]\npatterns = [\" \"]\n"},
		{"bad metrics listen", "[metrics]\nenabled = true\nlisten = \"9751\"\n"},
		{"negative keep", "[history]\nkeep = -2\n"},
		{"malformed toml", "paths = [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("want an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("want an error for a missing file")
	}
}
