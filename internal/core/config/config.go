// Package config loads the TOML configuration file and fills in
// defaults so the rest of the program never sees a zero value it has
// to interpret.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"loclens/internal/lang"
	"loclens/internal/report"
)

type Config struct {
	Paths     []string            `toml:"paths"`
	Exclude   Exclude             `toml:"exclude"`
	Scan      Scan                `toml:"scan"`
	Output    Output              `toml:"output"`
	Languages map[string]Language `toml:"languages"`
	History   History             `toml:"history"`
	Watch     Watch               `toml:"watch"`
	Metrics   Metrics             `toml:"metrics"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Scan struct {
	Workers          int      `toml:"workers"`
	Hidden           bool     `toml:"hidden"`
	FollowSymlinks   bool     `toml:"follow_symlinks"`
	ByFile           bool     `toml:"by_file"`
	FailOnError      bool     `toml:"fail_on_error"`
	IncludeLanguages []string `toml:"include_languages"`
	ExcludeLanguages []string `toml:"exclude_languages"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

// Language adjusts one built-in language definition.
type Language struct {
	Enabled  *bool    `toml:"enabled"`
	Patterns []string `toml:"patterns"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
	// Keep bounds retained snapshots per label; 0 keeps everything.
	Keep int `toml:"keep"`
	// Label distinguishes snapshot series sharing one database.
	Label string `toml:"label"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Metrics struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateOutput(&cfg); err != nil {
		return nil, err
	}
	if err := validateScan(&cfg); err != nil {
		return nil, err
	}
	if err := validateLanguages(&cfg); err != nil {
		return nil, err
	}
	if err := validateMetrics(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "vendor", "target"}
	}
	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = report.FormatHuman
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "loclens.db"
	}
	if strings.TrimSpace(cfg.History.Label) == "" {
		cfg.History.Label = "default"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if strings.TrimSpace(cfg.Metrics.Listen) == "" {
		cfg.Metrics.Listen = "127.0.0.1:9750"
	}
}

func validateOutput(cfg *Config) error {
	for _, f := range report.Formats {
		if cfg.Output.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q; supported: %s",
		cfg.Output.Format, strings.Join(report.Formats, ", "))
}

func validateScan(cfg *Config) error {
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	if len(cfg.Scan.IncludeLanguages) > 0 && len(cfg.Scan.ExcludeLanguages) > 0 {
		return fmt.Errorf("scan.include_languages and scan.exclude_languages are mutually exclusive")
	}
	if cfg.History.Keep < 0 {
		return fmt.Errorf("history.keep must be >= 0, got %d", cfg.History.Keep)
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	for name, language := range cfg.Languages {
		for _, p := range language.Patterns {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("language %q has an empty pattern", name)
			}
		}
	}
	return nil
}

func validateMetrics(cfg *Config) error {
	if !cfg.Metrics.Enabled {
		return nil
	}
	if !strings.Contains(cfg.Metrics.Listen, ":") {
		return fmt.Errorf("metrics.listen must be host:port, got %q", cfg.Metrics.Listen)
	}
	return nil
}

// Overrides converts the [languages] table into catalog overrides.
func (c *Config) Overrides() map[string]lang.Override {
	if len(c.Languages) == 0 {
		return nil
	}
	overrides := make(map[string]lang.Override, len(c.Languages))
	for name, language := range c.Languages {
		ov := lang.Override{ExtraPatterns: language.Patterns}
		if language.Enabled != nil && !*language.Enabled {
			ov.Disabled = true
		}
		overrides[name] = ov
	}
	return overrides
}
