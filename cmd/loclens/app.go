package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"loclens/internal/analyzer"
	"loclens/internal/core/config"
	"loclens/internal/history"
	"loclens/internal/lang"
	"loclens/internal/report"
	"loclens/internal/shared/observability"
	"loclens/internal/walker"
	"loclens/internal/watch"
)

// App wires the catalog, walker, analyzer, and output sinks from one
// resolved configuration.
type App struct {
	cfg     *config.Config
	catalog *lang.Catalog
	store   *history.Store
	obs     *observability.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	catalog, err := lang.DefaultCatalogWith(cfg.Overrides())
	if err != nil {
		return nil, fmt.Errorf("build language catalog: %w", err)
	}

	app := &App{cfg: cfg, catalog: catalog}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		app.store = store
	}
	if cfg.Metrics.Enabled {
		app.obs = observability.NewServer(cfg.Metrics.Listen)
		if err := app.obs.Start(context.Background()); err != nil {
			return nil, fmt.Errorf("start metrics server: %w", err)
		}
	}
	return app, nil
}

func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
	if a.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.obs.Stop(ctx); err != nil {
			slog.Warn("failed to stop metrics server", "error", err)
		}
	}
}

// RunScan walks the configured roots, analyzes everything the walker
// yields, and returns the merged result.
func (a *App) RunScan(ctx context.Context) (*analyzer.ScanResult, error) {
	w, err := walker.New(walker.Options{
		ExcludeDirs:    a.cfg.Exclude.Dirs,
		ExcludeFiles:   a.cfg.Exclude.Files,
		Hidden:         a.cfg.Scan.Hidden,
		FollowSymlinks: a.cfg.Scan.FollowSymlinks,
	})
	if err != nil {
		return nil, err
	}

	an := analyzer.New(a.catalog, analyzer.Options{
		Workers:          a.cfg.Scan.Workers,
		Detail:           a.cfg.Scan.ByFile,
		IncludeLanguages: a.cfg.Scan.IncludeLanguages,
		ExcludeLanguages: a.cfg.Scan.ExcludeLanguages,
	})

	paths := make(chan string, 256)
	walkErr := make(chan error, 1)
	go func() { walkErr <- w.Walk(ctx, a.cfg.Paths, paths) }()

	result, err := an.Scan(ctx, paths)
	if err != nil {
		return nil, err
	}
	if err := <-walkErr; err != nil {
		return nil, err
	}

	if a.store != nil {
		snapshot := history.FromScanResult(result)
		if _, err := a.store.SaveSnapshot(a.cfg.History.Label, snapshot, a.cfg.History.Keep); err != nil {
			slog.Warn("failed to save history snapshot", "error", err)
		}
	}
	return result, nil
}

// WriteReport renders the result in the configured format, to stdout
// or to the configured output path.
func (a *App) WriteReport(result *analyzer.ScanResult) error {
	out, err := report.Render(a.cfg.Output.Format, result, report.Options{Detail: a.cfg.Scan.ByFile})
	if err != nil {
		return err
	}
	if a.cfg.Output.Path == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	return os.WriteFile(a.cfg.Output.Path, []byte(out), 0o644)
}

// WatchLoop scans once, then rescans after every debounced change
// burst until the context is cancelled.
func (a *App) WatchLoop(ctx context.Context) error {
	rescan := make(chan struct{}, 1)
	w, err := watch.NewWatcher(a.cfg.Watch.Debounce, a.cfg.Exclude.Dirs, a.cfg.Scan.Hidden, func() {
		select {
		case rescan <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(a.cfg.Paths); err != nil {
		return err
	}

	if err := a.scanAndReport(ctx); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", strings.Join(a.cfg.Paths, ", "))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-rescan:
			if err := a.scanAndReport(ctx); err != nil {
				slog.Error("rescan failed", "error", err)
			}
		}
	}
}

// Trends loads the most recent snapshots for the configured label and
// builds a trend report over them.
func (a *App) Trends(limit int) (history.TrendReport, error) {
	if a.store == nil {
		return history.TrendReport{}, fmt.Errorf("history is disabled; enable [history] in the config")
	}
	snapshots, err := a.store.RecentSnapshots(a.cfg.History.Label, limit)
	if err != nil {
		return history.TrendReport{}, err
	}
	return history.BuildTrendReport(a.cfg.History.Label, snapshots)
}

// WriteTrends renders the trend report to stdout: JSON when a json
// format is configured, otherwise a fixed-width table.
func (a *App) WriteTrends(limit int) error {
	trend, err := a.Trends(limit)
	if err != nil {
		return err
	}

	switch a.cfg.Output.Format {
	case report.FormatJSON, report.FormatJSONCompact:
		var data []byte
		if a.cfg.Output.Format == report.FormatJSON {
			data, err = json.MarshalIndent(trend, "", "  ")
		} else {
			data, err = json.Marshal(trend)
		}
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Trend for %q: %d scans, %s to %s\n\n",
		trend.Label, trend.ScanCount,
		trend.Since.Format(time.RFC3339), trend.Until.Format(time.RFC3339))
	fmt.Printf("%-25s %10s %10s %10s %10s %8s\n",
		"Timestamp", "Files", "Lines", "Code", "Delta", "Growth%")
	for _, p := range trend.Points {
		fmt.Printf("%-25s %10d %10d %10d %+10d %7.2f%%\n",
			p.Timestamp.Format(time.RFC3339), p.Files, p.Lines, p.Code,
			p.DeltaCode, p.CodeGrowthPct)
	}
	return nil
}

func (a *App) scanAndReport(ctx context.Context) error {
	result, err := a.RunScan(ctx)
	if err != nil {
		return err
	}
	return a.WriteReport(result)
}

// ListLanguages prints every known language with its patterns.
func (a *App) ListLanguages() {
	for _, def := range a.catalog.Definitions() {
		fmt.Printf("%-16s %s\n", def.Name, strings.Join(def.Patterns, " "))
	}
}
