package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"loclens/internal/core/config"
)

var (
	configPath    = flag.String("config", "./loclens.toml", "Path to config file")
	format        = flag.String("format", "", "Output format (human, json, json-compact, csv, tsv, markdown, html)")
	outPath       = flag.String("out", "", "Write the report to a file instead of stdout")
	byFile        = flag.Bool("by-file", false, "Include per-file statistics")
	watchMode     = flag.Bool("watch", false, "Rescan on file changes until interrupted")
	workers       = flag.Int("workers", 0, "Worker count (0 = number of CPUs)")
	failOnError   = flag.Bool("fail-on-error", false, "Exit non-zero when files were skipped")
	listLanguages = flag.Bool("list-languages", false, "Print known languages and exit")
	trends        = flag.Int("trends", 0, "Show a trend over the last N snapshots and exit (requires history)")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	version       = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("loclens v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No config file is fine unless one was named explicitly.
		if *configPath == "./loclens.toml" && errors.Is(err, fs.ErrNotExist) {
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	applyFlags(cfg)

	if flag.NArg() > 0 {
		cfg.Paths = flag.Args()
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if *listLanguages {
		app.ListLanguages()
		return
	}

	if *trends > 0 {
		if err := app.WriteTrends(*trends); err != nil {
			slog.Error("failed to build trend report", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchMode {
		if err := app.WatchLoop(ctx); err != nil {
			slog.Error("watch failed", "error", err)
			os.Exit(1)
		}
		return
	}

	result, err := app.RunScan(ctx)
	if err != nil {
		slog.Error("scan failed", "error", err)
		os.Exit(1)
	}
	if err := app.WriteReport(result); err != nil {
		slog.Error("failed to write report", "error", err)
		os.Exit(1)
	}

	if cfg.Scan.FailOnError && result.SkipCount() > 0 {
		slog.Warn("files were skipped", "count", result.SkipCount())
		os.Exit(2)
	}
}

// applyFlags lets command-line flags win over the config file.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "format":
			cfg.Output.Format = *format
		case "out":
			cfg.Output.Path = *outPath
		case "by-file":
			cfg.Scan.ByFile = *byFile
		case "workers":
			cfg.Scan.Workers = *workers
		case "fail-on-error":
			cfg.Scan.FailOnError = *failOnError
		}
	})
}
