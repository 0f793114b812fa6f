// Package analyzer turns candidate file paths into per-language line
// statistics: size-aware I/O, encoding detection, line classification,
// and order-independent aggregation across a bounded worker pool.
package analyzer

import (
	"bytes"
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"loclens/internal/core/errors"
	"loclens/internal/lang"
	"loclens/internal/shared/observability"
	"loclens/internal/shared/util"
)

var tracer = otel.Tracer("loclens/analyzer")

// Options controls a scan.
type Options struct {
	// Workers bounds the pool; 0 means runtime.NumCPU.
	Workers int
	// Detail retains per-file statistics in each LanguageStats.
	Detail bool
	// IncludeLanguages, when non-empty, restricts the scan to the named
	// languages. ExcludeLanguages removes languages and is ignored when
	// IncludeLanguages is set. Both match names case-insensitively.
	IncludeLanguages []string
	ExcludeLanguages []string
}

// Analyzer runs the per-file pipeline against an immutable catalog.
type Analyzer struct {
	catalog *lang.Catalog
	opts    Options
	include map[string]bool
	exclude map[string]bool
	warner  *util.SkipWarner
}

func New(catalog *lang.Catalog, opts Options) *Analyzer {
	a := &Analyzer{
		catalog: catalog,
		opts:    opts,
		warner:  util.NewSkipWarner(5, 10),
	}
	if len(opts.IncludeLanguages) > 0 {
		a.include = lowerSet(opts.IncludeLanguages)
	} else if len(opts.ExcludeLanguages) > 0 {
		a.exclude = lowerSet(opts.ExcludeLanguages)
	}
	return a
}

func lowerSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[strings.ToLower(name)] = true
	}
	return set
}

func (a *Analyzer) allowed(def *lang.Definition) bool {
	name := strings.ToLower(def.Name)
	if a.include != nil {
		return a.include[name]
	}
	if a.exclude != nil {
		return !a.exclude[name]
	}
	return true
}

// Scan drains paths with a bounded worker pool. Each worker owns a
// private accumulator and folds it into the shared result exactly once
// on completion, so no shared mutable state is touched during per-file
// work. Per-file failures are recorded and never cancel in-flight work;
// totals are identical regardless of worker count or processing order.
func (a *Analyzer) Scan(ctx context.Context, paths <-chan string) (*ScanResult, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "scan")
	defer span.End()

	result := &ScanResult{Languages: make(map[string]*LanguageStats)}
	merge := make(chan *Accumulator)

	workers := a.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			acc := NewAccumulator(a.opts.Detail)
			defer func() { merge <- acc }()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case path, ok := <-paths:
					if !ok {
						return nil
					}
					a.processFile(gctx, path, acc)
				}
			}
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	for i := 0; i < workers; i++ {
		result.Merge(<-merge)
	}
	if err := <-done; err != nil {
		return nil, err
	}

	a.warner.Flush()
	result.Elapsed = time.Since(start)
	observability.ScanDuration.Observe(result.Elapsed.Seconds())
	span.SetAttributes(
		attribute.Int64("files", result.Files),
		attribute.Int64("lines", result.Lines),
		attribute.Int64("skipped", result.SkipCount()),
	)
	return result, nil
}

// processFile runs the full pipeline for one path. Every failure is
// file-scoped: recorded on the accumulator, never propagated.
func (a *Analyzer) processFile(ctx context.Context, path string, acc *Accumulator) {
	_, span := tracer.Start(ctx, "file", trace.WithAttributes(attribute.String("path", path)))
	defer span.End()
	began := time.Now()

	info, err := os.Stat(path)
	if err != nil {
		a.skip(acc, path, ReasonUnreadable, err)
		return
	}
	size := info.Size()

	if size == 0 {
		// Zero-length files still count as a file of their language.
		def, ok := a.catalog.Resolve(path, "")
		switch {
		case ok && a.allowed(def):
			acc.AddFile(def, FileStats{Path: path})
			observability.FilesScanned.WithLabelValues(def.Name).Inc()
		case !ok:
			acc.AddUnrecognized()
			observability.FilesUnrecognized.Inc()
		}
		return
	}

	src, err := openSource(path, size)
	if err != nil {
		reason := ReasonUnreadable
		if errors.IsCode(err, errors.CodeUnsupportedSize) {
			reason = ReasonUnsupportedSize
		}
		a.skip(acc, path, reason, err)
		return
	}
	defer src.Close()

	sample := src.sample()
	enc := sniffEncoding(sample)
	if enc == EncBinary {
		a.skip(acc, path, ReasonBinary, errors.New(errors.CodeBinaryFile, "binary content"))
		return
	}

	decodedSample, err := decodeContent(sample, enc)
	if err != nil {
		a.skip(acc, path, ReasonDecode, err)
		return
	}
	def, ok := a.catalog.Resolve(path, decodedSample)
	if !ok {
		acc.AddUnrecognized()
		observability.FilesUnrecognized.Inc()
		return
	}
	if !a.allowed(def) {
		return
	}

	var fs FileStats
	if enc == EncUTF8 {
		fs = countLinesBytes(bytes.TrimPrefix(src.Bytes(), bomUTF8), def)
	} else {
		text, err := decodeContent(src.Bytes(), enc)
		if err != nil {
			a.skip(acc, path, ReasonDecode, errors.AddContext(err, errors.CtxLanguage, def.Name))
			return
		}
		fs = countLines(text, def)
	}
	fs.Path = path
	fs.Bytes = size
	acc.AddFile(def, fs)

	observability.FilesScanned.WithLabelValues(def.Name).Inc()
	observability.BytesProcessed.Add(float64(size))
	observability.FileDuration.WithLabelValues(def.Name).Observe(time.Since(began).Seconds())
}

func (a *Analyzer) skip(acc *Accumulator, path, reason string, err error) {
	err = errors.AddContext(err, errors.CtxPath, path)
	acc.AddSkipped(path, reason)
	observability.FilesSkipped.WithLabelValues(reason).Inc()
	a.warner.Warn("skipping file", "path", path, "reason", reason, "error", err)
}

// countLines classifies decoded text line by line, threading the
// block-comment state between calls.
func countLines(text string, def *lang.Definition) FileStats {
	var fs FileStats
	var state CommentState
	pos := 0
	for pos < len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		var line string
		if end < 0 {
			line = text[pos:]
			pos = len(text)
		} else {
			line = text[pos : pos+end]
			pos += end + 1
		}
		line = strings.TrimSuffix(line, "\r")
		countLine(&fs, ClassifyLine(line, def, &state, fs.Lines == 0))
	}
	return fs
}

// countLinesBytes is countLines over raw UTF-8 bytes, avoiding a copy
// of memory-mapped content.
func countLinesBytes(data []byte, def *lang.Definition) FileStats {
	var fs FileStats
	var state CommentState
	pos := 0
	for pos < len(data) {
		end := bytes.IndexByte(data[pos:], '\n')
		var chunk []byte
		if end < 0 {
			chunk = data[pos:]
			pos = len(data)
		} else {
			chunk = data[pos : pos+end]
			pos += end + 1
		}
		chunk = bytes.TrimSuffix(chunk, []byte("\r"))
		countLine(&fs, ClassifyLine(string(chunk), def, &state, fs.Lines == 0))
	}
	return fs
}

func countLine(fs *FileStats, class LineClass) {
	fs.Lines++
	switch class {
	case LineCode:
		fs.Code++
	case LineComment:
		fs.Comment++
	case LineBlank:
		fs.Blank++
	case LineShebang:
		fs.Shebang++
	}
}
