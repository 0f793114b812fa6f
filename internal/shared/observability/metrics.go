package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	FilesScanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loclens_files_scanned_total",
		Help: "Total number of files classified, by language.",
	}, []string{"language"})

	FilesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loclens_files_skipped_total",
		Help: "Total number of files skipped, by reason.",
	}, []string{"reason"})

	FilesUnrecognized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loclens_files_unrecognized_total",
		Help: "Total number of files with no resolvable language.",
	})

	BytesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loclens_bytes_processed_total",
		Help: "Total number of bytes read or mapped during classification.",
	})

	FileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loclens_file_seconds",
		Help:    "Time spent classifying a single file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "loclens_scan_seconds",
		Help:    "Wall time of a full tree scan.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	WatchRescans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loclens_watch_rescans_total",
		Help: "Total number of rescans triggered by watch mode.",
	})
)
