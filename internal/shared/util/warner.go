package util

import (
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// SkipWarner rate-limits per-file warning logs so a tree full of
// unreadable or binary files cannot flood the output. Suppressed
// warnings are counted and reported once via Flush.
type SkipWarner struct {
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

// NewSkipWarner creates a warner emitting at most r warnings per second
// with burst b.
func NewSkipWarner(r float64, b int) *SkipWarner {
	return &SkipWarner{
		limiter: rate.NewLimiter(rate.Limit(r), b),
	}
}

// Warn logs the message with slog.Warn if the limiter allows it,
// otherwise increments the suppressed counter.
func (w *SkipWarner) Warn(msg string, args ...any) {
	if w.limiter.AllowN(time.Now(), 1) {
		slog.Warn(msg, args...)
		return
	}
	w.suppressed.Add(1)
}

// Flush reports the number of suppressed warnings, if any, and resets
// the counter.
func (w *SkipWarner) Flush() {
	n := w.suppressed.Swap(0)
	if n > 0 {
		slog.Warn("additional warnings suppressed", "count", n)
	}
}
