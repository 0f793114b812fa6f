package analyzer

import (
	"time"

	"loclens/internal/lang"
)

// Skip reasons surfaced in ScanResult and the skip metrics.
const (
	ReasonBinary          = "binary"
	ReasonUnreadable      = "unreadable"
	ReasonUnsupportedSize = "unsupported_size"
	ReasonDecode          = "decode"
)

// FileStats holds the line inventory of one file. Built once, then
// immutable. Lines always equals Code + Comment + Blank + Shebang.
type FileStats struct {
	Path    string `json:"path"`
	Lines   int64  `json:"lines"`
	Code    int64  `json:"code"`
	Comment int64  `json:"comment"`
	Blank   int64  `json:"blank"`
	Shebang int64  `json:"shebang"`
	Bytes   int64  `json:"bytes"`
}

// LanguageStats aggregates FileStats for one language. FileList is only
// populated when per-file detail collection is enabled.
type LanguageStats struct {
	Name     string      `json:"name"`
	Files    int64       `json:"files"`
	Lines    int64       `json:"lines"`
	Code     int64       `json:"code"`
	Comment  int64       `json:"comment"`
	Blank    int64       `json:"blank"`
	Shebang  int64       `json:"shebang"`
	Bytes    int64       `json:"bytes"`
	FileList []FileStats `json:"files_detail,omitempty"`
}

func (s *LanguageStats) addFile(fs FileStats, detail bool) {
	s.Files++
	s.Lines += fs.Lines
	s.Code += fs.Code
	s.Comment += fs.Comment
	s.Blank += fs.Blank
	s.Shebang += fs.Shebang
	s.Bytes += fs.Bytes
	if detail {
		s.FileList = append(s.FileList, fs)
	}
}

func (s *LanguageStats) merge(other *LanguageStats) {
	s.Files += other.Files
	s.Lines += other.Lines
	s.Code += other.Code
	s.Comment += other.Comment
	s.Blank += other.Blank
	s.Shebang += other.Shebang
	s.Bytes += other.Bytes
	s.FileList = append(s.FileList, other.FileList...)
}

// SkippedFile records one file excluded from the inventory and why.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanResult is the merged outcome of one scan: global totals plus
// per-language aggregates. Produced once per invocation, read-only
// thereafter.
type ScanResult struct {
	Files        int64                     `json:"files"`
	Lines        int64                     `json:"lines"`
	Code         int64                     `json:"code"`
	Comment      int64                     `json:"comment"`
	Blank        int64                     `json:"blank"`
	Shebang      int64                     `json:"shebang"`
	Bytes        int64                     `json:"bytes"`
	Languages    map[string]*LanguageStats `json:"languages"`
	Unrecognized int64                     `json:"unrecognized"`
	Skipped      []SkippedFile             `json:"skipped,omitempty"`
	Elapsed      time.Duration             `json:"-"`
}

// SkipCount returns the number of files excluded for errors or binary
// content. A surrounding CLI may map a non-zero count to a non-zero
// exit code under a fail-on-error policy.
func (r *ScanResult) SkipCount() int64 {
	return int64(len(r.Skipped))
}

// Accumulator is a worker-private accumulation target. Workers add
// files without any synchronization; the single shared ScanResult is
// touched only by an explicit Merge call when the worker finishes.
type Accumulator struct {
	detail       bool
	languages    map[string]*LanguageStats
	unrecognized int64
	skipped      []SkippedFile
}

// NewAccumulator creates an empty accumulator. When detail is true,
// per-file statistics are retained alongside the aggregates.
func NewAccumulator(detail bool) *Accumulator {
	return &Accumulator{
		detail:    detail,
		languages: make(map[string]*LanguageStats),
	}
}

// AddFile records one classified file under its language.
func (a *Accumulator) AddFile(def *lang.Definition, fs FileStats) {
	stats, ok := a.languages[def.Name]
	if !ok {
		stats = &LanguageStats{Name: def.Name}
		a.languages[def.Name] = stats
	}
	stats.addFile(fs, a.detail)
}

// AddSkipped records a file excluded from all statistics.
func (a *Accumulator) AddSkipped(path, reason string) {
	a.skipped = append(a.skipped, SkippedFile{Path: path, Reason: reason})
}

// AddUnrecognized counts a file no language pattern or shebang claims.
func (a *Accumulator) AddUnrecognized() {
	a.unrecognized++
}

// Merge folds an accumulator into the result. The operation is
// associative and commutative (field-wise sums, lists concatenated),
// so final totals do not depend on worker count or completion order.
func (r *ScanResult) Merge(acc *Accumulator) {
	if r.Languages == nil {
		r.Languages = make(map[string]*LanguageStats)
	}
	for name, stats := range acc.languages {
		target, ok := r.Languages[name]
		if !ok {
			target = &LanguageStats{Name: name}
			r.Languages[name] = target
		}
		target.merge(stats)
		r.Files += stats.Files
		r.Lines += stats.Lines
		r.Code += stats.Code
		r.Comment += stats.Comment
		r.Blank += stats.Blank
		r.Shebang += stats.Shebang
		r.Bytes += stats.Bytes
	}
	r.Unrecognized += acc.unrecognized
	r.Skipped = append(r.Skipped, acc.skipped...)
}
