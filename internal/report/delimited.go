package report

import (
	"encoding/csv"
	"strconv"
	"strings"

	"loclens/internal/analyzer"
	"loclens/internal/core/errors"
)

// DelimitedGenerator covers CSV and TSV with the same row layout: one
// language per record, a trailing Total record, and optional per-file
// records tagged with the language name.
type DelimitedGenerator struct {
	comma rune
}

func NewDelimitedGenerator(comma rune) *DelimitedGenerator {
	return &DelimitedGenerator{comma: comma}
}

func (g *DelimitedGenerator) Generate(result *analyzer.ScanResult, opts Options) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Comma = g.comma

	header := []string{"language", "files", "lines", "code", "comment", "blank", "shebang", "bytes"}
	if opts.Detail {
		header = append([]string{"path"}, header...)
	}
	records := [][]string{header}

	for _, stats := range sortedLanguages(result) {
		records = append(records, g.record(opts, "", stats.Name,
			stats.Files, stats.Lines, stats.Code, stats.Comment, stats.Blank, stats.Shebang, stats.Bytes))
		if opts.Detail {
			for _, fs := range stats.FileList {
				records = append(records, g.record(opts, fs.Path, stats.Name,
					1, fs.Lines, fs.Code, fs.Comment, fs.Blank, fs.Shebang, fs.Bytes))
			}
		}
	}
	records = append(records, g.record(opts, "", "Total",
		result.Files, result.Lines, result.Code, result.Comment, result.Blank, result.Shebang, result.Bytes))

	if err := w.WriteAll(records); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "write delimited report")
	}
	return b.String(), nil
}

func (g *DelimitedGenerator) record(opts Options, path, name string, nums ...int64) []string {
	rec := make([]string, 0, len(nums)+2)
	if opts.Detail {
		rec = append(rec, path)
	}
	rec = append(rec, name)
	for _, n := range nums {
		rec = append(rec, strconv.FormatInt(n, 10))
	}
	return rec
}
