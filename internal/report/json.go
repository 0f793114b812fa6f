package report

import (
	"encoding/json"

	"loclens/internal/analyzer"
	"loclens/internal/core/errors"
)

// JSONGenerator emits the machine-readable report. Languages are keyed
// by name; the map form keeps output stable for diffing since Go
// marshals map keys in sorted order.
type JSONGenerator struct {
	compact bool
}

func NewJSONGenerator(compact bool) *JSONGenerator {
	return &JSONGenerator{compact: compact}
}

type jsonReport struct {
	Totals       jsonTotals                         `json:"totals"`
	Languages    map[string]*analyzer.LanguageStats `json:"languages"`
	Unrecognized int64                              `json:"unrecognized"`
	Skipped      []analyzer.SkippedFile             `json:"skipped,omitempty"`
	ElapsedMS    int64                              `json:"elapsed_ms"`
}

type jsonTotals struct {
	Files   int64 `json:"files"`
	Lines   int64 `json:"lines"`
	Code    int64 `json:"code"`
	Comment int64 `json:"comment"`
	Blank   int64 `json:"blank"`
	Shebang int64 `json:"shebang"`
	Bytes   int64 `json:"bytes"`
}

func (g *JSONGenerator) Generate(result *analyzer.ScanResult, opts Options) (string, error) {
	languages := result.Languages
	if !opts.Detail {
		// Omit the per-file lists without touching the caller's result.
		languages = make(map[string]*analyzer.LanguageStats, len(result.Languages))
		for name, stats := range result.Languages {
			flat := *stats
			flat.FileList = nil
			languages[name] = &flat
		}
	}

	payload := jsonReport{
		Totals: jsonTotals{
			Files:   result.Files,
			Lines:   result.Lines,
			Code:    result.Code,
			Comment: result.Comment,
			Blank:   result.Blank,
			Shebang: result.Shebang,
			Bytes:   result.Bytes,
		},
		Languages:    languages,
		Unrecognized: result.Unrecognized,
		Skipped:      result.Skipped,
		ElapsedMS:    result.Elapsed.Milliseconds(),
	}

	var (
		data []byte
		err  error
	)
	if g.compact {
		data, err = json.Marshal(payload)
	} else {
		data, err = json.MarshalIndent(payload, "", "  ")
	}
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "marshal report")
	}
	return string(data) + "\n", nil
}
