// Package report renders a finished scan in the supported output
// formats. Renderers never mutate the result they are given.
package report

import (
	"sort"

	"loclens/internal/analyzer"
	"loclens/internal/core/errors"
)

const (
	FormatHuman       = "human"
	FormatJSON        = "json"
	FormatJSONCompact = "json-compact"
	FormatCSV         = "csv"
	FormatTSV         = "tsv"
	FormatMarkdown    = "markdown"
	FormatHTML        = "html"
)

// Formats lists the accepted format names in display order.
var Formats = []string{
	FormatHuman,
	FormatJSON,
	FormatJSONCompact,
	FormatCSV,
	FormatTSV,
	FormatMarkdown,
	FormatHTML,
}

// Options applies to every format that supports it.
type Options struct {
	// Detail emits per-file rows where the format has a place for
	// them. The scan must have been run with detail collection on.
	Detail bool
}

// Render dispatches to the named format's generator.
func Render(format string, result *analyzer.ScanResult, opts Options) (string, error) {
	switch format {
	case FormatHuman:
		return NewHumanGenerator().Generate(result, opts)
	case FormatJSON:
		return NewJSONGenerator(false).Generate(result, opts)
	case FormatJSONCompact:
		return NewJSONGenerator(true).Generate(result, opts)
	case FormatCSV:
		return NewDelimitedGenerator(',').Generate(result, opts)
	case FormatTSV:
		return NewDelimitedGenerator('\t').Generate(result, opts)
	case FormatMarkdown:
		return NewMarkdownGenerator().Generate(result, opts)
	case FormatHTML:
		return NewHTMLGenerator().Generate(result, opts)
	default:
		return "", errors.AddContext(
			errors.New(errors.CodeValidationError, "unknown output format"), "format", format)
	}
}

// sortedLanguages returns the per-language rows ordered by code lines
// descending, with name as the deterministic tie break.
func sortedLanguages(result *analyzer.ScanResult) []*analyzer.LanguageStats {
	rows := make([]*analyzer.LanguageStats, 0, len(result.Languages))
	for _, stats := range result.Languages {
		rows = append(rows, stats)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Code != rows[j].Code {
			return rows[i].Code > rows[j].Code
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
