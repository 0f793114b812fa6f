package report

import (
	"fmt"
	"strings"
	"time"

	"loclens/internal/analyzer"
)

// MarkdownGenerator renders a report suitable for pasting into a PR or
// wiki page.
type MarkdownGenerator struct{}

func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

func (m *MarkdownGenerator) Generate(result *analyzer.ScanResult, opts Options) (string, error) {
	var b strings.Builder
	b.WriteString("# Line Inventory\n\n")
	b.WriteString("| Language | Files | Lines | Code | Comment | Blank | Shebang |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")

	for _, stats := range sortedLanguages(result) {
		fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d | %d |\n",
			stats.Name, stats.Files, stats.Lines, stats.Code, stats.Comment, stats.Blank, stats.Shebang)
	}
	fmt.Fprintf(&b, "| **Total** | %d | %d | %d | %d | %d | %d |\n",
		result.Files, result.Lines, result.Code, result.Comment, result.Blank, result.Shebang)

	if opts.Detail {
		for _, stats := range sortedLanguages(result) {
			if len(stats.FileList) == 0 {
				continue
			}
			fmt.Fprintf(&b, "\n## %s\n\n", stats.Name)
			b.WriteString("| File | Lines | Code | Comment | Blank | Shebang |\n")
			b.WriteString("|---|---:|---:|---:|---:|---:|\n")
			for _, fs := range stats.FileList {
				fmt.Fprintf(&b, "| %s | %d | %d | %d | %d | %d |\n",
					fs.Path, fs.Lines, fs.Code, fs.Comment, fs.Blank, fs.Shebang)
			}
		}
	}

	if result.Unrecognized > 0 || result.SkipCount() > 0 {
		fmt.Fprintf(&b, "\n%d unrecognized files, %d skipped.\n",
			result.Unrecognized, result.SkipCount())
	}
	fmt.Fprintf(&b, "\nScanned %d bytes in %s.\n",
		result.Bytes, result.Elapsed.Round(time.Millisecond))
	return b.String(), nil
}
