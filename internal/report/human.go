package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"loclens/internal/analyzer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	totalStyle  = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B")).Italic(true)
)

// HumanGenerator renders the terminal table: one row per language
// sorted by code lines, a totals row, and a footer with skip counts.
type HumanGenerator struct{}

func NewHumanGenerator() *HumanGenerator {
	return &HumanGenerator{}
}

func (h *HumanGenerator) Generate(result *analyzer.ScanResult, opts Options) (string, error) {
	rows := sortedLanguages(result)

	totalRow := len(rows) + 1
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch row {
			case table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case totalRow:
				return totalStyle.Padding(0, 1)
			default:
				return cellStyle
			}
		}).
		Headers("Language", "Files", "Lines", "Code", "Comment", "Blank", "Shebang")

	for _, stats := range rows {
		tbl.Row(statRow(stats.Name, stats.Files, stats.Lines, stats.Code,
			stats.Comment, stats.Blank, stats.Shebang)...)
		if opts.Detail {
			for _, fs := range stats.FileList {
				tbl.Row(statRow("  "+fs.Path, 1, fs.Lines, fs.Code,
					fs.Comment, fs.Blank, fs.Shebang)...)
			}
		}
	}
	tbl.Row(statRow("Total", result.Files, result.Lines, result.Code,
		result.Comment, result.Blank, result.Shebang)...)

	var b strings.Builder
	b.WriteString(tbl.Render())
	b.WriteByte('\n')

	footer := fmt.Sprintf("%d files, %d bytes in %s", result.Files, result.Bytes,
		result.Elapsed.Round(time.Millisecond))
	b.WriteString(noteStyle.Render(footer))
	b.WriteByte('\n')
	if result.Unrecognized > 0 || result.SkipCount() > 0 {
		b.WriteString(noteStyle.Render(fmt.Sprintf("%d unrecognized, %d skipped",
			result.Unrecognized, result.SkipCount())))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func statRow(name string, nums ...int64) []string {
	row := make([]string, 0, len(nums)+1)
	row = append(row, name)
	for _, n := range nums {
		row = append(row, fmt.Sprintf("%d", n))
	}
	return row
}
