package report

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"loclens/internal/analyzer"
	"loclens/internal/core/errors"
)

// HTMLGenerator produces a self-contained page, no external assets.
type HTMLGenerator struct{}

func NewHTMLGenerator() *HTMLGenerator {
	return &HTMLGenerator{}
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Line Inventory</title>
<style>
body { font-family: ui-monospace, monospace; margin: 2rem; color: #1e293b; }
table { border-collapse: collapse; margin-bottom: 1rem; }
th, td { border: 1px solid #cbd5e1; padding: 0.3rem 0.8rem; }
th { background: #f1f5f9; text-align: left; }
td.num { text-align: right; }
tr.total { font-weight: bold; background: #f8fafc; }
p.note { color: #64748b; }
</style>
</head>
<body>
<h1>Line Inventory</h1>
<table>
<tr><th>Language</th><th>Files</th><th>Lines</th><th>Code</th><th>Comment</th><th>Blank</th><th>Shebang</th></tr>
{{- range .Rows}}
<tr><td>{{.Name}}</td><td class="num">{{.Files}}</td><td class="num">{{.Lines}}</td><td class="num">{{.Code}}</td><td class="num">{{.Comment}}</td><td class="num">{{.Blank}}</td><td class="num">{{.Shebang}}</td></tr>
{{- if $.Detail}}
{{- range .FileList}}
<tr><td>&nbsp;&nbsp;{{.Path}}</td><td class="num">1</td><td class="num">{{.Lines}}</td><td class="num">{{.Code}}</td><td class="num">{{.Comment}}</td><td class="num">{{.Blank}}</td><td class="num">{{.Shebang}}</td></tr>
{{- end}}
{{- end}}
{{- end}}
<tr class="total"><td>Total</td><td class="num">{{.Totals.Files}}</td><td class="num">{{.Totals.Lines}}</td><td class="num">{{.Totals.Code}}</td><td class="num">{{.Totals.Comment}}</td><td class="num">{{.Totals.Blank}}</td><td class="num">{{.Totals.Shebang}}</td></tr>
</table>
<p class="note">{{.Totals.Bytes}} bytes scanned in {{.Elapsed}}{{if .Skips}}; {{.Skips}}{{end}}</p>
</body>
</html>
`))

type htmlData struct {
	Rows    []*analyzer.LanguageStats
	Totals  jsonTotals
	Detail  bool
	Elapsed string
	Skips   string
}

func (h *HTMLGenerator) Generate(result *analyzer.ScanResult, opts Options) (string, error) {
	data := htmlData{
		Rows: sortedLanguages(result),
		Totals: jsonTotals{
			Files:   result.Files,
			Lines:   result.Lines,
			Code:    result.Code,
			Comment: result.Comment,
			Blank:   result.Blank,
			Shebang: result.Shebang,
			Bytes:   result.Bytes,
		},
		Detail:  opts.Detail,
		Elapsed: result.Elapsed.Round(time.Millisecond).String(),
	}
	if result.Unrecognized > 0 || result.SkipCount() > 0 {
		data.Skips = skipNote(result)
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "render html report")
	}
	return b.String(), nil
}

func skipNote(result *analyzer.ScanResult) string {
	return fmt.Sprintf("%d unrecognized, %d skipped", result.Unrecognized, result.SkipCount())
}
