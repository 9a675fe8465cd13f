package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders doc as GitHub-flavoured Markdown with one table per
// section.
func Markdown(doc *Document, loc *Locale) string {
	loc = orDefault(loc)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if !doc.Date.IsZero() {
		fmt.Fprintf(&b, "**Fecha:** %s\n\n", loc.Date(doc.Date))
	}
	writeTable(&b, "Datos de entrada", doc.Inputs)
	writeTable(&b, "Resultados", doc.Results)
	if len(doc.Formulas) > 0 {
		b.WriteString("## Desarrollo de las fórmulas\n\n")
		for _, f := range doc.Formulas {
			fmt.Fprintf(&b, "- `%s`\n", PlainFormula(f))
		}
		b.WriteString("\n")
	}
	if doc.Note != "" {
		fmt.Fprintf(&b, "> %s\n", doc.Note)
	}
	return b.String()
}

func writeTable(b *strings.Builder, title string, rows []Row) {
	fmt.Fprintf(b, "## %s\n\n| Concepto | Valor |\n| --- | --- |\n", title)
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", cell(r.Label), cell(r.Value))
	}
	b.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;color:#111}
table{border-collapse:collapse;width:100%}
th,td{border:1px solid #ccc;padding:.3rem .5rem;text-align:left}
blockquote{background:#f5f5f5;color:#c80000;margin:1rem 0;padding:.5rem 1rem}
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML writes doc as a standalone HTML page. The body is the Markdown
// rendering converted by goldmark.
func HTML(w io.Writer, doc *Document, loc *Locale) error {
	loc = orDefault(loc)
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(doc, loc)), &body); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	lang, _, _ := strings.Cut(loc.Name(), "_")
	return pageTemplate.Execute(w, struct {
		Lang  string
		Title string
		Body  template.HTML
	}{lang, doc.Title, template.HTML(body.String())})
}
