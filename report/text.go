package report

import (
	"strings"
)

// PlainText renders the copy-to-clipboard summary: the title, one
// "Label: value" line per input and result, and the date last.
func PlainText(doc *Document, loc *Locale) string {
	loc = orDefault(loc)
	var b strings.Builder
	b.WriteString(doc.Title)
	b.WriteByte('\n')
	for _, rows := range [][]Row{doc.Inputs, doc.Results} {
		for _, r := range rows {
			b.WriteString(r.Label)
			b.WriteString(": ")
			b.WriteString(r.Value)
			b.WriteByte('\n')
		}
	}
	if !doc.Date.IsZero() {
		b.WriteString("Fecha: ")
		b.WriteString(loc.Date(doc.Date))
		b.WriteByte('\n')
	}
	return b.String()
}
