package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin       = 20.0 // mm
	pdfTopMargin    = 28.0 // leaves room for the page header
	pdfBottomMargin = 20.0
	pdfLineHeight   = 6.0
	plotWidthPt     = 480.0
	plotHeightPt    = 300.0
)

// Options control document branding and localization.
type Options struct {
	Organization string  // printed in the page header
	Logo         []byte  // PNG shown next to the organization
	Locale       *Locale // nil means DefaultLocale
	Plot         bool    // include the fixture layout plot when the document has a room
}

// pdfStyler keeps the named text styles and the page geometry.
type pdfStyler struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	styles map[string]func()
	width  float64 // usable width
	bottom float64 // lowest usable Y
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	pageW, pageH := pdf.GetPageSize()
	s := &pdfStyler{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		styles: make(map[string]func()),
		width:  pageW - 2*pdfMargin,
		bottom: pageH - pdfBottomMargin,
	}
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["title"] = func() {
		s.pdf.SetFont("Helvetica", "B", 18)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["section"] = func() {
		s.pdf.SetFont("Helvetica", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Helvetica", "", 11)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["header"] = func() {
		s.pdf.SetFont("Helvetica", "B", 10)
		s.pdf.SetTextColor(90, 90, 90)
	}
	s.styles["footer"] = func() {
		s.pdf.SetFont("Helvetica", "I", 8)
		s.pdf.SetTextColor(120, 120, 120)
	}
	s.styles["formula"] = func() {
		s.pdf.SetFont("Courier", "", 10)
		s.pdf.SetTextColor(20, 20, 20)
	}
	s.styles["note"] = func() {
		s.pdf.SetFont("Helvetica", "", 12)
		s.pdf.SetTextColor(200, 0, 0)
		s.pdf.SetFillColor(245, 245, 245)
	}
}

func (s *pdfStyler) applyStyle(name string) {
	if fn, ok := s.styles[name]; ok {
		fn()
		return
	}
	s.styles["normal"]()
}

// text converts to the core font encoding. Symbols outside cp1252 are
// spelled out first.
func (s *pdfStyler) text(str string) string {
	return s.tr(pdfSymbols.Replace(str))
}

var pdfSymbols = strings.NewReplacer(
	"⇒", "=>",
	"θ", " phi",
	"Φ", "Phi ",
	"₁", "1",
	"₂", "2",
	"–", "-",
)

func (s *pdfStyler) checkAddPage(needed float64) {
	if s.pdf.GetY()+needed > s.bottom {
		s.pdf.AddPage()
	}
}

func (s *pdfStyler) paragraph(str, style string) {
	s.applyStyle(style)
	s.pdf.SetX(pdfMargin)
	s.pdf.MultiCell(s.width, pdfLineHeight, s.text(str), "", "L", false)
}

func (s *pdfStyler) section(title string) {
	s.checkAddPage(4 * pdfLineHeight)
	s.pdf.Ln(4)
	s.applyStyle("section")
	s.pdf.SetX(pdfMargin)
	s.pdf.CellFormat(s.width, 8, s.text(title), "", 1, "L", false, 0, "")
	y := s.pdf.GetY()
	s.pdf.SetDrawColor(100, 100, 100)
	s.pdf.SetLineWidth(0.3)
	s.pdf.Line(pdfMargin, y, pdfMargin+s.width, y)
	s.pdf.Ln(3)
}

func (s *pdfStyler) bullets(rows []Row) {
	for _, row := range rows {
		s.checkAddPage(pdfLineHeight)
		s.applyStyle("normal")
		s.pdf.SetX(pdfMargin + 2)
		s.pdf.MultiCell(s.width-2, pdfLineHeight, s.text("• "+row.Label+": "+row.Value), "", "L", false)
	}
}

func (s *pdfStyler) formulas(steps []string) {
	for _, step := range steps {
		s.checkAddPage(pdfLineHeight + 2)
		s.applyStyle("formula")
		s.pdf.SetX(pdfMargin + 2)
		s.pdf.MultiCell(s.width-2, pdfLineHeight, s.text(PlainFormula(step)), "", "L", false)
		s.pdf.Ln(2)
	}
}

func (s *pdfStyler) note(str string) {
	s.applyStyle("note")
	lines := s.pdf.SplitLines([]byte(s.text(str)), s.width-4)
	s.checkAddPage(float64(len(lines))*pdfLineHeight + 8)
	s.pdf.Ln(4)
	s.pdf.SetX(pdfMargin)
	s.pdf.MultiCell(s.width, pdfLineHeight+1, s.text(str), "", "L", true)
}

func (s *pdfStyler) image(png []byte, name string, widthMM float64) {
	info := s.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	if info == nil {
		return
	}
	h := widthMM * info.Height() / info.Width()
	s.checkAddPage(h + 4)
	s.pdf.Ln(2)
	x := pdfMargin + (s.width-widthMM)/2
	s.pdf.ImageOptions(name, x, s.pdf.GetY(), widthMM, h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.pdf.SetY(s.pdf.GetY() + h + 2)
}

// PDF renders doc as an A4 document: page header with the organization
// and optional logo, date, inputs, results, the optional layout plot, the
// formula trace and the closing note. The footer reads "Página i de n".
func PDF(w io.Writer, doc *Document, opts Options) error {
	loc := orDefault(opts.Locale)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfTopMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfBottomMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("ielec", true)
	if opts.Organization != "" {
		pdf.SetAuthor(opts.Organization, true)
	}
	if !doc.Date.IsZero() {
		pdf.SetCreationDate(doc.Date)
	}

	s := newPDFStyler(pdf)

	hasLogo := false
	if len(opts.Logo) > 0 {
		info := pdf.RegisterImageOptionsReader("logo", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(opts.Logo))
		hasLogo = info != nil && pdf.Ok()
		if !hasLogo {
			pdf.ClearError()
		}
	}

	pdf.SetHeaderFunc(func() {
		x := pdfMargin
		if hasLogo {
			pdf.ImageOptions("logo", pdfMargin, 8, 0, 12, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			x += 16
		}
		s.applyStyle("header")
		pdf.SetXY(x, 10)
		pdf.CellFormat(s.width-(x-pdfMargin), 6, s.text(opts.Organization), "", 0, "L", false, 0, "")
		pdf.SetXY(pdfMargin, 10)
		pdf.CellFormat(s.width, 6, s.text(doc.Title), "", 0, "R", false, 0, "")
		pdf.SetDrawColor(180, 180, 180)
		pdf.SetLineWidth(0.2)
		pdf.Line(pdfMargin, 21, pdfMargin+s.width, 21)
		pdf.SetY(pdfTopMargin)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		s.applyStyle("footer")
		pdf.CellFormat(0, 10, s.text(fmt.Sprintf("Página %d de {nb}", pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	s.applyStyle("title")
	pdf.SetX(pdfMargin)
	pdf.MultiCell(s.width, 9, s.text(doc.Title), "", "C", false)
	pdf.Ln(2)
	if !doc.Date.IsZero() {
		s.paragraph("Fecha: "+loc.Date(doc.Date), "normal")
	}

	s.section("Datos de entrada")
	s.bullets(doc.Inputs)
	s.section("Resultados")
	s.bullets(doc.Results)

	if opts.Plot && doc.Room != nil {
		png, err := LayoutPlot(*doc.Room, plotWidthPt, plotHeightPt)
		switch {
		case errors.Is(err, ErrNoLayout):
		case err != nil:
			return err
		default:
			s.image(png, "layout", s.width*0.8)
		}
	}

	if len(doc.Formulas) > 0 {
		s.section("Desarrollo de las fórmulas")
		s.formulas(doc.Formulas)
	}
	if doc.Note != "" {
		s.note(doc.Note)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building pdf: %w", err)
	}
	return pdf.Output(w)
}
