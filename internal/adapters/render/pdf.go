package render

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/eshaffer321/cropplanner/internal/domain/report"
)

const (
	pdfMargin     = 10.0
	pdfLineHeight = 7.0
	pdfIndent     = 6.0
)

// The core fonts are cp1252, which has no rupee sign.
var pdfReplacer = strings.NewReplacer("₹", "Rs.")

// PDF writes the document as an A4 page in the core Helvetica font.
func PDF(w io.Writer, doc *report.Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("cropplanner", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return tr(pdfReplacer.Replace(s)) }

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, text(doc.Title), "", 1, "L", false, 0, "")

	for _, section := range doc.Sections {
		if section.Kind != report.SectionHeader {
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", 12)
			pdf.CellFormat(0, pdfLineHeight, text(section.Heading), "", 1, "L", false, 0, "")
		}
		for _, line := range section.Lines {
			pdf.SetFont("Helvetica", "", 11)
			pdf.SetX(pdfMargin + float64(line.Indent)*pdfIndent)
			pdf.CellFormat(0, pdfLineHeight, text(line.Label+": "+line.Value), "", 1, "L", false, 0, "")
		}
	}

	return pdf.Output(w)
}
