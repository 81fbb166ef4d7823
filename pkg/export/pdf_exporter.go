package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth      = 277.0
	unicodeFamily  = "unicode"
	fallbackFamily = "Arial"
)

// PDFExporter renders datasets into a landscape table. The core PDF fonts only
// cover Latin-1, so Hangul needs a TrueType font supplied through fontPath.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. An empty fontPath uses Arial.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render creates a PDF document with an optional title and table body.
// Widths are relative column weights; nil spreads columns evenly.
func (e *PDFExporter) Render(data Dataset, title string, widths []float64) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)

	family := fallbackFamily
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if e.fontPath != "" {
		pdf.AddUTF8Font(unicodeFamily, "", e.fontPath)
		pdf.AddUTF8Font(unicodeFamily, "B", e.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font %s: %w", e.fontPath, err)
		}
		family = unicodeFamily
		translate = func(s string) string { return s }
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, translate(title), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	cols := columnWidths(len(data.Headers), widths)
	pdf.SetFont(family, "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for i, header := range data.Headers {
		pdf.CellFormat(cols[i], 8, translate(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(cols[i], 7, translate(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(n int, weights []float64) []float64 {
	cols := make([]float64, n)
	total := 0.0
	if len(weights) == n {
		for _, w := range weights {
			if w > 0 {
				total += w
			}
		}
	}
	for i := range cols {
		if total == 0 {
			cols[i] = pageWidth / float64(n)
			continue
		}
		if weights[i] > 0 {
			cols[i] = pageWidth * weights[i] / total
		}
	}
	return cols
}
