package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Table is a landscape report with a header row and string cells.
type Table struct {
	Title    string
	Subtitle string
	Header   []string
	Widths   []float64 // mm; defaults to an even split
	Rows     [][]string
	Now      time.Time
}

const (
	pageWidth   = 277.0 // A4 landscape minus margins
	rowHeight   = 7.0
	headerRed   = 68
	headerGreen = 114
	headerBlue  = 196
)

// WriteTable renders t to w.
func WriteTable(w io.Writer, t Table) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)

	widths := t.Widths
	if len(widths) != len(t.Header) {
		widths = make([]float64, len(t.Header))
		for i := range widths {
			widths[i] = pageWidth / float64(len(t.Header))
		}
	}

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(headerRed, headerGreen, headerBlue)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range t.Header {
			pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Arial", "", 9)
	}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() > 1 {
			drawHeader()
		}
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, t.Title)
	pdf.Ln(10)
	if t.Subtitle != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, t.Subtitle)
		pdf.Ln(10)
	}

	drawHeader()
	for _, row := range t.Rows {
		for i := range t.Header {
			var v string
			if i < len(row) {
				v = row[i]
			}
			align := "L"
			if i > 1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], rowHeight, v, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	now := t.Now
	if now.IsZero() {
		now = time.Now()
	}
	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 8, fmt.Sprintf("Generated at %s", now.Format("02 January 2006 15:04:05")))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}
