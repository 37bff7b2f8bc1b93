package report

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
)

// WritePDF renders a printable project summary: totals, the per-diameter table and the
// placement list.
func WritePDF(w io.Writer, r Report, title string) error {
	if title == "" {
		title = "Calculadora de Acero"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Fecha: %s", r.Timestamp.Format("02/01/2006 15:04")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Resumen del proyecto")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Elementos: %d", r.Totals.Placements))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Metros lineales: %.1f ML", r.Totals.TotalLinearMeters))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Peso total: %.1f KG (%.2f t)", r.Totals.TotalWeightKg, r.Totals.TotalWeightTons))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Piezas de 12m: %d", r.Totals.StandardBarsNeeded))
	pdf.Ln(10)

	table(pdf, tr, r.Summary, []float64{30, 40, 40, 40})
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr("Cuantificación"))
	pdf.Ln(8)
	table(pdf, tr, compactDetail(r.Detail), []float64{40, 18, 22, 18, 14, 14, 30, 30})

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("report: write pdf: %w", err)
	}
	return nil
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, t Table, widths []float64) {
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range t.Header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range t.Rows {
		for i, v := range row {
			align := "R"
			if _, ok := v.(string); ok {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(cellText(v)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func cellText(v any) string {
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// compactDetail keeps the columns that fit across a portrait page.
func compactDetail(t Table) Table {
	cols := []int{0, 4, 5, 6, 9, 10, 11, 12}
	out := Table{Sheet: t.Sheet, Header: make([]string, len(cols)), Rows: make([][]any, 0, len(t.Rows))}
	for i, c := range cols {
		out.Header[i] = t.Header[c]
	}
	for _, row := range t.Rows {
		r := make([]any, len(cols))
		for i, c := range cols {
			r[i] = row[c]
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}
