// Package report shapes a rebar working set into the tables that get exported:
// the per-placement take-off sheet and the per-diameter summary sheet.
package report

import (
	"time"

	"Acero/internal/calc/rebar"
)

const (
	DetailSheet  = "CUANTIFICACION"
	SummarySheet = "RESUMEN"

	filenameLayout = "02012006_1504"
)

var (
	DetailHeader = []string{
		"elemento", "localizacion", "eje", "grilla", "diametro", "refuerzo",
		"longitud", "lg1", "lg2", "piezas", "elementos",
		"longitud_total", "subtotal_ml",
	}
	SummaryHeader = []string{"Diámetro", "Total_ML", "Total_KG", "Piezas_12m"}
)

// Table is one flat sheet: a header row followed by data rows of the same width.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]any
}

type Report struct {
	Detail    Table
	Summary   Table
	Totals    rebar.Totals
	Timestamp time.Time
	Filename  string
}

// Build assembles the export from a snapshot and its aggregates. ts only drives the
// filename and the printed date, so callers decide which clock to use.
func Build(snapshot []rebar.Placement, results []rebar.Result, ts time.Time) Report {
	detail := Table{Sheet: DetailSheet, Header: DetailHeader, Rows: make([][]any, 0, len(snapshot))}
	for _, p := range snapshot {
		detail.Rows = append(detail.Rows, []any{
			p.ElementName,
			p.Location,
			p.Axis,
			p.GridLine,
			p.Diameter,
			string(p.Kind),
			p.LengthM,
			p.Hook1M,
			p.Hook2M,
			p.PieceCount,
			p.ElementCount,
			p.TotalLength(),
			p.SubtotalLinearMeters(),
		})
	}

	summary := Table{Sheet: SummarySheet, Header: SummaryHeader, Rows: make([][]any, 0, len(results))}
	for _, r := range results {
		summary.Rows = append(summary.Rows, []any{
			r.Diameter,
			r.TotalLinearMeters,
			r.TotalWeightKg,
			r.StandardBarsNeeded,
		})
	}

	totals := rebar.Summarize(results)
	totals.Placements = len(snapshot)

	return Report{
		Detail:    detail,
		Summary:   summary,
		Totals:    totals,
		Timestamp: ts,
		Filename:  Filename(ts),
	}
}

// Filename is acero_<DDMMYYYY>_<HHMM>.xlsx for ts.
func Filename(ts time.Time) string {
	return "acero_" + ts.Format(filenameLayout) + ".xlsx"
}

// PDFName is the filename of the printable summary for the same export.
func (r Report) PDFName() string {
	return "acero_" + r.Timestamp.Format(filenameLayout) + ".pdf"
}
