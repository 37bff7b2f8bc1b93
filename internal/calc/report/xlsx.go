package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes a workbook with exactly the detail and summary sheets, in that order.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", r.Detail.Sheet); err != nil {
		return fmt.Errorf("report: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(r.Summary.Sheet); err != nil {
		return fmt.Errorf("report: new sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#D9E1F2"},
			Pattern: 1,
		},
	})
	if err != nil {
		return fmt.Errorf("report: header style: %w", err)
	}

	for _, t := range []Table{r.Detail, r.Summary} {
		if err := writeTable(f, t, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, t Table, headerStyle int) error {
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Sheet, "A1", &header); err != nil {
		return fmt.Errorf("report: %s header: %w", t.Sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err := f.SetCellStyle(t.Sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("report: %s header style: %w", t.Sheet, err)
	}

	for i, row := range t.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := row
		if err := f.SetSheetRow(t.Sheet, cell, &row); err != nil {
			return fmt.Errorf("report: %s row %d: %w", t.Sheet, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(t.Header))
	if err := f.SetColWidth(t.Sheet, "A", lastCol, 14); err != nil {
		return fmt.Errorf("report: %s widths: %w", t.Sheet, err)
	}
	return nil
}
