// Package report renders tabular exports.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet is one table of an export. Rows hold cell values in header order.
// When TotalColumn is set, a final row sums that column.
type Sheet struct {
	Name        string
	Headers     []string
	Rows        [][]any
	TotalLabel  string
	TotalColumn int // 1-based; 0 disables the total row
}

// XLSX renders sheets as Excel workbooks.
type XLSX struct{}

// ContentType is the media type of the rendered workbook.
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render writes sheet to w as a single-sheet workbook.
func (XLSX) Render(w io.Writer, sheet Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	name := sheet.Name
	if name == "" {
		name = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := setRow(f, name, 1, header); err != nil {
		return err
	}

	total := decimal.Zero
	for i, row := range sheet.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = cellValue(v)
			if sheet.TotalColumn == j+1 {
				if d, ok := v.(decimal.Decimal); ok {
					total = total.Add(d)
				}
			}
		}
		if err := setRow(f, name, i+2, cells); err != nil {
			return err
		}
	}

	if sheet.TotalColumn > 0 {
		cells := make([]any, sheet.TotalColumn)
		cells[0] = sheet.TotalLabel
		cells[sheet.TotalColumn-1] = total.InexactFloat64()
		if sheet.TotalColumn == 1 {
			cells[0] = total.InexactFloat64()
		}
		if err := setRow(f, name, len(sheet.Rows)+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("set row %d: %w", row, err)
	}
	return nil
}

// cellValue converts amounts to numbers so spreadsheet formulas work on them.
func cellValue(v any) any {
	switch t := v.(type) {
	case decimal.Decimal:
		return t.InexactFloat64()
	case *string:
		if t == nil {
			return ""
		}
		return *t
	}
	return v
}
