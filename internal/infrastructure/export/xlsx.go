package export

import (
	"fmt"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	// excelize built-in "#,##0.00"
	amountNumFmt  = 4
	maxSheetName  = 31
	defaultWidth  = 16
	totalRowLabel = "TOTAL"
)

// XLSXEncoder writes one worksheet with a bold header, numeric amount cells
// and a totals line
type XLSXEncoder struct{}

// NewXLSXEncoder creates a new XLSXEncoder
func NewXLSXEncoder() *XLSXEncoder {
	return &XLSXEncoder{}
}

// ContentType returns the MIME type of the files
func (e *XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension
func (e *XLSXEncoder) Extension() string { return ".xlsx" }

// Encode renders the export as a workbook
func (e *XLSXEncoder) Encode(ex *report.Export) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(ex.Type)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(ex.Columns))
	for i, c := range ex.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	amounts := make([]bool, len(ex.Columns))
	totals := make([]decimal.Decimal, len(ex.Columns))
	for i, row := range ex.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			if dec, ok := v.(decimal.Decimal); ok && j < len(amounts) {
				amounts[j] = true
				totals[j] = totals[j].Add(dec)
				cells[j] = dec.InexactFloat64()
				continue
			}
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(max(len(ex.Columns), 1))
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", last, defaultWidth); err != nil {
		return nil, err
	}

	if len(ex.Rows) > 0 {
		if err := writeTotals(f, sheet, len(ex.Rows)+2, amounts, totals); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTotals(f *excelize.File, sheet string, rowNum int, amounts []bool, totals []decimal.Decimal) error {
	amount, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	boldAmount, err := f.NewStyle(&excelize.Style{NumFmt: amountNumFmt, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	row := make([]any, len(amounts))
	for j, isAmount := range amounts {
		if !isAmount {
			continue
		}
		row[j] = totals[j].InexactFloat64()
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, rowNum-1), amount); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s%d", col, rowNum), fmt.Sprintf("%s%d", col, rowNum), boldAmount); err != nil {
			return err
		}
	}
	if len(row) > 0 && !amounts[0] {
		row[0] = totalRowLabel
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &row)
}

// SheetName derives a worksheet title from the export label, within the
// Excel limits
func SheetName(t report.ExportType) string {
	name := string(t)
	for _, info := range report.ExportTypes {
		if info.Value == t {
			name = info.Label
		}
	}
	name = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ").Replace(name)
	if r := []rune(name); len(r) > maxSheetName {
		name = strings.TrimSpace(string(r[:maxSheetName]))
	}
	return name
}
