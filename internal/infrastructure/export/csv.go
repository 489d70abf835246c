// Package export encodes accounting exports as files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/report"
	"github.com/shopspring/decimal"
)

// utf8BOM makes spreadsheet software detect the encoding of accented names
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVEncoder writes semicolon separated files with decimal commas, the
// layout French locale spreadsheets open without an import wizard
type CSVEncoder struct {
	delimiter rune
}

// NewCSVEncoder creates a new CSVEncoder
func NewCSVEncoder() *CSVEncoder {
	return &CSVEncoder{delimiter: ';'}
}

// ContentType returns the MIME type of the files
func (e *CSVEncoder) ContentType() string { return "text/csv; charset=utf-8" }

// Extension returns the file extension
func (e *CSVEncoder) Extension() string { return ".csv" }

// Encode writes the header row then one line per record
func (e *CSVEncoder) Encode(ex *report.Export) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = e.delimiter
	if err := w.Write(ex.Columns); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(ex.Columns))
	for i, row := range ex.Rows {
		if len(row) != len(ex.Columns) {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i+1, len(row), len(ex.Columns))
		}
		for j, v := range row {
			record[j] = csvValue(v)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case decimal.Decimal:
		return strings.Replace(x.StringFixed(2), ".", ",", 1)
	default:
		return fmt.Sprint(x)
	}
}
