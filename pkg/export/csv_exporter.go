package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrNoColumns is returned when a dataset has no headers to render.
var ErrNoColumns = errors.New("dataset has no columns")

// Dataset is a table of string cells. Each row holds one value per header,
// in header order.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// Append adds a row, padding or truncating values to the header width.
func (d *Dataset) Append(values ...string) {
	row := make([]string, len(d.Headers))
	copy(row, values)
	d.Rows = append(d.Rows, row)
}

// Cell returns the value at row i, column j, or "" when out of range.
func (d *Dataset) Cell(i, j int) string {
	if i < 0 || i >= len(d.Rows) || j < 0 || j >= len(d.Rows[i]) {
		return ""
	}
	return d.Rows[i][j]
}

// CSVExporter renders datasets as RFC 4180 CSV preceded by a UTF-8 byte
// order mark, which spreadsheet tools need to read non-ASCII faculty names.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Write streams the dataset to w.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if len(data.Headers) == 0 {
		return ErrNoColumns
	}
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(data.Headers); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	record := make([]string, len(data.Headers))
	for i := range data.Rows {
		for j := range record {
			record[j] = data.Cell(i, j)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Render returns the CSV encoding of data.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
