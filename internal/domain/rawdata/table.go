// Package rawdata reads the wide-format measurement table produced by the
// instrument export: one row per (reactor, time) observation.
package rawdata

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/okian/growtho/internal/domain/model"
)

// TableRaw is the table name used in schema violations raised here.
const TableRaw = "raw"

// Table is an in-memory wide-format table with named columns.
type Table struct {
	header []string
	index  map[string]int
	rows   [][]string
}

// New builds a Table from a header and rows. Every row must have exactly one
// cell per header column and column names must be unique.
func New(header []string, rows [][]string) (*Table, error) {
	t := &Table{header: append([]string(nil), header...), index: make(map[string]int, len(header))}
	for i, h := range t.header {
		if _, dup := t.index[h]; dup {
			return nil, model.Violation(TableRaw, "unique_columns", "column %q repeated", h)
		}
		t.index[h] = i
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return nil, model.Violation(TableRaw, "row_width", "row %d has %d cells, want %d", i, len(r), len(header))
		}
	}
	t.rows = rows
	return t, nil
}

// ReadCSV parses a CSV stream whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, model.Violation(TableRaw, "header", "empty input")
	}
	header := records[0]
	if len(header) > 0 {
		// strip a UTF-8 BOM left by spreadsheet exports
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return New(header, records[1:])
}

// ReadFile opens path and parses it with ReadCSV. File errors are returned as-is.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the header.
func (t *Table) Columns() []string { return append([]string(nil), t.header...) }

// HasColumn reports whether col is present.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// RequireColumns fails with a schema violation naming the first missing column.
func (t *Table) RequireColumns(cols ...string) error {
	for _, c := range cols {
		if !t.HasColumn(c) {
			return model.Violation(TableRaw, "required_column", "missing column %q", c)
		}
	}
	return nil
}

// String returns the raw cell at (row, col).
func (t *Table) String(row int, col string) (string, error) {
	i, ok := t.index[col]
	if !ok {
		return "", model.Violation(TableRaw, "required_column", "missing column %q", col)
	}
	if row < 0 || row >= len(t.rows) {
		return "", model.Violation(TableRaw, "row_range", "row %d out of range", row)
	}
	return t.rows[row][i], nil
}

// Float parses the cell at (row, col). An empty cell is a missing reading and
// yields NaN.
func (t *Table) Float(row int, col string) (float64, error) {
	s, err := t.String(row, col)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			err = numErr.Err
		}
		return 0, model.Violation(TableRaw, "float_column", "row %d column %q value %q: %v", row, col, s, err)
	}
	return v, nil
}

// Floats parses a whole column with Float.
func (t *Table) Floats(col string) ([]float64, error) {
	out := make([]float64, t.Len())
	for i := range out {
		v, err := t.Float(i, col)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
