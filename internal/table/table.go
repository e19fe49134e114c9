// Package table loads CSV and XLSX tables into memory and coerces their
// columns to numeric values.
package table

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Table is an in-memory table with a header row. Cell values are kept as
// strings; numeric access goes through Coerce.
type Table struct {
	source string
	header []string
	rows   [][]string
	colIdx map[string]int
}

// New builds a Table from a header and data rows. Header names are trimmed;
// when a name repeats, the first occurrence wins.
func New(source string, header []string, rows [][]string) *Table {
	t := &Table{
		source: source,
		header: make([]string, len(header)),
		rows:   rows,
		colIdx: make(map[string]int, len(header)),
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		t.header[i] = col
		if _, dup := t.colIdx[col]; !dup {
			t.colIdx[col] = i
		}
	}
	return t
}

// Source returns the path or name the table was loaded from.
func (t *Table) Source() string { return t.source }

// Columns returns the header names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Has reports whether the table has the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.colIdx[col]
	return ok
}

// Require returns a *MissingColumnError naming every absent column.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, col := range cols {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Source: t.source, Columns: missing}
	}
	return nil
}

// String returns the trimmed cell at (row, col), or "" when the column is
// absent or the row is short.
func (t *Table) String(row int, col string) string {
	idx, ok := t.colIdx[col]
	if !ok || row < 0 || row >= len(t.rows) || idx >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][idx])
}

// Float returns the cell at (row, col) coerced to a number.
func (t *Table) Float(row int, col string) float64 {
	return Coerce(t.String(row, col))
}

// Floats returns the named column coerced to numbers. An absent column
// yields a slice of NaN.
func (t *Table) Floats(col string) []float64 {
	out := make([]float64, len(t.rows))
	for i := range t.rows {
		out[i] = t.Float(i, col)
	}
	return out
}

// Coerce parses s as a float. Empty and non-numeric cells become NaN;
// "inf", "-inf" and "nan" keep their IEEE meaning.
func Coerce(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// ParseFloat reports overflow as ±Inf alongside ErrRange.
		if errors.Is(err, strconv.ErrRange) {
			return v
		}
		return math.NaN()
	}
	return v
}
