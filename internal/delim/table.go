package delim

import (
	"fmt"
	"strconv"
)

// Table is a fully materialized source.
type Table struct {
	Dialect  Dialect
	Header   []string
	Preamble string
	Rows     []Row
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the widest of the header and every row.
func (t *Table) Width() int {
	w := len(t.Header)
	for _, row := range t.Rows {
		w = max(w, len(row))
	}
	return w
}

// ColumnName returns the header label for col, or column_N (1-based) when the
// table has no header or the header is shorter than the row.
func (t *Table) ColumnName(col int) string {
	if col >= 0 && col < len(t.Header) && t.Header[col] != "" {
		return t.Header[col]
	}
	return "column_" + strconv.Itoa(col+1)
}

// ColumnNames returns a name for every column up to Width.
func (t *Table) ColumnNames() []string {
	names := make([]string, t.Width())
	for i := range names {
		names[i] = t.ColumnName(i)
	}
	return names
}

// Cell returns the cell at row, col. A short row yields an absent cell.
func (t *Table) Cell(row, col int) (Cell, error) {
	if row < 0 || row >= len(t.Rows) {
		return Cell{}, fmt.Errorf("%w: %d", ErrInvalidRow, row)
	}
	if col < 0 || col >= t.Width() {
		return Cell{}, fmt.Errorf("%w: %d", ErrInvalidColumn, col)
	}
	return t.Rows[row].Get(col), nil
}

// Column returns the index of the header label name, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
