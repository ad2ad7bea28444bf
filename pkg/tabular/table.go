// Package tabular holds the in-memory table the reshaper works on together
// with the CSV and spreadsheet codecs that fill and drain it.
package tabular

import (
	"fmt"
	"strings"
)

// Table is an ordered set of named columns. Every row holds exactly
// len(Columns) cells; an empty string marks a missing value.
type Table struct {
	Columns []string
	Rows    [][]string
}

func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, fitRow(row, len(columns)))
	}
	return t
}

func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the first column called name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Select builds a new table from the given columns in the given order.
// It reports the first column that is not present.
func (t *Table) Select(columns []string) (*Table, error) {
	idx := make([]int, len(columns))
	for i, name := range columns {
		j := t.ColumnIndex(name)
		if j < 0 {
			return nil, &ColumnNotFoundError{Column: name}
		}
		idx[i] = j
	}
	out := &Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for r, row := range t.Rows {
		cells := make([]string, len(idx))
		for i, j := range idx {
			cells[i] = row[j]
		}
		out.Rows[r] = cells
	}
	return out, nil
}

// Rename replaces column names using mapping. Names absent from mapping are kept.
func (t *Table) Rename(mapping map[string]string) {
	for i, c := range t.Columns {
		if to, ok := mapping[c]; ok {
			t.Columns[i] = to
		}
	}
}

// Concat appends the rows of other below t. Both tables must carry the same
// columns in the same order.
func (t *Table) Concat(other *Table) error {
	if len(t.Columns) != len(other.Columns) {
		return fmt.Errorf("concat: column count mismatch: %d != %d", len(t.Columns), len(other.Columns))
	}
	for i := range t.Columns {
		if t.Columns[i] != other.Columns[i] {
			return fmt.Errorf("concat: column %d mismatch: %q != %q", i, t.Columns[i], other.Columns[i])
		}
	}
	t.Rows = append(t.Rows, other.Rows...)
	return nil
}

// Filter keeps the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Head returns a table with at most n leading rows. The rows are shared.
func (t *Table) Head(n int) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    t.Rows[:n],
	}
}

// Records returns every row keyed by column name.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, c := range t.Columns {
			rec[c] = row[i]
		}
		out = append(out, rec)
	}
	return out
}

// IsEmpty reports whether a cell counts as a missing value.
func IsEmpty(v string) bool {
	return strings.TrimSpace(v) == ""
}

type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column not found: %s", e.Column)
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
