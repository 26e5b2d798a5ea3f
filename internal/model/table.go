package model

import "strings"

// Row is one record, aligned to its Table's columns.
type Row []Cell

// Key returns a string that is equal for two rows exactly when every cell is equal.
func (r Row) Key() string {
	parts := make([]string, len(r))
	for i, c := range r {
		parts[i] = c.key()
	}
	return strings.Join(parts, "\x1f")
}

// HasNull reports whether any cell in the row is null.
func (r Row) HasNull() bool {
	for _, c := range r {
		if c.IsNull() {
			return true
		}
	}
	return false
}

// Table is an ordered collection of rows sharing a fixed column schema.
type Table struct {
	Columns []string
	Rows    []Row
}

// ColumnCount pairs a column name with a count, in column order.
type ColumnCount struct {
	Column string
	Count  int
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy: no slice is shared with t.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append(Row(nil), r...)
	}
	return out
}

// Equal reports whether both tables have the same columns and the same cells
// in the same order.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if !t.Rows[i][j].Equal(o.Rows[i][j]) {
				return false
			}
		}
	}
	return true
}

// Records renders every row as strings, nulls as "".
func (t *Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(r))
		for j, c := range r {
			rec[j] = c.String()
		}
		out[i] = rec
	}
	return out
}

// NullCounts scans every cell and counts nulls per column.
func (t *Table) NullCounts() []ColumnCount {
	counts := make([]ColumnCount, len(t.Columns))
	for i, c := range t.Columns {
		counts[i].Column = c
	}
	for _, r := range t.Rows {
		for j, c := range r {
			if j < len(counts) && c.IsNull() {
				counts[j].Count++
			}
		}
	}
	return counts
}

// RowsWithNull returns a new table holding copies of the rows that contain a null.
func (t *Table) RowsWithNull() *Table {
	out := NewTable(t.Columns)
	for _, r := range t.Rows {
		if r.HasNull() {
			out.Rows = append(out.Rows, append(Row(nil), r...))
		}
	}
	return out
}
