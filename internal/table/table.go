// Package table provides the in-memory tabular model the pipelines mutate:
// an ordered set of equally long text columns with per-cell null tracking.
package table

import (
	"fmt"
	"strings"

	"github.com/paveg/scrub/internal/errors"
)

// Table represents an ordered collection of columns of equal length
type Table struct {
	columns []*Column
	index   map[string]int
}

// New creates a table from columns. All columns must have the same length
// and unique names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromRows builds a table from a header and row-major records. Short rows
// are padded with nulls; empty fields become nulls.
func FromRows(header []string, rows [][]string) (*Table, error) {
	cols := make([]*Column, len(header))
	for j, name := range header {
		values := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				values[i] = row[j]
			}
		}
		cols[j] = NewNullableColumn(name, values, nil)
	}
	return New(cols...)
}

// Columns returns the names of all columns in order
func (t *Table) Columns() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
	}
	return names
}

// Len returns the number of rows
func (t *Table) Len() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.columns)
}

// HasColumn returns true if the table has the given column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// Lookup returns the named column or a column-not-found error tagged with op.
func (t *Table) Lookup(op, name string) (*Column, error) {
	c, ok := t.Column(name)
	if !ok {
		return nil, errors.NewColumnNotFoundErrorWithAvailable(op, name, t.Columns())
	}
	return c, nil
}

// AddColumn appends a column, or replaces an existing column of the same name in place.
func (t *Table) AddColumn(c *Column) error {
	if len(t.columns) > 0 && c.Len() != t.Len() {
		return errors.NewValidationError("AddColumn", c.name,
			fmt.Sprintf("expected length %d, got %d", t.Len(), c.Len()))
	}
	if i, ok := t.index[c.name]; ok {
		t.columns[i] = c
		return nil
	}
	t.index[c.name] = len(t.columns)
	t.columns = append(t.columns, c)
	return nil
}

// Drop removes the named columns; unknown names are ignored.
func (t *Table) Drop(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.columns[:0]
	for _, c := range t.columns {
		if !drop[c.name] {
			kept = append(kept, c)
		}
	}
	t.columns = kept
	t.reindex()
}

// RenameColumns applies fn to every column name.
func (t *Table) RenameColumns(fn func(string) string) error {
	renamed := make([]*Column, len(t.columns))
	seen := make(map[string]bool, len(t.columns))
	for i, c := range t.columns {
		name := fn(c.name)
		if seen[name] {
			return errors.NewValidationError("RenameColumns", name, "duplicate column name after rename")
		}
		seen[name] = true
		renamed[i] = c.Rename(name)
	}
	t.columns = renamed
	t.reindex()
	return nil
}

// Row returns the cell texts of row i in column order.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, c := range t.columns {
		row[j] = c.values[i]
	}
	return row
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cp := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.columns)),
	}
	for i, c := range t.columns {
		cp.columns[i] = c.clone()
		cp.index[c.name] = i
	}
	return cp
}

// Filter returns a new table holding only the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	var rows []int
	for i := range t.Len() {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Take(rows)
}

// Take returns a new table with the given rows, in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{
		columns: make([]*Column, len(t.columns)),
		index:   make(map[string]int, len(t.columns)),
	}
	for j, c := range t.columns {
		nc := &Column{name: c.name, values: make([]string, len(rows)), valid: make([]bool, len(rows))}
		for k, r := range rows {
			nc.values[k] = c.values[r]
			nc.valid[k] = c.valid[r]
		}
		out.columns[j] = nc
		out.index[c.name] = j
	}
	return out
}

// String returns a short description of the table.
func (t *Table) String() string {
	return fmt.Sprintf("Table[%dx%d](%s)", t.Len(), t.Width(), strings.Join(t.Columns(), ", "))
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.columns))
	for i, c := range t.columns {
		t.index[c.name] = i
	}
}
