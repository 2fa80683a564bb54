package table

import "strings"

// Column is a named sequence of text cells with a null mask.
// A cell is null when the source had no value at all (an empty CSV field).
type Column struct {
	name   string
	values []string
	valid  []bool
}

// NewColumn creates a column where every cell is valid.
func NewColumn(name string, values []string) *Column {
	valid := make([]bool, len(values))
	for i := range valid {
		valid[i] = true
	}
	return &Column{name: name, values: append([]string(nil), values...), valid: valid}
}

// NewNullableColumn creates a column from values and a validity mask.
// A nil mask marks empty strings as null, which is how delimited input is read.
func NewNullableColumn(name string, values []string, valid []bool) *Column {
	vals := append([]string(nil), values...)
	mask := make([]bool, len(vals))
	for i, v := range vals {
		if valid == nil {
			mask[i] = v != ""
			continue
		}
		if i < len(valid) {
			mask[i] = valid[i]
		}
		if !mask[i] {
			vals[i] = ""
		}
	}
	return &Column{name: name, values: vals, valid: mask}
}

// Name returns the column name
func (c *Column) Name() string {
	return c.name
}

// Len returns the number of cells
func (c *Column) Len() int {
	return len(c.values)
}

// Value returns the raw cell text; null cells return "".
func (c *Column) Value(i int) string {
	return c.values[i]
}

// IsNull reports whether the cell has no value.
func (c *Column) IsNull(i int) bool {
	return !c.valid[i]
}

// IsBlank reports whether the cell is null or only whitespace.
func (c *Column) IsBlank(i int) bool {
	return !c.valid[i] || strings.TrimSpace(c.values[i]) == ""
}

// Set stores a value and marks the cell valid.
func (c *Column) Set(i int, v string) {
	c.values[i] = v
	c.valid[i] = true
}

// SetNull clears the cell.
func (c *Column) SetNull(i int) {
	c.values[i] = ""
	c.valid[i] = false
}

// Values returns a copy of the cell texts.
func (c *Column) Values() []string {
	return append([]string(nil), c.values...)
}

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Map replaces every cell with fn(value, null). The returned string is
// stored as a valid cell unless keep is false, in which case the cell is nulled.
func (c *Column) Map(fn func(value string, null bool) (string, bool)) {
	for i := range c.values {
		v, keep := fn(c.values[i], !c.valid[i])
		if keep {
			c.Set(i, v)
		} else {
			c.SetNull(i)
		}
	}
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	cp := c.clone()
	cp.name = name
	return cp
}

func (c *Column) clone() *Column {
	return &Column{
		name:   c.name,
		values: append([]string(nil), c.values...),
		valid:  append([]bool(nil), c.valid...),
	}
}
