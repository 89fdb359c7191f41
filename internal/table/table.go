package table

import (
	"errors"
	"math"

	"github.com/rotisserie/eris"
)

// ErrInvalidTable marks a table that violates the shape invariants
// (ragged columns or duplicate names).
var ErrInvalidTable = errors.New("invalid table")

// ColumnType is the semantic type inferred once per column.
type ColumnType int

const (
	Numeric ColumnType = iota
	Boolean
	Datetime
	Text
)

func (t ColumnType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Boolean:
		return "boolean"
	case Datetime:
		return "datetime"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Base type names reported in the column type map.
const (
	DTypeInt    = "int64"
	DTypeFloat  = "float64"
	DTypeBool   = "bool"
	DTypeObject = "object"
)

// Column is a named, typed column. Numeric columns carry their values in
// Nums (NaN where missing); every other type keeps the raw strings in Strs.
// Null marks missing cells for all types.
type Column struct {
	Name  string
	Type  ColumnType
	DType string
	Nums  []float64
	Strs  []string
	Null  []bool
}

// Len returns the number of cells in the column.
func (c *Column) Len() int { return len(c.Null) }

// IsNumeric reports whether the column belongs to the numeric subset.
func (c *Column) IsNumeric() bool { return c.Type == Numeric }

// Missing counts null cells.
func (c *Column) Missing() int {
	n := 0
	for _, null := range c.Null {
		if null {
			n++
		}
	}
	return n
}

// NonMissing returns the non-null values of a numeric column in row order.
func (c *Column) NonMissing() []float64 {
	if c.Type != Numeric {
		return nil
	}
	out := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if c.Null[i] || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Present returns the non-null raw values of a non-numeric column in row order.
func (c *Column) Present() []string {
	out := make([]string, 0, len(c.Strs))
	for i, s := range c.Strs {
		if c.Null[i] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Table is an ordered set of equally long named columns.
type Table struct {
	Name    string
	Columns []*Column
}

// New assembles a table and checks its invariants.
func New(name string, cols ...*Column) (*Table, error) {
	t := &Table{Name: name, Columns: cols}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that all columns have the same row count and that names are unique.
func (t *Table) Validate() error {
	if t == nil {
		return eris.Wrap(ErrInvalidTable, "table: nil")
	}
	seen := make(map[string]struct{}, len(t.Columns))
	rows := -1
	for i, c := range t.Columns {
		if c == nil {
			return eris.Wrapf(ErrInvalidTable, "table: column %d is nil", i)
		}
		if _, dup := seen[c.Name]; dup {
			return eris.Wrapf(ErrInvalidTable, "table: duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Type == Numeric && len(c.Nums) != len(c.Null) {
			return eris.Wrapf(ErrInvalidTable, "table: column %q has %d values for %d cells", c.Name, len(c.Nums), len(c.Null))
		}
		if c.Type != Numeric && len(c.Strs) != len(c.Null) {
			return eris.Wrapf(ErrInvalidTable, "table: column %q has %d values for %d cells", c.Name, len(c.Strs), len(c.Null))
		}
		if rows >= 0 && c.Len() != rows {
			return eris.Wrapf(ErrInvalidTable, "table: column %q has %d rows, expected %d", c.Name, c.Len(), rows)
		}
		rows = c.Len()
	}
	return nil
}

// Rows returns the shared row count.
func (t *Table) Rows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.Columns) }

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// Numeric returns the numeric subset in left-to-right column order.
func (t *Table) Numeric() []*Column {
	var out []*Column
	for _, c := range t.Columns {
		if c.IsNumeric() {
			out = append(out, c)
		}
	}
	return out
}

// NumericColumn builds a numeric column from values; NaN entries are missing.
func NumericColumn(name string, vals []float64) *Column {
	c := &Column{Name: name, Type: Numeric, DType: DTypeFloat, Nums: make([]float64, len(vals)), Null: make([]bool, len(vals))}
	integral := true
	for i, v := range vals {
		c.Nums[i] = v
		if math.IsNaN(v) {
			c.Null[i] = true
			integral = false
			continue
		}
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			integral = false
		}
	}
	if integral && len(vals) > 0 {
		c.DType = DTypeInt
	}
	return c
}

// TextColumn builds a text column; empty strings are missing.
func TextColumn(name string, vals []string) *Column {
	c := &Column{Name: name, Type: Text, DType: DTypeObject, Strs: make([]string, len(vals)), Null: make([]bool, len(vals))}
	for i, v := range vals {
		c.Strs[i] = v
		c.Null[i] = v == ""
	}
	return c
}
