// Package table defines the in-memory tabular representation shared by the
// decoders, the casting engine, the encoders and the sinks. A Table is an
// ordered sequence of named columns; values within a column are held as []any
// with nil as the universal null marker.
//
// Raw tables (as produced by a decoder) typically hold strings; typed tables
// (as produced by the caster) hold the Go value matching each column's
// declared category: bool, sized ints/uints, float32/float64,
// decimal.Decimal, string, civil.Date, civil.Time, civil.DateTime, int64
// epoch ticks or []byte.
package table

import "fmt"

// Column is a single named column. Values uses nil to represent null.
type Column struct {
	Name   string
	Values []any
}

// Table is an ordered collection of columns. Column order is insertion
// order; names are matched case-sensitively.
type Table struct {
	Cols []Column
}

// New constructs an empty table with capacity for n columns.
func New(n int) *Table {
	return &Table{Cols: make([]Column, 0, n)}
}

// AddColumn appends a column. It does not check name uniqueness; callers
// building tables from decoder output are expected to have resolved
// duplicate headers already.
func (t *Table) AddColumn(name string, values []any) {
	t.Cols = append(t.Cols, Column{Name: name, Values: values})
}

// NumRows returns the row count, taken from the first column. An empty
// table has zero rows.
func (t *Table) NumRows() int {
	if len(t.Cols) == 0 {
		return 0
	}
	return len(t.Cols[0].Values)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Cols))
	for i, c := range t.Cols {
		out[i] = c.Name
	}
	return out
}

// Column returns the column with the given name and true, or a zero Column
// and false when absent.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Cols {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks that the table is rectangular: every column has the same
// number of values.
func (t *Table) Validate() error {
	if len(t.Cols) == 0 {
		return nil
	}
	n := len(t.Cols[0].Values)
	for _, c := range t.Cols[1:] {
		if len(c.Values) != n {
			return fmt.Errorf("table not rectangular: column %q has %d rows, column %q has %d",
				t.Cols[0].Name, n, c.Name, len(c.Values))
		}
	}
	return nil
}

// CloneColumn returns a copy of c with its own backing slice, so the caster
// can hand out pass-through columns without aliasing the source table.
func CloneColumn(c Column) Column {
	vals := make([]any, len(c.Values))
	copy(vals, c.Values)
	return Column{Name: c.Name, Values: vals}
}

// Clone deep-copies the column structure. Individual values are shared;
// they are treated as immutable throughout the pipeline.
func (t *Table) Clone() *Table {
	out := New(len(t.Cols))
	for _, c := range t.Cols {
		out.Cols = append(out.Cols, CloneColumn(c))
	}
	return out
}

// Row materializes row i as a name-keyed map. Intended for encoders and
// sinks that are row oriented; the caster never uses it.
func (t *Table) Row(i int) map[string]any {
	m := make(map[string]any, len(t.Cols))
	for _, c := range t.Cols {
		m[c.Name] = c.Values[i]
	}
	return m
}
