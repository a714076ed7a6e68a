// Package frame provides the in-memory tabular structure the dataset build
// passes between stages.
//
// A Table is an ordered collection of named columns of equal length. Every
// cell keeps the raw text it was read from, plus a validity flag for nulls,
// so changing a column's kind never loses information: a zero-padded
// identifier stays zero-padded when the column is later treated as text.
//
// Tables are values in a pipeline. Every operation returns a new Table and
// leaves its inputs untouched; columns may be shared between tables and
// must not be modified once they belong to one.
package frame

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Cell is a nullable raw value. Valid=false marks a null.
type Cell = pgtype.Text

// Null is the null cell.
var Null = Cell{}

// Kind is the logical type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.Cells)
}

// withName returns a shallow copy of the column under another name.
func (c *Column) withName(name string) *Column {
	return &Column{Name: name, Kind: c.Kind, Cells: c.Cells}
}

// Table is an ordered set of equal-length columns.
type Table struct {
	cols  []*Column
	index map[string]int
	nrows int
}

// New returns an empty table with the given number of rows and no columns.
func New(nrows int) *Table {
	return &Table{index: make(map[string]int), nrows: nrows}
}

// Empty returns a table with zero rows and zero columns.
func Empty() *Table {
	return New(0)
}

// FromColumns builds a table from columns, which must all have the same
// length and distinct names.
func FromColumns(cols ...*Column) (*Table, error) {
	nrows := 0
	if len(cols) > 0 {
		nrows = cols[0].Len()
	}
	t := New(nrows)
	for _, c := range cols {
		if err := t.add(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// MustFromColumns is like FromColumns but panics on error.
// Intended for tests and static fixtures.
func MustFromColumns(cols ...*Column) *Table {
	t, err := FromColumns(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// TextColumn builds a text column from raw strings; empty strings are null.
func TextColumn(name string, values ...string) *Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		if v != "" {
			cells[i] = Cell{String: v, Valid: true}
		}
	}
	return &Column{Name: name, Kind: KindText, Cells: cells}
}

// add appends a column, enforcing the length and uniqueness invariants.
func (t *Table) add(c *Column) error {
	if c.Len() != t.nrows {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.nrows)
	}
	if _, exists := t.index[c.Name]; exists {
		return fmt.Errorf("duplicate column %q", c.Name)
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// clone returns a table sharing the same columns.
func (t *Table) clone() *Table {
	out := &Table{
		cols:  make([]*Column, len(t.cols)),
		index: make(map[string]int, len(t.index)),
		nrows: t.nrows,
	}
	copy(out.cols, t.cols)
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return t.nrows
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns the columns in order. The slice is a copy; the columns
// themselves must be treated as read-only.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Has reports whether the table has a column with the given name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Value returns the cell at (row, column). Unknown columns read as null.
func (t *Table) Value(row int, name string) Cell {
	c, ok := t.Column(name)
	if !ok || row < 0 || row >= t.nrows {
		return Null
	}
	return c.Cells[row]
}

// WithColumn returns a table where c replaces the column of the same name,
// or is appended if no such column exists.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	if c.Len() != t.nrows {
		return nil, fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.nrows)
	}
	out := t.clone()
	if i, ok := out.index[c.Name]; ok {
		out.cols[i] = c
		return out, nil
	}
	if err := out.add(c); err != nil {
		return nil, err
	}
	return out, nil
}

// WithConstant sets column name to the same value on every row.
func (t *Table) WithConstant(name, value string, kind Kind) *Table {
	cells := make([]Cell, t.nrows)
	for i := range cells {
		cells[i] = Cell{String: value, Valid: true}
	}
	out, _ := t.WithColumn(&Column{Name: name, Kind: kind, Cells: cells})
	return out
}

// WithKind returns a table where the named columns carry the given kind.
// Cells are kept as-is. Missing columns are ignored.
func (t *Table) WithKind(kind Kind, names ...string) *Table {
	out := t.clone()
	for _, name := range names {
		i, ok := out.index[name]
		if !ok || out.cols[i].Kind == kind {
			continue
		}
		c := out.cols[i]
		out.cols[i] = &Column{Name: c.Name, Kind: kind, Cells: c.Cells}
	}
	return out
}

// MapCells returns a table where fn has been applied to every valid cell of
// the named column, which also takes the given kind. Null cells stay null.
// A missing column returns the table unchanged.
func (t *Table) MapCells(name string, kind Kind, fn func(string) string) *Table {
	i, ok := t.index[name]
	if !ok {
		return t
	}
	src := t.cols[i]
	cells := make([]Cell, len(src.Cells))
	for r, cell := range src.Cells {
		if cell.Valid {
			cells[r] = Cell{String: fn(cell.String), Valid: true}
		}
	}
	out := t.clone()
	out.cols[i] = &Column{Name: name, Kind: kind, Cells: cells}
	return out
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	if len(names) == 0 {
		return t
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := New(t.nrows)
	for _, c := range t.cols {
		if drop[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// DropFunc returns a table without the columns whose name satisfies fn,
// along with the names that were dropped.
func (t *Table) DropFunc(fn func(name string) bool) (*Table, []string) {
	var dropped []string
	for _, c := range t.cols {
		if fn(c.Name) {
			dropped = append(dropped, c.Name)
		}
	}
	return t.Drop(dropped...), dropped
}

// String renders a short description, useful in test failures and logs.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table{rows: %d, cols: [", t.nrows)
	for i, c := range t.cols {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s:%s", c.Name, c.Kind)
	}
	b.WriteString("]}")
	return b.String()
}
