package frame

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingKey is returned when a join key column is absent from one side.
	ErrMissingKey = errors.New("join key column missing")

	// ErrColumnOverlap is returned when both sides share a non-key column
	// and no suffix distinguishes them.
	ErrColumnOverlap = errors.New("columns overlap but no suffix specified")
)

// keySep separates key parts in the hash table key. It cannot appear in
// text read from a CSV field without being escaped by the writer.
const keySep = "\x1f"

// JoinOptions configures LeftJoin.
type JoinOptions struct {
	// On lists the key columns, which must exist on both sides.
	On []string

	// Suffixes are appended to overlapping non-key column names on the
	// left and right side respectively. An empty suffix keeps the name.
	Suffixes [2]string
}

// LeftJoin joins right onto left on equal key values.
//
// Every left row is kept, in order. A left row matching several right rows
// is repeated once per match, in right-side order; a left row matching none
// gets nulls in the right-side columns. Rows with a null in any key never
// match. Key columns appear once, with the left side's values.
//
// The right side is hashed (build phase) and the left side probes it, so the
// cost is linear in the size of both inputs plus the output.
func LeftJoin(left, right *Table, opts JoinOptions) (*Table, error) {
	if len(opts.On) == 0 {
		return nil, fmt.Errorf("left join: %w: no key columns", ErrMissingKey)
	}

	leftKeys, err := keyColumns(left, opts.On, "left")
	if err != nil {
		return nil, err
	}
	rightKeys, err := keyColumns(right, opts.On, "right")
	if err != nil {
		return nil, err
	}

	leftNames, rightNames, err := joinedNames(left, right, opts)
	if err != nil {
		return nil, err
	}

	// Build: right key -> right row indexes, in order.
	hash := make(map[string][]int, right.NumRows())
	for r := 0; r < right.NumRows(); r++ {
		if key, ok := rowKey(rightKeys, r); ok {
			hash[key] = append(hash[key], r)
		}
	}

	// Probe: one output row per (left, right) match, or (left, -1).
	leftIdx := make([]int, 0, left.NumRows())
	rightIdx := make([]int, 0, left.NumRows())
	for l := 0; l < left.NumRows(); l++ {
		key, ok := rowKey(leftKeys, l)
		matches := hash[key]
		if !ok || len(matches) == 0 {
			leftIdx = append(leftIdx, l)
			rightIdx = append(rightIdx, -1)
			continue
		}
		for _, r := range matches {
			leftIdx = append(leftIdx, l)
			rightIdx = append(rightIdx, r)
		}
	}

	out := New(len(leftIdx))
	for i, c := range left.cols {
		if err := out.add(gather(c, leftNames[i], leftIdx)); err != nil {
			return nil, fmt.Errorf("left join: %w", err)
		}
	}
	for i, c := range right.cols {
		if rightNames[i] == "" {
			continue
		}
		if err := out.add(gather(c, rightNames[i], rightIdx)); err != nil {
			return nil, fmt.Errorf("left join: %w", err)
		}
	}
	return out, nil
}

// keyColumns resolves the key columns of one side.
func keyColumns(t *Table, on []string, side string) ([]*Column, error) {
	cols := make([]*Column, len(on))
	for i, name := range on {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("left join: %w: %q on %s side", ErrMissingKey, name, side)
		}
		cols[i] = c
	}
	return cols, nil
}

// joinedNames computes the output name of every column of both sides.
// Right-side key columns get an empty name: they are not emitted.
func joinedNames(left, right *Table, opts JoinOptions) ([]string, []string, error) {
	isKey := make(map[string]bool, len(opts.On))
	for _, k := range opts.On {
		isKey[k] = true
	}

	leftNames := make([]string, left.NumCols())
	for i, c := range left.cols {
		leftNames[i] = c.Name
		if !isKey[c.Name] && right.Has(c.Name) {
			leftNames[i] = c.Name + opts.Suffixes[0]
		}
	}

	rightNames := make([]string, right.NumCols())
	for i, c := range right.cols {
		if isKey[c.Name] {
			continue
		}
		rightNames[i] = c.Name
		if left.Has(c.Name) {
			if opts.Suffixes[0] == "" && opts.Suffixes[1] == "" {
				return nil, nil, fmt.Errorf("left join: %w: %q", ErrColumnOverlap, c.Name)
			}
			rightNames[i] = c.Name + opts.Suffixes[1]
		}
	}
	return leftNames, rightNames, nil
}

// rowKey builds the hash key of row i. ok is false when any part is null.
func rowKey(keys []*Column, i int) (string, bool) {
	if len(keys) == 1 {
		c := keys[0].Cells[i]
		return c.String, c.Valid
	}
	parts := make([]string, len(keys))
	for k, col := range keys {
		c := col.Cells[i]
		if !c.Valid {
			return "", false
		}
		parts[k] = c.String
	}
	return strings.Join(parts, keySep), true
}

// gather builds a renamed column from the rows at idx; -1 yields null.
func gather(c *Column, name string, idx []int) *Column {
	cells := make([]Cell, len(idx))
	for i, r := range idx {
		if r >= 0 {
			cells[i] = c.Cells[r]
		}
	}
	return &Column{Name: name, Kind: c.Kind, Cells: cells}
}
