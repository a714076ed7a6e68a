package frame

// Concat stacks tables row-wise.
//
// The result has the union of all columns, in order of first appearance.
// Rows from a table lacking a column are null in that column. Column kinds
// are unified across tables (see UnifyKinds). Concat of nothing is an
// empty table.
func Concat(tables ...*Table) *Table {
	var (
		names []string
		kinds = make(map[string]Kind)
		total int
	)
	for _, t := range tables {
		if t == nil {
			continue
		}
		total += t.NumRows()
		for _, c := range t.cols {
			k, seen := kinds[c.Name]
			if !seen {
				names = append(names, c.Name)
				kinds[c.Name] = c.Kind
				continue
			}
			kinds[c.Name] = UnifyKinds(k, c.Kind)
		}
	}

	out := New(total)
	for _, name := range names {
		cells := make([]Cell, 0, total)
		for _, t := range tables {
			if t == nil {
				continue
			}
			if c, ok := t.Column(name); ok {
				cells = append(cells, c.Cells...)
				continue
			}
			cells = append(cells, make([]Cell, t.NumRows())...)
		}
		out.index[name] = len(out.cols)
		out.cols = append(out.cols, &Column{Name: name, Kind: kinds[name], Cells: cells})
	}
	return out
}
