package frame

// RenameColumns returns a table with columns renamed through mapping.
// Names absent from mapping are kept.
//
// When several columns end up under the same name they are merged into one
// column at the position of the first of them. A column that already had
// that name and is not being renamed is the primary one; otherwise the first
// in table order is. The remaining columns, in table order, fill the
// primary's nulls. The merged kind is unified across members.
func (t *Table) RenameColumns(mapping map[string]string) *Table {
	if len(mapping) == 0 {
		return t
	}

	target := func(name string) string {
		if to, ok := mapping[name]; ok && to != "" {
			return to
		}
		return name
	}

	var order []string
	groups := make(map[string][]*Column)
	for _, c := range t.cols {
		to := target(c.Name)
		if _, seen := groups[to]; !seen {
			order = append(order, to)
		}
		groups[to] = append(groups[to], c)
	}

	out := New(t.nrows)
	for _, name := range order {
		out.index[name] = len(out.cols)
		out.cols = append(out.cols, coalesce(name, groups[name]))
	}
	return out
}

// coalesce merges the members of a rename group into one column.
func coalesce(name string, members []*Column) *Column {
	if len(members) == 1 {
		if members[0].Name == name {
			return members[0]
		}
		return members[0].withName(name)
	}

	primary := 0
	for i, c := range members {
		if c.Name == name {
			primary = i
			break
		}
	}

	kind := members[primary].Kind
	cells := make([]Cell, len(members[primary].Cells))
	copy(cells, members[primary].Cells)
	for i, c := range members {
		if i == primary {
			continue
		}
		kind = UnifyKinds(kind, c.Kind)
		for r, cell := range c.Cells {
			if !cells[r].Valid && cell.Valid {
				cells[r] = cell
			}
		}
	}
	return &Column{Name: name, Kind: kind, Cells: cells}
}
