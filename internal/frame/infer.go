package frame

// InferKind picks the narrowest kind that holds every valid cell:
// int if all are integers, float if all are numeric, text otherwise.
// A column with no valid cells is text.
func InferKind(cells []Cell) Kind {
	kind := KindInt
	seen := false
	for _, c := range cells {
		if !c.Valid {
			continue
		}
		seen = true
		if kind == KindInt && IsInteger(c.String) {
			continue
		}
		if IsNumeric(c.String) {
			kind = KindFloat
			continue
		}
		return KindText
	}
	if !seen {
		return KindText
	}
	return kind
}

// InferKinds returns a table where every column's kind has been inferred
// from its cells.
func InferKinds(t *Table) *Table {
	out := t.clone()
	for i, c := range out.cols {
		if k := InferKind(c.Cells); k != c.Kind {
			out.cols[i] = &Column{Name: c.Name, Kind: k, Cells: c.Cells}
		}
	}
	return out
}

// UnifyKinds returns the kind able to represent values of both a and b.
func UnifyKinds(a, b Kind) Kind {
	switch {
	case a == b:
		return a
	case a == KindText || b == KindText:
		return KindText
	default:
		// int and float
		return KindFloat
	}
}
