package core

import (
	"sort"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// Combine concatenates the per-year tables in ascending year order. Columns
// missing from a year are null for its rows. No years yield an empty table.
func Combine(years map[int]*frame.Table) *frame.Table {
	if len(years) == 0 {
		return frame.Empty()
	}

	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Ints(keys)

	tables := make([]*frame.Table, 0, len(keys))
	for _, y := range keys {
		tables = append(tables, years[y])
	}
	return frame.Concat(tables...)
}
