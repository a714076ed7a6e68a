// Package core provides the business logic for building the accident dataset.
// This package has no I/O surface beyond reading raw files and can be used by
// any entry point.
package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// YearPlaceholder is replaced by the four-digit year in filename patterns.
const YearPlaceholder = "{year}"

// Table kind keys.
const (
	TableCaracteristiques = "caracteristiques"
	TableLieux            = "lieux"
	TableVehicules        = "vehicules"
	TableUsagers          = "usagers"
)

// Well-known column names.
const (
	ColAccident     = "num_acc"
	ColAccidentAlt  = "accident_id"
	ColVehicle      = "id_vehicule"
	ColYear         = "annee_accident"
	ColVehicleNum   = "num_veh"
	ColVehicleNumX  = "num_veh_x"
	MappingYearKey  = "annee"
	MappingYearName = ColYear
)

// TableInfo contains descriptive information about a table kind.
type TableInfo struct {
	Key   string // Unique identifier: "usagers"
	Label string // Display name: "Persons"
	Order int    // Position in the join sequence; the lowest is the base table
}

// TableDefinition contains everything needed to load a table kind and join
// it into a year.
type TableDefinition struct {
	Info TableInfo

	// Patterns are candidate filenames relative to the raw directory, tried
	// in order; the first one that exists and parses wins. Each contains
	// YearPlaceholder.
	Patterns []string

	// Required tables must be present for a year to be assembled.
	Required bool

	// JoinKeys are the columns this table is left-joined on. Empty for the
	// base table.
	JoinKeys []string

	// KeySources names, per join key, the optional table that supplies it
	// to the left side. The key is left out of the join only when that
	// table is absent from the year; any other missing key fails the join.
	KeySources map[string]string

	// Suffixes are applied to overlapping non-key columns on the left and
	// right side of the join.
	Suffixes [2]string
}

// FileNames returns the candidate filenames for a year.
func (d TableDefinition) FileNames(year int) []string {
	names := make([]string, len(d.Patterns))
	y := strconv.Itoa(year)
	for i, p := range d.Patterns {
		names[i] = strings.ReplaceAll(p, YearPlaceholder, y)
	}
	return names
}

// IsBase reports whether the table starts the join sequence.
func (d TableDefinition) IsBase() bool {
	return len(d.JoinKeys) == 0
}

// sortByOrder returns defs sorted by join order, then key.
func sortByOrder(defs []TableDefinition) []TableDefinition {
	out := make([]TableDefinition, len(defs))
	copy(out, defs)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Info.Order != out[j].Info.Order {
			return out[i].Info.Order < out[j].Info.Order
		}
		return out[i].Info.Key < out[j].Info.Key
	})
	return out
}

// YearRecord maps a table key to its normalized table for one year.
// A key is absent when the table could not be loaded.
type YearRecord map[string]*frame.Table

// Keys returns the table keys present, sorted.
func (r YearRecord) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ColumnMapping maps raw column names to canonical names.
type ColumnMapping map[string]string
