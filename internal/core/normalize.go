package core

import (
	"strings"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// nbsp is the non-breaking space some extracts leave inside identifiers.
const nbsp = "\u00a0"

var (
	// identifierColumns have nbsp stripped and become text.
	identifierColumns = []string{"id_usager", "pr", ColVehicle, "pr1"}

	// keyColumns are always text so joins compare them exactly.
	keyColumns = []string{ColAccident, ColVehicle}
)

// NormalizeTable applies the per-table normalization, in order:
//
//  1. column names are lowercased and trimmed
//  2. accident_id is renamed to num_acc
//  3. identifier columns lose every nbsp and become text
//  4. num_acc and id_vehicule become text
//
// Names that collide after steps 1 and 2 are coalesced (see
// frame.Table.RenameColumns). NormalizeTable is idempotent.
func NormalizeTable(t *frame.Table) *frame.Table {
	t = t.RenameColumns(normalizedNames(t.Names()))

	if t.Has(ColAccidentAlt) {
		t = t.RenameColumns(map[string]string{ColAccidentAlt: ColAccident})
	}

	for _, name := range identifierColumns {
		t = t.MapCells(name, frame.KindText, stripNBSP)
	}

	return t.WithKind(frame.KindText, keyColumns...)
}

// normalizedNames maps every name that changes when lowercased and trimmed.
func normalizedNames(names []string) map[string]string {
	mapping := make(map[string]string)
	for _, n := range names {
		if norm := NormalizeName(n); norm != n {
			mapping[n] = norm
		}
	}
	return mapping
}

// NormalizeName lowercases and trims a column name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func stripNBSP(s string) string {
	return strings.ReplaceAll(s, nbsp, "")
}
