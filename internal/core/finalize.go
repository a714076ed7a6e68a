package core

import (
	"strings"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// collisionSuffixes mark join artifacts dropped by Finalize. The
// un-suffixed column is kept as authoritative without comparing values.
var collisionSuffixes = []string{"_vehicules", "_usagers"}

// FinalizeResult describes what Finalize changed.
type FinalizeResult struct {
	Dropped    []string            // collision columns removed
	Renamed    map[string]string   // applied dictionary renames
	Coalesced  map[string][]string // target name -> source columns merged into it
	NumVehFrom string              // set when num_veh_x became num_veh
}

// Finalize cleans the combined table, in order:
//
//  1. drops every column ending in _vehicules or _usagers
//  2. renames num_veh_x to num_veh when num_veh is absent
//  3. renames columns through mapping; unmapped columns pass through
func Finalize(t *frame.Table, mapping ColumnMapping) (*frame.Table, FinalizeResult) {
	var res FinalizeResult

	t, res.Dropped = t.DropFunc(isCollisionColumn)

	if !t.Has(ColVehicleNum) && t.Has(ColVehicleNumX) {
		t = t.RenameColumns(map[string]string{ColVehicleNumX: ColVehicleNum})
		res.NumVehFrom = ColVehicleNumX
	}

	res.Renamed, res.Coalesced = plannedRenames(t.Names(), mapping)
	return t.RenameColumns(mapping), res
}

func isCollisionColumn(name string) bool {
	for _, s := range collisionSuffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// plannedRenames reports the renames mapping applies to names and the target
// names that several columns collapse into.
func plannedRenames(names []string, mapping ColumnMapping) (map[string]string, map[string][]string) {
	renamed := make(map[string]string)
	sources := make(map[string][]string)
	for _, n := range names {
		target := n
		if to, ok := mapping[n]; ok && to != "" && to != n {
			renamed[n] = to
			target = to
		}
		sources[target] = append(sources[target], n)
	}

	coalesced := make(map[string][]string)
	for target, src := range sources {
		if len(src) > 1 {
			coalesced[target] = src
		}
	}
	return renamed, coalesced
}
