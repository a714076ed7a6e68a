package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/accidents/internal/frame"
)

// MergeYear joins a year's tables into one wide table tagged with the year.
//
// Tables are left-joined in definition order onto the base table. Absent
// optional tables are skipped. A join key is dropped only when the table
// named in KeySources for it is absent, so persons join on num_acc alone
// when the vehicles table is missing. The annee_accident column is then set
// to year.
//
// Persons whose vehicle has no row in the vehicles table do not survive the
// left-join chain when their accident has other vehicles.
//
// The result is a *YearMergeError when a required table is absent
// (CodeRequiredTableMissing) or a join fails (CodeJoinFailed).
func MergeYear(rec YearRecord, year int, defs []TableDefinition) (*frame.Table, error) {
	defs = sortByOrder(defs)
	if len(defs) == 0 {
		return nil, &YearMergeError{Code: CodeJoinFailed, Year: year, Err: fmt.Errorf("no table definitions")}
	}

	var missing []string
	for _, def := range defs {
		if def.Required && rec[def.Info.Key] == nil {
			missing = append(missing, def.Info.Key)
		}
	}
	if len(missing) > 0 {
		return nil, &YearMergeError{
			Code: CodeRequiredTableMissing,
			Year: year,
			Err:  fmt.Errorf("required tables absent: %s", strings.Join(missing, ", ")),
		}
	}

	base := defs[0]
	merged := rec[base.Info.Key]
	if merged == nil || !base.IsBase() {
		return nil, &YearMergeError{
			Code: CodeJoinFailed,
			Year: year,
			Err:  fmt.Errorf("base table %s absent or has join keys", base.Info.Key),
		}
	}

	for _, def := range defs[1:] {
		right := rec[def.Info.Key]
		if right == nil {
			continue
		}

		on, err := joinKeys(merged, rec, def)
		if err != nil {
			return nil, &YearMergeError{
				Code: CodeJoinFailed,
				Year: year,
				Err:  fmt.Errorf("joining %s: %w", def.Info.Key, err),
			}
		}

		merged, err = frame.LeftJoin(merged, right, frame.JoinOptions{On: on, Suffixes: def.Suffixes})
		if err != nil {
			return nil, &YearMergeError{
				Code: CodeJoinFailed,
				Year: year,
				Err:  fmt.Errorf("joining %s: %w", def.Info.Key, err),
			}
		}
	}

	return merged.WithConstant(ColYear, strconv.Itoa(year), frame.KindInt), nil
}

// joinKeys returns the keys def joins on. A key missing from the left side
// is skipped when its source table is absent from rec, and is an error
// otherwise.
func joinKeys(left *frame.Table, rec YearRecord, def TableDefinition) ([]string, error) {
	out := make([]string, 0, len(def.JoinKeys))
	for _, k := range def.JoinKeys {
		if left.Has(k) {
			out = append(out, k)
			continue
		}
		if src, ok := def.KeySources[k]; ok && rec[src] == nil {
			continue
		}
		return nil, fmt.Errorf("key %q missing on the left side", k)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("none of %v on the left side", def.JoinKeys)
	}
	return out, nil
}
