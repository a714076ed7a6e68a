// Package core builds the accident dataset from yearly raw extracts.
//
// # Architecture
//
// The package is organized around a pure transform pipeline; every stage
// returns a new table and never modifies its input:
//
//   - Table Definitions: registered via the registry, each table kind has its
//     filename patterns, join keys and collision suffixes.
//   - Loader: reads and normalizes one table kind for one year.
//   - MergeYear: left-joins a year's tables and tags rows with the year.
//   - Combine: stacks the years, taking the column union.
//   - Finalize: drops join artifacts and applies the column dictionary.
//   - Builder: runs the above for the configured years, a bounded number
//     at a time (see [YearLimiter]).
//
// # Table Registry
//
// Table kinds are registered at init time using [Register]:
//
//	core.Register(core.TableDefinition{
//	    Info:     core.TableInfo{Key: "usagers", Label: "Persons", Order: 3},
//	    Patterns: []string{"usagers-{year}.csv"},
//	    JoinKeys: []string{"num_acc", "id_vehicule"},
//	    Suffixes: [2]string{"", "_usagers"},
//	})
//
// The definition with the lowest Order and no join keys is the base of every
// year's join.
//
// # Error Handling
//
// Failures are typed and carry a support code (see [MapError]):
//
//   - CFG001-CFG002: column dictionary missing or malformed, fatal
//   - TBL001-TBL002: table file missing or unreadable, the table is absent
//   - YR001-YR002: required table absent or join failure, the year is dropped
//   - EMPTY001: no rows at all, reported and never persisted
//
// Recovered failures are logged at WARN and recorded on the [Report].
package core
