package core

import (
	"log/slog"
	"time"
)

// YearReport describes what happened to one year of a build.
type YearReport struct {
	Year       int
	Loaded     []string          // table keys loaded, sorted
	Missing    []*TableLoadError // tables absent for the year
	Dropped    bool              // the year contributed no rows
	DropReason error             // *YearMergeError when Dropped
	Rows       int               // rows contributed to the dataset
}

// Report summarizes a dataset build.
type Report struct {
	RunID    string
	Years    []YearReport
	Rows     int
	Columns  int
	Finalize FinalizeResult

	// Empty is set when the dataset has no rows. Callers must not persist
	// an empty dataset.
	Empty bool

	Duration time.Duration
}

// DroppedYears returns the years that contributed no rows.
func (r *Report) DroppedYears() []int {
	var out []int
	for _, y := range r.Years {
		if y.Dropped {
			out = append(out, y.Year)
		}
	}
	return out
}

// Log writes the report as one summary line plus one line per year.
func (r *Report) Log(logger *slog.Logger) {
	for _, y := range r.Years {
		attrs := []any{"year", y.Year, "loaded", y.Loaded, "rows", y.Rows}
		if len(y.Missing) > 0 {
			missing := make([]string, len(y.Missing))
			for i, m := range y.Missing {
				missing[i] = m.Table + " (" + string(m.Code) + ")"
			}
			attrs = append(attrs, "missing", missing)
		}
		if y.Dropped {
			attrs = append(attrs, "dropped", true, "code", CodeOf(y.DropReason), "reason", y.DropReason)
			logger.Warn("year report", attrs...)
			continue
		}
		logger.Info("year report", attrs...)
	}

	summary := []any{
		"rows", r.Rows,
		"columns", r.Columns,
		"dropped_years", r.DroppedYears(),
		"collision_columns_dropped", len(r.Finalize.Dropped),
		"renamed", len(r.Finalize.Renamed),
		"duration", r.Duration,
	}
	if r.Empty {
		logger.Warn("dataset build report", append(summary, "code", CodeEmptyResult, "warning", ErrEmptyResult)...)
		return
	}
	logger.Info("dataset build report", summary...)
}
