package core

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/logging"
	"github.com/JonMunkholm/accidents/internal/rawcsv"
)

// Options configures a Builder.
type Options struct {
	RawDir         string         // directory holding the raw yearly extracts
	DictionaryPath string         // column dictionary
	Years          []int          // years to build, in processing order
	CSV            rawcsv.Options // raw file decoding
	Parallelism    int            // years built concurrently, DefaultParallelism if <= 0
}

// Result is the outcome of a build.
type Result struct {
	Dataset *frame.Table
	Report  *Report
}

// Builder builds the dataset. It holds no state between builds.
type Builder struct {
	opts    Options
	defs    []TableDefinition
	loader  *Loader
	limiter *YearLimiter
}

// NewBuilder returns a builder over defs, or over every registered table
// definition when defs is empty.
func NewBuilder(opts Options, defs ...TableDefinition) *Builder {
	if len(defs) == 0 {
		defs = All()
	}
	return &Builder{
		opts:    opts,
		defs:    sortByOrder(defs),
		loader:  NewLoader(opts.RawDir, opts.CSV),
		limiter: NewYearLimiter(opts.Parallelism),
	}
}

// Build runs the whole pipeline: load the column dictionary, then for each
// year load its tables and assemble them, combine the years and finalize the
// columns.
//
// Years are built concurrently, at most Options.Parallelism at a time; the
// result does not depend on completion order.
//
// Table and year failures are recovered: they are logged and recorded on the
// report. The returned error is a *ConfigurationError when the dictionary
// cannot be used, or the context error when ctx is done. A build where no
// year produced rows succeeds with Report.Empty set.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	logger := logging.FromContext(ctx)

	if len(b.defs) == 0 {
		return nil, errors.New("no table definitions registered")
	}

	mapping, err := LoadColumnMapping(b.opts.DictionaryPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("column dictionary loaded", "path", b.opts.DictionaryPath, "entries", len(mapping))

	report := &Report{RunID: logging.RunID(ctx)}
	years := uniqueYears(b.opts.Years)
	reports := make([]YearReport, len(years))
	tables := make([]*frame.Table, len(years))

	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			if err := b.limiter.Acquire(gctx); err != nil {
				return err
			}
			defer b.limiter.Release()

			var err error
			reports[i], tables[i], err = b.buildYear(gctx, year)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	perYear := make(map[int]*frame.Table, len(years))
	for i, year := range years {
		if tables[i] != nil {
			perYear[year] = tables[i]
		}
	}
	report.Years = reports

	dataset, fin := Finalize(Combine(perYear), mapping)
	report.Finalize = fin
	for target, sources := range fin.Coalesced {
		logger.Warn("columns coalesced by rename", "column", target, "sources", sources)
	}

	report.Rows = dataset.NumRows()
	report.Columns = dataset.NumCols()
	report.Empty = dataset.NumRows() == 0
	report.Duration = time.Since(start)

	if report.Empty {
		logger.Warn("dataset is empty", "code", CodeEmptyResult, "error", ErrEmptyResult)
	}

	return &Result{Dataset: dataset, Report: report}, nil
}

// uniqueYears drops repeated years, keeping first occurrences in order.
func uniqueYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	return out
}

// buildYear loads and assembles one year. A dropped year returns a nil table
// and a report carrying the reason.
func (b *Builder) buildYear(ctx context.Context, year int) (YearReport, *frame.Table, error) {
	yr := YearReport{Year: year}
	logger := logging.WithFields(ctx, "year", year)

	rec, failures, err := b.loader.LoadYear(ctx, year, b.defs)
	if err != nil {
		return yr, nil, err
	}
	yr.Loaded = rec.Keys()
	yr.Missing = failures

	t, err := MergeYear(rec, year, b.defs)
	if err != nil {
		yr.Dropped = true
		yr.DropReason = err
		logger.Warn("year dropped", "code", CodeOf(err), "error", err)
		return yr, nil, nil
	}

	yr.Rows = t.NumRows()
	logger.Info("year assembled", "tables", yr.Loaded, "rows", yr.Rows, "columns", t.NumCols())
	return yr, t, nil
}
