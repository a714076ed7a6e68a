package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/logging"
	"github.com/JonMunkholm/accidents/internal/rawcsv"
)

// Loader reads raw yearly tables from a directory.
type Loader struct {
	dir string
	csv rawcsv.Options
}

// NewLoader returns a loader for the raw extracts in dir.
func NewLoader(dir string, opts rawcsv.Options) *Loader {
	return &Loader{dir: dir, csv: opts}
}

// LoadTable loads and normalizes one table kind for a year.
//
// Candidate files are tried in pattern order; the first one that exists and
// parses wins. A candidate that exists but fails to parse is skipped. When no
// candidate succeeds the returned error is a *TableLoadError: CodeTableMissing
// if no candidate exists, CodeTableUnreadable carrying the last parse error
// otherwise.
func (l *Loader) LoadTable(ctx context.Context, year int, def TableDefinition) (*frame.Table, error) {
	logger := logging.WithFields(ctx, "year", year, "table", def.Info.Key)

	var (
		paths   []string
		lastErr error
	)
	for _, name := range def.FileNames(year) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(l.dir, name)
		paths = append(paths, path)

		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				lastErr = err
			}
			continue
		}

		raw, stats, err := rawcsv.ReadFile(path, l.csv)
		if err != nil {
			logger.Debug("candidate file rejected", "path", path, "error", err)
			lastErr = err
			continue
		}
		if stats.Replaced > 0 {
			logger.Warn("invalid UTF-8 bytes replaced", "path", path, "replaced", stats.Replaced)
		}
		logger.Debug("table read", "path", path, "bytes", stats.Bytes, "rows", stats.Records)

		return NormalizeTable(frame.InferKinds(raw)), nil
	}

	if lastErr != nil {
		return nil, &TableLoadError{Code: CodeTableUnreadable, Year: year, Table: def.Info.Key, Paths: paths, Err: lastErr}
	}
	return nil, &TableLoadError{Code: CodeTableMissing, Year: year, Table: def.Info.Key, Paths: paths}
}

// LoadYear loads every table kind for a year. Tables that fail to load are
// absent from the record; their errors are returned alongside it and logged.
// Only context cancellation is returned as an error.
func (l *Loader) LoadYear(ctx context.Context, year int, defs []TableDefinition) (YearRecord, []*TableLoadError, error) {
	rec := make(YearRecord, len(defs))
	var failures []*TableLoadError

	for _, def := range defs {
		t, err := l.LoadTable(ctx, year, def)
		if err == nil {
			rec[def.Info.Key] = t
			continue
		}

		var tle *TableLoadError
		if !errors.As(err, &tle) {
			return nil, nil, fmt.Errorf("loading %s for %d: %w", def.Info.Key, year, err)
		}
		failures = append(failures, tle)
		logging.WithFields(ctx, "year", year, "table", def.Info.Key, "code", tle.Code).
			Warn("table absent", "error", tle)
	}

	return rec, failures, nil
}
