// Package export persists a built dataset.
//
// Every sink receives the same table and writes it in full, replacing any
// previous output: Parquet is the reference artifact, PostgreSQL and SQLite
// are optional mirrors for querying.
package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/logging"
)

// ErrEmptyDataset is returned when asked to persist a table with no rows.
var ErrEmptyDataset = errors.New("refusing to persist an empty dataset")

// Sink writes a dataset to one destination.
type Sink interface {
	Name() string
	Write(ctx context.Context, t *frame.Table) error
}

// PrepareColumns forces the named columns to text. Names the table lacks are
// ignored.
func PrepareColumns(t *frame.Table, textColumns []string) *frame.Table {
	var present []string
	for _, name := range textColumns {
		if t.Has(name) {
			present = append(present, name)
		}
	}
	if len(present) == 0 {
		return t
	}
	return t.WithKind(frame.KindText, present...)
}

// WriteAll writes t to every sink in order and stops at the first failure.
func WriteAll(ctx context.Context, t *frame.Table, sinks ...Sink) error {
	if t == nil || t.NumRows() == 0 {
		return ErrEmptyDataset
	}

	for _, s := range sinks {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger := logging.WithFields(ctx, "sink", s.Name())
		logger.Debug("writing dataset", "rows", t.NumRows(), "columns", t.NumCols())

		if err := s.Write(ctx, t); err != nil {
			return fmt.Errorf("%s sink: %w", s.Name(), err)
		}
		logger.Info("dataset written", "rows", t.NumRows())
	}
	return nil
}
