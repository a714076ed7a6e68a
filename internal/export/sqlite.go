package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JonMunkholm/accidents/internal/frame"
)

// contextCheckInterval is how many rows are inserted between cancellation
// checks.
const contextCheckInterval = 1000

// SQLiteSink writes the dataset into a table of a SQLite database file.
type SQLiteSink struct {
	Path  string
	Table string
}

func (s *SQLiteSink) Name() string { return "sqlite" }

// Write drops and recreates the table and inserts every row in one
// transaction. The database file is created if needed.
func (s *SQLiteSink) Write(ctx context.Context, t *frame.Table) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	table := sqliteQuote(s.Table)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, sqliteCreateTable(table, t)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, sqliteInsert(table, t))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	cols := t.Columns()
	args := make([]any, len(cols))
	for i := 0; i < t.NumRows(); i++ {
		if i%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for j, c := range cols {
			args[j] = frame.Typed(c.Cells[i], c.Kind)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// sqliteQuote quotes an identifier, doubling embedded quotes.
func sqliteQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqliteCreateTable(table string, t *frame.Table) string {
	defs := make([]string, 0, t.NumCols())
	for _, c := range t.Columns() {
		defs = append(defs, sqliteQuote(c.Name)+" "+sqliteType(c.Kind))
	}
	return "CREATE TABLE " + table + " (" + strings.Join(defs, ", ") + ")"
}

func sqliteType(k frame.Kind) string {
	switch k {
	case frame.KindInt:
		return "INTEGER"
	case frame.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqliteInsert(table string, t *frame.Table) string {
	names := make([]string, t.NumCols())
	for i, n := range t.Names() {
		names[i] = sqliteQuote(n)
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", t.NumCols()), ", ")
	return "INSERT INTO " + table + " (" + strings.Join(names, ", ") + ") VALUES (" + marks + ")"
}
