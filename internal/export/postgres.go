package export

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/accidents/internal/frame"
	"github.com/JonMunkholm/accidents/internal/logging"
)

// Beginner starts transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Connect opens a small pool against databaseURL and verifies it.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if u, err := url.Parse(databaseURL); err == nil {
		logging.FromContext(ctx).Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}
	return pool, nil
}

// PostgresSink copies the dataset into a PostgreSQL table.
type PostgresSink struct {
	db    Beginner
	table string
}

// NewPostgresSink returns a sink writing to table through db.
func NewPostgresSink(db Beginner, table string) *PostgresSink {
	return &PostgresSink{db: db, table: table}
}

func (s *PostgresSink) Name() string { return "postgres" }

// Write drops and recreates the table, then fills it with COPY, all in one
// transaction.
func (s *PostgresSink) Write(ctx context.Context, t *frame.Table) error {
	ident := pgx.Identifier{s.table}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, pgCreateTable(ident, t)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	n, err := tx.CopyFrom(ctx, ident, t.Names(), pgCopySource(t))
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}
	if n != int64(t.NumRows()) {
		return fmt.Errorf("copy rows: wrote %d of %d", n, t.NumRows())
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// pgCreateTable renders the CREATE TABLE statement for t.
func pgCreateTable(ident pgx.Identifier, t *frame.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(ident.Sanitize())
	b.WriteString(" (")
	for i, c := range t.Columns() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{c.Name}.Sanitize())
		b.WriteByte(' ')
		b.WriteString(pgType(c.Kind))
	}
	b.WriteString(")")
	return b.String()
}

func pgType(k frame.Kind) string {
	switch k {
	case frame.KindInt:
		return "BIGINT"
	case frame.KindFloat:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

// pgCopySource yields t's rows as pgtype values matching pgType.
func pgCopySource(t *frame.Table) pgx.CopyFromSource {
	cols := t.Columns()
	return pgx.CopyFromSlice(t.NumRows(), func(i int) ([]any, error) {
		return pgRow(cols, i), nil
	})
}

func pgRow(cols []*frame.Column, i int) []any {
	row := make([]any, len(cols))
	for j, c := range cols {
		cell := c.Cells[i]
		switch c.Kind {
		case frame.KindInt:
			row[j] = frame.ToPgInt8(cell)
		case frame.KindFloat:
			row[j] = frame.ToPgFloat8(cell)
		default:
			row[j] = frame.ToPgText(cell)
		}
	}
	return row
}
