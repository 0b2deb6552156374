// Package duckdb is the embedded DuckDB backend of the store.
// It registers itself for duckdb:// locations, *.duckdb files and :memory:.
package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	goduckdb "github.com/marcboeker/go-duckdb/v2"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

// Memory is the location of a private in-memory database.
const Memory = ":memory:"

func init() {
	store.Register(store.DefaultScheme, func(ctx context.Context, location string, opts store.Options) (store.Store, error) {
		return Open(ctx, location, opts)
	})
}

// Store is a DuckDB-backed store.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a DuckDB database.
// "duckdb://path", a bare path, ":memory:" and "" are accepted.
func Open(ctx context.Context, location string, opts store.Options) (*Store, error) {
	path := strings.TrimPrefix(location, "duckdb://")
	dsn := path
	if path == Memory || path == "" {
		dsn = ""
		path = Memory
	} else if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sqlx.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	// A single connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if opts.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(opts.MaxConnLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("store opened", "backend", "duckdb", "path", path)

	return &Store{db: db, logger: logger}, nil
}

// Exec runs a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, stmt, toDuckArgs(args)...); err != nil {
		return store.Wrap("exec", "", err)
	}
	return nil
}

// EnsureTable creates the table if it does not exist.
// The primary key is left out because DuckDB over-reports key conflicts
// when a key is deleted and re-inserted in the same transaction; the
// pipeline already guarantees uniqueness.
func (s *Store) EnsureTable(ctx context.Context, table store.Table) error {
	if _, err := s.db.ExecContext(ctx, store.CreateTableSQL(table, false)); err != nil {
		return store.Wrap("ensure", table.Name, err)
	}
	return nil
}

// ReplaceTable deletes the current rows and inserts the new ones in a single
// transaction. Any failure rolls back to the previous contents.
func (s *Store) ReplaceTable(ctx context.Context, table store.Table, rows [][]any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return store.Wrap("replace", table.Name, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback() // No-op if already committed

	if err := replace(ctx, tx, table, rows); err != nil {
		return store.Wrap("replace", table.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return store.Wrap("replace", table.Name, fmt.Errorf("commit: %w", err))
	}

	s.logger.Debug("table replaced", "table", table.Name, "rows", len(rows))
	return nil
}

func replace(ctx context.Context, tx *sqlx.Tx, table store.Table, rows [][]any) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+store.QuoteIdent(table.Name)); err != nil {
		return fmt.Errorf("clear table: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PreparexContext(ctx, insertSQL(table))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if len(row) != len(table.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i+1, len(row), len(table.Columns))
		}
		if _, err := stmt.ExecContext(ctx, toDuckArgs(row)...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return nil
}

// insertSQL builds a typed INSERT. Every parameter is cast to its column type;
// decimals are bound as text so no precision is lost in the driver.
func insertSQL(table store.Table) string {
	cols := make([]string, len(table.Columns))
	vals := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cols[i] = store.QuoteIdent(col)
		vals[i] = fmt.Sprintf("CAST($%d AS %s)", i+1, table.Types[i])
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		store.QuoteIdent(table.Name), strings.Join(cols, ", "), strings.Join(vals, ", "))
}

// Query runs a statement and returns every result row.
func (s *Store) Query(ctx context.Context, stmt string, args ...any) ([]store.Record, error) {
	rows, err := s.db.QueryxContext(ctx, stmt, toDuckArgs(args)...)
	if err != nil {
		return nil, store.Wrap("query", "", err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		rec := make(map[string]any)
		if err := rows.MapScan(rec); err != nil {
			return nil, store.Wrap("query", "", err)
		}
		for k, v := range rec {
			rec[k] = fromDuck(v)
		}
		out = append(out, store.Record(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("query", "", err)
	}
	return out, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func toDuckArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch x := a.(type) {
		case decimal.Decimal:
			out[i] = x.StringFixed(2)
		case *time.Time:
			if x == nil {
				out[i] = nil
			} else {
				out[i] = *x
			}
		default:
			out[i] = a
		}
	}
	return out
}

// fromDuck converts driver-specific values into store values.
func fromDuck(v any) any {
	switch x := v.(type) {
	case goduckdb.Decimal:
		if x.Value == nil {
			return decimal.Zero
		}
		return decimal.NewFromBigInt(x.Value, -int32(x.Scale))
	case int32:
		return int64(x)
	case []byte:
		return string(x)
	default:
		return v
	}
}
