// Package postgres is the PostgreSQL backend of the store, built on pgxpool.
// It registers itself for the postgres:// and postgresql:// schemes.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

func init() {
	store.Register("postgres", func(ctx context.Context, location string, opts store.Options) (store.Store, error) {
		return Open(ctx, location, opts)
	})
}

// DBTX is the subset of pgx shared by the pool and transactions.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store is a PostgreSQL-backed store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, url string, opts store.Options) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("store opened",
		"backend", "postgres",
		"max_conns", poolConfig.MaxConns,
		"min_conns", poolConfig.MinConns,
	)

	return &Store{pool: pool, logger: logger}, nil
}

// Exec runs a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, stmt string, args ...any) error {
	if _, err := s.pool.Exec(ctx, stmt, toPgArgs(args)...); err != nil {
		return store.Wrap("exec", "", err)
	}
	return nil
}

// EnsureTable creates the table with its primary key if it does not exist.
func (s *Store) EnsureTable(ctx context.Context, table store.Table) error {
	if _, err := s.pool.Exec(ctx, store.CreateTableSQL(table, true)); err != nil {
		return store.Wrap("ensure", table.Name, err)
	}
	return nil
}

// ReplaceTable deletes the current rows and copies the new ones in a single
// transaction. Any failure rolls back to the previous contents.
func (s *Store) ReplaceTable(ctx context.Context, table store.Table, rows [][]any) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.Wrap("replace", table.Name, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx) // No-op if already committed

	n, err := replace(ctx, tx, table, rows)
	if err != nil {
		return store.Wrap("replace", table.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return store.Wrap("replace", table.Name, fmt.Errorf("commit: %w", err))
	}

	s.logger.Debug("table replaced", "table", table.Name, "rows", n)
	return nil
}

// replace runs the delete and the COPY against db.
func replace(ctx context.Context, db DBTX, table store.Table, rows [][]any) (int64, error) {
	ident := pgx.Identifier{table.Name}
	if _, err := db.Exec(ctx, "DELETE FROM "+ident.Sanitize()); err != nil {
		return 0, fmt.Errorf("clear table: %w", err)
	}

	converted := make([][]any, len(rows))
	for i, row := range rows {
		if len(row) != len(table.Columns) {
			return 0, fmt.Errorf("row %d has %d values, want %d", i+1, len(row), len(table.Columns))
		}
		converted[i] = toPgRow(row)
	}

	n, err := db.CopyFrom(ctx, ident, table.Columns, pgx.CopyFromRows(converted))
	if err != nil {
		return 0, fmt.Errorf("copy rows: %w", err)
	}
	if n != int64(len(rows)) {
		return 0, fmt.Errorf("copied %d rows, want %d", n, len(rows))
	}
	return n, nil
}

// Query runs a statement and returns every result row.
func (s *Store) Query(ctx context.Context, stmt string, args ...any) ([]store.Record, error) {
	rows, err := s.pool.Query(ctx, stmt, toPgArgs(args)...)
	if err != nil {
		return nil, store.Wrap("query", "", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []store.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, store.Wrap("query", "", err)
		}
		rec := make(store.Record, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = fromPg(values[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("query", "", err)
	}
	return out, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// toPgArgs converts statement arguments. Times are left as timestamps.
func toPgArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if d, ok := a.(decimal.Decimal); ok {
			out[i] = toNumeric(d)
			continue
		}
		out[i] = a
	}
	return out
}

// toPgRow converts a table row for COPY. Row times are calendar dates.
func toPgRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = toPg(v)
	}
	return out
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(d.String()); err != nil {
		return pgtype.Numeric{Valid: false}
	}
	return n
}

func toPg(v any) any {
	switch x := v.(type) {
	case decimal.Decimal:
		return toNumeric(x)
	case time.Time:
		return pgtype.Date{Time: x, Valid: true}
	case *time.Time:
		if x == nil {
			return pgtype.Date{Valid: false}
		}
		return pgtype.Date{Time: *x, Valid: true}
	default:
		return v
	}
}

// fromPg converts values returned by rows.Values into store values.
func fromPg(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		dv, err := x.Value()
		if err != nil || dv == nil {
			return nil
		}
		s, ok := dv.(string)
		if !ok {
			return dv
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return s
		}
		return d
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	default:
		return v
	}
}
