// Package store is the persistence boundary of the loader.
//
// A Store is opened once per run from a location string and passed
// explicitly to the pipeline and the report engine. Backends register
// themselves by URL scheme from their package init, the same way
// database/sql drivers do:
//
//	import _ "github.com/JonMunkholm/ecomrevenue/internal/store/duckdb"
//
//	s, err := store.Open(ctx, "duckdb://database/ecom.duckdb", store.Options{})
//
// Every backend guarantees that ReplaceTable is atomic: either all rows of
// the new contents become visible, or the previous contents remain.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// DefaultScheme is used when a location has no scheme.
const DefaultScheme = "duckdb"

// Table describes the shape of a persisted table.
type Table struct {
	Name       string
	Columns    []string
	Types      []string // SQL column types, same order as Columns
	NotNull    []bool   // same order as Columns
	PrimaryKey string
}

// TableFor builds the table descriptor of a registered entity.
func TableFor(def core.EntityDef) Table {
	return Table{
		Name:       def.Name,
		Columns:    def.FieldNames(),
		Types:      def.SQLTypes(),
		NotNull:    def.NotNull(),
		PrimaryKey: def.PrimaryKey().Name,
	}
}

// Record is one result row keyed by column name.
type Record map[string]any

// Store is the contract shared by all backends.
// Statements use $1, $2, ... placeholders.
type Store interface {
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, stmt string, args ...any) error

	// EnsureTable creates the table if it does not exist.
	EnsureTable(ctx context.Context, table Table) error

	// ReplaceTable atomically replaces the full contents of a table.
	// Row values follow table.Columns and are string, int64,
	// decimal.Decimal, time.Time or nil.
	ReplaceTable(ctx context.Context, table Table, rows [][]any) error

	// Query runs a statement and returns every result row.
	Query(ctx context.Context, stmt string, args ...any) ([]Record, error)

	// Close releases the underlying connections.
	Close() error
}

// Options configures a backend. Pool settings are ignored by backends
// without a connection pool.
type Options struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	Logger          *slog.Logger
}

// OpenFunc opens a backend for a location.
type OpenFunc func(ctx context.Context, location string, opts Options) (Store, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]OpenFunc)
)

// Register makes a backend available under a URL scheme.
// Panics if the scheme is already registered.
func Register(scheme string, open OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if _, dup := drivers[scheme]; dup {
		panic("store: Register called twice for scheme " + scheme)
	}
	drivers[scheme] = open
}

// Schemes returns the registered scheme names, sorted.
func Schemes() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scheme returns the backend scheme a location resolves to.
//
//	postgres://..., postgresql://...   -> postgres
//	duckdb://path, *.duckdb, :memory:  -> duckdb
func Scheme(location string) string {
	switch {
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		return "postgres"
	case location == "", location == ":memory:", strings.HasSuffix(location, ".duckdb"):
		return DefaultScheme
	}
	if scheme, _, ok := strings.Cut(location, "://"); ok {
		return scheme
	}
	return DefaultScheme
}

// Open opens the backend a location resolves to.
func Open(ctx context.Context, location string, opts Options) (Store, error) {
	scheme := Scheme(location)

	driversMu.RLock()
	open, ok := drivers[scheme]
	driversMu.RUnlock()
	if !ok {
		return nil, &core.StoreAccessError{
			Op:  "open",
			Err: fmt.Errorf("no backend for scheme %q (available: %s)", scheme, strings.Join(Schemes(), ", ")),
		}
	}

	s, err := open(ctx, location, opts)
	if err != nil {
		return nil, Wrap("open", "", err)
	}
	return s, nil
}

// Wrap converts a backend error into a StoreAccessError.
// Errors that already are StoreAccessErrors pass through.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *core.StoreAccessError
	if errors.As(err, &storeErr) {
		return err
	}
	return &core.StoreAccessError{Op: op, Table: table, Err: err}
}
