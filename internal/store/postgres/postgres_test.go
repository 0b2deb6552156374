package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

func TestToPg(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	n, ok := toPg(decimal.RequireFromString("12.50")).(pgtype.Numeric)
	require.True(t, ok)
	assert.True(t, n.Valid)

	date, ok := toPg(d).(pgtype.Date)
	require.True(t, ok)
	assert.True(t, date.Valid)
	assert.Equal(t, d, date.Time)

	var nilDate *time.Time
	assert.Equal(t, pgtype.Date{Valid: false}, toPg(nilDate))

	assert.Equal(t, "C1", toPg("C1"))
	assert.Equal(t, int64(3), toPg(int64(3)))
	assert.Nil(t, toPg(nil))
}

func TestToPgArgs_KeepsTimestamps(t *testing.T) {
	ts := time.Date(2024, 3, 1, 13, 45, 0, 0, time.UTC)
	args := toPgArgs([]any{ts, decimal.NewFromInt(2), "x"})

	assert.Equal(t, ts, args[0])
	_, ok := args[1].(pgtype.Numeric)
	assert.True(t, ok)
	assert.Equal(t, "x", args[2])
}

func TestFromPg(t *testing.T) {
	var n pgtype.Numeric
	require.NoError(t, n.Scan("250.00"))

	got, ok := fromPg(n).(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(250)))

	assert.Nil(t, fromPg(pgtype.Numeric{Valid: false}))
	assert.Equal(t, int64(7), fromPg(int32(7)))
	assert.Equal(t, "x", fromPg("x"))
}

func TestScheme(t *testing.T) {
	assert.Equal(t, "postgres", store.Scheme("postgres://u:p@localhost:5432/db"))
	assert.Equal(t, "postgres", store.Scheme("postgresql://localhost/db"))
	assert.Contains(t, store.Schemes(), "postgres")
}

// TestStore_Integration runs against a live database when TEST_DATABASE_URL is set.
func TestStore_Integration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, url, store.Options{MaxConns: 2})
	require.NoError(t, err)
	defer s.Close()

	table := store.Table{
		Name:       "store_it_items",
		Columns:    []string{"id", "qty", "price", "sold_on"},
		Types:      []string{"TEXT", "BIGINT", "DECIMAL(12,2)", "DATE"},
		NotNull:    []bool{true, true, true, false},
		PrimaryKey: "id",
	}
	require.NoError(t, s.Exec(ctx, "DROP TABLE IF EXISTS store_it_items"))
	require.NoError(t, s.EnsureTable(ctx, table))

	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.ReplaceTable(ctx, table, [][]any{
		{"A", int64(1), decimal.RequireFromString("1.50"), day},
		{"B", int64(2), decimal.RequireFromString("2.25"), nil},
	}))

	// Duplicate keys violate the primary key; the previous contents must survive.
	err = s.ReplaceTable(ctx, table, [][]any{
		{"C", int64(1), decimal.Zero, nil},
		{"C", int64(1), decimal.Zero, nil},
	})
	require.Error(t, err)

	n, err := store.CountRows(ctx, s, "store_it_items")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	recs, err := s.Query(ctx, "SELECT id, price FROM store_it_items WHERE id = $1", "B")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "2.25", recs[0].Decimal("price").StringFixed(2))

	require.NoError(t, s.Exec(ctx, "DROP TABLE store_it_items"))
}
