package store

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

func TestCreateTableSQL(t *testing.T) {
	table := Table{
		Name:       "orders",
		Columns:    []string{"order_id", "order_date"},
		Types:      []string{"TEXT", "DATE"},
		NotNull:    []bool{true, false},
		PrimaryKey: "order_id",
	}

	want := "CREATE TABLE IF NOT EXISTS \"orders\" (\n\t\"order_id\" TEXT NOT NULL,\n\t\"order_date\" DATE,\n\tPRIMARY KEY (\"order_id\")\n)"
	assert.Equal(t, want, CreateTableSQL(table, true))
	assert.NotContains(t, CreateTableSQL(table, false), "PRIMARY KEY")
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"orders"`, QuoteIdent("orders"))
	assert.Equal(t, `"we""ird"`, QuoteIdent(`we"ird`))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$1, $2, $3", Placeholders(3))
	assert.Equal(t, "", Placeholders(0))
}

func TestTableFor(t *testing.T) {
	def := core.EntityDef{
		Name: "widgets",
		Fields: []core.FieldSpec{
			{Name: "widget_id", Type: core.FieldKey, Key: core.KeyPrimary},
			{Name: "price", Type: core.FieldDecimal},
			{Name: "made_on", Type: core.FieldDate, Missing: core.MissingNull},
		},
	}

	got := TableFor(def)
	assert.Equal(t, "widgets", got.Name)
	assert.Equal(t, []string{"widget_id", "price", "made_on"}, got.Columns)
	assert.Equal(t, []string{"TEXT", "DECIMAL(12,2)", "DATE"}, got.Types)
	assert.Equal(t, []bool{true, true, false}, got.NotNull)
	assert.Equal(t, "widget_id", got.PrimaryKey)
}

func TestScheme(t *testing.T) {
	tests := map[string]string{
		"postgres://u@h/db": "postgres",
		"postgresql://h/db": "postgres",
		"duckdb://x.duckdb": "duckdb",
		"data/ecom.duckdb":  "duckdb",
		":memory:":          "duckdb",
		"":                  "duckdb",
		"sqlite://ecom.db":  "sqlite",
		"plain/path/no/ext": "duckdb",
	}
	for loc, want := range tests {
		assert.Equal(t, want, Scheme(loc), loc)
	}
}

func TestOpen_UnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "sqlite://ecom.db", Options{})
	var storeErr *core.StoreAccessError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "open", storeErr.Op)
}

func TestOpen_DispatchesToRegisteredBackend(t *testing.T) {
	var gotLocation string
	Register("fake", func(ctx context.Context, location string, opts Options) (Store, error) {
		gotLocation = location
		return nil, errors.New("boom")
	})

	_, err := Open(context.Background(), "fake://somewhere", Options{})
	assert.Equal(t, "fake://somewhere", gotLocation)

	var storeErr *core.StoreAccessError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "open", storeErr.Op)
	assert.Contains(t, Schemes(), "fake")
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap("query", "", nil))

	inner := &core.StoreAccessError{Op: "replace", Table: "orders", Err: errors.New("x")}
	assert.Same(t, inner, Wrap("query", "", inner))

	err := Wrap("exec", "t", errors.New("y"))
	var storeErr *core.StoreAccessError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "exec", storeErr.Op)
}

func TestRecordAccessors(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := Record{
		"s":    "C1",
		"b":    []byte("bytes"),
		"i32":  int32(7),
		"i64":  int64(8),
		"big":  big.NewInt(9),
		"f":    float64(2.5),
		"dec":  decimal.RequireFromString("12.34"),
		"txt":  "56.70",
		"day":  day,
		"null": nil,
	}

	assert.Equal(t, "C1", r.String("s"))
	assert.Equal(t, "bytes", r.String("b"))
	assert.Equal(t, "2024-01-02", r.String("day"))
	assert.Equal(t, "", r.String("null"))

	assert.Equal(t, int64(7), r.Int64("i32"))
	assert.Equal(t, int64(8), r.Int64("i64"))
	assert.Equal(t, int64(9), r.Int64("big"))
	assert.Equal(t, int64(0), r.Int64("null"))
	assert.Equal(t, int64(0), r.Int64("missing"))

	assert.Equal(t, "12.34", r.Decimal("dec").StringFixed(2))
	assert.Equal(t, "56.70", r.Decimal("txt").StringFixed(2))
	assert.Equal(t, "2.50", r.Decimal("f").StringFixed(2))
	assert.Equal(t, "9.00", r.Decimal("big").StringFixed(2))
	assert.True(t, r.Decimal("null").IsZero())

	assert.Equal(t, day, r.Time("day"))
	assert.True(t, r.Time("s").IsZero())
	assert.True(t, r.IsNull("null"))
	assert.True(t, r.IsNull("missing"))

	flags := Record{"t": true, "txt": "true", "bad": "x"}
	assert.True(t, flags.Bool("t"))
	assert.True(t, flags.Bool("txt"))
	assert.False(t, flags.Bool("bad"))
	assert.False(t, flags.Bool("missing"))
}
