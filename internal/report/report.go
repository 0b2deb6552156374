// Package report computes the customer revenue report from the loaded tables.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
	"github.com/JonMunkholm/ecomrevenue/internal/store"
)

// CustomerRevenueRow is one line of the report.
type CustomerRevenueRow struct {
	CustomerID    string          `json:"customerId"`
	FullName      string          `json:"fullName"`
	TotalOrders   int64           `json:"totalOrders"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// Active reports whether the customer placed at least one order.
func (r CustomerRevenueRow) Active() bool {
	return r.TotalOrders > 0
}

// CustomerRevenueSQL aggregates orders and items per customer. Every customer
// appears once; sums over customers without orders are NULL and resolved by
// the Coalesce functions. Revenue is returned as text to keep its precision
// identical across engines.
const CustomerRevenueSQL = `SELECT
	c.customer_id,
	c.full_name,
	CAST(COUNT(DISTINCT o.order_id) AS BIGINT) AS total_orders,
	CAST(SUM(i.quantity) AS BIGINT) AS total_quantity,
	CAST(SUM(i.quantity * i.unit_price) AS VARCHAR) AS total_revenue
FROM customers c
LEFT JOIN orders o ON o.customer_id = c.customer_id
LEFT JOIN order_items i ON i.order_id = o.order_id
GROUP BY c.customer_id, c.full_name
ORDER BY SUM(i.quantity * i.unit_price) DESC NULLS LAST, c.customer_id ASC`

// requiredTables lists the tables the report joins, with the relationship
// each one serves.
var requiredTables = []struct {
	table        string
	relationship string
}{
	{"customers", "customer base"},
	{"orders", "customers -> orders"},
	{"order_items", "orders -> order_items"},
}

// Engine computes reports against a store.
type Engine struct {
	store  store.Store
	logger *slog.Logger
}

// New creates an engine reading from s.
func New(s store.Store) *Engine {
	return &Engine{store: s, logger: slog.Default()}
}

// WithLogger returns a copy of the engine that logs to logger.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	cp := *e
	cp.logger = logger
	return &cp
}

// ComputeCustomerRevenue returns one row per customer, sorted by revenue
// descending then customer id ascending.
func (e *Engine) ComputeCustomerRevenue(ctx context.Context) ([]CustomerRevenueRow, error) {
	start := time.Now()
	if err := e.checkTables(ctx); err != nil {
		return nil, err
	}

	recs, err := e.store.Query(ctx, CustomerRevenueSQL)
	if err != nil {
		return nil, &core.ReportComputeError{Err: store.Wrap("query", "", err)}
	}

	rows := make([]CustomerRevenueRow, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, CustomerRevenueRow{
			CustomerID:    rec.String("customer_id"),
			FullName:      rec.String("full_name"),
			TotalOrders:   CoalesceInt(nullInt(rec, "total_orders")),
			TotalQuantity: CoalesceInt(nullInt(rec, "total_quantity")),
			TotalRevenue:  CoalesceDecimal(nullDecimal(rec, "total_revenue")),
		})
	}
	SortRows(rows)

	e.logger.Info("report computed",
		"customers", len(rows),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rows, nil
}

func (e *Engine) checkTables(ctx context.Context) error {
	names := make([]string, len(requiredTables))
	for i, rt := range requiredTables {
		names[i] = rt.table
	}
	missing, err := store.MissingTables(ctx, e.store, names...)
	if err != nil {
		return &core.ReportComputeError{Err: store.Wrap("query", "", err)}
	}
	if len(missing) == 0 {
		return nil
	}
	for _, rt := range requiredTables {
		if rt.table == missing[0] {
			return &core.ReportComputeError{Table: rt.table, Relationship: rt.relationship}
		}
	}
	return &core.ReportComputeError{Table: missing[0]}
}

func nullInt(rec store.Record, col string) sql.NullInt64 {
	if rec.IsNull(col) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: rec.Int64(col), Valid: true}
}

func nullDecimal(rec store.Record, col string) decimal.NullDecimal {
	if rec.IsNull(col) {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: rec.Decimal(col), Valid: true}
}

// FormatMoney renders an amount with thousands separators and two decimals,
// prefixed by currency: "Rs.1,234.50".
func FormatMoney(currency string, d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-3:]

	var b []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b = append(b, ',')
		}
		b = append(b, whole[i])
	}

	sign := ""
	if d.IsNegative() && !d.Round(2).IsZero() {
		sign = "-"
	}
	return fmt.Sprintf("%s%s%s%s", sign, currency, b, frac)
}
