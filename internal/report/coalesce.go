package report

import (
	"database/sql"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// CoalesceInt resolves an aggregate over an empty group to zero.
func CoalesceInt(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

// CoalesceDecimal resolves an aggregate over an empty group to zero and
// rounds to cents.
func CoalesceDecimal(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal.Round(2)
}

// SortRows orders rows by revenue descending, then customer id ascending in
// natural order. Equal rows keep their relative order.
func SortRows(rows []CustomerRevenueRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if c := rows[i].TotalRevenue.Cmp(rows[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return core.CompareKeys(rows[i].CustomerID, rows[j].CustomerID) < 0
	})
}
