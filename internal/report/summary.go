package report

import "github.com/shopspring/decimal"

// DefaultTopN is the size of the ranking when none is configured.
const DefaultTopN = 10

// Summary aggregates the report over active customers.
type Summary struct {
	TotalRevenue      decimal.Decimal      `json:"totalRevenue"`
	ActiveCustomers   int                  `json:"activeCustomers"`
	InactiveCustomers int                  `json:"inactiveCustomers"`
	TotalOrders       int64                `json:"totalOrders"`
	TotalQuantity     int64                `json:"totalQuantity"`
	AverageRevenue    decimal.Decimal      `json:"averageRevenue"`
	TopN              []CustomerRevenueRow `json:"topN"`
}

// ExportSummary summarises sorted report rows. TopN holds the first topN
// active customers; topN <= 0 uses DefaultTopN.
func ExportSummary(rows []CustomerRevenueRow, topN int) Summary {
	if topN <= 0 {
		topN = DefaultTopN
	}

	s := Summary{
		TotalRevenue:   decimal.Zero,
		AverageRevenue: decimal.Zero,
		TopN:           []CustomerRevenueRow{},
	}
	for _, r := range rows {
		if !r.Active() {
			s.InactiveCustomers++
			continue
		}
		s.ActiveCustomers++
		s.TotalOrders += r.TotalOrders
		s.TotalQuantity += r.TotalQuantity
		s.TotalRevenue = s.TotalRevenue.Add(r.TotalRevenue)
		if len(s.TopN) < topN {
			s.TopN = append(s.TopN, r)
		}
	}
	if s.ActiveCustomers > 0 {
		s.AverageRevenue = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.ActiveCustomers))).Round(2)
	}
	return s
}
