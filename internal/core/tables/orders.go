package tables

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// OrderStatuses are the accepted values of orders.status after normalization.
var OrderStatuses = []string{
	"pending", "placed", "processing", "shipped",
	"delivered", "completed", "cancelled", "returned",
}

// Order is a validated orders row.
// TotalAmount is stored as supplied and never reconciled with the items.
type Order struct {
	OrderID     string          `db:"order_id"`
	CustomerID  string          `db:"customer_id"`
	OrderDate   time.Time       `db:"order_date"`
	Status      string          `db:"status"`
	TotalAmount decimal.Decimal `db:"total_amount" validate:"gte=0"`
}

func init() {
	registerOrders()
}

func registerOrders() {
	core.Register(core.EntityDef{
		Name:  "orders",
		Label: "Orders",
		Order: orderOrders,
		Fields: []core.FieldSpec{
			{Name: "order_id", Type: core.FieldKey, Key: core.KeyPrimary},
			{Name: "customer_id", Type: core.FieldKey, Key: core.KeyForeign, References: "customers"},
			{Name: "order_date", Type: core.FieldDate},
			{Name: "status", Type: core.FieldEnum, EnumValues: OrderStatuses},
			{Name: "total_amount", Type: core.FieldDecimal, Missing: core.MissingDefault},
		},
		Build: func(row core.Row) (any, error) {
			o := Order{
				OrderID:     row.String("order_id"),
				CustomerID:  row.String("customer_id"),
				Status:      row.String("status"),
				TotalAmount: row.Decimal("total_amount"),
			}
			if d := row.Date("order_date"); d != nil {
				o.OrderDate = *d
			}
			return o, nil
		},
		Values: func(record any) []any {
			o := record.(Order)
			return []any{o.OrderID, o.CustomerID, o.OrderDate, o.Status, o.TotalAmount}
		},
	})
}
