package tables

import (
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// OrderItem is a validated order_items row.
type OrderItem struct {
	ItemID    string          `db:"item_id"`
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Quantity  int64           `db:"quantity" validate:"gt=0"`
	UnitPrice decimal.Decimal `db:"unit_price" validate:"gte=0"`
}

func init() {
	registerOrderItems()
}

func registerOrderItems() {
	core.Register(core.EntityDef{
		Name:  "order_items",
		Label: "Order Items",
		Order: orderOrderItems,
		Fields: []core.FieldSpec{
			{Name: "item_id", Type: core.FieldKey, Key: core.KeyPrimary},
			{Name: "order_id", Type: core.FieldKey, Key: core.KeyForeign, References: "orders"},
			{Name: "product_id", Type: core.FieldKey, Key: core.KeyForeign, References: "products"},
			{Name: "quantity", Type: core.FieldInteger},
			{Name: "unit_price", Type: core.FieldDecimal},
		},
		Build: func(row core.Row) (any, error) {
			return OrderItem{
				ItemID:    row.String("item_id"),
				OrderID:   row.String("order_id"),
				ProductID: row.String("product_id"),
				Quantity:  row.Int("quantity"),
				UnitPrice: row.Decimal("unit_price"),
			}, nil
		},
		Values: func(record any) []any {
			i := record.(OrderItem)
			return []any{i.ItemID, i.OrderID, i.ProductID, i.Quantity, i.UnitPrice}
		},
	})
}
