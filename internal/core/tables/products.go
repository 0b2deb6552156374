package tables

import (
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// Product is a validated products row.
type Product struct {
	ProductID   string          `db:"product_id"`
	ProductName string          `db:"product_name" validate:"required"`
	Category    string          `db:"category"`
	Price       decimal.Decimal `db:"price" validate:"gte=0"`
	StockQty    int64           `db:"stock_qty" validate:"gte=0"`
}

func init() {
	registerProducts()
}

func registerProducts() {
	core.Register(core.EntityDef{
		Name:  "products",
		Label: "Products",
		Order: orderProducts,
		Fields: []core.FieldSpec{
			{Name: "product_id", Type: core.FieldKey, Key: core.KeyPrimary},
			{Name: "product_name", Type: core.FieldText},
			{Name: "category", Type: core.FieldText, Missing: core.MissingDefault},
			{Name: "price", Type: core.FieldDecimal},
			{Name: "stock_qty", Type: core.FieldInteger, Missing: core.MissingDefault},
		},
		Build: func(row core.Row) (any, error) {
			return Product{
				ProductID:   row.String("product_id"),
				ProductName: row.String("product_name"),
				Category:    row.String("category"),
				Price:       row.Decimal("price"),
				StockQty:    row.Int("stock_qty"),
			}, nil
		},
		Values: func(record any) []any {
			p := record.(Product)
			return []any{p.ProductID, p.ProductName, p.Category, p.Price, p.StockQty}
		},
	})
}
