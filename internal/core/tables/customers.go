package tables

import (
	"time"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// Customer is a validated customers row.
type Customer struct {
	CustomerID string     `db:"customer_id"`
	FullName   string     `db:"full_name" validate:"required"`
	Email      string     `db:"email"`
	Phone      string     `db:"phone"`
	City       string     `db:"city"`
	CreatedAt  *time.Time `db:"created_at"`
}

func init() {
	registerCustomers()
}

func registerCustomers() {
	core.Register(core.EntityDef{
		Name:  "customers",
		Label: "Customers",
		Order: orderCustomers,
		Fields: []core.FieldSpec{
			{Name: "customer_id", Type: core.FieldKey, Key: core.KeyPrimary},
			{Name: "full_name", Type: core.FieldText},
			{Name: "email", Type: core.FieldText, Missing: core.MissingDefault},
			{Name: "phone", Type: core.FieldText, Missing: core.MissingDefault},
			{Name: "city", Type: core.FieldText, Missing: core.MissingDefault},
			{Name: "created_at", Type: core.FieldDate, Missing: core.MissingNull},
		},
		Build: func(row core.Row) (any, error) {
			return Customer{
				CustomerID: row.String("customer_id"),
				FullName:   row.String("full_name"),
				Email:      row.String("email"),
				Phone:      row.String("phone"),
				City:       row.String("city"),
				CreatedAt:  row.Date("created_at"),
			}, nil
		},
		Values: func(record any) []any {
			c := record.(Customer)
			return []any{c.CustomerID, c.FullName, c.Email, c.Phone, c.City, dateValue(c.CreatedAt)}
		},
	})
}
