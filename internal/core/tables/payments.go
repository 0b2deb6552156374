package tables

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

// PaymentMethods are the accepted values of payments.payment_method after normalization.
var PaymentMethods = []string{
	"credit_card", "debit_card", "card", "upi", "net_banking", "netbanking",
	"wallet", "cod", "cash_on_delivery", "cash", "bank_transfer", "paypal",
}

// Payment is a validated payments row.
type Payment struct {
	PaymentID     string          `db:"payment_id"`
	OrderID       string          `db:"order_id"`
	PaymentMethod string          `db:"payment_method"`
	PaymentDate   *time.Time      `db:"payment_date"`
	Amount        decimal.Decimal `db:"amount" validate:"gte=0"`
}

func init() {
	registerPayments()
}

func registerPayments() {
	core.Register(core.EntityDef{
		Name:  "payments",
		Label: "Payments",
		Order: orderPayments,
		Fields: []core.FieldSpec{
			{Name: "payment_id", Type: core.FieldKey, Key: core.KeyPrimary},
			{Name: "order_id", Type: core.FieldKey, Key: core.KeyForeign, References: "orders"},
			{Name: "payment_method", Type: core.FieldEnum, EnumValues: PaymentMethods},
			{Name: "payment_date", Type: core.FieldDate, Missing: core.MissingNull},
			{Name: "amount", Type: core.FieldDecimal},
		},
		Build: func(row core.Row) (any, error) {
			return Payment{
				PaymentID:     row.String("payment_id"),
				OrderID:       row.String("order_id"),
				PaymentMethod: row.String("payment_method"),
				PaymentDate:   row.Date("payment_date"),
				Amount:        row.Decimal("amount"),
			}, nil
		},
		Values: func(record any) []any {
			p := record.(Payment)
			return []any{p.PaymentID, p.OrderID, p.PaymentMethod, dateValue(p.PaymentDate), p.Amount}
		},
	})
}
