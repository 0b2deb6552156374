package tables

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ecomrevenue/internal/core"
)

func TestRegistry_AllEntitiesInDependencyOrder(t *testing.T) {
	assert.Equal(t,
		[]string{"customers", "products", "orders", "order_items", "payments"},
		core.Names())
	require.NoError(t, core.CheckReferences())
}

func TestRegistry_Keys(t *testing.T) {
	tests := []struct {
		entity string
		pk     string
		fks    map[string]string
	}{
		{entity: "customers", pk: "customer_id"},
		{entity: "products", pk: "product_id"},
		{entity: "orders", pk: "order_id", fks: map[string]string{"customer_id": "customers"}},
		{entity: "order_items", pk: "item_id", fks: map[string]string{"order_id": "orders", "product_id": "products"}},
		{entity: "payments", pk: "payment_id", fks: map[string]string{"order_id": "orders"}},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			def := core.MustGet(tt.entity)
			assert.Equal(t, tt.pk, def.PrimaryKey().Name)

			got := map[string]string{}
			for _, fk := range def.ForeignKeys() {
				got[fk.Name] = fk.References
			}
			if tt.fks == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.fks, got)
			}
		})
	}
}

func TestBuildAndValues_MatchFieldOrder(t *testing.T) {
	for _, def := range core.All() {
		t.Run(def.Name, func(t *testing.T) {
			row := core.Row{}
			for _, f := range def.Fields {
				val, verr := core.CoerceCell(f, sampleValue(f))
				require.Nil(t, verr, "field %s", f.Name)
				row[f.Name] = val
			}

			record, err := def.Build(row)
			require.NoError(t, err)
			require.Nil(t, core.CheckRange(record))

			values := def.Values(record)
			require.Len(t, values, len(def.Fields))
			for i, f := range def.Fields {
				assert.Equal(t, row[f.Name], values[i], "field %s", f.Name)
			}
		})
	}
}

func sampleValue(f core.FieldSpec) string {
	switch f.Type {
	case core.FieldDecimal:
		return "12.50"
	case core.FieldInteger:
		return "2"
	case core.FieldDate:
		return "2024-01-15"
	case core.FieldEnum:
		return f.EnumValues[0]
	default:
		return "X1"
	}
}

func TestRangeTags(t *testing.T) {
	tests := []struct {
		name      string
		record    any
		wantField string
	}{
		{name: "negative price", record: Product{ProductID: "P1", ProductName: "Pen", Price: decimal.NewFromInt(-1)}, wantField: "price"},
		{name: "negative stock", record: Product{ProductID: "P1", ProductName: "Pen", StockQty: -1}, wantField: "stock_qty"},
		{name: "zero quantity", record: OrderItem{ItemID: "I1", Quantity: 0}, wantField: "quantity"},
		{name: "negative unit price", record: OrderItem{ItemID: "I1", Quantity: 1, UnitPrice: decimal.NewFromInt(-5)}, wantField: "unit_price"},
		{name: "negative total", record: Order{OrderID: "O1", TotalAmount: decimal.NewFromInt(-5)}, wantField: "total_amount"},
		{name: "negative payment", record: Payment{PaymentID: "PY1", Amount: decimal.NewFromInt(-5)}, wantField: "amount"},
		{name: "valid customer without date", record: Customer{CustomerID: "C1", FullName: "Asha"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := core.CheckRange(tt.record)
			if tt.wantField == "" {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, core.ReasonRangeViolation, verr.Reason)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestDateValue(t *testing.T) {
	assert.Nil(t, dateValue(nil))
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, d, dateValue(&d))
}
