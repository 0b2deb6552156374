package store

import (
	"database/sql/driver"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// String returns a column as text. NULL is "".
func (r Record) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns a column as an integer. NULL and unparseable values are 0.
func (r Record) Int64(col string) int64 {
	switch v := r[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case int16:
		return int64(v)
	case uint64:
		return int64(v)
	case uint32:
		return int64(v)
	case float64:
		return int64(v)
	case *big.Int:
		return v.Int64()
	case decimal.Decimal:
		return v.IntPart()
	case nil:
		return 0
	default:
		n, _ := strconv.ParseInt(r.String(col), 10, 64)
		return n
	}
}

// Decimal returns a column as a decimal. NULL and unparseable values are zero.
func (r Record) Decimal(col string) decimal.Decimal {
	switch v := r[col].(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return v
	case int64:
		return decimal.NewFromInt(v)
	case int32:
		return decimal.NewFromInt32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case *big.Int:
		return decimal.NewFromBigInt(v, 0)
	case driver.Valuer:
		dv, err := v.Value()
		if err != nil || dv == nil {
			return decimal.Zero
		}
		return Record{col: dv}.Decimal(col)
	default:
		d, err := decimal.NewFromString(r.String(col))
		if err != nil {
			return decimal.Zero
		}
		return d
	}
}

// Time returns a column as a time. NULL is the zero time.
func (r Record) Time(col string) time.Time {
	if t, ok := r[col].(time.Time); ok {
		return t
	}
	return time.Time{}
}

// IsNull reports whether a column is absent or NULL.
func (r Record) IsNull(col string) bool {
	return r[col] == nil
}

// Bool returns a column as a boolean. NULL and unparseable values are false.
func (r Record) Bool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case nil:
		return false
	default:
		b, _ := strconv.ParseBool(r.String(col))
		return b
	}
}
