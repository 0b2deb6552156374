package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType represents the semantic type of a field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldDecimal
	FieldInteger
	FieldKey
)

// MissingPolicy decides what happens when a field is absent or empty.
type MissingPolicy int

const (
	// MissingReject invalidates the row (MISSING_REQUIRED).
	MissingReject MissingPolicy = iota
	// MissingDefault assigns FieldSpec.Default, or the zero value of the type.
	MissingDefault
	// MissingNull stores an explicit NULL.
	MissingNull
)

// KeyRole is the role a field plays in the relational model.
type KeyRole int

const (
	KeyNone KeyRole = iota
	KeyPrimary
	KeyForeign
)

// FieldSpec defines a single field of an entity.
type FieldSpec struct {
	Name       string        // Column name, also the CSV header (case-insensitive)
	Type       FieldType     // Semantic type
	Missing    MissingPolicy // Null/default policy
	Key        KeyRole       // Primary, foreign or none
	References string        // Target entity name when Key == KeyForeign
	EnumValues []string      // Allowed values for FieldEnum (normalized form)
	Default    string        // Raw default for MissingDefault; empty means type zero
}

// Required reports whether a missing value invalidates the row.
func (f FieldSpec) Required() bool {
	return f.Missing == MissingReject
}

// Nullable reports whether the stored column may hold NULL.
func (f FieldSpec) Nullable() bool {
	return f.Missing == MissingNull
}

// RawRecord is one source row before validation.
// Line is the 1-based position in the source (header excluded for in-memory data).
type RawRecord struct {
	Line   int
	Values map[string]string
}

// Row holds the coerced values of a record keyed by field name.
// Values are string, int64, decimal.Decimal, time.Time or nil (explicit NULL).
type Row map[string]any

// String returns a text, key or enum value, or "" if absent.
func (r Row) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Int returns an integer value, or 0 if absent.
func (r Row) Int(name string) int64 {
	i, _ := r[name].(int64)
	return i
}

// Decimal returns a decimal value, or zero if absent.
func (r Row) Decimal(name string) decimal.Decimal {
	d, ok := r[name].(decimal.Decimal)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Date returns a date value, or nil if the field is NULL.
func (r Row) Date(name string) *time.Time {
	t, ok := r[name].(time.Time)
	if !ok {
		return nil
	}
	return &t
}

// HeaderIndex maps column names (lowercase) to their position in a CSV row.
type HeaderIndex map[string]int

// BuildFunc converts a coerced row into the entity's typed record.
type BuildFunc func(row Row) (any, error)

// ValuesFunc converts a typed record into store values, in Fields order.
// Values must be string, int64, decimal.Decimal, time.Time or nil.
type ValuesFunc func(record any) []any

// EntityDef contains everything needed to validate and persist one entity.
type EntityDef struct {
	Name   string // Table name: "customers"
	Label  string // Display name: "Customers"
	Order  int    // Dependency rank; parents must have a lower Order than children
	Fields []FieldSpec
	Build  BuildFunc
	Values ValuesFunc
}

// Field looks up a field spec by name (case-insensitive).
func (d EntityDef) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// PrimaryKey returns the primary key field.
// Registration guarantees exactly one exists.
func (d EntityDef) PrimaryKey() FieldSpec {
	for _, f := range d.Fields {
		if f.Key == KeyPrimary {
			return f
		}
	}
	return FieldSpec{}
}

// ForeignKeys returns the foreign key fields in declaration order.
func (d EntityDef) ForeignKeys() []FieldSpec {
	var fks []FieldSpec
	for _, f := range d.Fields {
		if f.Key == KeyForeign {
			fks = append(fks, f)
		}
	}
	return fks
}

// FieldNames returns the ordered list of field names.
func (d EntityDef) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// SQLTypes returns the column types for the store, in Fields order.
func (d EntityDef) SQLTypes() []string {
	types := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		types[i] = SQLType(f.Type)
	}
	return types
}

// NotNull returns, per field, whether the stored column is NOT NULL.
func (d EntityDef) NotNull() []bool {
	out := make([]bool, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = !f.Nullable()
	}
	return out
}

// SQLType maps a semantic type to the column type used by every store.
// The spellings are valid in both PostgreSQL and DuckDB.
func SQLType(ft FieldType) string {
	switch ft {
	case FieldDate:
		return "DATE"
	case FieldDecimal:
		return "DECIMAL(12,2)"
	case FieldInteger:
		return "BIGINT"
	default:
		return "TEXT"
	}
}

// FieldTypeName returns a human-readable name for a field type.
func FieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	case FieldDecimal:
		return "decimal"
	case FieldInteger:
		return "integer"
	case FieldKey:
		return "key"
	default:
		return "value"
	}
}
