package core

// validation.go provides row-level validation for source data before loading.
//
// Validation happens at three levels:
//  1. Header validation: ensures every required column is present
//  2. Cell coercion: converts each raw cell according to its FieldSpec and
//     applies the missing-value policy
//  3. Range checks: runs the validate struct tags of the typed record
//
// Key uniqueness and references need the state of the whole batch and are
// checked by the ingestion pipeline.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Reason is the code attached to every rejected row.
type Reason string

const (
	ReasonTypeMismatch      Reason = "TYPE_MISMATCH"
	ReasonMissingRequired   Reason = "MISSING_REQUIRED"
	ReasonDuplicateKey      Reason = "DUPLICATE_KEY"
	ReasonDanglingReference Reason = "DANGLING_REFERENCE"
	ReasonRangeViolation    Reason = "RANGE_VIOLATION"
)

// Reasons lists every reason code in a stable order.
var Reasons = []Reason{
	ReasonTypeMismatch,
	ReasonMissingRequired,
	ReasonDuplicateKey,
	ReasonDanglingReference,
	ReasonRangeViolation,
}

// RowValidationError is the reason a single row was rejected.
type RowValidationError struct {
	Field   string // Field/column name
	Value   string // The offending raw value
	Reason  Reason
	Message string // Human-readable error message
}

func (e *RowValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Reason, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// RowValidator coerces raw records of one entity into typed rows.
type RowValidator struct {
	def EntityDef
}

// NewRowValidator creates a validator for the given entity definition.
func NewRowValidator(def EntityDef) *RowValidator {
	return &RowValidator{def: def}
}

// Coerce converts every field of a record and returns the first problem found,
// in field declaration order.
func (v *RowValidator) Coerce(rec RawRecord) (Row, *RowValidationError) {
	values := make(map[string]string, len(rec.Values))
	for k, val := range rec.Values {
		values[strings.ToLower(strings.TrimSpace(k))] = val
	}

	row := make(Row, len(v.def.Fields))
	for _, spec := range v.def.Fields {
		raw, present := values[strings.ToLower(spec.Name)]
		if !present {
			raw = ""
		}
		val, verr := CoerceCell(spec, raw)
		if verr != nil {
			return nil, verr
		}
		row[spec.Name] = val
	}
	return row, nil
}

// CoerceCell converts one raw cell according to its spec.
// Empty cells follow the spec's MissingPolicy.
func CoerceCell(spec FieldSpec, raw string) (any, *RowValidationError) {
	cell := CleanCell(raw)
	if cell == "" {
		switch spec.Missing {
		case MissingNull:
			return nil, nil
		case MissingDefault:
			if spec.Default != "" {
				return CoerceCell(FieldSpec{Name: spec.Name, Type: spec.Type, EnumValues: spec.EnumValues}, spec.Default)
			}
			return zeroValue(spec.Type), nil
		default:
			return nil, &RowValidationError{
				Field:   spec.Name,
				Reason:  ReasonMissingRequired,
				Message: "required field is empty",
			}
		}
	}

	var (
		val any
		err error
	)
	switch spec.Type {
	case FieldKey:
		val, err = ToKey(cell)
	case FieldText:
		val, _ = ToText(cell)
	case FieldEnum:
		val, err = ToEnum(cell, spec.EnumValues)
	case FieldDate:
		val, err = ToDate(cell)
	case FieldDecimal:
		val, err = ToDecimal(cell)
	case FieldInteger:
		val, err = ToInteger(cell)
	default:
		err = fmt.Errorf("unsupported field type %d", spec.Type)
	}
	if err != nil {
		return nil, &RowValidationError{
			Field:   spec.Name,
			Value:   cell,
			Reason:  ReasonTypeMismatch,
			Message: fmt.Sprintf("invalid %s: %v", FieldTypeName(spec.Type), err),
		}
	}
	return val, nil
}

// zeroValue is the default assigned when no explicit Default is declared.
func zeroValue(ft FieldType) any {
	switch ft {
	case FieldDecimal:
		return decimal.Zero
	case FieldInteger:
		return int64(0)
	case FieldDate:
		return nil
	default:
		return ""
	}
}

// ValidateHeaders validates that all required columns exist in the CSV headers.
// Returns the header index, or an error listing missing columns.
func ValidateHeaders(headers []string, def EntityDef) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, spec := range def.Fields {
		if spec.Required() {
			if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
				missing = append(missing, spec.Name)
			}
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}

var (
	rangeValidator     *validator.Validate
	rangeValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	rangeValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("db"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		rangeValidator = v
	})
	return rangeValidator
}

// CheckRange runs the validate tags of a typed record and reports the first
// violation as RANGE_VIOLATION.
func CheckRange(record any) *RowValidationError {
	err := getValidator().Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &RowValidationError{Reason: ReasonRangeViolation, Message: err.Error()}
	}

	fe := fieldErrs[0]
	return &RowValidationError{
		Field:   fe.Field(),
		Value:   fmt.Sprint(fe.Value()),
		Reason:  ReasonRangeViolation,
		Message: rangeMessage(fe),
	}
}

func rangeMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
