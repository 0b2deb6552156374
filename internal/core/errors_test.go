package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "source", err: &SourceReadError{Entity: "orders", Err: ErrSourceMissing}, want: ExitSource},
		{name: "strict abort", err: &ValidationFailure{Entities: []string{"orders"}}, want: ExitValidation},
		{name: "store", err: &StoreAccessError{Op: "replace", Table: "orders", Err: errors.New("x")}, want: ExitStore},
		{name: "report", err: &ReportComputeError{Table: "orders"}, want: ExitReport},
		{name: "report wrapping store", err: &ReportComputeError{Err: &StoreAccessError{Op: "query", Err: errors.New("x")}}, want: ExitReport},
		{name: "wrapped", err: fmt.Errorf("load: %w", &SourceReadError{Entity: "x", Err: errors.New("y")}), want: ExitSource},
		{name: "config", err: &ConfigError{Err: errors.New("bad")}, want: ExitConfig},
		{name: "unknown", err: errors.New("bad flag"), want: ExitConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "source with path",
			err:  &SourceReadError{Entity: "orders", Path: "data/orders.csv", Err: ErrSourceMissing},
			want: "read source orders (data/orders.csv): source file not found",
		},
		{
			name: "strict abort lists entities sorted",
			err:  &ValidationFailure{Entities: []string{"products", "orders"}, Counts: map[string]int{"orders": 2, "products": 1}},
			want: "strict mode: load aborted for orders (2 rejected), products (1 rejected)",
		},
		{
			name: "store with table",
			err:  &StoreAccessError{Op: "replace", Table: "orders", Err: errors.New("disk full")},
			want: "store replace orders: disk full",
		},
		{
			name: "report missing table",
			err:  &ReportComputeError{Table: "order_items", Relationship: "orders -> order_items"},
			want: `compute report: table "order_items" missing (needed for orders -> order_items)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("cause")

	if !errors.Is(&SourceReadError{Err: cause}, cause) {
		t.Error("SourceReadError should unwrap to its cause")
	}
	if !errors.Is(&StoreAccessError{Err: cause}, cause) {
		t.Error("StoreAccessError should unwrap to its cause")
	}
	if !errors.Is(&ReportComputeError{Err: cause}, cause) {
		t.Error("ReportComputeError should unwrap to its cause")
	}
}
