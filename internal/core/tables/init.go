// Package tables registers all entity definitions with the core registry.
// Import this package to ensure all entities are registered.
package tables

// This file exists to provide a single import point.
// Each entity file uses init() to register its definition.

import "time"

// Load order. Parents must come before the entities that reference them.
const (
	orderCustomers = 10 * (iota + 1)
	orderProducts
	orderOrders
	orderOrderItems
	orderPayments
)

// dateValue converts an optional date to a store value.
func dateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
