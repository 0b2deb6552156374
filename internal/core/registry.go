package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]EntityDef)
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry.
// Panics if the name is taken or the definition is malformed.
func Register(def EntityDef) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("entity already registered: %s", def.Name))
	}
	if err := checkDefinition(def); err != nil {
		panic(fmt.Sprintf("invalid entity %s: %v", def.Name, err))
	}

	registry[def.Name] = def
}

// checkDefinition validates the shape of a single definition.
func checkDefinition(def EntityDef) error {
	if def.Name == "" {
		return fmt.Errorf("empty name")
	}
	if def.Build == nil || def.Values == nil {
		return fmt.Errorf("Build and Values are required")
	}

	primaries := 0
	seen := make(map[string]bool, len(def.Fields))
	for _, f := range def.Fields {
		key := strings.ToLower(f.Name)
		if seen[key] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[key] = true

		switch f.Key {
		case KeyPrimary:
			primaries++
			if f.Missing != MissingReject {
				return fmt.Errorf("primary key %q must be required", f.Name)
			}
		case KeyForeign:
			if f.References == "" {
				return fmt.Errorf("foreign key %q has no target", f.Name)
			}
		}
		if f.Type == FieldEnum && len(f.EnumValues) == 0 {
			return fmt.Errorf("enum field %q has no values", f.Name)
		}
	}
	if primaries != 1 {
		return fmt.Errorf("expected exactly one primary key, got %d", primaries)
	}
	return nil
}

// Get returns an entity definition by name.
// Returns false if not found.
func Get(name string) (EntityDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// MustGet returns an entity definition or panics.
func MustGet(name string) EntityDef {
	def, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("unknown entity: %s", name))
	}
	return def
}

// All returns all registered entities in dependency order.
// Sorted by Order, then by name for consistent ordering.
func All() []EntityDef {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EntityDef, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// Names returns entity names in dependency order.
func Names() []string {
	defs := All()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// CheckReferences verifies that every foreign key targets a registered
// entity that is processed earlier. Called once the registry is complete.
func CheckReferences() error {
	defs := All()
	rank := make(map[string]int, len(defs))
	for _, def := range defs {
		rank[def.Name] = def.Order
	}

	var errs []string
	for _, def := range defs {
		for _, fk := range def.ForeignKeys() {
			order, ok := rank[fk.References]
			switch {
			case !ok:
				errs = append(errs, fmt.Sprintf("%s.%s references unknown entity %q", def.Name, fk.Name, fk.References))
			case order >= def.Order:
				errs = append(errs, fmt.Sprintf("%s.%s references %s which is not loaded before it", def.Name, fk.Name, fk.References))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry references invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// EntityCount returns the number of registered entities.
func EntityCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]EntityDef)
}
