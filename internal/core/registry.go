package core

import (
	"fmt"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]TableDefinition)
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry.
// Panics if a table with the same key is already registered or if the
// definition is unusable.
func Register(def TableDefinition) {
	if err := validateDefinition(def); err != nil {
		panic(err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Key]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Info.Key))
	}

	registry[def.Info.Key] = def
}

// validateDefinition checks the static shape of a definition.
func validateDefinition(def TableDefinition) error {
	if def.Info.Key == "" {
		return fmt.Errorf("table definition without key")
	}
	if len(def.Patterns) == 0 {
		return fmt.Errorf("table %s: no filename patterns", def.Info.Key)
	}
	for _, p := range def.Patterns {
		if !strings.Contains(p, YearPlaceholder) {
			return fmt.Errorf("table %s: pattern %q lacks %s", def.Info.Key, p, YearPlaceholder)
		}
	}
	return nil
}

// Get returns a table definition by key.
// Returns false if not found.
func Get(key string) (TableDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// All returns all registered table definitions in join order.
func All() []TableDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]TableDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	return sortByOrder(result)
}

// TableCount returns the number of registered tables.
func TableCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]TableDefinition)
}
