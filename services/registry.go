package services

import (
	"slices"
	"sync"
)

// ModuleRegistry records the client modules a page has to initialise,
// grouped by category.
type ModuleRegistry struct {
	mu      sync.RWMutex
	modules map[string][]string
}

// Modules is the registry shared by all handlers.
var Modules = NewModuleRegistry()

// NewModuleRegistry returns an empty registry.
func NewModuleRegistry() *ModuleRegistry {
	return &ModuleRegistry{modules: make(map[string][]string)}
}

// RegisterNamespace adds namespace to category. Registering the same
// namespace twice is a no-op.
func (r *ModuleRegistry) RegisterNamespace(namespace, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slices.Contains(r.modules[category], namespace) {
		return
	}
	r.modules[category] = append(r.modules[category], namespace)
}

// Namespaces returns the namespaces of category in registration order.
func (r *ModuleRegistry) Namespaces(category string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.modules[category])
}
