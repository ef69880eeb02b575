package binding

import (
	"fmt"
	"sort"
	"sync"

	"github.com/docbench/docbench/pkg/logger"
)

// Factory creates a new binding instance. The harness calls the factory once
// per worker; the returned DB is owned by that worker.
type Factory func(log *logger.Logger) DB

// Registry manages the registration and retrieval of binding factories.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates a new binding registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register registers a binding factory under name. Registering the same name
// twice replaces the earlier factory.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[name] = factory
}

// Create builds a new binding instance by name. Returns ErrBindingNotFound
// if no factory is registered under name.
func (r *Registry) Create(name string, log *logger.Logger) (DB, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBindingNotFound, name)
	}

	return factory(log), nil
}

// IsRegistered checks if a factory is registered under name.
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}

// ListRegistered returns the names of all registered bindings, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Unregister removes a factory from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.factories, name)
}

// globalRegistry is the default global binding registry.
var globalRegistry = NewRegistry()

// Register registers a binding factory in the global registry.
func Register(name string, factory Factory) {
	globalRegistry.Register(name, factory)
}

// Create builds a binding instance from the global registry.
func Create(name string, log *logger.Logger) (DB, error) {
	return globalRegistry.Create(name, log)
}

// IsRegistered checks the global registry for name.
func IsRegistered(name string) bool {
	return globalRegistry.IsRegistered(name)
}

// ListRegistered returns all binding names in the global registry.
func ListRegistered() []string {
	return globalRegistry.ListRegistered()
}

// GlobalRegistry returns the global binding registry.
func GlobalRegistry() *Registry {
	return globalRegistry
}
