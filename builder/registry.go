// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package builder

import (
	"sort"
	"sync"
)

// RegistryEntry is a registered builder.
type RegistryEntry struct {
	// Name is the unique key of the builder.
	Name string

	// Priority orders Keys (higher first).
	Priority int

	// Factory creates builder instances.
	Factory Factory
}

// defaultRegistry holds the built-in builders.
var defaultRegistry = NewRegistry()

// Registry maps builder keys to factories.
//
// Example registration:
//
//	func init() {
//	    builder.Register("wireframe", 5, newWireframe)
//	}
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates an empty registry.
// Most code should use the default registry via Default and Register.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Default returns the registry holding the built-in builders.
func Default() *Registry { return defaultRegistry }

// Register adds a builder to the default registry.
func Register(name string, priority int, factory Factory) {
	defaultRegistry.Register(name, priority, factory)
}

// Register adds a builder. Registering a name that already exists replaces
// the previous entry.
func (r *Registry) Register(name string, priority int, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}
	r.entries[name] = &RegistryEntry{
		Name:     name,
		Priority: priority,
		Factory:  factory,
	}
}

// Unregister removes a builder.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// Keys returns all registered names sorted by priority, highest first.
// Names of equal priority are sorted alphabetically.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*RegistryEntry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Name < entries[j].Name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Get returns information about a specific builder.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// New creates the builder registered under name.
func (r *Registry) New(name string, deps Deps) (MapBuilder, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return entry.Factory(deps), nil
}

// NotFoundError indicates a builder key is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "builder: not found: " + e.Name
}

// init registers the built-in builders.
func init() {
	Register(Key2D, 40, NewFlat)
	Register(Key3DMesh, 30, NewDisplaced)
	Register(KeyShaderColor, 20, NewShaderColor)
	Register(KeyShaderSat, 10, NewShaderSat)
}
