package source

import (
	"fmt"
	"sort"
	"sync"
)

// Builder constructs an adapter on first use. Builders close over the
// shared identity pools so every adapter sees the same rotation state.
type Builder func() (Adapter, error)

// Registry hands out one shared adapter instance per source type,
// constructed lazily. The singleton-per-key invariant holds for the life
// of the registry: two Gets for the same key always return the same
// instance until Reset.
type Registry struct {
	mu       sync.Mutex
	builders map[string]Builder
	adapters map[string]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]Builder),
		adapters: make(map[string]Adapter),
	}
}

// Register installs a builder for a source type key.
func (r *Registry) Register(sourceType string, build Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[sourceType] = build
}

// Get returns the adapter for a source type, constructing it on first
// use. An unknown source type is a synchronous error, surfaced before any
// network call.
func (r *Registry) Get(sourceType string) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if adapter, ok := r.adapters[sourceType]; ok {
		return adapter, nil
	}

	build, ok := r.builders[sourceType]
	if !ok {
		return nil, fmt.Errorf("unknown source type %q", sourceType)
	}
	adapter, err := build()
	if err != nil {
		return nil, fmt.Errorf("build %q adapter: %w", sourceType, err)
	}
	r.adapters[sourceType] = adapter
	return adapter, nil
}

// ListActive returns the source types that have been instantiated,
// sorted.
func (r *Registry) ListActive() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]string, 0, len(r.adapters))
	for key := range r.adapters {
		active = append(active, key)
	}
	sort.Strings(active)
	return active
}

// Reset discards all instantiated adapters. Used in test teardown;
// builders stay registered.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters = make(map[string]Adapter)
}
