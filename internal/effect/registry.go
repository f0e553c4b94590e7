// Package effect holds the static effect registry: a name → metadata table
// populated once at startup and only read afterwards.
package effect

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

var (
	ErrEffectNotFound    = errors.New("effect not found")
	ErrDuplicateEffect   = errors.New("duplicate effect registration")
	ErrInvalidDefinition = errors.New("invalid effect definition")
)

// Registry maps effect names to definitions.
//
// Thread-safe: sync.RWMutex, though writes only happen during startup.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition, 32)}
}

// LoadRegistry builds a registry from a fixed registration list.
// The first invalid or duplicate entry aborts the load.
func LoadRegistry(defs []Definition) (*Registry, error) {
	r := NewRegistry()
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	slog.Info("effect registry loaded", "count", r.Len())
	return r, nil
}

// Register adds def. An existing name is never overwritten.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.defs[def.Name]; ok {
		slog.Error("duplicate effect registration", "effect", def.Name)
		return fmt.Errorf("registering %q: %w", def.Name, ErrDuplicateEffect)
	}
	r.defs[def.Name] = def
	return nil
}

// MustRegister is Register that panics. Startup configuration only.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("looking up %q: %w", name, ErrEffectNotFound)
	}
	return def, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[name]
	return ok
}

// ListByCategory returns the sorted names in category c.
func (r *Registry) ListByCategory(c Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, def := range r.defs {
		if def.Category == c {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Names returns all registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.defs))
}

// Len returns the number of registered effects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
