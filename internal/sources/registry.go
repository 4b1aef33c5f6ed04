package sources

import (
	"fmt"
	"sort"
	"sync"

	amerrors "github.com/mantonx/amalgam/internal/errors"
)

// Factory creates a new source in its default state
type Factory func() (Source, error)

// Registry maps type identifiers to source factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry that already knows the default source
func NewRegistry() *Registry {
	return &Registry{
		factories: map[string]Factory{
			DefaultTypeID: func() (Source, error) { return NewDefault(), nil },
		},
	}
}

// Register adds a factory. Registering an identifier twice replaces the
// earlier factory; the default source cannot be replaced.
func (r *Registry) Register(typeID string, factory Factory) error {
	if typeID == "" {
		return fmt.Errorf("source type id must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("nil factory for source %s", typeID)
	}
	if typeID == DefaultTypeID {
		return fmt.Errorf("source %s is reserved", DefaultTypeID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[typeID] = factory
	return nil
}

// Resolve creates a fresh source for typeID. Any failure is reported as an
// UNRESOLVABLE_IDENTIFIER error.
func (r *Registry) Resolve(typeID string) (Source, error) {
	r.mu.RLock()
	factory, exists := r.factories[typeID]
	r.mu.RUnlock()

	if !exists {
		return nil, amerrors.NewUnresolvableIdentifier(typeID, fmt.Errorf("no factory registered"))
	}

	return construct(typeID, factory)
}

func construct(typeID string, factory Factory) (src Source, err error) {
	defer func() {
		if r := recover(); r != nil {
			src = nil
			err = amerrors.NewUnresolvableIdentifier(typeID, fmt.Errorf("factory panicked: %v", r))
		}
	}()

	src, err = factory()
	if err != nil {
		return nil, amerrors.NewUnresolvableIdentifier(typeID, err)
	}
	if src == nil {
		return nil, amerrors.NewUnresolvableIdentifier(typeID, fmt.Errorf("factory returned no source"))
	}
	return src, nil
}

// IsRegistered checks if a type identifier is known
func (r *Registry) IsRegistered(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[typeID]
	return exists
}

// ListRegistered returns all registered type identifiers, sorted
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for typeID := range r.factories {
		ids = append(ids, typeID)
	}
	sort.Strings(ids)
	return ids
}
