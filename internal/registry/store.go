package registry

import (
	"sync/atomic"

	"github.com/edoardob90/runits/internal/units"
)

// Store holds the active Registry. Readers call Load or Resolve without
// locking; writers build a complete replacement and Publish it, so a reader
// sees either the old registry or the new one, never a partial state.
type Store struct {
	current atomic.Pointer[Registry]
}

// NewStore creates a store, optionally with an initial registry.
func NewStore(initial *Registry) *Store {
	s := &Store{}
	if initial != nil {
		s.current.Store(initial)
	}
	return s
}

// Load returns the active registry, or nil before the first Publish.
func (s *Store) Load() *Registry {
	return s.current.Load()
}

// Publish swaps in r and returns the registry it replaced.
func (s *Store) Publish(r *Registry) *Registry {
	return s.current.Swap(r)
}

// Resolve resolves name against the active registry.
func (s *Store) Resolve(name string) (units.Unit, error) {
	r := s.current.Load()
	if r == nil {
		return units.Unit{}, ErrNotPublished
	}
	return r.Resolve(name)
}
