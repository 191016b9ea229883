package system

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/edoardob90/runits/internal/units"
)

// Manager holds named unit systems and the caller's active choice.
//
// The active system is state of this Manager instance only. Callers that
// convert concurrently against different systems should pass the system
// explicitly or use separate managers.
type Manager struct {
	mu      sync.RWMutex
	systems map[string]UnitSystem // keyed by lower-case name
	active  string
}

// NewManager creates an empty manager with no active system.
func NewManager() *Manager {
	return &Manager{systems: make(map[string]UnitSystem)}
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds or replaces a system. Names are case-insensitive.
func (m *Manager) Register(s UnitSystem) error {
	k := key(s.Name)
	if k == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSystem)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.systems[k] = s
	return nil
}

// Replace swaps the whole set of systems in one step. Later entries win over
// earlier ones of the same name. The active selection survives only if a
// system of that name is still present; Replace reports whether it did. On
// error the manager is left unchanged.
func (m *Manager) Replace(systems []UnitSystem) (bool, error) {
	next := make(map[string]UnitSystem, len(systems))
	for _, s := range systems {
		k := key(s.Name)
		if k == "" {
			return false, fmt.Errorf("%w: name is required", ErrInvalidSystem)
		}
		next[k] = s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.systems = next
	if _, ok := next[m.active]; !ok {
		m.active = ""
		return false, nil
	}
	return true, nil
}

// Get returns the named system or a *units.SystemNotFoundError.
func (m *Manager) Get(name string) (UnitSystem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.systems[key(name)]
	if !ok {
		return UnitSystem{}, &units.SystemNotFoundError{Name: name}
	}
	return s, nil
}

// Switch makes name the active system.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(name)
	if _, ok := m.systems[k]; !ok {
		return &units.SystemNotFoundError{Name: name}
	}
	m.active = k
	return nil
}

// Active returns the active system, if one was selected.
func (m *Manager) Active() (UnitSystem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == "" {
		return UnitSystem{}, false
	}
	s, ok := m.systems[m.active]
	return s, ok
}

// List returns the registered system names, sorted case-insensitively.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.systems))
	for _, s := range m.systems {
		names = append(names, s.Name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names
}
