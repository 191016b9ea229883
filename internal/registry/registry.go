package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/btree"

	"github.com/edoardob90/runits/internal/units"
)

// Logger defines the logging interface used by the Builder and Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry resolves unit names, aliases, prefixed names and custom
// definitions to units.
//
// A Registry is immutable once built and safe for concurrent use without
// locking. To change the set of units, build a new Registry and publish it
// through a Store.
type Registry struct {
	units     map[string]units.Unit
	aliases   map[string]string
	custom    map[string]CustomDefinition
	functions map[string]compiledFunction
	prefixes  *btree.BTreeG[Prefix]
	names     []string
	policy    Policy
}

// Alias pairs an alternative name with its target.
type Alias struct {
	Name      string `json:"name"`
	Canonical string `json:"canonical"`
}

// Resolve returns the unit for a bare name. Resolution tries, in order, the
// unit and alias table, custom definitions, then prefix decomposition. The
// returned unit carries the requested name.
func (r *Registry) Resolve(name string) (units.Unit, error) {
	return r.resolve(name, nil)
}

// Lookup is Resolve without prefix decomposition.
func (r *Registry) Lookup(name string) (units.Unit, error) {
	u, ok, err := r.resolveExact(name, nil)
	if !ok {
		return units.Unit{}, &units.UnknownUnitError{Name: name}
	}
	return u, err
}

// Has reports whether name is registered exactly (unit, alias or custom).
func (r *Registry) Has(name string) bool {
	if _, ok := r.units[name]; ok {
		return true
	}
	if _, ok := r.aliases[name]; ok {
		return true
	}
	_, ok := r.custom[name]
	return ok
}

// resolve threads chain, the names currently being resolved, through every
// step so reference loops surface as *units.CircularDefinitionError.
func (r *Registry) resolve(name string, chain []string) (units.Unit, error) {
	if name == "" {
		return units.Unit{}, &units.UnknownUnitError{Name: name}
	}
	u, ok, err := r.resolveExact(name, chain)
	if ok {
		return u, err
	}
	return r.resolvePrefixed(name, chain)
}

// resolveExact reports ok=false when name is not registered at all.
func (r *Registry) resolveExact(name string, chain []string) (units.Unit, bool, error) {
	if u, ok := r.units[name]; ok {
		return u, true, nil
	}
	if target, ok := r.aliases[name]; ok {
		if slices.Contains(chain, name) {
			return units.Unit{}, true, circular(chain, name)
		}
		u, err := r.resolve(target, append(slices.Clone(chain), name))
		if err != nil {
			return units.Unit{}, true, err
		}
		return u.WithName(name), true, nil
	}
	if def, ok := r.custom[name]; ok {
		u, err := r.resolveCustom(def, chain)
		return u, true, err
	}
	return units.Unit{}, false, nil
}

func circular(chain []string, name string) error {
	loop := append(slices.Clone(chain), name)
	return &units.CircularDefinitionError{Chain: loop}
}

// ListUnits returns the sorted names of every unit and custom definition.
// Aliases and prefixed forms are not included.
func (r *Registry) ListUnits() []string {
	return slices.Clone(r.names)
}

// ListAliases returns every alias sorted by name.
func (r *Registry) ListAliases() []Alias {
	out := make([]Alias, 0, len(r.aliases))
	for name, target := range r.aliases {
		out = append(out, Alias{Name: name, Canonical: target})
	}
	slices.SortFunc(out, func(a, b Alias) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// ListCustom returns the custom definitions sorted by name.
func (r *Registry) ListCustom() []CustomDefinition {
	out := make([]CustomDefinition, 0, len(r.custom))
	for _, def := range r.custom {
		def.Aliases = slices.Clone(def.Aliases)
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b CustomDefinition) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Custom returns the custom definition registered under name.
func (r *Registry) Custom(name string) (CustomDefinition, bool) {
	def, ok := r.custom[name]
	if ok {
		def.Aliases = slices.Clone(def.Aliases)
	}
	return def, ok
}

// Policy returns the duplicate-name policy the registry was built with.
func (r *Registry) Policy() Policy { return r.policy }

// Len returns the number of units and custom definitions.
func (r *Registry) Len() int { return len(r.names) }

// Validate resolves every custom definition and joins the failures. A nil
// result means every custom unit is usable.
func (r *Registry) Validate() error {
	var errs []error
	for _, def := range r.ListCustom() {
		if _, err := r.Resolve(def.Name); err != nil {
			errs = append(errs, fmt.Errorf("custom unit %q: %w", def.Name, err))
		}
	}
	return errors.Join(errs...)
}
