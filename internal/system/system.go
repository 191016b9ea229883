package system

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/edoardob90/runits/internal/units"
)

// ErrMissingBaseUnit is returned when a system has no base unit for a
// dimension a quantity needs.
var ErrMissingBaseUnit = errors.New("system: missing base unit")

// ErrInvalidSystem is returned when a system definition is malformed.
var ErrInvalidSystem = errors.New("system: invalid definition")

// CodeMissingBaseUnit is the error code reported for ErrMissingBaseUnit.
const CodeMissingBaseUnit = "missing_base_unit"

// Code extends units.Code with the errors of this package, so every front
// end reports conversion failures with the same identifiers.
func Code(err error) string {
	if errors.Is(err, ErrMissingBaseUnit) {
		return CodeMissingBaseUnit
	}
	return units.Code(err)
}

// UnitParser parses unit expressions. *parser.Parser implements it.
type UnitParser interface {
	ParseUnit(text string) (units.Unit, error)
}

// UnitSystem is a named choice of base unit per dimension plus a table of
// physical constants expressed in those units. Systems differ only in data.
type UnitSystem struct {
	Name        string
	Description string
	BaseUnits   map[units.Dimension]units.Unit
	Constants   map[string]float64
}

// Definition is the textual form of a UnitSystem as read from definition
// files: dimension names mapped to unit expressions.
type Definition struct {
	Name        string             `yaml:"name" json:"name"`
	Description string             `yaml:"description,omitempty" json:"description,omitempty"`
	BaseUnits   map[string]string  `yaml:"base_units" json:"base_units"`
	Constants   map[string]float64 `yaml:"constants,omitempty" json:"constants,omitempty"`
}

// Build resolves every base unit expression of d through p. Each unit must
// have exactly the dimension it is declared for.
func (d Definition) Build(p UnitParser) (UnitSystem, error) {
	if strings.TrimSpace(d.Name) == "" {
		return UnitSystem{}, fmt.Errorf("%w: name is required", ErrInvalidSystem)
	}
	s := UnitSystem{
		Name:        d.Name,
		Description: d.Description,
		BaseUnits:   make(map[units.Dimension]units.Unit, len(d.BaseUnits)),
		Constants:   maps.Clone(d.Constants),
	}
	if s.Constants == nil {
		s.Constants = make(map[string]float64)
	}
	for dimName, expr := range d.BaseUnits {
		dim, err := units.ParseDimension(dimName)
		if err != nil {
			return UnitSystem{}, fmt.Errorf("%w: system %q: %v", ErrInvalidSystem, d.Name, err)
		}
		u, err := p.ParseUnit(expr)
		if err != nil {
			return UnitSystem{}, fmt.Errorf("system %q %s unit: %w", d.Name, dim, err)
		}
		if u.Dims() != units.Base(dim) {
			return UnitSystem{}, fmt.Errorf("%w: system %q: %q measures %s, not %s",
				ErrInvalidSystem, d.Name, expr, u.Dims(), dim)
		}
		s.BaseUnits[dim] = u
	}
	return s, nil
}

// BaseUnit returns the system's unit for dimension d.
func (s UnitSystem) BaseUnit(d units.Dimension) (units.Unit, bool) {
	u, ok := s.BaseUnits[d]
	return u, ok
}

// Constant returns a named constant of the system.
func (s UnitSystem) Constant(name string) (float64, bool) {
	v, ok := s.Constants[name]
	return v, ok
}

// UnitFor composes the system's base units into a unit of the given
// dimensions, raising each base unit to its exponent. The unit is named
// after its composition, for example "ft/s^2" or "1/s".
func (s UnitSystem) UnitFor(dims units.Vector) (units.Unit, error) {
	if dims.IsDimensionless() {
		return units.One, nil
	}

	terms := dims.Terms()
	acc := units.One
	var num, den []string
	for _, term := range terms {
		base, ok := s.BaseUnits[term.Dimension]
		if !ok {
			return units.Unit{}, fmt.Errorf("%w: %s has no %s unit", ErrMissingBaseUnit, s.Name, term.Dimension)
		}
		if len(terms) == 1 && term.Exponent == 1 {
			// A lone first power keeps the base unit, offset included.
			return base, nil
		}
		powered, err := units.Pow(base, term.Exponent)
		if err != nil {
			return units.Unit{}, err
		}
		acc, err = units.Multiply(acc, powered)
		if err != nil {
			return units.Unit{}, err
		}

		name := base.Name()
		if strings.ContainsAny(name, "*/^") {
			name = "(" + name + ")"
		}
		e := term.Exponent
		if e < 0 {
			e = -e
		}
		if e != 1 {
			name = fmt.Sprintf("%s^%d", name, e)
		}
		if term.Exponent > 0 {
			num = append(num, name)
		} else {
			den = append(den, name)
		}
	}

	var name string
	switch {
	case len(num) == 0:
		name = "1/" + strings.Join(den, "/")
	case len(den) == 0:
		name = strings.Join(num, "*")
	default:
		name = strings.Join(num, "*") + "/" + strings.Join(den, "/")
	}
	return acc.WithName(name), nil
}
