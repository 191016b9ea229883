package registry

import (
	"slices"

	"github.com/edoardob90/runits/internal/formula"
	"github.com/edoardob90/runits/internal/units"
)

type compiledFunction struct {
	forward *formula.Expr
	inverse *formula.Expr
}

// resolveCustom reduces a custom definition to a unit. Simple and linear
// definitions over a multiplicative or affine base stay closed-form; a
// functional base, or a functional definition, yields a functional unit.
func (r *Registry) resolveCustom(def CustomDefinition, chain []string) (units.Unit, error) {
	if slices.Contains(chain, def.Name) {
		return units.Unit{}, circular(chain, def.Name)
	}
	base, err := r.resolve(def.Base, append(slices.Clone(chain), def.Name))
	if err != nil {
		return units.Unit{}, err
	}

	var u units.Unit
	switch {
	case def.Kind == KindFunctional:
		fn := r.functions[def.Name]
		u = units.NewFunctional(def.Name, base.Dims(), functionalMapping{
			unit:    def.Name,
			forward: fn.forward,
			inverse: fn.inverse,
			base:    base,
		})
	case base.IsFunctional():
		u = units.NewFunctional(def.Name, base.Dims(), linearMapping{
			scale:  def.Scale,
			offset: def.Offset,
			base:   base,
		})
	default:
		// v*s + o in base, then base to canonical: (v*s + o)*bs + bo.
		u = units.NewAffine(def.Name,
			def.Scale*base.Scale(),
			def.Offset*base.Scale()+base.Offset(),
			base.Dims())
	}
	return u.WithAliases(def.Aliases...), nil
}

// functionalMapping evaluates a compiled expression into the base unit, then
// converts the base value to canonical.
type functionalMapping struct {
	unit    string
	forward *formula.Expr
	inverse *formula.Expr
	base    units.Unit
}

func (m functionalMapping) ToCanonical(v float64) (float64, error) {
	b, err := m.forward.Eval(v)
	if err != nil {
		return 0, err
	}
	return m.base.ToCanonical(b)
}

func (m functionalMapping) FromCanonical(v float64) (float64, error) {
	if m.inverse == nil {
		return 0, &units.UnsupportedDirectionError{Unit: m.unit}
	}
	b, err := m.base.FromCanonical(v)
	if err != nil {
		return 0, err
	}
	return m.inverse.Eval(b)
}

// linearMapping stacks a scale and offset on a functional base unit.
type linearMapping struct {
	scale  float64
	offset float64
	base   units.Unit
}

func (m linearMapping) ToCanonical(v float64) (float64, error) {
	return m.base.ToCanonical(v*m.scale + m.offset)
}

func (m linearMapping) FromCanonical(v float64) (float64, error) {
	b, err := m.base.FromCanonical(v)
	if err != nil {
		return 0, err
	}
	return (b - m.offset) / m.scale, nil
}
