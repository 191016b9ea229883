package registry

import (
	"fmt"
	"math"
	"strings"
)

// Record is one already-parsed definition consumed by Builder. The concrete
// types are PrefixRecord, BaseUnitRecord, DerivedUnitRecord, AliasRecord and
// CustomRecord.
type Record interface {
	record()
}

// PrefixRecord declares a name prefix such as "k" = 1000.
type PrefixRecord struct {
	Symbol     string
	Multiplier float64
}

// BaseUnitRecord declares the canonical unit (scale 1) of a dimension.
type BaseUnitRecord struct {
	Name      string
	Dimension string
	Aliases   []string
}

// DerivedUnitRecord declares a unit as Scale times a unit expression. A zero
// Scale means 1; an empty Expression means a dimensionless unit.
type DerivedUnitRecord struct {
	Name       string
	Expression string
	Scale      float64
	Aliases    []string
}

// AliasRecord declares an alternative name for a unit or custom definition.
type AliasRecord struct {
	Name      string
	Canonical string
}

// CustomRecord carries a user custom definition.
type CustomRecord struct {
	Definition CustomDefinition
}

func (PrefixRecord) record()      {}
func (BaseUnitRecord) record()    {}
func (DerivedUnitRecord) record() {}
func (AliasRecord) record()       {}
func (CustomRecord) record()      {}

// Kind is the variant of a custom definition.
type Kind string

// Custom definition kinds.
const (
	KindSimple     Kind = "simple"
	KindLinear     Kind = "linear"
	KindFunctional Kind = "functional"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSimple, KindLinear, KindFunctional:
		return true
	}
	return false
}

// CustomDefinition is a user-supplied unit layered over the builtin table.
//
// A value v in the custom unit equals v*Scale + Offset in Base (Offset is
// only meaningful for KindLinear). For KindFunctional, Expression maps v to a
// value in Base using the variable x, and the optional Inverse maps back.
type CustomDefinition struct {
	Name       string   `json:"name" yaml:"name"`
	Kind       Kind     `json:"kind" yaml:"kind"`
	Scale      float64  `json:"scale,omitempty" yaml:"scale,omitempty"`
	Offset     float64  `json:"offset,omitempty" yaml:"offset,omitempty"`
	Base       string   `json:"base" yaml:"base"`
	Expression string   `json:"expression,omitempty" yaml:"expression,omitempty"`
	Inverse    string   `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	Aliases    []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// FormulaVariable is the free variable of functional expressions.
const FormulaVariable = "x"

// Check validates the static shape of the definition. It does not resolve
// Base, so definitions may be checked before the units they reference exist.
func (d CustomDefinition) Check() error {
	var problems []string
	if err := checkName(d.Name); err != nil {
		problems = append(problems, err.Error())
	}
	if strings.TrimSpace(d.Base) == "" {
		problems = append(problems, "base unit is required")
	}

	switch d.Kind {
	case KindSimple, KindLinear:
		if d.Scale == 0 || math.IsNaN(d.Scale) || math.IsInf(d.Scale, 0) {
			problems = append(problems, "scale must be a finite non-zero number")
		}
		if math.IsNaN(d.Offset) || math.IsInf(d.Offset, 0) {
			problems = append(problems, "offset must be finite")
		}
		if d.Kind == KindSimple && d.Offset != 0 {
			problems = append(problems, "simple definitions cannot have an offset")
		}
		if d.Expression != "" || d.Inverse != "" {
			problems = append(problems, "expressions are only allowed on functional definitions")
		}
	case KindFunctional:
		if strings.TrimSpace(d.Expression) == "" {
			problems = append(problems, "functional definitions need an expression")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown kind %q", d.Kind))
	}

	for _, a := range d.Aliases {
		if err := checkName(a); err != nil {
			problems = append(problems, "alias: "+err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrInvalidRecord, d.Name, strings.Join(problems, "; "))
	}
	return nil
}

// checkName rejects names the expression parser could never produce.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(name, " \t\r\n*/^()+-") {
		return fmt.Errorf("name %q contains whitespace or an operator", name)
	}
	if name[0] >= '0' && name[0] <= '9' {
		return fmt.Errorf("name %q starts with a digit", name)
	}
	return nil
}
