package units

import (
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Mapping converts values of a functional unit to and from the canonical
// (scale 1) unit of its dimension. FromCanonical returns an
// *UnsupportedDirectionError when no inverse is known.
type Mapping interface {
	ToCanonical(v float64) (float64, error)
	FromCanonical(v float64) (float64, error)
}

// Unit is an immutable conversion descriptor.
//
// For a multiplicative unit, canonical = value*scale. Affine units add an
// offset after scaling (Celsius: scale 1, offset 273.15). Functional units
// delegate both directions to a Mapping and ignore scale and offset.
type Unit struct {
	name    string
	aliases []string
	scale   float64
	offset  float64
	dims    Vector
	mapping Mapping
}

// One is the dimensionless unit of scale 1.
var One = New("1", 1, Dimensionless)

// New creates a multiplicative unit.
func New(name string, scale float64, dims Vector) Unit {
	return Unit{name: name, scale: scale, dims: dims}
}

// NewAffine creates a unit with a scale and an additive offset.
func NewAffine(name string, scale, offset float64, dims Vector) Unit {
	return Unit{name: name, scale: scale, offset: offset, dims: dims}
}

// NewFunctional creates a unit whose conversions are computed by m.
func NewFunctional(name string, dims Vector, m Mapping) Unit {
	return Unit{name: name, scale: 1, dims: dims, mapping: m}
}

// Name returns the unit name.
func (u Unit) Name() string { return u.name }

// Aliases returns a copy of the alternative names.
func (u Unit) Aliases() []string { return slices.Clone(u.aliases) }

// Scale returns the multiplier to the canonical unit.
func (u Unit) Scale() float64 { return u.scale }

// Offset returns the additive offset (0 for multiplicative units).
func (u Unit) Offset() float64 { return u.offset }

// Dims returns the dimension vector.
func (u Unit) Dims() Vector { return u.dims }

// IsAffine reports whether the unit has a non-zero offset.
func (u Unit) IsAffine() bool { return u.offset != 0 }

// IsFunctional reports whether the unit converts through a Mapping.
func (u Unit) IsFunctional() bool { return u.mapping != nil }

// composable reports whether the unit may take part in multiplication,
// division or powers other than 1.
func (u Unit) composable() bool { return u.offset == 0 && u.mapping == nil }

// WithName returns a copy of u with a different name.
func (u Unit) WithName(name string) Unit {
	u.name = name
	return u
}

// WithAliases returns a copy of u carrying the given aliases.
func (u Unit) WithAliases(aliases ...string) Unit {
	u.aliases = slices.Clone(aliases)
	return u
}

// WithScale returns a copy of u whose scale is multiplied by factor. The
// offset and mapping are kept, which is what prefix application needs.
func (u Unit) WithScale(factor float64) Unit {
	u.scale *= factor
	return u
}

// CompatibleWith reports whether u and o measure the same dimension.
func (u Unit) CompatibleWith(o Unit) bool {
	return u.dims == o.dims
}

// Equal reports whether u and o share a name and dimensions. Scales are not
// compared so rounding differences between two definitions do not matter.
func (u Unit) Equal(o Unit) bool {
	return u.name == o.name && u.dims == o.dims
}

// Equivalent reports whether converting between u and o is the identity.
func (u Unit) Equivalent(o Unit) bool {
	return u.mapping == nil && o.mapping == nil &&
		u.scale == o.scale && u.offset == o.offset && u.dims == o.dims
}

// String returns the unit name.
func (u Unit) String() string { return u.name }

// ToCanonical converts a value in u to the canonical unit of its dimension.
func (u Unit) ToCanonical(v float64) (float64, error) {
	if u.mapping != nil {
		return u.mapping.ToCanonical(v)
	}
	return v*u.scale + u.offset, nil
}

// FromCanonical converts a canonical value back into u.
func (u Unit) FromCanonical(v float64) (float64, error) {
	if u.mapping != nil {
		return u.mapping.FromCanonical(v)
	}
	return (v - u.offset) / u.scale, nil
}

// Multiply composes u1*u2.
func Multiply(u1, u2 Unit) (Unit, error) {
	if err := checkComposable("multiplication", u1, u2); err != nil {
		return Unit{}, err
	}
	dims := u1.dims.Multiply(u2.dims)
	if err := checkRange(dims, "multiplication"); err != nil {
		return Unit{}, err
	}
	return Unit{
		name:  u1.name + "*" + u2.name,
		scale: u1.scale * u2.scale,
		dims:  dims,
	}, nil
}

// Divide composes u1/u2.
func Divide(u1, u2 Unit) (Unit, error) {
	if err := checkComposable("division", u1, u2); err != nil {
		return Unit{}, err
	}
	dims := u1.dims.Divide(u2.dims)
	if err := checkRange(dims, "division"); err != nil {
		return Unit{}, err
	}
	return Unit{
		name:  u1.name + "/" + u2.name,
		scale: u1.scale / u2.scale,
		dims:  dims,
	}, nil
}

// Pow raises u to an integer power. Pow(u, 1) returns u unchanged, so an
// affine unit may carry an explicit ^1.
func Pow(u Unit, n int) (Unit, error) {
	if n == 1 {
		return u, nil
	}
	if !u.composable() {
		return Unit{}, &AffineCompositionError{Unit: u.name, Op: "power " + strconv.Itoa(n)}
	}
	op := "power " + strconv.Itoa(n)
	if n > MaxExponent || n < -MaxExponent {
		return Unit{}, fmt.Errorf("%w: %s", ErrExponentRange, op)
	}
	dims := u.dims.Pow(n)
	if err := checkRange(dims, op); err != nil {
		return Unit{}, err
	}
	return Unit{
		name:  powName(u.name, n),
		scale: math.Pow(u.scale, float64(n)),
		dims:  dims,
	}, nil
}

func checkComposable(op string, operands ...Unit) error {
	for _, u := range operands {
		if !u.composable() {
			return &AffineCompositionError{Unit: u.name, Op: op}
		}
	}
	return nil
}

func checkRange(dims Vector, op string) error {
	if !dims.InRange() {
		return fmt.Errorf("%w: %s exceeds ±%d", ErrExponentRange, op, MaxExponent)
	}
	return nil
}

func powName(name string, n int) string {
	return name + "^" + strconv.Itoa(n)
}
