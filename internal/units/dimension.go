package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Dimension is a base physical kind.
type Dimension uint8

// Base dimensions. The order is the canonical order used when rendering
// vectors; new dimensions are appended before dimensionCount.
const (
	Length Dimension = iota
	Mass
	Time
	Temperature
	Current
	Amount
	Luminosity
	Information

	dimensionCount
)

var dimensionNames = [dimensionCount]string{
	Length:      "length",
	Mass:        "mass",
	Time:        "time",
	Temperature: "temperature",
	Current:     "current",
	Amount:      "amount",
	Luminosity:  "luminosity",
	Information: "information",
}

// Dimensions returns every base dimension in canonical order.
func Dimensions() []Dimension {
	dims := make([]Dimension, 0, dimensionCount)
	for d := Dimension(0); d < dimensionCount; d++ {
		dims = append(dims, d)
	}
	return dims
}

// String returns the lowercase dimension name.
func (d Dimension) String() string {
	if d < dimensionCount {
		return dimensionNames[d]
	}
	return "dimension(" + strconv.Itoa(int(d)) + ")"
}

// Valid reports whether d is one of the declared base dimensions.
func (d Dimension) Valid() bool {
	return d < dimensionCount
}

// ParseDimension returns the Dimension with the given (case-insensitive) name.
func ParseDimension(name string) (Dimension, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := Dimension(0); d < dimensionCount; d++ {
		if dimensionNames[d] == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
}

// Vector maps each base dimension to a signed integer exponent.
//
// The zero value is the dimensionless vector. Vector is a comparable value
// type, so == compares canonical forms directly: an absent dimension and a
// zero exponent are the same thing.
type Vector struct {
	exp [dimensionCount]int
}

// Term is one non-zero entry of a Vector.
type Term struct {
	Dimension Dimension
	Exponent  int
}

// Dimensionless is the empty vector.
var Dimensionless = Vector{}

// MaxExponent bounds the magnitude of every exponent a composed unit may
// carry. Multiply, Divide and Pow in this package enforce it.
const MaxExponent = 1 << 15

// Base returns the vector with exponent 1 for d and nothing else.
func Base(d Dimension) Vector {
	var v Vector
	if d.Valid() {
		v.exp[d] = 1
	}
	return v
}

// NewVector builds a vector from a mapping. Zero exponents and invalid
// dimensions are dropped.
func NewVector(m map[Dimension]int) Vector {
	var v Vector
	for d, e := range m {
		if d.Valid() {
			v.exp[d] = e
		}
	}
	return v
}

// Exponent returns the exponent of d (0 when absent).
func (v Vector) Exponent(d Dimension) int {
	if !d.Valid() {
		return 0
	}
	return v.exp[d]
}

// Multiply returns the elementwise sum of exponents.
func (v Vector) Multiply(o Vector) Vector {
	var r Vector
	for i := range r.exp {
		r.exp[i] = v.exp[i] + o.exp[i]
	}
	return r
}

// Divide returns the elementwise difference of exponents.
func (v Vector) Divide(o Vector) Vector {
	var r Vector
	for i := range r.exp {
		r.exp[i] = v.exp[i] - o.exp[i]
	}
	return r
}

// Pow multiplies every exponent by n. Pow(0) is dimensionless.
func (v Vector) Pow(n int) Vector {
	var r Vector
	for i := range r.exp {
		r.exp[i] = v.exp[i] * n
	}
	return r
}

// InRange reports whether every exponent lies within ±MaxExponent.
func (v Vector) InRange() bool {
	for _, e := range v.exp {
		if e > MaxExponent || e < -MaxExponent {
			return false
		}
	}
	return true
}

// Equal reports whether both vectors have the same canonical form.
func (v Vector) Equal(o Vector) bool {
	return v == o
}

// IsDimensionless reports whether every exponent is zero.
func (v Vector) IsDimensionless() bool {
	return v == Dimensionless
}

// Terms returns the non-zero entries in canonical dimension order.
func (v Vector) Terms() []Term {
	var terms []Term
	for i, e := range v.exp {
		if e != 0 {
			terms = append(terms, Term{Dimension: Dimension(i), Exponent: e})
		}
	}
	return terms
}

// Map returns the canonical mapping. It never contains a zero exponent.
func (v Vector) Map() map[Dimension]int {
	m := make(map[Dimension]int)
	for _, t := range v.Terms() {
		m[t.Dimension] = t.Exponent
	}
	return m
}

// String describes the vector, e.g. "length/time" or "length*mass/time^2".
func (v Vector) String() string {
	var num, den []string
	for _, t := range v.Terms() {
		e := t.Exponent
		target := &num
		if e < 0 {
			e = -e
			target = &den
		}
		s := t.Dimension.String()
		if e != 1 {
			s += "^" + strconv.Itoa(e)
		}
		*target = append(*target, s)
	}

	switch {
	case len(num) == 0 && len(den) == 0:
		return "dimensionless"
	case len(den) == 0:
		return strings.Join(num, "*")
	case len(num) == 0:
		return "1/" + strings.Join(den, "/")
	default:
		return strings.Join(num, "*") + "/" + strings.Join(den, "/")
	}
}
