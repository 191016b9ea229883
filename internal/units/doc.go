// Package units holds the dimensional-algebra model of runits.
//
// It defines the base physical dimensions, the exponent vectors built from
// them, immutable Unit conversion descriptors and the Quantity value type.
// Everything in this package is pure computation: there is no I/O, no logging
// and no shared mutable state, so every value can be used from any number of
// goroutines.
//
// # Key Types
//
//   - Dimension: a base physical kind (length, mass, time, ...)
//   - Vector: exponent-per-dimension signature of a derived quantity
//   - Unit: name, scale, offset and dimensions (optionally a functional Mapping)
//   - Quantity: a value paired with a Unit
//
// # Composition
//
//	newton, _ := units.Multiply(kg, m)
//	newton, _ = units.Divide(newton, s2)
//	area, _ := units.Pow(m, 2)
//
// Units with an offset (Celsius) or a functional mapping may only stand alone:
// composing them returns an *AffineCompositionError.
//
// # Errors
//
// The error taxonomy shared by the parser, registry and conversion engine is
// declared here. Every structured error unwraps to a sentinel, so callers can
// use either errors.Is or errors.As:
//
//	if errors.Is(err, units.ErrIncompatibleDimensions) {
//	    // handle mismatch
//	}
package units
