package units

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds shared by the parser, registry, conversion engine and system
// manager. Structured errors below unwrap to these values.
var (
	// ErrSyntax is returned for malformed numbers, exponents or empty input.
	ErrSyntax = errors.New("units: syntax error")

	// ErrUnknownUnit is returned when no table entry or prefix decomposition matches.
	ErrUnknownUnit = errors.New("units: unknown unit")

	// ErrAmbiguousUnit is returned when a name decomposes into several distinct units.
	ErrAmbiguousUnit = errors.New("units: ambiguous unit")

	// ErrIncompatibleDimensions is returned when converting between different dimensions.
	ErrIncompatibleDimensions = errors.New("units: incompatible dimensions")

	// ErrAffineComposition is returned when an affine or functional unit is composed.
	ErrAffineComposition = errors.New("units: affine unit in composition")

	// ErrCircularDefinition is returned when custom definitions reference each other in a loop.
	ErrCircularDefinition = errors.New("units: circular definition")

	// ErrUnsupportedDirection is returned when converting toward a functional unit without an inverse.
	ErrUnsupportedDirection = errors.New("units: unsupported conversion direction")

	// ErrSystemNotFound is returned when a unit system name is not registered.
	ErrSystemNotFound = errors.New("units: system not found")

	// ErrExpressionEvaluation is returned when a functional expression cannot be evaluated.
	ErrExpressionEvaluation = errors.New("units: expression evaluation failed")

	// ErrUnknownDimension is returned by ParseDimension for an unrecognised name.
	ErrUnknownDimension = errors.New("units: unknown dimension")

	// ErrExponentRange is returned when composition would push an exponent
	// past MaxExponent.
	ErrExponentRange = errors.New("units: exponent out of range")
)

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Input  string
	Pos    int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("units: syntax error at position %d in %q: %s", e.Pos, e.Input, e.Reason)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// UnknownUnitError names the symbol that could not be resolved.
type UnknownUnitError struct {
	Name string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("units: unknown unit %q", e.Name)
}

func (e *UnknownUnitError) Unwrap() error { return ErrUnknownUnit }

// AmbiguousUnitError lists the competing decompositions of Name.
type AmbiguousUnitError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousUnitError) Error() string {
	return fmt.Sprintf("units: ambiguous unit %q (candidates: %s)", e.Name, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousUnitError) Unwrap() error { return ErrAmbiguousUnit }

// IncompatibleDimensionsError carries the source and target signatures.
type IncompatibleDimensionsError struct {
	From Vector
	To   Vector
}

func (e *IncompatibleDimensionsError) Error() string {
	return fmt.Sprintf("units: cannot convert %s to %s", e.From, e.To)
}

func (e *IncompatibleDimensionsError) Unwrap() error { return ErrIncompatibleDimensions }

// AffineCompositionError names the unit and the rejected operation.
type AffineCompositionError struct {
	Unit string
	Op   string
}

func (e *AffineCompositionError) Error() string {
	return fmt.Sprintf("units: %q cannot be used in %s", e.Unit, e.Op)
}

func (e *AffineCompositionError) Unwrap() error { return ErrAffineComposition }

// CircularDefinitionError carries the resolution chain, ending with the
// repeated name.
type CircularDefinitionError struct {
	Chain []string
}

func (e *CircularDefinitionError) Error() string {
	return "units: circular definition " + strings.Join(e.Chain, " -> ")
}

func (e *CircularDefinitionError) Unwrap() error { return ErrCircularDefinition }

// UnsupportedDirectionError names the functional unit lacking an inverse.
type UnsupportedDirectionError struct {
	Unit string
}

func (e *UnsupportedDirectionError) Error() string {
	return fmt.Sprintf("units: %q has no inverse expression", e.Unit)
}

func (e *UnsupportedDirectionError) Unwrap() error { return ErrUnsupportedDirection }

// SystemNotFoundError names the missing unit system.
type SystemNotFoundError struct {
	Name string
}

func (e *SystemNotFoundError) Error() string {
	return fmt.Sprintf("units: system %q not found", e.Name)
}

func (e *SystemNotFoundError) Unwrap() error { return ErrSystemNotFound }

// EvaluationError reports a failed functional expression.
type EvaluationError struct {
	Expr   string
	Reason string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("units: evaluating %q: %s", e.Expr, e.Reason)
}

func (e *EvaluationError) Unwrap() error { return ErrExpressionEvaluation }

// Code returns a stable snake_case identifier for the kind of err, suitable
// for API and MQTT responses. Unclassified errors map to "internal_error".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSyntax):
		return "syntax_error"
	case errors.Is(err, ErrUnknownUnit):
		return "unknown_unit"
	case errors.Is(err, ErrAmbiguousUnit):
		return "ambiguous_unit"
	case errors.Is(err, ErrIncompatibleDimensions):
		return "incompatible_dimensions"
	case errors.Is(err, ErrAffineComposition):
		return "affine_composition"
	case errors.Is(err, ErrCircularDefinition):
		return "circular_definition"
	case errors.Is(err, ErrUnsupportedDirection):
		return "unsupported_direction"
	case errors.Is(err, ErrSystemNotFound):
		return "system_not_found"
	case errors.Is(err, ErrExpressionEvaluation):
		return "expression_evaluation"
	case errors.Is(err, ErrUnknownDimension):
		return "unknown_dimension"
	case errors.Is(err, ErrExponentRange):
		return "exponent_out_of_range"
	default:
		return "internal_error"
	}
}
