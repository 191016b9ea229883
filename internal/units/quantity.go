package units

import "strconv"

// Quantity is a value expressed in a unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// NewQuantity pairs a value with a unit.
func NewQuantity(value float64, u Unit) Quantity {
	return Quantity{Value: value, Unit: u}
}

// String renders "<value> <unit>", e.g. "10 ft".
func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit.Name()
}

// ConvertTo converts q into target.
//
// The dimensions must match; the value goes through the canonical unit of the
// dimension. Equivalent units return q's value untouched so an identity
// conversion is exact.
func (q Quantity) ConvertTo(target Unit) (Quantity, error) {
	if q.Unit.Dims() != target.Dims() {
		return Quantity{}, &IncompatibleDimensionsError{From: q.Unit.Dims(), To: target.Dims()}
	}
	if q.Unit.Equivalent(target) {
		return Quantity{Value: q.Value, Unit: target}, nil
	}

	canonical, err := q.Unit.ToCanonical(q.Value)
	if err != nil {
		return Quantity{}, err
	}
	value, err := target.FromCanonical(canonical)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Unit: target}, nil
}

// ConvertValueTo is ConvertTo returning only the number.
func (q Quantity) ConvertValueTo(target Unit) (float64, error) {
	r, err := q.ConvertTo(target)
	if err != nil {
		return 0, err
	}
	return r.Value, nil
}
