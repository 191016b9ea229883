package units

import (
	"errors"
	"math"
	"testing"
)

var (
	meter   = New("m", 1, Base(Length))
	foot    = New("ft", 0.3048, Base(Length))
	second  = New("s", 1, Base(Time))
	kilo    = New("kg", 1, Base(Mass))
	celsius = NewAffine("degC", 1, 273.15, Base(Temperature))
)

// doubling is a Mapping used to exercise functional units.
type doubling struct{ invertible bool }

func (d doubling) ToCanonical(v float64) (float64, error) { return 2 * v, nil }

func (d doubling) FromCanonical(v float64) (float64, error) {
	if !d.invertible {
		return 0, &UnsupportedDirectionError{Unit: "dbl"}
	}
	return v / 2, nil
}

func TestMultiplyDivide(t *testing.T) {
	mps, err := Divide(meter, second)
	if err != nil {
		t.Fatalf("Divide() error = %v", err)
	}
	if mps.Name() != "m/s" || mps.Scale() != 1 {
		t.Errorf("m/s = %q scale %v", mps.Name(), mps.Scale())
	}
	if !mps.Dims().Equal(Base(Length).Divide(Base(Time))) {
		t.Errorf("m/s dims = %v", mps.Dims())
	}

	ft2, err := Multiply(foot, foot)
	if err != nil {
		t.Fatalf("Multiply() error = %v", err)
	}
	if math.Abs(ft2.Scale()-0.09290304) > 1e-12 {
		t.Errorf("ft*ft scale = %v", ft2.Scale())
	}
}

func TestPow(t *testing.T) {
	s2, err := Pow(second, 2)
	if err != nil {
		t.Fatalf("Pow() error = %v", err)
	}
	if s2.Name() != "s^2" || s2.Dims().Exponent(Time) != 2 {
		t.Errorf("s^2 = %q %v", s2.Name(), s2.Dims())
	}

	inv, err := Pow(foot, -1)
	if err != nil {
		t.Fatalf("Pow(-1) error = %v", err)
	}
	if math.Abs(inv.Scale()-1/0.3048) > 1e-12 {
		t.Errorf("ft^-1 scale = %v", inv.Scale())
	}

	zero, err := Pow(foot, 0)
	if err != nil {
		t.Fatalf("Pow(0) error = %v", err)
	}
	if !zero.Dims().IsDimensionless() || zero.Scale() != 1 {
		t.Errorf("ft^0 = %v scale %v", zero.Dims(), zero.Scale())
	}
}

func TestExponentRange(t *testing.T) {
	big, err := Pow(meter, MaxExponent)
	if err != nil {
		t.Fatalf("Pow(MaxExponent) error = %v", err)
	}
	tiny, err := Pow(meter, -MaxExponent)
	if err != nil {
		t.Fatalf("Pow(-MaxExponent) error = %v", err)
	}

	tests := []struct {
		name string
		fn   func() (Unit, error)
	}{
		{"pow above limit", func() (Unit, error) { return Pow(meter, MaxExponent+1) }},
		{"huge pow", func() (Unit, error) { return Pow(meter, math.MaxInt) }},
		{"pow of bounded unit", func() (Unit, error) { return Pow(big, 4) }},
		{"multiply", func() (Unit, error) { return Multiply(big, meter) }},
		{"divide", func() (Unit, error) { return Divide(meter, tiny) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.fn()
			if !errors.Is(err, ErrExponentRange) {
				t.Fatalf("error = %v (dims %v), want ErrExponentRange", err, u.Dims())
			}
			if Code(err) != "exponent_out_of_range" {
				t.Errorf("Code() = %q", Code(err))
			}
		})
	}

	back, err := Divide(big, meter)
	if err != nil || back.Dims().Exponent(Length) != MaxExponent-1 {
		t.Errorf("Divide(big, m) = %v, %v", back.Dims(), err)
	}
}

func TestAffineComposition(t *testing.T) {
	fn := NewFunctional("dbl", Base(Length), doubling{invertible: true})

	tests := []struct {
		name string
		fn   func() (Unit, error)
	}{
		{"multiply affine", func() (Unit, error) { return Multiply(celsius, meter) }},
		{"multiply affine right", func() (Unit, error) { return Multiply(meter, celsius) }},
		{"divide affine", func() (Unit, error) { return Divide(celsius, second) }},
		{"power affine", func() (Unit, error) { return Pow(celsius, 2) }},
		{"multiply functional", func() (Unit, error) { return Multiply(fn, meter) }},
		{"power functional", func() (Unit, error) { return Pow(fn, -1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			if !errors.Is(err, ErrAffineComposition) {
				t.Fatalf("error = %v, want ErrAffineComposition", err)
			}
			var ace *AffineCompositionError
			if !errors.As(err, &ace) || ace.Unit == "" {
				t.Errorf("error = %#v, want *AffineCompositionError with unit", err)
			}
		})
	}

	// A power of one leaves the unit alone, affine or not.
	same, err := Pow(celsius, 1)
	if err != nil {
		t.Fatalf("Pow(degC, 1) error = %v", err)
	}
	if !same.Equivalent(celsius) {
		t.Error("Pow(degC, 1) should return degC")
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	fn := NewFunctional("dbl", Base(Length), doubling{invertible: true})
	all := []Unit{meter, foot, second, kilo, celsius, fn, New("µm", 1e-6, Base(Length))}
	values := []float64{0, 1, -40, 3.14159, 1e12, -2.5e-3}

	for _, u := range all {
		for _, v := range values {
			c, err := u.ToCanonical(v)
			if err != nil {
				t.Fatalf("%s ToCanonical(%v) error = %v", u, v, err)
			}
			back, err := u.FromCanonical(c)
			if err != nil {
				t.Fatalf("%s FromCanonical(%v) error = %v", u, c, err)
			}
			if !closeRel(back, v, 1e-9) {
				t.Errorf("%s round trip %v -> %v -> %v", u, v, c, back)
			}
		}
	}
}

func TestAffineCanonical(t *testing.T) {
	k, err := celsius.ToCanonical(100)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k-373.15) > 1e-9 {
		t.Errorf("100 degC = %v K, want 373.15", k)
	}
	if !celsius.IsAffine() || meter.IsAffine() {
		t.Error("IsAffine mismatch")
	}
}

func TestFunctionalWithoutInverse(t *testing.T) {
	fn := NewFunctional("dbl", Base(Length), doubling{})
	if !fn.IsFunctional() {
		t.Fatal("IsFunctional() = false")
	}
	_, err := fn.FromCanonical(1)
	if !errors.Is(err, ErrUnsupportedDirection) {
		t.Errorf("FromCanonical error = %v, want ErrUnsupportedDirection", err)
	}
}

func TestUnitEquality(t *testing.T) {
	if !meter.CompatibleWith(foot) {
		t.Error("m and ft should be compatible")
	}
	if meter.CompatibleWith(second) {
		t.Error("m and s should not be compatible")
	}
	if !meter.Equal(New("m", 1.0000001, Base(Length))) {
		t.Error("Equal compares name and dimensions only")
	}
	if meter.Equal(foot) {
		t.Error("m should not equal ft")
	}
	if !meter.Equivalent(meter.WithName("metre")) {
		t.Error("renamed unit should be equivalent")
	}
	if meter.Equivalent(foot) {
		t.Error("m and ft are not equivalent")
	}
}

func TestWithAliasesCopies(t *testing.T) {
	aliases := []string{"meter", "metre"}
	u := meter.WithAliases(aliases...)
	aliases[0] = "changed"
	if got := u.Aliases(); got[0] != "meter" {
		t.Errorf("Aliases() = %v, want copy of input", got)
	}
	got := u.Aliases()
	got[1] = "changed"
	if u.Aliases()[1] != "metre" {
		t.Error("Aliases() must return a copy")
	}
	if len(meter.Aliases()) != 0 {
		t.Error("WithAliases must not modify the receiver")
	}
}

func TestWithScaleKeepsOffset(t *testing.T) {
	mdegC := celsius.WithScale(1e-3)
	if mdegC.Offset() != celsius.Offset() || mdegC.Scale() != 1e-3 {
		t.Errorf("WithScale = scale %v offset %v", mdegC.Scale(), mdegC.Offset())
	}
}

func closeRel(got, want, tol float64) bool {
	if got == want {
		return true
	}
	diff := math.Abs(got - want)
	scale := math.Max(math.Abs(got), math.Abs(want))
	if scale < 1e-300 {
		return diff < tol
	}
	return diff/scale <= tol
}
