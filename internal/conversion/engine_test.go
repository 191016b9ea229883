package conversion

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/edoardob90/runits/internal/parser"
	"github.com/edoardob90/runits/internal/registry"
	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureRecorder) RecordConversion(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureRecorder) last(t *testing.T) Event {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		t.Fatal("no events recorded")
	}
	return c.events[len(c.events)-1]
}

func newEngine(t *testing.T) (*Engine, *captureRecorder) {
	t.Helper()
	b := registry.NewBuilder(registry.PolicyOverride)
	b.Add(registry.DefaultRecords()...)
	b.Add(
		registry.CustomRecord{Definition: registry.CustomDefinition{
			Name: "furlong", Kind: registry.KindSimple, Scale: 220, Base: "yd",
		}},
		registry.CustomRecord{Definition: registry.CustomDefinition{
			Name: "dBW", Kind: registry.KindFunctional, Base: "W", Expression: "10 ^ (x / 10)",
		}},
	)
	r, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p := parser.New(r)
	m := system.NewManager()
	if err := m.RegisterBuiltins(p); err != nil {
		t.Fatalf("RegisterBuiltins() error = %v", err)
	}
	rec := &captureRecorder{}
	e := New(p, m)
	e.SetRecorder(rec)
	return e, rec
}

func TestConvertExpression(t *testing.T) {
	e, rec := newEngine(t)
	tests := []struct {
		quantity string
		target   string
		want     float64
		tol      float64
	}{
		{"1 m", "ft", 3.28084, 1e-4},
		{"100 km/hr", "m/s", 27.7778, 1e-3},
		{"1 furlong", "m", 201.168, 1e-9},
		{"100 degC", "degF", 212, 1e-9},
		{"-40 degF", "degC", -40, 1e-9},
		{"0 K", "degC", -273.15, 1e-9},
		{"1 kWh", "MJ", 3.6, 1e-12},
		{"10 kg*m/s^2", "N", 10, 1e-12},
		{"1 KiB", "bit", 8192, 0},
		{"30 dBW", "kW", 1, 1e-12},
	}
	for _, tt := range tests {
		t.Run(tt.quantity+" to "+tt.target, func(t *testing.T) {
			got, err := e.ConvertExpression(tt.quantity, tt.target)
			if err != nil {
				t.Fatalf("ConvertExpression() error = %v", err)
			}
			if math.Abs(got.Value-tt.want) > tt.tol {
				t.Errorf("value = %v, want %v", got.Value, tt.want)
			}
			if ev := rec.last(t); ev.Status != StatusOK || ev.Result != got.Value {
				t.Errorf("recorded %+v", ev)
			}
		})
	}
}

func TestConvertIdentityIsExact(t *testing.T) {
	e, _ := newEngine(t)
	for _, text := range []string{"ft", "km/hr", "degC", "furlong", "kg*m/s^2"} {
		u, err := e.parser.ParseUnit(text)
		if err != nil {
			t.Fatalf("ParseUnit(%q) error = %v", text, err)
		}
		for _, v := range []float64{0, 1, 0.1, -17.3, 6.02214076e23} {
			got, err := e.Convert(units.NewQuantity(v, u), u)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if got.Value != v {
				t.Errorf("%v %s -> %s = %v", v, text, text, got.Value)
			}
		}
	}
}

func TestConvertErrors(t *testing.T) {
	e, rec := newEngine(t)
	tests := []struct {
		name     string
		quantity string
		target   string
		want     error
		code     string
	}{
		{"incompatible", "1 m", "s", units.ErrIncompatibleDimensions, "incompatible_dimensions"},
		{"unknown target", "1 m", "smoot", units.ErrUnknownUnit, ""},
		{"bad quantity", "1 m/", "m", units.ErrSyntax, ""},
		{"no inverse", "1 W", "dBW", units.ErrUnsupportedDirection, "unsupported_direction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.events = nil
			_, err := e.ConvertExpression(tt.quantity, tt.target)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if tt.code == "" {
				// Parse failures never reach the conversion step.
				if len(rec.events) != 0 {
					t.Errorf("recorded %d events for a parse failure", len(rec.events))
				}
				return
			}
			if ev := rec.last(t); ev.Status != tt.code {
				t.Errorf("status = %q, want %q", ev.Status, tt.code)
			}
		})
	}

	_, err := e.ConvertExpression("3 m", "kg")
	var dimErr *units.IncompatibleDimensionsError
	if !errors.As(err, &dimErr) {
		t.Fatalf("error = %v", err)
	}
	if dimErr.From != units.Base(units.Length) || dimErr.To != units.Base(units.Mass) {
		t.Errorf("dims = %v -> %v", dimErr.From, dimErr.To)
	}
}

func TestToSystem(t *testing.T) {
	e, rec := newEngine(t)
	tests := []struct {
		quantity string
		system   string
		unit     string
		want     float64
		tol      float64
	}{
		{"9.80665 m/s^2", "imperial", "ft/s^2", 32.17404855643044, 1e-9},
		{"1 N", "Imperial", "ft*lb/s^2", 7.233013851209894, 1e-9},
		{"100 degC", "Imperial", "degR", 671.67, 1e-9},
		{"1 km", "CGS", "cm", 1e5, 1e-6},
		{"1 dyn", "SI", "m*kg/s^2", 1e-5, 1e-18},
		{"5", "SI", "1", 5, 0},
		{"1 GeV", "natural", "(ħc/eV)^2*(eV/c²)/(ħ/eV)^2", 1e9, 100},
	}
	for _, tt := range tests {
		t.Run(tt.quantity+" in "+tt.system, func(t *testing.T) {
			q, err := e.parser.Parse(tt.quantity)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := e.ToSystem(q, tt.system)
			if err != nil {
				t.Fatalf("ToSystem() error = %v", err)
			}
			if got.Unit.Name() != tt.unit {
				t.Errorf("unit = %q, want %q", got.Unit.Name(), tt.unit)
			}
			if math.Abs(got.Value-tt.want) > tt.tol {
				t.Errorf("value = %v, want %v", got.Value, tt.want)
			}
		})
	}

	q, _ := e.parser.Parse("1 m")
	if _, err := e.ToSystem(q, "martian"); !errors.Is(err, units.ErrSystemNotFound) {
		t.Errorf("ToSystem(martian) error = %v", err)
	}

	partial := system.UnitSystem{Name: "lengths", BaseUnits: map[units.Dimension]units.Unit{}}
	rec.events = nil
	if _, err := e.ConvertBetweenSystems(q, partial); !errors.Is(err, system.ErrMissingBaseUnit) {
		t.Errorf("ConvertBetweenSystems() error = %v, want ErrMissingBaseUnit", err)
	}
	if ev := rec.last(t); ev.Status != system.CodeMissingBaseUnit {
		t.Errorf("status = %q", ev.Status)
	}
}

func TestToActiveSystem(t *testing.T) {
	e, _ := newEngine(t)
	q, _ := e.parser.Parse("1 mi")
	if _, err := e.ToActiveSystem(q); !errors.Is(err, units.ErrSystemNotFound) {
		t.Errorf("no active system error = %v", err)
	}
	if err := e.systems.Switch("imperial"); err != nil {
		t.Fatal(err)
	}
	got, err := e.ToActiveSystem(q)
	if err != nil {
		t.Fatalf("ToActiveSystem() error = %v", err)
	}
	if got.Unit.Name() != "ft" || math.Abs(got.Value-5280) > 1e-9 {
		t.Errorf("1 mi = %v", got)
	}
}

func TestNilCollaborators(t *testing.T) {
	e := New(nil, nil)
	e.SetLogger(nil)
	e.SetRecorder(nil)
	m := units.New("m", 1, units.Base(units.Length))
	km := units.New("km", 1000, units.Base(units.Length))
	got, err := e.Convert(units.NewQuantity(2500, m), km)
	if err != nil || got.Value != 2.5 {
		t.Errorf("Convert() = %v, %v", got, err)
	}
	if _, err := e.ToSystem(got, "SI"); !errors.Is(err, units.ErrSystemNotFound) {
		t.Errorf("ToSystem() error = %v", err)
	}
}

func TestRecordersFanOut(t *testing.T) {
	a, b := &captureRecorder{}, &captureRecorder{}
	Recorders{a, b}.RecordConversion(Event{From: "m", To: "ft", Status: StatusOK})

	if a.last(t).To != "ft" || b.last(t).To != "ft" {
		t.Error("every recorder should receive the event")
	}
}
