package system

import (
	"github.com/edoardob90/runits/internal/units"
)

// Builtin system names.
const (
	SI       = "SI"
	CGS      = "CGS"
	Imperial = "Imperial"
	Natural  = "Natural"
)

var builtinDefinitions = []Definition{
	{
		Name:        SI,
		Description: "International System of Units",
		BaseUnits: map[string]string{
			"length": "m", "mass": "kg", "time": "s", "temperature": "K",
			"current": "A", "amount": "mol", "luminosity": "cd", "information": "bit",
		},
		Constants: map[string]float64{
			"c":    299792458,
			"g0":   9.80665,
			"hbar": 1.054571817e-34,
			"h":    6.62607015e-34,
			"k_B":  1.380649e-23,
			"N_A":  6.02214076e23,
			"G":    6.67430e-11,
			"e":    1.602176634e-19,
		},
	},
	{
		Name:        CGS,
		Description: "centimetre-gram-second system",
		BaseUnits: map[string]string{
			"length": "cm", "mass": "g", "time": "s", "temperature": "K",
			"current": "A", "amount": "mol", "luminosity": "cd", "information": "bit",
		},
		Constants: map[string]float64{
			"c":    2.99792458e10,
			"g0":   980.665,
			"hbar": 1.054571817e-27,
			"h":    6.62607015e-27,
			"k_B":  1.380649e-16,
			"N_A":  6.02214076e23,
			"G":    6.67430e-8,
		},
	},
	{
		Name:        Imperial,
		Description: "foot-pound-second system",
		BaseUnits: map[string]string{
			"length": "ft", "mass": "lb", "time": "s", "temperature": "degR",
			"current": "A", "amount": "mol", "luminosity": "cd", "information": "bit",
		},
		Constants: map[string]float64{
			"c":  983571056.4304462,
			"g0": 32.17404855643044,
		},
	},
}

// Natural units with ħ = c = k_B = 1, expressed through the electronvolt.
var naturalBaseUnits = map[units.Dimension]units.Unit{
	units.Length:      units.New("ħc/eV", 1.973269804e-7, units.Base(units.Length)),
	units.Mass:        units.New("eV/c²", 1.78266192e-36, units.Base(units.Mass)),
	units.Time:        units.New("ħ/eV", 6.582119569e-16, units.Base(units.Time)),
	units.Temperature: units.New("eV/k_B", 11604.51812, units.Base(units.Temperature)),
}

// Builtin returns the SI, CGS, Imperial and Natural systems, resolving their
// base units through p.
func Builtin(p UnitParser) ([]UnitSystem, error) {
	systems := make([]UnitSystem, 0, len(builtinDefinitions)+1)
	for _, def := range builtinDefinitions {
		s, err := def.Build(p)
		if err != nil {
			return nil, err
		}
		systems = append(systems, s)
	}

	natural, err := Definition{
		Name:        Natural,
		Description: "natural units (ħ = c = k_B = 1) in electronvolts",
		BaseUnits: map[string]string{
			"current": "A", "amount": "mol", "luminosity": "cd", "information": "bit",
		},
		Constants: map[string]float64{"c": 1, "hbar": 1, "k_B": 1},
	}.Build(p)
	if err != nil {
		return nil, err
	}
	for d, u := range naturalBaseUnits {
		natural.BaseUnits[d] = u
	}
	return append(systems, natural), nil
}

// RegisterBuiltins registers every builtin system into m.
func (m *Manager) RegisterBuiltins(p UnitParser) error {
	systems, err := Builtin(p)
	if err != nil {
		return err
	}
	for _, s := range systems {
		if err := m.Register(s); err != nil {
			return err
		}
	}
	return nil
}
