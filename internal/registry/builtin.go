package registry

import "math"

// DefaultRecords returns the builtin unit database: SI and binary prefixes,
// the SI base units plus information, common derived, imperial and US
// customary units, and the temperature scales as linear custom units.
// Each call returns a fresh slice.
func DefaultRecords() []Record {
	records := make([]Record, 0, 128)
	for _, p := range siPrefixes {
		records = append(records, p)
	}
	for _, p := range binaryPrefixes {
		records = append(records, p)
	}
	for _, b := range baseUnits {
		records = append(records, b)
	}
	for _, d := range derivedUnits {
		records = append(records, d)
	}
	for _, c := range temperatureScales {
		records = append(records, CustomRecord{Definition: c})
	}
	return records
}

var siPrefixes = []PrefixRecord{
	{"Y", 1e24}, {"Z", 1e21}, {"E", 1e18}, {"P", 1e15},
	{"T", 1e12}, {"G", 1e9}, {"M", 1e6}, {"k", 1e3},
	{"h", 1e2}, {"da", 1e1}, {"d", 1e-1}, {"c", 1e-2},
	{"m", 1e-3}, {"µ", 1e-6}, {"μ", 1e-6}, {"u", 1e-6},
	{"n", 1e-9}, {"p", 1e-12}, {"f", 1e-15}, {"a", 1e-18},
	{"z", 1e-21}, {"y", 1e-24},
}

var binaryPrefixes = []PrefixRecord{
	{"Ki", 1 << 10}, {"Mi", 1 << 20}, {"Gi", 1 << 30}, {"Ti", 1 << 40},
	{"Pi", 1 << 50}, {"Ei", 1 << 60}, {"Zi", math.Exp2(70)}, {"Yi", math.Exp2(80)},
}

var baseUnits = []BaseUnitRecord{
	{Name: "m", Dimension: "length", Aliases: []string{"meter", "meters", "metre", "metres"}},
	{Name: "kg", Dimension: "mass", Aliases: []string{"kilogram", "kilograms"}},
	{Name: "s", Dimension: "time", Aliases: []string{"second", "seconds", "sec"}},
	{Name: "K", Dimension: "temperature", Aliases: []string{"kelvin"}},
	{Name: "A", Dimension: "current", Aliases: []string{"ampere", "amp"}},
	{Name: "mol", Dimension: "amount", Aliases: []string{"mole"}},
	{Name: "cd", Dimension: "luminosity", Aliases: []string{"candela"}},
	{Name: "bit", Dimension: "information", Aliases: []string{"bits"}},
}

// Derived units in dependency order.
var derivedUnits = []DerivedUnitRecord{
	// mass
	{Name: "g", Expression: "kg", Scale: 1e-3, Aliases: []string{"gram", "grams"}},
	{Name: "t", Expression: "kg", Scale: 1e3, Aliases: []string{"tonne", "tonnes"}},
	{Name: "lb", Expression: "kg", Scale: 0.45359237, Aliases: []string{"pound", "pounds", "lbs"}},
	{Name: "oz", Expression: "lb", Scale: 1.0 / 16, Aliases: []string{"ounce", "ounces"}},
	{Name: "st", Expression: "lb", Scale: 14, Aliases: []string{"stone"}},

	// length
	{Name: "ft", Expression: "m", Scale: 0.3048, Aliases: []string{"foot", "feet"}},
	{Name: "in", Expression: "m", Scale: 0.0254, Aliases: []string{"inch", "inches"}},
	{Name: "yd", Expression: "m", Scale: 0.9144, Aliases: []string{"yard", "yards"}},
	{Name: "mi", Expression: "m", Scale: 1609.344, Aliases: []string{"mile", "miles"}},
	{Name: "nmi", Expression: "m", Scale: 1852, Aliases: []string{"nautical_mile"}},
	{Name: "au", Expression: "m", Scale: 149597870700, Aliases: []string{"astronomical_unit"}},
	{Name: "ly", Expression: "m", Scale: 9460730472580800, Aliases: []string{"light_year"}},

	// time
	{Name: "min", Expression: "s", Scale: 60, Aliases: []string{"minute", "minutes"}},
	{Name: "h", Expression: "s", Scale: 3600, Aliases: []string{"hr", "hour", "hours"}},
	{Name: "day", Expression: "s", Scale: 86400, Aliases: []string{"days"}},
	{Name: "week", Expression: "s", Scale: 604800, Aliases: []string{"weeks"}},
	{Name: "yr", Expression: "s", Scale: 31557600, Aliases: []string{"year", "years"}},

	// mechanics and electromagnetism
	{Name: "Hz", Expression: "1/s", Aliases: []string{"hertz"}},
	{Name: "N", Expression: "kg*m/s^2", Aliases: []string{"newton"}},
	{Name: "J", Expression: "N*m", Aliases: []string{"joule"}},
	{Name: "W", Expression: "J/s", Aliases: []string{"watt"}},
	{Name: "Pa", Expression: "N/m^2", Aliases: []string{"pascal"}},
	{Name: "C", Expression: "A*s", Aliases: []string{"coulomb"}},
	{Name: "V", Expression: "W/A", Aliases: []string{"volt"}},
	{Name: "ohm", Expression: "V/A", Aliases: []string{"Ω"}},
	{Name: "F", Expression: "C/V", Aliases: []string{"farad"}},
	{Name: "S", Expression: "A/V", Aliases: []string{"siemens"}},
	{Name: "Wb", Expression: "V*s", Aliases: []string{"weber"}},
	{Name: "T", Expression: "Wb/m^2", Aliases: []string{"tesla"}},
	{Name: "H", Expression: "Wb/A", Aliases: []string{"henry"}},
	{Name: "dyn", Expression: "N", Scale: 1e-5, Aliases: []string{"dyne"}},
	{Name: "erg", Expression: "J", Scale: 1e-7},
	{Name: "lbf", Expression: "N", Scale: 4.4482216152605, Aliases: []string{"pound_force"}},

	// area and volume
	{Name: "ha", Expression: "m^2", Scale: 1e4, Aliases: []string{"hectare"}},
	{Name: "L", Expression: "m^3", Scale: 1e-3, Aliases: []string{"l", "liter", "liters", "litre", "litres"}},
	{Name: "gal", Expression: "L", Scale: 3.785411784, Aliases: []string{"gallon", "gallons"}},
	{Name: "qt", Expression: "gal", Scale: 0.25, Aliases: []string{"quart"}},
	{Name: "pt", Expression: "gal", Scale: 0.125, Aliases: []string{"pint"}},
	{Name: "floz", Expression: "gal", Scale: 1.0 / 128, Aliases: []string{"fluid_ounce"}},

	// energy, power and pressure
	{Name: "cal", Expression: "J", Scale: 4.184, Aliases: []string{"calorie"}},
	{Name: "kcal", Expression: "J", Scale: 4184, Aliases: []string{"kilocalorie", "Cal"}},
	{Name: "eV", Expression: "J", Scale: 1.602176634e-19, Aliases: []string{"electronvolt"}},
	{Name: "Wh", Expression: "W*h", Aliases: []string{"watt_hour"}},
	{Name: "bar", Expression: "Pa", Scale: 1e5},
	{Name: "atm", Expression: "Pa", Scale: 101325, Aliases: []string{"atmosphere"}},
	{Name: "psi", Expression: "lbf/in^2"},
	{Name: "mmHg", Expression: "Pa", Scale: 133.322387415},

	// speed
	{Name: "mph", Expression: "mi/h"},
	{Name: "kph", Expression: "km/h"},
	{Name: "kn", Expression: "nmi/h", Aliases: []string{"knot", "knots"}},

	// information
	{Name: "B", Expression: "bit", Scale: 8, Aliases: []string{"byte", "bytes"}},

	// dimensionless
	{Name: "rad", Aliases: []string{"radian", "radians"}},
	{Name: "deg", Scale: math.Pi / 180, Aliases: []string{"degree", "degrees"}},
	{Name: "percent", Scale: 0.01, Aliases: []string{"%"}},
}

var temperatureScales = []CustomDefinition{
	{Name: "degC", Kind: KindLinear, Scale: 1, Offset: 273.15, Base: "K", Aliases: []string{"celsius", "°C"}},
	{Name: "degF", Kind: KindLinear, Scale: 5.0 / 9, Offset: 459.67 * 5 / 9, Base: "K", Aliases: []string{"fahrenheit", "°F"}},
	{Name: "degR", Kind: KindSimple, Scale: 5.0 / 9, Base: "K", Aliases: []string{"rankine", "°R"}},
}
