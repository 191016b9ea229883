package definitions

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edoardob90/runits/internal/registry"
	"github.com/edoardob90/runits/internal/system"
	"github.com/edoardob90/runits/internal/units"
)

// ErrInvalidFile is returned when a definitions file parses but its content
// is malformed.
var ErrInvalidFile = errors.New("definitions: invalid file")

// File is the parsed content of one definitions file.
//
//	prefixes:
//	  - {symbol: k, multiplier: 1000}
//	base_units:
//	  - {name: m, dimension: length, aliases: [meter]}
//	derived_units:
//	  - {name: ft, expression: m, scale: 0.3048}
//	aliases:
//	  - {name: metre, canonical: m}
//	custom_units:
//	  - {name: furlong, kind: simple, scale: 220, base: yd}
//	systems:
//	  - {name: Nautical, base_units: {length: nmi, time: h}}
type File struct {
	Prefixes     []Prefix                    `yaml:"prefixes"`
	BaseUnits    []BaseUnit                  `yaml:"base_units"`
	DerivedUnits []DerivedUnit               `yaml:"derived_units"`
	Aliases      []Alias                     `yaml:"aliases"`
	CustomUnits  []registry.CustomDefinition `yaml:"custom_units"`
	Systems      []system.Definition         `yaml:"systems"`

	// Source is the path the file was read from, if any.
	Source string `yaml:"-"`
}

// Prefix declares a unit prefix.
type Prefix struct {
	Symbol     string  `yaml:"symbol"`
	Multiplier float64 `yaml:"multiplier"`
}

// BaseUnit declares the canonical unit of a dimension.
type BaseUnit struct {
	Name      string   `yaml:"name"`
	Dimension string   `yaml:"dimension"`
	Aliases   []string `yaml:"aliases,omitempty"`
}

// DerivedUnit declares a unit as scale times a unit expression.
type DerivedUnit struct {
	Name       string   `yaml:"name"`
	Expression string   `yaml:"expression"`
	Scale      float64  `yaml:"scale,omitempty"`
	Aliases    []string `yaml:"aliases,omitempty"`
}

// Alias declares an extra name for an existing unit.
type Alias struct {
	Name      string `yaml:"name"`
	Canonical string `yaml:"canonical"`
}

// Load reads and validates the definitions file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Source = path
	return f, nil
}

// Parse decodes and validates definitions from YAML. Unknown keys are
// rejected so typos do not silently drop definitions.
func Parse(data []byte) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing definitions: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the static shape of every entry and reports all
// problems at once. Names are not resolved here; that happens when the
// records are built into a registry.
func (f *File) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for i, p := range f.Prefixes {
		if strings.TrimSpace(p.Symbol) == "" {
			add("prefixes[%d]: symbol is required", i)
		}
		if p.Multiplier <= 0 || math.IsInf(p.Multiplier, 0) || math.IsNaN(p.Multiplier) {
			add("prefixes[%d] %q: multiplier must be a positive number", i, p.Symbol)
		}
	}
	for i, b := range f.BaseUnits {
		if strings.TrimSpace(b.Name) == "" {
			add("base_units[%d]: name is required", i)
		}
		if _, err := units.ParseDimension(b.Dimension); err != nil {
			add("base_units[%d] %q: %v", i, b.Name, err)
		}
	}
	for i, d := range f.DerivedUnits {
		if strings.TrimSpace(d.Name) == "" {
			add("derived_units[%d]: name is required", i)
		}
		if d.Scale < 0 || math.IsInf(d.Scale, 0) || math.IsNaN(d.Scale) {
			add("derived_units[%d] %q: scale must be a positive number", i, d.Name)
		}
	}
	for i, a := range f.Aliases {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Canonical) == "" {
			add("aliases[%d]: name and canonical are required", i)
		}
	}
	for i, c := range f.CustomUnits {
		if err := c.Check(); err != nil {
			add("custom_units[%d]: %v", i, err)
		}
	}
	for i, s := range f.Systems {
		if strings.TrimSpace(s.Name) == "" {
			add("systems[%d]: name is required", i)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidFile, strings.Join(problems, "\n  - "))
	}
	return nil
}

// Records converts the file into registry records: prefixes first, then
// base units, derived units, aliases and custom units, each in file order.
func (f *File) Records() []registry.Record {
	n := len(f.Prefixes) + len(f.BaseUnits) + len(f.DerivedUnits) + len(f.Aliases) + len(f.CustomUnits)
	records := make([]registry.Record, 0, n)
	for _, p := range f.Prefixes {
		records = append(records, registry.PrefixRecord{Symbol: p.Symbol, Multiplier: p.Multiplier})
	}
	for _, b := range f.BaseUnits {
		records = append(records, registry.BaseUnitRecord{Name: b.Name, Dimension: b.Dimension, Aliases: b.Aliases})
	}
	for _, d := range f.DerivedUnits {
		records = append(records, registry.DerivedUnitRecord{
			Name:       d.Name,
			Expression: d.Expression,
			Scale:      d.Scale,
			Aliases:    d.Aliases,
		})
	}
	for _, a := range f.Aliases {
		records = append(records, registry.AliasRecord{Name: a.Name, Canonical: a.Canonical})
	}
	for _, c := range f.CustomUnits {
		records = append(records, registry.CustomRecord{Definition: c})
	}
	return records
}

// LoadAll loads every path in order and concatenates their records and
// system definitions. Later files override earlier ones under the
// registry's override policy.
func LoadAll(paths []string) ([]registry.Record, []system.Definition, error) {
	var (
		records []registry.Record
		systems []system.Definition
	)
	for _, path := range paths {
		f, err := Load(path)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, f.Records()...)
		systems = append(systems, f.Systems...)
	}
	return records, systems, nil
}
