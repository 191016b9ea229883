package registry

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/btree"

	"github.com/edoardob90/runits/internal/formula"
	"github.com/edoardob90/runits/internal/parser"
	"github.com/edoardob90/runits/internal/units"
)

// Policy decides what happens when a name is registered twice.
type Policy uint8

const (
	// PolicyOverride lets the later registration replace the earlier one.
	PolicyOverride Policy = iota
	// PolicyStrict rejects duplicates with ErrDuplicateName.
	PolicyStrict
)

// String returns "override" or "strict".
func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "override"
}

// ParsePolicy parses "override" or "strict" (case-insensitive). An empty
// string yields PolicyOverride.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "override":
		return PolicyOverride, nil
	case "strict":
		return PolicyStrict, nil
	}
	return PolicyOverride, fmt.Errorf("unknown registry policy %q (want override or strict)", s)
}

// Builder accumulates definition records and builds an immutable Registry.
// A Builder is not safe for concurrent use.
type Builder struct {
	policy  Policy
	logger  Logger
	records []Record
}

// NewBuilder creates a builder with the given duplicate-name policy.
func NewBuilder(policy Policy) *Builder {
	return &Builder{policy: policy, logger: noopLogger{}}
}

// SetLogger sets the logger used to report overridden names.
func (b *Builder) SetLogger(logger Logger) {
	b.logger = logger
}

// Add appends records. Later records take precedence under PolicyOverride.
func (b *Builder) Add(records ...Record) {
	b.records = append(b.records, records...)
}

type entryKind uint8

const (
	entryBase entryKind = iota
	entryDerived
	entryCustom
	entryAlias
)

func (k entryKind) String() string {
	switch k {
	case entryBase:
		return "base unit"
	case entryDerived:
		return "derived unit"
	case entryCustom:
		return "custom unit"
	default:
		return "alias"
	}
}

type staged struct {
	kind entryKind
	seq  int

	base    BaseUnitRecord
	derived DerivedUnitRecord
	custom  CustomDefinition
	target  string // alias canonical name
}

type staging struct {
	names    map[string]*staged
	prefixes map[string]float64
	seq      int
}

// Build validates the records and assembles a Registry. Derived unit
// expressions are evaluated in registration order, so they may reference
// any base unit and any derived unit registered before them. Custom
// definitions are resolved lazily; Registry.Validate reports those that
// cannot be resolved.
func (b *Builder) Build() (*Registry, error) {
	st := &staging{
		names:    make(map[string]*staged),
		prefixes: make(map[string]float64),
	}
	for _, rec := range b.records {
		if err := b.stage(st, rec); err != nil {
			return nil, err
		}
	}
	return b.assemble(st)
}

func (b *Builder) stage(st *staging, rec Record) error {
	switch r := rec.(type) {
	case PrefixRecord:
		if r.Symbol == "" || strings.ContainsAny(r.Symbol, " \t*/^()") {
			return fmt.Errorf("%w: prefix symbol %q", ErrInvalidRecord, r.Symbol)
		}
		if r.Multiplier <= 0 || math.IsInf(r.Multiplier, 0) || math.IsNaN(r.Multiplier) {
			return fmt.Errorf("%w: prefix %q multiplier must be positive", ErrInvalidRecord, r.Symbol)
		}
		if old, ok := st.prefixes[r.Symbol]; ok {
			if b.policy == PolicyStrict {
				return fmt.Errorf("%w: prefix %q", ErrDuplicateName, r.Symbol)
			}
			b.logger.Warn("prefix overridden", "symbol", r.Symbol, "old", old, "new", r.Multiplier)
		}
		st.prefixes[r.Symbol] = r.Multiplier
		return nil

	case BaseUnitRecord:
		if err := checkName(r.Name); err != nil {
			return fmt.Errorf("%w: base unit: %v", ErrInvalidRecord, err)
		}
		if _, err := units.ParseDimension(r.Dimension); err != nil {
			return fmt.Errorf("%w: base unit %q: %v", ErrInvalidRecord, r.Name, err)
		}
		if err := b.claim(st, r.Name, &staged{kind: entryBase, base: r}); err != nil {
			return err
		}
		return b.claimAliases(st, r.Name, r.Aliases)

	case DerivedUnitRecord:
		if err := checkName(r.Name); err != nil {
			return fmt.Errorf("%w: derived unit: %v", ErrInvalidRecord, err)
		}
		if r.Scale < 0 || math.IsInf(r.Scale, 0) || math.IsNaN(r.Scale) {
			return fmt.Errorf("%w: derived unit %q scale must be positive", ErrInvalidRecord, r.Name)
		}
		if err := b.claim(st, r.Name, &staged{kind: entryDerived, derived: r}); err != nil {
			return err
		}
		return b.claimAliases(st, r.Name, r.Aliases)

	case AliasRecord:
		if err := checkName(r.Name); err != nil {
			return fmt.Errorf("%w: alias: %v", ErrInvalidRecord, err)
		}
		if r.Canonical == "" || r.Canonical == r.Name {
			return fmt.Errorf("%w: alias %q needs a distinct target", ErrInvalidRecord, r.Name)
		}
		return b.claim(st, r.Name, &staged{kind: entryAlias, target: r.Canonical})

	case CustomRecord:
		if err := r.Definition.Check(); err != nil {
			return err
		}
		def := r.Definition
		def.Aliases = slices.Clone(def.Aliases)
		if err := b.claim(st, def.Name, &staged{kind: entryCustom, custom: def}); err != nil {
			return err
		}
		return b.claimAliases(st, def.Name, def.Aliases)

	default:
		return fmt.Errorf("%w: unsupported record type %T", ErrInvalidRecord, rec)
	}
}

func (b *Builder) claimAliases(st *staging, canonical string, aliases []string) error {
	for _, a := range aliases {
		if err := checkName(a); err != nil {
			return fmt.Errorf("%w: alias of %q: %v", ErrInvalidRecord, canonical, err)
		}
		if err := b.claim(st, a, &staged{kind: entryAlias, target: canonical}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) claim(st *staging, name string, e *staged) error {
	if old, ok := st.names[name]; ok {
		if b.policy == PolicyStrict {
			return fmt.Errorf("%w: %q already registered as %s", ErrDuplicateName, name, old.kind)
		}
		b.logger.Warn("unit name overridden", "name", name, "old", old.kind.String(), "new", e.kind.String())
	}
	st.seq++
	e.seq = st.seq
	st.names[name] = e
	return nil
}

func (b *Builder) assemble(st *staging) (*Registry, error) {
	r := &Registry{
		units:     make(map[string]units.Unit),
		aliases:   make(map[string]string),
		custom:    make(map[string]CustomDefinition),
		functions: make(map[string]compiledFunction),
		prefixes:  btree.NewG[Prefix](8, lessPrefix),
		policy:    b.policy,
	}
	for sym, mult := range st.prefixes {
		r.prefixes.ReplaceOrInsert(Prefix{Symbol: sym, Multiplier: mult})
	}

	type namedEntry struct {
		name string
		*staged
	}
	entries := make([]namedEntry, 0, len(st.names))
	for name, e := range st.names {
		entries = append(entries, namedEntry{name: name, staged: e})
	}
	slices.SortFunc(entries, func(a, b namedEntry) int { return cmp.Compare(a.seq, b.seq) })

	for _, e := range entries {
		switch e.kind {
		case entryBase:
			dim, _ := units.ParseDimension(e.base.Dimension)
			r.units[e.name] = units.New(e.name, 1, units.Base(dim)).WithAliases(e.base.Aliases...)
		case entryAlias:
			r.aliases[e.name] = e.target
		case entryCustom:
			fn, err := compileFunction(e.custom)
			if err != nil {
				return nil, err
			}
			if fn.forward != nil {
				r.functions[e.name] = fn
			}
			r.custom[e.name] = e.custom
		}
	}

	p := parser.New(r)
	for _, e := range entries {
		if e.kind != entryDerived {
			continue
		}
		u := units.One
		if strings.TrimSpace(e.derived.Expression) != "" {
			parsed, err := p.ParseUnit(e.derived.Expression)
			if err != nil {
				return nil, fmt.Errorf("derived unit %q: %w", e.name, err)
			}
			u = parsed
		}
		switch {
		case e.derived.Scale == 0:
		case u.IsFunctional():
			// A functional unit ignores its scale field, so the factor is
			// applied before the mapping.
			u = units.NewFunctional(e.name, u.Dims(), linearMapping{scale: e.derived.Scale, base: u})
		default:
			u = u.WithScale(e.derived.Scale)
		}
		r.units[e.name] = u.WithName(e.name).WithAliases(e.derived.Aliases...)
	}

	for _, e := range entries {
		if e.kind != entryAlias {
			continue
		}
		if _, ok := r.custom[e.target]; ok {
			continue
		}
		if _, err := r.Resolve(e.name); err != nil {
			return nil, fmt.Errorf("alias %q: %w", e.name, err)
		}
	}

	r.names = make([]string, 0, len(r.units)+len(r.custom))
	for name := range r.units {
		r.names = append(r.names, name)
	}
	for name := range r.custom {
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)

	return r, nil
}

func compileFunction(def CustomDefinition) (compiledFunction, error) {
	if def.Kind != KindFunctional {
		return compiledFunction{}, nil
	}
	fwd, err := formula.Compile(def.Expression, FormulaVariable)
	if err != nil {
		return compiledFunction{}, fmt.Errorf("custom unit %q expression: %w", def.Name, err)
	}
	fn := compiledFunction{forward: fwd}
	if strings.TrimSpace(def.Inverse) != "" {
		inv, err := formula.Compile(def.Inverse, FormulaVariable)
		if err != nil {
			return compiledFunction{}, fmt.Errorf("custom unit %q inverse: %w", def.Name, err)
		}
		fn.inverse = inv
	}
	return fn, nil
}
