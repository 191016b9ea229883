package registry

import (
	"slices"
	"strings"

	"github.com/edoardob90/runits/internal/units"
)

// Prefix is a registered name prefix such as "k" (1000) or "Ki" (1024).
type Prefix struct {
	Symbol     string  `json:"symbol"`
	Multiplier float64 `json:"multiplier"`
}

func lessPrefix(a, b Prefix) bool { return a.Symbol < b.Symbol }

// ListPrefixes returns the prefixes sorted by symbol.
func (r *Registry) ListPrefixes() []Prefix {
	out := make([]Prefix, 0, r.prefixes.Len())
	r.prefixes.Ascend(func(p Prefix) bool {
		out = append(out, p)
		return true
	})
	return out
}

// decomposition is one way to read a name as prefix + unit.
type decomposition struct {
	prefix Prefix
	unit   units.Unit
}

// resolvePrefixed tries every registered prefix of name whose remainder is
// an exact unit, alias or custom name. Remainders are never decomposed
// again, so "kkm" does not resolve.
func (r *Registry) resolvePrefixed(name string, chain []string) (units.Unit, error) {
	var (
		found    []decomposition
		firstErr error
	)
	// Every prefix of name sorts at or before name and at or after its
	// first byte, which bounds the walk.
	floor := name[:1]
	r.prefixes.DescendLessOrEqual(Prefix{Symbol: name}, func(p Prefix) bool {
		if p.Symbol < floor {
			return false
		}
		if len(p.Symbol) >= len(name) || !strings.HasPrefix(name, p.Symbol) {
			return true
		}
		u, ok, err := r.resolveExact(name[len(p.Symbol):], chain)
		switch {
		case !ok:
		case err != nil:
			if firstErr == nil {
				firstErr = err
			}
		case u.IsFunctional():
			// Functional mappings ignore scale, so they take no prefix.
		default:
			found = append(found, decomposition{prefix: p, unit: u})
		}
		return true
	})

	if len(found) == 0 {
		if firstErr != nil {
			return units.Unit{}, firstErr
		}
		return units.Unit{}, &units.UnknownUnitError{Name: name}
	}
	return pickDecomposition(name, found)
}

// pickDecomposition applies the tie-break: the longest prefix wins, and
// equally long prefixes must agree on the resulting unit.
func pickDecomposition(name string, found []decomposition) (units.Unit, error) {
	longest := 0
	for _, d := range found {
		longest = max(longest, len(d.prefix.Symbol))
	}

	var best []units.Unit
	var candidates []string
	for _, d := range found {
		if len(d.prefix.Symbol) != longest {
			continue
		}
		best = append(best, d.unit.WithScale(d.prefix.Multiplier).WithName(name).WithAliases())
		candidates = append(candidates, d.prefix.Symbol+"+"+d.unit.Name())
	}

	for _, u := range best[1:] {
		if !u.Equivalent(best[0]) {
			slices.Sort(candidates)
			return units.Unit{}, &units.AmbiguousUnitError{Name: name, Candidates: candidates}
		}
	}
	return best[0], nil
}
