package formula

import (
	"math"
	"slices"
	"strings"

	"github.com/edoardob90/runits/internal/units"
)

// Limits applied by Compile.
const (
	MaxLength = 1024
	MaxDepth  = 64
)

// constants is the fixed table of named values an expression may reference.
var constants = map[string]float64{
	"pi":    math.Pi,
	"π":     math.Pi,
	"tau":   2 * math.Pi,
	"e":     math.E,
	"phi":   math.Phi,
	"sqrt2": math.Sqrt2,
	"ln2":   math.Ln2,
	"ln10":  math.Ln10,
}

// functions is the fixed table of one-argument functions.
var functions = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"exp":   math.Exp,
	"ln":    math.Log,
	"log10": math.Log10,
	"log2":  math.Log2,
	"abs":   math.Abs,
}

// Constants returns the names of the predefined constants, sorted.
func Constants() []string {
	names := make([]string, 0, len(constants))
	for name := range constants {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Functions returns the names of the predefined functions, sorted.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Expr is a compiled expression of one variable. It is immutable and safe for
// concurrent use.
type Expr struct {
	text     string
	variable string
	root     node
}

// Compile parses text as an expression over variable. Identifiers other than
// variable, the constant table and the function table are rejected.
func Compile(text, variable string) (*Expr, error) {
	if len(text) > MaxLength {
		return nil, syntaxError(text, MaxLength, "expression longer than %d bytes", MaxLength)
	}
	if strings.TrimSpace(text) == "" {
		return nil, syntaxError(text, 0, "empty expression")
	}
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	p := &parser{input: text, tokens: tokens, variable: variable}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, syntaxError(text, tok.pos, "unexpected %s", tok.kind)
	}
	return &Expr{text: text, variable: variable, root: root}, nil
}

// MustCompile is Compile that panics on error. Intended for package-level
// tables of known-good expressions.
func MustCompile(text, variable string) *Expr {
	e, err := Compile(text, variable)
	if err != nil {
		panic(err)
	}
	return e
}

// String returns the source text.
func (e *Expr) String() string { return e.text }

// Variable returns the name of the free variable.
func (e *Expr) Variable() string { return e.variable }

// Eval evaluates the expression with the variable bound to x. Division by
// zero and non-finite results fail with *units.EvaluationError.
func (e *Expr) Eval(x float64) (float64, error) {
	v, err := e.root.eval(x)
	if err != nil {
		return 0, &units.EvaluationError{Expr: e.text, Reason: err.Error()}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &units.EvaluationError{Expr: e.text, Reason: "result is not a finite number"}
	}
	return v, nil
}
