package formula

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/edoardob90/runits/internal/units"
)

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
		want float64
	}{
		{"x", 7, 7},
		{"2 * x + 1", 3, 7},
		{"2 + 3 * 4", 0, 14},
		{"(2 + 3) * 4", 0, 20},
		{"10 - 4 - 3", 0, 3},
		{"100 / 10 / 5", 0, 2},
		{"2 ^ 3 ^ 2", 0, 512},
		{"-2 ^ 2", 0, -4},
		{"2 ^ -1", 0, 0.5},
		{"--x", 5, 5},
		{"+x", 5, 5},
		{"1.5e3 + .5", 0, 1500.5},
		{"2E-2", 0, 0.02},
		{"(x - 32) * 5 / 9", 212, 100},
		{"10 ^ (x / 10)", 20, 100},
		{"pi", 0, math.Pi},
		{"π * 2", 0, 2 * math.Pi},
		{"tau / 2", 0, math.Pi},
		{"e ^ 1", 0, math.E},
		{"sqrt(x)", 16, 4},
		{"log10(x) * 10", 1000, 30},
		{"ln(e)", 0, 1},
		{"abs(-x)", 3, 3},
		{"exp(0) + log2(8)", 0, 4},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := Compile(tt.expr, "x")
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.expr, err)
			}
			got, err := e.Eval(tt.x)
			if err != nil {
				t.Fatalf("Eval(%v) error = %v", tt.x, err)
			}
			if math.Abs(got-tt.want) > 1e-9*math.Max(1, math.Abs(tt.want)) {
				t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantPos int
	}{
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"dangling operator", "x +", 3},
		{"unknown identifier", "x + y", 4},
		{"host function", "os(1)", 0},
		{"unclosed paren", "(x + 1", 6},
		{"stray paren", "x)", 1},
		{"bad character", "x $ 2", 2},
		{"malformed exponent", "1e+", 1},
		{"lone dot", ".", 0},
		{"function without call", "sqrt x", 5},
		{"two numbers", "1 2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.expr, "x")
			if !errors.Is(err, units.ErrSyntax) {
				t.Fatalf("Compile(%q) error = %v, want ErrSyntax", tt.expr, err)
			}
			var se *units.SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error type = %T", err)
			}
			if se.Pos != tt.wantPos {
				t.Errorf("Pos = %d, want %d (%s)", se.Pos, tt.wantPos, se.Reason)
			}
		})
	}
}

func TestCompileLimits(t *testing.T) {
	long := strings.Repeat("1+", MaxLength) + "1"
	if _, err := Compile(long, "x"); !errors.Is(err, units.ErrSyntax) {
		t.Errorf("long expression error = %v, want ErrSyntax", err)
	}

	deep := strings.Repeat("(", MaxDepth+1) + "x" + strings.Repeat(")", MaxDepth+1)
	if _, err := Compile(deep, "x"); !errors.Is(err, units.ErrSyntax) {
		t.Errorf("deep expression error = %v, want ErrSyntax", err)
	}

	negations := strings.Repeat("-", MaxDepth+1) + "x"
	if _, err := Compile(negations, "x"); !errors.Is(err, units.ErrSyntax) {
		t.Errorf("deep negation error = %v, want ErrSyntax", err)
	}

	ok := strings.Repeat("(", 10) + "x" + strings.Repeat(")", 10)
	if _, err := Compile(ok, "x"); err != nil {
		t.Errorf("shallow nesting error = %v", err)
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		expr string
		x    float64
	}{
		{"1 / x", 0},
		{"1 / (x - x)", 3},
		{"sqrt(x)", -1},
		{"ln(x)", 0},
		{"10 ^ x", 400},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e := MustCompile(tt.expr, "x")
			_, err := e.Eval(tt.x)
			if !errors.Is(err, units.ErrExpressionEvaluation) {
				t.Fatalf("Eval(%v) error = %v, want ErrExpressionEvaluation", tt.x, err)
			}
			var ee *units.EvaluationError
			if !errors.As(err, &ee) || ee.Expr != tt.expr {
				t.Errorf("error = %#v", err)
			}
		})
	}
}

func TestVariableName(t *testing.T) {
	e, err := Compile("2 * value", "value")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if e.Variable() != "value" || e.String() != "2 * value" {
		t.Errorf("Variable() = %q, String() = %q", e.Variable(), e.String())
	}
	if got, _ := e.Eval(4); got != 8 {
		t.Errorf("Eval(4) = %v, want 8", got)
	}
	if _, err := Compile("2 * x", "value"); err == nil {
		t.Error("x should be unknown when the variable is named value")
	}
}

func TestTables(t *testing.T) {
	if c := Constants(); len(c) == 0 || c[0] > c[len(c)-1] {
		t.Errorf("Constants() = %v", c)
	}
	if f := Functions(); len(f) != 6 {
		t.Errorf("Functions() = %v", f)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic")
		}
	}()
	MustCompile("(", "x")
}
