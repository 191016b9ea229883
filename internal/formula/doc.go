// Package formula evaluates the one-variable arithmetic expressions used by
// functional custom units.
//
// The grammar is deliberately small: numbers, the free variable, a fixed
// table of constants (pi, e, tau, ...) and functions (sqrt, exp, ln, log10,
// log2, abs), the operators + - * / ^ and parentheses. Nothing in an
// expression can reach the host: there are no assignments, no loops, no
// user-defined functions and no I/O. Input length and nesting depth are
// bounded, so compiling and evaluating untrusted definition files is safe.
//
//	e, err := formula.Compile("10 ^ (x / 10)", "x")
//	mw, err := e.Eval(3) // 1.995...
package formula
