package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/edoardob90/runits/internal/units"
)

// Resolver looks up a single unit name. The registry implements it.
type Resolver interface {
	Resolve(name string) (units.Unit, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (units.Unit, error)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (units.Unit, error) { return f(name) }

// Parser turns text into quantities and units. It holds no state besides its
// resolver and is safe for concurrent use when the resolver is.
type Parser struct {
	resolver Resolver
}

// New creates a parser that resolves names through r.
func New(r Resolver) *Parser {
	return &Parser{resolver: r}
}

// Parse parses "[number] expr". A missing number means 1, so "km" is one
// kilometre; a missing expression means a dimensionless number.
func (p *Parser) Parse(text string) (units.Quantity, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return units.Quantity{}, err
	}
	if tokens[0].Type == TokenEOF {
		return units.Quantity{}, syntaxError(text, 0, "empty input")
	}

	s := &state{input: text, tokens: tokens, resolver: p.resolver}
	value, hasValue, err := s.leadingValue()
	if err != nil {
		return units.Quantity{}, err
	}
	if !hasValue {
		value = 1
	}

	if s.peek().Type == TokenEOF {
		return units.NewQuantity(value, units.One), nil
	}
	if hasValue && !s.peek().Spaced {
		return units.Quantity{}, syntaxError(text, s.peek().Pos, "expected whitespace between number and unit")
	}

	u, err := s.expression()
	if err != nil {
		return units.Quantity{}, err
	}
	if err := s.expectEOF(); err != nil {
		return units.Quantity{}, err
	}
	return units.NewQuantity(value, u), nil
}

// ParseUnit parses a unit expression such as "kg*m/s^2".
func (p *Parser) ParseUnit(text string) (units.Unit, error) {
	tokens, err := NewLexer(text).Tokenize()
	if err != nil {
		return units.Unit{}, err
	}
	if tokens[0].Type == TokenEOF {
		return units.Unit{}, syntaxError(text, 0, "empty input")
	}

	s := &state{input: text, tokens: tokens, resolver: p.resolver}
	u, err := s.expression()
	if err != nil {
		return units.Unit{}, err
	}
	if err := s.expectEOF(); err != nil {
		return units.Unit{}, err
	}
	return u, nil
}

// state walks one token stream. Expressions are evaluated as they are read:
//
//	expr := term (("*" | "/") term)*
//	term := (name | number | "(" expr ")") ("^" signed_int)?
//
// "*" and "/" share precedence and associate left to right, so "J/kg*K" is
// (J/kg)*K.
type state struct {
	input    string
	tokens   []Token
	pos      int
	resolver Resolver
}

func (s *state) peek() Token { return s.tokens[s.pos] }

func (s *state) advance() Token {
	tok := s.tokens[s.pos]
	if tok.Type != TokenEOF {
		s.pos++
	}
	return tok
}

// leadingValue consumes an optional signed number that is followed by
// something other than an operator. "1/s" is an expression, "10 m" is not.
func (s *state) leadingValue() (float64, bool, error) {
	i := s.pos
	sign := 1.0
	if s.tokens[i].Type == TokenSign {
		if s.tokens[i].Value == "-" {
			sign = -1
		}
		i++
	}
	tok := s.tokens[i]
	if tok.Type != TokenNumber {
		if i != s.pos {
			return 0, false, syntaxError(s.input, tok.Pos, "expected number after sign")
		}
		return 0, false, nil
	}
	switch s.tokens[i+1].Type {
	case TokenStar, TokenSlash, TokenCaret:
		if i != s.pos {
			return 0, false, syntaxError(s.input, s.tokens[s.pos].Pos, "unexpected sign")
		}
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, false, syntaxError(s.input, tok.Pos, "malformed number %q", tok.Value)
	}
	s.pos = i + 1
	return sign * v, true, nil
}

func (s *state) expression() (units.Unit, error) {
	acc, err := s.term()
	if err != nil {
		return units.Unit{}, err
	}
	for {
		op := s.peek()
		if op.Type != TokenStar && op.Type != TokenSlash {
			return acc, nil
		}
		s.advance()
		next, err := s.term()
		if err != nil {
			return units.Unit{}, err
		}
		if op.Type == TokenStar {
			acc, err = units.Multiply(acc, next)
		} else {
			acc, err = units.Divide(acc, next)
		}
		if err != nil {
			return units.Unit{}, s.rangeError(err, op.Pos)
		}
	}
}

func (s *state) term() (units.Unit, error) {
	tok := s.advance()
	var u units.Unit
	switch tok.Type {
	case TokenName:
		r, err := s.resolver.Resolve(tok.Value)
		if err != nil {
			return units.Unit{}, err
		}
		u = r

	case TokenNumber:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil || v <= 0 {
			return units.Unit{}, syntaxError(s.input, tok.Pos, "numeric factor must be positive")
		}
		u = units.New(tok.Value, v, units.Dimensionless)

	case TokenLParen:
		inner, err := s.expression()
		if err != nil {
			return units.Unit{}, err
		}
		if s.peek().Type != TokenRParen {
			return units.Unit{}, syntaxError(s.input, s.peek().Pos, "unclosed '(' at position %d", tok.Pos)
		}
		s.advance()
		if strings.ContainsAny(inner.Name(), "*/^") {
			inner = inner.WithName("(" + inner.Name() + ")")
		}
		u = inner

	case TokenEOF:
		return units.Unit{}, syntaxError(s.input, tok.Pos, "expected unit, got end of input")

	default:
		return units.Unit{}, syntaxError(s.input, tok.Pos, "expected unit, got %s", tok.Type)
	}

	if s.peek().Type != TokenCaret {
		return u, nil
	}
	caret := s.advance()
	n, err := s.exponent()
	if err != nil {
		return units.Unit{}, err
	}
	p, err := units.Pow(u, n)
	if err != nil {
		return units.Unit{}, s.rangeError(err, caret.Pos)
	}
	return p, nil
}

// rangeError reports exponent overflow as a syntax error at pos and passes
// every other error through.
func (s *state) rangeError(err error, pos int) error {
	if errors.Is(err, units.ErrExponentRange) {
		return syntaxError(s.input, pos, "dimension exponent exceeds ±%d", units.MaxExponent)
	}
	return err
}

func (s *state) exponent() (int, error) {
	sign := 1
	tok := s.advance()
	if tok.Type == TokenSign {
		if tok.Value == "-" {
			sign = -1
		}
		tok = s.advance()
	}
	if tok.Type != TokenNumber {
		return 0, syntaxError(s.input, tok.Pos, "expected integer exponent, got %s", tok.Type)
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, syntaxError(s.input, tok.Pos, "exponent %q is not an integer", tok.Value)
	}
	if n > units.MaxExponent {
		return 0, syntaxError(s.input, tok.Pos, "exponent %s exceeds %d", tok.Value, units.MaxExponent)
	}
	return sign * n, nil
}

func (s *state) expectEOF() error {
	tok := s.peek()
	if tok.Type == TokenEOF {
		return nil
	}
	if tok.Type == TokenName || tok.Type == TokenNumber {
		return syntaxError(s.input, tok.Pos, "expected '*' or '/' before %q", tok.Value)
	}
	return syntaxError(s.input, tok.Pos, "unexpected %s", tok.Type)
}

func syntaxError(input string, pos int, format string, args ...any) error {
	return &units.SyntaxError{Input: input, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}
