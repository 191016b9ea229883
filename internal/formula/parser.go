package formula

import (
	"errors"
	"math"
)

var errDivisionByZero = errors.New("division by zero")

type node interface {
	eval(x float64) (float64, error)
}

type numberNode float64

func (n numberNode) eval(float64) (float64, error) { return float64(n), nil }

type variableNode struct{}

func (variableNode) eval(x float64) (float64, error) { return x, nil }

type negateNode struct{ operand node }

func (n negateNode) eval(x float64) (float64, error) {
	v, err := n.operand.eval(x)
	return -v, err
}

type callNode struct {
	name string
	fn   func(float64) float64
	arg  node
}

func (n callNode) eval(x float64) (float64, error) {
	v, err := n.arg.eval(x)
	if err != nil {
		return 0, err
	}
	return n.fn(v), nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n binaryNode) eval(x float64) (float64, error) {
	l, err := n.left.eval(x)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(x)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case tokPlus:
		return l + r, nil
	case tokMinus:
		return l - r, nil
	case tokStar:
		return l * r, nil
	case tokSlash:
		if r == 0 {
			return 0, errDivisionByZero
		}
		return l / r, nil
	default:
		return math.Pow(l, r), nil
	}
}

// parser is a recursive-descent parser over the grammar
//
//	expr    := term (("+" | "-") term)*
//	term    := unary (("*" | "/") unary)*
//	unary   := ("-" | "+") unary | power
//	power   := primary ("^" unary)?
//	primary := number | ident | ident "(" expr ")" | "(" expr ")"
//
// so "^" is right-associative and binds tighter than unary minus on its left
// ("-2^2" is -4) but accepts a signed exponent on its right ("2^-1").
type parser struct {
	input    string
	tokens   []token
	pos      int
	depth    int
	variable string
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return syntaxError(p.input, p.peek().pos, "expression nested deeper than %d", MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func (p *parser) parseExpr() (node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.peek().kind {
	case tokMinus:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return negateNode{operand: operand}, nil
	case tokPlus:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCaret {
		return base, nil
	}
	p.advance()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return binaryNode{op: tokCaret, left: base, right: exp}, nil
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokNumber:
		return numberNode(tok.num), nil

	case tokIdent:
		if tok.text == p.variable {
			return variableNode{}, nil
		}
		if fn, ok := functions[tok.text]; ok {
			if p.peek().kind != tokLParen {
				return nil, syntaxError(p.input, p.peek().pos, "expected '(' after %s", tok.text)
			}
			arg, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			return callNode{name: tok.text, fn: fn, arg: arg}, nil
		}
		if v, ok := constants[tok.text]; ok {
			return numberNode(v), nil
		}
		return nil, syntaxError(p.input, tok.pos, "unknown identifier %q", tok.text)

	case tokLParen:
		p.pos--
		return p.parseGroup()
	}
	return nil, syntaxError(p.input, tok.pos, "unexpected %s", tok.kind)
}

// parseGroup parses "(" expr ")".
func (p *parser) parseGroup() (node, error) {
	open := p.advance()
	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokRParen {
		return nil, syntaxError(p.input, p.peek().pos, "unclosed '(' at position %d", open.pos)
	}
	p.advance()
	return inner, nil
}
