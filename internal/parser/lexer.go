package parser

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/edoardob90/runits/internal/units"
)

// TokenType identifies a lexical token of a unit expression.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenName
	TokenSign   // + or -
	TokenStar   // *
	TokenSlash  // /
	TokenCaret  // ^
	TokenLParen // (
	TokenRParen // )
)

// String returns a human-readable token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenNumber:
		return "number"
	case TokenName:
		return "unit name"
	case TokenSign:
		return "sign"
	case TokenStar:
		return "'*'"
	case TokenSlash:
		return "'/'"
	case TokenCaret:
		return "'^'"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	default:
		return "unknown"
	}
}

// Token is one lexical element with its byte offset in the input.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
	// Spaced reports whether whitespace preceded the token.
	Spaced bool
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// Lexer tokenizes unit expressions.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns every token up to and including TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	spaced := l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start, Spaced: spaced}, nil
	}

	tok := Token{Pos: start, Spaced: spaced}
	ch := l.input[l.pos]
	switch ch {
	case '*':
		tok.Type = TokenStar
	case '/':
		tok.Type = TokenSlash
	case '^':
		tok.Type = TokenCaret
	case '(':
		tok.Type = TokenLParen
	case ')':
		tok.Type = TokenRParen
	case '+', '-':
		tok.Type = TokenSign
	}
	if tok.Type != TokenEOF {
		l.pos++
		tok.Value = string(ch)
		return tok, nil
	}

	if isDigit(ch) || ch == '.' {
		return l.number(tok)
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if !isNameStart(r) {
		return Token{}, l.errorf(start, "unexpected character %q", r)
	}
	l.pos += size
	for l.pos < len(l.input) {
		r, size = utf8.DecodeRuneInString(l.input[l.pos:])
		if !isNamePart(r) {
			break
		}
		l.pos += size
	}
	tok.Type = TokenName
	tok.Value = l.input[start:l.pos]
	return tok, nil
}

func (l *Lexer) skipWhitespace() bool {
	skipped := false
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
		skipped = true
	}
	return skipped
}

// number scans an unsigned decimal with optional fraction and exponent. An
// 'e' not followed by digits ends the number, so "2e" lexes as 2 and e.
func (l *Lexer) number(tok Token) (Token, error) {
	start := l.pos
	digits := l.digits()
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		digits += l.digits()
	}
	if digits == 0 {
		return Token{}, l.errorf(start, "malformed number")
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		i := l.pos + 1
		if i < len(l.input) && (l.input[i] == '+' || l.input[i] == '-') {
			i++
		}
		if i < len(l.input) && isDigit(l.input[i]) {
			l.pos = i
			l.digits()
		}
	}

	tok.Type = TokenNumber
	tok.Value = l.input[start:l.pos]
	if _, err := strconv.ParseFloat(tok.Value, 64); err != nil {
		return Token{}, l.errorf(start, "malformed number %q", tok.Value)
	}
	return tok, nil
}

func (l *Lexer) digits() int {
	n := 0
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
		n++
	}
	return n
}

func (l *Lexer) errorf(pos int, format string, args ...any) error {
	return &units.SyntaxError{Input: l.input, Pos: pos, Reason: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(r rune) bool {
	if unicode.IsLetter(r) {
		return true
	}
	switch r {
	case '_', '°', 'µ', 'Ω', '%', '\'', '"':
		return true
	}
	return false
}

func isNamePart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
