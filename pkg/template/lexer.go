// Package template renders the placeholder forms supported in input SQL:
//
//	{{ ds }}                 execution date partition, YYYY-MM-DD
//	{{ ref('name') }}        named artifact reference
//	{{ var('name') }}        required variable
//	{{ var('name', 'dflt') }} variable with default
//
// Text outside placeholders passes through byte for byte. Any malformed
// placeholder or unresolved required name is a fatal template error; there
// is no partial rendering.
package template

import (
	"strings"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

// TokenType identifies the type of token.
type TokenType int

// TokenType constants for template token types.
const (
	TokenText TokenType = iota // literal SQL text
	TokenExpr                  // placeholder content between {{ and }}
	TokenEOF
)

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Pos   core.Position
}

// Lexer tokenizes a templated SQL string.
type Lexer struct {
	input    string
	pos      int
	line     int
	col      int
	lastLine int
	lastCol  int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize converts the input into a slice of tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}

func (l *Lexer) nextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.position()}, nil
	}

	if l.matchString("{{") {
		return l.scanExpression()
	}

	return l.scanText(), nil
}

// scanText scans literal text until a placeholder or EOF.
func (l *Lexer) scanText() Token {
	l.markStart()
	start := l.pos

	for l.pos < len(l.input) && !l.matchString("{{") {
		l.advance()
	}

	return Token{
		Type:  TokenText,
		Value: l.input[start:l.pos],
		Pos:   l.startPosition(),
	}
}

// scanExpression scans a {{ expr }} placeholder.
func (l *Lexer) scanExpression() (Token, error) {
	l.markStart()

	// Skip {{
	l.pos += 2
	l.col += 2

	exprStart := l.pos
	for l.pos < len(l.input) {
		if l.matchString("}}") {
			expr := strings.TrimSpace(l.input[exprStart:l.pos])
			l.pos += 2
			l.col += 2

			return Token{
				Type:  TokenExpr,
				Value: expr,
				Pos:   l.startPosition(),
			}, nil
		}
		l.advance()
	}

	return Token{}, &core.Error{
		Kind:    core.ErrTemplate,
		Message: "unclosed placeholder: missing '}}'",
		Detail:  l.startPosition().String(),
	}
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}

	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) matchString(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

func (l *Lexer) markStart() {
	l.lastLine = l.line
	l.lastCol = l.col
}

func (l *Lexer) position() core.Position {
	return core.Position{Line: l.line, Column: l.col}
}

func (l *Lexer) startPosition() core.Position {
	return core.Position{Line: l.lastLine, Column: l.lastCol}
}
