// Parser entry points, token helpers, and keyword classification.
//
// The parser is split across multiple files:
//
//   - parser.go (this file): Public API, Parser struct, token helpers
//   - parser_stmt.go: WITH clause, SELECT body, SELECT list, ORDER BY
//   - parser_from.go: FROM clause (table refs, derived tables, JOINs)
//   - parser_expr.go: Expression precedence parsing
//   - parser_primary.go: Primary expressions (literals, refs, functions, CASE)
//   - parser_dml.go: INSERT, UPDATE, DELETE, DROP, TRUNCATE
//
// # Grammar Overview
//
//	statement     → select_stmt | insert_stmt | update_stmt
//	              | delete_stmt | drop_stmt | truncate_stmt
//	select_stmt   → [WITH cte_list] select_body
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL] select_body]
//	select_core   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	                [QUALIFY expr] [ORDER BY order_list] [LIMIT expr [OFFSET expr]]
package sql

import "fmt"

// Parser parses SQL into an AST.
type Parser struct {
	lexer  *Lexer
	token  Token // current token
	peek   Token // lookahead token
	peek2  Token // second lookahead token
	errors []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the SQL and returns the AST.
func Parse(input string) (Statement, error) {
	p := NewParser(input)
	stmt := p.parseStatement()
	if len(p.errors) == 0 {
		p.expectEOF()
	}
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

// parseStatement dispatches on the leading token.
func (p *Parser) parseStatement() Statement {
	switch p.token.Type {
	case TOKEN_WITH, TOKEN_SELECT:
		return p.parseSelectStmt()
	case TOKEN_INSERT:
		return p.parseInsertStmt()
	case TOKEN_UPDATE:
		return p.parseUpdateStmt()
	case TOKEN_DELETE:
		return p.parseDeleteStmt()
	case TOKEN_DROP:
		return p.parseDropStmt()
	case TOKEN_TRUNCATE:
		return p.parseTruncateStmt()
	default:
		p.addError(fmt.Sprintf("unexpected token %s at start of statement", p.token.Type))
		return nil
	}
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.token.Type, t))
	return false
}

// expectEOF reports trailing input after a complete statement.
func (p *Parser) expectEOF() {
	if !p.check(TOKEN_EOF) {
		p.addError(fmt.Sprintf("unexpected trailing token %s", p.token.Type))
	}
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// ---------- Keyword Helpers ----------

// isKeyword returns true if the token is a reserved keyword that can't be used as alias.
func (p *Parser) isKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_FROM, TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING, TOKEN_ORDER,
		TOKEN_LIMIT, TOKEN_OFFSET, TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT,
		TOKEN_LEFT, TOKEN_RIGHT, TOKEN_INNER, TOKEN_OUTER, TOKEN_FULL,
		TOKEN_CROSS, TOKEN_JOIN, TOKEN_ON, TOKEN_QUALIFY:
		return true
	}
	return false
}

// isJoinKeyword returns true if token is a JOIN-related keyword.
func (p *Parser) isJoinKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_JOIN, TOKEN_LEFT, TOKEN_RIGHT, TOKEN_INNER, TOKEN_OUTER,
		TOKEN_FULL, TOKEN_CROSS, TOKEN_ON:
		return true
	}
	return false
}

// isClauseKeyword returns true if token starts a new clause.
func (p *Parser) isClauseKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING, TOKEN_ORDER, TOKEN_LIMIT,
		TOKEN_OFFSET, TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT, TOKEN_QUALIFY,
		TOKEN_SET:
		return true
	}
	return false
}
