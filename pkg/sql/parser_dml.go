package sql

// DML/DDL statement parsing. These statements are parsed only as deeply as
// the rewrite and analysis passes need: the target table, the SET list, the
// WHERE clause, and any embedded SELECT.
//
// Grammar:
//
//	insert_stmt   → INSERT INTO table_name ["(" column_list ")"] (values_clause | select_stmt)
//	values_clause → VALUES "(" expr_list ")" ("," "(" expr_list ")")*
//	update_stmt   → UPDATE table_name SET assignment ("," assignment)* [WHERE expr]
//	delete_stmt   → DELETE FROM table_name [WHERE expr]
//	drop_stmt     → DROP (TABLE|VIEW) [IF EXISTS] table_name
//	truncate_stmt → TRUNCATE [TABLE] table_name

// parseInsertStmt parses an INSERT statement.
func (p *Parser) parseInsertStmt() *InsertStmt {
	stmt := &InsertStmt{Pos: p.token.Pos}
	p.expect(TOKEN_INSERT)
	p.expect(TOKEN_INTO)

	stmt.Table = p.parseTableName()

	// Optional column list
	if p.check(TOKEN_LPAREN) && !p.checkPeek(TOKEN_SELECT) && !p.checkPeek(TOKEN_WITH) {
		p.expect(TOKEN_LPAREN)
		for {
			if !p.check(TOKEN_IDENT) {
				p.addError("expected column name in INSERT column list")
				break
			}
			stmt.Columns = append(stmt.Columns, p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
	}

	switch {
	case p.match(TOKEN_VALUES):
		for {
			p.expect(TOKEN_LPAREN)
			row := p.parseExpressionList()
			p.expect(TOKEN_RPAREN)
			stmt.Values = append(stmt.Values, row)
			if !p.match(TOKEN_COMMA) {
				break
			}
		}

	case p.check(TOKEN_SELECT) || p.check(TOKEN_WITH):
		stmt.Select = p.parseSelectStmt()

	default:
		p.addError("expected VALUES or SELECT in INSERT")
	}

	return stmt
}

// parseUpdateStmt parses an UPDATE statement.
func (p *Parser) parseUpdateStmt() *UpdateStmt {
	stmt := &UpdateStmt{Pos: p.token.Pos}
	p.expect(TOKEN_UPDATE)

	stmt.Table = p.parseTableName()

	p.expect(TOKEN_SET)
	for {
		if !p.check(TOKEN_IDENT) {
			p.addError("expected column name in SET clause")
			break
		}
		assign := Assignment{Column: p.token.Literal}
		p.nextToken()
		p.expect(TOKEN_EQ)
		assign.Value = p.parseExpression()
		stmt.Set = append(stmt.Set, assign)

		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	if p.match(TOKEN_WHERE) {
		stmt.Where = p.parseExpression()
	}

	return stmt
}

// parseDeleteStmt parses a DELETE statement.
func (p *Parser) parseDeleteStmt() *DeleteStmt {
	stmt := &DeleteStmt{Pos: p.token.Pos}
	p.expect(TOKEN_DELETE)
	p.expect(TOKEN_FROM)

	stmt.Table = p.parseTableName()

	if p.match(TOKEN_WHERE) {
		stmt.Where = p.parseExpression()
	}

	return stmt
}

// parseDropStmt parses a DROP TABLE/VIEW statement.
func (p *Parser) parseDropStmt() *DropStmt {
	stmt := &DropStmt{Pos: p.token.Pos}
	p.expect(TOKEN_DROP)

	switch {
	case p.match(TOKEN_TABLE):
	case p.match(TOKEN_VIEW):
		stmt.View = true
	default:
		p.addError("expected TABLE or VIEW after DROP")
	}

	if p.check(TOKEN_IF) {
		p.nextToken()
		p.expect(TOKEN_EXISTS)
		stmt.IfExists = true
	}

	stmt.Table = p.parseTableName()

	return stmt
}

// parseTruncateStmt parses a TRUNCATE statement.
func (p *Parser) parseTruncateStmt() *TruncateStmt {
	stmt := &TruncateStmt{Pos: p.token.Pos}
	p.expect(TOKEN_TRUNCATE)
	p.match(TOKEN_TABLE) // optional

	stmt.Table = p.parseTableName()

	return stmt
}
