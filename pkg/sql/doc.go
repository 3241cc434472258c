// Package sql provides the SQL parsing toolkit for the transpilation
// engine: a lexer, a recursive descent parser, and the AST the rewrite
// and analysis passes operate on.
//
// The parser covers the query shapes the engine rewrites: SELECT with
// CTEs, set operations, joins, subqueries and window functions, plus the
// DML/DDL statements (INSERT, UPDATE, DELETE, DROP, TRUNCATE) that the
// warning detector must recognize structurally.
//
// # Usage
//
//	stmt, err := sql.Parse("SELECT a, b FROM t")
//	if err != nil {
//	    // *sql.ParseError with position and diagnostic
//	}
package sql
