package format

import (
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func (p *Printer) formatSelectStmt(stmt *sql.SelectStmt) {
	if stmt == nil {
		return
	}

	if stmt.With != nil {
		p.formatWithClause(stmt.With)
	}

	if stmt.Body != nil {
		p.formatSelectBody(stmt.Body)
	}
}

func (p *Printer) formatWithClause(with *sql.WithClause) {
	p.kw("WITH")
	if with.Recursive {
		p.space()
		p.kw("RECURSIVE")
	}
	p.writeln()

	p.indent()
	p.formatList(len(with.CTEs), func(i int) {
		cte := with.CTEs[i]
		p.ident(cte.Name)
		p.space()
		p.kw("AS")
		p.write(" (")
		p.writeln()

		p.indent()
		p.formatSelectStmt(cte.Select)
		p.dedent()

		p.write(")")
	}, ",", true)
	p.writeln()
	p.dedent()
}

func (p *Printer) formatSelectBody(body *sql.SelectBody) {
	if body == nil {
		return
	}

	p.formatSelectCore(body.Left)

	if body.Op != sql.SetOpNone {
		switch body.Op {
		case sql.SetOpUnion:
			p.kw("UNION")
		case sql.SetOpUnionAll:
			p.kw("UNION", "ALL")
		case sql.SetOpIntersect:
			p.kw("INTERSECT")
		case sql.SetOpExcept:
			p.kw("EXCEPT")
		}

		p.writeln()
		p.formatSelectBody(body.Right)
	}
}

func (p *Printer) formatSelectCore(sc *sql.SelectCore) {
	if sc == nil {
		return
	}

	// SELECT [DISTINCT]
	p.kw("SELECT")
	if sc.Distinct {
		p.space()
		p.kw("DISTINCT")
	}
	p.writeln()

	// Columns
	p.indent()
	p.formatList(len(sc.Columns), func(i int) { p.formatSelectItem(sc.Columns[i]) }, ",", true)
	p.writeln()
	p.dedent()

	// FROM
	if sc.From != nil {
		p.kw("FROM")
		p.space()
		p.formatFromClause(sc.From)
		p.writeln()
	}

	// WHERE
	if sc.Where != nil {
		p.kw("WHERE")
		p.space()
		p.formatExpr(sc.Where)
		p.writeln()
	}

	// GROUP BY
	if len(sc.GroupBy) > 0 {
		p.kw("GROUP", "BY")
		p.space()
		p.formatList(len(sc.GroupBy), func(i int) { p.formatExpr(sc.GroupBy[i]) }, ", ", false)
		p.writeln()
	}

	// HAVING
	if sc.Having != nil {
		p.kw("HAVING")
		p.space()
		p.formatExpr(sc.Having)
		p.writeln()
	}

	// QUALIFY
	if sc.Qualify != nil {
		p.kw("QUALIFY")
		p.space()
		p.formatExpr(sc.Qualify)
		p.writeln()
	}

	// ORDER BY
	if len(sc.OrderBy) > 0 {
		p.kw("ORDER", "BY")
		p.space()
		p.formatList(len(sc.OrderBy), func(i int) { p.formatOrderByItem(sc.OrderBy[i]) }, ", ", false)
		p.writeln()
	}

	// LIMIT / OFFSET
	if sc.Limit != nil {
		p.kw("LIMIT")
		p.space()
		p.formatExpr(sc.Limit)
		if sc.Offset != nil {
			p.space()
			p.kw("OFFSET")
			p.space()
			p.formatExpr(sc.Offset)
		}
		p.writeln()
	}
}

func (p *Printer) formatSelectItem(item sql.SelectItem) {
	switch {
	case item.Star:
		p.write("*")
	case item.TableStar != "":
		p.ident(item.TableStar)
		p.write(".*")
	default:
		p.formatExpr(item.Expr)
	}

	if item.Alias != "" {
		p.space()
		p.kw("AS")
		p.space()
		p.ident(item.Alias)
	}
}

func (p *Printer) formatFromClause(from *sql.FromClause) {
	p.formatTableRef(from.Source)

	for _, join := range from.Joins {
		p.formatJoin(join)
	}
}

func (p *Printer) formatTableRef(ref sql.TableRef) {
	switch t := ref.(type) {
	case *sql.TableName:
		p.write(p.dialect.QuoteQualified(t.Parts()...))
		if t.Alias != "" {
			p.space()
			p.kw("AS")
			p.space()
			p.ident(t.Alias)
		}

	case *sql.DerivedTable:
		p.write("(")
		p.writeln()
		p.indent()
		p.formatSelectStmt(t.Select)
		p.dedent()
		p.write(")")
		if t.Alias != "" {
			p.space()
			p.kw("AS")
			p.space()
			p.ident(t.Alias)
		}
	}
}

func (p *Printer) formatJoin(join *sql.Join) {
	if join.Type == sql.JoinComma {
		p.write(",")
		p.space()
		p.formatTableRef(join.Right)
		return
	}

	p.writeln()
	p.indent()
	switch join.Type {
	case sql.JoinInner:
		p.kw("INNER", "JOIN")
	case sql.JoinLeft:
		p.kw("LEFT", "JOIN")
	case sql.JoinRight:
		p.kw("RIGHT", "JOIN")
	case sql.JoinFull:
		p.kw("FULL", "JOIN")
	case sql.JoinCross:
		p.kw("CROSS", "JOIN")
	}
	p.space()
	p.formatTableRef(join.Right)

	if join.Condition != nil {
		p.space()
		p.kw("ON")
		p.space()
		p.formatExpr(join.Condition)
	}
	p.dedent()
}

func (p *Printer) formatOrderByItem(item sql.OrderByItem) {
	p.formatExpr(item.Expr)
	if item.Desc {
		p.space()
		p.kw("DESC")
	}
	if item.NullsFirst != nil {
		p.space()
		if *item.NullsFirst {
			p.kw("NULLS", "FIRST")
		} else {
			p.kw("NULLS", "LAST")
		}
	}
}

// ---------- DML / DDL ----------

func (p *Printer) formatInsertStmt(stmt *sql.InsertStmt) {
	p.kw("INSERT", "INTO")
	p.space()
	p.write(p.dialect.QuoteQualified(stmt.Table.Parts()...))

	if len(stmt.Columns) > 0 {
		p.write(" (")
		p.formatList(len(stmt.Columns), func(i int) { p.ident(stmt.Columns[i]) }, ", ", false)
		p.write(")")
	}
	p.writeln()

	switch {
	case len(stmt.Values) > 0:
		p.kw("VALUES")
		p.space()
		p.formatList(len(stmt.Values), func(i int) {
			p.write("(")
			row := stmt.Values[i]
			p.formatList(len(row), func(j int) { p.formatExpr(row[j]) }, ", ", false)
			p.write(")")
		}, ",", true)
		p.writeln()

	case stmt.Select != nil:
		p.formatSelectStmt(stmt.Select)
	}
}

func (p *Printer) formatUpdateStmt(stmt *sql.UpdateStmt) {
	p.kw("UPDATE")
	p.space()
	p.write(p.dialect.QuoteQualified(stmt.Table.Parts()...))
	if stmt.Table.Alias != "" {
		p.space()
		p.kw("AS")
		p.space()
		p.ident(stmt.Table.Alias)
	}
	p.writeln()

	p.kw("SET")
	p.space()
	p.formatList(len(stmt.Set), func(i int) {
		p.ident(stmt.Set[i].Column)
		p.write(" = ")
		p.formatExpr(stmt.Set[i].Value)
	}, ", ", false)
	p.writeln()

	if stmt.Where != nil {
		p.kw("WHERE")
		p.space()
		p.formatExpr(stmt.Where)
		p.writeln()
	}
}

func (p *Printer) formatDeleteStmt(stmt *sql.DeleteStmt) {
	p.kw("DELETE", "FROM")
	p.space()
	p.write(p.dialect.QuoteQualified(stmt.Table.Parts()...))
	if stmt.Table.Alias != "" {
		p.space()
		p.kw("AS")
		p.space()
		p.ident(stmt.Table.Alias)
	}
	p.writeln()

	if stmt.Where != nil {
		p.kw("WHERE")
		p.space()
		p.formatExpr(stmt.Where)
		p.writeln()
	}
}

func (p *Printer) formatDropStmt(stmt *sql.DropStmt) {
	if stmt.View {
		p.kw("DROP", "VIEW")
	} else {
		p.kw("DROP", "TABLE")
	}
	if stmt.IfExists {
		p.space()
		p.kw("IF", "EXISTS")
	}
	p.space()
	p.write(p.dialect.QuoteQualified(stmt.Table.Parts()...))
	p.writeln()
}

func (p *Printer) formatTruncateStmt(stmt *sql.TruncateStmt) {
	p.kw("TRUNCATE", "TABLE")
	p.space()
	p.write(p.dialect.QuoteQualified(stmt.Table.Parts()...))
	p.writeln()
}
