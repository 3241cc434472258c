package format

import (
	"strings"

	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func (p *Printer) formatExpr(expr sql.Expr) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *sql.ColumnRef:
		if e.Table != "" {
			p.ident(e.Table)
			p.write(".")
		}
		p.ident(e.Column)

	case *sql.Literal:
		p.formatLiteral(e)

	case *sql.BinaryExpr:
		p.formatExpr(e.Left)
		p.space()
		p.write(e.Op)
		p.space()
		p.formatExpr(e.Right)

	case *sql.UnaryExpr:
		if e.Op == "NOT" {
			p.kw("NOT")
			p.space()
		} else {
			p.write(e.Op)
		}
		p.formatExpr(e.Expr)

	case *sql.FuncCall:
		p.formatFuncCall(e)

	case *sql.CaseExpr:
		p.formatCaseExpr(e)

	case *sql.CastExpr:
		p.kw("CAST")
		p.write("(")
		p.formatExpr(e.Expr)
		p.space()
		p.kw("AS")
		p.space()
		p.write(e.TypeName)
		p.write(")")

	case *sql.InExpr:
		p.formatInExpr(e)

	case *sql.BetweenExpr:
		p.formatExpr(e.Expr)
		p.space()
		if e.Not {
			p.kw("NOT")
			p.space()
		}
		p.kw("BETWEEN")
		p.space()
		p.formatExpr(e.Low)
		p.space()
		p.kw("AND")
		p.space()
		p.formatExpr(e.High)

	case *sql.IsNullExpr:
		p.formatExpr(e.Expr)
		p.space()
		if e.Not {
			p.kw("IS", "NOT", "NULL")
		} else {
			p.kw("IS", "NULL")
		}

	case *sql.LikeExpr:
		p.formatExpr(e.Expr)
		p.space()
		if e.Not {
			p.kw("NOT")
			p.space()
		}
		if e.ILike {
			p.kw("ILIKE")
		} else {
			p.kw("LIKE")
		}
		p.space()
		p.formatExpr(e.Pattern)

	case *sql.ParenExpr:
		p.write("(")
		p.formatExpr(e.Expr)
		p.write(")")

	case *sql.SubqueryExpr:
		p.write("(")
		p.writeln()
		p.indent()
		p.formatSelectStmt(e.Select)
		p.dedent()
		p.write(")")

	case *sql.ExistsExpr:
		if e.Not {
			p.kw("NOT")
			p.space()
		}
		p.kw("EXISTS")
		p.write(" (")
		p.writeln()
		p.indent()
		p.formatSelectStmt(e.Select)
		p.dedent()
		p.write(")")
	}
}

func (p *Printer) formatLiteral(lit *sql.Literal) {
	if lit.Type == sql.LiteralString {
		// Re-escape embedded single quotes for round-trip stability.
		p.write("'" + strings.ReplaceAll(lit.Value, "'", "''") + "'")
		return
	}
	p.write(lit.Value)
}

func (p *Printer) formatFuncCall(fn *sql.FuncCall) {
	p.write(fn.Name)
	p.write("(")

	switch {
	case fn.Star:
		p.write("*")
	default:
		if fn.Distinct {
			p.kw("DISTINCT")
			p.space()
		}
		p.formatList(len(fn.Args), func(i int) { p.formatExpr(fn.Args[i]) }, ", ", false)
	}

	p.write(")")

	if fn.Window != nil {
		p.space()
		p.kw("OVER")
		p.space()
		p.formatWindowSpec(fn.Window)
	}
}

func (p *Printer) formatWindowSpec(spec *sql.WindowSpec) {
	p.write("(")

	needSpace := false
	if len(spec.PartitionBy) > 0 {
		p.kw("PARTITION", "BY")
		p.space()
		p.formatList(len(spec.PartitionBy), func(i int) { p.formatExpr(spec.PartitionBy[i]) }, ", ", false)
		needSpace = true
	}

	if len(spec.OrderBy) > 0 {
		if needSpace {
			p.space()
		}
		p.kw("ORDER", "BY")
		p.space()
		p.formatList(len(spec.OrderBy), func(i int) { p.formatOrderByItem(spec.OrderBy[i]) }, ", ", false)
		needSpace = true
	}

	if spec.Frame != nil {
		if needSpace {
			p.space()
		}
		p.formatFrameSpec(spec.Frame)
	}

	p.write(")")
}

func (p *Printer) formatFrameSpec(frame *sql.FrameSpec) {
	p.kw(string(frame.Type))

	p.space()
	if frame.End != nil {
		p.kw("BETWEEN")
		p.space()
		p.formatFrameBound(frame.Start)
		p.space()
		p.kw("AND")
		p.space()
		p.formatFrameBound(frame.End)
	} else {
		p.formatFrameBound(frame.Start)
	}
}

func (p *Printer) formatFrameBound(bound *sql.FrameBound) {
	switch bound.Type {
	case sql.FrameUnboundedPreceding:
		p.kw("UNBOUNDED", "PRECEDING")
	case sql.FrameUnboundedFollowing:
		p.kw("UNBOUNDED", "FOLLOWING")
	case sql.FrameCurrentRow:
		p.kw("CURRENT", "ROW")
	case sql.FrameExprPreceding:
		p.formatExpr(bound.Offset)
		p.space()
		p.kw("PRECEDING")
	case sql.FrameExprFollowing:
		p.formatExpr(bound.Offset)
		p.space()
		p.kw("FOLLOWING")
	}
}

func (p *Printer) formatCaseExpr(c *sql.CaseExpr) {
	p.kw("CASE")
	if c.Operand != nil {
		p.space()
		p.formatExpr(c.Operand)
	}

	for _, when := range c.Whens {
		p.space()
		p.kw("WHEN")
		p.space()
		p.formatExpr(when.Condition)
		p.space()
		p.kw("THEN")
		p.space()
		p.formatExpr(when.Result)
	}

	if c.Else != nil {
		p.space()
		p.kw("ELSE")
		p.space()
		p.formatExpr(c.Else)
	}

	p.space()
	p.kw("END")
}

func (p *Printer) formatInExpr(in *sql.InExpr) {
	p.formatExpr(in.Expr)
	p.space()
	if in.Not {
		p.kw("NOT")
		p.space()
	}
	p.kw("IN")
	p.space()

	if in.Query != nil {
		p.write("(")
		p.writeln()
		p.indent()
		p.formatSelectStmt(in.Query)
		p.dedent()
		p.write(")")
		return
	}

	p.write("(")
	p.formatList(len(in.Values), func(i int) { p.formatExpr(in.Values[i]) }, ", ", false)
	p.write(")")
}
