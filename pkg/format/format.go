package format

import (
	"github.com/leapstack-labs/sqlforge/pkg/dialect"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

// Format formats a parsed SQL statement according to the dialect.
func Format(stmt sql.Statement, d *dialect.Dialect) string {
	p := newPrinter(d)
	p.formatStatement(stmt)
	return p.String()
}

func (p *Printer) formatStatement(stmt sql.Statement) {
	switch s := stmt.(type) {
	case *sql.SelectStmt:
		p.formatSelectStmt(s)
	case *sql.InsertStmt:
		p.formatInsertStmt(s)
	case *sql.UpdateStmt:
		p.formatUpdateStmt(s)
	case *sql.DeleteStmt:
		p.formatDeleteStmt(s)
	case *sql.DropStmt:
		p.formatDropStmt(s)
	case *sql.TruncateStmt:
		p.formatTruncateStmt(s)
	}
}
