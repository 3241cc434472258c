package analyze

import (
	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func init() {
	Register(DangerousStatement)
}

// DangerousStatement flags statements that destroy or mass-modify data:
// DELETE or UPDATE without a WHERE clause, DROP, and TRUNCATE. Detection
// is structural, so "DROP" appearing in a string literal never fires.
var DangerousStatement = RuleDef{
	ID:          "QS03",
	Name:        "query.dangerous_statement",
	Kind:        core.WarnDangerousStatement,
	Description: "Unguarded DELETE/UPDATE, DROP, or TRUNCATE.",
	Check:       checkDangerousStatement,
}

func checkDangerousStatement(stmt sql.Statement) []core.Warning {
	warn := func(pos sql.Position, message string) []core.Warning {
		return []core.Warning{{
			Kind:    core.WarnDangerousStatement,
			Message: message,
			Pos:     warnPos(pos),
		}}
	}

	switch s := stmt.(type) {
	case *sql.DeleteStmt:
		if s.Where == nil {
			return warn(s.Pos, "DELETE without WHERE affects every row in "+s.Table.Name)
		}

	case *sql.UpdateStmt:
		if s.Where == nil {
			return warn(s.Pos, "UPDATE without WHERE affects every row in "+s.Table.Name)
		}

	case *sql.DropStmt:
		kind := "table"
		if s.View {
			kind = "view"
		}
		return warn(s.Pos, "DROP removes "+kind+" "+s.Table.Name)

	case *sql.TruncateStmt:
		return warn(s.Pos, "TRUNCATE removes all rows from "+s.Table.Name)
	}

	return nil
}
