package analyze

import (
	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func init() {
	Register(UnboundedSelect)
}

// UnboundedSelect flags a wildcard projection with no row limit. The
// combination returns every column of every row, which is almost never
// what an ad-hoc query intends.
var UnboundedSelect = RuleDef{
	ID:          "QS01",
	Name:        "query.unbounded_select",
	Kind:        core.WarnUnboundedSelect,
	Description: "SELECT * without a LIMIT clause.",
	Check:       checkUnboundedSelect,
}

func checkUnboundedSelect(stmt sql.Statement) []core.Warning {
	var warnings []core.Warning

	for _, sc := range topLevelCores(stmt) {
		if sc.Limit != nil {
			continue
		}
		for _, item := range sc.Columns {
			if !item.Star && item.TableStar == "" {
				continue
			}
			warnings = append(warnings, core.Warning{
				Kind:    core.WarnUnboundedSelect,
				Message: "wildcard projection without LIMIT",
				Pos:     warnPos(item.Pos),
			})
			break
		}
	}

	return warnings
}

func warnPos(pos sql.Position) *core.Position {
	if pos.Line == 0 {
		return nil
	}
	return &core.Position{Line: pos.Line, Column: pos.Column}
}
