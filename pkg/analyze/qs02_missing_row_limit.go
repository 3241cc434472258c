package analyze

import (
	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func init() {
	Register(MissingRowLimit)
}

// MissingRowLimit flags any top-level SELECT without a LIMIT clause.
// Broader than QS01: even a narrow projection can return an unbounded
// number of rows.
var MissingRowLimit = RuleDef{
	ID:          "QS02",
	Name:        "query.missing_row_limit",
	Kind:        core.WarnMissingRowLimit,
	Description: "Top-level SELECT without a LIMIT clause.",
	Check:       checkMissingRowLimit,
}

func checkMissingRowLimit(stmt sql.Statement) []core.Warning {
	var warnings []core.Warning

	for _, sc := range topLevelCores(stmt) {
		if sc.Limit != nil {
			continue
		}
		warnings = append(warnings, core.Warning{
			Kind:    core.WarnMissingRowLimit,
			Message: "SELECT without LIMIT may return an unbounded number of rows",
			Pos:     warnPos(sc.Pos),
		})
	}

	return warnings
}
