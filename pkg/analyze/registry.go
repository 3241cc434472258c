// Package analyze runs structural warning checks over a parsed statement.
//
// Checks operate on the AST, never on the SQL text, so a keyword inside a
// string literal cannot trigger a false positive. Each check is registered
// as a RuleDef; Detect runs every registered rule in ID order.
package analyze

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

// CheckFunc analyzes a statement and returns warnings.
type CheckFunc func(stmt sql.Statement) []core.Warning

// RuleDef describes one structural check.
type RuleDef struct {
	ID          string // unique identifier, e.g. "QS01"
	Name        string // human-readable name, e.g. "query.unbounded_select"
	Kind        core.WarningKind
	Description string
	Check       CheckFunc
}

var globalRegistry = &registry{rules: make(map[string]RuleDef)}

type registry struct {
	mu    sync.RWMutex
	rules map[string]RuleDef
}

// Register adds a rule to the global registry.
// Call this from init() functions.
func Register(rule RuleDef) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.rules[rule.ID] = rule
}

// All returns the registered rules in ID order.
func All() []RuleDef {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	rules := make([]RuleDef, 0, len(globalRegistry.rules))
	for _, rule := range globalRegistry.rules {
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

// Detect runs every registered rule against the statement. Rule order is
// fixed by ID so the warning list is deterministic.
func Detect(stmt sql.Statement) []core.Warning {
	var warnings []core.Warning
	for _, rule := range All() {
		warnings = append(warnings, rule.Check(stmt)...)
	}
	return warnings
}

// topLevelCores returns the SELECT cores of a top-level SELECT statement,
// one per set-operation branch. Subqueries and CTE bodies are excluded:
// the row-volume checks care about what the statement returns, not about
// intermediate results.
func topLevelCores(stmt sql.Statement) []*sql.SelectCore {
	sel, ok := stmt.(*sql.SelectStmt)
	if !ok {
		return nil
	}

	var cores []*sql.SelectCore
	for body := sel.Body; body != nil; body = body.Right {
		if body.Left != nil {
			cores = append(cores, body.Left)
		}
	}
	return cores
}
