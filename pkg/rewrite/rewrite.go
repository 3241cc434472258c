// Package rewrite applies table substitution rules to a parsed statement.
//
// Substitution is structural: only real table references are rewritten,
// never string literals, column references, aliases or CTE names. Each
// reference is chased through the rule set until no rule matches, so a
// chain like a→b, b→c lands on c in a single pass and re-running the pass
// over its own output changes nothing.
package rewrite

import (
	"sort"

	"github.com/leapstack-labs/sqlforge/pkg/rules"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

// Substitute rewrites table references in stmt according to the rules and
// returns the rules that matched at least one reference, in the order they
// were first applied.
//
// Rules are ranked by priority descending; rules with equal priority keep
// their provider order. Disabled rules are skipped. Aliases and join
// conditions are never touched.
func Substitute(stmt sql.Statement, ruleSet []rules.SubstitutionRule) []rules.SubstitutionRule {
	ranked := rankRules(ruleSet)
	if len(ranked) == 0 {
		return nil
	}

	w := &walker{ranked: ranked, appliedAt: make(map[int]int)}
	w.walkStatement(stmt, nil)

	// Report applied rules in first-application order.
	indexes := make([]int, 0, len(w.appliedAt))
	for idx := range w.appliedAt {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool {
		return w.appliedAt[indexes[i]] < w.appliedAt[indexes[j]]
	})

	applied := make([]rules.SubstitutionRule, len(indexes))
	for i, idx := range indexes {
		applied[i] = ranked[idx]
	}
	return applied
}

// rankRules filters out disabled rules and sorts by priority descending,
// preserving provider order among equal priorities.
func rankRules(ruleSet []rules.SubstitutionRule) []rules.SubstitutionRule {
	ranked := make([]rules.SubstitutionRule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if r.Enabled {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})
	return ranked
}

type walker struct {
	ranked    []rules.SubstitutionRule
	appliedAt map[int]int // ranked index → application sequence
	seq       int
}

// rewriteTable rewrites one table reference, chasing chained rules to a
// fixpoint: after a rule fires, the rewritten reference is re-evaluated
// against the remaining rules until none matches. Each rule fires at most
// once per reference, which bounds the chase and breaks rule cycles.
// cteNames holds CTE names in scope; a bare reference to one of them is a
// CTE read, not a physical table.
func (w *walker) rewriteTable(t *sql.TableName, cteNames map[string]bool) {
	if t == nil {
		return
	}
	if t.Catalog == "" && t.Schema == "" && cteNames[t.Name] {
		return
	}

	fired := make(map[int]bool)
	for {
		applied := false
		for i, r := range w.ranked {
			if fired[i] || !matches(r.Source, t) {
				continue
			}
			fired[i] = true

			t.Name = r.Target.Name
			t.Schema = r.Target.Schema
			t.Catalog = r.Target.Catalog

			if _, seen := w.appliedAt[i]; !seen {
				w.appliedAt[i] = w.seq
				w.seq++
			}
			applied = true
			break
		}
		if !applied {
			return
		}
	}
}

// matches reports whether the reference matches the rule source.
// Qualifiers are compared only as far as the rule was authored: a rule
// written against "events" matches any schema's events table, while a rule
// written against "raw.events" requires the schema to agree.
func matches(source rules.TableID, t *sql.TableName) bool {
	if source.Name != t.Name {
		return false
	}
	if source.Schema != "" && source.Schema != t.Schema {
		return false
	}
	if source.Catalog != "" && source.Catalog != t.Catalog {
		return false
	}
	return true
}

// ---------- traversal ----------

func (w *walker) walkStatement(stmt sql.Statement, cteNames map[string]bool) {
	switch s := stmt.(type) {
	case *sql.SelectStmt:
		w.walkSelect(s, cteNames)

	case *sql.InsertStmt:
		w.rewriteTable(s.Table, cteNames)
		for _, row := range s.Values {
			for _, expr := range row {
				w.walkExpr(expr, cteNames)
			}
		}
		if s.Select != nil {
			w.walkSelect(s.Select, cteNames)
		}

	case *sql.UpdateStmt:
		w.rewriteTable(s.Table, cteNames)
		for _, assign := range s.Set {
			w.walkExpr(assign.Value, cteNames)
		}
		w.walkExpr(s.Where, cteNames)

	case *sql.DeleteStmt:
		w.rewriteTable(s.Table, cteNames)
		w.walkExpr(s.Where, cteNames)

	case *sql.DropStmt:
		w.rewriteTable(s.Table, cteNames)

	case *sql.TruncateStmt:
		w.rewriteTable(s.Table, cteNames)
	}
}

func (w *walker) walkSelect(stmt *sql.SelectStmt, outer map[string]bool) {
	if stmt == nil {
		return
	}

	scope := outer
	if stmt.With != nil {
		// CTE names shadow physical tables for the rest of the statement.
		scope = make(map[string]bool, len(outer)+len(stmt.With.CTEs))
		for name := range outer {
			scope[name] = true
		}
		for _, cte := range stmt.With.CTEs {
			w.walkSelect(cte.Select, scope)
			scope[cte.Name] = true
		}
	}

	w.walkSelectBody(stmt.Body, scope)
}

func (w *walker) walkSelectBody(body *sql.SelectBody, scope map[string]bool) {
	if body == nil {
		return
	}
	w.walkSelectCore(body.Left, scope)
	w.walkSelectBody(body.Right, scope)
}

func (w *walker) walkSelectCore(sc *sql.SelectCore, scope map[string]bool) {
	if sc == nil {
		return
	}

	for _, item := range sc.Columns {
		w.walkExpr(item.Expr, scope)
	}

	if sc.From != nil {
		w.walkTableRef(sc.From.Source, scope)
		for _, join := range sc.From.Joins {
			w.walkTableRef(join.Right, scope)
			w.walkExpr(join.Condition, scope)
		}
	}

	w.walkExpr(sc.Where, scope)
	for _, expr := range sc.GroupBy {
		w.walkExpr(expr, scope)
	}
	w.walkExpr(sc.Having, scope)
	w.walkExpr(sc.Qualify, scope)
	for _, item := range sc.OrderBy {
		w.walkExpr(item.Expr, scope)
	}
	w.walkExpr(sc.Limit, scope)
	w.walkExpr(sc.Offset, scope)
}

func (w *walker) walkTableRef(ref sql.TableRef, scope map[string]bool) {
	switch t := ref.(type) {
	case *sql.TableName:
		w.rewriteTable(t, scope)
	case *sql.DerivedTable:
		w.walkSelect(t.Select, scope)
	}
}

func (w *walker) walkExpr(expr sql.Expr, scope map[string]bool) {
	switch e := expr.(type) {
	case *sql.BinaryExpr:
		w.walkExpr(e.Left, scope)
		w.walkExpr(e.Right, scope)

	case *sql.UnaryExpr:
		w.walkExpr(e.Expr, scope)

	case *sql.FuncCall:
		for _, arg := range e.Args {
			w.walkExpr(arg, scope)
		}
		if e.Window != nil {
			for _, part := range e.Window.PartitionBy {
				w.walkExpr(part, scope)
			}
			for _, item := range e.Window.OrderBy {
				w.walkExpr(item.Expr, scope)
			}
		}

	case *sql.CaseExpr:
		w.walkExpr(e.Operand, scope)
		for _, when := range e.Whens {
			w.walkExpr(when.Condition, scope)
			w.walkExpr(when.Result, scope)
		}
		w.walkExpr(e.Else, scope)

	case *sql.CastExpr:
		w.walkExpr(e.Expr, scope)

	case *sql.InExpr:
		w.walkExpr(e.Expr, scope)
		for _, v := range e.Values {
			w.walkExpr(v, scope)
		}
		if e.Query != nil {
			w.walkSelect(e.Query, scope)
		}

	case *sql.BetweenExpr:
		w.walkExpr(e.Expr, scope)
		w.walkExpr(e.Low, scope)
		w.walkExpr(e.High, scope)

	case *sql.IsNullExpr:
		w.walkExpr(e.Expr, scope)

	case *sql.LikeExpr:
		w.walkExpr(e.Expr, scope)
		w.walkExpr(e.Pattern, scope)

	case *sql.ParenExpr:
		w.walkExpr(e.Expr, scope)

	case *sql.SubqueryExpr:
		w.walkSelect(e.Select, scope)

	case *sql.ExistsExpr:
		w.walkSelect(e.Select, scope)
	}
}
