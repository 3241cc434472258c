package core

import "fmt"

// WarningKind classifies a non-fatal advisory.
type WarningKind string

// WarningKind constants for the closed advisory set.
const (
	// WarnUnboundedSelect flags a wildcard projection with no row limit.
	WarnUnboundedSelect WarningKind = "unbounded_select"

	// WarnMissingRowLimit flags a top-level SELECT without a LIMIT clause.
	WarnMissingRowLimit WarningKind = "missing_row_limit"

	// WarnDangerousStatement flags statement types considered unsafe in an
	// ad-hoc execution context (unguarded DELETE/UPDATE, DROP, TRUNCATE).
	WarnDangerousStatement WarningKind = "dangerous_statement"

	// WarnMacroExpansion records a failed or skipped macro expansion when
	// running in graceful mode.
	WarnMacroExpansion WarningKind = "macro_expansion_issue"

	// WarnRuleFetchDegraded records that the rule provider stayed
	// unreachable through every retry and the pipeline continued without
	// substitution (graceful mode only).
	WarnRuleFetchDegraded WarningKind = "rule_fetch_degraded"
)

// Position is a location in the source SQL.
type Position struct {
	Line   int // 1-based
	Column int // 1-based
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Warning is a non-fatal advisory attached to a transpile result.
// Warnings never block successful outcomes in graceful mode; in strict
// mode a warning of a configured blocking kind is promoted to a failure.
type Warning struct {
	Kind    WarningKind
	Message string
	Pos     *Position // nil when no source location applies
}

func (w Warning) String() string {
	if w.Pos != nil {
		return fmt.Sprintf("%s at %s: %s", w.Kind, w.Pos, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
