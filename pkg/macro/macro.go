// Package macro expands the METRIC(name) macro in SQL text.
//
// Expansion is textual and happens before parsing: the stored metric
// expression is spliced in place of the macro call. Detection is a regexp
// scan over the raw text, so an occurrence inside a string literal or a
// comment is counted like any other; that limitation is accepted because
// macro calls inside literals have no meaningful semantics anyway.
package macro

import (
	"context"
	"fmt"
	"regexp"

	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
)

// MetricLookup resolves a metric name to its definition.
// rules.Provider satisfies it.
type MetricLookup interface {
	FetchMetric(ctx context.Context, name string) (*rules.MetricDefinition, error)
}

// metricPattern matches METRIC(name) with a bare identifier argument.
// The keyword is case-insensitive; the argument is captured as written.
var metricPattern = regexp.MustCompile(`(?i)\bMETRIC\s*\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)`)

// Result is the outcome of an expansion pass.
type Result struct {
	SQL      string // input with the macro expanded, or the input unchanged
	Expanded bool   // whether a macro was found and replaced
	Metric   string // name of the expanded metric, if any
}

// Expand replaces a single METRIC(name) occurrence with the metric's
// stored expression.
//
// Zero occurrences return the input unchanged. More than one occurrence is
// a macro-limit error: expanding some calls but not others would silently
// change query semantics, so multi-macro inputs are rejected whole.
func Expand(ctx context.Context, sql string, lookup MetricLookup) (Result, error) {
	matches := metricPattern.FindAllStringSubmatchIndex(sql, -1)

	switch len(matches) {
	case 0:
		return Result{SQL: sql}, nil

	case 1:
		// fall through

	default:
		return Result{}, &core.Error{
			Kind:    core.ErrMacroLimit,
			Message: fmt.Sprintf("found %d METRIC() occurrences, limit is 1", len(matches)),
		}
	}

	m := matches[0]
	name := sql[m[2]:m[3]]

	metric, err := lookup.FetchMetric(ctx, name)
	if err != nil {
		return Result{}, err
	}

	expanded := sql[:m[0]] + metric.Expression + sql[m[1]:]
	return Result{SQL: expanded, Expanded: true, Metric: name}, nil
}
