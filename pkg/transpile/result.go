package transpile

import (
	"time"

	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
)

// Result is the outcome of one transpile invocation. It is a plain value:
// every failure path is represented here, never as a returned Go error.
type Result struct {
	// OriginalSQL is the input exactly as submitted.
	OriginalSQL string

	// FinalSQL is the dialect-correct output. Empty when Success is false.
	FinalSQL string

	// Success is true only if no stage forced a failure.
	Success bool

	// AppliedRules lists the substitution rules that rewrote at least one
	// table reference, in application order.
	AppliedRules []rules.SubstitutionRule

	// Warnings accumulated across all stages.
	Warnings []core.Warning

	// Err carries the failure when Success is false, nil otherwise.
	Err *core.Error

	// RuleVersion is the version tag of the rule snapshot used, empty if
	// no snapshot was available.
	RuleVersion string

	// Elapsed is the wall-clock duration of the invocation.
	Elapsed time.Duration
}

// failed builds a terminal failure result.
func failed(original string, warnings []core.Warning, version string, err *core.Error, start time.Time) Result {
	return Result{
		OriginalSQL: original,
		Success:     false,
		Warnings:    warnings,
		Err:         err,
		RuleVersion: version,
		Elapsed:     time.Since(start),
	}
}
