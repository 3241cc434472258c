// Package transpile sequences the transpilation pipeline:
//
//	raw SQL → rendered SQL → macro-expanded SQL → AST → substituted AST
//	        → re-rendered SQL + warnings → result
//
// Stages run strictly in sequence and never call back into an earlier
// stage. The only external I/O is the rule provider, whose fetch calls are
// the only retried operations: rendering and parsing are deterministic
// functions of their input, so retrying them cannot change the outcome.
package transpile

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/leapstack-labs/sqlforge/pkg/analyze"
	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/format"
	"github.com/leapstack-labs/sqlforge/pkg/macro"
	"github.com/leapstack-labs/sqlforge/pkg/rewrite"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
	"github.com/leapstack-labs/sqlforge/pkg/template"
)

// stage names the pipeline states, in execution order.
type stage string

const (
	stageRendering    stage = "rendering"
	stageExpanding    stage = "expanding"
	stageSubstituting stage = "substituting"
	stageWarningScan  stage = "warning_scan"
)

const retryBackoff = 50 * time.Millisecond

// Transpiler runs the pipeline against one rule provider. It holds no
// per-invocation state; concurrent Transpile calls are independent.
type Transpiler struct {
	provider rules.Provider
	logger   *slog.Logger
}

// TranspilerOption configures a Transpiler.
type TranspilerOption func(*Transpiler)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) TranspilerOption {
	return func(t *Transpiler) { t.logger = logger }
}

// New builds a Transpiler over the given provider.
func New(provider rules.Provider, opts ...TranspilerOption) *Transpiler {
	t := &Transpiler{
		provider: provider,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transpile runs the full pipeline. It never returns a Go error: every
// failure path is represented in the Result.
func (t *Transpiler) Transpile(ctx context.Context, input string, cfg Config, tctx template.Context) Result {
	start := time.Now()
	var warnings []core.Warning

	// Rendering. Template errors are always fatal: downstream stages
	// cannot operate on an unrendered template.
	current := input
	if cfg.RenderTemplates() {
		t.logger.Debug("stage", "state", stageRendering)
		rendered, err := template.Render(input, tctx)
		if err != nil {
			return failed(input, warnings, "", core.AsError(err, core.ErrTemplate), start)
		}
		current = rendered
	}

	// The rule snapshot is fetched once and shared by the expansion and
	// substitution stages. Exhausted retries fail the pipeline in strict
	// mode; graceful mode records a warning and continues without rules.
	snapshot, fetchErr := t.fetchSnapshot(ctx, cfg)
	version := ""
	if snapshot != nil {
		version = snapshot.Version
	}
	if fetchErr != nil {
		if cfg.Strict() {
			return failed(input, warnings, "", core.AsError(fetchErr, core.ErrRuleFetch), start)
		}
		warnings = append(warnings, core.Warning{
			Kind:    core.WarnRuleFetchDegraded,
			Message: "rule provider unavailable, continuing without substitution: " + fetchErr.Error(),
		})
	}

	// Expanding.
	t.logger.Debug("stage", "state", stageExpanding)
	expansion, err := macro.Expand(ctx, current, t.metricLookup(cfg))
	switch {
	case err == nil:
		current = expansion.SQL

	case core.KindOf(err) == core.ErrMacroLimit:
		// Always fatal: partial expansion would silently change query
		// semantics.
		return failed(input, warnings, version, core.AsError(err, core.ErrMacroLimit), start)

	case cfg.Strict():
		return failed(input, warnings, version, core.AsError(err, core.ErrMetricNotFound), start)

	default:
		// Graceful: leave the macro unexpanded and record what happened.
		warnings = append(warnings, core.Warning{
			Kind:    core.WarnMacroExpansion,
			Message: "macro expansion skipped: " + err.Error(),
		})
	}

	// Substituting. Parse failures are fatal regardless of mode; the
	// parser diagnostic is surfaced verbatim.
	t.logger.Debug("stage", "state", stageSubstituting)
	stmt, err := sql.Parse(current)
	if err != nil {
		return failed(input, warnings, version, core.Wrap(core.ErrParse, err, err.Error()), start)
	}

	var applied []rules.SubstitutionRule
	if snapshot != nil {
		applied = rewrite.Substitute(stmt, snapshot.Rules)
	}

	finalSQL := format.Format(stmt, cfg.Dialect())

	// WarningScan never fails on its own, but strict mode promotes
	// blocking kinds to a failure after the scan completes.
	t.logger.Debug("stage", "state", stageWarningScan)
	warnings = append(warnings, analyze.Detect(stmt)...)

	for _, w := range warnings {
		if cfg.blocks(w.Kind) {
			err := core.Errorf(core.ErrBlockedWarning, "blocking warning in strict mode: %s", w)
			return failed(input, warnings, version, err, start)
		}
	}

	t.logger.Debug("transpile done",
		"applied_rules", len(applied),
		"warnings", len(warnings),
		"rule_version", version)

	return Result{
		OriginalSQL:  input,
		FinalSQL:     finalSQL,
		Success:      true,
		AppliedRules: applied,
		Warnings:     warnings,
		RuleVersion:  version,
		Elapsed:      time.Since(start),
	}
}

// fetchSnapshot fetches the rule snapshot with the configured bounded
// retry: n retries means exactly n+1 attempts.
func (t *Transpiler) fetchSnapshot(ctx context.Context, cfg Config) (*rules.Snapshot, error) {
	var snap *rules.Snapshot
	b := retry.WithMaxRetries(uint64(cfg.Retries()), retry.NewConstant(retryBackoff))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		s, err := t.provider.FetchRules(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		snap = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// metricLookup wraps the provider's metric fetch with the same retry
// policy. Unknown-metric results are definitive and never retried.
func (t *Transpiler) metricLookup(cfg Config) macro.MetricLookup {
	return &retryingLookup{provider: t.provider, retries: cfg.Retries()}
}

type retryingLookup struct {
	provider rules.Provider
	retries  int
}

func (l *retryingLookup) FetchMetric(ctx context.Context, name string) (*rules.MetricDefinition, error) {
	var metric *rules.MetricDefinition
	b := retry.WithMaxRetries(uint64(l.retries), retry.NewConstant(retryBackoff))

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		m, err := l.provider.FetchMetric(ctx, name)
		switch {
		case err == nil:
			metric = m
			return nil
		case core.KindOf(err) == core.ErrMetricNotFound:
			return err
		default:
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		return nil, err
	}
	return metric, nil
}
