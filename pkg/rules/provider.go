package rules

import (
	"context"
	"sync"
)

// Provider serves substitution rules and metric definitions.
//
// FetchRules returns a consistent snapshot. FetchMetric resolves a metric
// name to its stored expression; an unknown name yields a
// core.ErrMetricNotFound error.
type Provider interface {
	FetchRules(ctx context.Context) (*Snapshot, error)
	FetchMetric(ctx context.Context, name string) (*MetricDefinition, error)
}

// Static is an in-memory Provider. It backs tests and embedded rule sets,
// and can be scripted to fail a fixed number of times to exercise the
// retry path.
type Static struct {
	mu      sync.Mutex
	rules   []SubstitutionRule
	metrics map[string]MetricDefinition
	version string

	failures int // remaining scripted FetchRules failures
	failErr  error
	attempts int
}

// NewStatic builds a static provider over the given rules and metrics.
func NewStatic(rules []SubstitutionRule, metrics []MetricDefinition) *Static {
	byName := make(map[string]MetricDefinition, len(metrics))
	for _, m := range metrics {
		byName[m.Name] = m
	}
	return &Static{
		rules:   rules,
		metrics: byName,
		version: "static",
	}
}

// WithVersion sets the snapshot version tag.
func (s *Static) WithVersion(v string) *Static {
	s.version = v
	return s
}

// FailNext makes the next n FetchRules calls return err.
func (s *Static) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failErr = err
}

// Attempts reports how many times FetchRules has been called.
func (s *Static) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// FetchRules returns a copy of the configured rules.
func (s *Static) FetchRules(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.failures > 0 {
		s.failures--
		return nil, s.failErr
	}

	out := make([]SubstitutionRule, len(s.rules))
	copy(out, s.rules)
	return &Snapshot{Rules: out, Version: s.version}, nil
}

// FetchMetric resolves a metric by name.
func (s *Static) FetchMetric(_ context.Context, name string) (*MetricDefinition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[name]
	if !ok {
		return nil, metricNotFound(name)
	}
	return &m, nil
}
