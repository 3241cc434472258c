// Package rules defines the substitution rule and metric definition model
// and the providers that serve them. The transpile pipeline only ever sees
// the Provider interface; where a snapshot comes from (memory, HTTP, YAML
// file) is a provider concern.
package rules

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlforge/pkg/core"
)

// TableID identifies a table with optional catalog/schema qualification.
// Empty qualifier fields mean the rule was authored without them and they
// do not participate in matching.
type TableID struct {
	Catalog string `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Schema  string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Name    string `json:"name" yaml:"name"`
}

// ParseTableID parses a dotted table reference of up to three parts:
// "name", "schema.name" or "catalog.schema.name".
func ParseTableID(s string) (TableID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	for _, part := range parts {
		if part == "" {
			return TableID{}, fmt.Errorf("invalid table reference %q: empty part", s)
		}
	}

	switch len(parts) {
	case 1:
		return TableID{Name: parts[0]}, nil
	case 2:
		return TableID{Schema: parts[0], Name: parts[1]}, nil
	case 3:
		return TableID{Catalog: parts[0], Schema: parts[1], Name: parts[2]}, nil
	default:
		return TableID{}, fmt.Errorf("invalid table reference %q: at most 3 parts", s)
	}
}

// String renders the identifier in dotted form.
func (t TableID) String() string {
	parts := make([]string, 0, 3)
	if t.Catalog != "" {
		parts = append(parts, t.Catalog)
	}
	if t.Schema != "" {
		parts = append(parts, t.Schema)
	}
	parts = append(parts, t.Name)
	return strings.Join(parts, ".")
}

// IsZero reports whether the identifier is empty.
func (t TableID) IsZero() bool { return t.Name == "" }

// SubstitutionRule maps a source table to a replacement target.
type SubstitutionRule struct {
	Source      TableID `json:"source" yaml:"source"`
	Target      TableID `json:"target" yaml:"target"`
	Priority    int     `json:"priority" yaml:"priority"`
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewRule builds a validated rule from dotted source/target references.
// A rule whose source and target are identical would re-match its own
// output, so it is rejected up front.
func NewRule(source, target string, priority int) (SubstitutionRule, error) {
	src, err := ParseTableID(source)
	if err != nil {
		return SubstitutionRule{}, err
	}
	tgt, err := ParseTableID(target)
	if err != nil {
		return SubstitutionRule{}, err
	}
	if src == tgt {
		return SubstitutionRule{}, fmt.Errorf("rule source and target are identical: %s", source)
	}

	return SubstitutionRule{
		Source:   src,
		Target:   tgt,
		Priority: priority,
		Enabled:  true,
	}, nil
}

// Validate checks a rule decoded from an external document.
func (r SubstitutionRule) Validate() error {
	if r.Source.IsZero() {
		return fmt.Errorf("rule has no source table")
	}
	if r.Target.IsZero() {
		return fmt.Errorf("rule has no target table")
	}
	if r.Source == r.Target {
		return fmt.Errorf("rule source and target are identical: %s", r.Source)
	}
	return nil
}

// MetricDefinition is a named, reusable SQL expression served alongside
// the substitution rules. Dependencies list the upstream tables the
// expression reads, for audit display.
type MetricDefinition struct {
	Name         string   `json:"name" yaml:"name"`
	Expression   string   `json:"expression" yaml:"expression"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Snapshot is a consistent view of the rule set: the rules and the version
// tag they were fetched under always travel together.
type Snapshot struct {
	Rules   []SubstitutionRule
	Version string
}

// metricNotFound builds the canonical lookup failure for a metric name.
func metricNotFound(name string) *core.Error {
	return &core.Error{
		Kind:    core.ErrMetricNotFound,
		Message: "metric not found",
		Detail:  name,
	}
}
