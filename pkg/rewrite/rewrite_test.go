package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlforge/pkg/dialect"
	"github.com/leapstack-labs/sqlforge/pkg/format"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func mustRule(t *testing.T, source, target string, priority int) rules.SubstitutionRule {
	t.Helper()
	r, err := rules.NewRule(source, target, priority)
	require.NoError(t, err)
	return r
}

// substitute parses input, applies the rules and returns the formatted
// result plus the applied rules.
func substitute(t *testing.T, input string, ruleSet []rules.SubstitutionRule) (string, []rules.SubstitutionRule) {
	t.Helper()
	stmt, err := sql.Parse(input)
	require.NoError(t, err)

	applied := Substitute(stmt, ruleSet)

	d, _ := dialect.Get("duckdb")
	return format.Format(stmt, d), applied
}

func TestSubstitute_Basic(t *testing.T) {
	out, applied := substitute(t, "SELECT * FROM raw.events", []rules.SubstitutionRule{
		mustRule(t, "raw.events", "warehouse.events_v2", 1),
	})

	assert.Equal(t, "SELECT\n  *\nFROM warehouse.events_v2\n", out)
	require.Len(t, applied, 1)
	assert.Equal(t, "warehouse.events_v2", applied[0].Target.String())
}

func TestSubstitute_NoMatchReportsNothing(t *testing.T) {
	out, applied := substitute(t, "SELECT * FROM raw.other", []rules.SubstitutionRule{
		mustRule(t, "raw.events", "warehouse.events_v2", 1),
	})

	assert.Contains(t, out, "raw.other")
	assert.Empty(t, applied)
}

func TestSubstitute_QualifierMatching(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		rule    rules.SubstitutionRule
		rewrote bool
	}{
		{
			name:    "bare rule matches any schema",
			input:   "SELECT * FROM analytics.events",
			rule:    mustRule(t, "events", "events_v2", 1),
			rewrote: true,
		},
		{
			name:    "schema rule requires schema agreement",
			input:   "SELECT * FROM analytics.events",
			rule:    mustRule(t, "raw.events", "events_v2", 1),
			rewrote: false,
		},
		{
			name:    "catalog rule requires catalog agreement",
			input:   "SELECT * FROM raw.events",
			rule:    mustRule(t, "prod.raw.events", "events_v2", 1),
			rewrote: false,
		},
		{
			name:    "fully qualified match",
			input:   "SELECT * FROM prod.raw.events",
			rule:    mustRule(t, "prod.raw.events", "archive.events", 1),
			rewrote: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, applied := substitute(t, tt.input, []rules.SubstitutionRule{tt.rule})
			assert.Equal(t, tt.rewrote, len(applied) == 1)
		})
	}
}

func TestSubstitute_QuotedQualifiedName(t *testing.T) {
	// A BigQuery-style quoted path lexes as one token but is still a
	// qualified reference for rule matching.
	out, applied := substitute(t, "SELECT * FROM `prod.raw.events`", []rules.SubstitutionRule{
		mustRule(t, "prod.raw.events", "archive.events", 1),
	})

	assert.Contains(t, out, "FROM archive.events")
	require.Len(t, applied, 1)
}

func TestSubstitute_PriorityWins(t *testing.T) {
	out, applied := substitute(t, "SELECT * FROM events", []rules.SubstitutionRule{
		mustRule(t, "events", "low_priority", 1),
		mustRule(t, "events", "high_priority", 10),
	})

	assert.Contains(t, out, "high_priority")
	assert.NotContains(t, out, "low_priority")
	require.Len(t, applied, 1)
	assert.Equal(t, 10, applied[0].Priority)
}

func TestSubstitute_EqualPriorityKeepsProviderOrder(t *testing.T) {
	out, applied := substitute(t, "SELECT * FROM events", []rules.SubstitutionRule{
		mustRule(t, "events", "first_listed", 5),
		mustRule(t, "events", "second_listed", 5),
	})

	assert.Contains(t, out, "first_listed")
	require.Len(t, applied, 1)
	assert.Equal(t, "first_listed", applied[0].Target.String())
}

func TestSubstitute_DisabledRuleSkipped(t *testing.T) {
	disabled := mustRule(t, "events", "v2", 10)
	disabled.Enabled = false

	out, applied := substitute(t, "SELECT * FROM events", []rules.SubstitutionRule{
		disabled,
		mustRule(t, "events", "v3", 1),
	})

	assert.Contains(t, out, "v3")
	require.Len(t, applied, 1)
	assert.Equal(t, "v3", applied[0].Target.String())
}

func TestSubstitute_Idempotent(t *testing.T) {
	// A chain a→b, b→c is chased to its fixpoint within one pass, so
	// re-running the pass over its own output changes nothing.
	ruleSet := []rules.SubstitutionRule{
		mustRule(t, "a", "b", 2),
		mustRule(t, "b", "c", 1),
	}

	stmt, err := sql.Parse("SELECT x FROM a LIMIT 1")
	require.NoError(t, err)
	applied := Substitute(stmt, ruleSet)
	require.Len(t, applied, 2)

	d, _ := dialect.Get("duckdb")
	first := format.Format(stmt, d)
	assert.Contains(t, first, "FROM c")

	reparsed, err := sql.Parse(first)
	require.NoError(t, err)
	again := Substitute(reparsed, ruleSet)

	assert.Empty(t, again)
	assert.Equal(t, first, format.Format(reparsed, d))
}

func TestSubstitute_ChainedRulesCascade(t *testing.T) {
	// The target of one rule is re-evaluated against the rest of the set.
	out, applied := substitute(t, "SELECT * FROM a", []rules.SubstitutionRule{
		mustRule(t, "a", "b", 10),
		mustRule(t, "b", "c", 5),
	})

	assert.Contains(t, out, "FROM c")
	assert.NotContains(t, out, "FROM b")
	require.Len(t, applied, 2)
}

func TestSubstitute_RuleCycleTerminates(t *testing.T) {
	// a→b plus b→a: each rule fires at most once per reference, so the
	// chase stops instead of looping.
	out, applied := substitute(t, "SELECT * FROM a", []rules.SubstitutionRule{
		mustRule(t, "a", "b", 2),
		mustRule(t, "b", "a", 1),
	})

	assert.Contains(t, out, "FROM a")
	require.Len(t, applied, 2)
}

func TestSubstitute_CTENamesShadowTables(t *testing.T) {
	out, applied := substitute(t,
		"WITH events AS (SELECT * FROM raw.events) SELECT * FROM events",
		[]rules.SubstitutionRule{
			mustRule(t, "events", "warehouse.events_v2", 5),
			mustRule(t, "raw.events", "curated.facts", 10),
		})

	// The CTE body reads a physical table and is rewritten; the outer
	// reference to the CTE name is not.
	assert.Contains(t, out, "FROM curated.facts")
	assert.Contains(t, out, "FROM events\n")
	assert.NotContains(t, out, "warehouse.events_v2")
	require.Len(t, applied, 1)
}

func TestSubstitute_QualifiedRefBypassesCTEShadow(t *testing.T) {
	// A schema-qualified reference is a physical table even when a CTE of
	// the same name is in scope.
	out, _ := substitute(t,
		"WITH events AS (SELECT 1) SELECT * FROM raw.events",
		[]rules.SubstitutionRule{
			mustRule(t, "raw.events", "curated.events_v2", 1),
		})

	assert.Contains(t, out, "curated.events_v2")
}

func TestSubstitute_ReachesNestedReferences(t *testing.T) {
	ruleSet := []rules.SubstitutionRule{
		mustRule(t, "raw.events", "curated.events", 1),
	}

	tests := []struct {
		name  string
		input string
	}{
		{"join side", "SELECT * FROM t JOIN raw.events AS e ON t.id = e.id"},
		{"derived table", "SELECT * FROM (SELECT * FROM raw.events) AS sub"},
		{"in subquery", "SELECT * FROM t WHERE id IN (SELECT id FROM raw.events)"},
		{"exists subquery", "SELECT * FROM t WHERE EXISTS (SELECT 1 FROM raw.events)"},
		{"union branch", "SELECT * FROM t UNION ALL SELECT * FROM raw.events"},
		{"update target", "UPDATE raw.events SET a = 1"},
		{"delete target", "DELETE FROM raw.events WHERE a = 1"},
		{"insert target", "INSERT INTO raw.events SELECT * FROM t"},
		{"drop target", "DROP TABLE raw.events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, applied := substitute(t, tt.input, ruleSet)
			assert.Contains(t, out, "curated.events")
			assert.Len(t, applied, 1)
		})
	}
}

func TestSubstitute_AppliedOrderIsFirstApplication(t *testing.T) {
	// Reported order follows first application in the statement, not rule
	// ranking.
	_, applied := substitute(t,
		"SELECT * FROM low_first JOIN high_second ON 1 = 1",
		[]rules.SubstitutionRule{
			mustRule(t, "low_first", "a", 1),
			mustRule(t, "high_second", "b", 10),
		})

	require.Len(t, applied, 2)
	assert.Equal(t, "a", applied[0].Target.String())
	assert.Equal(t, "b", applied[1].Target.String())
}

func TestSubstitute_AliasesUntouched(t *testing.T) {
	out, _ := substitute(t, "SELECT e.id FROM raw.events AS e", []rules.SubstitutionRule{
		mustRule(t, "raw.events", "curated.events_v2", 1),
	})

	assert.Equal(t, "SELECT\n  e.id\nFROM curated.events_v2 AS e\n", out)
}

func TestSubstitute_StringLiteralsUntouched(t *testing.T) {
	out, applied := substitute(t, "SELECT 'events' FROM t WHERE name = 'events'",
		[]rules.SubstitutionRule{
			mustRule(t, "events", "events_v2", 1),
		})

	assert.NotContains(t, out, "'events_v2'")
	assert.Empty(t, applied)
}
