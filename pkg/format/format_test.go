package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlforge/pkg/dialect"
	"github.com/leapstack-labs/sqlforge/pkg/sql"
)

func formatSQL(t *testing.T, input, dialectName string) string {
	t.Helper()
	stmt, err := sql.Parse(input)
	require.NoError(t, err)
	d, ok := dialect.Get(dialectName)
	require.True(t, ok)
	return Format(stmt, d)
}

func TestFormat_Select(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select",
			input:    "select a, b from t",
			expected: "SELECT\n  a,\n  b\nFROM t\n",
		},
		{
			name:     "star",
			input:    "select * from warehouse.events_v2",
			expected: "SELECT\n  *\nFROM warehouse.events_v2\n",
		},
		{
			name:     "where clause",
			input:    "select a from t where a > 1 and b = 'x'",
			expected: "SELECT\n  a\nFROM t\nWHERE a > 1 AND b = 'x'\n",
		},
		{
			name:     "distinct with alias",
			input:    "select distinct a as x from t",
			expected: "SELECT DISTINCT\n  a AS x\nFROM t\n",
		},
		{
			name:     "group by having",
			input:    "select a, count(*) from t group by a having count(*) > 2",
			expected: "SELECT\n  a,\n  COUNT(*)\nFROM t\nGROUP BY a\nHAVING COUNT(*) > 2\n",
		},
		{
			name:     "order by limit offset",
			input:    "select a from t order by a desc nulls last limit 10 offset 5",
			expected: "SELECT\n  a\nFROM t\nORDER BY a DESC NULLS LAST\nLIMIT 10 OFFSET 5\n",
		},
		{
			name:     "inner join",
			input:    "select * from a join b on a.id = b.id",
			expected: "SELECT\n  *\nFROM a\n  INNER JOIN b ON a.id = b.id\n",
		},
		{
			name:     "comma join stays inline",
			input:    "select * from a, b",
			expected: "SELECT\n  *\nFROM a, b\n",
		},
		{
			name:     "union all",
			input:    "select a from t union all select b from u",
			expected: "SELECT\n  a\nFROM t\nUNION ALL\nSELECT\n  b\nFROM u\n",
		},
		{
			name:     "inequality canonicalized",
			input:    "select a from t where a <> 1",
			expected: "SELECT\n  a\nFROM t\nWHERE a != 1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSQL(t, tt.input, "duckdb"))
		})
	}
}

func TestFormat_CTE(t *testing.T) {
	got := formatSQL(t, "with c as (select a from t) select * from c", "duckdb")
	expected := "WITH\n" +
		"  c AS (\n" +
		"    SELECT\n" +
		"      a\n" +
		"    FROM t\n" +
		"  )\n" +
		"SELECT\n" +
		"  *\n" +
		"FROM c\n"
	assert.Equal(t, expected, got)
}

func TestFormat_DerivedTable(t *testing.T) {
	got := formatSQL(t, "select * from (select a from t) as sub", "duckdb")
	expected := "SELECT\n" +
		"  *\n" +
		"FROM (\n" +
		"  SELECT\n" +
		"    a\n" +
		"  FROM t\n" +
		") AS sub\n"
	assert.Equal(t, expected, got)
}

func TestFormat_InSubquery(t *testing.T) {
	got := formatSQL(t, "select a from t where a in (select b from u)", "duckdb")
	expected := "SELECT\n" +
		"  a\n" +
		"FROM t\n" +
		"WHERE a IN (\n" +
		"  SELECT\n" +
		"    b\n" +
		"  FROM u\n" +
		")\n"
	assert.Equal(t, expected, got)
}

func TestFormat_Expressions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "case expression",
			input:    "select case when a > 1 then 'x' else 'y' end from t",
			expected: "SELECT\n  CASE WHEN a > 1 THEN 'x' ELSE 'y' END\nFROM t\n",
		},
		{
			name:     "in list",
			input:    "select a from t where a not in (1, 2)",
			expected: "SELECT\n  a\nFROM t\nWHERE a NOT IN (1, 2)\n",
		},
		{
			name:     "between",
			input:    "select a from t where a between 1 and 10",
			expected: "SELECT\n  a\nFROM t\nWHERE a BETWEEN 1 AND 10\n",
		},
		{
			name:     "is not null",
			input:    "select a from t where a is not null",
			expected: "SELECT\n  a\nFROM t\nWHERE a IS NOT NULL\n",
		},
		{
			name:     "window function",
			input:    "select ROW_NUMBER() over (partition by a order by b) from t",
			expected: "SELECT\n  ROW_NUMBER() OVER (PARTITION BY a ORDER BY b)\nFROM t\n",
		},
		{
			name:     "string literal re-escaped",
			input:    "select 'it''s' from t",
			expected: "SELECT\n  'it''s'\nFROM t\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSQL(t, tt.input, "duckdb"))
		})
	}
}

func TestFormat_IdentifierQuoting(t *testing.T) {
	// Reserved words and non-plain identifiers get the dialect quote,
	// plain identifiers pass through bare.
	assert.Equal(t, "SELECT\n  \"order\"\nFROM t\n", formatSQL(t, `select "order" from t`, "duckdb"))
	assert.Equal(t, "SELECT\n  `order`\nFROM t\n", formatSQL(t, `select "order" from t`, "bigquery"))
	assert.Equal(t, "SELECT\n  a\nFROM \"my table\"\n", formatSQL(t, "select a from `my table`", "trino"))
}

func TestFormat_DML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "insert values",
			input:    "insert into t (a, b) values (1, 'x')",
			expected: "INSERT INTO t (a, b)\nVALUES (1, 'x')\n",
		},
		{
			name:     "insert multiple rows",
			input:    "insert into t values (1), (2)",
			expected: "INSERT INTO t\nVALUES (1),\n(2)\n",
		},
		{
			name:     "insert select",
			input:    "insert into t select a from u",
			expected: "INSERT INTO t\nSELECT\n  a\nFROM u\n",
		},
		{
			name:     "update",
			input:    "update t set a = 1, b = 'x' where id = 2",
			expected: "UPDATE t\nSET a = 1, b = 'x'\nWHERE id = 2\n",
		},
		{
			name:     "delete without where",
			input:    "delete from t",
			expected: "DELETE FROM t\n",
		},
		{
			name:     "drop if exists",
			input:    "drop table if exists raw.events",
			expected: "DROP TABLE IF EXISTS raw.events\n",
		},
		{
			name:     "truncate",
			input:    "truncate table t",
			expected: "TRUNCATE TABLE t\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatSQL(t, tt.input, "duckdb"))
		})
	}
}

// Formatted output must re-parse and re-format to the identical text.
// The substitution pass depends on this for idempotence.
func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"select a, b from t where a > 1",
		"with c as (select a from raw.events) select * from c limit 10",
		"select t.*, count(*) from a join b on a.id = b.id group by t.x",
		"select a from t union all select b from u order by 1",
		"select case when a is null then 0 else a end from t where b in (1, 2, 3)",
		"update t set a = a + 1 where id = 2",
		"insert into t (a) select b from u where b like 'x%'",
	}

	d, ok := dialect.Get("duckdb")
	require.True(t, ok)

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			stmt, err := sql.Parse(input)
			require.NoError(t, err)
			first := Format(stmt, d)

			reparsed, err := sql.Parse(first)
			require.NoError(t, err, "formatted output must re-parse:\n%s", first)
			second := Format(reparsed, d)

			assert.Equal(t, first, second)
		})
	}
}
