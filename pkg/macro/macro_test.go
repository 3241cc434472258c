package macro

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlforge/pkg/core"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
)

func testLookup() *rules.Static {
	return rules.NewStatic(nil, []rules.MetricDefinition{
		{Name: "revenue", Expression: "SUM(amount * quantity)"},
		{Name: "orders", Expression: "COUNT(DISTINCT order_id)"},
	})
}

func TestExpand_NoMacro(t *testing.T) {
	input := "SELECT a FROM t"
	res, err := Expand(context.Background(), input, testLookup())
	require.NoError(t, err)
	assert.Equal(t, input, res.SQL)
	assert.False(t, res.Expanded)
	assert.Empty(t, res.Metric)
}

func TestExpand_SingleMacro(t *testing.T) {
	res, err := Expand(context.Background(),
		"SELECT region, METRIC(revenue) AS rev FROM sales GROUP BY region",
		testLookup())
	require.NoError(t, err)

	assert.True(t, res.Expanded)
	assert.Equal(t, "revenue", res.Metric)
	assert.Equal(t, "SELECT region, SUM(amount * quantity) AS rev FROM sales GROUP BY region", res.SQL)
	assert.NotContains(t, res.SQL, "METRIC(")
}

func TestExpand_CaseInsensitiveKeyword(t *testing.T) {
	tests := []string{
		"SELECT metric(orders) FROM t",
		"SELECT Metric( orders ) FROM t",
		"SELECT METRIC (orders) FROM t",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			res, err := Expand(context.Background(), input, testLookup())
			require.NoError(t, err)
			assert.True(t, res.Expanded)
			assert.Equal(t, "orders", res.Metric)
			assert.Contains(t, res.SQL, "COUNT(DISTINCT order_id)")
		})
	}
}

func TestExpand_ArgumentCasePreserved(t *testing.T) {
	// The keyword is case-insensitive but the metric name is looked up
	// exactly as written.
	_, err := Expand(context.Background(), "SELECT METRIC(Revenue) FROM t", testLookup())
	require.Error(t, err)
	assert.Equal(t, core.ErrMetricNotFound, core.KindOf(err))
}

func TestExpand_MultipleMacros(t *testing.T) {
	_, err := Expand(context.Background(),
		"SELECT METRIC(revenue), METRIC(orders) FROM t",
		testLookup())
	require.Error(t, err)
	assert.Equal(t, core.ErrMacroLimit, core.KindOf(err))
	assert.Contains(t, err.Error(), "limit is 1")
}

func TestExpand_UnknownMetric(t *testing.T) {
	_, err := Expand(context.Background(), "SELECT METRIC(margin) FROM t", testLookup())
	require.Error(t, err)
	assert.Equal(t, core.ErrMetricNotFound, core.KindOf(err))
}

func TestExpand_IgnoresNonMacroText(t *testing.T) {
	// An identifier merely containing the word is not a macro call.
	input := "SELECT metric_value, my_metric FROM metrics"
	res, err := Expand(context.Background(), input, testLookup())
	require.NoError(t, err)
	assert.Equal(t, input, res.SQL)
	assert.False(t, res.Expanded)
}
