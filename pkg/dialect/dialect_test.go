package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	for _, name := range []string{"bigquery", "trino", "duckdb"} {
		d, ok := Get(name)
		require.True(t, ok, name)
		assert.Equal(t, name, d.Name)
	}

	// Lookup is case-insensitive.
	d, ok := Get("BigQuery")
	require.True(t, ok)
	assert.Equal(t, "bigquery", d.Name)

	_, ok = Get("sqlite")
	assert.False(t, ok)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"bigquery", "duckdb", "trino"}, Names())
}

func TestQuoteIdent(t *testing.T) {
	duckdb, _ := Get("duckdb")
	bigquery, _ := Get("bigquery")

	tests := []struct {
		name     string
		input    string
		duckdb   string
		bigquery string
	}{
		{"plain passes through", "events", "events", "events"},
		{"underscore ok", "my_table", "my_table", "my_table"},
		{"digits after first ok", "t2", "t2", "t2"},
		{"leading digit quoted", "2fast", `"2fast"`, "`2fast`"},
		{"space quoted", "my table", `"my table"`, "`my table`"},
		{"reserved word quoted", "order", `"order"`, "`order`"},
		{"reserved word any case", "SELECT", `"SELECT"`, "`SELECT`"},
		{"embedded quote doubled", `a"b`, `"a""b"`, "`a\"b`"},
		{"empty quoted", "", `""`, "``"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.duckdb, duckdb.QuoteIdent(tt.input))
			assert.Equal(t, tt.bigquery, bigquery.QuoteIdent(tt.input))
		})
	}
}

func TestQuoteQualified(t *testing.T) {
	d, _ := Get("trino")

	assert.Equal(t, "events", d.QuoteQualified("", "", "events"))
	assert.Equal(t, "raw.events", d.QuoteQualified("", "raw", "events"))
	assert.Equal(t, "prod.raw.events", d.QuoteQualified("prod", "raw", "events"))
	assert.Equal(t, `raw."order"`, d.QuoteQualified("raw", "order"))
}
