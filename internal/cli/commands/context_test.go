package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlforge/internal/cli/config"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
)

func TestParseKeyValues(t *testing.T) {
	t.Run("pairs layered over base", func(t *testing.T) {
		base := map[string]string{"region": "eu", "tier": "gold"}

		got, err := parseKeyValues(base, []string{"region=us", "env=prod"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"region": "us",
			"tier":   "gold",
			"env":    "prod",
		}, got)

		// The base map is not mutated.
		assert.Equal(t, "eu", base["region"])
	})

	t.Run("empty value allowed", func(t *testing.T) {
		got, err := parseKeyValues(nil, []string{"region="})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"region": ""}, got)
	})

	t.Run("value may contain equals", func(t *testing.T) {
		got, err := parseKeyValues(nil, []string{"filter=a=b"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"filter": "a=b"}, got)
	})

	t.Run("malformed pair rejected", func(t *testing.T) {
		_, err := parseKeyValues(nil, []string{"no-separator"})
		assert.ErrorContains(t, err, "invalid key=value pair")

		_, err = parseKeyValues(nil, []string{"=value"})
		assert.Error(t, err)
	})
}

func TestFromContext_Default(t *testing.T) {
	cc := FromContext(context.Background())
	require.NotNil(t, cc)
	assert.Equal(t, config.DefaultDialect, cc.Config.Dialect)
	assert.NotNil(t, cc.Logger)

	stored := &CommandContext{Config: &config.Config{Dialect: "trino"}}
	ctx := WithContext(context.Background(), stored)
	assert.Same(t, stored, FromContext(ctx))
}

func TestBuildProvider(t *testing.T) {
	cc := FromContext(context.Background())

	p, err := buildProvider(cc)
	require.NoError(t, err)
	assert.IsType(t, &rules.Static{}, p)

	cc.Config.RulesURL = "http://localhost:9999"
	p, err = buildProvider(cc)
	require.NoError(t, err)
	assert.IsType(t, &rules.HTTPProvider{}, p)
}
