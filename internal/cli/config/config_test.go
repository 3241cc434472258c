package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dialect", DefaultDialect, "")
	fs.Bool("strict", false, "")
	fs.Int("retries", DefaultRetries, "")
	fs.Bool("no-templates", false, "")
	fs.String("output", DefaultOutput, "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.False(t, cfg.Strict)
	assert.False(t, cfg.NoTemplates)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
dialect: trino
strict: true
retries: 4
vars:
  region: eu
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "trino", cfg.Dialect)
	assert.True(t, cfg.Strict)
	assert.Equal(t, 4, cfg.Retries)
	assert.Equal(t, map[string]string{"region": "eu"}, cfg.Vars)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, DefaultOutput, cfg.Output)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "dialect: trino\n")
	t.Setenv("SQLFORGE_DIALECT", "bigquery")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "bigquery", cfg.Dialect)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	path := writeConfigFile(t, "dialect: trino\nretries: 4\n")
	t.Setenv("SQLFORGE_DIALECT", "bigquery")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--dialect", "duckdb", "--no-templates"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", cfg.Dialect)
	assert.True(t, cfg.NoTemplates)
	// Unchanged flags do not clobber file values.
	assert.Equal(t, 4, cfg.Retries)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	path := writeConfigFile(t, "strict: true\n")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
}
