// Package config loads CLI configuration for sqlforge.
//
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all CLI configuration options.
type Config struct {
	Dialect     string            `koanf:"dialect"`
	Strict      bool              `koanf:"strict"`
	Retries     int               `koanf:"retries"`
	NoTemplates bool              `koanf:"no_templates"`
	RulesFile   string            `koanf:"rules"`
	RulesURL    string            `koanf:"rules_url"`
	DS          string            `koanf:"ds"`
	Vars        map[string]string `koanf:"vars"`
	Refs        map[string]string `koanf:"refs"`
	Verbose     bool              `koanf:"verbose"`
	Output      string            `koanf:"output"`
}

// Default configuration values.
const (
	DefaultDialect = "duckdb"
	DefaultRetries = 2
	DefaultOutput  = "text"
)

// findConfigFile finds the config file to use.
// Priority: explicit path > sqlforge.yaml > sqlforge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"sqlforge.yaml", "sqlforge.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"dialect": DefaultDialect,
		"retries": DefaultRetries,
		"output":  DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables: SQLFORGE_DIALECT -> dialect
	if err := k.Load(env.Provider("SQLFORGE_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SQLFORGE_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority). Only explicitly set flags override.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, nil
}
