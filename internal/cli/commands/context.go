// Package commands implements the sqlforge subcommands.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqlforge/internal/cli/config"
	"github.com/leapstack-labs/sqlforge/pkg/rules"
)

// CommandContext carries the loaded configuration and logger to commands.
type CommandContext struct {
	Config *config.Config
	Logger *slog.Logger
}

type ctxKey struct{}

// WithContext stores the command context.
func WithContext(ctx context.Context, cc *CommandContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, cc)
}

// FromContext retrieves the command context, or a usable default when the
// command runs outside the root command's setup (mostly in tests).
func FromContext(ctx context.Context) *CommandContext {
	if cc, ok := ctx.Value(ctxKey{}).(*CommandContext); ok {
		return cc
	}
	return &CommandContext{
		Config: &config.Config{Dialect: config.DefaultDialect, Retries: config.DefaultRetries, Output: config.DefaultOutput},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// buildProvider picks the rule provider from configuration: a remote rules
// service when rules_url is set, a local YAML file when rules is set, and
// an empty in-memory provider otherwise.
func buildProvider(cc *CommandContext) (rules.Provider, error) {
	switch {
	case cc.Config.RulesURL != "":
		return rules.NewHTTPProvider(cc.Config.RulesURL, rules.WithLogger(cc.Logger))
	case cc.Config.RulesFile != "":
		return rules.NewFileProvider(cc.Config.RulesFile, cc.Logger)
	default:
		return rules.NewStatic(nil, nil), nil
	}
}

// parseKeyValues parses repeated k=v flag values into a map, layered over
// the base map from the config file.
func parseKeyValues(base map[string]string, pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(base)+len(pairs))
	for k, v := range base {
		out[k] = v
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid key=value pair %q", pair)
		}
		out[key] = value
	}
	return out, nil
}
