// Package cli provides the command-line interface for sqlforge.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlforge/internal/cli/commands"
	"github.com/leapstack-labs/sqlforge/internal/cli/config"
)

var cfgFile string

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlforge",
		Short: "sqlforge - SQL transpilation engine",
		Long: `sqlforge rewrites SQL without executing it: template placeholders are
rendered, the METRIC() macro is expanded, table references are substituted
according to provider rules, and the result is re-rendered for the target
dialect with structural warnings attached.`,
		Version: commands.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cc := &commands.CommandContext{Config: cfg, Logger: logger}
			cmd.SetContext(commands.WithContext(cmd.Context(), cc))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default: sqlforge.yaml)")
	pf.String("dialect", config.DefaultDialect, "Target dialect: bigquery, trino, duckdb")
	pf.Bool("strict", false, "Fail on blocking warnings and degraded stages")
	pf.Int("retries", config.DefaultRetries, "Rule-fetch retries (0-5)")
	pf.Bool("no-templates", false, "Disable template rendering")
	pf.String("rules", "", "Rules YAML file")
	pf.String("rules-url", "", "Rules service base URL")
	pf.String("ds", "", "Date partition for {{ ds }} (YYYY-MM-DD, default: today)")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.StringP("output", "o", config.DefaultOutput, "Output format: text, json")

	rootCmd.AddCommand(
		commands.NewTranspileCommand(),
		commands.NewRulesCommand(),
		commands.NewVersionCommand(),
	)

	return rootCmd
}
