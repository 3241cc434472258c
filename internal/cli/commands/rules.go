package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rule provider's current substitution rules",
		Example: `  # List rules from a local file
  sqlforge rules --rules rules.yaml

  # List rules from a remote service
  sqlforge rules --rules-url http://rules.internal:8080`,
		Args: cobra.NoArgs,
		RunE: runRules,
	}
}

func runRules(cmd *cobra.Command, _ []string) error {
	cc := FromContext(cmd.Context())

	provider, err := buildProvider(cc)
	if err != nil {
		return err
	}

	snapshot, err := provider.FetchRules(cmd.Context())
	if err != nil {
		return err
	}

	if cc.Config.Output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetTitle("Substitution rules (version %s)", snapshot.Version)
	t.AppendHeader(table.Row{"Source", "Target", "Priority", "Enabled", "Description"})
	for _, r := range snapshot.Rules {
		t.AppendRow(table.Row{r.Source.String(), r.Target.String(), r.Priority, r.Enabled, r.Description})
	}
	t.Render()

	fmt.Fprintf(cmd.OutOrStdout(), "%d rules\n", len(snapshot.Rules))
	return nil
}
