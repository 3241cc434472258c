package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlforge/pkg/rules"
	"github.com/leapstack-labs/sqlforge/pkg/template"
	"github.com/leapstack-labs/sqlforge/pkg/transpile"
)

// TranspileOptions holds the transpile command's flag values.
type TranspileOptions struct {
	Vars []string
	Refs []string
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand() *cobra.Command {
	opts := &TranspileOptions{}
	cmd := &cobra.Command{
		Use:   "transpile [file]",
		Short: "Transpile a SQL file (or stdin) to dialect-correct SQL",
		Long: `Transpile renders templates, expands the METRIC() macro, applies table
substitution rules, and re-renders the SQL for the target dialect.

Reads from the given file, or from stdin when the argument is "-" or omitted.`,
		Example: `  # Transpile a file for BigQuery with a local rules file
  sqlforge transpile query.sql --dialect bigquery --rules rules.yaml

  # Pipe SQL through with template values
  echo "SELECT * FROM {{ ref('events') }}" | sqlforge transpile --refs events=raw.events

  # Strict mode: dangerous statements fail the run
  sqlforge transpile cleanup.sql --strict`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranspile(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Vars, "vars", nil, "Template variable as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Refs, "refs", nil, "Template reference as key=value (repeatable)")

	return cmd
}

func runTranspile(cmd *cobra.Command, args []string, opts *TranspileOptions) error {
	cc := FromContext(cmd.Context())

	input, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	provider, err := buildProvider(cc)
	if err != nil {
		return err
	}

	cfgOpts := []transpile.Option{transpile.Retries(cc.Config.Retries)}
	if cc.Config.Strict {
		cfgOpts = append(cfgOpts, transpile.Strict())
	}
	if cc.Config.NoTemplates {
		cfgOpts = append(cfgOpts, transpile.NoTemplates())
	}

	cfg, err := transpile.NewConfig(cc.Config.Dialect, cfgOpts...)
	if err != nil {
		return err
	}

	vars, err := parseKeyValues(cc.Config.Vars, opts.Vars)
	if err != nil {
		return err
	}
	refs, err := parseKeyValues(cc.Config.Refs, opts.Refs)
	if err != nil {
		return err
	}
	tctx := template.Context{DS: cc.Config.DS, Vars: vars, Refs: refs}

	t := transpile.New(provider, transpile.WithLogger(cc.Logger))
	result := t.Transpile(cmd.Context(), input, cfg, tctx)

	if cc.Config.Output == "json" {
		return renderResultJSON(cmd.OutOrStdout(), result)
	}
	return renderResultText(cmd, result)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// resultView is the JSON shape of a transpile result.
type resultView struct {
	Success      bool                     `json:"success"`
	FinalSQL     string                   `json:"final_sql,omitempty"`
	AppliedRules []rules.SubstitutionRule `json:"applied_rules,omitempty"`
	Warnings     []warningView            `json:"warnings,omitempty"`
	Error        *errorView               `json:"error,omitempty"`
	RuleVersion  string                   `json:"rule_version,omitempty"`
	ElapsedMs    int64                    `json:"elapsed_ms"`
}

type warningView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type errorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func renderResultJSON(w io.Writer, result transpile.Result) error {
	view := resultView{
		Success:      result.Success,
		FinalSQL:     result.FinalSQL,
		AppliedRules: result.AppliedRules,
		RuleVersion:  result.RuleVersion,
		ElapsedMs:    result.Elapsed.Milliseconds(),
	}
	for _, warn := range result.Warnings {
		wv := warningView{Kind: string(warn.Kind), Message: warn.Message}
		if warn.Pos != nil {
			wv.Line = warn.Pos.Line
			wv.Column = warn.Pos.Column
		}
		view.Warnings = append(view.Warnings, wv)
	}
	if result.Err != nil {
		view.Error = &errorView{
			Kind:    string(result.Err.Kind),
			Message: result.Err.Message,
			Detail:  result.Err.Detail,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("transpile failed: %s", result.Err)
	}
	return nil
}

func renderResultText(cmd *cobra.Command, result transpile.Result) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if len(result.AppliedRules) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(errOut)
		t.SetStyle(table.StyleLight)
		t.SetTitle("Applied rules (version %s)", result.RuleVersion)
		t.AppendHeader(table.Row{"Source", "Target", "Priority"})
		for _, r := range result.AppliedRules {
			t.AppendRow(table.Row{r.Source.String(), r.Target.String(), r.Priority})
		}
		t.Render()
	}

	if len(result.Warnings) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(errOut)
		t.SetStyle(table.StyleLight)
		t.SetTitle("Warnings")
		t.AppendHeader(table.Row{"Kind", "Location", "Message"})
		for _, warn := range result.Warnings {
			loc := ""
			if warn.Pos != nil {
				loc = warn.Pos.String()
			}
			t.AppendRow(table.Row{string(warn.Kind), loc, warn.Message})
		}
		t.Render()
	}

	if !result.Success {
		return fmt.Errorf("transpile failed: %s", result.Err)
	}

	fmt.Fprint(out, result.FinalSQL)
	return nil
}
