package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/guardrail/source"
)

var checksCmd = &cobra.Command{
	Use:   "checks",
	Short: "List the checks in the active ruleset",
	Long: `List the checks the configured ruleset declares, with their stage,
check type, and remediation action.

Examples:
  # List checks from the default config
  ganymede checks

  # List checks from a specific config
  ganymede checks --config /etc/ganymede/config.yaml`,
	RunE: listChecks,
}

func init() {
	rootCmd.AddCommand(checksCmd)
}

func listChecks(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cli.NewConfigError("failed to load config", err)
	}

	var ruleset *guardrail.RuleSet
	if cfg.Guardrails.RulesetPath == "" {
		ruleset = guardrail.DefaultRuleSet()
	} else {
		ruleset, err = source.NewFileSource(cfg.Guardrails.RulesetPath, nil).Load(context.Background())
		if err != nil {
			return cli.NewConfigError("failed to load ruleset", err)
		}
	}

	fmt.Printf("Ruleset version %s (%d checks)\n\n", ruleset.Version, len(ruleset.Checks))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTAGE\tTYPE\tON FAIL")
	for _, check := range ruleset.Checks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", check.ID, check.When, check.Run.Type, check.OnFail.Action)
	}
	return w.Flush()
}
