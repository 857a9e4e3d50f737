package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
	"mercator-hq/ganymede/pkg/config"
	"mercator-hq/ganymede/pkg/guardrail/source"
	"mercator-hq/ganymede/pkg/redaction"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, ruleset and redaction patterns",
	Long: `Validate the service configuration, the guardrail ruleset it
references, and the redaction pattern table, without starting the server.

Examples:
  # Validate everything referenced by the default config
  ganymede validate

  # Validate a specific config file
  ganymede validate --config /etc/ganymede/config.yaml`,
	RunE: validateAll,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateAll(cmd *cobra.Command, args []string) error {
	printer := cli.NewPrinter(os.Stdout)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		printer.Failf("config: %v", err)
		return cli.NewConfigError("configuration invalid", err)
	}
	printer.Okf("config valid (%s)", cfgFile)

	patterns, err := redaction.LoadPatterns(cfg.Redaction.PatternsPath)
	if err != nil {
		printer.Failf("redaction patterns: %v", err)
		return cli.NewConfigError("redaction patterns invalid", err)
	}
	if cfg.Redaction.PatternsPath == "" {
		printer.Okf("redaction patterns: built-in defaults (%d patterns)", len(patterns))
	} else {
		printer.Okf("redaction patterns valid: %s (%d patterns)", cfg.Redaction.PatternsPath, len(patterns))
	}

	if cfg.Guardrails.RulesetPath == "" {
		printer.Okf("ruleset: built-in defaults")
		return nil
	}

	ruleset, err := source.NewFileSource(cfg.Guardrails.RulesetPath, nil).Load(context.Background())
	if err != nil {
		printer.Failf("ruleset: %v", err)
		return cli.NewConfigError("ruleset invalid", err)
	}
	if len(ruleset.Checks) > cfg.Guardrails.MaxChecks {
		printer.Failf("ruleset: %d checks exceeds max_checks %d", len(ruleset.Checks), cfg.Guardrails.MaxChecks)
		return cli.NewConfigError("ruleset invalid", nil)
	}
	printer.Okf("ruleset valid: %s (version %s, %d checks)", cfg.Guardrails.RulesetPath, ruleset.Version, len(ruleset.Checks))
	for _, warning := range ruleset.Warnings() {
		printer.Printf("  warning: %s", warning)
	}

	return nil
}
