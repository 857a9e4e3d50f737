package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - guardrail policy execution engine",
	Long: `Ganymede evaluates LLM output against a staged, declarative guardrail
ruleset and applies remediation when checks fail.

It provides:
  - Declarative YAML checks with an assertion micro-language
  - Staged evaluation: pre_generation, post_generation, pre_return
  - Remediation actions: warn, refuse, mask_and_log, fallback, truncate
  - Deterministic PII masking with configurable patterns
  - Verdict evidence records for audit trails`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
