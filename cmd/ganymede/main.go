// Ganymede is a guardrail policy execution engine for LLM output.
//
// It evaluates text against a staged, declarative ruleset: each check
// names a stage (pre_generation, post_generation, pre_return), a check
// implementation to run, assertions over the observation it produces,
// and a remediation action to take on failure (warn, refuse, mask,
// fall back, truncate).
//
// Usage:
//
//	# Start the service with default configuration
//	ganymede run
//
//	# Start with a custom configuration file
//	ganymede run --config /etc/ganymede/config.yaml
//
//	# Validate configuration, ruleset and redaction patterns
//	ganymede validate
//
//	# List the active checks
//	ganymede checks
//
//	# Show version information
//	ganymede version
package main

func main() {
	Execute()
}
