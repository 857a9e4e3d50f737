// Package config provides configuration loading and validation for the
// Ganymede guardrail service.
//
// Configuration is read from a single YAML file. Every field has a
// sensible default, so a missing file yields a fully working
// configuration (built-in ruleset, memory evidence backend, JSON logs):
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    return err
//	}
//
// A present-but-malformed file is an error: silently ignoring a config
// the operator wrote is worse than failing fast. The guardrail ruleset
// itself is NOT part of this file; it lives in its own DSL document
// (see pkg/guardrail/source) referenced by guardrails.ruleset_path.
package config
