// Package source provides ruleset sources for the guardrail engine.
//
// A ruleset source is responsible for loading and watching guardrail
// check definitions. This package provides file-based and in-memory
// implementations.
//
// # File Source
//
// The file source loads a ruleset from a YAML DSL file and watches it
// for changes using fsnotify:
//
//	src := source.NewFileSource("guardrails.yaml", logger)
//	ruleset, err := src.Load(ctx)
//
// The DSL format:
//
//	version: "0.1"
//	checks:
//	  - id: pii_leakage
//	    when: pre_return
//	    run:
//	      type: pii_scan
//	      input: "{{answer}}"
//	    assert:
//	      - op: eq
//	        key: detected
//	        value: false
//	    on_fail:
//	      action: mask_and_log
//	      message: "PII detected in response"
//
// # In-Memory Source
//
// The in-memory source is useful for testing:
//
//	src := source.NewMemorySource(ruleset)
//	ruleset, err := src.Load(ctx)
package source
