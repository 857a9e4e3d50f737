// Package checks provides the built-in guardrail check implementations:
// PII scanning, toxicity scoring, hallucination risk scoring, LLM-based
// quality judging, and document classification.
//
// Each implementation satisfies the guardrail.Check capability:
//
//	Observe(ctx, text, evalCtx) (guardrail.Observation, error)
//
// Observations are flat field→value mappings consumed by the engine's
// assertion evaluator. Implementations never panic for well-formed input;
// internal failures surface as errors which the engine degrades to
// per-check warnings.
package checks
