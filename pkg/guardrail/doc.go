// Package guardrail provides the guardrail policy execution engine that
// evaluates declarative checks against text payloads at pipeline stages.
//
// A check is one declarative rule: what to observe (a check type plus an
// input template), what to assert (operator/field/value triples, ANDed),
// and what to do when the assertions fail (refuse, mask, fall back,
// truncate, or warn).
//
// # Architecture
//
// The engine uses a three-layer design:
//
//  1. Dispatcher - Routes a check's declared type to its registered
//     implementation and returns a flat Observation
//  2. Assertion evaluator - Compares observation fields against expected
//     values with a fixed operator set (eq, ne, gt, gte, lt, lte)
//  3. Remediator - Applies the configured failure action and produces the
//     next text state
//
// # Evaluation Flow
//
//	Evaluate(text, context, stage)
//	       ↓
//	Select checks with when == stage (declaration order)
//	       ↓
//	For each selected check:
//	  Resolve {{answer}} against the current text
//	  Dispatch → Observation
//	  Evaluate assertions → all hold?
//	    Yes → next check, text unchanged
//	    No  → record failure, remediate, thread new text forward
//	       ↓
//	Return EvaluationResult (verdict, failures, warnings, actions)
//
// Later checks observe earlier checks' remediations: the text state is
// single-threaded through one Evaluate call. Evaluate never returns an
// error; collaborator failures degrade to warnings in the result so that
// policy evaluation always produces a verdict.
//
// # Basic Usage
//
//	src := source.NewFileSource("guardrails.yaml", logger)
//	eng, err := guardrail.NewEngine(guardrail.DefaultEngineConfig(), src, masker, logger)
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	result := eng.Evaluate(ctx, answer, map[string]any{"query": q}, guardrail.StagePreReturn)
//	if !result.Passed {
//	    // inspect result.FailedChecks, result.ActionsTaken
//	}
//
// Rulesets are replaced wholesale on reload; in-flight Evaluate calls
// observe a single consistent snapshot.
package guardrail
