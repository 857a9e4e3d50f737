// Package evidence defines the audit trail for guardrail evaluations.
//
// Every evaluation produces a VerdictRecord: which checks ran, which
// failed, what remediation actions were taken, and SHA-256 hashes of
// the input and output text. Raw text is never stored; the hashes let
// an auditor prove what was evaluated without retaining the content.
//
// Subpackages:
//
//   - storage: memory and SQLite backends implementing Storage
//   - recorder: async, non-blocking verdict recording
//   - retention: scheduled pruning of old records
package evidence
