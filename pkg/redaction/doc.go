// Package redaction provides deterministic, pattern-based masking of
// sensitive content (PII, PHI, financial and technical identifiers).
//
// Each pattern pairs a regular expression with a fixed replacement token
// (SSN → XXX-XX-XXXX, email → ***@***.***, and so on), so masking the
// same input always produces the same output. Patterns can be loaded
// from a YAML file or fall back to the built-in defaults.
//
// The Masker backs the guardrail engine's mask_and_log remediation and
// the PII-redacting log handler.
package redaction
