// Package telemetry groups the observability subsystems of the
// Ganymede guardrail service: structured logging with PII redaction,
// Prometheus metrics, and health checking.
//
// Each subsystem lives in its own subpackage:
//
//   - logging: slog-based structured logging with redaction of
//     sensitive values before they reach the log stream
//   - metrics: Prometheus collectors for guardrail evaluation,
//     HTTP traffic, and evidence recording
//   - health: liveness and readiness checks with per-component
//     check registration
package telemetry
