// Package metrics provides Prometheus instrumentation for the Ganymede
// guardrail service.
//
// The Collector owns a private prometheus.Registry and groups the
// metric families by subsystem:
//
//   - GuardrailMetrics: evaluations, check failures, remediation
//     actions, dispatch errors, ruleset reloads
//   - HTTPMetrics: request counts and latencies per route
//   - EvidenceMetrics: verdict record writes and drops
//
// All metric names share the configured namespace (default "ganymede").
// Mount Collector.Handler() at /metrics to expose them.
package metrics
