// Package health provides liveness and readiness checking for the
// Ganymede guardrail service.
//
// Components register named CheckFuncs with a Checker. The liveness
// probe is a constant "process is up" answer; the readiness probe runs
// every registered check concurrently with a per-check timeout and
// reports "ready" or "degraded". HTTP handlers for both probes are
// provided for mounting at /health and /ready.
package health
