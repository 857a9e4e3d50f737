// Package recorder turns guardrail evaluation results into verdict
// records and writes them to storage without blocking the caller.
//
// Records are pushed onto a buffered channel and drained by a single
// background worker. When the buffer is full the record is dropped and
// counted rather than stalling an evaluation; the audit trail is
// best-effort by design. Close drains whatever is still buffered.
package recorder
