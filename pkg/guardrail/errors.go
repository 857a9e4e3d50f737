package guardrail

import (
	"fmt"
	"time"
)

// UnknownCheckTypeError indicates a check declared a type with no
// registered implementation. The dispatcher pairs it with a default
// observation so evaluation can continue; it never reaches the caller of
// Evaluate.
type UnknownCheckTypeError struct {
	Type string
}

func (e *UnknownCheckTypeError) Error() string {
	return fmt.Sprintf("unknown check type %q", e.Type)
}

// DispatchError wraps a failure inside a check implementation (error
// return or panic). It is recovered per check so one check's failure
// cannot abort its siblings.
type DispatchError struct {
	CheckID string
	Cause   error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for check %q: %v", e.CheckID, e.Cause)
}

func (e *DispatchError) Unwrap() error {
	return e.Cause
}

// TimeoutError indicates a check implementation exceeded the per-check
// timeout budget. Treated as a dispatch error by the engine.
type TimeoutError struct {
	CheckID string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("check %q timed out after %s", e.CheckID, e.Timeout)
}

// ValidationError indicates a loaded ruleset violates an engine limit.
// The previous ruleset snapshot stays installed when reload fails
// validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid ruleset: %v", e.Errors)
}
