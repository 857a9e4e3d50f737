package handlers

import (
	"encoding/json"
	"net/http"

	"mercator-hq/ganymede/pkg/guardrail"
)

// CheckRequest is the body of POST /v1/guardrails/check.
type CheckRequest struct {
	// Text is the content to evaluate.
	Text string `json:"text"`

	// Stage selects which checks run: pre_generation, post_generation
	// or pre_return.
	Stage string `json:"stage"`

	// Context carries optional evaluation metadata made available to
	// check implementations.
	Context map[string]any `json:"context,omitempty"`
}

// CheckResponse is the verdict returned for a check request.
type CheckResponse struct {
	Passed       bool     `json:"passed"`
	FailedChecks []string `json:"failed_checks"`
	Warnings     []string `json:"warnings"`
	ActionsTaken []string `json:"actions_taken"`
	ModifiedText *string  `json:"modified_text,omitempty"`

	Stage      string `json:"stage"`
	RequestID  string `json:"request_id"`
	DurationMs int64  `json:"duration_ms"`
}

// ConfigResponse summarizes the active ruleset.
type ConfigResponse struct {
	Version string                   `json:"version"`
	Checks  []guardrail.CheckSummary `json:"checks"`
}

// ReloadResponse reports the outcome of a reload request.
type ReloadResponse struct {
	Status  string                   `json:"status"`
	Version string                   `json:"version"`
	Checks  []guardrail.CheckSummary `json:"checks"`
}

// ErrorResponse is the JSON error body for all API errors.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, code int, message, requestID string) {
	writeJSON(w, code, ErrorResponse{Error: message, RequestID: requestID})
}
