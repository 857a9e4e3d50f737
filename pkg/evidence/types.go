package evidence

import (
	"context"
	"time"
)

// VerdictRecord is the audit trail for one guardrail evaluation.
type VerdictRecord struct {
	// Identity
	ID        string `json:"id"`         // UUID v4
	RequestID string `json:"request_id"` // From the API layer, may be empty

	// Evaluation
	Stage        string   `json:"stage"`
	Passed       bool     `json:"passed"`
	FailedChecks []string `json:"failed_checks"`
	Warnings     []string `json:"warnings"`
	ActionsTaken []string `json:"actions_taken"`
	TextModified bool     `json:"text_modified"`

	// Content hashes. The text itself is never persisted.
	InputHash  string `json:"input_hash"`  // SHA-256 of the evaluated text
	OutputHash string `json:"output_hash"` // SHA-256 of the returned text

	// Timing
	Duration   time.Duration `json:"duration"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Query defines filter parameters for retrieving verdict records.
type Query struct {
	// Time range, inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	Stage     string `json:"stage,omitempty"`
	Passed    *bool  `json:"passed,omitempty"`
	RequestID string `json:"request_id,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the interface for verdict storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists a verdict record.
	Store(ctx context.Context, record *VerdictRecord) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*VerdictRecord, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// DeleteBefore removes records recorded before the cutoff and
	// returns how many were deleted. Used by retention.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes the n oldest records and returns how many
	// were deleted. Used by count-based retention.
	DeleteOldest(ctx context.Context, n int64) (int64, error)

	// Close releases backend resources.
	Close() error
}
