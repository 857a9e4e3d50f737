package guardrail

import "context"

// Stage identifies the pipeline phase a check is scoped to.
type Stage string

const (
	// StagePreGeneration runs before the model generates an answer.
	StagePreGeneration Stage = "pre_generation"
	// StagePostGeneration runs on the freshly generated answer.
	StagePostGeneration Stage = "post_generation"
	// StagePreReturn runs last, immediately before the answer is returned.
	StagePreReturn Stage = "pre_return"
)

// Valid reports whether the stage is one of the recognized pipeline phases.
// A check declared with an unrecognized stage never matches any requested
// stage and is effectively disabled; a request for an unrecognized stage
// yields an empty check selection plus a warning.
func (s Stage) Valid() bool {
	switch s {
	case StagePreGeneration, StagePostGeneration, StagePreReturn:
		return true
	}
	return false
}

// Operator is a comparison operator used in check assertions.
type Operator string

const (
	OperatorEqual        Operator = "eq"
	OperatorNotEqual     Operator = "ne"
	OperatorGreaterThan  Operator = "gt"
	OperatorGreaterEqual Operator = "gte"
	OperatorLessThan     Operator = "lt"
	OperatorLessEqual    Operator = "lte"
)

// Assertion is a single operator/field/value comparison against an
// observation. All assertions of a check are ANDed together.
type Assertion struct {
	// Operator is the comparison operator (eq, ne, gt, gte, lt, lte).
	Operator Operator `yaml:"op" json:"op"`

	// Field is the observation field the assertion reads.
	Field string `yaml:"key" json:"key"`

	// Expected is the value the observed field is compared against.
	Expected any `yaml:"value" json:"value"`
}

// Invocation identifies which check implementation to call and how to
// resolve its input from the current text state. The input template
// supports a single placeholder, {{answer}}, substituted with the current
// (possibly already remediated) text before dispatch.
type Invocation struct {
	Type          string `yaml:"type" json:"type"`
	InputTemplate string `yaml:"input" json:"input"`
}

// OnFail describes the remediation applied when a check's assertions fail.
// Action strings outside the recognized set degrade to a warn-only action.
type OnFail struct {
	Action  string `yaml:"action" json:"action"`
	Message string `yaml:"message" json:"message"`
}

// CheckDefinition is one declarative guardrail check. Definitions are
// immutable once parsed; remediation mutates the running text state, never
// the definition. Duplicate IDs are legal and all duplicates run.
type CheckDefinition struct {
	ID     string      `yaml:"id" json:"id"`
	When   Stage       `yaml:"when" json:"when"`
	Run    Invocation  `yaml:"run" json:"run"`
	Assert []Assertion `yaml:"assert" json:"assert,omitempty"`
	OnFail OnFail      `yaml:"on_fail" json:"on_fail"`
}

// RuleSet is an ordered, immutable-after-load collection of check
// definitions. The engine replaces its ruleset wholesale on reload; there
// is no partial mutation.
type RuleSet struct {
	Version string            `yaml:"version" json:"version"`
	Checks  []CheckDefinition `yaml:"checks" json:"checks"`
}

// CheckSummary is the introspection view of a loaded check.
type CheckSummary struct {
	ID   string `json:"id"`
	When Stage  `json:"when"`
	Type string `json:"type"`
}

// Summaries returns the introspection view of every check in declaration
// order.
func (rs *RuleSet) Summaries() []CheckSummary {
	summaries := make([]CheckSummary, 0, len(rs.Checks))
	for _, check := range rs.Checks {
		summaries = append(summaries, CheckSummary{
			ID:   check.ID,
			When: check.When,
			Type: check.Run.Type,
		})
	}
	return summaries
}

// Observation is the flat field→value mapping produced by one check
// invocation. It is short-lived: consumed immediately by the assertion
// evaluator and never persisted.
type Observation map[string]any

// Check is the capability implemented by every check type. Observe must
// not panic for well-formed input; internal failures surface as an error
// which the engine degrades to a warning.
type Check interface {
	Observe(ctx context.Context, text string, evalCtx map[string]any) (Observation, error)
}

// Masker is the redaction capability the remediator delegates to for
// mask_and_log actions. Mask must be deterministic; replacement tokens are
// fixed per data type. An empty types slice masks all known patterns.
type Masker interface {
	Mask(text string, types []string) string
}

// EvaluationResult is the aggregated verdict of one Evaluate call. All
// slices preserve the order checks were evaluated in.
type EvaluationResult struct {
	// Passed is true when no selected check failed its assertions.
	Passed bool `json:"passed"`

	// FailedChecks lists the IDs of checks whose assertions failed.
	FailedChecks []string `json:"failed_checks"`

	// Warnings holds warn-only remediation messages and per-check
	// dispatch error notes.
	Warnings []string `json:"warnings"`

	// ActionsTaken records the text-mutating remediations that ran.
	ActionsTaken []string `json:"actions_taken"`

	// ModifiedText is set only when remediation changed the text; nil
	// signals that no rewrite occurred.
	ModifiedText *string `json:"modified_text,omitempty"`
}

// Event represents a ruleset source change event.
type Event struct {
	// Type is the event type ("created", "modified", "deleted").
	Type EventType

	// Path is the file path that changed.
	Path string

	// Error is any error that occurred while processing the event.
	Error error
}

// EventType represents the type of ruleset source event.
type EventType string

const (
	EventCreated  EventType = "created"
	EventModified EventType = "modified"
	EventDeleted  EventType = "deleted"
)

// RuleSetSource provides rulesets to the engine.
type RuleSetSource interface {
	// Load loads the full ruleset from the source.
	Load(ctx context.Context) (*RuleSet, error)

	// Watch watches for ruleset changes and sends events on the returned
	// channel. The channel is closed when the context is cancelled.
	Watch(ctx context.Context) (<-chan Event, error)
}
