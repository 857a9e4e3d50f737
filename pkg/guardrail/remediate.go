package guardrail

import (
	"fmt"
	"log/slog"
)

// Action is the closed set of remediation actions. Unrecognized action
// strings parse to ActionWarn, preserving the never-throw contract: a
// misconfigured on_fail degrades to a recorded warning, not an error.
type Action int

const (
	// ActionWarn records the failure message as a warning and leaves the
	// text unchanged. Default for unrecognized action strings.
	ActionWarn Action = iota

	// ActionRefuse replaces the entire text with a blocked marker.
	ActionRefuse

	// ActionMaskAndLog masks detected sensitive spans via the redaction
	// collaborator.
	ActionMaskAndLog

	// ActionFallbackOrRefuse replaces the text with a fixed fallback
	// sentence.
	ActionFallbackOrRefuse

	// ActionTruncate clips the text to MaxTextLength runes when over the
	// cap.
	ActionTruncate
)

// ParseAction maps an on_fail action string to its tagged variant.
func ParseAction(s string) Action {
	switch s {
	case "refuse":
		return ActionRefuse
	case "mask_and_log":
		return ActionMaskAndLog
	case "fallback_or_refuse":
		return ActionFallbackOrRefuse
	case "truncate":
		return ActionTruncate
	default:
		return ActionWarn
	}
}

// String returns the canonical action string.
func (a Action) String() string {
	switch a {
	case ActionRefuse:
		return "refuse"
	case ActionMaskAndLog:
		return "mask_and_log"
	case ActionFallbackOrRefuse:
		return "fallback_or_refuse"
	case ActionTruncate:
		return "truncate"
	default:
		return "warn"
	}
}

// MaxTextLength is the rune cap applied by the truncate action.
const MaxTextLength = 5000

// FallbackText is the fixed substitute answer for fallback_or_refuse.
const FallbackText = "I cannot provide a confident answer to this query."

// RemediationOutcome is the result of applying a failure action: the next
// text state plus a classification of what happened. Exactly one of
// Action and Warning is set; Kind is always the tagged variant that ran.
type RemediationOutcome struct {
	Text    string
	Kind    Action
	Action  string
	Warning string
}

// Remediator applies the configured failure action to the current text.
// Every action is deterministic and idempotent given the same inputs, and
// no action path can fail: unrecognized actions degrade to the warning
// branch.
type Remediator struct {
	masker Masker
	logger *slog.Logger
}

// NewRemediator creates a remediator. A nil masker turns mask_and_log
// into a no-op on the text (the action is still recorded).
func NewRemediator(masker Masker, logger *slog.Logger) *Remediator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Remediator{
		masker: masker,
		logger: logger,
	}
}

// Execute applies the check's on_fail action to the current text.
func (r *Remediator) Execute(check CheckDefinition, text string, obs Observation) RemediationOutcome {
	message := check.OnFail.Message
	if message == "" {
		message = fmt.Sprintf("check %s failed", check.ID)
	}

	action := ParseAction(check.OnFail.Action)

	r.logger.Debug("remediating failed check",
		"check_id", check.ID,
		"action", action.String(),
	)

	switch action {
	case ActionRefuse:
		return RemediationOutcome{
			Text:   fmt.Sprintf("[BLOCKED: %s]", message),
			Kind:   action,
			Action: fmt.Sprintf("Refused: %s", message),
		}

	case ActionMaskAndLog:
		masked := text
		if r.masker != nil {
			masked = r.masker.Mask(text, detectedTypes(obs))
		}
		return RemediationOutcome{
			Text:   masked,
			Kind:   action,
			Action: fmt.Sprintf("Masked: %s", message),
		}

	case ActionFallbackOrRefuse:
		return RemediationOutcome{
			Text:   FallbackText,
			Kind:   action,
			Action: fmt.Sprintf("Fallback: %s", message),
		}

	case ActionTruncate:
		return RemediationOutcome{
			Text:   truncate(text, MaxTextLength),
			Kind:   action,
			Action: fmt.Sprintf("Truncated: %s", message),
		}

	default:
		return RemediationOutcome{
			Text:    text,
			Kind:    ActionWarn,
			Warning: message,
		}
	}
}

// truncate clips text to max runes. Text already under the cap passes
// through unchanged, so truncation is idempotent and a no-op for short
// text.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// detectedTypes extracts the detected data types from a scan observation,
// accepting both []string (direct construction) and []any (decoded JSON
// or YAML).
func detectedTypes(obs Observation) []string {
	raw, ok := obs["types"]
	if !ok {
		return nil
	}

	switch vals := raw.(type) {
	case []string:
		return vals
	case []any:
		types := make([]string, 0, len(vals))
		for _, v := range vals {
			if s, ok := v.(string); ok {
				types = append(types, s)
			}
		}
		return types
	default:
		return nil
	}
}
