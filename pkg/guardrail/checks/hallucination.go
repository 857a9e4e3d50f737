package checks

import (
	"context"
	"strings"

	"mercator-hq/ganymede/pkg/guardrail"
)

// uncertaintyPhrases are hedging markers that correlate with low-grounding
// answers. More uncertainty means higher hallucination risk.
var uncertaintyPhrases = []string{
	"i think", "maybe", "possibly", "might be",
	"not sure", "uncertain", "could be",
}

// HallucinationScore estimates hallucination risk from uncertainty
// markers in the text: each marker contributes 0.2 to the score, capped
// at 1.0.
//
// Observation fields:
//   - score: float64 in [0, 1], higher means more risk
//   - confidence: float64, 1 - score
//   - uncertainty_markers: int, matched phrase count
type HallucinationScore struct{}

// NewHallucinationScore creates a hallucination risk scorer.
func NewHallucinationScore() *HallucinationScore {
	return &HallucinationScore{}
}

// Observe scores the text.
func (s *HallucinationScore) Observe(_ context.Context, text string, _ map[string]any) (guardrail.Observation, error) {
	lower := strings.ToLower(text)

	markers := 0
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			markers++
		}
	}

	score := float64(markers) / 5
	if score > 1.0 {
		score = 1.0
	}

	return guardrail.Observation{
		"score":               score,
		"confidence":          1 - score,
		"uncertainty_markers": markers,
	}, nil
}
