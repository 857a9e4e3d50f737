package checks

import (
	"context"
	"strings"

	"mercator-hq/ganymede/pkg/guardrail"
)

// defaultToxicKeywords is the built-in keyword list for the lexical
// toxicity scorer.
var defaultToxicKeywords = []string{
	"hate", "violence", "offensive", "discriminatory",
	"explicit", "inappropriate", "threatening",
}

// ToxicityScan scores text toxicity with a keyword heuristic: each
// matched keyword contributes 0.1 to the score, capped at 1.0.
//
// Observation fields:
//   - score: float64 in [0, 1]
//   - is_toxic: bool, true when score exceeds the threshold (0.3)
//   - matches: int, matched keyword count
type ToxicityScan struct {
	keywords  []string
	threshold float64
}

// NewToxicityScan creates a toxicity scanner. A nil keyword list uses the
// built-in defaults.
func NewToxicityScan(keywords []string) *ToxicityScan {
	if len(keywords) == 0 {
		keywords = defaultToxicKeywords
	}
	return &ToxicityScan{
		keywords:  keywords,
		threshold: 0.3,
	}
}

// Observe scores the text.
func (s *ToxicityScan) Observe(_ context.Context, text string, _ map[string]any) (guardrail.Observation, error) {
	lower := strings.ToLower(text)

	matches := 0
	for _, keyword := range s.keywords {
		if strings.Contains(lower, keyword) {
			matches++
		}
	}

	score := float64(matches) / 10
	if score > 1.0 {
		score = 1.0
	}

	return guardrail.Observation{
		"score":    score,
		"is_toxic": score > s.threshold,
		"matches":  matches,
	}, nil
}
