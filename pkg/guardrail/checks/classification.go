package checks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/redaction"
)

// Classification labels in ascending sensitivity.
const (
	LabelPublic       = "Public"
	LabelInternal     = "Internal"
	LabelConfidential = "Confidential"
	LabelRegulated    = "Regulated"
)

// classificationKeywords maps labels to the keywords that indicate them.
var classificationKeywords = map[string][]string{
	LabelRegulated: {
		"medical", "health", "patient", "diagnosis", "treatment",
		"prescription", "social security",
	},
	LabelConfidential: {
		"confidential", "proprietary", "sensitive", "private", "restricted",
	},
	LabelInternal: {
		"strategy", "budget", "revenue", "internal", "company",
	},
}

// regulatedPatternIDs are the redaction pattern IDs whose presence forces
// a Regulated label regardless of keywords.
var regulatedPatternIDs = map[string]bool{
	"ssn":         true,
	"credit_card": true,
}

// ClassificationCheck labels text with a data classification level by
// combining sensitive-pattern hits with keyword analysis.
//
// Observation fields:
//   - label: Public, Internal, Confidential, or Regulated
//   - confidence: float64 in [0, 1]
//   - matches: int, total pattern and keyword hits
type ClassificationCheck struct {
	patterns []piiPattern
}

// NewClassificationCheck compiles a classifier from redaction patterns.
// Passing nil uses the default pattern table.
func NewClassificationCheck(patterns []redaction.Pattern) (*ClassificationCheck, error) {
	if len(patterns) == 0 {
		patterns = redaction.DefaultPatterns()
	}

	compiled := make([]piiPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: invalid regex: %w", p.ID, err)
		}
		compiled = append(compiled, piiPattern{id: p.ID, re: re})
	}

	return &ClassificationCheck{patterns: compiled}, nil
}

// Observe classifies the text.
func (c *ClassificationCheck) Observe(_ context.Context, text string, _ map[string]any) (guardrail.Observation, error) {
	lower := strings.ToLower(text)

	regulated := false
	confidentialPattern := false
	patternHits := 0
	for _, p := range c.patterns {
		if !p.re.MatchString(text) {
			continue
		}
		patternHits++
		if regulatedPatternIDs[p.id] {
			regulated = true
		} else {
			confidentialPattern = true
		}
	}

	keywordHits := map[string]int{}
	totalKeywordHits := 0
	for label, keywords := range classificationKeywords {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				keywordHits[label]++
				totalKeywordHits++
			}
		}
	}

	var label string
	var confidence float64
	switch {
	case regulated || keywordHits[LabelRegulated] >= 2:
		label = LabelRegulated
		confidence = 0.9
	case confidentialPattern || keywordHits[LabelConfidential] >= 1:
		label = LabelConfidential
		confidence = 0.8
	case keywordHits[LabelInternal] >= 1:
		label = LabelInternal
		confidence = 0.7
	default:
		label = LabelPublic
		confidence = 0.6
	}

	return guardrail.Observation{
		"label":      label,
		"confidence": confidence,
		"matches":    patternHits + totalKeywordHits,
	}, nil
}
