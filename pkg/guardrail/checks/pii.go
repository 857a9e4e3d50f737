package checks

import (
	"context"
	"fmt"
	"regexp"

	"mercator-hq/ganymede/pkg/guardrail"
	"mercator-hq/ganymede/pkg/redaction"
)

// PIIScan detects personally identifiable information in text using the
// redaction pattern table, so detection and masking always agree on what
// counts as PII.
//
// Observation fields:
//   - detected: bool, true when any pattern matched
//   - types: []string, matched pattern IDs in table order
//   - count: int, number of matched types
type PIIScan struct {
	patterns []piiPattern
}

type piiPattern struct {
	id string
	re *regexp.Regexp
}

// NewPIIScan compiles a PII scanner from redaction patterns. Passing nil
// uses the default pattern table.
func NewPIIScan(patterns []redaction.Pattern) (*PIIScan, error) {
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

	return &PIIScan{patterns: compiled}, nil
}

// Observe scans the text against every pattern.
func (s *PIIScan) Observe(_ context.Context, text string, _ map[string]any) (guardrail.Observation, error) {
	detected := []string{}
	for _, p := range s.patterns {
		if p.re.MatchString(text) {
			detected = append(detected, p.id)
		}
	}

	return guardrail.Observation{
		"detected": len(detected) > 0,
		"types":    detected,
		"count":    len(detected),
	}, nil
}
