package redaction

import (
	"fmt"
	"log/slog"
	"regexp"
)

// Masker applies pattern-based masking to text. It is safe for concurrent
// use: the compiled pattern table is immutable after construction.
type Masker struct {
	patterns []compiledPattern
	byID     map[string]compiledPattern
	logger   *slog.Logger
}

type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

// NewMasker compiles the given patterns into a masker. Patterns compile
// case-insensitively; a pattern that fails to compile fails construction.
func NewMasker(patterns []Pattern, logger *slog.Logger) (*Masker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}

	compiled := make([]compiledPattern, 0, len(patterns))
	byID := make(map[string]compiledPattern, len(patterns))

	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Regex)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: invalid regex: %w", p.ID, err)
		}
		cp := compiledPattern{Pattern: p, re: re}
		compiled = append(compiled, cp)
		byID[p.ID] = cp
	}

	return &Masker{
		patterns: compiled,
		byID:     byID,
		logger:   logger,
	}, nil
}

// Mask replaces matches of the named data types with their fixed
// replacement tokens. An empty or nil types slice masks against every
// known pattern. Unknown type names are skipped. Masking is deterministic
// and idempotent: replacement tokens do not re-match their own patterns'
// data shapes beyond what a second pass would mask identically.
func (m *Masker) Mask(text string, types []string) string {
	masked := text

	if len(types) == 0 {
		for _, p := range m.patterns {
			masked = p.re.ReplaceAllString(masked, p.Replacement)
		}
		return masked
	}

	for _, t := range types {
		p, ok := m.byID[t]
		if !ok {
			m.logger.Debug("no redaction pattern for detected type", "type", t)
			continue
		}
		masked = p.re.ReplaceAllString(masked, p.Replacement)
	}

	return masked
}

// Patterns returns the pattern table (without compiled state).
func (m *Masker) Patterns() []Pattern {
	patterns := make([]Pattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		patterns = append(patterns, p.Pattern)
	}
	return patterns
}
