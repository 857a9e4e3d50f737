package redaction

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Sensitivity classifies how damaging a leak of the matched data is.
type Sensitivity string

const (
	SensitivityLow      Sensitivity = "low"
	SensitivityMedium   Sensitivity = "medium"
	SensitivityHigh     Sensitivity = "high"
	SensitivityCritical Sensitivity = "critical"
)

// Pattern describes one redactable data type: a regular expression and
// the fixed token that replaces its matches.
type Pattern struct {
	// ID is the data type name (ssn, email, phone, ...). Scan
	// observations reference patterns by this ID.
	ID string `yaml:"id"`

	// Type groups patterns by category (pii, phi, financial, technical).
	Type string `yaml:"type"`

	// Regex is the matching expression, compiled case-insensitively.
	Regex string `yaml:"regex"`

	// Replacement is the fixed masking token.
	Replacement string `yaml:"replacement"`

	// Sensitivity classifies the pattern (low, medium, high, critical).
	Sensitivity Sensitivity `yaml:"sensitivity"`
}

// DefaultPatterns returns the built-in redaction pattern set.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{
			ID:          "ssn",
			Type:        "pii",
			Regex:       `\b(?:00[1-9]|0[1-9][0-9]|[1-5][0-9]{2}|6[0-57-9][0-9]|66[0-57-9]|7[0-6][0-9]|77[0-2])-?(?:0[1-9]|[1-9][0-9])-?(?:000[1-9]|00[1-9][0-9]|0[1-9][0-9]{2}|[1-9][0-9]{3})\b`,
			Replacement: "XXX-XX-XXXX",
			Sensitivity: SensitivityCritical,
		},
		{
			ID:          "email",
			Type:        "pii",
			Regex:       `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
			Replacement: "***@***.***",
			Sensitivity: SensitivityMedium,
		},
		{
			ID:          "phone",
			Type:        "pii",
			Regex:       `\b(?:\(?[0-9]{3}\)?[-. ]?)?[0-9]{3}[-. ]?[0-9]{4}\b`,
			Replacement: "(XXX) XXX-XXXX",
			Sensitivity: SensitivityMedium,
		},
		{
			ID:          "credit_card",
			Type:        "financial",
			Regex:       `\b(?:\d[ -]*?){13,19}\b`,
			Replacement: "****-****-****-XXXX",
			Sensitivity: SensitivityCritical,
		},
		{
			ID:          "date_of_birth",
			Type:        "phi",
			Regex:       `\b(?:0[1-9]|1[0-2])[/-](?:0[1-9]|[12][0-9]|3[01])[/-](?:19|20)\d{2}\b`,
			Replacement: "XX/XX/XXXX",
			Sensitivity: SensitivityHigh,
		},
		{
			ID:          "ip_address",
			Type:        "technical",
			Regex:       `\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`,
			Replacement: "XXX.XXX.XXX.XXX",
			Sensitivity: SensitivityLow,
		},
	}
}

// patternsFile is the YAML layout of a pattern definition file.
type patternsFile struct {
	Patterns []Pattern `yaml:"patterns"`
}

// LoadPatterns loads redaction patterns from a YAML file. An empty path
// returns the built-in defaults. A missing or malformed file returns an
// error so the caller can decide to fall back.
func LoadPatterns(path string) ([]Pattern, error) {
	if path == "" {
		return DefaultPatterns(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patterns file %q: %w", path, err)
	}

	var file patternsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse patterns file %q: %w", path, err)
	}

	if len(file.Patterns) == 0 {
		return nil, fmt.Errorf("patterns file %q defines no patterns", path)
	}

	for i, p := range file.Patterns {
		if p.ID == "" {
			return nil, fmt.Errorf("pattern %d: missing id", i)
		}
		if _, err := regexp.Compile("(?i)" + p.Regex); err != nil {
			return nil, fmt.Errorf("pattern %q: invalid regex: %w", p.ID, err)
		}
		if p.Replacement == "" {
			file.Patterns[i].Replacement = "[REDACTED]"
		}
		if p.Sensitivity == "" {
			file.Patterns[i].Sensitivity = SensitivityMedium
		}
	}

	return file.Patterns, nil
}
