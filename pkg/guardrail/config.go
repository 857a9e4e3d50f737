package guardrail

import (
	"fmt"
	"time"
)

// EngineConfig contains engine tuning knobs.
type EngineConfig struct {
	// CheckTimeout bounds the wait on one check implementation. Some
	// collaborators perform network I/O (an LLM judge call); expiry is
	// treated as a dispatch error for that check only.
	CheckTimeout time.Duration

	// MaxChecks caps the number of checks a ruleset may declare. A
	// reload exceeding the cap is rejected and the previous snapshot
	// stays installed.
	MaxChecks int
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		CheckTimeout: 10 * time.Second,
		MaxChecks:    100,
	}
}

// Validate checks the configuration for invalid values.
func (c *EngineConfig) Validate() error {
	if c.CheckTimeout <= 0 {
		return fmt.Errorf("check timeout must be positive, got %s", c.CheckTimeout)
	}
	if c.MaxChecks <= 0 {
		return fmt.Errorf("max checks must be positive, got %d", c.MaxChecks)
	}
	return nil
}
