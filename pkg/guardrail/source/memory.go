package source

import (
	"context"
	"sync"

	"mercator-hq/ganymede/pkg/guardrail"
)

// MemorySource is an in-memory ruleset source, useful for testing and
// programmatic configuration.
type MemorySource struct {
	mu      sync.RWMutex
	ruleset *guardrail.RuleSet
	eventCh chan guardrail.Event
}

// NewMemorySource creates an in-memory source holding the given ruleset.
func NewMemorySource(ruleset *guardrail.RuleSet) *MemorySource {
	return &MemorySource{
		ruleset: ruleset,
		eventCh: make(chan guardrail.Event, 1),
	}
}

// Load returns the current ruleset.
func (s *MemorySource) Load(_ context.Context) (*guardrail.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ruleset, nil
}

// Update replaces the stored ruleset and emits a change event.
func (s *MemorySource) Update(ruleset *guardrail.RuleSet) {
	s.mu.Lock()
	s.ruleset = ruleset
	s.mu.Unlock()

	select {
	case s.eventCh <- guardrail.Event{Type: guardrail.EventModified, Path: "memory"}:
	default:
		// An unconsumed event already signals a pending change.
	}
}

// Watch returns the change event channel.
func (s *MemorySource) Watch(ctx context.Context) (<-chan guardrail.Event, error) {
	return s.eventCh, nil
}
