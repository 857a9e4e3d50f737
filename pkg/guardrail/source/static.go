package source

import (
	"context"

	"mercator-hq/ganymede/pkg/guardrail"
)

// staticSource wraps another source with watching disabled. Loads pass
// through; Watch delivers nothing.
type staticSource struct {
	inner guardrail.RuleSetSource
}

// WithoutWatch disables change notification for a source. Reloads still
// work through the API; only the file watcher is suppressed.
func WithoutWatch(inner guardrail.RuleSetSource) guardrail.RuleSetSource {
	return &staticSource{inner: inner}
}

func (s *staticSource) Load(ctx context.Context) (*guardrail.RuleSet, error) {
	return s.inner.Load(ctx)
}

func (s *staticSource) Watch(ctx context.Context) (<-chan guardrail.Event, error) {
	// A channel that never delivers: the engine's watch loop simply
	// idles until shutdown.
	return make(chan guardrail.Event), nil
}
