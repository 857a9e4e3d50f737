package guardrail

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"
)

// answerPlaceholder is the single supported input template placeholder.
// Resolution is a literal string replace, not a template engine.
const answerPlaceholder = "{{answer}}"

// resolveInput resolves a check's input template against the current text
// state. An empty template resolves to the current text unchanged.
func resolveInput(template, current string) string {
	if template == "" {
		return current
	}
	return strings.ReplaceAll(template, answerPlaceholder, current)
}

// Dispatcher routes a check's declared type to its registered
// implementation and normalizes the result into an Observation.
//
// The length_check type is built in: text length is a pure, deterministic
// property of the text, not a remote capability. All other types are
// registered collaborators.
type Dispatcher struct {
	checks map[string]Check
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher with the built-in length_check
// registered.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		checks: make(map[string]Check),
		logger: logger,
	}
	d.Register("length_check", lengthCheck{})
	return d
}

// Register adds a check implementation under the given type name,
// replacing any previous registration.
func (d *Dispatcher) Register(name string, check Check) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checks[name] = check
}

// Types returns the registered check type names.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	types := make([]string, 0, len(d.checks))
	for name := range d.checks {
		types = append(types, name)
	}
	return types
}

// Dispatch invokes the implementation for the invocation's type.
//
// An unregistered type returns the default observation
// {score: 0, detected: false} together with an *UnknownCheckTypeError so
// the engine can record a warning and still evaluate the check's
// assertions against the defaults. Implementation errors and panics are
// wrapped in *DispatchError; a cancelled or expired context yields the
// context error. Dispatch never panics.
func (d *Dispatcher) Dispatch(ctx context.Context, checkID string, inv Invocation, text string, evalCtx map[string]any) (Observation, error) {
	d.mu.RLock()
	check, ok := d.checks[inv.Type]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("unknown check type",
			"check_id", checkID,
			"type", inv.Type,
		)
		return Observation{"score": 0, "detected": false}, &UnknownCheckTypeError{Type: inv.Type}
	}

	// Run the implementation in its own goroutine so a collaborator that
	// ignores the context cannot hang the whole pipeline. The goroutine is
	// leaked until the collaborator returns; the buffered channel lets it
	// finish without blocking.
	type observeResult struct {
		obs Observation
		err error
	}
	resultCh := make(chan observeResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- observeResult{err: &DispatchError{
					CheckID: checkID,
					Cause:   fmt.Errorf("check implementation panicked: %v", r),
				}}
			}
		}()
		obs, err := check.Observe(ctx, text, evalCtx)
		if err != nil {
			resultCh <- observeResult{err: &DispatchError{CheckID: checkID, Cause: err}}
			return
		}
		resultCh <- observeResult{obs: obs}
	}()

	select {
	case res := <-resultCh:
		return res.obs, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lengthCheck is the built-in length_check implementation. Length is
// counted in runes, matching how the truncate remediation clips text.
type lengthCheck struct{}

func (lengthCheck) Observe(_ context.Context, text string, _ map[string]any) (Observation, error) {
	return Observation{"length": utf8.RuneCountInString(text)}, nil
}
