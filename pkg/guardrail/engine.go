package guardrail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Engine is the guardrail policy execution engine. It holds the loaded
// ruleset, filters checks by stage, runs them in declaration order,
// threads text state through successive checks, and aggregates the
// verdict.
//
// Concurrent Evaluate calls share only the immutable ruleset snapshot;
// all per-call state is call-local, so no locking is needed beyond the
// snapshot read.
type Engine struct {
	// ruleset is the current check set, replaced wholesale on reload
	ruleset *RuleSet

	// rulesetMu protects the ruleset pointer for concurrent access
	rulesetMu sync.RWMutex

	// dispatcher routes check types to implementations
	dispatcher *Dispatcher

	// remediator applies failure actions
	remediator *Remediator

	// config contains engine tuning knobs
	config *EngineConfig

	// logger for structured logging
	logger *slog.Logger

	// source provides rulesets; nil means built-in defaults only
	source RuleSetSource

	// metrics receives per-check counters; nil disables recording
	metrics Metrics

	// stopCh signals shutdown
	stopCh chan struct{}

	// watchCancel stops the source watch goroutine
	watchCancel context.CancelFunc

	// wg tracks background goroutines
	wg sync.WaitGroup
}

// NewEngine creates a guardrail engine and installs its initial ruleset.
//
// The source may be nil, and a failing source is not fatal: either way the
// built-in default ruleset is installed, so the engine is never usable
// with zero checks. When the source supports watching, ruleset changes
// trigger hot reload.
func NewEngine(config *EngineConfig, source RuleSetSource, masker Masker, logger *slog.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config: config,
		logger: logger,
		source: source,
		stopCh: make(chan struct{}),
	}

	engine.dispatcher = NewDispatcher(logger)
	engine.remediator = NewRemediator(masker, logger)

	// Install the initial ruleset before the engine is visible to any
	// caller. Reload falls back to defaults on source failure, so a
	// ruleset is always present after this point.
	if err := engine.Reload(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load initial ruleset: %w", err)
	}

	if source != nil {
		engine.startWatching()
	}

	return engine, nil
}

// Metrics receives per-check engine counters: remediation actions as they
// run and dispatch errors as they are isolated. Satisfied by the
// telemetry collector's guardrail metrics.
type Metrics interface {
	RecordAction(action string)
	RecordDispatchError(checkID string)
}

// Register adds a check implementation under the given type name.
func (e *Engine) Register(name string, check Check) {
	e.dispatcher.Register(name, check)
}

// SetMetrics installs the metrics sink. Call before the engine serves
// traffic; a nil sink leaves recording disabled.
func (e *Engine) SetMetrics(m Metrics) {
	e.metrics = m
}

// Evaluate runs all checks scoped to the requested stage against the text
// and context, in declaration order, and returns the aggregated verdict.
//
// Evaluate never returns an error: unrecognized stages, unknown check
// types, collaborator failures, and timeouts all degrade to warnings in
// the result so that policy evaluation always produces a verdict. Later
// checks observe earlier checks' remediations within the same call.
func (e *Engine) Evaluate(ctx context.Context, text string, evalCtx map[string]any, stage Stage) *EvaluationResult {
	start := time.Now()

	result := &EvaluationResult{
		Passed:       true,
		FailedChecks: []string{},
		Warnings:     []string{},
		ActionsTaken: []string{},
	}

	if !stage.Valid() {
		e.logger.Warn("unrecognized stage requested", "stage", string(stage))
		result.Warnings = append(result.Warnings, fmt.Sprintf("unrecognized stage %q", string(stage)))
		return result
	}

	// Read the ruleset snapshot once: an in-flight call observes either
	// entirely the old or entirely the new ruleset, never a mix.
	e.rulesetMu.RLock()
	ruleset := e.ruleset
	e.rulesetMu.RUnlock()

	current := text

	for _, check := range ruleset.Checks {
		if check.When != stage {
			continue
		}
		current = e.evaluateCheck(ctx, check, current, evalCtx, result)
	}

	result.Passed = len(result.FailedChecks) == 0
	if current != text {
		modified := current
		result.ModifiedText = &modified
	}

	e.logger.Info("guardrails evaluated",
		"stage", string(stage),
		"passed", result.Passed,
		"failed_checks", len(result.FailedChecks),
		"warnings", len(result.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

// evaluateCheck runs one check against the current text state and returns
// the next text state. Dispatch failures are isolated: the check is
// recorded as a warning and the text passes through unchanged.
func (e *Engine) evaluateCheck(ctx context.Context, check CheckDefinition, current string, evalCtx map[string]any, result *EvaluationResult) string {
	resolved := resolveInput(check.Run.InputTemplate, current)

	checkCtx, cancel := context.WithTimeout(ctx, e.config.CheckTimeout)
	defer cancel()

	obs, err := e.dispatcher.Dispatch(checkCtx, check.ID, check.Run, resolved, evalCtx)
	if err != nil {
		var unknownType *UnknownCheckTypeError
		if errors.As(err, &unknownType) {
			// Unregistered types are not dispatch errors: the default
			// observation still runs through the check's assertions.
			result.Warnings = append(result.Warnings, fmt.Sprintf("check %s: %v", check.ID, unknownType))
		} else {
			if errors.Is(err, context.DeadlineExceeded) {
				err = &TimeoutError{CheckID: check.ID, Timeout: e.config.CheckTimeout}
			}
			e.logger.Error("error executing check",
				"check_id", check.ID,
				"type", check.Run.Type,
				"error", err,
			)
			result.Warnings = append(result.Warnings, fmt.Sprintf("check %s encountered an error", check.ID))
			if e.metrics != nil {
				e.metrics.RecordDispatchError(check.ID)
			}
			return current
		}
	}

	if evaluateAssertions(check.Assert, obs) {
		return current
	}

	result.FailedChecks = append(result.FailedChecks, check.ID)

	outcome := e.remediator.Execute(check, current, obs)
	if outcome.Warning != "" {
		result.Warnings = append(result.Warnings, outcome.Warning)
	} else {
		result.ActionsTaken = append(result.ActionsTaken, outcome.Action)
	}
	if e.metrics != nil {
		e.metrics.RecordAction(outcome.Kind.String())
	}

	return outcome.Text
}

// Reload replaces the engine's ruleset with a fresh load from the source.
//
// A missing or failing source falls back to the built-in defaults rather
// than leaving the engine empty; only a ruleset that fails validation is
// rejected, in which case the previous snapshot stays installed.
func (e *Engine) Reload(ctx context.Context) error {
	ruleset := e.loadRuleSet(ctx)

	if len(ruleset.Checks) > e.config.MaxChecks {
		return &ValidationError{
			Errors: []string{
				fmt.Sprintf("too many checks: %d (max: %d)", len(ruleset.Checks), e.config.MaxChecks),
			},
		}
	}

	// Atomically replace the snapshot (write lock).
	e.rulesetMu.Lock()
	e.ruleset = ruleset
	e.rulesetMu.Unlock()

	e.logger.Info("ruleset loaded",
		"version", ruleset.Version,
		"check_count", len(ruleset.Checks),
	)

	return nil
}

// loadRuleSet loads from the source, degrading to defaults on failure.
func (e *Engine) loadRuleSet(ctx context.Context) *RuleSet {
	if e.source == nil {
		return DefaultRuleSet()
	}

	ruleset, err := e.source.Load(ctx)
	if err != nil {
		e.logger.Warn("failed to load ruleset from source, using defaults", "error", err)
		return DefaultRuleSet()
	}

	return ruleset
}

// RuleSet returns the current ruleset snapshot (for introspection). The
// returned value shares check definitions with the engine; definitions
// are immutable after load.
func (e *Engine) RuleSet() *RuleSet {
	e.rulesetMu.RLock()
	defer e.rulesetMu.RUnlock()

	checks := make([]CheckDefinition, len(e.ruleset.Checks))
	copy(checks, e.ruleset.Checks)
	return &RuleSet{
		Version: e.ruleset.Version,
		Checks:  checks,
	}
}

// startWatching starts watching the source for ruleset changes. The watch
// context is cancelled by Close so the source can stop its goroutine and
// release the underlying watcher.
func (e *Engine) startWatching() {
	ctx, cancel := context.WithCancel(context.Background())
	e.watchCancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		eventCh, err := e.source.Watch(ctx)
		if err != nil {
			e.logger.Error("failed to start ruleset watcher", "error", err)
			return
		}

		for {
			select {
			case <-e.stopCh:
				return
			case event, ok := <-eventCh:
				if !ok {
					return
				}
				e.handleSourceEvent(event)
			}
		}
	}()
}

// handleSourceEvent handles a ruleset source change event.
func (e *Engine) handleSourceEvent(event Event) {
	if event.Error != nil {
		e.logger.Error("ruleset watch error", "error", event.Error)
		return
	}

	e.logger.Info("ruleset source changed",
		"type", event.Type,
		"path", event.Path,
	)

	if err := e.Reload(context.Background()); err != nil {
		e.logger.Error("failed to reload ruleset after source change",
			"error", err,
			"path", event.Path,
		)
	}
}

// Close shuts down the engine and releases resources, including the
// source watch goroutine and its file watcher.
func (e *Engine) Close() error {
	close(e.stopCh)
	if e.watchCancel != nil {
		e.watchCancel()
	}
	e.wg.Wait()
	return nil
}
