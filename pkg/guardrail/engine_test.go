package guardrail

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// testSource is a minimal in-package ruleset source.
type testSource struct {
	ruleset *RuleSet
	loadErr error
	eventCh chan Event
}

func (s *testSource) Load(context.Context) (*RuleSet, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.ruleset, nil
}

func (s *testSource) Watch(context.Context) (<-chan Event, error) {
	if s.eventCh == nil {
		s.eventCh = make(chan Event)
	}
	return s.eventCh, nil
}

func newTestEngine(t *testing.T, ruleset *RuleSet, masker Masker) *Engine {
	t.Helper()
	eng, err := NewEngine(nil, &testSource{ruleset: ruleset}, masker, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestEngine_UnrecognizedStage(t *testing.T) {
	eng := newTestEngine(t, DefaultRuleSet(), nil)

	result := eng.Evaluate(context.Background(), "text", nil, Stage("mid_generation"))

	if !result.Passed {
		t.Error("unrecognized stage must not fail the evaluation")
	}
	if len(result.FailedChecks) != 0 {
		t.Errorf("expected no checks run, got %v", result.FailedChecks)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "unrecognized stage") {
		t.Errorf("expected unrecognized stage warning, got %v", result.Warnings)
	}
}

func TestEngine_StageFiltering(t *testing.T) {
	ruleset := &RuleSet{
		Version: "0.1",
		Checks: []CheckDefinition{
			{
				ID:   "pii_leakage",
				When: StagePreReturn,
				Run:  Invocation{Type: "always_fail", InputTemplate: "{{answer}}"},
				Assert: []Assertion{
					{Operator: OperatorEqual, Field: "detected", Expected: false},
				},
				OnFail: OnFail{Action: "refuse", Message: "nope"},
			},
		},
	}
	eng := newTestEngine(t, ruleset, nil)
	eng.Register("always_fail", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		return Observation{"detected": true}, nil
	}))

	// The only check is scoped to pre_return; requesting post_generation
	// selects nothing.
	result := eng.Evaluate(context.Background(), "text", nil, StagePostGeneration)

	if !result.Passed {
		t.Error("expected pass when no checks are selected")
	}
	if len(result.Warnings) != 0 || len(result.FailedChecks) != 0 || len(result.ActionsTaken) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.ModifiedText != nil {
		t.Error("expected no text modification")
	}
}

// TestEngine_ChecksWithUnknownStageNeverRun verifies a check declared for
// a bogus stage is disabled rather than an error.
func TestEngine_ChecksWithUnknownStageNeverRun(t *testing.T) {
	ruleset := &RuleSet{
		Checks: []CheckDefinition{
			{
				ID:     "misconfigured",
				When:   Stage("sometime"),
				Run:    Invocation{Type: "length_check"},
				Assert: []Assertion{{Operator: OperatorGreaterEqual, Field: "length", Expected: 100}},
				OnFail: OnFail{Action: "refuse"},
			},
		},
	}
	eng := newTestEngine(t, ruleset, nil)

	for _, stage := range []Stage{StagePreGeneration, StagePostGeneration, StagePreReturn} {
		result := eng.Evaluate(context.Background(), "short", nil, stage)
		if !result.Passed || len(result.Warnings) != 0 {
			t.Errorf("stage %s: check with unknown stage must never run, got %+v", stage, result)
		}
	}
}

func TestEngine_TextThreading(t *testing.T) {
	// Check A masks the word "secret"; check B asserts the word is gone.
	// B must observe A's remediation, not the original input.
	ruleset := &RuleSet{
		Checks: []CheckDefinition{
			{
				ID:     "mask_secret",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "secret_scan", InputTemplate: "{{answer}}"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "detected", Expected: false}},
				OnFail: OnFail{Action: "mask_and_log", Message: "secret found"},
			},
			{
				ID:     "verify_clean",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "secret_scan", InputTemplate: "{{answer}}"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "detected", Expected: false}},
				OnFail: OnFail{Action: "refuse", Message: "still dirty"},
			},
		},
	}

	masker := maskerFunc(func(text string, types []string) string {
		return strings.ReplaceAll(text, "secret", "[hidden]")
	})
	eng := newTestEngine(t, ruleset, masker)
	eng.Register("secret_scan", checkFunc(func(_ context.Context, text string, _ map[string]any) (Observation, error) {
		return Observation{"detected": strings.Contains(text, "secret")}, nil
	}))

	result := eng.Evaluate(context.Background(), "the secret plan", nil, StagePostGeneration)

	if len(result.FailedChecks) != 1 || result.FailedChecks[0] != "mask_secret" {
		t.Fatalf("only the first check should fail, got %v", result.FailedChecks)
	}
	if result.ModifiedText == nil || *result.ModifiedText != "the [hidden] plan" {
		t.Errorf("unexpected modified text: %v", result.ModifiedText)
	}
	if len(result.ActionsTaken) != 1 || result.ActionsTaken[0] != "Masked: secret found" {
		t.Errorf("unexpected actions: %v", result.ActionsTaken)
	}
}

type maskerFunc func(text string, types []string) string

func (f maskerFunc) Mask(text string, types []string) string { return f(text, types) }

func TestEngine_DispatchErrorIsolation(t *testing.T) {
	ruleset := &RuleSet{
		Checks: []CheckDefinition{
			{
				ID:     "broken",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "broken_scan"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "ok", Expected: true}},
				OnFail: OnFail{Action: "refuse", Message: "broken"},
			},
			{
				ID:     "healthy",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "length_check", InputTemplate: "{{answer}}"},
				Assert: []Assertion{{Operator: OperatorGreaterEqual, Field: "length", Expected: 1}},
				OnFail: OnFail{Action: "refuse", Message: "empty"},
			},
		},
	}
	eng := newTestEngine(t, ruleset, nil)
	eng.Register("broken_scan", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		return nil, fmt.Errorf("collaborator exploded")
	}))

	result := eng.Evaluate(context.Background(), "some text", nil, StagePostGeneration)

	// The broken check degrades to a warning; the healthy check still ran
	// and passed, so the overall verdict is pass with text unchanged.
	if !result.Passed {
		t.Errorf("dispatch error must not fail the verdict, got %+v", result)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "check broken encountered an error" {
		t.Errorf("expected exact dispatch warning, got %v", result.Warnings)
	}
	if result.ModifiedText != nil {
		t.Error("dispatch error must leave text unchanged")
	}
}

func TestEngine_PanickingCheckDoesNotAbortEvaluation(t *testing.T) {
	ruleset := &RuleSet{
		Checks: []CheckDefinition{
			{
				ID:     "panicky",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "panic_scan"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "ok", Expected: true}},
				OnFail: OnFail{Action: "refuse"},
			},
		},
	}
	eng := newTestEngine(t, ruleset, nil)
	eng.Register("panic_scan", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		panic("implementation bug")
	}))

	result := eng.Evaluate(context.Background(), "text", nil, StagePostGeneration)

	if !result.Passed {
		t.Error("panic must degrade to a warning, not a failed verdict")
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != "check panicky encountered an error" {
		t.Errorf("expected dispatch warning, got %v", result.Warnings)
	}
}

func TestEngine_OrderPreserved(t *testing.T) {
	// Three failing warn-only checks; result sequences must preserve
	// declaration order.
	var checks []CheckDefinition
	for _, id := range []string{"alpha", "beta", "gamma"} {
		checks = append(checks, CheckDefinition{
			ID:     id,
			When:   StagePreReturn,
			Run:    Invocation{Type: "length_check", InputTemplate: "{{answer}}"},
			Assert: []Assertion{{Operator: OperatorGreaterEqual, Field: "length", Expected: 1000}},
			OnFail: OnFail{Action: "log", Message: "warn " + id},
		})
	}
	eng := newTestEngine(t, &RuleSet{Checks: checks}, nil)

	result := eng.Evaluate(context.Background(), "tiny", nil, StagePreReturn)

	wantFailed := []string{"alpha", "beta", "gamma"}
	if len(result.FailedChecks) != 3 {
		t.Fatalf("expected 3 failed checks, got %v", result.FailedChecks)
	}
	for i, id := range wantFailed {
		if result.FailedChecks[i] != id {
			t.Errorf("failed_checks[%d] = %q, want %q", i, result.FailedChecks[i], id)
		}
		if result.Warnings[i] != "warn "+id {
			t.Errorf("warnings[%d] = %q, want %q", i, result.Warnings[i], "warn "+id)
		}
	}
	if result.Passed {
		t.Error("expected failed verdict")
	}
}

// TestEngine_DuplicateIDsBothRun preserves the original permissiveness:
// duplicate check IDs are legal and every duplicate runs.
func TestEngine_DuplicateIDsBothRun(t *testing.T) {
	dup := CheckDefinition{
		ID:     "length_check",
		When:   StagePostGeneration,
		Run:    Invocation{Type: "length_check", InputTemplate: "{{answer}}"},
		Assert: []Assertion{{Operator: OperatorGreaterEqual, Field: "length", Expected: 1000}},
		OnFail: OnFail{Action: "log", Message: "too short"},
	}
	eng := newTestEngine(t, &RuleSet{Checks: []CheckDefinition{dup, dup}}, nil)

	result := eng.Evaluate(context.Background(), "short", nil, StagePostGeneration)

	if len(result.FailedChecks) != 2 {
		t.Errorf("both duplicate checks must run, got %v", result.FailedChecks)
	}
}

func TestEngine_SourceFailureFallsBackToDefaults(t *testing.T) {
	src := &testSource{loadErr: fmt.Errorf("file vanished")}
	eng, err := NewEngine(nil, src, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine must succeed on source failure: %v", err)
	}
	defer eng.Close()

	ruleset := eng.RuleSet()
	if len(ruleset.Checks) != 3 {
		t.Fatalf("expected the 3 built-in default checks, got %d", len(ruleset.Checks))
	}

	wantStages := map[string]Stage{
		"pii_leakage":    StagePreReturn,
		"toxicity_check": StagePostGeneration,
		"length_check":   StagePostGeneration,
	}
	for _, check := range ruleset.Checks {
		if want, ok := wantStages[check.ID]; !ok || check.When != want {
			t.Errorf("unexpected default check %s at stage %s", check.ID, check.When)
		}
	}
}

func TestEngine_NilSourceUsesDefaults(t *testing.T) {
	eng, err := NewEngine(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	if got := len(eng.RuleSet().Checks); got != 3 {
		t.Errorf("expected 3 default checks, got %d", got)
	}
}

func TestEngine_ReloadSwapsSnapshot(t *testing.T) {
	src := &testSource{ruleset: &RuleSet{Version: "1", Checks: []CheckDefinition{}}}
	eng, err := NewEngine(nil, src, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	src.ruleset = &RuleSet{Version: "2", Checks: []CheckDefinition{
		{ID: "new_check", When: StagePreReturn, Run: Invocation{Type: "length_check"}},
	}}

	if err := eng.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	ruleset := eng.RuleSet()
	if ruleset.Version != "2" || len(ruleset.Checks) != 1 {
		t.Errorf("reload did not swap the snapshot: %+v", ruleset)
	}
}

func TestEngine_ReloadRejectsOversizedRuleset(t *testing.T) {
	config := DefaultEngineConfig()
	config.MaxChecks = 1

	src := &testSource{ruleset: &RuleSet{Checks: []CheckDefinition{
		{ID: "one", When: StagePreReturn, Run: Invocation{Type: "length_check"}},
	}}}
	eng, err := NewEngine(config, src, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	src.ruleset = &RuleSet{Checks: []CheckDefinition{
		{ID: "one", When: StagePreReturn, Run: Invocation{Type: "length_check"}},
		{ID: "two", When: StagePreReturn, Run: Invocation{Type: "length_check"}},
	}}

	if err := eng.Reload(context.Background()); err == nil {
		t.Fatal("expected validation error for oversized ruleset")
	}

	// Previous snapshot stays installed.
	if got := len(eng.RuleSet().Checks); got != 1 {
		t.Errorf("expected previous snapshot to survive, got %d checks", got)
	}
}

// TestEngine_ConcurrentEvaluateAndReload exercises the single-writer,
// multi-reader snapshot discipline under the race detector.
func TestEngine_ConcurrentEvaluateAndReload(t *testing.T) {
	src := &testSource{ruleset: DefaultRuleSet()}
	eng, err := NewEngine(nil, src, nil, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer eng.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				result := eng.Evaluate(context.Background(), "a perfectly ordinary answer.", nil, StagePostGeneration)
				if result == nil {
					t.Error("Evaluate returned nil")
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			if err := eng.Reload(context.Background()); err != nil {
				t.Errorf("Reload: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}

// testMetrics captures the engine's metric callbacks.
type testMetrics struct {
	actions        []string
	dispatchErrors []string
}

func (m *testMetrics) RecordAction(action string)         { m.actions = append(m.actions, action) }
func (m *testMetrics) RecordDispatchError(checkID string) { m.dispatchErrors = append(m.dispatchErrors, checkID) }

func TestEngine_MetricsRecordActionsAndDispatchErrors(t *testing.T) {
	ruleset := &RuleSet{
		Checks: []CheckDefinition{
			{
				ID:     "mask_it",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "always_detect", InputTemplate: "{{answer}}"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "detected", Expected: false}},
				OnFail: OnFail{Action: "mask_and_log", Message: "found"},
			},
			{
				ID:     "broken",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "broken_scan"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "ok", Expected: true}},
				OnFail: OnFail{Action: "refuse"},
			},
			{
				ID:     "warn_it",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "always_detect", InputTemplate: "{{answer}}"},
				Assert: []Assertion{{Operator: OperatorEqual, Field: "detected", Expected: false}},
				OnFail: OnFail{Action: "log", Message: "noted"},
			},
		},
	}
	eng := newTestEngine(t, ruleset, nil)
	eng.Register("always_detect", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		return Observation{"detected": true}, nil
	}))
	eng.Register("broken_scan", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		return nil, fmt.Errorf("collaborator exploded")
	}))

	sink := &testMetrics{}
	eng.SetMetrics(sink)

	eng.Evaluate(context.Background(), "text", nil, StagePostGeneration)

	// Both remediations count, including the warn-only degradation.
	wantActions := []string{"mask_and_log", "warn"}
	if len(sink.actions) != len(wantActions) {
		t.Fatalf("recorded actions = %v, want %v", sink.actions, wantActions)
	}
	for i, want := range wantActions {
		if sink.actions[i] != want {
			t.Errorf("actions[%d] = %q, want %q", i, sink.actions[i], want)
		}
	}

	if len(sink.dispatchErrors) != 1 || sink.dispatchErrors[0] != "broken" {
		t.Errorf("recorded dispatch errors = %v, want [broken]", sink.dispatchErrors)
	}
}

func TestEngine_UnknownCheckTypeWarnsAndEvaluatesDefaults(t *testing.T) {
	// The default observation {score: 0, detected: false} is still run
	// through the check's assertions, not assumed to pass.
	ruleset := &RuleSet{
		Checks: []CheckDefinition{
			{
				ID:     "mystery",
				When:   StagePostGeneration,
				Run:    Invocation{Type: "foo_scan", InputTemplate: "{{answer}}"},
				Assert: []Assertion{{Operator: OperatorGreaterEqual, Field: "score", Expected: 0.5}},
				OnFail: OnFail{Action: "log", Message: "score too low"},
			},
		},
	}
	eng := newTestEngine(t, ruleset, nil)

	result := eng.Evaluate(context.Background(), "text", nil, StagePostGeneration)

	// detected=false, score=0: the gte 0.5 assertion fails against the
	// default observation.
	if result.Passed {
		t.Error("default observation must be tested against assertions")
	}
	if len(result.FailedChecks) != 1 || result.FailedChecks[0] != "mystery" {
		t.Errorf("unexpected failed checks: %v", result.FailedChecks)
	}

	foundTypeWarning := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "unknown check type") && strings.Contains(w, "foo_scan") {
			foundTypeWarning = true
		}
	}
	if !foundTypeWarning {
		t.Errorf("expected unknown check type warning, got %v", result.Warnings)
	}
}
