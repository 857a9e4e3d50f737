package guardrail

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// checkFunc adapts a function to the Check capability for tests.
type checkFunc func(ctx context.Context, text string, evalCtx map[string]any) (Observation, error)

func (f checkFunc) Observe(ctx context.Context, text string, evalCtx map[string]any) (Observation, error) {
	return f(ctx, text, evalCtx)
}

func TestResolveInput(t *testing.T) {
	tests := []struct {
		name     string
		template string
		current  string
		want     string
	}{
		{"placeholder substituted", "{{answer}}", "hello", "hello"},
		{"placeholder inside text", "judge this: {{answer}}", "hello", "judge this: hello"},
		{"empty template resolves to current text", "", "hello", "hello"},
		{"no placeholder leaves template as-is", "static input", "hello", "static input"},
		{"multiple placeholders all substituted", "{{answer}} vs {{answer}}", "x", "x vs x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveInput(tt.template, tt.current); got != tt.want {
				t.Errorf("resolveInput(%q, %q) = %q, want %q", tt.template, tt.current, got, tt.want)
			}
		})
	}
}

func TestDispatcher_BuiltinLengthCheck(t *testing.T) {
	d := NewDispatcher(nil)

	obs, err := d.Dispatch(context.Background(), "length_check", Invocation{Type: "length_check"}, "héllo", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Length is counted in runes.
	if got := obs["length"]; got != 5 {
		t.Errorf("length = %v, want 5", got)
	}
}

func TestDispatcher_UnknownTypeReturnsDefaults(t *testing.T) {
	d := NewDispatcher(nil)

	obs, err := d.Dispatch(context.Background(), "mystery", Invocation{Type: "foo_scan"}, "text", nil)

	var unknown *UnknownCheckTypeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCheckTypeError, got %v", err)
	}
	if unknown.Type != "foo_scan" {
		t.Errorf("error type = %q, want foo_scan", unknown.Type)
	}
	if obs["score"] != 0 || obs["detected"] != false {
		t.Errorf("expected default observation {score: 0, detected: false}, got %v", obs)
	}
}

func TestDispatcher_ImplementationError(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("flaky", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		return nil, fmt.Errorf("upstream unavailable")
	}))

	_, err := d.Dispatch(context.Background(), "flaky_check", Invocation{Type: "flaky"}, "text", nil)

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if dispatchErr.CheckID != "flaky_check" {
		t.Errorf("CheckID = %q, want flaky_check", dispatchErr.CheckID)
	}
}

func TestDispatcher_ImplementationPanicIsRecovered(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("panicky", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		panic("boom")
	}))

	_, err := d.Dispatch(context.Background(), "panicky_check", Invocation{Type: "panicky"}, "text", nil)

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected DispatchError from panic, got %v", err)
	}
}

func TestDispatcher_TimeoutOnHangingCollaborator(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("slow", checkFunc(func(ctx context.Context, _ string, _ map[string]any) (Observation, error) {
		// Ignores the context entirely, like a badly behaved collaborator.
		time.Sleep(5 * time.Second)
		return Observation{}, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := d.Dispatch(ctx, "slow_check", Invocation{Type: "slow"}, "text", nil)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("dispatch blocked for %s despite timeout", elapsed)
	}
}

func TestDispatcher_Types(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register("pii_scan", checkFunc(func(context.Context, string, map[string]any) (Observation, error) {
		return Observation{}, nil
	}))

	types := d.Types()
	if len(types) != 2 {
		t.Fatalf("expected 2 registered types (built-in length_check plus pii_scan), got %v", types)
	}
}
