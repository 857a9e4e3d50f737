package cli

import (
	"errors"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitError},
		{"config error", NewConfigError("bad config", nil), ExitConfigError},
		{"runtime error", NewRuntimeError("failed", errors.New("cause")), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := NewConfigError("bad config", cause)

	if !errors.Is(err, cause) {
		t.Error("Unwrap lost the cause")
	}
	if err.Error() != "bad config: cause" {
		t.Errorf("Error() = %q", err.Error())
	}
}
