package cli

import "fmt"

// Exit codes used by the ganymede commands.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitConfigError = 2
	ExitUsageError  = 64
)

// CommandError is an error with an associated process exit code.
type CommandError struct {
	Code    int
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates an error for configuration problems.
func NewConfigError(message string, err error) *CommandError {
	return &CommandError{Code: ExitConfigError, Message: message, Err: err}
}

// NewRuntimeError creates an error for runtime failures.
func NewRuntimeError(message string, err error) *CommandError {
	return &CommandError{Code: ExitError, Message: message, Err: err}
}

// ExitCode extracts the exit code from an error, defaulting to
// ExitError for plain errors and ExitOK for nil.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if cmdErr, ok := err.(*CommandError); ok {
		return cmdErr.Code
	}
	return ExitError
}
