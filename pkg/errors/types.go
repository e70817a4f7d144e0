package errors

import (
	"errors"
	"fmt"
)

// Exit codes for scripting integration.
const (
	// ExitSuccess indicates every variant passed.
	ExitSuccess = 0

	// ExitPartialFailure indicates the run completed but some variants
	// failed their assertion or hit an execution error.
	ExitPartialFailure = 1

	// ExitFailure indicates the run could not start or a critical error occurred.
	ExitFailure = 2

	// ExitConfigError indicates an invalid or unreadable suite file.
	ExitConfigError = 3
)

// ExitError represents a command termination with a specific exit code.
//
// Fields:
//   - Code: Exit code (use the Exit* constants)
//   - Message: Human-readable error message
//   - Err: Underlying error that caused this exit, may be nil
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface.
//
// Returns the Message field if set, otherwise the underlying error's
// message, or a default message with the exit code.
func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and underlying error.
//
// Example:
//
//	err := errors.NewExitError(errors.ExitConfigError, loadErr)
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// NewExitErrorf creates an ExitError with the given code and formatted message.
func NewExitErrorf(code int, format string, args ...interface{}) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// GetExitCode extracts the exit code from an error.
//
// nil maps to ExitSuccess, a PartialSuccessError to ExitPartialFailure,
// an ExitError to its code and anything else to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var partialErr *PartialSuccessError
	if errors.As(err, &partialErr) {
		return ExitPartialFailure
	}

	return ExitFailure
}

// IsExitError reports whether err wraps an ExitError and returns it.
func IsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// PartialSuccessError reports a run in which some variants did not pass.
//
// Fields:
//   - Passed: Number of variants whose observation matched the expectation
//   - Failed: Number of assertion mismatches
//   - Errored: Number of variants that hit an execution error
type PartialSuccessError struct {
	Passed  int
	Failed  int
	Errored int
}

// Error implements the error interface.
func (e *PartialSuccessError) Error() string {
	return fmt.Sprintf("%d passed, %d failed, %d errored", e.Passed, e.Failed, e.Errored)
}

// NewPartialSuccessError creates a PartialSuccessError.
func NewPartialSuccessError(passed, failed, errored int) *PartialSuccessError {
	return &PartialSuccessError{Passed: passed, Failed: failed, Errored: errored}
}

// IsPartialSuccess reports whether err wraps a PartialSuccessError and returns it.
func IsPartialSuccess(err error) (*PartialSuccessError, bool) {
	var pse *PartialSuccessError
	if errors.As(err, &pse) {
		return pse, true
	}
	return nil, false
}

// Step names used in StepError.
const (
	StepProvision = "provision"
	StepInstall   = "install"
	StepReinstall = "reinstall"
	StepPrepare   = "prepare"
)

// StepError is an execution error in one subprocess step.
//
// It is distinct from an assertion mismatch: the step did not produce an
// outcome that can be compared with the expectation.
//
// Fields:
//   - Step: One of the Step* constants
//   - Command: The command line that was run, if any
//   - ExitCode: Process exit code, -1 when the process did not run to completion
//   - Err: Underlying error
type StepError struct {
	Step     string
	Command  string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("%s step failed (exit %d): %v", e.Step, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s step failed: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a StepError.
func NewStepError(step, command string, exitCode int, err error) *StepError {
	return &StepError{Step: step, Command: command, ExitCode: exitCode, Err: err}
}

// IsStepError reports whether err wraps a StepError and returns it.
func IsStepError(err error) (*StepError, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
