// Package errors defines the stable error code system for mkservice.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Printed verbatim on stderr; treat as a public contract.
const (
	EUsage       Code = "E_USAGE"
	EInternal    Code = "E_INTERNAL"
	EInterrupted Code = "E_INTERRUPTED"

	// Configuration and template errors
	EConfigInvalid   Code = "E_CONFIG_INVALID"
	ETemplateInvalid Code = "E_TEMPLATE_INVALID"

	// Materialization errors
	EInvalidName    Code = "E_INVALID_NAME"
	ETargetLocked   Code = "E_TARGET_LOCKED"
	EPrepareFailed  Code = "E_PREPARE_FAILED"
	ECopyFailed     Code = "E_COPY_FAILED"
	ESubstituteFail Code = "E_SUBSTITUTE_FAILED"

	// Environment errors
	EToolMissing Code = "E_TOOL_MISSING"

	// Automation errors. Never surfaced as a process exit status.
	ECommandFailed Code = "E_COMMAND_FAILED"
	EPipelineStep  Code = "E_PIPELINE_STEP"
)

// ScaffoldError is the standard error type for mkservice errors.
type ScaffoldError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *ScaffoldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *ScaffoldError) Unwrap() error {
	return e.Cause
}

// New creates a new ScaffoldError with the given code and message.
func New(code Code, msg string) error {
	return &ScaffoldError{Code: code, Msg: msg}
}

// NewWithDetails creates a new ScaffoldError with code, message, and details.
// The details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &ScaffoldError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new ScaffoldError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &ScaffoldError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new ScaffoldError wrapping an underlying error with details.
// The details map is copied (nil if empty).
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &ScaffoldError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a ScaffoldError.
func GetCode(err error) Code {
	var se *ScaffoldError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// AsScaffoldError returns (*ScaffoldError, true) if err is or wraps a ScaffoldError.
func AsScaffoldError(err error) (*ScaffoldError, bool) {
	var se *ScaffoldError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// Message returns the human-readable message of err: the Msg of a
// ScaffoldError, with its cause appended when present, or err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	se, ok := AsScaffoldError(err)
	if !ok {
		return err.Error()
	}
	if se.Cause != nil {
		return se.Msg + ": " + se.Cause.Error()
	}
	return se.Msg
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the appropriate exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 130 for E_INTERRUPTED and 1 for
// all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err) {
	case EUsage:
		return 2
	case EInterrupted:
		return 130
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var se *ScaffoldError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "error_code: %s\n", se.Code)
		fmt.Fprintln(w, Message(se))
	} else {
		fmt.Fprintln(w, err.Error())
	}
}
