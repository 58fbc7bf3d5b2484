// Package errors provides structured error types for chartdeck.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code]. Front-ends branch on codes instead of sentinel values: the CLI picks
// a warning or an exit status, the HTTP server picks a status code, and the
// terminal UI decides whether to show a blocking notice.
//
// # Error Codes
//
//   - INVALID_*: input validation failures (amount, argument, kind, filename)
//   - *_FAILED: a pipeline step failed (render, snapshot, vector, assembly)
//   - NO_CHARTS, BUSY: state conflicts of the current session
//   - NOT_FOUND, SESSION_NOT_FOUND: lookups
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidAmount, "amount %d out of range", n)
//	if errors.Is(err, errors.ErrCodeInvalidAmount) {
//	    // warn the user, keep the previous charts
//	}
//
//	err := errors.Wrap(errors.ErrCodeSnapshotFailed, cause, "chart %d", idx)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidAmount   Code = "INVALID_AMOUNT"
	ErrCodeInvalidKind     Code = "INVALID_KIND"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Pipeline step failures
	ErrCodeRenderFailed   Code = "RENDER_FAILED"
	ErrCodeSnapshotFailed Code = "SNAPSHOT_FAILED"
	ErrCodeVectorFailed   Code = "VECTOR_FAILED"
	ErrCodeAssembly       Code = "ASSEMBLY_FAILED"

	// Session state errors
	ErrCodeNoCharts Code = "NO_CHARTS"
	ErrCodeBusy     Code = "BUSY"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsWarning reports whether err is a condition the user should be warned
// about rather than a failure of the program: an invalid amount, an empty
// export, or an action attempted while another one is running.
func IsWarning(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidAmount, ErrCodeNoCharts, ErrCodeBusy:
		return true
	}
	return false
}
