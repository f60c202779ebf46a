// Package errors provides structured error types for haplonet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the core packages and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or edit validation failures (graph left unchanged)
//   - LAYOUT_*: Numerical problems recovered inside the layout engine
//   - NOT_FOUND: Referenced node, edge or group does not exist
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidMerge, "cannot merge %s into itself", id)
//	if errors.Is(err, errors.ErrCodeInvalidMerge) {
//	    // Report the rejected edit
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode tree %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors. Import fails before any graph is built.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Structural edit errors. The graph is left exactly as it was.
	ErrCodeInvalidMerge     Code = "INVALID_MERGE"
	ErrCodeInvalidOperation Code = "INVALID_OPERATION"
	ErrCodeNothingToUndo    Code = "NOTHING_TO_UNDO"

	// Layout errors. Recovered locally, never fatal.
	ErrCodeLayoutDegenerate Code = "LAYOUT_DEGENERATE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

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

// DegenerateError reports a non-finite position produced by relaxation.
// The layout engine recovers from it by reseeding the node; it is surfaced
// to callers only through observability hooks and debug logs.
type DegenerateError struct {
	NodeID    string
	Iteration int
}

// Error implements the error interface.
func (e *DegenerateError) Error() string {
	return fmt.Sprintf("non-finite position for node %s at iteration %d", e.NodeID, e.Iteration)
}

// Code returns the error code for this error type.
func (e *DegenerateError) Code() Code {
	return ErrCodeLayoutDegenerate
}
