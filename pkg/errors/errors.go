// Package errors provides structured error types for graphscope.
//
// The taxonomy mirrors how failures are handled at runtime:
//   - INVALID_*, MISSING_*, UNSUPPORTED_*: configuration errors. They fail
//     fast at construction and are surfaced to the caller.
//   - DESTROYED: an operation was issued against a torn-down component.
//   - NOT_FOUND: a lookup for an unknown entity at an API boundary.
//
// Transient states (querying an index that is not built yet, removing an
// id that is no longer indexed, a rollback finishing after being
// superseded) are not errors at all and never reach this package.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeUnsupportedLayout, "no such layout: %s", name)
//	if errors.Is(err, errors.ErrCodeUnsupportedLayout) {
//	    // Handle configuration error
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Configuration errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeMissingContainer  Code = "MISSING_CONTAINER"
	ErrCodeUnsupportedLayout Code = "UNSUPPORTED_LAYOUT"
	ErrCodeInvalidGraph      Code = "INVALID_GRAPH"
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"

	// Lookup errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Lifecycle errors
	ErrCodeDestroyed Code = "DESTROYED"
	ErrCodeNotLoaded Code = "NOT_LOADED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Destroyed is the error every public operation of a torn-down component
// returns. component names the receiver, op the rejected operation.
func Destroyed(component, op string) *Error {
	return New(ErrCodeDestroyed, "%s was destroyed, %s can't be called", component, op)
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
