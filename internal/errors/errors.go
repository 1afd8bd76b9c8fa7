// Package errors provides standardized domain errors with codes for the Footprints API.
//
// Usage:
//
//	// In services - return typed errors
//	if len(hits) == 0 {
//	    return errors.NotFoundf("waypoint %s has no indexed content", id)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    // render 404
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeInternal      Code = "INTERNAL"

	// CodeInconsistentIndex marks lookups that found more than one search
	// document where the index invariants allow at most one. This is index
	// corruption, not a user error.
	CodeInconsistentIndex Code = "INCONSISTENT_INDEX"

	// CodeSyncNoOp marks a synchronization whose source entity vanished
	// between the triggering event and the index write. Callers swallow
	// it; events legitimately race with deletions.
	CodeSyncNoOp Code = "SYNC_NOOP"

	// CodeSyncFailure marks a rejected or partially applied bulk batch. The
	// triggering domain mutation has already committed and is never rolled
	// back; the failure is surfaced to operators only.
	CodeSyncFailure Code = "SYNC_FAILURE"

	// CodeEngineUnavailable marks transport-level search engine failures.
	CodeEngineUnavailable Code = "ENGINE_UNAVAILABLE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeConflict:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeEngineUnavailable:
		return http.StatusServiceUnavailable
	default:
		// Inconsistent index and sync failures are internal by definition.
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists     = &Error{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
	ErrInconsistentIndex = &Error{Code: CodeInconsistentIndex, Message: "inconsistent search index"}
	ErrSyncNoOp          = &Error{Code: CodeSyncNoOp, Message: "nothing to synchronize"}
	ErrSyncFailure       = &Error{Code: CodeSyncFailure, Message: "search synchronization failed"}
	ErrEngineUnavailable = &Error{Code: CodeEngineUnavailable, Message: "search engine unavailable"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates an already exists error.
func AlreadyExists(msg string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// InconsistentIndex creates an inconsistent index error.
func InconsistentIndex(msg string) *Error {
	return &Error{Code: CodeInconsistentIndex, Message: msg}
}

// InconsistentIndexf creates an inconsistent index error with formatted message.
func InconsistentIndexf(format string, args ...any) *Error {
	return &Error{Code: CodeInconsistentIndex, Message: fmt.Sprintf(format, args...)}
}

// SyncNoOpf creates a no-op marker for a vanished synchronization source.
func SyncNoOpf(format string, args ...any) *Error {
	return &Error{Code: CodeSyncNoOp, Message: fmt.Sprintf(format, args...)}
}

// SyncFailure creates a synchronization failure error.
func SyncFailure(msg string) *Error {
	return &Error{Code: CodeSyncFailure, Message: msg}
}

// EngineUnavailable creates an engine unavailable error.
func EngineUnavailable(msg string) *Error {
	return &Error{Code: CodeEngineUnavailable, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
