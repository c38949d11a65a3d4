// Package errors provides the unified error type and factory functions for
// DocSight.  Every layer of the application (domain, application,
// infrastructure, interfaces) uses AppError as the single carrier for
// structured error information, enabling consistent HTTP responses and
// logging.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type used throughout DocSight.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers of the application.
//
// Usage:
//
//	return errors.New(errors.ErrCodeSessionNotFound, "session abc not found")
//	return errors.Wrap(storeErr, errors.ErrCodeStorageError, "failed to load view state")
//	return errors.Validation("annotation range inverted").WithDetail("start=9 end=4")
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure
	// category.
	Code ErrorCode

	// Message is the primary human-readable description of the error,
	// suitable for inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (document keys, annotation ids,
	// offsets) that aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error that triggered this AppError, enabling
	// errors.Is / errors.As traversal of the full error chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when
// Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error, enabling errors.Is and errors.As
// to traverse the full error chain.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set to the
// supplied string.  It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that records err as its cause.  A nil err
// yields a nil result so call sites can wrap unconditionally.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// Convenience factories for the most common categories.

func Internal(message string) *AppError     { return New(ErrCodeInternal, message) }
func NotFound(message string) *AppError     { return New(ErrCodeNotFound, message) }
func Validation(message string) *AppError   { return New(ErrCodeValidation, message) }
func Conflict(message string) *AppError     { return New(ErrCodeConflict, message) }
func Unauthorized(message string) *AppError { return New(ErrCodeUnauthorized, message) }
func Forbidden(message string) *AppError    { return New(ErrCodeForbidden, message) }

// CodeOf extracts the ErrorCode from err.  Non-AppError values (including
// wrapped ones with no AppError in the chain) report ErrCodeInternal; nil
// reports the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// hasCode reports whether any AppError in err's chain carries one of codes.
func hasCode(err error, codes ...ErrorCode) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	for _, c := range codes {
		if appErr.Code == c {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err represents a missing entity.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound, ErrCodeSessionNotFound, ErrCodeAnnotationQuoteNotFound)
}

// IsValidation reports whether err represents invalid caller input.
func IsValidation(err error) bool {
	return hasCode(err,
		ErrCodeValidation, ErrCodeBadRequest,
		ErrCodeAnnotationRangeInvalid, ErrCodeViewStateKeyMissing,
		ErrCodeCollectionUnknown, ErrCodeIndexOutOfBounds,
		ErrCodeGestureNotRecognized, ErrCodeFeedbackTypeInvalid)
}

// IsConflict reports whether err represents a state conflict.
func IsConflict(err error) bool { return hasCode(err, ErrCodeConflict) }

// IsUnauthorized reports whether err represents a missing or bad credential.
func IsUnauthorized(err error) bool { return hasCode(err, ErrCodeUnauthorized) }

// IsForbidden reports whether err represents an authorization failure.
func IsForbidden(err error) bool { return hasCode(err, ErrCodeForbidden) }

// IsStale reports whether err represents a freshness-window violation.
func IsStale(err error) bool {
	return hasCode(err, ErrCodeViewStateStale, ErrCodeScrollSnapshotStale)
}

// HTTPStatus returns the HTTP status for err, traversing the error chain for
// an AppError.  Plain errors map to 500; nil maps to 200.
func HTTPStatus(err error) int {
	if err == nil {
		return 200
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code.HTTPStatus()
	}
	return 500
}
