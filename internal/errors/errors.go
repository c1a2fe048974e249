// Package errors provides standardized domain errors with codes for the vitrine API.
//
// Usage:
//
//	// In engine packages - return typed errors
//	if len(images) == 0 {
//	    return errors.Validation("at least one image is required")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrAnalysisInProgress) {
//	    return huma.Error409Conflict(err.Error())
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeRemoteAnalysisFailed:
//	        ...
//	    }
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
	CodeNotFound             Code = "NOT_FOUND"
	CodeValidation           Code = "VALIDATION"
	CodeConflict             Code = "CONFLICT"
	CodeInternal             Code = "INTERNAL"
	CodeAnalysisInProgress   Code = "ANALYSIS_IN_PROGRESS"
	CodeRemoteAnalysisFailed Code = "REMOTE_ANALYSIS_FAILED"
	CodeUpstream             Code = "UPSTREAM"
	CodePayloadTooLarge      Code = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia     Code = "UNSUPPORTED_MEDIA"
	CodeRateLimited          Code = "RATE_LIMITED"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeAnalysisInProgress:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeRemoteAnalysisFailed, CodeUpstream:
		return http.StatusBadGateway
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
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
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation           = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict             = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal             = &Error{Code: CodeInternal, Message: "internal error"}
	ErrAnalysisInProgress   = &Error{Code: CodeAnalysisInProgress, Message: "an analysis is already in progress"}
	ErrRemoteAnalysisFailed = &Error{Code: CodeRemoteAnalysisFailed, Message: "remote analysis failed"}
	ErrUpstream             = &Error{Code: CodeUpstream, Message: "upstream request failed"}
	ErrPayloadTooLarge      = &Error{Code: CodePayloadTooLarge, Message: "payload too large"}
	ErrUnsupportedMedia     = &Error{Code: CodeUnsupportedMedia, Message: "unsupported media type"}
	ErrRateLimited          = &Error{Code: CodeRateLimited, Message: "too many requests"}
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

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
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

// RemoteAnalysisFailed creates a remote analysis error carrying the message shown to the user.
func RemoteAnalysisFailed(msg string) *Error {
	return &Error{Code: CodeRemoteAnalysisFailed, Message: msg}
}

// Upstream creates an upstream failure error.
func Upstream(msg string) *Error {
	return &Error{Code: CodeUpstream, Message: msg}
}

// PayloadTooLargef creates a payload too large error with formatted message.
func PayloadTooLargef(format string, args ...any) *Error {
	return &Error{Code: CodePayloadTooLarge, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedMediaf creates an unsupported media error with formatted message.
func UnsupportedMediaf(format string, args ...any) *Error {
	return &Error{Code: CodeUnsupportedMedia, Message: fmt.Sprintf(format, args...)}
}

// RateLimited creates a too many requests error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
