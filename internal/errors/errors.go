// Package errors provides code-based domain errors for the tracker API.
//
// Services return typed errors; the HTTP layer maps the Code to a status:
//
//	if p == nil {
//	    return errors.NotFoundf("participant %s not found", id)
//	}
//
//	if errors.Is(err, errors.ErrUpstream) {
//	    // remote participant API failed
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard library helpers, so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Code is the machine-readable error code sent in API error bodies.
type Code string

const (
	CodeNotFound           Code = "NOT_FOUND"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeValidation         Code = "VALIDATION"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeUpstream           Code = "UPSTREAM"
	CodeUnavailable        Code = "UNAVAILABLE"
	CodeInternal           Code = "INTERNAL"
)

var statusByCode = map[Code]int{
	CodeNotFound:           http.StatusNotFound,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeValidation:         http.StatusBadRequest,
	CodeRateLimited:        http.StatusTooManyRequests,
	CodeUpstream:           http.StatusBadGateway,
	CodeUnavailable:        http.StatusServiceUnavailable,
	CodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the status for c; unknown codes are 500.
func (c Code) HTTPStatus() int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// CodeForStatus picks the generic code for an HTTP status produced outside the domain
// layer (router 404s, huma validation, body limits).
func CodeForStatus(status int) Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return CodeNotFound
	case http.StatusTooManyRequests:
		return CodeRateLimited
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return CodeUpstream
	case http.StatusServiceUnavailable:
		return CodeUnavailable
	}
	return CodeInternal
}

// Error is a domain error. Message is safe to show to the operator; cause is not sent.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same Code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int { return e.Code.HTTPStatus() }

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	c := *e
	c.Details = details
	return &c
}

func sentinel(code Code, msg string) *Error { return &Error{Code: code, Message: msg} }

// Sentinels for errors.Is; match by code only.
var (
	ErrNotFound           = sentinel(CodeNotFound, "not found")
	ErrUnauthorized       = sentinel(CodeUnauthorized, "unauthorized")
	ErrForbidden          = sentinel(CodeForbidden, "forbidden")
	ErrValidation         = sentinel(CodeValidation, "validation error")
	ErrRateLimited        = sentinel(CodeRateLimited, "too many requests")
	ErrInvalidCredentials = sentinel(CodeInvalidCredentials, "invalid credentials")
	ErrTokenExpired       = sentinel(CodeTokenExpired, "token expired")
	ErrUpstream           = sentinel(CodeUpstream, "upstream error")
	ErrUnavailable        = sentinel(CodeUnavailable, "unavailable")
	ErrInternal           = sentinel(CodeInternal, "internal error")
)

func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(msg string) *Error { return sentinel(CodeUnauthorized, msg) }

func Validation(msg string) *Error { return sentinel(CodeValidation, msg) }

func Validationf(format string, args ...any) *Error {
	return sentinel(CodeValidation, fmt.Sprintf(format, args...))
}

// ValidationWithDetails carries per-field messages keyed by field or query name.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

func RateLimited(msg string) *Error { return sentinel(CodeRateLimited, msg) }

func InvalidCredentials(msg string) *Error { return sentinel(CodeInvalidCredentials, msg) }

func TokenExpired(msg string) *Error { return sentinel(CodeTokenExpired, msg) }

// Upstream wraps a remote API failure; msg is what the operator sees.
func Upstream(msg string, cause error) *Error {
	return &Error{Code: CodeUpstream, Message: msg, cause: cause}
}

func Unavailable(msg string) *Error { return sentinel(CodeUnavailable, msg) }

// Wrap attaches a code and operator-facing message to err.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}
