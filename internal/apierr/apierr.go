package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable codes surfaced in error envelopes.
const (
	CodeValidation         = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeServiceUnavailable = "service_unavailable"
	CodeUpstreamTimeout    = "upstream_timeout"
	CodeProvider           = "provider_error"
	CodeInternal           = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func ServiceUnavailable(format string, args ...any) *Error {
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable, fmt.Errorf(format, args...))
}

func UpstreamTimeout(format string, args ...any) *Error {
	return New(http.StatusGatewayTimeout, CodeUpstreamTimeout, fmt.Errorf(format, args...))
}

// Provider wraps a non-2xx reply from an LLM backend, carrying the upstream
// status so handlers can pass it through.
func Provider(status int, format string, args ...any) *Error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return New(status, CodeProvider, fmt.Errorf(format, args...))
}

// StatusOf resolves the HTTP status a handler should respond with.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeOf resolves the machine code for an error, defaulting to internal_error.
func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return CodeInternal
}

func HasCode(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
