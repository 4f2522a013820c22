// Package errs provides structured error types shared by registry clients
// and the version cache.
//
// It mirrors the hierarchical error-code convention used throughout this
// codebase: a Code identifies the category machine-readably, an *Error
// carries a human message plus an optional wrapped cause, and Is/GetCode
// let callers branch on category without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	// CodeNotFound marks a 404/410 response or a cache miss treated as
	// definitively absent.
	CodeNotFound Code = "NOT_FOUND"
	// CodeRateLimited marks a 429, or a 403 with X-RateLimit-Remaining: 0.
	CodeRateLimited Code = "RATE_LIMITED"
	// CodeNetwork marks a transport failure: timeout, DNS, connection reset.
	CodeNetwork Code = "NETWORK"
	// CodeInvalidResponse marks a response that could not be parsed into
	// the expected shape, or any other status code.
	CodeInvalidResponse Code = "INVALID_RESPONSE"
	// CodeStorage marks a disk I/O failure in the cache.
	CodeStorage Code = "STORAGE"
	// CodeLockPoisoned marks a poisoned in-process cache writer mutex.
	CodeLockPoisoned Code = "LOCK_POISONED"
	// CodeInternal marks a programming error or unexpected state.
	CodeInternal Code = "INTERNAL"
)

// Error is a structured error with a code, message, and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/errors.As against the wrapped cause.
func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code, wrapping cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coder is implemented by both *Error and *RateLimited.
type coder interface {
	Code() Code
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the code from err, or "" if err carries none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// RateLimited carries the retry-after hint from a 429/403 response.
type RateLimited struct {
	RetryAfterSeconds int
}

func (e *RateLimited) Error() string {
	if e.RetryAfterSeconds > 0 {
		return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfterSeconds)
	}
	return "rate limited"
}

func (e *RateLimited) Code() Code { return CodeRateLimited }
