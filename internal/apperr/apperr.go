// Package apperr implements the error taxonomy: a small set of
// categorized kinds, each carrying an HTTP status and a numeric code range,
// translated at the HTTP boundary into the service's JSON error envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the categorized error kinds.
type Kind int

const (
	KindConfigNotFound Kind = iota
	KindConfigExists
	KindInvalidConfig
	KindSequenceExhausted
	KindUnauthorized
	KindForbidden
	KindBadRequest
	KindNotFound
	KindRateLimited
	KindStorage
	KindInternal
)

// codeRange mirrors the reference's error/codes.rs numbering: 1xxx
// configuration, 2xxx auth, 3xxx validation, 4xxx resource, 5xxx internal.
var codeRange = map[Kind]int{
	KindConfigNotFound:    1001,
	KindConfigExists:      1002,
	KindInvalidConfig:     1003,
	KindSequenceExhausted: 1004,
	KindUnauthorized:      2001,
	KindForbidden:         2002,
	KindBadRequest:        3001,
	KindNotFound:          4001,
	KindRateLimited:       4002,
	KindStorage:           5001,
	KindInternal:          5002,
}

var statusFor = map[Kind]int{
	KindConfigNotFound:    http.StatusNotFound,
	KindConfigExists:      http.StatusConflict,
	KindInvalidConfig:     http.StatusBadRequest,
	KindSequenceExhausted: http.StatusServiceUnavailable,
	KindUnauthorized:      http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindBadRequest:        http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindRateLimited:       http.StatusTooManyRequests,
	KindStorage:           http.StatusInternalServerError,
	KindInternal:          http.StatusInternalServerError,
}

// Error is the application-level error type. All service code returns this
// (or wraps a lower-level error with one of the constructors below) so that
// the HTTP layer never needs to inspect anything but Kind.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Code returns the taxonomy code (e.g. 1001 for ConfigNotFound).
func (e *Error) Code() int { return codeRange[e.Kind] }

// Status returns the HTTP status this kind maps to.
func (e *Error) Status() int { return statusFor[e.Kind] }

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ConfigNotFound(name string) *Error {
	return newf(KindConfigNotFound, "configuration not found: %s", name)
}

func ConfigExists(name string) *Error {
	return newf(KindConfigExists, "configuration already exists: %s", name)
}

func InvalidConfig(reason string) *Error {
	return newf(KindInvalidConfig, "invalid configuration: %s", reason)
}

func SequenceExhausted(name string) *Error {
	return newf(KindSequenceExhausted, "sequence exhausted for: %s", name)
}

func Unauthorized() *Error {
	return newf(KindUnauthorized, "authentication failed")
}

func Forbidden() *Error {
	return newf(KindForbidden, "insufficient permissions")
}

func BadRequest(reason string) *Error {
	return newf(KindBadRequest, "invalid request: %s", reason)
}

func NotFound(what string) *Error {
	return newf(KindNotFound, "resource not found: %s", what)
}

func RateLimited() *Error {
	return newf(KindRateLimited, "rate limit exceeded")
}

// Storage wraps a lower-level storage error (I/O, lock, codec) as a
// transport-neutral 5001.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorage, Message: fmt.Sprintf("storage error: %v", cause), cause: cause}
}

func Internal(format string, args ...any) *Error {
	return newf(KindInternal, "internal error: "+format, args...)
}

// As extracts an *Error from err, or reports ok=false if err is not (or does
// not wrap) one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
