// Package apperr defines the stable failure kinds reported by the join-request
// workflow, group chat sync and notification feed.
//
// Services return *Error values; handlers map Kind to an HTTP status through
// HTTPStatus. Store-level errors are wrapped, never exposed verbatim.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable failure code.
type Kind string

const (
	KindNotFound         Kind = "NOT_FOUND"
	KindForbidden        Kind = "FORBIDDEN"
	KindConflict         Kind = "CONFLICT"
	KindInvalidOperation Kind = "INVALID_OPERATION"
	KindValidation       Kind = "VALIDATION_ERROR"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindInternal         Kind = "INTERNAL"
)

var statusByKind = map[Kind]int{
	KindNotFound:         http.StatusNotFound,
	KindForbidden:        http.StatusForbidden,
	KindConflict:         http.StatusConflict,
	KindInvalidOperation: http.StatusUnprocessableEntity,
	KindValidation:       http.StatusBadRequest,
	KindRateLimited:      http.StatusTooManyRequests,
	KindInternal:         http.StatusInternalServerError,
}

// Error carries a Kind, a caller-safe message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func NotFound(msg string) *Error         { return New(KindNotFound, msg) }
func Forbidden(msg string) *Error        { return New(KindForbidden, msg) }
func Conflict(msg string) *Error         { return New(KindConflict, msg) }
func InvalidOperation(msg string) *Error { return New(KindInvalidOperation, msg) }
func Validation(msg string) *Error       { return New(KindValidation, msg) }
func RateLimited(msg string) *Error      { return New(KindRateLimited, msg) }

// Internal wraps an infrastructure failure. The cause is kept for logging
// but the public message is fixed.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal error", Err: err}
}

// As extracts the *Error from err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the Kind of err. Errors that are not *Error are INTERNAL;
// nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e := As(err); e != nil {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(kind Kind) int {
	if s, ok := statusByKind[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}
