// Package apperror carries a stable error kind and a client-facing message
// from services to the HTTP layer.
package apperror

import (
	"context"
	"errors"
	"net/http"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindPaymentDeclined   Kind = "PAYMENT_DECLINED"
	KindTimeout           Kind = "TIMEOUT"
	KindInternal          Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindUnauthorized:      http.StatusUnauthorized,
	KindForbidden:         http.StatusForbidden,
	KindNotFound:          http.StatusNotFound,
	KindConflict:          http.StatusConflict,
	KindInvalidTransition: http.StatusBadRequest,
	KindPaymentDeclined:   http.StatusPaymentRequired,
	KindTimeout:           http.StatusGatewayTimeout,
	KindInternal:          http.StatusInternalServerError,
}

// Error is a classified application error. Code narrows Kind for clients
// (e.g. BOOKING_OVERLAP under CONFLICT) and defaults to the kind itself.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	if code == "" {
		code = string(kind)
	}
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by code so that wrapped copies still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Kind == t.Kind
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e with a different client message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func (e *Error) HTTPStatus() int {
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func Validation(msg string) *Error   { return New(KindValidation, "", msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, "", msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, "", msg) }
func Conflict(msg string) *Error     { return New(KindConflict, "", msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, "", msg) }

func InvalidTransition(msg string) *Error {
	return New(KindInvalidTransition, "", msg)
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: string(KindInternal), Message: "internal server error", Err: cause}
}

// From classifies any error. Unknown errors become internal errors, deadline
// and cancellation errors become timeouts.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Code: string(KindTimeout), Message: "request deadline exceeded", Err: err}
	}
	return Internal(err)
}

func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}
