package authz

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed failure taxonomy of the authorization pipeline.
type Kind int

const (
	KindUnauthenticated Kind = iota
	KindInvalidCredential
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Reason qualifies a DENY decision.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNotMember           Reason = "not_member"
	ReasonInsufficientRole    Reason = "insufficient_role"
	ReasonCannotRemoveCreator Reason = "cannot_remove_creator"
)

// Error is the typed failure raised by the resolver, locator and
// evaluator. The enforcement point is the only place that translates it
// into a caller-visible response.
type Error struct {
	Kind   Kind
	Reason Reason
	msg    string
	err    error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Message is the caller-safe text, without any wrapped cause.
func (e *Error) Message() string { return e.msg }

func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated, KindInvalidCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, msg: msg}
}

func InvalidCredential(msg string, err error) *Error {
	return &Error{Kind: KindInvalidCredential, msg: msg, err: err}
}

func Forbidden(reason Reason, msg string) *Error {
	return &Error{Kind: KindForbidden, Reason: reason, msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, msg: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, msg: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, msg: msg, err: err}
}

// AsError pulls the typed failure out of an error chain; anything
// untyped is treated as Internal so unexpected errors fail closed.
func AsError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("internal error", err)
}
