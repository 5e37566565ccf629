// Package apperr is the error taxonomy shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindBadNonce       Kind = "bad_nonce"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindUpstream       Kind = "upstream"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by kind and message so that wrapped sentinels
// still compare equal after Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a sentinel, keeping errors.Is(err, sentinel) true.
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

var (
	ErrBadNonce       = New(KindBadNonce, "bad nonce")
	ErrBadSignature   = New(KindAuthentication, "verify fail")
	ErrUserNotFound   = New(KindNotFound, "no user")
	ErrNoClaimable    = New(KindValidation, "nothing to claim")
	ErrAlreadyClaimed = New(KindConflict, "already claimed")
	ErrTickTooSoon    = New(KindValidation, "tick too frequent")
	ErrDailyCap       = New(KindValidation, "daily point cap reached")
)

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindBadNonce:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage hides upstream causes from API clients.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindUpstream {
		return "internal server error"
	}
	return e.Message
}
