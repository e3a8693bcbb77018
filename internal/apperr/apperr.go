// Package apperr defines the closed set of failures the service layer can
// report. The HTTP boundary maps each Kind to a status code exactly once.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind uint8

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInvalidCredentials
	KindConflict
	KindNotFound
	KindForbidden
	KindInvalidInput
	KindAlreadyAccepted
	KindInvalidTarget
)

var kindCodes = map[Kind]string{
	KindInternal:           "internal",
	KindUnauthenticated:    "unauthenticated",
	KindInvalidCredentials: "invalid_credentials",
	KindConflict:           "conflict",
	KindNotFound:           "not_found",
	KindForbidden:          "forbidden",
	KindInvalidInput:       "invalid_input",
	KindAlreadyAccepted:    "already_accepted",
	KindInvalidTarget:      "invalid_target",
}

// String returns the machine-readable code sent to clients.
func (k Kind) String() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindInternal]
}

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, apperr.ErrNotFound) works regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrAlreadyAccepted    = &Error{Kind: KindAlreadyAccepted}
	ErrInvalidTarget      = &Error{Kind: KindInvalidTarget}
)

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind that keeps err as its cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind carried by err, or KindInternal when err is not an
// application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func InvalidInput(message string) *Error    { return New(KindInvalidInput, message) }
func AlreadyAccepted(message string) *Error { return New(KindAlreadyAccepted, message) }
func InvalidTarget(message string) *Error   { return New(KindInvalidTarget, message) }

// InvalidCredentials is returned for every login failure, whatever the cause.
func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid credentials")
}

// Internal wraps an unexpected failure. The message is generic on purpose;
// the cause is only logged server side.
func Internal(err error) *Error {
	return Wrap(KindInternal, err, "Internal Server Error")
}
