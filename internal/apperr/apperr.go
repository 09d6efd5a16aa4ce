// Package apperr carries the error taxonomy the HTTP layer maps onto
// status codes: validation, conflict, permission and not-found errors are
// surfaced to the caller with a descriptive message; everything else is a
// generic server error.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindPermission
	KindNotFound
	KindUnauthorized
)

type Error struct {
	Kind Kind
	// MessageID is the i18n message ID shown to the caller.
	MessageID string
	// Err is the underlying cause, logged but never sent to the caller.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.MessageID, e.Err)
	}
	return e.MessageID
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, messageID string) *Error {
	return &Error{Kind: kind, MessageID: messageID}
}

func Wrap(kind Kind, messageID string, err error) *Error {
	return &Error{Kind: kind, MessageID: messageID, Err: err}
}

func Validation(messageID string) *Error   { return New(KindValidation, messageID) }
func Conflict(messageID string) *Error     { return New(KindConflict, messageID) }
func Permission(messageID string) *Error   { return New(KindPermission, messageID) }
func NotFound(messageID string) *Error     { return New(KindNotFound, messageID) }
func Unauthorized(messageID string) *Error { return New(KindUnauthorized, messageID) }

// KindOf returns the taxonomy kind of err, or KindInternal when err is not
// an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageIDOf returns the caller-facing message ID of err, or the generic
// server-error ID for untyped errors.
func MessageIDOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.MessageID
	}
	return "error.server"
}
