package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error unwraps to exactly one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrExpired      = errors.New("expired")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a domain error carrying a human-readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NotFound reports a missing document, e.g. NotFound("donation").
func NotFound(what string) error {
	return &Error{Kind: ErrNotFound, Message: what + " not found"}
}

// InvalidState reports a document that is not in the state an operation needs.
func InvalidState(message string) error {
	return &Error{Kind: ErrInvalidState, Message: message}
}

// Expired reports an elapsed pickup window.
func Expired(message string) error {
	return &Error{Kind: ErrExpired, Message: message}
}

// Unauthorized reports a caller that may not act on a document.
func Unauthorized(message string) error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

// Validationf reports malformed input.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}
