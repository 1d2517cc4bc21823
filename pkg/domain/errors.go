package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error. Callers switch on it to pick a response
// instead of walking a type hierarchy.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindPreconditionFailed
	KindUpstreamFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindUpstreamFailure:
		return "upstream_failure"
	default:
		return "unknown"
	}
}

// Error is a tagged domain failure. Code is stable and identifies the
// specific failure (e.g. "insufficient_funds"); Message is human readable.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// NewError creates a sentinel error.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so a sentinel matches every
// error derived from it with Wrapf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrapf derives an error from sentinel with a formatted message, keeping its kind and code.
func Wrapf(sentinel *Error, format string, args ...any) *Error {
	return &Error{
		Kind:    sentinel.Kind,
		Code:    sentinel.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     sentinel,
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = NewError(KindNotFound, "not_found", "resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = NewError(KindConflict, "already_exists", "resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = NewError(KindInvalidInput, "validation", "validation error")
	// ErrUnauthorized is returned when the caller identity cannot be established
	ErrUnauthorized = NewError(KindPreconditionFailed, "unauthorized", "unauthorized")
)
