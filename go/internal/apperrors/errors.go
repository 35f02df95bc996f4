// Package apperrors defines the error taxonomy shared by the session
// managers. Every manager method returns one of these kinds so the transport
// layer can map failures to a response code without string matching.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a manager failure.
type Kind int

const (
	// KindUnknown is the zero value for errors that did not originate here.
	KindUnknown Kind = iota
	// KindValidation signals missing or malformed input.
	KindValidation
	// KindNotFound signals an absent session, proposal, participant or meal.
	KindNotFound
	// KindPermission signals a non-member or non-host action.
	KindPermission
	// KindPhase signals an action invalid for the session's current status.
	KindPhase
	// KindDeadline signals an action attempted after the phase deadline.
	KindDeadline
	// KindConflict signals a duplicate active session, duplicate proposal or
	// an already-recorded confirmation.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindPhase:
		return "phase"
	case KindDeadline:
		return "deadline"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified error. It supports errors.As so callers can recover
// the Kind anywhere up the wrap chain.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// Permission builds a KindPermission error.
func Permission(format string, args ...any) *Error {
	return &Error{Kind: KindPermission, Msg: fmt.Sprintf(format, args...)}
}

// Phase builds a KindPhase error.
func Phase(format string, args ...any) *Error {
	return &Error{Kind: KindPhase, Msg: fmt.Sprintf(format, args...)}
}

// Deadline builds a KindDeadline error.
func Deadline(format string, args ...any) *Error {
	return &Error{Kind: KindDeadline, Msg: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
