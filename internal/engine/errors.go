package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so transports can map it to a status code
// without inspecting message text.
type Kind string

const (
	// KindValidation marks malformed input rejected before any store access.
	KindValidation Kind = "validation"
	// KindNotFound marks an unknown student or intervention.
	KindNotFound Kind = "not_found"
	// KindConflict marks an operation that is illegal in the current state,
	// such as completing an already-completed intervention.
	KindConflict Kind = "conflict"
	// KindDependency marks an unreachable collaborator (database, webhook).
	KindDependency Kind = "dependency"
)

// Error is a domain error with a kind and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func validationErr(format string, args ...any) *Error {
	return newError(KindValidation, fmt.Sprintf(format, args...), nil)
}

func notFoundErr(format string, args ...any) *Error {
	return newError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func conflictErr(format string, args ...any) *Error {
	return newError(KindConflict, fmt.Sprintf(format, args...), nil)
}

func dependencyErr(msg string, err error) *Error {
	return newError(KindDependency, msg, err)
}

// KindOf returns the kind of err, or an empty Kind when err is not a domain
// error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
