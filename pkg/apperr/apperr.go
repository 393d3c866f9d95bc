// Package apperr defines the error kinds shared by the booking services.
//
// Every domain failure is an *Error tagged with a Kind. Callers match on the
// kind with errors.Is against the package sentinels, or against a more
// specific sentinel declared by a service (same kind plus an entity name).
package apperr

import (
	"errors"
	"strings"
)

type Kind int

const (
	Internal Kind = iota
	InvalidInterval
	NotFound
	Conflict
	OutsideAvailability
	InvalidTransition
	Busy
	PermissionDenied
	InvalidReference
)

var kindNames = map[Kind]string{
	Internal:            "internal",
	InvalidInterval:     "invalid_interval",
	NotFound:            "not_found",
	Conflict:            "conflict",
	OutsideAvailability: "outside_availability",
	InvalidTransition:   "invalid_transition",
	Busy:                "busy",
	PermissionDenied:    "permission_denied",
	InvalidReference:    "invalid_reference",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Error is a tagged domain error.
type Error struct {
	Kind   Kind
	Entity string
	Msg    string
	// RefID names the record that caused the failure, e.g. the colliding
	// appointment on a conflict.
	RefID string
	Err   error
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// NewEntity builds an error scoped to an entity name, e.g. ("appointment", NotFound).
func NewEntity(kind Kind, entity, msg string) *Error {
	return &Error{Kind: kind, Entity: entity, Msg: msg}
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Msg != "" {
		sb.WriteString(e.Msg)
	} else {
		sb.WriteString(e.Kind.String())
	}
	if e.RefID != "" {
		sb.WriteString(" (ref ")
		sb.WriteString(e.RefID)
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. A target without
// an entity matches every entity of that kind; an entity sentinel matches
// only itself and its WithRef/Wrap copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Entity == "" {
		return true
	}
	return t.Entity == e.Entity && (t.Msg == "" || t.Msg == e.Msg)
}

// WithRef returns a copy of e referring to id.
func (e *Error) WithRef(id string) *Error {
	cp := *e
	cp.RefID = id
	return &cp
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// RefOf returns the RefID of the first *Error in err's chain.
func RefOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.RefID
	}
	return ""
}

var (
	ErrInvalidInterval     = New(InvalidInterval, "invalid interval")
	ErrNotFound            = New(NotFound, "not found")
	ErrConflict            = New(Conflict, "conflict")
	ErrOutsideAvailability = New(OutsideAvailability, "outside availability")
	ErrInvalidTransition   = New(InvalidTransition, "invalid status transition")
	ErrBusy                = New(Busy, "resource busy, retry later")
	ErrPermissionDenied    = New(PermissionDenied, "permission denied")
	ErrInvalidReference    = New(InvalidReference, "invalid reference")
)
