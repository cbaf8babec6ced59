package actions

import (
	"errors"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrInvalidKind   = errors.New("not an interval action type")
	ErrOverlap       = errors.New("an open action of this type already exists")
	ErrAlreadyClosed = errors.New("action already closed")
	ErrWrongKind     = errors.New("operation not allowed for this action type")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrNetwork       = errors.New("network error")
	ErrUnknownKind   = errors.New("unknown action type")
)

// Error acompaña un error de dominio con la entidad afectada, para que el
// operador pueda reintentar exactamente ese niño o esa acción.
type Error struct {
	Op       string
	ChildID  string
	ActionID string
	Err      error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("actions")
	if e.Op != "" {
		sb.WriteString(" " + e.Op)
	}
	if e.ChildID != "" {
		sb.WriteString(" child=" + e.ChildID)
	}
	if e.ActionID != "" {
		sb.WriteString(" action=" + e.ActionID)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op, childID, actionID string, err error) error {
	return &Error{Op: op, ChildID: childID, ActionID: actionID, Err: err}
}

// WithEntity envuelve err con la entidad si todavía no la lleva.
func WithEntity(op, childID, actionID string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(op, childID, actionID, err)
}

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindInvalidKind   ErrorKind = "invalid_kind"
	KindOverlap       ErrorKind = "overlap"
	KindAlreadyClosed ErrorKind = "already_closed"
	KindWrongKind     ErrorKind = "wrong_kind"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindNetwork       ErrorKind = "network"
	KindUnknownKind   ErrorKind = "unknown_kind"
	KindUnknown       ErrorKind = "unknown"
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrValidation, KindValidation},
	{ErrInvalidKind, KindInvalidKind},
	{ErrOverlap, KindOverlap},
	{ErrAlreadyClosed, KindAlreadyClosed},
	{ErrWrongKind, KindWrongKind},
	{ErrConflict, KindConflict},
	{ErrNotFound, KindNotFound},
	{ErrNetwork, KindNetwork},
	{ErrUnknownKind, KindUnknownKind},
}

// KindOf clasifica err según el sentinel que envuelve.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindUnknown
}

// Retryable: errores transitorios que se resuelven repitiendo la misma petición.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrNotFound)
}
