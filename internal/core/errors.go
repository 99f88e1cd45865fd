package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a core.Error for callers that need to branch on
// failure type without string-matching messages.
type ErrorKind string

const (
	KindInvalidInput   ErrorKind = "invalid_input"
	KindNotFound       ErrorKind = "not_found"
	KindArchived       ErrorKind = "archived"
	KindInvalidState   ErrorKind = "invalid_state"
	KindCycleDetected  ErrorKind = "cycle_detected"
	KindConflict       ErrorKind = "conflict"
	KindStorageError   ErrorKind = "storage_error"
	KindInternal       ErrorKind = "internal"
)

// Error is the stable error shape returned by every Command Surface
// operation. Collaborators branch on Kind and render Msg in their own
// language; Err carries the underlying cause for logs/diagnostics.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

func invalidInput(msg string) error  { return newErr(KindInvalidInput, msg, nil) }
func notFound(msg string) error      { return newErr(KindNotFound, msg, nil) }
func archived(msg string) error      { return newErr(KindArchived, msg, nil) }
func invalidState(msg string) error  { return newErr(KindInvalidState, msg, nil) }
func cycleDetected(msg string) error { return newErr(KindCycleDetected, msg, nil) }
func conflict(msg string) error      { return newErr(KindConflict, msg, nil) }

func storageError(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return newErr(KindStorageError, op, cause)
}

func internalError(op string, cause error) error {
	return newErr(KindInternal, op, cause)
}

// KindOf extracts the ErrorKind from err, defaulting to KindInternal for
// errors the core did not itself produce (e.g. a context cancellation).
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if err == nil {
		return ""
	}
	return KindInternal
}
