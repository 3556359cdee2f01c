package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrDuplicateMapping = errors.New("duplicate mapping")
	ErrNotFound         = errors.New("not found")
)

// Message returns the human-readable part of an engine error, without the
// sentinel prefix. Used for bulk details and HTTP responses.
func Message(err error) string {
	var me *mapError
	if errors.As(err, &me) {
		return me.msg
	}
	return err.Error()
}

type mapError struct {
	kind error
	msg  string
}

func (e *mapError) Error() string { return e.kind.Error() + ": " + e.msg }
func (e *mapError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error { return &mapError{kind: kind, msg: msg} }

// Errorf builds an error of the given kind (one of the Err* sentinels) whose
// Message is the formatted text.
func Errorf(kind error, format string, args ...any) error {
	return newError(kind, fmt.Sprintf(format, args...))
}
