package command

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned when invoking a name with no handler.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("nil command handler")

	// ErrStateClosed is returned when a Lua command runs after Close.
	ErrStateClosed = errors.New("lua state is closed")
)

// Error wraps a failure of a named command.
type Error struct {
	// Name is the failing command.
	Name string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("command %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError is returned when a handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("command panicked: %v", e.Value)
}
