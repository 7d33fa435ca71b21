package binding

import (
	"errors"
	"fmt"
)

// ErrInvalidBinding is matched by every binding configuration error.
var ErrInvalidBinding = errors.New("invalid binding")

// UnsupportedTypeError is returned for a record with an unknown type.
type UnsupportedTypeError struct {
	// Key is the record's key.
	Key string
	// Type is the unsupported type.
	Type Type
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("binding %q: unsupported type %q", e.Key, e.Type)
}

// Is implements error matching for UnsupportedTypeError.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrInvalidBinding
}

// MissingFieldError is returned when a record lacks the payload its type
// requires.
type MissingFieldError struct {
	// Key is the record's key.
	Key string
	// Type is the record's type.
	Type Type
	// Field is the missing field.
	Field string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("binding %q: type %q requires %q", e.Key, e.Type, e.Field)
}

// Is implements error matching for MissingFieldError.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrInvalidBinding
}
