package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownSortOrder is returned for an unrecognized sort order name.
	ErrUnknownSortOrder = errors.New("unknown sort order")

	// ErrPathNotFound is returned when an override's key path does not
	// resolve.
	ErrPathNotFound = errors.New("override path not found")
)

// InvalidOverrideError is returned for an override that inserts a binding
// without a name or a type.
type InvalidOverrideError struct {
	// Keys is the override's key path.
	Keys []string
}

// Error implements the error interface.
func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("override %v: name or type is undefined", e.Keys)
}
