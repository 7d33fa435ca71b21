package app

import "errors"

var (
	// ErrInvalidConfig is returned when a registration has the wrong shape.
	ErrInvalidConfig = errors.New("incorrect which-key config format")

	// ErrInvalidArgument is returned when a built-in command receives an
	// argument it cannot use.
	ErrInvalidArgument = errors.New("invalid command argument")
)

// NoBindingsMessage is shown when a menu has nothing to show.
const NoBindingsMessage = "No bindings is available"
