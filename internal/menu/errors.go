package menu

import "errors"

var (
	// ErrClosed is returned when a menu is ended by its context.
	ErrClosed = errors.New("menu closed")

	// ErrNoExecutor is returned when Deps has no command executor.
	ErrNoExecutor = errors.New("menu: no command executor")
)
