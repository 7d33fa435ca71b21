package config

import (
	"errors"

	"github.com/dshills/whichkey/internal/config/loader"
)

var (
	// ErrInvalidSetting is returned when a setting has the wrong shape.
	ErrInvalidSetting = errors.New("invalid setting")

	// ErrInvalidPath is returned for an empty setting path.
	ErrInvalidPath = errors.New("invalid setting path")
)

// ParseError is a syntax error in a configuration file.
type ParseError = loader.ParseError
