package config

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Configuration sections.
const (
	// SectionSettings is the table holding the menu settings.
	SectionSettings = "whichkey"

	// SectionBindings is the default binding list.
	SectionBindings = "whichkey.bindings"

	// SectionOverrides is the default override list.
	SectionOverrides = "whichkey.bindingOverrides"
)

// Settings are the menu settings under SectionSettings.
type Settings struct {
	// Delay is how long in milliseconds a menu waits before listing its
	// bindings.
	Delay int `mapstructure:"delay" yaml:"delay"`

	ShowIcons              bool   `mapstructure:"showIcons" yaml:"showIcons"`
	ShowButtons            bool   `mapstructure:"showButtons" yaml:"showButtons"`
	UseFullWidthCharacters bool   `mapstructure:"useFullWidthCharacters" yaml:"useFullWidthCharacters"`
	SortOrder              string `mapstructure:"sortOrder" yaml:"sortOrder"`
}

// DefaultSettings returns the settings used for missing values.
func DefaultSettings() Settings {
	return Settings{
		ShowIcons:   true,
		ShowButtons: true,
		SortOrder:   "none",
	}
}

// DelayDuration returns Delay as a duration. Negative delays are zero.
func (s Settings) DelayDuration() time.Duration {
	if s.Delay <= 0 {
		return 0
	}
	return time.Duration(s.Delay) * time.Millisecond
}

// decodeSettings decodes the settings table over the defaults.
func decodeSettings(v any) (Settings, error) {
	s := DefaultSettings()
	if v == nil {
		return s, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(v); err != nil {
		return DefaultSettings(), fmt.Errorf("%w: %s: %w", ErrInvalidSetting, SectionSettings, err)
	}
	return s, nil
}
