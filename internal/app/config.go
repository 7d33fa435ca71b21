package app

import (
	"fmt"
	"strings"

	"github.com/dshills/whichkey/internal/config"
)

// Config registers a menu over a binding list.
type Config struct {
	// Bindings is the dotted section of the binding list.
	Bindings string
	// Overrides is the dotted section of the override list, if any.
	Overrides string
	Title     string
}

// LayerConfig registers a menu over a layer map.
type LayerConfig struct {
	// Layers is the dotted section of the layer map.
	Layers    string
	Overrides string
	Title     string
}

// DefaultConfig is the menu shown when no section is named.
var DefaultConfig = Config{
	Bindings:  config.SectionBindings,
	Overrides: config.SectionOverrides,
}

// ParseConfig reads a registration object. Sections are dotted strings or
// legacy [section, key] pairs.
func ParseConfig(v any) (Config, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Config{}, fmt.Errorf("%w: %T", ErrInvalidConfig, v)
	}
	var (
		c   Config
		err error
	)
	if c.Bindings, err = section(m, "bindings", true); err != nil {
		return Config{}, err
	}
	if c.Overrides, err = section(m, "overrides", false); err != nil {
		return Config{}, err
	}
	if c.Title, err = title(m); err != nil {
		return Config{}, err
	}
	return c, nil
}

// ParseLayerConfig reads a layer registration object.
func ParseLayerConfig(v any) (LayerConfig, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return LayerConfig{}, fmt.Errorf("%w: %T", ErrInvalidConfig, v)
	}
	var (
		c   LayerConfig
		err error
	)
	if c.Layers, err = section(m, "layers", true); err != nil {
		return LayerConfig{}, err
	}
	if c.Overrides, err = section(m, "overrides", false); err != nil {
		return LayerConfig{}, err
	}
	if c.Title, err = title(m); err != nil {
		return LayerConfig{}, err
	}
	return c, nil
}

func section(m map[string]any, field string, required bool) (string, error) {
	v, ok := m[field]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing %s", ErrInvalidConfig, field)
		}
		return "", nil
	}
	switch s := v.(type) {
	case string:
		if s == "" {
			return "", fmt.Errorf("%w: empty %s", ErrInvalidConfig, field)
		}
		return s, nil
	case []string:
		if len(s) == 2 {
			return strings.Join(s, "."), nil
		}
	case []any:
		if len(s) == 2 {
			a, aok := s[0].(string)
			b, bok := s[1].(string)
			if aok && bok {
				return a + "." + b, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s must be a section or a [section, key] pair", ErrInvalidConfig, field)
}

func title(m map[string]any) (string, error) {
	v, ok := m["title"]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: title must be a string", ErrInvalidConfig)
	}
	return s, nil
}
