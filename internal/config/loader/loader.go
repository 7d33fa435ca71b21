// Package loader decodes configuration files.
//
// TOML, YAML and JSON files decode to the same nested map shape. Top-level
// dotted keys, as written in editor settings files ("whichkey.bindings"),
// are expanded into nested tables so every format addresses a setting by
// the same path.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dshills/whichkey/internal/config/layer"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for a file extension with no decoder.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// FileSystem reads whole files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads and decodes path. A missing file returns nil, nil.
func Load(path string) (map[string]any, error) {
	return LoadFS(OSFS{}, path)
}

// LoadFS reads and decodes path from fsys. A missing file returns nil, nil.
func LoadFS(fsys FileSystem, path string) (map[string]any, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, format, data)
}

// Parse decodes data in format. source names the data in errors.
func Parse(source string, format Format, data []byte) (map[string]any, error) {
	var (
		m   map[string]any
		err error
	)
	switch format {
	case FormatTOML:
		m, err = parseTOML(source, data)
	case FormatYAML:
		m, err = parseYAML(source, data)
	case FormatJSON:
		m, err = parseJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return ExpandDotted(m), nil
}

// ExpandDotted moves top-level keys containing dots into nested tables. A
// dotted key is merged over a table already holding the same path.
func ExpandDotted(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	var dotted []string
	for k, v := range m {
		if strings.Contains(k, ".") {
			dotted = append(dotted, k)
			continue
		}
		out[k] = v
	}
	slices.Sort(dotted)
	for _, k := range dotted {
		if existing, ok := layer.Lookup(out, k); ok {
			em, eok := existing.(map[string]any)
			vm, vok := m[k].(map[string]any)
			if eok && vok {
				layer.Assign(out, k, layer.Merge(em, vm))
				continue
			}
		}
		layer.Assign(out, k, m[k])
	}
	return out
}

// ParseError is a syntax error in a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	default:
		return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
