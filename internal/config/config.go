package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/whichkey/internal/config/layer"
	"github.com/dshills/whichkey/internal/config/loader"
	"github.com/dshills/whichkey/internal/config/notify"
	"github.com/dshills/whichkey/internal/config/watcher"
)

//go:embed defaults.toml
var defaultsTOML []byte

// Layer names.
const (
	LayerDefaults  = "defaults"
	LayerUser      = "user"
	LayerWorkspace = "workspace"
	LayerArgs      = "args"
)

// WorkspaceFile is the name of the workspace configuration file.
const WorkspaceFile = ".whichkey.toml"

type fileLayer struct {
	name     string
	path     string
	source   layer.Source
	priority int
}

// Store owns the configuration layers.
type Store struct {
	// mu serializes reloads so notifications see consistent snapshots.
	mu sync.Mutex

	layers   *layer.Stack
	notifier *notify.Notifier
	watcher  *watcher.Watcher
	files    []fileLayer
	defaults map[string]any
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithUserFile loads the user layer from path.
func WithUserFile(path string) Option {
	return withFile(LayerUser, path, layer.SourceUser, layer.PriorityUser)
}

// WithWorkspaceFile loads the workspace layer from path.
func WithWorkspaceFile(path string) Option {
	return withFile(LayerWorkspace, path, layer.SourceWorkspace, layer.PriorityWorkspace)
}

func withFile(name, path string, source layer.Source, priority int) Option {
	return func(s *Store) {
		if path == "" {
			return
		}
		s.files = append(s.files, fileLayer{name: name, path: path, source: source, priority: priority})
	}
}

// WithDefaults replaces the built-in defaults.
func WithDefaults(data map[string]any) Option {
	return func(s *Store) {
		s.defaults = data
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a store and loads every layer. A missing file yields an empty
// layer; a file that fails to parse is an error.
func New(opts ...Option) (*Store, error) {
	s := &Store{
		layers:   layer.NewStack(),
		notifier: notify.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaults == nil {
		d, err := loader.Parse("defaults.toml", loader.FormatTOML, defaultsTOML)
		if err != nil {
			return nil, fmt.Errorf("built-in defaults: %w", err)
		}
		s.defaults = d
	}
	s.layers.Put(layer.New(LayerDefaults, layer.SourceBuiltin, layer.PriorityBuiltin, s.defaults))
	s.layers.Put(layer.New(LayerArgs, layer.SourceArgs, layer.PriorityArgs, nil))

	for _, f := range s.files {
		data, err := loader.Load(f.path)
		if err != nil {
			return nil, err
		}
		s.layers.Put(layer.FromFile(f.name, f.source, f.priority, f.path, data))
	}
	return s, nil
}

// Get returns a copy of the merged value at a dotted path.
func (s *Store) Get(path string) (any, bool) {
	return s.layers.Lookup(path)
}

// Origin returns the layer that sets path and the file it was read from.
// The file is empty for the defaults and command-line layers.
func (s *Store) Origin(path string) (name, file string, ok bool) {
	return s.layers.Origin(path)
}

// Merged returns a copy of the merged configuration.
func (s *Store) Merged() map[string]any {
	return s.layers.Merged()
}

// Settings decodes the menu settings. Invalid values are reported and the
// defaults used instead.
func (s *Store) Settings() (Settings, error) {
	v, _ := s.layers.Lookup(SectionSettings)
	return decodeSettings(v)
}

// Set stores value at path in the command-line layer and notifies
// subscribers.
func (s *Store) Set(path string, value any) error {
	if path == "" {
		return ErrInvalidPath
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.layers.Merged()
	if err := s.layers.Edit(LayerArgs, func(data map[string]any) { layer.Assign(data, path, value) }); err != nil {
		return err
	}
	s.notifier.Notify(old, s.layers.Merged(), LayerArgs)
	return nil
}

// Subscribe calls observer after a reload changes the value at path. An
// empty path observes every reload.
func (s *Store) Subscribe(path string, observer notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(path, observer)
}

// Files returns the configuration files, lowest priority first.
func (s *Store) Files() []string {
	out := make([]string, len(s.files))
	for i, f := range s.files {
		out[i] = f.path
	}
	return out
}

// Reload reads every file again and notifies subscribers. A file that fails
// to parse keeps its previous layer and its error is returned.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.layers.Merged()
	var firstErr error
	for _, f := range s.files {
		if err := s.reloadLocked(f); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.notifier.Notify(old, s.layers.Merged(), "reload")
	return firstErr
}

func (s *Store) reloadLocked(f fileLayer) error {
	data, err := loader.Load(f.path)
	if err != nil {
		s.logger.Warn("config reload failed", "layer", f.name, "path", f.path, "error", err)
		return err
	}
	s.layers.Put(layer.FromFile(f.name, f.source, f.priority, f.path, data))
	s.logger.Debug("config layer reloaded", "layer", f.name, "source", f.source, "path", f.path)
	return nil
}

// Watch starts reloading files when they change on disk.
func (s *Store) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}
	w, err := watcher.New(watcher.WithLogger(s.logger))
	if err != nil {
		return err
	}
	for _, f := range s.files {
		if err := w.Watch(f.path); err != nil {
			_ = w.Close()
			return fmt.Errorf("watching %s: %w", f.path, err)
		}
	}
	w.OnChange(s.handleChanges)
	s.watcher = w
	return nil
}

func (s *Store) handleChanges(events []watcher.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.layers.Merged()
	for _, ev := range events {
		for _, f := range s.files {
			abs, err := filepath.Abs(f.path)
			if err != nil || abs != ev.Path {
				continue
			}
			_ = s.reloadLocked(f)
		}
	}
	s.notifier.Notify(old, s.layers.Merged(), "watch")
}

// Close stops watching and drops every subscription.
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	s.notifier.Close()
	if w != nil {
		return w.Close()
	}
	return nil
}

// DefaultUserFile returns the user configuration file under the XDG config
// directory.
func DefaultUserFile() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "whichkey", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "whichkey", "config.toml")
}
