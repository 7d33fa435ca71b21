// Package app owns the registered which-key menus and the built-in
// commands that drive them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/compose"
	"github.com/dshills/whichkey/internal/config"
	"github.com/dshills/whichkey/internal/menu"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

// Options configures an App.
type Options struct {
	// Store provides settings and binding sections. Required.
	Store *config.Store

	// Registry runs commands. The built-in commands are registered on it.
	// Required.
	Registry *command.Registry

	// Relay delivers external key events. Defaults to a new relay.
	Relay *relay.Relay

	// Notifier shows status messages. Defaults to discarding them.
	Notifier status.Notifier

	// NewWidget creates the picklist of each menu. Defaults to a headless
	// widget.
	NewWidget func() picklist.Widget

	// Context reports the language of the active document.
	Context menu.ContextSource

	Logger *slog.Logger
}

// App is the registry of which-key menus, keyed by binding section.
type App struct {
	store    *config.Store
	registry *command.Registry
	relay    *relay.Relay
	notes    status.Notifier
	widget   func() picklist.Widget
	context  menu.ContextSource
	logger   *slog.Logger

	mu    sync.Mutex
	menus map[string]*WhichKey
}

// New creates an App and registers the built-in commands.
func New(opts Options) (*App, error) {
	if opts.Store == nil || opts.Registry == nil {
		return nil, fmt.Errorf("app: store and registry are required")
	}
	a := &App{
		store:    opts.Store,
		registry: opts.Registry,
		relay:    opts.Relay,
		notes:    opts.Notifier,
		widget:   opts.NewWidget,
		context:  opts.Context,
		logger:   opts.Logger,
		menus:    make(map[string]*WhichKey),
	}
	if a.relay == nil {
		a.relay = relay.New()
	}
	if a.notes == nil {
		a.notes = status.NewBar(&status.Recorder{})
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if err := a.registerCommands(); err != nil {
		return nil, err
	}
	return a, nil
}

// Relay returns the relay shared by every menu.
func (a *App) Relay() *relay.Relay {
	return a.relay
}

// Register adds or replaces the menu of a binding section. It reports false
// and logs a warning when v has the wrong shape.
func (a *App) Register(v any) bool {
	c, err := ParseConfig(v)
	if err != nil {
		a.logger.Warn("register", "error", err)
		return false
	}
	a.RegisterConfig(c)
	return true
}

// RegisterConfig adds or replaces the menu of c.Bindings.
func (a *App) RegisterConfig(c Config) *WhichKey {
	w := a.menu(c.Bindings)
	w.register(source{bindings: c.Bindings, overrides: c.Overrides}, c.Title)
	return w
}

// RegisterLayers adds or replaces the menu of a layer section. It reports
// false and logs a warning when v has the wrong shape.
func (a *App) RegisterLayers(v any) bool {
	c, err := ParseLayerConfig(v)
	if err != nil {
		a.logger.Warn("register layers", "error", err)
		return false
	}
	a.RegisterLayerConfig(c)
	return true
}

// RegisterLayerConfig adds or replaces the menu of c.Layers.
func (a *App) RegisterLayerConfig(c LayerConfig) *WhichKey {
	w := a.menu(c.Layers)
	w.register(source{layers: c.Layers, overrides: c.Overrides}, c.Title)
	return w
}

func (a *App) menu(section string) *WhichKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.menus[section]
	if !ok {
		w = newWhichKey(a, section)
		a.menus[section] = w
	}
	return w
}

// Lookup returns the menu registered for section.
func (a *App) Lookup(section string) (*WhichKey, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	w, ok := a.menus[section]
	return w, ok
}

// Sections returns the registered sections, sorted.
func (a *App) Sections() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.menus))
	for s := range a.menus {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Unregister drops the menu of section.
func (a *App) Unregister(section string) {
	a.mu.Lock()
	w, ok := a.menus[section]
	delete(a.menus, section)
	a.mu.Unlock()
	if ok {
		w.unregister()
	}
}

// Default returns the menu of the default section, registering it first if
// needed.
func (a *App) Default() *WhichKey {
	if w, ok := a.Lookup(DefaultConfig.Bindings); ok {
		return w
	}
	return a.RegisterConfig(DefaultConfig)
}

// resolve returns the menu named by a section argument, or the default menu
// for any other argument.
func (a *App) resolve(args []any) (*WhichKey, error) {
	if len(args) > 0 {
		if section, ok := args[0].(string); ok {
			w, ok := a.Lookup(section)
			if !ok {
				return nil, fmt.Errorf("%w: section %q is not registered", ErrInvalidArgument, section)
			}
			return w, nil
		}
	}
	return a.Default(), nil
}

// ShowItems runs a menu over a binding list that is not registered.
func (a *App) ShowItems(ctx context.Context, items []binding.Item) error {
	return a.showItems(ctx, a.deps(), items)
}

func (a *App) showItems(ctx context.Context, deps menu.Deps, items []binding.Item) error {
	tree, err := a.compose(compose.Source{Bindings: items})
	if err != nil {
		return err
	}
	if len(tree.Roots()) == 0 {
		a.notes.ShowError(NoBindingsMessage, status.DefaultTimeout)
		return nil
	}
	return menu.Show(ctx, deps, tree, tree.Roots(), a.menuOptions())
}

// ShowTransient runs a transient menu.
func (a *App) ShowTransient(ctx context.Context, cfg binding.TransientConfig) error {
	return menu.ShowTransient(ctx, a.deps(), cfg, a.menuOptions())
}

// launch starts a menu and returns once it is ready for keys, so the rest
// of a command chain can drive it. A menu that ends before then returns its
// own error. A later error is logged and shown.
func (a *App) launch(ctx context.Context, name string, show func(context.Context, menu.Deps) error) error {
	ready := make(chan struct{})
	var once sync.Once
	deps := a.deps()
	deps.Ready = func() { once.Do(func() { close(ready) }) }

	done := make(chan error, 1)
	go func() { done <- show(ctx, deps) }()
	select {
	case err := <-done:
		return err
	case <-ready:
	}
	go a.report(name, done)
	return nil
}

// report waits for a launched menu to end.
func (a *App) report(name string, done <-chan error) {
	err := <-done
	switch {
	case err == nil:
	case errors.Is(err, menu.ErrClosed):
		a.logger.Debug("menu cancelled", "command", name, "error", err)
	default:
		a.logger.Error("menu failed", "command", name, "error", err)
		a.notes.ShowError(err.Error(), status.DefaultTimeout)
	}
}

// Close unregisters every menu.
func (a *App) Close() {
	for _, s := range a.Sections() {
		a.Unregister(s)
	}
}

func (a *App) compose(src compose.Source) (*binding.Tree, error) {
	settings := a.settings()
	return compose.Compose(src, compose.Options{
		SortOrder: compose.SortOrder(settings.SortOrder),
		Logger:    a.logger,
	})
}

func (a *App) settings() config.Settings {
	s, err := a.store.Settings()
	if err != nil {
		a.logger.Warn("invalid settings, using defaults", "error", err)
	}
	return s
}

func (a *App) menuOptions() menu.Options {
	s := a.settings()
	return menu.Options{
		Delay:        s.DelayDuration(),
		ShowIcons:    s.ShowIcons,
		ShowButtons:  s.ShowButtons,
		UseFullWidth: s.UseFullWidthCharacters,
	}
}

func (a *App) deps() menu.Deps {
	return menu.Deps{
		NewWidget: a.widget,
		Executor:  a.registry,
		Notifier:  a.notes,
		Relay:     a.relay,
		Context:   a.context,
		Logger:    a.logger,
	}
}
