package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/compose"
	"github.com/dshills/whichkey/internal/config"
	"github.com/dshills/whichkey/internal/config/notify"
	"github.com/dshills/whichkey/internal/menu"
	"github.com/dshills/whichkey/internal/repeater"
	"github.com/dshills/whichkey/internal/status"
)

// WhichKey is a menu registered for one configuration section. Its tree is
// composed again whenever the sections it reads change.
type WhichKey struct {
	app      *App
	section  string
	repeater *repeater.Repeater
	logger   *slog.Logger

	mu     sync.Mutex
	src    source
	tree   *binding.Tree
	title  string
	subs   []*notify.Subscription
	closed bool
}

// source names the configuration sections a menu reads.
type source struct {
	bindings  string
	layers    string
	overrides string
}

func (s source) paths() []string {
	var out []string
	for _, p := range []string{s.bindings, s.layers, s.overrides} {
		if p != "" {
			out = append(out, p)
		}
	}
	return append(out, config.SectionSettings+".sortOrder")
}

func newWhichKey(a *App, section string) *WhichKey {
	return &WhichKey{
		app:      a,
		section:  section,
		repeater: repeater.New(a.registry, a.notes, a.logger),
		logger:   a.logger.With("section", section),
	}
}

// register replaces the sources of the menu and composes it.
func (w *WhichKey) register(src source, title string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range w.subs {
		s.Unsubscribe()
	}
	w.subs = nil
	w.src = src
	w.title = title
	w.closed = false
	for _, p := range src.paths() {
		w.subs = append(w.subs, w.app.store.Subscribe(p, w.onChange))
	}
	w.composeLocked()
}

func (w *WhichKey) onChange(c notify.Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.logger.Debug("bindings changed", "path", c.Path, "source", c.Source)
	w.composeLocked()
}

func (w *WhichKey) composeLocked() {
	var src compose.Source
	if w.src.layers != "" {
		layers, _ := w.app.store.Get(w.src.layers)
		m, ok := layers.(map[string]any)
		if !ok {
			m = map[string]any{}
		}
		src.Layers = m
	} else {
		v, _ := w.app.store.Get(w.src.bindings)
		src.Bindings = decodeItems(v, w.logger)
	}
	if w.src.overrides != "" {
		v, _ := w.app.store.Get(w.src.overrides)
		src.Overrides = decodeOverrides(v, w.logger)
	}

	tree, err := w.app.compose(src)
	if err != nil {
		w.logger.Warn("composing bindings", "error", err)
		w.tree = nil
		return
	}
	w.tree = tree
}

// Tree returns the composed tree, or nil when the section holds no
// bindings.
func (w *WhichKey) Tree() *binding.Tree {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree
}

// Title returns the menu title.
func (w *WhichKey) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

// Repeater returns the actions recorded from this menu.
func (w *WhichKey) Repeater() *repeater.Repeater {
	return w.repeater
}

// Show runs the menu and blocks until it ends. An empty menu shows an error
// message instead.
func (w *WhichKey) Show(ctx context.Context) error {
	return w.show(ctx, w.app.deps())
}

func (w *WhichKey) show(ctx context.Context, deps menu.Deps) error {
	w.mu.Lock()
	tree, title := w.tree, w.title
	w.mu.Unlock()

	if tree == nil || len(tree.Roots()) == 0 {
		w.app.notes.ShowError(NoBindingsMessage, status.DefaultTimeout)
		return nil
	}
	deps.Recorder = w.repeater
	opts := w.app.menuOptions()
	opts.Title = title
	return menu.Show(ctx, deps, tree, tree.Roots(), opts)
}

// Search opens the binding search over the whole menu.
func (w *WhichKey) Search(ctx context.Context) error {
	w.mu.Lock()
	tree := w.tree
	w.mu.Unlock()

	if tree == nil || len(tree.Roots()) == 0 {
		w.app.notes.ShowError(NoBindingsMessage, status.DefaultTimeout)
		return nil
	}
	deps := w.app.deps()
	deps.Recorder = w.repeater
	return menu.ShowSearch(ctx, deps, menu.Flatten(tree, tree.Roots(), nil), menu.SearchTitle)
}

func (w *WhichKey) unregister() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, s := range w.subs {
		s.Unsubscribe()
	}
	w.subs = nil
	w.tree = nil
	w.closed = true
	w.repeater.Clear()
}

// decodeItems decodes a binding list. Entries that fail to decode are
// logged and skipped.
func decodeItems(v any, logger *slog.Logger) []binding.Item {
	switch list := v.(type) {
	case nil:
		return nil
	case []binding.Item:
		return list
	case []any:
		items := make([]binding.Item, 0, len(list))
		for i, raw := range list {
			var it binding.Item
			if err := compose.DecodeItem(raw, &it); err != nil {
				logger.Warn("skipping binding", "index", i, "error", err)
				continue
			}
			items = append(items, it)
		}
		return items
	default:
		logger.Warn("bindings must be a list", "type", fmt.Sprintf("%T", v))
		return nil
	}
}

func decodeOverrides(v any, logger *slog.Logger) []binding.Override {
	list, ok := v.([]any)
	if !ok {
		if v != nil {
			logger.Warn("overrides must be a list", "type", fmt.Sprintf("%T", v))
		}
		return nil
	}
	out := make([]binding.Override, 0, len(list))
	for i, raw := range list {
		var o binding.Override
		if err := compose.DecodeItem(raw, &o); err != nil {
			logger.Warn("skipping override", "index", i, "error", err)
			continue
		}
		out = append(out, o)
	}
	return out
}
