package menu

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
)

const waitTimeout = 2 * time.Second

type note struct {
	text  string
	error bool
}

type recNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recNotifier) ShowPlain(text string, _ time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{text: text})
}

func (n *recNotifier) ShowError(text string, _ time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{text: text, error: true})
}

func (n *recNotifier) Hide()        {}
func (n *recNotifier) HideIfPlain() {}
func (n *recNotifier) HideIfError() {}

func (n *recNotifier) errors() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, x := range n.notes {
		if x.error {
			out = append(out, x.text)
		}
	}
	return out
}

func (n *recNotifier) plains() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, x := range n.notes {
		if !x.error {
			out = append(out, x.text)
		}
	}
	return out
}

type call struct {
	name string
	args []any
}

type harness struct {
	t       *testing.T
	reg     *command.Registry
	relay   *relay.Relay
	notes   *recNotifier
	widgets chan *picklist.Headless
	lang    string
	rec     Recorder

	mu    sync.Mutex
	calls []call
}

func newHarness(t *testing.T, commands ...string) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		reg:     command.NewRegistry(nil),
		relay:   relay.New(),
		notes:   &recNotifier{},
		widgets: make(chan *picklist.Headless, 16),
	}
	for _, name := range commands {
		h.handle(name, nil)
	}
	return h
}

// handle registers a command that records its calls and returns err.
func (h *harness) handle(name string, err error) {
	_ = h.reg.Register(name, func(_ context.Context, args ...any) error {
		h.mu.Lock()
		h.calls = append(h.calls, call{name: name, args: args})
		h.mu.Unlock()
		return err
	})
}

func (h *harness) called() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, len(h.calls))
	for i, c := range h.calls {
		names[i] = c.name
	}
	return names
}

func (h *harness) deps() Deps {
	return Deps{
		NewWidget: func() picklist.Widget {
			w := picklist.NewHeadless()
			h.widgets <- w
			return w
		},
		Executor: h.reg,
		Notifier: h.notes,
		Relay:    h.relay,
		Context:  StaticContext(h.lang),
		Recorder: h.rec,
	}
}

// start runs fn in the background and returns the first widget once the
// menu is visible.
func (h *harness) start(fn func(ctx context.Context, deps Deps) error) (*picklist.Headless, <-chan error) {
	h.t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- fn(context.Background(), h.deps()) }()
	return h.nextWidget(), errc
}

func (h *harness) show(items []binding.Item, opts Options) (*picklist.Headless, <-chan error) {
	tree := binding.Build(items, nil)
	return h.start(func(ctx context.Context, deps Deps) error {
		return Show(ctx, deps, tree, tree.Roots(), opts)
	})
}

func (h *harness) nextWidget() *picklist.Headless {
	h.t.Helper()
	select {
	case w := <-h.widgets:
		waitFor(h.t, "widget shown", w.Visible)
		waitFor(h.t, "relay subscribed", h.relay.Active)
		return w
	case <-time.After(waitTimeout):
		h.t.Fatal("no widget created")
		return nil
	}
}

func (h *harness) key(k string) {
	h.t.Helper()
	if !h.relay.TriggerKey(relay.KeyEvent{Key: k}) {
		h.t.Fatalf("TriggerKey(%q): no menu subscribed", k)
	}
}

func wait(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("menu did not finish")
		return nil
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func cmd(k, name, c string) binding.Item {
	return binding.Item{Key: k, Name: name, Type: binding.TypeCommand, Command: c}
}

func sub(k, name string, children ...binding.Item) binding.Item {
	return binding.Item{Key: k, Name: name, Type: binding.TypeBindings, Bindings: children}
}

func labelsOf(items []picklist.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}
