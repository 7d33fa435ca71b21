package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/config"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

const waitTimeout = 2 * time.Second

var errBoom = errors.New("boom")

type fixture struct {
	t       *testing.T
	app     *App
	store   *config.Store
	reg     *command.Registry
	rec     *status.Recorder
	widgets chan *picklist.Headless

	mu    sync.Mutex
	calls []string
}

func testBindings() []any {
	return []any{
		map[string]any{
			"key": "m", "name": "+Major", "type": "bindings",
			"bindings": []any{
				map[string]any{"key": "x", "name": "Test", "type": "command", "command": "cmd.test"},
			},
		},
		map[string]any{"key": "t", "name": "Top", "type": "command", "command": "cmd.top"},
	}
}

func newFixture(t *testing.T, defaults map[string]any) *fixture {
	t.Helper()
	store, err := config.New(config.WithDefaults(defaults))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		t:       t,
		store:   store,
		reg:     command.NewRegistry(nil),
		rec:     &status.Recorder{},
		widgets: make(chan *picklist.Headless, 16),
	}
	for _, name := range []string{"cmd.test", "cmd.top", "cmd.fail"} {
		_ = f.reg.Register(name, func(context.Context, ...any) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.calls = append(f.calls, name)
			if name == "cmd.fail" {
				return errBoom
			}
			return nil
		})
	}
	f.app, err = New(Options{
		Store:    store,
		Registry: f.reg,
		Notifier: status.NewBar(f.rec),
		NewWidget: func() picklist.Widget {
			w := picklist.NewHeadless()
			f.widgets <- w
			return w
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.app.Close)
	return f
}

func (f *fixture) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// open runs a command that opens a menu and returns the menu's widget.
func (f *fixture) open(name string, arg any) *picklist.Headless {
	f.t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- f.reg.Invoke(context.Background(), name, arg) }()
	if err := wait(f.t, errc); err != nil {
		f.t.Fatalf("%s = %v", name, err)
	}
	return f.widget()
}

// closed waits until no menu is open.
func (f *fixture) closed() {
	f.t.Helper()
	waitFor(f.t, func() bool { return !f.app.Relay().Active() })
}

func (f *fixture) widget() *picklist.Headless {
	f.t.Helper()
	select {
	case w := <-f.widgets:
		waitFor(f.t, func() bool { return w.Visible() && f.app.Relay().Active() })
		return w
	case <-time.After(waitTimeout):
		f.t.Fatal("no widget created")
		return nil
	}
}

func (f *fixture) keys(keys ...string) {
	f.t.Helper()
	for _, k := range keys {
		if !f.app.Relay().TriggerKey(relay.KeyEvent{Key: k}) {
			f.t.Fatalf("TriggerKey(%q): no menu open", k)
		}
	}
}

func wait(t *testing.T, errc <-chan error) error {
	t.Helper()
	select {
	case err := <-errc:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("command did not return")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    Config
		wantErr bool
	}{
		{"dotted", map[string]any{"bindings": "a.b"}, Config{Bindings: "a.b"}, false},
		{"pairs", map[string]any{"bindings": []any{"a", "b"}, "overrides": []any{"a", "o"}, "title": "T"},
			Config{Bindings: "a.b", Overrides: "a.o", Title: "T"}, false},
		{"missing bindings", map[string]any{"title": "T"}, Config{}, true},
		{"bad pair", map[string]any{"bindings": []any{"a"}}, Config{}, true},
		{"bad title", map[string]any{"bindings": "a.b", "title": 3}, Config{}, true},
		{"not an object", "a.b", Config{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfig(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want %v", err, ErrInvalidConfig)
			}
			if got != tt.want {
				t.Errorf("ParseConfig() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApp_ShowDefault(t *testing.T) {
	f := newFixture(t, map[string]any{"whichkey": map[string]any{"bindings": testBindings()}})

	w := f.open(command.Show, nil)
	if got := len(w.Items()); got != 2 {
		t.Errorf("items = %d, want 2", got)
	}
	f.keys("m", "x")
	f.closed()
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.test"}) {
		t.Errorf("called = %v, want [cmd.test]", got)
	}
	if got := f.app.Sections(); !reflect.DeepEqual(got, []string{config.SectionBindings}) {
		t.Errorf("Sections() = %v", got)
	}
}

func TestApp_RegisterSection(t *testing.T) {
	f := newFixture(t, map[string]any{"menus": map[string]any{"main": testBindings()}})

	if err := f.reg.Invoke(context.Background(), command.Register, map[string]any{
		"bindings": []any{"menus", "main"},
		"title":    "Main",
	}); err != nil {
		t.Fatalf("register = %v", err)
	}
	w := f.open(command.Show, "menus.main")
	if w.Title() != "Main" {
		t.Errorf("title = %q, want Main", w.Title())
	}
	f.keys("t")
	f.closed()
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.top"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_RegisterInvalid(t *testing.T) {
	f := newFixture(t, map[string]any{})
	err := f.reg.Invoke(context.Background(), command.Register, map[string]any{"title": "x"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("register = %v, want %v", err, ErrInvalidConfig)
	}
	if f.app.Register("nope") {
		t.Error("Register(string) = true")
	}
}

func TestApp_NoBindings(t *testing.T) {
	f := newFixture(t, map[string]any{})
	if err := f.app.Default().Show(context.Background()); err != nil {
		t.Fatalf("Show() = %v", err)
	}
	if got := f.rec.Errors(); !reflect.DeepEqual(got, []string{NoBindingsMessage}) {
		t.Errorf("errors = %v", got)
	}
}

func TestApp_ShowUnregistered(t *testing.T) {
	f := newFixture(t, map[string]any{})
	err := f.reg.Invoke(context.Background(), command.Show, "nowhere")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("show = %v, want %v", err, ErrInvalidArgument)
	}
}

func TestApp_ShowInline(t *testing.T) {
	f := newFixture(t, map[string]any{})
	f.open(command.Show, testBindings())
	f.keys("t")
	f.closed()
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.top"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_Recompose(t *testing.T) {
	f := newFixture(t, map[string]any{"whichkey": map[string]any{"bindings": testBindings()}})
	w := f.app.Default()
	if n := len(w.Tree().Roots()); n != 2 {
		t.Fatalf("roots = %d, want 2", n)
	}
	if err := f.store.Set(config.SectionBindings, testBindings()[:1]); err != nil {
		t.Fatal(err)
	}
	if n := len(w.Tree().Roots()); n != 1 {
		t.Errorf("roots after change = %d, want 1", n)
	}
}

func TestApp_Layers(t *testing.T) {
	f := newFixture(t, map[string]any{"menus": map[string]any{"layers": map[string]any{
		"base": map[string]any{"bindings": map[string]any{
			"m": map[string]any{"name": "+Major", "type": "bindings", "bindings": map[string]any{
				"x": map[string]any{"name": "Test", "type": "command", "command": "cmd.test"},
			}},
		}},
		"user": map[string]any{"bindings": map[string]any{
			"t": map[string]any{"name": "Top", "type": "command", "command": "cmd.top"},
		}},
	}}})

	if !f.app.RegisterLayers(map[string]any{"layers": "menus.layers"}) {
		t.Fatal("RegisterLayers() = false")
	}
	w, ok := f.app.Lookup("menus.layers")
	if !ok {
		t.Fatal("layer section not registered")
	}
	if n := len(w.Tree().Roots()); n != 2 {
		t.Errorf("roots = %d, want 2", n)
	}
}

func TestApp_TriggerKey(t *testing.T) {
	f := newFixture(t, map[string]any{"whichkey": map[string]any{"bindings": testBindings()}})

	if err := f.reg.Invoke(context.Background(), command.TriggerKey, "x"); err != nil {
		t.Errorf("triggerKey with no menu = %v", err)
	}
	f.open(command.Show, nil)
	if err := f.reg.Invoke(context.Background(), command.TriggerKey, map[string]any{"key": "m"}); err != nil {
		t.Fatalf("triggerKey = %v", err)
	}
	if err := f.reg.Invoke(context.Background(), command.TriggerKey, "x"); err != nil {
		t.Fatalf("triggerKey = %v", err)
	}
	f.closed()
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.test"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_RepeatMostRecent(t *testing.T) {
	f := newFixture(t, map[string]any{"whichkey": map[string]any{"bindings": testBindings()}})

	f.open(command.Show, nil)
	f.keys("m", "x")
	f.closed()
	if err := f.reg.Invoke(context.Background(), command.RepeatMostRecent, nil); err != nil {
		t.Fatalf("repeatMostRecent = %v", err)
	}
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.test", "cmd.test"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_ShowTransient(t *testing.T) {
	f := newFixture(t, map[string]any{})
	w := f.open(command.ShowTransient, map[string]any{
		"title": "Zoom",
		"bindings": []any{
			map[string]any{"key": "t", "name": "Top", "type": "command", "command": "cmd.top"},
			map[string]any{"key": "q", "name": "Quit", "type": "command", "command": "cmd.test", "exit": true},
		},
	})
	if w.Title() != "Zoom" {
		t.Errorf("title = %q", w.Title())
	}
	f.keys("t")
	waitFor(t, func() bool { return len(f.called()) == 1 })
	f.keys("q")
	f.closed()
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.top", "cmd.test"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_Search(t *testing.T) {
	f := newFixture(t, map[string]any{"whichkey": map[string]any{"bindings": testBindings()}})

	errc := make(chan error, 1)
	go func() { errc <- f.app.Default().Search(context.Background()) }()
	w := f.widget()
	if got := len(w.Items()); got != 3 {
		t.Fatalf("entries = %d, want 3", got)
	}
	w.Type("Top")
	waitFor(t, func() bool { return len(w.Filtered()) == 1 })
	w.Select(0)
	w.Accept()
	if err := wait(t, errc); err != nil {
		t.Fatal(err)
	}
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.top"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_ShowChain(t *testing.T) {
	f := newFixture(t, map[string]any{"whichkey": map[string]any{"bindings": testBindings()}})

	err := command.ExecuteChain(context.Background(), f.reg,
		[]string{command.Show, command.TriggerKey, command.TriggerKey},
		[]any{nil, "m", "x"})
	if err != nil {
		t.Fatalf("ExecuteChain() = %v", err)
	}
	f.closed()
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.test"}) {
		t.Errorf("called = %v, want [cmd.test]", got)
	}
}

func TestApp_ShowReportsMenuError(t *testing.T) {
	f := newFixture(t, map[string]any{})

	f.open(command.Show, []any{
		map[string]any{"key": "f", "name": "Fail", "type": "command", "command": "cmd.fail"},
	})
	f.keys("f")
	waitFor(t, func() bool { return len(f.rec.Errors()) > 0 })

	errs := f.rec.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0], errBoom.Error()) {
		t.Errorf("errors = %v, want one mentioning %q", errs, errBoom)
	}
	if got := f.called(); !reflect.DeepEqual(got, []string{"cmd.fail"}) {
		t.Errorf("called = %v", got)
	}
}

func TestApp_ShowNoBindingsReturns(t *testing.T) {
	f := newFixture(t, map[string]any{})

	if err := f.reg.Invoke(context.Background(), command.Show, nil); err != nil {
		t.Fatalf("show = %v", err)
	}
	if got := f.rec.Errors(); !reflect.DeepEqual(got, []string{NoBindingsMessage}) {
		t.Errorf("errors = %v", got)
	}
	if f.app.Relay().Active() {
		t.Error("menu left open")
	}
}
