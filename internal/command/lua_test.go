package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLuaCommands_RegisterAndRun(t *testing.T) {
	r := NewRegistry(nil)
	var echoed []any
	_ = r.Register("echo", func(_ context.Context, args ...any) error {
		echoed = args
		return nil
	})

	l := NewLuaCommands(r, nil)
	defer l.Close()

	script := `
whichkey.command("greet", function(name)
  whichkey.execute("echo", "hello " .. name)
end)
whichkey.command("pair", function()
  whichkey.execute("echo", "a", 2)
end)
`
	if err := l.DoString(script); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if want := []string{"greet", "pair"}; !reflect.DeepEqual(l.Names(), want) {
		t.Fatalf("Names() = %v, want %v", l.Names(), want)
	}
	if err := l.RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	ctx := context.Background()
	if err := r.Invoke(ctx, "greet", "bob"); err != nil {
		t.Fatalf("greet: %v", err)
	}
	if want := []any{"hello bob"}; !reflect.DeepEqual(echoed, want) {
		t.Errorf("echo args = %v, want %v", echoed, want)
	}

	if err := r.Invoke(ctx, "pair", nil); err != nil {
		t.Fatalf("pair: %v", err)
	}
	if want := []any{"a", int64(2)}; !reflect.DeepEqual(echoed, want) {
		t.Errorf("echo args = %v, want %v", echoed, want)
	}
}

func TestLuaCommands_NestedLuaCall(t *testing.T) {
	r := NewRegistry(nil)
	var got []any
	_ = r.Register("echo", func(_ context.Context, args ...any) error {
		got = args
		return nil
	})
	l := NewLuaCommands(r, nil)
	defer l.Close()

	script := `
whichkey.command("inner", function(v) whichkey.execute("echo", v) end)
whichkey.command("outer", function() whichkey.execute("inner", "deep") end)
`
	if err := l.DoString(script); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if err := l.RegisterAll(r); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if err := r.Invoke(context.Background(), "outer", nil); err != nil {
		t.Fatalf("outer: %v", err)
	}
	if want := []any{"deep"}; !reflect.DeepEqual(got, want) {
		t.Errorf("echo args = %v, want %v", got, want)
	}
}

func TestLuaCommands_ErrorsPropagate(t *testing.T) {
	r := NewRegistry(nil)
	l := NewLuaCommands(r, nil)
	defer l.Close()

	if err := l.DoString(`whichkey.command("bad", function() whichkey.execute("missing") end)`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	_ = l.RegisterAll(r)
	if err := r.Invoke(context.Background(), "bad", nil); err == nil {
		t.Error("bad succeeded, want error")
	}
	if err := l.DoString(`error("syntax")`); err == nil {
		t.Error("DoString(error) succeeded")
	}
}

func TestLuaCommands_Sandbox(t *testing.T) {
	l := NewLuaCommands(nil, nil)
	defer l.Close()

	for _, code := range []string{`dofile("x")`, `loadfile("x")`, `os.exit(1)`, `io.write("x")`} {
		if err := l.DoString(code); err == nil {
			t.Errorf("DoString(%q) succeeded, want error", code)
		}
	}
}

func TestLuaCommands_StructArgs(t *testing.T) {
	type config struct {
		Title string `json:"title"`
		Count int
	}
	r := NewRegistry(nil)
	var got []any
	_ = r.Register("echo", func(_ context.Context, args ...any) error {
		got = args
		return nil
	})
	l := NewLuaCommands(r, nil)
	defer l.Close()
	if err := l.DoString(`whichkey.command("show", function(c) whichkey.execute("echo", c.title, c.Count) end)`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	_ = l.RegisterAll(r)
	if err := r.Invoke(context.Background(), "show", config{Title: "T", Count: 3}); err != nil {
		t.Fatalf("show: %v", err)
	}
	if want := []any{"T", int64(3)}; !reflect.DeepEqual(got, want) {
		t.Errorf("echo args = %v, want %v", got, want)
	}
}

func TestLuaCommands_DoFileAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.lua")
	if err := os.WriteFile(path, []byte(`whichkey.command("noop", function() end)`), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLuaCommands(nil, nil)
	if err := l.DoFile(path); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	h := l.Handler("noop")
	if err := h(context.Background()); err != nil {
		t.Fatalf("noop: %v", err)
	}
	if err := l.Handler("missing")(context.Background()); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("missing = %v, want ErrUnknownCommand", err)
	}

	l.Close()
	if err := h(context.Background()); !errors.Is(err, ErrStateClosed) {
		t.Errorf("after Close = %v, want ErrStateClosed", err)
	}
	if err := l.DoString("x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString after Close = %v, want ErrStateClosed", err)
	}
}
