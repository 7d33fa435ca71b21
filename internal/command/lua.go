package command

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// luaCallKey marks a context whose goroutine already holds a LuaCommands
// lock, so commands executed from Lua can call back into the same state.
type luaCallKey struct{}

// LuaCommands holds commands defined by a Lua script.
//
// A script defines commands through the global whichkey table:
//
//	whichkey.command("hello", function(name) whichkey.execute("echo", "hi " .. name) end)
//
// whichkey.execute(name, ...) invokes another command through the executor
// and whichkey.log(...) writes to the logger. Only the base, table, string
// and math libraries are available.
type LuaCommands struct {
	mu     sync.Mutex
	L      *lua.LState
	ex     Executor
	logger *slog.Logger
	fns    map[string]*lua.LFunction
	ctx    context.Context
	closed bool
}

// NewLuaCommands creates an empty sandboxed Lua state. Commands executed
// from Lua go through ex.
func NewLuaCommands(ex Executor, logger *slog.Logger) *LuaCommands {
	if logger == nil {
		logger = slog.Default()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	l := &LuaCommands{
		L:      L,
		ex:     ex,
		logger: logger,
		fns:    make(map[string]*lua.LFunction),
		ctx:    context.Background(),
	}
	L.SetGlobal("whichkey", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"command": l.luaCommand,
		"execute": l.luaExecute,
		"log":     l.luaLog,
	}))
	return l
}

// DoFile runs a script.
func (l *LuaCommands) DoFile(path string) error {
	return l.do(func() error { return l.L.DoFile(path) })
}

// DoString runs a chunk of Lua code.
func (l *LuaCommands) DoString(code string) error {
	return l.do(func() error { return l.L.DoString(code) })
}

func (l *LuaCommands) do(fn func() error) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrStateClosed
	}
	prev := l.ctx
	l.ctx = context.WithValue(context.Background(), luaCallKey{}, l)
	defer func() { l.ctx = prev }()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Names returns the commands defined so far, sorted.
func (l *LuaCommands) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.fns))
	for name := range l.fns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RegisterAll registers every defined command on r.
func (l *LuaCommands) RegisterAll(r *Registry) error {
	for _, name := range l.Names() {
		if err := r.Register(name, l.Handler(name)); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns a handler that calls the Lua function registered as name.
func (l *LuaCommands) Handler(name string) Handler {
	return func(ctx context.Context, args ...any) error {
		if ctx.Value(luaCallKey{}) == l {
			return l.call(ctx, name, args)
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.call(context.WithValue(ctx, luaCallKey{}, l), name, args)
	}
}

// Close releases the Lua state.
func (l *LuaCommands) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.L.Close()
		l.closed = true
	}
}

// call runs a Lua command. Must be called with the lock held.
func (l *LuaCommands) call(ctx context.Context, name string, args []any) (err error) {
	if l.closed {
		return ErrStateClosed
	}
	fn, ok := l.fns[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	prev := l.ctx
	l.ctx = ctx
	defer func() { l.ctx = prev }()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLua(l.L, a)
	}
	return l.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, largs...)
}

func (l *LuaCommands) luaCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	l.fns[name] = fn
	return 0
}

func (l *LuaCommands) luaExecute(L *lua.LState) int {
	name := L.CheckString(1)
	var arg any
	switch n := L.GetTop(); {
	case n == 2:
		arg = toGo(L.Get(2))
	case n > 2:
		list := make([]any, 0, n-1)
		for i := 2; i <= n; i++ {
			list = append(list, toGo(L.Get(i)))
		}
		arg = list
	}
	if l.ex == nil {
		L.RaiseError("no executor for %s", name)
		return 0
	}
	if err := l.ex.Invoke(l.ctx, name, arg); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (l *LuaCommands) luaLog(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	l.logger.Info(strings.Join(parts, " "), "source", "lua")
	return 0
}

// toGo converts a Lua value. Tables with keys 1..n become []any, other
// tables become map[string]any.
func toGo(v lua.LValue) any {
	return toGoVisited(v, make(map[*lua.LTable]bool))
}

func toGoVisited(v lua.LValue, visited map[*lua.LTable]bool) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if visited[val] {
			return nil
		}
		visited[val] = true
		if n := val.MaxN(); n > 0 && n == tableLen(val) {
			list := make([]any, n)
			for i := 1; i <= n; i++ {
				list[i-1] = toGoVisited(val.RawGetInt(i), visited)
			}
			return list
		}
		m := make(map[string]any)
		val.ForEach(func(k, fv lua.LValue) {
			m[k.String()] = toGoVisited(fv, visited)
		})
		return m
	default:
		return nil
	}
}

func tableLen(t *lua.LTable) int {
	n := 0
	t.ForEach(func(lua.LValue, lua.LValue) { n++ })
	return n
}

// toLua converts a Go value. Structs become tables keyed by their json
// field names.
func toLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return lua.LNil
		}
		return toLua(L, rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return lua.LNumber(rv.Float())
	case reflect.String:
		return lua.LString(rv.String())
	case reflect.Slice, reflect.Array:
		t := L.NewTable()
		for i := 0; i < rv.Len(); i++ {
			t.RawSetInt(i+1, toLua(L, rv.Index(i).Interface()))
		}
		return t
	case reflect.Map:
		t := L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			t.RawSet(toLua(L, iter.Key().Interface()), toLua(L, iter.Value().Interface()))
		}
		return t
	case reflect.Struct:
		t := L.NewTable()
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			name := field.Name
			if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
				name = tag
			}
			t.RawSetString(name, toLua(L, rv.Field(i).Interface()))
		}
		return t
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}
