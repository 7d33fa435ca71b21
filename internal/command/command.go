package command

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
)

// Executor invokes a command by name.
type Executor interface {
	Invoke(ctx context.Context, name string, arg any) error
}

// Handler runs a command. A list argument is spread into args; any other
// non-nil argument is passed as the only element.
type Handler func(ctx context.Context, args ...any) error

// ExecuteChain invokes commands in order, passing args[i] to commands[i].
// It stops at the first failure.
func ExecuteChain(ctx context.Context, ex Executor, commands []string, args []any) error {
	for i, name := range commands {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		if err := ex.Invoke(ctx, name, arg); err != nil {
			return err
		}
	}
	return nil
}

// Registry maps names to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	contexts map[string]any
	logger   *slog.Logger
}

// NewRegistry creates a registry with the setContext command registered.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		handlers: make(map[string]Handler),
		contexts: make(map[string]any),
		logger:   logger,
	}
	r.handlers[SetContext] = r.setContext
	return r
}

// Register adds or replaces a handler.
func (r *Registry) Register(name string, h Handler) error {
	if h == nil {
		return fmt.Errorf("%w: %s", ErrNilHandler, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
	return nil
}

// Unregister removes a handler.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Has reports whether name has a handler.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Invoke runs the handler registered for name. Handler panics are returned
// as a PanicError.
func (r *Registry) Invoke(ctx context.Context, name string, arg any) error {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return &Error{Name: name, Err: ErrUnknownCommand}
	}

	r.logger.Debug("invoking command", "command", name)
	if err := call(ctx, h, Spread(arg)); err != nil {
		return &Error{Name: name, Err: err}
	}
	return nil
}

// Context returns a value set with the setContext command.
func (r *Registry) Context(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.contexts[key]
	return v, ok
}

func (r *Registry) setContext(_ context.Context, args ...any) error {
	if len(args) != 2 {
		return fmt.Errorf("setContext expects a key and a value, got %d arguments", len(args))
	}
	key, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("setContext key must be a string, got %T", args[0])
	}
	r.mu.Lock()
	r.contexts[key] = args[1]
	r.mu.Unlock()
	return nil
}

// Spread converts a command argument to handler arguments.
func Spread(arg any) []any {
	switch a := arg.(type) {
	case nil:
		return nil
	case []any:
		return a
	default:
		return []any{arg}
	}
}

func call(ctx context.Context, h Handler, args []any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return h(ctx, args...)
}
