package app

import (
	"context"
	"fmt"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/compose"
	"github.com/dshills/whichkey/internal/menu"
	"github.com/dshills/whichkey/internal/relay"
)

func (a *App) registerCommands() error {
	handlers := map[string]command.Handler{
		command.Show:             a.cmdShow,
		command.Register:         a.cmdRegister,
		command.TriggerKey:       a.cmdTriggerKey,
		command.UndoKey:          a.cmdUndoKey,
		command.SearchBindings:   a.cmdSearchBindings,
		command.ShowTransient:    a.cmdShowTransient,
		command.RepeatRecent:     a.cmdRepeatRecent,
		command.RepeatMostRecent: a.cmdRepeatMostRecent,
		command.ToggleZenMode:    a.cmdToggleZenMode,
	}
	for name, h := range handlers {
		if err := a.registry.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// cmdShow shows a registered section, an inline binding list, or the
// default menu. It returns once the menu is open.
func (a *App) cmdShow(ctx context.Context, args ...any) error {
	show, err := a.showTarget(args)
	if err != nil {
		return err
	}
	return a.launch(ctx, command.Show, show)
}

// showTarget picks the menu a show command names.
func (a *App) showTarget(args []any) (func(context.Context, menu.Deps) error, error) {
	items := args
	if len(args) == 1 {
		switch v := args[0].(type) {
		case string:
			w, ok := a.Lookup(v)
			if !ok {
				return nil, fmt.Errorf("%w: section %q is not registered", ErrInvalidArgument, v)
			}
			return w.show, nil
		case []binding.Item:
			return a.itemsMenu(v), nil
		case []any:
			items = v
		}
	}
	if len(items) == 0 {
		return a.Default().show, nil
	}
	return a.itemsMenu(decodeItems(items, a.logger)), nil
}

func (a *App) itemsMenu(items []binding.Item) func(context.Context, menu.Deps) error {
	return func(ctx context.Context, deps menu.Deps) error {
		return a.showItems(ctx, deps, items)
	}
}

// cmdRegister registers a section. An object with a layers field registers
// a layer section.
func (a *App) cmdRegister(_ context.Context, args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: register expects one config object", ErrInvalidArgument)
	}
	m, _ := args[0].(map[string]any)
	var ok bool
	if _, layered := m["layers"]; layered {
		ok = a.RegisterLayers(args[0])
	} else {
		ok = a.Register(args[0])
	}
	if !ok {
		return ErrInvalidConfig
	}
	return nil
}

// cmdTriggerKey relays a key given as a string or as {key, when}.
func (a *App) cmdTriggerKey(_ context.Context, args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: triggerKey expects one key", ErrInvalidArgument)
	}
	var ev relay.KeyEvent
	switch v := args[0].(type) {
	case string:
		ev.Key = v
	case relay.KeyEvent:
		ev = v
	default:
		if err := compose.DecodeItem(v, &ev); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	if !a.relay.TriggerKey(ev) {
		a.logger.Debug("key triggered with no menu open", "key", ev.Key)
	}
	return nil
}

func (a *App) cmdUndoKey(context.Context, ...any) error {
	a.relay.UndoKey()
	return nil
}

func (a *App) cmdSearchBindings(context.Context, ...any) error {
	a.relay.SearchBindings()
	return nil
}

func (a *App) cmdToggleZenMode(context.Context, ...any) error {
	a.relay.ToggleZenMode()
	return nil
}

// cmdShowTransient shows a transient menu. Its argument is a
// binding.TransientConfig or an object of the same shape.
func (a *App) cmdShowTransient(ctx context.Context, args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: showTransient expects one config", ErrInvalidArgument)
	}
	cfg, ok := args[0].(binding.TransientConfig)
	if !ok {
		if err := compose.DecodeItem(args[0], &cfg); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	opts := a.menuOptions()
	return a.launch(ctx, command.ShowTransient, func(ctx context.Context, deps menu.Deps) error {
		return menu.ShowTransient(ctx, deps, cfg, opts)
	})
}

func (a *App) cmdRepeatRecent(ctx context.Context, args ...any) error {
	w, err := a.resolve(args)
	if err != nil {
		return err
	}
	return a.launch(ctx, command.RepeatRecent, w.Repeater().Show)
}

func (a *App) cmdRepeatMostRecent(ctx context.Context, args ...any) error {
	w, err := a.resolve(args)
	if err != nil {
		return err
	}
	return w.Repeater().RepeatLastAction(ctx, 0)
}
