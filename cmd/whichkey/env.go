package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/whichkey/internal/app"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/config"
	"github.com/dshills/whichkey/internal/menu"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/status"
)

const workspaceFileName = config.WorkspaceFile

// ui is where menus are drawn.
type ui struct {
	notes     status.Notifier
	newWidget func() picklist.Widget
	// terminal is set when the menu owns the terminal, so logs must not go
	// to stderr.
	terminal bool
}

// env is a configured App with everything it depends on.
type env struct {
	logger   *slog.Logger
	store    *config.Store
	registry *command.Registry
	app      *app.App
	closers  []func()
}

func (c *cli) open(u ui) (*env, error) {
	logger, closeLog, err := c.logger(u.terminal)
	if err != nil {
		return nil, err
	}
	e := &env{logger: logger}
	e.closers = append(e.closers, closeLog)

	userFile := c.v.GetString("config")
	if userFile == "" {
		userFile = config.DefaultUserFile()
	}
	e.store, err = config.New(
		config.WithUserFile(userFile),
		config.WithWorkspaceFile(filepath.Join(c.v.GetString("workspace"), workspaceFileName)),
		config.WithLogger(logger),
	)
	if err != nil {
		e.close()
		return nil, err
	}
	e.closers = append(e.closers, func() { _ = e.store.Close() })
	if order := c.v.GetString("sort-order"); order != "" {
		if err := e.store.Set(config.SectionSettings+".sortOrder", order); err != nil {
			e.close()
			return nil, err
		}
	}

	e.registry = command.NewRegistry(logger)
	if err := e.registry.Register("echo", echo(u.notes)); err != nil {
		e.close()
		return nil, err
	}
	if script := c.v.GetString("commands"); script != "" {
		lc := command.NewLuaCommands(e.registry, logger)
		e.closers = append(e.closers, lc.Close)
		if err := lc.DoFile(script); err != nil {
			e.close()
			return nil, fmt.Errorf("loading commands: %w", err)
		}
		if err := lc.RegisterAll(e.registry); err != nil {
			e.close()
			return nil, err
		}
	}

	var langCtx menu.ContextSource
	if lang := c.v.GetString("language"); lang != "" {
		langCtx = menu.StaticContext(lang)
	}
	e.app, err = app.New(app.Options{
		Store:     e.store,
		Registry:  e.registry,
		Notifier:  u.notes,
		NewWidget: u.newWidget,
		Context:   langCtx,
		Logger:    logger,
	})
	if err != nil {
		e.close()
		return nil, err
	}
	e.closers = append(e.closers, e.app.Close)
	return e, nil
}

// logger writes to --log-file, or to stderr unless the terminal is in use.
func (c *cli) logger(terminal bool) (*slog.Logger, func(), error) {
	level, err := app.ParseLogLevel(c.v.GetString("log-level"))
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stderr
	closeLog := func() {}
	if path := c.v.GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	} else if terminal {
		w = io.Discard
	}
	return app.NewLogger(w, level), closeLog, nil
}

// menu returns the menu of the section named by args, registering it if
// needed.
func (c *cli) menu(e *env, args []string) *app.WhichKey {
	if len(args) == 0 {
		return e.app.Default()
	}
	if w, ok := e.app.Lookup(args[0]); ok {
		return w
	}
	if c.v.GetBool("layers") {
		return e.app.RegisterLayerConfig(app.LayerConfig{Layers: args[0]})
	}
	return e.app.RegisterConfig(app.Config{Bindings: args[0]})
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

// echo shows its arguments as a status message.
func echo(notes status.Notifier) command.Handler {
	return func(_ context.Context, args ...any) error {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = fmt.Sprint(a)
		}
		notes.ShowPlain(strings.Join(parts, " "), 0)
		return nil
	}
}
