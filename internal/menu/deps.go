package menu

import (
	"context"
	"log/slog"
	"time"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

// ContextSource reports the runtime state conditions are matched against.
type ContextSource interface {
	// LanguageID returns the language of the active document.
	LanguageID() string
}

// StaticContext is a ContextSource with a fixed language.
type StaticContext string

// LanguageID returns the language.
func (c StaticContext) LanguageID() string {
	return string(c)
}

// Recorder receives the path of every leaf run from the which-key menu.
// The last node of the path carries the resolved leaf action.
type Recorder interface {
	Record(path []binding.Node)
}

// Deps are the collaborators of a menu.
type Deps struct {
	// NewWidget creates the widget for a session. Defaults to a headless
	// widget.
	NewWidget func() picklist.Widget

	// Executor runs commands. Required.
	Executor command.Executor

	// Notifier shows status messages. Defaults to discarding them.
	Notifier status.Notifier

	// Relay delivers externally triggered keys. Defaults to a private relay
	// nothing triggers.
	Relay *relay.Relay

	// Context supplies the active language for conditions.
	Context ContextSource

	// Recorder is told about every leaf run. Optional.
	Recorder Recorder

	// Ready is called once the menu has subscribed to the relay and shown
	// its first view. A menu that hands off to another calls it again from
	// the next one. Optional.
	Ready func()

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (d Deps) withDefaults() (Deps, error) {
	if d.Executor == nil {
		return d, ErrNoExecutor
	}
	if d.NewWidget == nil {
		d.NewWidget = func() picklist.Widget { return picklist.NewHeadless() }
	}
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.Relay == nil {
		d.Relay = relay.New()
	}
	if d.Context == nil {
		d.Context = StaticContext("")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d, nil
}

// Options control how the which-key menu is shown.
type Options struct {
	// Title of the root level.
	Title string

	// Delay before a level's items are shown. Keys typed meanwhile match
	// against the level as usual.
	Delay time.Duration

	// ShowIcons prefixes names with their icon.
	ShowIcons bool

	// ShowButtons shows the undo and search buttons.
	ShowButtons bool

	// UseFullWidth renders keys with full-width characters.
	UseFullWidth bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{ShowIcons: true, ShowButtons: true}
}

type nopNotifier struct{}

func (nopNotifier) ShowPlain(string, time.Duration) {}
func (nopNotifier) ShowError(string, time.Duration) {}
func (nopNotifier) Hide()                           {}
func (nopNotifier) HideIfPlain()                    {}
func (nopNotifier) HideIfError()                    {}

func setContext(ctx context.Context, ex command.Executor, logger *slog.Logger, key string, value bool) {
	if key == "" {
		return
	}
	if err := ex.Invoke(ctx, command.SetContext, []any{key, value}); err != nil {
		logger.Debug("set context failed", "key", key, "error", err)
	}
}
