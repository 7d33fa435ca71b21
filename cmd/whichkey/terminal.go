package main

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/screen"
	"github.com/dshills/whichkey/internal/status"
)

// terminal owns the screen of an interactive run. Events go to the newest
// widget first; keys it does not consume are relayed to the menu.
type terminal struct {
	scr  *screen.Screen
	line *status.Line
	rec  *status.Recorder

	mu     sync.Mutex
	widget *picklist.Terminal
}

func newTerminal() (*terminal, error) {
	scr, err := screen.New()
	if err != nil {
		return nil, err
	}
	if err := scr.Init(); err != nil {
		return nil, err
	}
	return &terminal{scr: scr, line: status.NewLine(scr), rec: &status.Recorder{}}, nil
}

func (t *terminal) ui() ui {
	return ui{
		notes:     status.NewBar(t),
		newWidget: t.newWidget,
		terminal:  true,
	}
}

func (t *terminal) newWidget() picklist.Widget {
	w := picklist.NewTerminal(t.scr)
	t.mu.Lock()
	t.widget = w
	t.mu.Unlock()
	return w
}

// Show draws msg on the status line and keeps it for after the screen is
// closed.
func (t *terminal) Show(msg status.Message) {
	t.rec.Show(msg)
	t.line.Show(msg)
}

// Clear blanks the status line.
func (t *terminal) Clear() {
	t.rec.Clear()
	t.line.Clear()
}

// last returns the last message shown.
func (t *terminal) last() (status.Message, bool) {
	msgs := t.rec.Messages()
	if len(msgs) == 0 {
		return status.Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// loop reads events until the screen is closed. Ctrl+C, and Escape while
// no widget is showing, cancel the run.
func (t *terminal) loop(r *relay.Relay, cancel context.CancelFunc) {
	for {
		ev := t.scr.PollEvent()
		if ev == nil {
			return
		}
		t.mu.Lock()
		w := t.widget
		t.mu.Unlock()
		if w != nil && w.HandleEvent(ev) {
			continue
		}

		key, ok := ev.(*tcell.EventKey)
		if !ok {
			continue
		}
		switch key.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			cancel()
			continue
		}
		if name, ok := keyName(key); ok {
			r.TriggerKey(relay.KeyEvent{Key: name})
		}
	}
}

func (t *terminal) close() {
	t.scr.Fini()
}

// keyName names keys typed before a widget is shown, or keys the widget
// leaves alone.
func keyName(ev *tcell.EventKey) (string, bool) {
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModAlt == 0 {
		return string(ev.Rune()), true
	}
	return picklist.KeyName(ev)
}
