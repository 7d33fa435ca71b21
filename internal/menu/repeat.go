package menu

import (
	"context"
	"strings"

	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

// RepeatEntry is a row of the repeat menu.
type RepeatEntry struct {
	// Key selects the entry.
	Key         string
	Description string
	Detail      string

	// Run repeats the action.
	Run func(ctx context.Context) error
}

// ShowRepeater runs a menu selecting one of entries by key. A key matching
// nothing ends the menu with an error message.
func ShowRepeater(ctx context.Context, deps Deps, entries []RepeatEntry, title string) error {
	return run(ctx, deps, "repeater", &repeatMenu{title: title, entries: entries}, "", "")
}

type repeatMenu struct {
	title   string
	entries []RepeatEntry
	pending string
}

func (m *repeatMenu) start(s *session) error {
	items := make([]picklist.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = picklist.Item{Label: e.Key, Description: e.Description, Detail: e.Detail, Value: i}
	}
	s.present(view{title: m.title, items: items})
	return nil
}

func (m *repeatMenu) key(s *session, ev relay.KeyEvent) error {
	cand := m.pending + ev.Key
	prefix := false
	for i, e := range m.entries {
		if e.Key == cand {
			m.pending = ""
			return m.run(s, i)
		}
		prefix = prefix || strings.HasPrefix(e.Key, cand)
	}
	if prefix {
		m.pending = cand
		return nil
	}
	s.hideWidget()
	s.deps.Notifier.ShowError(cand+" is undefined", status.DefaultTimeout)
	s.close(nil)
	return nil
}

func (m *repeatMenu) accept(s *session, it picklist.Item) error {
	if i, ok := it.Value.(int); ok {
		return m.run(s, i)
	}
	return nil
}

func (m *repeatMenu) run(s *session, i int) error {
	if i < 0 || i >= len(m.entries) {
		return nil
	}
	s.deps.Notifier.Hide()
	s.hideWidget()
	if run := m.entries[i].Run; run != nil {
		if err := run(s.ctx); err != nil {
			return err
		}
	}
	s.close(nil)
	return nil
}
