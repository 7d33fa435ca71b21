// Package repeater remembers the most recent which-key actions and runs them
// again.
package repeater

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/menu"
	"github.com/dshills/whichkey/internal/status"
)

// MaxEntries is the number of remembered actions, one per digit key.
const MaxEntries = 9

// Title is the title of the repeat menu.
const Title = "Repeat previous actions"

const noLastAction = "No last action"

type entry struct {
	path []binding.Node
	key  string
}

func newEntry(path []binding.Node) entry {
	keys := make([]string, len(path))
	for i, n := range path {
		keys[i] = n.Key
	}
	return entry{path: append([]binding.Node(nil), path...), key: strings.Join(keys, ",")}
}

func (e entry) leaf() (binding.Leaf, bool) {
	if len(e.path) == 0 {
		return binding.Leaf{}, false
	}
	l, ok := e.path[len(e.path)-1].Action.(binding.Leaf)
	return l, ok
}

func (e entry) name() string {
	return e.path[len(e.path)-1].Name
}

func (e entry) detail() string {
	names := make([]string, len(e.path))
	for i, n := range e.path {
		names[i] = n.Name
	}
	return strings.Join(names, " › ")
}

// Repeater is a most-recently-used list of executed binding paths.
type Repeater struct {
	mu      sync.Mutex
	entries []entry

	ex     command.Executor
	notes  status.Notifier
	logger *slog.Logger
}

// New creates an empty repeater running actions through ex. Failures are
// reported on notes; a nil notes discards them.
func New(ex command.Executor, notes status.Notifier, logger *slog.Logger) *Repeater {
	if logger == nil {
		logger = slog.Default()
	}
	if notes == nil {
		notes = status.NewBar(&status.Recorder{})
	}
	return &Repeater{ex: ex, notes: notes, logger: logger}
}

// Record remembers path, the nodes selected to reach an executed leaf. An
// empty path or a leaf invoking the repeater itself is ignored. A path
// already present moves to the front.
func (r *Repeater) Record(path []binding.Node) {
	e := newEntry(path)
	l, ok := e.leaf()
	if !ok {
		return
	}
	for _, c := range l.Commands {
		if command.IsRepeat(c) {
			return
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(e.key)
	r.entries = append([]entry{e}, r.entries...)
	if len(r.entries) > MaxEntries {
		r.entries = r.entries[:MaxEntries]
	}
	r.logger.Debug("recorded action", "path", e.key)
}

// remove deletes the entry with key and returns it. r.mu must be held.
func (r *Repeater) remove(key string) (entry, bool) {
	for i, e := range r.entries {
		if e.key == key {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return e, true
		}
	}
	return entry{}, false
}

// RepeatLastAction runs the entry at idx, 0 being the most recent, and moves
// it to the front. When idx names no entry an error message is shown and
// nil returned; only a failing command chain is an error.
func (r *Repeater) RepeatLastAction(ctx context.Context, idx int) error {
	r.mu.Lock()
	if idx < 0 || idx >= len(r.entries) {
		r.mu.Unlock()
		r.notes.ShowError(noLastAction, status.DefaultTimeout)
		return nil
	}
	e := r.entries[idx]
	r.remove(e.key)
	r.mu.Unlock()

	l, _ := e.leaf()
	err := command.ExecuteChain(ctx, r.ex, l.Commands, l.Args)

	r.mu.Lock()
	r.remove(e.key)
	r.entries = append([]entry{e}, r.entries...)
	if len(r.entries) > MaxEntries {
		r.entries = r.entries[:MaxEntries]
	}
	r.mu.Unlock()
	return err
}

func (r *Repeater) repeatKey(ctx context.Context, key string) error {
	r.mu.Lock()
	idx := -1
	for i, e := range r.entries {
		if e.key == key {
			idx = i
			break
		}
	}
	r.mu.Unlock()
	return r.RepeatLastAction(ctx, idx)
}

// Show opens a menu listing the remembered actions under the keys 1 to 9.
func (r *Repeater) Show(ctx context.Context, deps menu.Deps) error {
	r.mu.Lock()
	entries := make([]menu.RepeatEntry, len(r.entries))
	for i, e := range r.entries {
		key := e.key
		entries[i] = menu.RepeatEntry{
			Key:         strconv.Itoa(i + 1),
			Description: e.name(),
			Detail:      e.detail(),
			Run: func(ctx context.Context) error {
				return r.repeatKey(ctx, key)
			},
		}
	}
	r.mu.Unlock()
	return menu.ShowRepeater(ctx, deps, entries, Title)
}

// Len returns the number of remembered actions.
func (r *Repeater) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear forgets every action.
func (r *Repeater) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

func (r *Repeater) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.key
	}
	return out
}
