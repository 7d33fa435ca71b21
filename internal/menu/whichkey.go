package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
	"github.com/dshills/whichkey/internal/condition"
	"github.com/dshills/whichkey/internal/key"
	"github.com/dshills/whichkey/internal/picklist"
	"github.com/dshills/whichkey/internal/relay"
	"github.com/dshills/whichkey/internal/status"
)

// Button ids.
const (
	ButtonUndo   = "undo"
	ButtonSearch = "search"
)

var (
	searchButton = picklist.Button{ID: ButtonSearch, Icon: "$(search)", Tooltip: "Search keybindings"}
	undoButton   = picklist.Button{ID: ButtonUndo, Icon: "$(arrow-left)", Tooltip: "Undo key"}
)

// SearchTitle is the title of the search opened from the which-key menu.
const SearchTitle = "Search Keybindings"

// Show runs the which-key menu over roots of tree. It returns when the
// interaction ends: nil once a leaf ran, a key matched nothing or the user
// dismissed the menu; the error of a failed command otherwise.
func Show(ctx context.Context, deps Deps, tree *binding.Tree, roots []binding.NodeID, opts Options) error {
	w := &whichKey{tree: tree, opts: opts}
	w.levels = []level{{ids: roots, title: opts.Title, root: true}}
	return run(ctx, deps, "whichkey", w, command.ContextActive, command.ContextVisible)
}

// ShowTransient runs a transient menu over cfg. Leaves keep it open unless
// they are marked exit.
func ShowTransient(ctx context.Context, deps Deps, cfg binding.TransientConfig, opts Options) error {
	tree := binding.Build(cfg.Bindings, deps.Logger)
	w := &whichKey{tree: tree, opts: opts}
	w.opts.ShowButtons = false
	w.levels = []level{{ids: tree.Roots(), title: cfg.Title, root: true, transient: true}}
	return run(ctx, deps, "transient", w, "", command.ContextTransientVisible)
}

// level is an entry of the which-key state history.
type level struct {
	ids       []binding.NodeID
	title     string
	root      bool
	transient bool
}

type whichKey struct {
	tree   *binding.Tree
	opts   Options
	levels []level

	// path holds the nodes selected to reach the current level.
	path []binding.Node

	// pending is the prefix of a longer key typed at this level.
	pending string
	zenMode bool
}

func (w *whichKey) current() level {
	return w.levels[len(w.levels)-1]
}

func (w *whichKey) start(s *session) error {
	w.render(s)
	return nil
}

func (w *whichKey) render(s *session) {
	lv := w.current()
	v := view{
		title:   lv.title,
		items:   w.items(lv.ids),
		buttons: w.buttons(lv),
	}
	if !lv.transient {
		v.delay = w.opts.Delay
	}
	if lv.transient && w.zenMode {
		v.title = ""
		v.items = nil
	}
	s.present(v)
}

func (w *whichKey) buttons(lv level) []picklist.Button {
	if !w.opts.ShowButtons {
		return nil
	}
	if lv.root {
		return []picklist.Button{searchButton}
	}
	return []picklist.Button{undoButton, searchButton}
}

// items renders the visible nodes of a level.
func (w *whichKey) items(ids []binding.NodeID) []picklist.Item {
	width := 0
	for _, id := range ids {
		if n := w.tree.Node(id); !n.Hidden {
			width = max(width, key.Len(n.Key))
		}
	}

	items := make([]picklist.Item, 0, len(ids))
	for _, id := range ids {
		n := w.tree.Node(id)
		if n.Hidden {
			continue
		}
		label := key.Display(n.Key)
		if w.opts.UseFullWidth {
			label = key.PadFullWidth(n.Key, width)
		}
		desc := n.Name
		if w.opts.ShowIcons && n.Icon != "" {
			desc = fmt.Sprintf("$(%s)   %s", n.Icon, n.Name)
		}
		items = append(items, picklist.Item{Label: label, Description: desc, Value: id})
	}
	return items
}

func (w *whichKey) key(s *session, ev relay.KeyEvent) error {
	cand := w.pending + ev.Key
	ids := w.current().ids
	if id, ok := w.tree.Find(ids, cand, false); ok {
		w.pending = ""
		return w.dispatch(s, id, ev.When)
	}
	for _, id := range ids {
		if strings.HasPrefix(w.tree.Node(id).Key, cand) {
			w.pending = cand
			return nil
		}
	}
	w.pending = ""
	return w.mismatch(s, cand)
}

func (w *whichKey) accept(s *session, it picklist.Item) error {
	id, ok := it.Value.(binding.NodeID)
	if !ok {
		return nil
	}
	w.pending = ""
	return w.dispatch(s, id, "")
}

func (w *whichKey) button(s *session, b picklist.Button) error {
	switch b.ID {
	case ButtonUndo:
		return w.undo(s)
	case ButtonSearch:
		return w.search(s)
	}
	return nil
}

// mismatch reports a key matching nothing. A transient level stays open.
func (w *whichKey) mismatch(s *session, k string) error {
	return w.fail(s, w.keyPath(k)+" is undefined")
}

// fail shows msg as an error. A transient level stays open, any other ends
// the menu.
func (w *whichKey) fail(s *session, msg string) error {
	if w.current().transient {
		s.deps.Notifier.ShowError(msg, status.DefaultTimeout)
		s.resetValue()
		return nil
	}
	s.hideWidget()
	s.deps.Notifier.ShowError(msg, status.DefaultTimeout)
	s.close(nil)
	return nil
}

// dispatch runs the node selected at the current level.
func (w *whichKey) dispatch(s *session, id binding.NodeID, when string) error {
	n := *w.tree.Node(id)
	w.path = append(w.path, n)
	s.hideStatus()

	ctx := &condition.Context{When: when, LanguageID: s.deps.Context.LanguageID()}
	action := n.Action
	for {
		c, ok := action.(binding.Conditional)
		if !ok {
			break
		}
		branch, ok := w.tree.Resolve(c, ctx)
		if !ok {
			w.path = w.path[:len(w.path)-1]
			return w.fail(s, "No condition matched")
		}
		action = w.tree.Node(branch).Action
	}
	w.path[len(w.path)-1].Action = action

	switch a := action.(type) {
	case binding.Leaf:
		return w.runLeaf(s, a)
	case binding.Submenu:
		w.enter(s, level{ids: a.Children, title: n.Name})
		return nil
	case binding.Transient:
		s.hideWidget()
		if err := s.exec(a.Commands, a.Args); err != nil {
			return err
		}
		w.enter(s, level{ids: a.Children, title: n.Name, transient: true})
		return nil
	default:
		return fmt.Errorf("binding %q: unsupported action %T", n.Key, action)
	}
}

func (w *whichKey) runLeaf(s *session, a binding.Leaf) error {
	s.hideWidget()
	if err := s.exec(a.Commands, a.Args); err != nil {
		return err
	}
	if rec := s.deps.Recorder; rec != nil && !invokesRepeat(a) {
		rec.Record(append([]binding.Node(nil), w.path...))
	}
	if w.current().transient && !a.Exit {
		w.path = w.path[:len(w.path)-1]
		w.render(s)
		return nil
	}
	s.close(nil)
	return nil
}

// enter pushes a level and shows it.
func (w *whichKey) enter(s *session, lv level) {
	w.levels = append(w.levels, lv)
	if !lv.transient {
		s.showKeys(w.keyPath(""))
	}
	w.render(s)
}

// undo returns to the previous level. It does nothing at the root.
func (w *whichKey) undo(s *session) error {
	if len(w.levels) < 2 {
		return nil
	}
	w.levels = w.levels[:len(w.levels)-1]
	w.path = w.path[:len(w.path)-1]
	w.pending = ""
	if len(w.path) > 0 && !w.current().transient {
		s.showKeys(w.keyPath(""))
	} else {
		s.hideKeys()
	}
	w.render(s)
	return nil
}

// search ends the menu and opens the binding search over the current level.
func (w *whichKey) search(s *session) error {
	entries := Flatten(w.tree, w.current().ids, w.path)
	s.hideWidget()
	s.then = func(ctx context.Context) error {
		return ShowSearch(ctx, s.deps, entries, SearchTitle)
	}
	s.close(nil)
	return nil
}

// zen toggles zen mode on transient levels.
func (w *whichKey) zen(s *session) error {
	lv := w.current()
	if !lv.transient {
		return nil
	}
	w.zenMode = !w.zenMode
	if w.zenMode {
		s.refresh("", nil)
	} else {
		s.refresh(lv.title, w.items(lv.ids))
	}
	return nil
}

// keyPath renders the keys of the path followed by k.
func (w *whichKey) keyPath(k string) string {
	keys := make([]string, 0, len(w.path)+1)
	for _, n := range w.path {
		keys = append(keys, n.Key)
	}
	if k != "" {
		keys = append(keys, k)
	}
	return key.Path(keys)
}

func invokesRepeat(a binding.Leaf) bool {
	for _, c := range a.Commands {
		if command.IsRepeat(c) {
			return true
		}
	}
	return false
}
