package menu

import (
	"context"
	"strings"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/key"
	"github.com/dshills/whichkey/internal/picklist"
)

// Entry is a row of the binding search.
type Entry struct {
	// Label is the key path of the binding.
	Label string

	// Description is the binding name.
	Description string

	// Detail is the names of the enclosing submenus.
	Detail string

	// Commands and Args run when a leaf entry is accepted.
	Commands []string
	Args     []any

	// Children are listed when a submenu entry is accepted.
	Children []Entry
}

// Flatten lists every binding reachable from ids, the bindings of ids first
// and then their descendants. path is the nodes already selected to reach
// ids; it prefixes labels and details.
//
// Conditional branches are listed under the key of their conditional node
// with the branch condition appended to the description; branch keys never
// appear in labels.
func Flatten(t *binding.Tree, ids []binding.NodeID, path []binding.Node) []Entry {
	var curr, next []Entry
	for _, id := range ids {
		n := t.Node(id)
		for _, e := range entries(t, *n, path) {
			curr = append(curr, e)
			next = append(next, e.Children...)
		}
	}
	return append(curr, next...)
}

func entries(t *binding.Tree, n binding.Node, path []binding.Node) []Entry {
	if c, ok := n.Action.(binding.Conditional); ok {
		var out []Entry
		for _, id := range c.Branches {
			b := t.Node(id)
			resolved := n
			resolved.Action = b.Action
			desc := n.Name
			if !b.Condition.IsEmpty() {
				desc += " (" + b.Condition.String() + ")"
			}
			for _, e := range entries(t, resolved, path) {
				e.Description = desc
				out = append(out, e)
			}
		}
		return out
	}

	full := append(append([]binding.Node(nil), path...), n)
	e := Entry{
		Label:       pathLabel(full),
		Description: n.Name,
		Detail:      pathDetail(path),
	}
	switch a := n.Action.(type) {
	case binding.Leaf:
		e.Commands = a.Commands
		e.Args = a.Args
	case binding.Submenu:
		e.Children = Flatten(t, a.Children, full)
	case binding.Transient:
		e.Children = Flatten(t, a.Children, full)
	}
	return []Entry{e}
}

func pathLabel(path []binding.Node) string {
	keys := make([]string, len(path))
	for i, n := range path {
		keys[i] = n.Key
	}
	return key.Path(keys)
}

func pathDetail(path []binding.Node) string {
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.Name
	}
	return strings.Join(names, " › ")
}

// ShowSearch runs a searchable list of entries. Accepting a leaf runs its
// commands and ends the search; accepting a submenu lists its children.
func ShowSearch(ctx context.Context, deps Deps, entries []Entry, title string) error {
	return run(ctx, deps, "search", &searchMenu{title: title, entries: entries}, "", "")
}

type searchMenu struct {
	title   string
	entries []Entry
}

func (m *searchMenu) start(s *session) error {
	m.present(s, m.entries, "")
	return nil
}

func (m *searchMenu) present(s *session, entries []Entry, placeholder string) {
	items := make([]picklist.Item, len(entries))
	for i, e := range entries {
		items[i] = picklist.Item{
			Label:       e.Label,
			Description: e.Description,
			Detail:      e.Detail,
			Value:       e,
		}
	}
	s.present(view{
		title:       m.title,
		placeholder: placeholder,
		items:       items,
		matchDesc:   true,
		matchDetail: true,
	})
}

func (m *searchMenu) accept(s *session, it picklist.Item) error {
	e, ok := it.Value.(Entry)
	if !ok {
		return nil
	}
	if len(e.Commands) > 0 {
		s.hideWidget()
		if err := s.exec(e.Commands, e.Args); err != nil {
			return err
		}
	}
	if len(e.Children) > 0 {
		m.present(s, e.Children, e.Description)
		return nil
	}
	s.close(nil)
	return nil
}
