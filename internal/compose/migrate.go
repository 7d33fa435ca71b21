package compose

import (
	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/command"
)

// Migrate rewrites every reachable transient binding into a leaf whose
// command chain ends with the show-transient command. The transient's
// children become the TransientConfig argument of that command, so nested
// transients are converted exactly once, as part of their parent.
func Migrate(t *binding.Tree) {
	migrateLevel(t, t.Roots())
}

func migrateLevel(t *binding.Tree, ids []binding.NodeID) {
	for _, id := range ids {
		n := t.Node(id)
		switch a := n.Action.(type) {
		case binding.Transient:
			n.Action = migrateTransient(t, n.Name, a)
		case binding.Submenu:
			migrateLevel(t, a.Children)
		case binding.Conditional:
			migrateLevel(t, a.Branches)
		}
	}
}

func migrateTransient(t *binding.Tree, title string, a binding.Transient) binding.Leaf {
	commands := append(append([]string(nil), a.Commands...), command.ShowTransient)
	args := make([]any, len(commands))
	copy(args, a.Args)
	args[len(args)-1] = binding.TransientConfig{
		Title:    title,
		Bindings: TransientItems(t, a.Children),
	}
	return binding.Leaf{Commands: commands, Args: args}
}

// TransientItems converts the children of a transient into transient
// bindings. Leaves keep their commands. A submenu becomes a leaf that shows
// the submenu and exits; a nested transient becomes a leaf that shows the
// nested transient and exits. Conditional branches are converted the same
// way.
func TransientItems(t *binding.Tree, ids []binding.NodeID) []binding.TransientItem {
	items := make([]binding.TransientItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, transientItem(t, id))
	}
	return items
}

func transientItem(t *binding.Tree, id binding.NodeID) binding.TransientItem {
	n := t.Node(id)
	switch a := n.Action.(type) {
	case binding.Submenu:
		it := header(n)
		it.Type = binding.TypeCommand
		it.Command = command.Show
		it.Args = t.Items(a.Children)
		it.Exit = true
		return it
	case binding.Transient:
		leaf := migrateTransient(t, n.Name, a)
		it := header(n)
		it.Type = binding.TypeCommands
		it.Commands = leaf.Commands
		it.Args = leaf.Args
		it.Exit = true
		return it
	case binding.Conditional:
		it := header(n)
		it.Type = binding.TypeConditional
		it.Bindings = TransientItems(t, a.Branches)
		return it
	default:
		return t.Item(id)
	}
}

func header(n *binding.Node) binding.Item {
	it := binding.Item{Key: n.Key, Name: n.Name, Icon: n.Icon}
	if n.Hidden {
		it.Display = binding.DisplayHidden
	}
	return it
}
