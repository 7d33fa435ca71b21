package binding

import (
	"log/slog"
	"reflect"
	"slices"

	"github.com/dshills/whichkey/internal/condition"
)

// Build converts records into a tree. Records with an unsupported type or a
// missing payload are logged and skipped; the rest of the tree is built.
func Build(items []Item, logger *slog.Logger) *Tree {
	if logger == nil {
		logger = slog.Default()
	}
	t := NewTree()
	t.roots = t.AddItems(items, logger)
	return t
}

// AddItems stores records in the arena and returns the ids of the ones that
// converted. Invalid records are logged and skipped, as is every record
// whose key an earlier sibling already uses.
func (t *Tree) AddItems(items []Item, logger *slog.Logger) []NodeID {
	ids := make([]NodeID, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.Key] {
			logger.Warn("dropping duplicate binding", "key", it.Key, "name", it.Name)
			continue
		}
		id, err := t.AddItem(it, logger)
		if err != nil {
			logger.Warn("skipping binding", "key", it.Key, "error", err)
			continue
		}
		seen[it.Key] = true
		ids = append(ids, id)
	}
	return ids
}

// AddItem stores a single record, and its descendants, in the arena.
func (t *Tree) AddItem(it Item, logger *slog.Logger) (NodeID, error) {
	if logger == nil {
		logger = slog.Default()
	}
	action, err := t.action(it, logger)
	if err != nil {
		return 0, err
	}
	return t.Add(Node{
		Key:    it.Key,
		Name:   it.Name,
		Icon:   it.Icon,
		Hidden: it.Display == DisplayHidden,
		Action: action,
	}), nil
}

func (t *Tree) action(it Item, logger *slog.Logger) (Action, error) {
	switch it.Type {
	case TypeCommand:
		if it.Command == "" {
			return nil, &MissingFieldError{Key: it.Key, Type: it.Type, Field: "command"}
		}
		leaf := Leaf{Commands: []string{it.Command}, Exit: it.Exit}
		if it.Args != nil {
			leaf.Args = []any{it.Args}
		}
		return leaf, nil
	case TypeCommands:
		if len(it.Commands) == 0 {
			return nil, &MissingFieldError{Key: it.Key, Type: it.Type, Field: "commands"}
		}
		return Leaf{
			Commands: append([]string(nil), it.Commands...),
			Args:     ArgList(it.Args),
			Exit:     it.Exit,
		}, nil
	case TypeBindings:
		return Submenu{Children: t.AddItems(it.Bindings, logger)}, nil
	case TypeTransient:
		return Transient{
			Children: t.AddItems(it.Bindings, logger),
			Commands: append([]string(nil), it.Commands...),
			Args:     ArgList(it.Args),
		}, nil
	case TypeConditional:
		return Conditional{Branches: t.addBranches(it, logger)}, nil
	default:
		return nil, &UnsupportedTypeError{Key: it.Key, Type: it.Type}
	}
}

func (t *Tree) addBranches(parent Item, logger *slog.Logger) []NodeID {
	ids := make([]NodeID, 0, len(parent.Bindings))
	hasElse := false
	for _, it := range parent.Bindings {
		cond, ok := condition.Parse(it.Key)
		if !ok {
			if hasElse {
				logger.Warn("dropping extra else branch", "key", parent.Key, "branch", it.Key)
				continue
			}
		} else if slices.ContainsFunc(ids, func(id NodeID) bool { return condition.KeyEqual(t.nodes[id].Key, it.Key) }) {
			logger.Warn("dropping duplicate branch", "key", parent.Key, "branch", it.Key)
			continue
		}
		if it.Name == "" {
			it.Name = parent.Name
		}
		if it.Icon == "" {
			it.Icon = parent.Icon
		}
		action, err := t.action(it, logger)
		if err != nil {
			logger.Warn("skipping branch", "key", parent.Key, "branch", it.Key, "error", err)
			continue
		}
		if !ok {
			hasElse = true
		}
		ids = append(ids, t.Add(Node{
			Key:       it.Key,
			Name:      it.Name,
			Icon:      it.Icon,
			Hidden:    it.Display == DisplayHidden,
			Condition: cond,
			Action:    action,
		}))
	}
	return ids
}

// ArgList normalizes the args of a command chain. A nil value means no
// arguments and any slice is spread into one argument per command.
func ArgList(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return append([]any(nil), list...)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Items converts nodes back into records.
func (t *Tree) Items(ids []NodeID) []Item {
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, t.Item(id))
	}
	return items
}

// Item converts a single node, and its descendants, back into a record.
func (t *Tree) Item(id NodeID) Item {
	n := &t.nodes[id]
	it := Item{Key: n.Key, Name: n.Name, Icon: n.Icon}
	if n.Hidden {
		it.Display = DisplayHidden
	}
	switch a := n.Action.(type) {
	case Leaf:
		it.Exit = a.Exit
		if len(a.Commands) == 1 && len(a.Args) <= 1 {
			it.Type = TypeCommand
			it.Command = a.Commands[0]
			if len(a.Args) == 1 {
				it.Args = a.Args[0]
			}
			break
		}
		it.Type = TypeCommands
		it.Commands = append([]string(nil), a.Commands...)
		if len(a.Args) > 0 {
			it.Args = append([]any(nil), a.Args...)
		}
	case Submenu:
		it.Type = TypeBindings
		it.Bindings = t.Items(a.Children)
	case Transient:
		it.Type = TypeTransient
		it.Bindings = t.Items(a.Children)
		if len(a.Commands) > 0 {
			it.Commands = append([]string(nil), a.Commands...)
		}
		if len(a.Args) > 0 {
			it.Args = append([]any(nil), a.Args...)
		}
	case Conditional:
		it.Type = TypeConditional
		it.Bindings = t.Items(a.Branches)
	}
	return it
}

// TypeOf returns the record type of a node's action.
func TypeOf(a Action) Type {
	switch a := a.(type) {
	case Leaf:
		if len(a.Commands) == 1 {
			return TypeCommand
		}
		return TypeCommands
	case Submenu:
		return TypeBindings
	case Transient:
		return TypeTransient
	case Conditional:
		return TypeConditional
	default:
		return ""
	}
}
