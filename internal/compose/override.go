package compose

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/condition"
)

// level is one child list of the tree: the roots when parent is nil.
type level struct {
	tree   *binding.Tree
	parent *binding.NodeID

	// branches is set when the list holds conditional branches.
	branches bool
}

func (l level) ids() []binding.NodeID {
	if l.parent == nil {
		return l.tree.Roots()
	}
	return l.tree.Children(*l.parent)
}

func (l level) set(ids []binding.NodeID) {
	if l.parent == nil {
		l.tree.SetRoots(ids)
		return
	}
	l.tree.SetChildren(*l.parent, ids)
}

func (l level) index(k string) int {
	for i, id := range l.ids() {
		n := l.tree.Node(id)
		if l.branches {
			if condition.KeyEqual(n.Key, k) {
				return i
			}
		} else if n.Key == k {
			return i
		}
	}
	return -1
}

// ApplyOverrides applies overrides in order. A failing override is logged
// and the rest are still applied.
func ApplyOverrides(tree *binding.Tree, overrides []binding.Override, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, o := range overrides {
		if err := ApplyOverride(tree, o, logger); err != nil {
			logger.Warn("skipping binding override", "keys", o.Keys, "error", err)
		}
	}
}

// ApplyOverride applies a single override.
//
// Without a position the binding with the same trailing key is replaced, or
// the binding is appended. A non-negative position removes any binding with
// the same key and inserts at that index. A negative position deletes.
func ApplyOverride(tree *binding.Tree, o binding.Override, logger *slog.Logger) error {
	keys, err := OverrideKeys(o.Keys)
	if err != nil {
		return err
	}
	lvl, err := findLevel(tree, keys)
	if err != nil {
		return err
	}

	last := keys[len(keys)-1]
	ids := lvl.ids()
	index := lvl.index(last)

	if o.IsDelete() {
		if index != -1 {
			lvl.set(remove(ids, index))
		}
		return nil
	}

	if o.Name == "" || o.Type == "" {
		return &InvalidOverrideError{Keys: keys}
	}
	id, err := tree.AddItem(o.Item(last), logger)
	if err != nil {
		return err
	}
	if lvl.branches {
		tree.Node(id).Condition, _ = condition.Parse(last)
	}

	if o.Position == nil {
		if index != -1 {
			ids = clone(ids)
			ids[index] = id
		} else {
			ids = append(clone(ids), id)
		}
		lvl.set(ids)
		return nil
	}

	if index != -1 {
		ids = remove(ids, index)
	}
	lvl.set(insert(ids, *o.Position, id))
	return nil
}

// findLevel walks all but the last key and returns the child list the last
// key lives in.
func findLevel(tree *binding.Tree, keys []string) (level, error) {
	lvl := level{tree: tree}
	for _, k := range keys[:len(keys)-1] {
		index := lvl.index(k)
		if index == -1 {
			return level{}, fmt.Errorf("%w: key %q of %v", ErrPathNotFound, k, keys)
		}
		id := lvl.ids()[index]
		n := tree.Node(id)
		switch n.Action.(type) {
		case binding.Submenu, binding.Transient:
			lvl = level{tree: tree, parent: &id}
		case binding.Conditional:
			lvl = level{tree: tree, parent: &id, branches: true}
		default:
			return level{}, fmt.Errorf("%w: key %q of %v has no bindings", ErrPathNotFound, k, keys)
		}
	}
	return lvl, nil
}

// OverrideKeys normalizes an override key path: a dotted string or a list
// of segments.
func OverrideKeys(v any) ([]string, error) {
	var keys []string
	switch k := v.(type) {
	case string:
		keys = strings.Split(k, ".")
	case []string:
		keys = k
	case []any:
		keys = make([]string, len(k))
		for i, s := range k {
			str, ok := s.(string)
			if !ok {
				return nil, fmt.Errorf("override key %v is not a string", s)
			}
			keys[i] = str
		}
	default:
		return nil, fmt.Errorf("override keys must be a string or a list, got %T", v)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("override keys are empty")
	}
	return keys, nil
}

func clone(ids []binding.NodeID) []binding.NodeID {
	return append([]binding.NodeID(nil), ids...)
}

func remove(ids []binding.NodeID, i int) []binding.NodeID {
	out := make([]binding.NodeID, 0, len(ids)-1)
	out = append(out, ids[:i]...)
	return append(out, ids[i+1:]...)
}

func insert(ids []binding.NodeID, i int, id binding.NodeID) []binding.NodeID {
	if i > len(ids) {
		i = len(ids)
	}
	out := make([]binding.NodeID, 0, len(ids)+1)
	out = append(out, ids[:i]...)
	out = append(out, id)
	return append(out, ids[i:]...)
}
