package binding

import (
	"github.com/dshills/whichkey/internal/condition"
)

// NodeID addresses a node inside a Tree.
type NodeID int

// Node is a single binding in a Tree.
type Node struct {
	// ID is the node's address in its tree.
	ID NodeID

	// Key is the keystroke sequence that selects the node. For a branch of
	// a conditional it is the raw condition key.
	Key string

	// Name is the label shown in the menu.
	Name string

	// Icon is an optional icon name.
	Icon string

	// Hidden excludes the node from the rendered list. It stays matchable.
	Hidden bool

	// Condition is set on conditional branches. A branch with a nil
	// Condition is the else branch.
	Condition *condition.Condition

	// Action is what selecting the node does.
	Action Action
}

// Action is the closed set of things a node can do.
type Action interface {
	isAction()
}

// Leaf runs Commands in order. Args[i], when present, is passed to
// Commands[i].
type Leaf struct {
	Commands []string
	Args     []any

	// Exit closes a transient menu after the commands run.
	Exit bool
}

// Submenu opens a nested level.
type Submenu struct {
	Children []NodeID
}

// Transient runs its optional commands and then opens a level that stays
// open after its leaves run.
type Transient struct {
	Children []NodeID
	Commands []string
	Args     []any
}

// Conditional is resolved to one of its branches every time it is reached.
type Conditional struct {
	Branches []NodeID
}

func (Leaf) isAction()        {}
func (Submenu) isAction()     {}
func (Transient) isAction()   {}
func (Conditional) isAction() {}

// Tree owns every node of a binding tree.
type Tree struct {
	nodes []Node
	roots []NodeID
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{}
}

// Node returns the node with the given id. It panics on an id that does not
// belong to the tree.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Len returns the number of nodes in the arena, reachable or not.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Roots returns the top-level nodes.
func (t *Tree) Roots() []NodeID {
	return t.roots
}

// SetRoots replaces the top-level nodes.
func (t *Tree) SetRoots(ids []NodeID) {
	t.roots = ids
}

// Add stores n in the arena and returns its id.
func (t *Tree) Add(n Node) NodeID {
	id := NodeID(len(t.nodes))
	n.ID = id
	t.nodes = append(t.nodes, n)
	return id
}

// Children returns the child list of a branch node: submenu and transient
// children, or conditional branches. Leaves have no children.
func (t *Tree) Children(id NodeID) []NodeID {
	switch a := t.nodes[id].Action.(type) {
	case Submenu:
		return a.Children
	case Transient:
		return a.Children
	case Conditional:
		return a.Branches
	default:
		return nil
	}
}

// SetChildren replaces the child list of a branch node. It reports false for
// a leaf.
func (t *Tree) SetChildren(id NodeID, ids []NodeID) bool {
	n := &t.nodes[id]
	switch a := n.Action.(type) {
	case Submenu:
		a.Children = ids
		n.Action = a
	case Transient:
		a.Children = ids
		n.Action = a
	case Conditional:
		a.Branches = ids
		n.Action = a
	default:
		return false
	}
	return true
}

// Find returns the first node in ids whose key equals k. Conditional
// branch keys are compared by parsed condition.
func (t *Tree) Find(ids []NodeID, k string, branches bool) (NodeID, bool) {
	for _, id := range ids {
		n := &t.nodes[id]
		if branches {
			if condition.KeyEqual(n.Key, k) {
				return id, true
			}
			continue
		}
		if n.Key == k {
			return id, true
		}
	}
	return 0, false
}

// Resolve picks the branch of a conditional that matches ctx. Branches are
// tried in declaration order; the else branch is used when none match.
func (t *Tree) Resolve(c Conditional, ctx *condition.Context) (NodeID, bool) {
	elseID, hasElse := NodeID(0), false
	for _, id := range c.Branches {
		n := &t.nodes[id]
		if n.Condition == nil {
			if !hasElse {
				elseID, hasElse = id, true
			}
			continue
		}
		if condition.Match(n.Condition, ctx) {
			return id, true
		}
	}
	return elseID, hasElse
}

// Walk calls fn for every node reachable from ids, parents before children.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(ids []NodeID, fn func(*Node) bool) {
	for _, id := range ids {
		if fn(&t.nodes[id]) {
			t.Walk(t.Children(id), fn)
		}
	}
}
