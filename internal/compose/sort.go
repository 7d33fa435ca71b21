package compose

import (
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/key"
)

// SortOrder names a sibling ordering.
type SortOrder string

// Sort orders.
const (
	// SortNone keeps the declared order.
	SortNone SortOrder = "none"
	// SortCustom orders by key category, then by a custom code point order.
	SortCustom SortOrder = "custom"
	// SortCustomNonNumberFirst is SortCustom with keys starting with a digit
	// moved last.
	SortCustomNonNumberFirst SortOrder = "customNonNumberFirst"
	// SortTypeThenCustom puts leaves before submenus, then applies
	// SortCustom.
	SortTypeThenCustom SortOrder = "typeThenCustom"
	// SortAlphabetically orders keys by locale collation.
	SortAlphabetically SortOrder = "alphabetically"
	// SortNonNumberFirst moves keys starting with a digit last, then orders
	// alphabetically.
	SortNonNumberFirst SortOrder = "nonNumberFirst"
)

// Compare orders two sibling nodes.
type Compare func(t *binding.Tree, a, b *binding.Node) int

// Comparer returns the comparison for order, or nil for an order that keeps
// declared order.
func Comparer(order SortOrder) (Compare, error) {
	switch order {
	case "", SortNone:
		return nil, nil
	case SortCustom:
		return compareCustom, nil
	case SortCustomNonNumberFirst:
		return func(t *binding.Tree, a, b *binding.Node) int {
			if d := compareNumberLast(a, b); d != 0 {
				return d
			}
			return compareCustom(t, a, b)
		}, nil
	case SortTypeThenCustom:
		return func(t *binding.Tree, a, b *binding.Node) int {
			if d := typeOrder(t, a) - typeOrder(t, b); d != 0 {
				return d
			}
			return compareCustom(t, a, b)
		}, nil
	case SortAlphabetically:
		c := collate.New(language.Und)
		return func(_ *binding.Tree, a, b *binding.Node) int {
			return c.CompareString(a.Key, b.Key)
		}, nil
	case SortNonNumberFirst:
		c := collate.New(language.Und)
		return func(_ *binding.Tree, a, b *binding.Node) int {
			if d := compareNumberLast(a, b); d != 0 {
				return d
			}
			return c.CompareString(a.Key, b.Key)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortOrder, order)
	}
}

// Sort reorders every level of the tree. Sorting is stable. Conditional
// branch lists keep their declared order; the levels inside each branch are
// sorted.
func Sort(t *binding.Tree, cmp Compare) {
	t.SetRoots(sortLevel(t, t.Roots(), cmp))
}

func sortLevel(t *binding.Tree, ids []binding.NodeID, cmp Compare) []binding.NodeID {
	sorted := clone(ids)
	slices.SortStableFunc(sorted, func(a, b binding.NodeID) int {
		return cmp(t, t.Node(a), t.Node(b))
	})
	for _, id := range sorted {
		sortChildren(t, id, cmp)
	}
	return sorted
}

func sortChildren(t *binding.Tree, id binding.NodeID, cmp Compare) {
	switch a := t.Node(id).Action.(type) {
	case binding.Submenu:
		t.SetChildren(id, sortLevel(t, a.Children, cmp))
	case binding.Transient:
		t.SetChildren(id, sortLevel(t, a.Children, cmp))
	case binding.Conditional:
		for _, branch := range a.Branches {
			sortChildren(t, branch, cmp)
		}
	}
}

// typeOrder puts submenus after everything else. A conditional whose
// branches all share one type sorts as that type.
func typeOrder(t *binding.Tree, n *binding.Node) int {
	typ := binding.TypeOf(n.Action)
	if c, ok := n.Action.(binding.Conditional); ok && len(c.Branches) > 0 {
		first := binding.TypeOf(t.Node(c.Branches[0]).Action)
		uniform := true
		for _, b := range c.Branches[1:] {
			if binding.TypeOf(t.Node(b).Action) != first {
				uniform = false
				break
			}
		}
		if uniform {
			typ = first
		}
	}
	if typ == binding.TypeBindings {
		return 1
	}
	return 0
}

// categoryOrder ranks key categories: single keys, function keys, other
// keys, then modifier combos.
func categoryOrder(k string) int {
	switch key.Classify(k) {
	case key.CategorySingle:
		return 0
	case key.CategoryFunction:
		return 1
	case key.CategoryOther:
		return 2
	default:
		return 3
	}
}

func compareCustom(_ *binding.Tree, a, b *binding.Node) int {
	if d := categoryOrder(a.Key) - categoryOrder(b.Key); d != 0 {
		return d
	}
	return compareKeyString(a.Key, b.Key)
}

func compareNumberLast(a, b *binding.Node) int {
	an, bn := startsWithDigit(a.Key), startsWithDigit(b.Key)
	switch {
	case an == bn:
		return 0
	case an:
		return 1
	default:
		return -1
	}
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

// codePointOrder maps a rune to its custom sort weight. Space sorts before
// tab, lower case letters and punctuation in '[' to '~' sort before upper
// case letters.
func codePointOrder(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return r + ('~' - '[' + 1)
	case r >= '[' && r <= '~':
		return r - ('Z' - 'A' + 1)
	case r == ' ':
		return '\t'
	case r == '\t':
		return ' '
	default:
		return r
	}
}

func compareKeyString(a, b string) int {
	ar, br := []rune(a), []rune(b)
	for i := 0; i < len(ar) && i < len(br); i++ {
		if d := codePointOrder(ar[i]) - codePointOrder(br[i]); d != 0 {
			return int(d)
		}
	}
	return len(ar) - len(br)
}
