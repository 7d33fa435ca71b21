package compose

import (
	"reflect"
	"testing"

	"github.com/dshills/whichkey/internal/binding"
)

func leaves(ks ...string) []binding.Item {
	items := make([]binding.Item, len(ks))
	for i, k := range ks {
		items[i] = binding.Item{Key: k, Name: k, Type: binding.TypeCommand, Command: "cmd." + k}
	}
	return items
}

func TestSortOrders(t *testing.T) {
	tests := []struct {
		order SortOrder
		in    []string
		want  []string
	}{
		{SortNone, []string{"b", "a"}, []string{"b", "a"}},
		{SortCustom, []string{"C-v", "gg", "F1", "A", "b", "a", "1", " "}, []string{" ", "1", "a", "b", "A", "F1", "gg", "C-v"}},
		{SortCustom, []string{"~", "[", "z"}, []string{"[", "z", "~"}},
		{SortCustomNonNumberFirst, []string{"1", "b", "a", "2"}, []string{"a", "b", "1", "2"}},
		{SortAlphabetically, []string{"b", "C", "a"}, []string{"a", "b", "C"}},
		{SortNonNumberFirst, []string{"2", "b", "1", "a"}, []string{"a", "b", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			tree, err := Compose(Source{Bindings: leaves(tt.in...)}, Options{SortOrder: tt.order, Logger: discard()})
			if err != nil {
				t.Fatalf("Compose: %v", err)
			}
			if got := keys(tree, tree.Roots()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order %s: got %q, want %q", tt.order, got, tt.want)
			}
		})
	}
}

func TestSortTypeThenCustom(t *testing.T) {
	items := []binding.Item{
		{Key: "a", Name: "+A", Type: binding.TypeBindings, Bindings: leaves("z", "y")},
		{Key: "b", Name: "B", Type: binding.TypeCommand, Command: "b"},
		{Key: "c", Name: "C", Type: binding.TypeConditional, Bindings: []binding.Item{
			{Key: "languageId:go", Name: "Go", Type: binding.TypeBindings, Bindings: leaves("q", "p")},
			{Key: "", Name: "Else", Type: binding.TypeBindings, Bindings: leaves("s", "r")},
		}},
		{Key: "d", Name: "D", Type: binding.TypeConditional, Bindings: []binding.Item{
			{Key: "languageId:go", Name: "Go", Type: binding.TypeBindings, Bindings: leaves("x")},
			{Key: "", Name: "Else", Type: binding.TypeCommand, Command: "noop"},
		}},
	}

	tree, err := Compose(Source{Bindings: items}, Options{SortOrder: SortTypeThenCustom, Logger: discard()})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	// b is a leaf and d has mixed branch types, so both sort before the
	// submenus a and c.
	if got := keys(tree, tree.Roots()); !reflect.DeepEqual(got, []string{"b", "d", "a", "c"}) {
		t.Errorf("roots = %q", got)
	}

	a := child(t, tree, tree.Roots(), "a")
	if got := keys(tree, tree.Children(a.ID)); !reflect.DeepEqual(got, []string{"y", "z"}) {
		t.Errorf("a children = %q", got)
	}

	// Branch order is kept; levels inside branches are sorted.
	c := child(t, tree, tree.Roots(), "c")
	branches := tree.Children(c.ID)
	if got := keys(tree, branches); !reflect.DeepEqual(got, []string{"languageId:go", ""}) {
		t.Errorf("branches = %q", got)
	}
	if got := keys(tree, tree.Children(branches[0])); !reflect.DeepEqual(got, []string{"p", "q"}) {
		t.Errorf("go branch = %q", got)
	}
	if got := keys(tree, tree.Children(branches[1])); !reflect.DeepEqual(got, []string{"r", "s"}) {
		t.Errorf("else branch = %q", got)
	}
}

func TestSortIsStable(t *testing.T) {
	items := []binding.Item{
		{Key: "x", Name: "first", Type: binding.TypeCommand, Command: "1"},
		{Key: "a", Name: "a", Type: binding.TypeCommand, Command: "a"},
		{Key: "x", Name: "second", Type: binding.TypeCommand, Command: "2"},
	}
	tree, err := Compose(Source{Bindings: items}, Options{SortOrder: SortCustom, Logger: discard()})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	roots := tree.Roots()
	if tree.Node(roots[1]).Name != "first" || tree.Node(roots[2]).Name != "second" {
		t.Errorf("equal keys reordered: %q, %q", tree.Node(roots[1]).Name, tree.Node(roots[2]).Name)
	}
}
