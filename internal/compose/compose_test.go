package compose

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/dshills/whichkey/internal/binding"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(i int) *int { return &i }

// keys returns the keys of a level.
func keys(t *binding.Tree, ids []binding.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = t.Node(id).Key
	}
	return out
}

func child(t *testing.T, tree *binding.Tree, ids []binding.NodeID, k string) *binding.Node {
	t.Helper()
	id, ok := tree.Find(ids, k, false)
	if !ok {
		t.Fatalf("key %q not found in %v", k, keys(tree, ids))
	}
	return tree.Node(id)
}

func baseItems() []binding.Item {
	return []binding.Item{
		{Key: "m", Name: "+Major", Type: binding.TypeBindings, Bindings: []binding.Item{
			{Key: "x", Name: "Test", Type: binding.TypeCommand, Command: "cmd.test"},
			{Key: "y", Name: "Other", Type: binding.TypeCommand, Command: "cmd.other"},
		}},
		{Key: "c", Name: "+Cond", Type: binding.TypeConditional, Bindings: []binding.Item{
			{Key: "languageId:go", Name: "+Go", Type: binding.TypeBindings, Bindings: []binding.Item{
				{Key: "t", Name: "Test", Type: binding.TypeCommand, Command: "go.test"},
			}},
			{Key: "", Name: "Else", Type: binding.TypeCommand, Command: "noop"},
		}},
	}
}

func TestCompose_Bindings(t *testing.T) {
	tree, err := Compose(Source{Bindings: baseItems()}, Options{Logger: discard()})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := keys(tree, tree.Roots()); !reflect.DeepEqual(got, []string{"m", "c"}) {
		t.Errorf("roots = %v", got)
	}
}

func TestCompose_UnknownSortOrder(t *testing.T) {
	_, err := Compose(Source{}, Options{SortOrder: "random", Logger: discard()})
	if !errors.Is(err, ErrUnknownSortOrder) {
		t.Errorf("err = %v, want ErrUnknownSortOrder", err)
	}
}

func TestApplyOverride(t *testing.T) {
	tests := []struct {
		name     string
		override binding.Override
		want     []string
		check    func(t *testing.T, tree *binding.Tree, m *binding.Node)
	}{
		{
			name:     "replace",
			override: binding.Override{Keys: "m.x", Name: "Replaced", Type: binding.TypeCommand, Command: "cmd.new"},
			want:     []string{"x", "y"},
			check: func(t *testing.T, tree *binding.Tree, m *binding.Node) {
				x := child(t, tree, tree.Children(m.ID), "x")
				if x.Name != "Replaced" {
					t.Errorf("x.Name = %q, want Replaced", x.Name)
				}
			},
		},
		{
			name:     "append",
			override: binding.Override{Keys: []any{"m", "z"}, Name: "Z", Type: binding.TypeCommand, Command: "cmd.z"},
			want:     []string{"x", "y", "z"},
		},
		{
			name:     "insert at position",
			override: binding.Override{Keys: "m.y", Position: intPtr(0), Name: "Y", Type: binding.TypeCommand, Command: "cmd.y"},
			want:     []string{"y", "x"},
		},
		{
			name:     "insert past end appends",
			override: binding.Override{Keys: "m.w", Position: intPtr(10), Name: "W", Type: binding.TypeCommand, Command: "cmd.w"},
			want:     []string{"x", "y", "w"},
		},
		{
			name:     "delete",
			override: binding.Override{Keys: []string{"m", "x"}, Position: intPtr(-1)},
			want:     []string{"y"},
		},
		{
			name:     "delete missing is a no-op",
			override: binding.Override{Keys: "m.q", Position: intPtr(-1)},
			want:     []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := binding.Build(baseItems(), discard())
			if err := ApplyOverride(tree, tt.override, discard()); err != nil {
				t.Fatalf("ApplyOverride: %v", err)
			}
			m := child(t, tree, tree.Roots(), "m")
			if got := keys(tree, tree.Children(m.ID)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("m children = %v, want %v", got, tt.want)
			}
			if tt.check != nil {
				tt.check(t, tree, m)
			}
		})
	}
}

func TestApplyOverride_Errors(t *testing.T) {
	tree := binding.Build(baseItems(), discard())

	err := ApplyOverride(tree, binding.Override{Keys: "m.x", Command: "cmd"}, discard())
	var invalid *InvalidOverrideError
	if !errors.As(err, &invalid) {
		t.Errorf("missing name/type err = %v, want InvalidOverrideError", err)
	}

	err = ApplyOverride(tree, binding.Override{Keys: "q.x", Name: "X", Type: binding.TypeCommand, Command: "c"}, discard())
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing path err = %v, want ErrPathNotFound", err)
	}

	err = ApplyOverride(tree, binding.Override{Keys: "m.x.z", Name: "X", Type: binding.TypeCommand, Command: "c"}, discard())
	if !errors.Is(err, ErrPathNotFound) {
		t.Errorf("path through leaf err = %v, want ErrPathNotFound", err)
	}

	if err := ApplyOverride(tree, binding.Override{Keys: 42}, discard()); err == nil {
		t.Error("non-string keys should fail")
	}
}

func TestApplyOverrides_ContinuesAfterFailure(t *testing.T) {
	tree := binding.Build(baseItems(), discard())
	ApplyOverrides(tree, []binding.Override{
		{Keys: "m.bad", Command: "cmd"},
		{Keys: "m.z", Name: "Z", Type: binding.TypeCommand, Command: "cmd.z"},
	}, discard())

	m := child(t, tree, tree.Roots(), "m")
	if got := keys(tree, tree.Children(m.ID)); !reflect.DeepEqual(got, []string{"x", "y", "z"}) {
		t.Errorf("m children = %v", got)
	}
}

func TestApplyOverride_ConditionalPath(t *testing.T) {
	tree := binding.Build(baseItems(), discard())

	// The branch key is matched by parsed condition, not by string.
	o := binding.Override{Keys: []string{"c", "languageId:go;when:", "b"}, Name: "Build", Type: binding.TypeCommand, Command: "go.build"}
	if err := ApplyOverride(tree, o, discard()); err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}

	c := child(t, tree, tree.Roots(), "c")
	goBranch := tree.Node(tree.Children(c.ID)[0])
	if got := keys(tree, tree.Children(goBranch.ID)); !reflect.DeepEqual(got, []string{"t", "b"}) {
		t.Errorf("go branch children = %v", got)
	}

	// Replacing a branch at the conditional level.
	o = binding.Override{Keys: "c.languageId:go", Name: "Go", Type: binding.TypeCommand, Command: "go.run"}
	if err := ApplyOverride(tree, o, discard()); err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}
	branches := tree.Children(c.ID)
	if len(branches) != 2 {
		t.Fatalf("branches = %d, want 2", len(branches))
	}
	leaf, ok := tree.Node(branches[0]).Action.(binding.Leaf)
	if !ok || leaf.Commands[0] != "go.run" {
		t.Errorf("replaced branch action = %#v", tree.Node(branches[0]).Action)
	}
	if cond := tree.Node(branches[0]).Condition; cond == nil || cond.LanguageID != "go" {
		t.Errorf("replaced branch condition = %v, want languageId:go", cond)
	}
}

func TestApplyOverride_ReplaceIsIdempotent(t *testing.T) {
	overrides := []binding.Override{
		{Keys: "m.x", Name: "New", Type: binding.TypeCommand, Command: "cmd.new"},
		{Keys: "m.z", Name: "Z", Type: binding.TypeCommand, Command: "cmd.z"},
	}

	once := binding.Build(baseItems(), discard())
	ApplyOverrides(once, overrides, discard())
	first := once.Items(once.Roots())

	twice := binding.Build(first, discard())
	ApplyOverrides(twice, overrides, discard())
	second := twice.Items(twice.Roots())

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second application changed the tree:\n%v\n%v", first, second)
	}
}
