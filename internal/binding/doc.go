// Package binding defines the which-key binding tree.
//
// Bindings arrive as declarative records (Item, Override, TransientConfig)
// decoded from TOML, YAML or JSON configuration. Build converts records into
// a Tree: an arena that owns every Node and addresses it by NodeID. Each node
// carries exactly one Action:
//
//	Leaf        - one or more commands run in order
//	Submenu     - a nested menu level
//	Transient   - a nested level that stays open after its leaves run
//	Conditional - a list of branches chosen at dispatch time
//
// Conditional branches are nodes too. Their key is a condition key such as
// "when:editorFocus;languageId:go" and their parsed condition is stored on
// the node. A branch with no condition is the else branch.
//
// The tree is mutated only while it is composed. Menus read it and never
// change it.
package binding
