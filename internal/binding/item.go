package binding

// Type is the declared type of a binding record.
type Type string

// Binding record types.
const (
	TypeCommand     Type = "command"
	TypeCommands    Type = "commands"
	TypeBindings    Type = "bindings"
	TypeTransient   Type = "transient"
	TypeConditional Type = "conditional"
)

// DisplayHidden hides a binding from the rendered list.
const DisplayHidden = "hidden"

// Item is the declarative form of a binding as stored in configuration.
type Item struct {
	// Key is the keystroke sequence, or a condition key for a branch of a
	// conditional binding.
	Key string `json:"key" yaml:"key" toml:"key" mapstructure:"key"`

	// Name is the label shown in the menu.
	Name string `json:"name" yaml:"name" toml:"name" mapstructure:"name"`

	// Type selects which payload fields apply.
	Type Type `json:"type" yaml:"type" toml:"type" mapstructure:"type"`

	// Icon is an optional icon name rendered as "$(icon)".
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty" mapstructure:"icon"`

	// Display set to "hidden" excludes the binding from the rendered list.
	Display string `json:"display,omitempty" yaml:"display,omitempty" toml:"display,omitempty" mapstructure:"display"`

	// Command is the command for TypeCommand.
	Command string `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty" mapstructure:"command"`

	// Commands are the chained commands for TypeCommands and the optional
	// commands run before a transient opens.
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty" mapstructure:"commands"`

	// Args is the argument of Command, or a list of arguments paired by
	// index with Commands.
	Args any `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty" mapstructure:"args"`

	// Bindings are the children of a submenu or transient, or the branches
	// of a conditional.
	Bindings []Item `json:"bindings,omitempty" yaml:"bindings,omitempty" toml:"bindings,omitempty" mapstructure:"bindings"`

	// Exit closes a transient menu after the binding runs.
	Exit bool `json:"exit,omitempty" yaml:"exit,omitempty" toml:"exit,omitempty" mapstructure:"exit"`
}

// TransientItem is a binding of a transient menu. Only the command,
// commands and conditional types are meaningful, plus Exit.
type TransientItem = Item

// TransientConfig is the argument of the show-transient command.
type TransientConfig struct {
	Title    string          `json:"title" yaml:"title" toml:"title" mapstructure:"title"`
	Bindings []TransientItem `json:"bindings" yaml:"bindings" toml:"bindings" mapstructure:"bindings"`
}

// Override patches a composed tree at a key path.
//
// Keys is either a dotted string ("m.x") or a list of path segments. The
// last segment names the binding to replace, insert or delete. Position
// selects the operation: nil replaces or appends, a non-negative value
// inserts at that index and a negative value deletes.
type Override struct {
	Keys     any      `json:"keys" yaml:"keys" toml:"keys" mapstructure:"keys"`
	Position *int     `json:"position,omitempty" yaml:"position,omitempty" toml:"position,omitempty" mapstructure:"position"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" mapstructure:"name"`
	Type     Type     `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty" mapstructure:"type"`
	Icon     string   `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty" mapstructure:"icon"`
	Display  string   `json:"display,omitempty" yaml:"display,omitempty" toml:"display,omitempty" mapstructure:"display"`
	Command  string   `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty" mapstructure:"command"`
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty" mapstructure:"commands"`
	Args     any      `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty" mapstructure:"args"`
	Bindings []Item   `json:"bindings,omitempty" yaml:"bindings,omitempty" toml:"bindings,omitempty" mapstructure:"bindings"`
	Exit     bool     `json:"exit,omitempty" yaml:"exit,omitempty" toml:"exit,omitempty" mapstructure:"exit"`
}

// Item returns the binding the override inserts, keyed by last.
func (o Override) Item(last string) Item {
	return Item{
		Key:      last,
		Name:     o.Name,
		Type:     o.Type,
		Icon:     o.Icon,
		Display:  o.Display,
		Command:  o.Command,
		Commands: o.Commands,
		Args:     o.Args,
		Bindings: o.Bindings,
		Exit:     o.Exit,
	}
}

// IsDelete reports whether the override removes its target.
func (o Override) IsDelete() bool {
	return o.Position != nil && *o.Position < 0
}
