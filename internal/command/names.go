package command

// Prefix is the namespace of the built-in commands.
const Prefix = "whichkey."

// Built-in command names.
const (
	Show             = Prefix + "show"
	Register         = Prefix + "register"
	TriggerKey       = Prefix + "triggerKey"
	UndoKey          = Prefix + "undoKey"
	SearchBindings   = Prefix + "searchBindings"
	ShowTransient    = Prefix + "showTransient"
	RepeatRecent     = Prefix + "repeatRecent"
	RepeatMostRecent = Prefix + "repeatMostRecent"
	ToggleZenMode    = Prefix + "toggleZenMode"

	// SetContext sets a context key to a value. Its argument is a
	// two-element list: the key name and the value.
	SetContext = "setContext"
)

// Context keys set while a menu is shown.
const (
	ContextActive           = "whichkeyActive"
	ContextVisible          = "whichkeyVisible"
	ContextTransientVisible = "transientVisible"
)

// IsRepeat reports whether name invokes the repeater. Paths ending in such a
// command are never recorded.
func IsRepeat(name string) bool {
	return name == RepeatRecent || name == RepeatMostRecent
}
