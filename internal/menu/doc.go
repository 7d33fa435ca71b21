// Package menu runs key-driven menus over a picklist widget.
//
// Every menu is a session: one serial event queue fed by widget callbacks,
// the key relay and debounce timers; one controller deciding what each event
// does; and a small hide state machine telling hides the session asked for
// apart from the user dismissing the widget. A session ends exactly once,
// either resolved (nil error) or rejected with the error that stopped it.
//
// Show runs the which-key menu over a binding tree. Typed keys accumulate
// until they name a binding at the current level: a leaf runs its commands,
// a submenu opens the next level, a transient opens a level that stays open
// after its leaves run, and a conditional resolves to one of its branches
// against the key's modifier state and the active language. Keys matching
// nothing end the menu with an error on the status bar.
//
// ShowTransient, ShowSearch and ShowRepeater run the transient menu, the
// flattened binding search and the repeat list on the same machinery.
package menu
