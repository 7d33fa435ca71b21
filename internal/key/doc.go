// Package key renders and classifies binding keys.
//
// Binding keys are plain strings: a single character ("m"), a function key
// ("F5"), a modifier combo in Vim notation ("C-v"), or any other literal
// sequence ("gg"). Whitespace keys are shown with visible symbols so a
// space or tab binding is readable in the menu and in error messages.
package key
