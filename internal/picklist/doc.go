// Package picklist defines the searchable list widget menus are drawn with,
// and provides two implementations of it.
//
// A widget shows a title, a filter value and a list of items. Typing changes
// the value and filters the list; accepting fires with the active item; the
// user can dismiss it, which fires the hide listeners. Menus never draw
// anything themselves, they only drive a Widget.
//
// Headless keeps all state in memory and is driven by method calls. It backs
// tests and the non-interactive CLI. Terminal draws onto a tcell screen and
// is driven by terminal events.
//
// Both filter items with github.com/sahilm/fuzzy against the label, and
// optionally against the description and detail.
package picklist
