// Package dispatch serializes menu input.
//
// Key presses from the key relay and value changes from the picklist widget
// arrive on independent goroutines and may race. Queue delivers them to a
// single consumer one at a time in push order. Tracker turns successive
// widget values into typed deltas and rejects edits that would shrink or
// diverge from what was already entered.
package dispatch
