// Package compose builds the final binding tree from configuration.
//
// Compose runs four steps in order:
//
//  1. Source: use a binding list as is, or deep merge named layers of
//     binding maps into one map and convert it to a list.
//  2. Overrides: replace, insert or delete bindings at key paths.
//  3. Sort: reorder every level with the configured sort order.
//  4. Migration: rewrite legacy transient bindings into a command chain that
//     ends with the show-transient command.
package compose
