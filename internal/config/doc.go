// Package config loads which-key settings and bindings.
//
// Configuration is stacked in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  Command line (Set)         │  ← highest priority
//	├─────────────────────────────┤
//	│  Workspace file             │  ← ./.whichkey.toml
//	├─────────────────────────────┤
//	│  User file                  │  ← ~/.config/whichkey/config.toml
//	├─────────────────────────────┤
//	│  Built-in defaults          │  ← embedded defaults.toml
//	└─────────────────────────────┘
//
// Files may be TOML, YAML or JSON. Settings live under the "whichkey"
// table; binding lists are addressed by dotted section paths such as
// "whichkey.bindings".
//
// # Sub-packages
//
//   - loader: decoding of TOML, YAML and JSON files
//   - layer: layer stacking and merging
//   - watcher: file watching for live reload
//   - notify: change subscriptions
//
// # Usage
//
//	store, err := config.New(config.WithUserFile(config.DefaultUserFile()))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	settings, err := store.Settings()
//	bindings, _ := store.Get(config.SectionBindings)
package config
