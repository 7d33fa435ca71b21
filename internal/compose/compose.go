package compose

import (
	"log/slog"

	"github.com/dshills/whichkey/internal/binding"
)

// Source is the declarative input of Compose. When Layers is non-nil the
// layers are merged and Bindings is ignored.
type Source struct {
	// Bindings is a plain binding list.
	Bindings []binding.Item

	// Layers maps a layer name to an object with a "bindings" map.
	Layers map[string]any

	// LayerOrder is the merge order of Layers, earliest first. Layers not
	// named here are merged afterwards in name order.
	LayerOrder []string

	// Overrides are applied after the source is converted.
	Overrides []binding.Override
}

// Options controls composition.
type Options struct {
	// SortOrder reorders every level. The zero value keeps declared order.
	SortOrder SortOrder

	// KeepTransient leaves transient bindings in the tree instead of
	// migrating them to show-transient command chains.
	KeepTransient bool

	// Logger receives configuration warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Compose builds a binding tree. Configuration errors in single bindings or
// overrides are logged and skipped; only an invalid option fails the call.
func Compose(src Source, opts Options) (*binding.Tree, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cmp, err := Comparer(opts.SortOrder)
	if err != nil {
		return nil, err
	}

	items := src.Bindings
	if src.Layers != nil {
		items = ConvertLayers(src.Layers, src.LayerOrder, logger)
	}

	tree := binding.Build(items, logger)
	ApplyOverrides(tree, src.Overrides, logger)
	if cmp != nil {
		Sort(tree, cmp)
	}
	if !opts.KeepTransient {
		Migrate(tree)
	}
	return tree, nil
}
