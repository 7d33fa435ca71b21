package compose

import (
	"log/slog"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"github.com/dshills/whichkey/internal/binding"
	"github.com/dshills/whichkey/internal/config/layer"
)

// MergeLayers deep merges the "bindings" map of every layer. Layers are
// merged in order, then any remaining layer in name order. A nil value in a
// later layer deletes the key; a layer that is not an object is ignored.
func MergeLayers(layers map[string]any, order []string) map[string]any {
	merged := make(map[string]any)
	for _, name := range layerNames(layers, order) {
		l, ok := layers[name].(map[string]any)
		if !ok {
			continue
		}
		bindings, ok := l["bindings"].(map[string]any)
		if !ok {
			continue
		}
		merged = layer.MergeDeleting(merged, bindings)
	}
	return merged
}

func layerNames(layers map[string]any, order []string) []string {
	names := make([]string, 0, len(layers))
	seen := make(map[string]bool, len(layers))
	for _, name := range order {
		if _, ok := layers[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0, len(layers))
	for name := range layers {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(names, rest...)
}

// ConvertLayers merges layers and converts the merged binding map to a
// binding list.
func ConvertLayers(layers map[string]any, order []string, logger *slog.Logger) []binding.Item {
	return ConvertBindingMap(MergeLayers(layers, order), logger)
}

// ConvertBindingMap converts a map keyed by binding key into a binding list
// sorted by key. Nested "bindings" maps are converted recursively. Entries
// that do not decode are logged and skipped.
func ConvertBindingMap(m map[string]any, logger *slog.Logger) []binding.Item {
	if logger == nil {
		logger = slog.Default()
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	items := make([]binding.Item, 0, len(keys))
	for _, k := range keys {
		entry, ok := m[k].(map[string]any)
		if !ok {
			if m[k] != nil {
				logger.Warn("skipping layer binding that is not an object", "key", k)
			}
			continue
		}
		it, err := decodeEntry(k, entry, logger)
		if err != nil {
			logger.Warn("skipping layer binding", "key", k, "error", err)
			continue
		}
		items = append(items, it)
	}
	return items
}

func decodeEntry(key string, entry map[string]any, logger *slog.Logger) (binding.Item, error) {
	flat := make(map[string]any, len(entry))
	for k, v := range entry {
		if k != "bindings" {
			flat[k] = v
		}
	}

	var it binding.Item
	if err := DecodeItem(flat, &it); err != nil {
		return binding.Item{}, err
	}
	it.Key = key
	if children, ok := entry["bindings"].(map[string]any); ok {
		it.Bindings = ConvertBindingMap(children, logger)
	}
	return it, nil
}

// DecodeItem decodes a generic configuration value, as produced by the TOML,
// YAML and JSON loaders, into a binding record or a list of them.
func DecodeItem(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
