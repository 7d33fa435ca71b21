package layer

import "strings"

// Merge merges src into dst and returns dst. Tables present in both are
// merged recursively; any other value from src replaces the one in dst.
// dst may be nil.
func Merge(dst, src map[string]any) map[string]any {
	return merge(dst, src, false)
}

// MergeDeleting is Merge where a nil value in src removes the key from dst.
// Binding layers use it so a layer can drop a binding it inherits.
func MergeDeleting(dst, src map[string]any) map[string]any {
	return merge(dst, src, true)
}

func merge(dst, src map[string]any, deleteNil bool) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		switch sv := v.(type) {
		case nil:
			if deleteNil {
				delete(dst, k)
			} else {
				dst[k] = nil
			}
		case map[string]any:
			dv, _ := dst[k].(map[string]any)
			if dv == nil && !deleteNil {
				dst[k] = Clone(sv)
				continue
			}
			dst[k] = merge(dv, sv, deleteNil)
		default:
			dst[k] = cloneValue(v)
		}
	}
	return dst
}

// Lookup returns the value at a dotted path such as "whichkey.bindings".
func Lookup(data map[string]any, path string) (any, bool) {
	var cur any = data
	for rest := path; ; {
		m, ok := cur.(map[string]any)
		if !ok || m == nil {
			return nil, false
		}
		key, tail, more := strings.Cut(rest, ".")
		if cur, ok = m[key]; !ok {
			return nil, false
		}
		if !more {
			return cur, true
		}
		rest = tail
	}
}

// Assign stores value at a dotted path, replacing non-table values on the
// way with new tables.
func Assign(data map[string]any, path string, value any) {
	if data == nil {
		return
	}
	keys := strings.Split(path, ".")
	last := len(keys) - 1
	for _, k := range keys[:last] {
		next, ok := data[k].(map[string]any)
		if !ok {
			next = make(map[string]any)
			data[k] = next
		}
		data = next
	}
	data[keys[last]] = value
}

// Clone deep copies the tables and lists of a decoded configuration map.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return Clone(tv)
	case []any:
		if tv == nil {
			return tv
		}
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	}
	return v
}
