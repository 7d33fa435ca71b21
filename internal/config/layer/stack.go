package layer

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnknownLayer is returned when editing a layer the stack does not hold.
var ErrUnknownLayer = errors.New("unknown configuration layer")

// Stack merges layers by priority. The merged map is cached until a layer
// changes. Stack owns the maps it is given; callers get copies.
type Stack struct {
	mu     sync.Mutex
	layers []*Layer // ascending priority; equal priorities keep insertion order
	merged map[string]any
}

// NewStack creates a stack holding layers.
func NewStack(layers ...*Layer) *Stack {
	s := &Stack{}
	for _, l := range layers {
		s.Put(l)
	}
	return s
}

// Put adds l, replacing a layer of the same name.
func (s *Stack) Put(l *Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = slices.DeleteFunc(s.layers, func(e *Layer) bool { return e.Name == l.Name })
	i := slices.IndexFunc(s.layers, func(e *Layer) bool { return e.Priority > l.Priority })
	if i < 0 {
		i = len(s.layers)
	}
	s.layers = slices.Insert(s.layers, i, l)
	s.merged = nil
}

// Edit calls fn with a copy of the data of the named layer and stores the
// result.
func (s *Stack) Edit(name string, fn func(data map[string]any)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.layers, func(l *Layer) bool { return l.Name == name })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownLayer, name)
	}
	data := Clone(s.layers[i].Data)
	if data == nil {
		data = make(map[string]any)
	}
	fn(data)
	s.layers[i].Data = data
	s.merged = nil
	return nil
}

// Names returns the layer names, lowest priority first.
func (s *Stack) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.Name
	}
	return names
}

// Merged returns a copy of the merged configuration.
func (s *Stack) Merged() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.mergedLocked())
}

// Lookup returns a copy of the merged value at a dotted path.
func (s *Stack) Lookup(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := Lookup(s.mergedLocked(), path)
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Origin returns the highest priority layer that sets path.
func (s *Stack) Origin(path string) (name, file string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range slices.Backward(s.layers) {
		if _, found := Lookup(l.Data, path); found {
			return l.Name, l.Path, true
		}
	}
	return "", "", false
}

func (s *Stack) mergedLocked() map[string]any {
	if s.merged == nil {
		merged := make(map[string]any)
		for _, l := range s.layers {
			merged = Merge(merged, l.Data)
		}
		s.merged = merged
	}
	return s.merged
}
