// Package layer stacks configuration maps by priority.
//
// Each Layer holds the map decoded from one source: the built-in defaults,
// the user file, the workspace file or values set on the command line. A
// Stack merges its layers lowest priority first, so a key set by a later
// layer hides the same key below it. Nested tables merge key by key; lists
// and scalars replace whole.
package layer

// Source tells where a layer came from.
type Source uint8

const (
	SourceBuiltin Source = iota
	SourceUser
	SourceWorkspace
	SourceArgs
)

// Default priorities. Gaps leave room for layers in between.
const (
	PriorityBuiltin   = 0
	PriorityUser      = 100
	PriorityWorkspace = 200
	PriorityArgs      = 600
)

func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	case SourceWorkspace:
		return "workspace"
	case SourceArgs:
		return "arguments"
	}
	return "unknown"
}

// Layer is the configuration read from one source.
type Layer struct {
	Name     string
	Source   Source
	Priority int

	// Path is the file the layer was read from. Empty for layers that do
	// not come from a file.
	Path string

	Data map[string]any
}

// New creates a layer over data. A nil map is replaced by an empty one.
func New(name string, source Source, priority int, data map[string]any) *Layer {
	if data == nil {
		data = make(map[string]any)
	}
	return &Layer{Name: name, Source: source, Priority: priority, Data: data}
}

// FromFile creates a layer read from path.
func FromFile(name string, source Source, priority int, path string, data map[string]any) *Layer {
	l := New(name, source, priority, data)
	l.Path = path
	return l
}
