// Package relay delivers externally triggered menu input.
//
// Keys bound in the host (or typed in a terminal) reach an open menu through
// the Relay rather than through the picklist widget. Menus subscribe while
// they are shown; only the most recently subscribed menu that is still
// subscribed receives events, so a menu opened from another menu takes the
// input until it closes.
package relay

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// KeyEvent is a key press reported by the host.
type KeyEvent struct {
	// Key is the typed key or key sequence.
	Key string `json:"key" yaml:"key" mapstructure:"key"`

	// When is the modifier state reported with the key. It is matched
	// against the when property of conditional bindings.
	When string `json:"when,omitempty" yaml:"when,omitempty" mapstructure:"when"`
}

// Kind identifies a relayed event.
type Kind int

const (
	// KindKey is a key press.
	KindKey Kind = iota
	// KindUndo asks the menu to undo the last key.
	KindUndo
	// KindSearch asks the menu to open the binding search.
	KindSearch
	// KindZen toggles zen mode of a transient menu.
	KindZen
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindUndo:
		return "undo"
	case KindSearch:
		return "search"
	case KindZen:
		return "zen"
	default:
		return "unknown"
	}
}

// Event is delivered to the active subscriber.
type Event struct {
	Kind Kind
	Key  KeyEvent
}

// Handler receives relayed events. It is called on the triggering goroutine
// and must not block.
type Handler func(Event)

// Relay routes events to the top subscriber.
type Relay struct {
	mu    sync.Mutex
	stack []*Subscription
}

// New creates a relay with no subscribers.
func New() *Relay {
	return &Relay{}
}

// Subscribe makes h the receiver of relayed events until the subscription
// is cancelled.
func (r *Relay) Subscribe(h Handler) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		relay:   r,
		handler: h,
	}
	r.mu.Lock()
	r.stack = append(r.stack, s)
	r.mu.Unlock()
	return s
}

// TriggerKey relays a key press. It reports false when no menu is
// subscribed.
func (r *Relay) TriggerKey(ev KeyEvent) bool {
	return r.deliver(Event{Kind: KindKey, Key: ev})
}

// UndoKey relays an undo request.
func (r *Relay) UndoKey() bool {
	return r.deliver(Event{Kind: KindUndo})
}

// SearchBindings relays a search request.
func (r *Relay) SearchBindings() bool {
	return r.deliver(Event{Kind: KindSearch})
}

// ToggleZenMode relays a zen mode toggle.
func (r *Relay) ToggleZenMode() bool {
	return r.deliver(Event{Kind: KindZen})
}

// Active reports whether any menu is subscribed.
func (r *Relay) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stack) > 0
}

func (r *Relay) deliver(ev Event) bool {
	r.mu.Lock()
	var top *Subscription
	if n := len(r.stack); n > 0 {
		top = r.stack[n-1]
	}
	r.mu.Unlock()

	if top == nil || top.cancelled.Load() {
		return false
	}
	top.handler(ev)
	return true
}

func (r *Relay) remove(s *Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.stack {
		if existing == s {
			r.stack = append(r.stack[:i], r.stack[i+1:]...)
			return
		}
	}
}

// Subscription is a menu's claim on relayed events.
type Subscription struct {
	id        string
	relay     *Relay
	handler   Handler
	cancelled atomic.Bool
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Cancel stops delivery to the subscription. It is safe to call more than
// once.
func (s *Subscription) Cancel() {
	if s.cancelled.Swap(true) {
		return
	}
	s.relay.remove(s)
}

// IsActive reports whether the subscription still receives events.
func (s *Subscription) IsActive() bool {
	return !s.cancelled.Load()
}
