// Package notify delivers configuration changes to subscribers.
//
// A subscriber watches one dotted path. After a reload the notifier compares
// the value at every subscribed path in the old and new configuration and
// calls the subscribers whose value differs.
package notify

import (
	"reflect"
	"slices"
	"sync"

	"github.com/dshills/whichkey/internal/config/layer"
)

// Change is a changed value at a subscribed path.
type Change struct {
	// Path is the subscribed path. Empty for a subscription to every
	// reload.
	Path string

	OldValue any
	NewValue any

	// Source names what triggered the reload (a layer name or "reload").
	Source string
}

// Observer is called with a change.
type Observer func(Change)

// Subscription is an active observer.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.remove(s.id)
	}
}

type subscriber struct {
	path     string
	observer Observer
}

// Notifier manages subscriptions.
type Notifier struct {
	mu     sync.RWMutex
	subs   map[uint64]subscriber
	nextID uint64
	closed bool
}

// New creates a notifier.
func New() *Notifier {
	return &Notifier{subs: make(map[uint64]subscriber)}
}

// Subscribe calls observer when the value at path changes. An empty path
// subscribes to every reload.
func (n *Notifier) Subscribe(path string, observer Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = subscriber{path: path, observer: observer}
	return &Subscription{id: id, notifier: n}
}

// Notify compares old and new at every subscribed path and calls the
// observers of changed paths in subscription order. It returns the number of
// observers called.
func (n *Notifier) Notify(old, new map[string]any, source string) int {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return 0
	}
	ids := make([]uint64, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]subscriber, len(ids))
	for i, id := range ids {
		subs[i] = n.subs[id]
	}
	n.mu.RUnlock()

	called := 0
	for _, s := range subs {
		c := Change{Path: s.path, Source: source}
		if s.path != "" {
			c.OldValue, _ = layer.Lookup(old, s.path)
			c.NewValue, _ = layer.Lookup(new, s.path)
			if reflect.DeepEqual(c.OldValue, c.NewValue) {
				continue
			}
		}
		s.observer(c)
		called++
	}
	return called
}

// Len returns the number of subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

// Close drops every subscription. Later notifications are ignored.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	clear(n.subs)
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, id)
}
