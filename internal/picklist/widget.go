package picklist

import (
	"slices"
	"sync"
)

// Item is a row of the list.
type Item struct {
	// Label is the main text. It is always matched by the filter.
	Label string

	// Description is shown next to the label.
	Description string

	// Detail is shown below or after the description.
	Detail string

	// AlwaysShow keeps the item visible whatever the filter value.
	AlwaysShow bool

	// Value is opaque data for the widget owner.
	Value any
}

// Button is an action shown in the title bar.
type Button struct {
	ID      string
	Icon    string
	Tooltip string
}

// Widget is a searchable list.
//
// Listener registration returns a function that removes the listener.
// Listeners may call back into the widget, except that value listeners must
// not change the value.
type Widget interface {
	SetTitle(title string)
	SetPlaceholder(text string)
	SetBusy(busy bool)
	SetMatchOnDescription(match bool)
	SetMatchOnDetail(match bool)
	SetItems(items []Item)
	SetButtons(buttons []Button)

	// SetValue replaces the filter value. Value listeners fire as if the
	// user had typed it.
	SetValue(value string)
	Value() string

	// ActiveItem returns the highlighted item of the filtered list.
	ActiveItem() (Item, bool)

	OnValueChanged(fn func(value string)) (cancel func())
	OnAccept(fn func()) (cancel func())
	OnHide(fn func()) (cancel func())
	OnButton(fn func(b Button)) (cancel func())

	Show()

	// Hide hides the widget and fires the hide listeners. The returned
	// channel is closed once the widget is hidden.
	Hide() <-chan struct{}

	// Dispose releases the widget. No listener fires afterwards.
	Dispose()
}

// listeners is a set of callbacks with removal.
type listeners[T any] struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(T)
}

func (l *listeners[T]) add(fn func(T)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	id := l.next
	l.next++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// emit calls every listener in registration order.
func (l *listeners[T]) emit(v T) {
	l.mu.Lock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		l.mu.Lock()
		fn, ok := l.fns[id]
		l.mu.Unlock()
		if ok {
			fn(v)
		}
	}
}

func (l *listeners[T]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fns = nil
}

// listenerSet holds the listeners shared by both widgets.
type listenerSet struct {
	onValue  listeners[string]
	onAccept listeners[struct{}]
	onHide   listeners[struct{}]
	onButton listeners[Button]
}

func (s *listenerSet) OnValueChanged(fn func(string)) func() {
	return s.onValue.add(fn)
}

func (s *listenerSet) OnAccept(fn func()) func() {
	return s.onAccept.add(func(struct{}) { fn() })
}

func (s *listenerSet) OnHide(fn func()) func() {
	return s.onHide.add(func(struct{}) { fn() })
}

func (s *listenerSet) OnButton(fn func(Button)) func() {
	return s.onButton.add(fn)
}

func (s *listenerSet) clear() {
	s.onValue.clear()
	s.onAccept.clear()
	s.onHide.clear()
	s.onButton.clear()
}
