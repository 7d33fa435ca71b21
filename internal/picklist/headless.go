package picklist

import "sync"

// Headless is an in-memory widget. The owner drives it through its setters
// and simulates the user with Type, Backspace, Accept, Select, Dismiss and
// Press.
type Headless struct {
	listenerSet

	// valueMu serializes value changes with their listener calls.
	valueMu sync.Mutex

	mu          sync.Mutex
	title       string
	placeholder string
	busy        bool
	opts        FilterOptions
	items       []Item
	buttons     []Button
	value       string
	active      int
	visible     bool
	disposed    bool
	shows       int
}

// NewHeadless creates a hidden headless widget.
func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) SetTitle(title string) {
	h.mu.Lock()
	h.title = title
	h.mu.Unlock()
}

func (h *Headless) SetPlaceholder(text string) {
	h.mu.Lock()
	h.placeholder = text
	h.mu.Unlock()
}

func (h *Headless) SetBusy(busy bool) {
	h.mu.Lock()
	h.busy = busy
	h.mu.Unlock()
}

func (h *Headless) SetMatchOnDescription(match bool) {
	h.mu.Lock()
	h.opts.MatchOnDescription = match
	h.mu.Unlock()
}

func (h *Headless) SetMatchOnDetail(match bool) {
	h.mu.Lock()
	h.opts.MatchOnDetail = match
	h.mu.Unlock()
}

func (h *Headless) SetItems(items []Item) {
	h.mu.Lock()
	h.items = append([]Item(nil), items...)
	h.active = 0
	h.mu.Unlock()
}

func (h *Headless) SetButtons(buttons []Button) {
	h.mu.Lock()
	h.buttons = append([]Button(nil), buttons...)
	h.mu.Unlock()
}

func (h *Headless) SetValue(value string) {
	h.setValue(func(string) string { return value })
}

func (h *Headless) Value() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.value
}

func (h *Headless) ActiveItem() (Item, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	matches := Filter(h.items, h.value, h.opts)
	if h.active < 0 || h.active >= len(matches) {
		return Item{}, false
	}
	return matches[h.active].Item, true
}

func (h *Headless) Show() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed {
		return
	}
	h.visible = true
	h.shows++
}

func (h *Headless) Hide() <-chan struct{} {
	done := make(chan struct{})
	h.mu.Lock()
	wasVisible := h.visible && !h.disposed
	h.visible = false
	h.mu.Unlock()

	if wasVisible {
		h.onHide.emit(struct{}{})
	}
	close(done)
	return done
}

func (h *Headless) Dispose() {
	h.mu.Lock()
	h.disposed = true
	h.visible = false
	h.mu.Unlock()
	h.listenerSet.clear()
}

// Type appends text to the value as if typed by the user.
func (h *Headless) Type(text string) {
	h.setValue(func(v string) string { return v + text })
}

// Backspace removes the last character of the value.
func (h *Headless) Backspace() {
	h.setValue(func(v string) string {
		r := []rune(v)
		if len(r) == 0 {
			return v
		}
		return string(r[:len(r)-1])
	})
}

// Select highlights the i-th filtered item.
func (h *Headless) Select(i int) {
	h.mu.Lock()
	h.active = i
	h.mu.Unlock()
}

// Accept accepts the active item.
func (h *Headless) Accept() {
	if !h.live() {
		return
	}
	h.onAccept.emit(struct{}{})
}

// Dismiss hides the widget as if the user closed it.
func (h *Headless) Dismiss() {
	<-h.Hide()
}

// Press triggers the button with the given id. It reports false when no
// such button is shown.
func (h *Headless) Press(id string) bool {
	h.mu.Lock()
	var (
		found Button
		ok    bool
	)
	for _, b := range h.buttons {
		if b.ID == id {
			found, ok = b, true
			break
		}
	}
	live := h.visible && !h.disposed
	h.mu.Unlock()
	if !ok || !live {
		return false
	}
	h.onButton.emit(found)
	return true
}

// Title returns the current title.
func (h *Headless) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

// Placeholder returns the current placeholder.
func (h *Headless) Placeholder() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.placeholder
}

// Busy reports whether the widget shows its busy state.
func (h *Headless) Busy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.busy
}

// Options returns the filter options.
func (h *Headless) Options() FilterOptions {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opts
}

// Items returns the unfiltered items.
func (h *Headless) Items() []Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Item(nil), h.items...)
}

// Filtered returns the items matching the current value.
func (h *Headless) Filtered() []Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	matches := Filter(h.items, h.value, h.opts)
	out := make([]Item, len(matches))
	for i, m := range matches {
		out[i] = m.Item
	}
	return out
}

// Buttons returns the shown buttons.
func (h *Headless) Buttons() []Button {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Button(nil), h.buttons...)
}

// Visible reports whether the widget is shown.
func (h *Headless) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}

// Disposed reports whether Dispose was called.
func (h *Headless) Disposed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed
}

// Shows returns how many times Show was called.
func (h *Headless) Shows() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shows
}

func (h *Headless) setValue(update func(string) string) {
	h.valueMu.Lock()
	defer h.valueMu.Unlock()

	h.mu.Lock()
	value := update(h.value)
	if h.disposed || h.value == value {
		h.mu.Unlock()
		return
	}
	h.value = value
	h.active = 0
	h.mu.Unlock()
	h.onValue.emit(value)
}

func (h *Headless) live() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible && !h.disposed
}
