package dispatch

import (
	"strings"
	"sync"
)

// Verdict classifies a widget value against the value already entered.
type Verdict int

const (
	// Extend means the value appends to the entered value.
	Extend Verdict = iota
	// Same means the value did not change.
	Same
	// Reject means the value shrinks or diverges and must be forced back.
	Reject
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case Extend:
		return "extend"
	case Same:
		return "same"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Tracker follows the text entered into the picklist widget.
//
// Widget callbacks call Accept as values change, before anything is queued,
// so deltas are computed in the order the values were produced. The queue
// consumer calls Hold when it changes the value itself. Tracker is safe for
// concurrent use.
type Tracker struct {
	mu       sync.Mutex
	last     string
	expected *string
}

// Accept classifies value. On Extend it returns the appended text and
// records value as entered. On Reject the caller should set the widget back
// to Last.
func (t *Tracker) Accept(value string) (string, Verdict) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.expected != nil && value == *t.expected {
		t.last = value
		t.expected = nil
		return "", Same
	}
	switch {
	case value == t.last:
		return "", Same
	case strings.HasPrefix(value, t.last):
		delta := value[len(t.last):]
		t.last = value
		return delta, Extend
	default:
		return "", Reject
	}
}

// Last returns the entered value.
func (t *Tracker) Last() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Hold sets the entered value and drops any expected value.
func (t *Tracker) Hold(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = value
	t.expected = nil
}

// Expect announces that the widget is about to be set to value. When that
// value arrives it becomes the entered value without being read as input;
// values produced before it are still classified against the old one.
func (t *Tracker) Expect(value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expected = &value
}

// Reset forgets the entered value.
func (t *Tracker) Reset() {
	t.Hold("")
}
