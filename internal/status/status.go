// Package status shows transient plain and error messages.
//
// Bar implements Notifier on top of a Sink. A message stays visible until
// its timeout elapses or another message replaces it.
package status

import (
	"sync"
	"time"
)

// DefaultTimeout is how long a message is shown when no timeout is given.
const DefaultTimeout = 3 * time.Second

// NoTimeout shows a message until it is replaced or hidden.
const NoTimeout time.Duration = -1

// Notifier displays status messages. A zero timeout uses the notifier's
// default; a negative timeout shows the message until it is replaced.
type Notifier interface {
	ShowPlain(text string, timeout time.Duration)
	ShowError(text string, timeout time.Duration)
	Hide()
	HideIfPlain()
	HideIfError()
}

// Message is a status message.
type Message struct {
	Text  string
	Error bool
}

// Sink renders messages.
type Sink interface {
	Show(Message)
	Clear()
}

// Bar is a Notifier over a Sink.
type Bar struct {
	sink Sink

	mu      sync.Mutex
	timeout time.Duration
	timer   *time.Timer
	gen     uint64
	isError bool
	visible bool
}

// NewBar creates a bar that renders to sink with DefaultTimeout.
func NewBar(sink Sink) *Bar {
	return &Bar{sink: sink, timeout: DefaultTimeout}
}

// SetTimeout changes the default timeout. A non-positive value shows
// messages until they are replaced.
func (b *Bar) SetTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeout = d
}

// ShowPlain shows a plain message.
func (b *Bar) ShowPlain(text string, timeout time.Duration) {
	b.show(Message{Text: text}, timeout)
}

// ShowError shows an error message.
func (b *Bar) ShowError(text string, timeout time.Duration) {
	b.show(Message{Text: text, Error: true}, timeout)
}

// Hide hides any message.
func (b *Bar) Hide() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hideLocked()
}

// HideIfPlain hides the current message if it is plain.
func (b *Bar) HideIfPlain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.visible && !b.isError {
		b.hideLocked()
	}
}

// HideIfError hides the current message if it is an error.
func (b *Bar) HideIfError() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.visible && b.isError {
		b.hideLocked()
	}
}

// Close stops the pending timer and clears the sink.
func (b *Bar) Close() {
	b.Hide()
}

func (b *Bar) show(msg Message, timeout time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopTimer()
	b.isError = msg.Error
	b.visible = true
	b.sink.Show(msg)

	if timeout == 0 {
		timeout = b.timeout
	}
	if timeout > 0 {
		gen := b.gen
		b.timer = time.AfterFunc(timeout, func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.gen == gen {
				b.hideLocked()
			}
		})
	}
}

func (b *Bar) hideLocked() {
	b.stopTimer()
	if b.visible {
		b.visible = false
		b.sink.Clear()
	}
}

// stopTimer cancels the pending hide. The generation bump makes a timer
// that already fired a no-op.
func (b *Bar) stopTimer() {
	b.gen++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
