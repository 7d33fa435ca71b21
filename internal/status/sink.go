package status

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/whichkey/internal/screen"
)

var (
	plainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// Writer prints each message on its own line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a sink that prints to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Show prints msg styled by kind.
func (s *Writer) Show(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	style := plainStyle
	if msg.Error {
		style = errorStyle
	}
	fmt.Fprintln(s.w, style.Render(msg.Text))
}

// Clear does nothing; printed lines stay in the output.
func (s *Writer) Clear() {}

// Line draws messages on the bottom row of a terminal screen.
type Line struct {
	screen *screen.Screen
}

// NewLine creates a sink drawing on the last row of s.
func NewLine(s *screen.Screen) *Line {
	return &Line{screen: s}
}

var (
	linePlainStyle = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	lineErrorStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorMaroon).Bold(true)
)

// Show draws msg.
func (l *Line) Show(msg Message) {
	style := linePlainStyle
	if msg.Error {
		style = lineErrorStyle
	}
	w, h := l.screen.Size()
	l.screen.FillRow(0, h-1, w, tcell.StyleDefault)
	l.screen.DrawText(0, h-1, w, msg.Text, style)
	l.screen.Show()
}

// Clear blanks the row.
func (l *Line) Clear() {
	w, h := l.screen.Size()
	l.screen.FillRow(0, h-1, w, tcell.StyleDefault)
	l.screen.Show()
}

// Recorder keeps every message shown. It is used in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	current  *Message
}

// Show records msg.
func (r *Recorder) Show(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	r.current = &msg
}

// Clear records that the message was hidden.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

// Messages returns every message shown so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Errors returns the text of every error message shown so far.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.messages {
		if m.Error {
			out = append(out, m.Text)
		}
	}
	return out
}

// Current returns the visible message.
func (r *Recorder) Current() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Message{}, false
	}
	return *r.current, true
}
