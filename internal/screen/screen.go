// Package screen wraps a tcell screen for the terminal picklist and the
// status line. Every drawing call takes the same lock so both can share one
// screen.
package screen

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Screen is a goroutine-safe tcell screen.
type Screen struct {
	mu     sync.Mutex
	screen tcell.Screen
}

// New creates a screen on the controlling terminal.
func New() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Screen{screen: s}, nil
}

// Wrap uses an existing tcell screen, such as a simulation screen in tests.
func Wrap(s tcell.Screen) *Screen {
	return &Screen{screen: s}
}

// Init initializes the terminal.
func (s *Screen) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.screen.Init(); err != nil {
		return err
	}
	s.screen.EnablePaste()
	return nil
}

// Fini restores the terminal.
func (s *Screen) Fini() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Fini()
}

// Size returns the screen size in cells.
func (s *Screen) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Size()
}

// DrawText draws text at (x, y), clipped to width columns, and returns the
// number of columns used. Wide characters take two columns.
func (s *Screen) DrawText(x, y, width int, text string, style tcell.Style) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		w := runewidth.StringWidth(g.Str())
		if w == 0 {
			continue
		}
		if used+w > width {
			break
		}
		s.screen.SetContent(x+used, y, runes[0], runes[1:], style)
		used += w
	}
	return used
}

// FillRow paints columns [x, x+width) of row y with spaces.
func (s *Screen) FillRow(x, y, width int, style tcell.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < width; i++ {
		s.screen.SetContent(x+i, y, ' ', nil, style)
	}
}

// Clear clears the screen.
func (s *Screen) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Clear()
}

// Show flushes pending drawing to the terminal.
func (s *Screen) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.Show()
}

// ShowCursor places the cursor.
func (s *Screen) ShowCursor(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.ShowCursor(x, y)
}

// HideCursor hides the cursor.
func (s *Screen) HideCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.HideCursor()
}

// PollEvent blocks until the next terminal event. It returns nil after
// Fini.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// PostEvent queues an event for PollEvent.
func (s *Screen) PostEvent(ev tcell.Event) error {
	return s.screen.PostEvent(ev)
}
