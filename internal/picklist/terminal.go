package picklist

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/whichkey/internal/screen"
)

// Styles used by the terminal widget.
type Styles struct {
	Title       tcell.Style
	Input       tcell.Style
	Placeholder tcell.Style
	Label       tcell.Style
	Highlight   tcell.Style
	Description tcell.Style
	Active      tcell.Style
	Button      tcell.Style
}

// DefaultStyles returns the default terminal styles.
func DefaultStyles() Styles {
	base := tcell.StyleDefault
	return Styles{
		Title:       base.Bold(true),
		Input:       base,
		Placeholder: base.Dim(true),
		Label:       base.Foreground(tcell.ColorAqua),
		Highlight:   base.Foreground(tcell.ColorYellow).Bold(true),
		Description: base,
		Active:      base.Reverse(true),
		Button:      base.Dim(true),
	}
}

// Terminal draws the widget on the top rows of a screen. The last row is
// left to the status line.
//
// Terminal does not read the terminal itself: the owner polls events and
// passes them to HandleEvent. Alt+1..Alt+9 trigger the title buttons.
type Terminal struct {
	listenerSet

	valueMu sync.Mutex

	mu          sync.Mutex
	scr         *screen.Screen
	styles      Styles
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
}

// NewTerminal creates a hidden widget drawing on scr.
func NewTerminal(scr *screen.Screen) *Terminal {
	return &Terminal{scr: scr, styles: DefaultStyles()}
}

// SetStyles replaces the styles.
func (t *Terminal) SetStyles(s Styles) {
	t.update(func() { t.styles = s })
}

func (t *Terminal) SetTitle(title string) {
	t.update(func() { t.title = title })
}

func (t *Terminal) SetPlaceholder(text string) {
	t.update(func() { t.placeholder = text })
}

func (t *Terminal) SetBusy(busy bool) {
	t.update(func() { t.busy = busy })
}

func (t *Terminal) SetMatchOnDescription(match bool) {
	t.update(func() { t.opts.MatchOnDescription = match })
}

func (t *Terminal) SetMatchOnDetail(match bool) {
	t.update(func() { t.opts.MatchOnDetail = match })
}

func (t *Terminal) SetItems(items []Item) {
	t.update(func() {
		t.items = append([]Item(nil), items...)
		t.active = 0
	})
}

func (t *Terminal) SetButtons(buttons []Button) {
	t.update(func() { t.buttons = append([]Button(nil), buttons...) })
}

func (t *Terminal) SetValue(value string) {
	t.setValue(func(string) string { return value })
}

func (t *Terminal) Value() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.value
}

func (t *Terminal) ActiveItem() (Item, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	matches := Filter(t.items, t.value, t.opts)
	if t.active < 0 || t.active >= len(matches) {
		return Item{}, false
	}
	return matches[t.active].Item, true
}

func (t *Terminal) Show() {
	t.update(func() {
		if !t.disposed {
			t.visible = true
		}
	})
}

func (t *Terminal) Hide() <-chan struct{} {
	done := make(chan struct{})
	t.mu.Lock()
	wasVisible := t.visible && !t.disposed
	t.visible = false
	t.mu.Unlock()

	if wasVisible {
		t.clearScreen()
		t.onHide.emit(struct{}{})
	}
	close(done)
	return done
}

func (t *Terminal) Dispose() {
	t.mu.Lock()
	wasVisible := t.visible
	t.disposed = true
	t.visible = false
	t.mu.Unlock()
	t.listenerSet.clear()
	if wasVisible {
		t.clearScreen()
	}
}

// HandleEvent applies a terminal event to the widget. It reports whether
// the event was consumed.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	if !t.live() {
		return false
	}
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.update(func() {})
		return true
	case *tcell.EventKey:
		return t.handleKey(ev)
	}
	return false
}

func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyRune:
		r := ev.Rune()
		if ev.Modifiers()&tcell.ModAlt != 0 {
			if r >= '1' && r <= '9' {
				return t.press(int(r - '1'))
			}
			return false
		}
		t.setValue(func(v string) string { return v + string(r) })
	case tcell.KeyTab:
		t.setValue(func(v string) string { return v + "\t" })
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		t.setValue(func(v string) string {
			r := []rune(v)
			if len(r) == 0 {
				return v
			}
			return string(r[:len(r)-1])
		})
	case tcell.KeyEnter:
		t.onAccept.emit(struct{}{})
	case tcell.KeyEscape:
		<-t.Hide()
	case tcell.KeyUp:
		t.update(func() {
			if t.active > 0 {
				t.active--
			}
		})
	case tcell.KeyDown:
		t.update(func() {
			if t.active < len(Filter(t.items, t.value, t.opts))-1 {
				t.active++
			}
		})
	default:
		return false
	}
	return true
}

func (t *Terminal) press(i int) bool {
	t.mu.Lock()
	if i >= len(t.buttons) {
		t.mu.Unlock()
		return false
	}
	b := t.buttons[i]
	t.mu.Unlock()
	t.onButton.emit(b)
	return true
}

func (t *Terminal) setValue(update func(string) string) {
	t.valueMu.Lock()
	defer t.valueMu.Unlock()

	t.mu.Lock()
	value := update(t.value)
	if t.disposed || t.value == value {
		t.mu.Unlock()
		return
	}
	t.value = value
	t.active = 0
	t.drawLocked()
	t.mu.Unlock()
	t.onValue.emit(value)
}

func (t *Terminal) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.visible && !t.disposed
}

// update applies fn and redraws when visible.
func (t *Terminal) update(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn()
	t.drawLocked()
}

func (t *Terminal) clearScreen() {
	t.scr.Clear()
	t.scr.HideCursor()
	t.scr.Show()
}

func (t *Terminal) drawLocked() {
	if !t.visible || t.disposed {
		return
	}
	w, h := t.scr.Size()
	t.scr.Clear()

	// Title and buttons.
	title := t.title
	if t.busy {
		title += " …"
	}
	t.scr.FillRow(0, 0, w, t.styles.Title)
	var btns []string
	for i, b := range t.buttons {
		btns = append(btns, fmt.Sprintf("[M-%d %s]", i+1, strings.TrimSpace(b.Icon+" "+b.Tooltip)))
	}
	right := strings.Join(btns, " ")
	rw := runewidth.StringWidth(right)
	t.scr.DrawText(0, 0, max(w-rw-1, 0), title, t.styles.Title)
	if rw > 0 && rw < w {
		t.scr.DrawText(w-rw, 0, rw, right, t.styles.Button)
	}

	// Input.
	prompt := "> "
	used := t.scr.DrawText(0, 1, w, prompt, t.styles.Input)
	if t.value == "" && t.placeholder != "" {
		t.scr.DrawText(used, 1, w-used, t.placeholder, t.styles.Placeholder)
		t.scr.ShowCursor(used, 1)
	} else {
		shown := strings.ReplaceAll(t.value, "\t", "↹")
		n := t.scr.DrawText(used, 1, w-used, shown, t.styles.Input)
		t.scr.ShowCursor(used+n, 1)
	}

	// Items, leaving the last row to the status line.
	matches := Filter(t.items, t.value, t.opts)
	labelWidth := 0
	for _, m := range matches {
		labelWidth = max(labelWidth, runewidth.StringWidth(m.Item.Label))
	}
	rows := h - 3
	for i, m := range matches {
		if i >= rows {
			break
		}
		y := 2 + i
		active := i == t.active
		if active {
			t.scr.FillRow(0, y, w, t.styles.Active)
		}
		t.drawLabel(1, y, w-1, m, active)
		x := 1 + labelWidth + 2
		if x < w {
			text := m.Item.Description
			if m.Item.Detail != "" {
				text = strings.TrimSpace(text + "  " + m.Item.Detail)
			}
			t.scr.DrawText(x, y, w-x, text, t.rowStyle(t.styles.Description, active))
		}
	}
	t.scr.Show()
}

// drawLabel draws a label with its matched characters highlighted.
func (t *Terminal) drawLabel(x, y, width int, m Match, active bool) int {
	hl := make(map[int]bool, len(m.Highlights))
	for _, i := range m.Highlights {
		hl[i] = true
	}
	used := 0
	for i, r := range m.Item.Label {
		style := t.styles.Label
		if hl[i] {
			style = t.styles.Highlight
		}
		used += t.scr.DrawText(x+used, y, width-used, string(r), t.rowStyle(style, active))
	}
	return used
}

func (t *Terminal) rowStyle(s tcell.Style, active bool) tcell.Style {
	if active {
		return s.Reverse(true)
	}
	return s
}

// KeyName names a key event the widget does not consume, in the notation
// of binding keys: "C-x" for control keys, "M-x" for alt keys and "F1" to
// "F24" for function keys. It reports false for keys without a name.
func KeyName(ev *tcell.EventKey) (string, bool) {
	k := ev.Key()
	switch {
	case k >= tcell.KeyF1 && k <= tcell.KeyF24:
		return fmt.Sprintf("F%d", int(k-tcell.KeyF1)+1), true
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		return "C-" + string(rune('a'+int(k-tcell.KeyCtrlA))), true
	case k == tcell.KeyRune && ev.Modifiers()&tcell.ModAlt != 0:
		return "M-" + string(ev.Rune()), true
	}
	return "", false
}
