package screen

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func newSim(t *testing.T) (*Screen, tcell.SimulationScreen) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	s := Wrap(sim)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	sim.SetSize(20, 5)
	t.Cleanup(s.Fini)
	return s, sim
}

func rowText(sim tcell.SimulationScreen, y int) string {
	cells, w, _ := sim.GetContents()
	var out []rune
	for x := 0; x < w; x++ {
		c := cells[y*w+x]
		if len(c.Runes) > 0 {
			out = append(out, c.Runes...)
		}
	}
	return string(out)
}

func TestDrawText(t *testing.T) {
	s, sim := newSim(t)

	used := s.DrawText(0, 0, 20, "m  +Major", tcell.StyleDefault)
	if used != 9 {
		t.Errorf("DrawText used %d columns, want 9", used)
	}
	s.Show()
	if got := rowText(sim, 0); got[:9] != "m  +Major" {
		t.Errorf("row 0 = %q", got)
	}
}

func TestDrawText_WideAndClipped(t *testing.T) {
	s, _ := newSim(t)

	if used := s.DrawText(0, 1, 20, "ｍ", tcell.StyleDefault); used != 2 {
		t.Errorf("full-width rune used %d columns, want 2", used)
	}
	if used := s.DrawText(0, 2, 3, "abcdef", tcell.StyleDefault); used != 3 {
		t.Errorf("clipped text used %d columns, want 3", used)
	}
}
