package dispatch

import "testing"

func TestTracker(t *testing.T) {
	tests := []struct {
		name    string
		held    string
		value   string
		delta   string
		verdict Verdict
		last    string
	}{
		{"extend from empty", "", "m", "m", Extend, "m"},
		{"extend batched", "m", "mxy", "xy", Extend, "mxy"},
		{"same", "m", "m", "", Same, "m"},
		{"shrink", "mx", "m", "", Reject, "mx"},
		{"empty rejected", "m", "", "", Reject, "m"},
		{"diverge", "mx", "my", "", Reject, "mx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Tracker
			tr.Hold(tt.held)
			delta, verdict := tr.Accept(tt.value)
			if delta != tt.delta || verdict != tt.verdict {
				t.Errorf("Accept(%q) = %q, %v, want %q, %v", tt.value, delta, verdict, tt.delta, tt.verdict)
			}
			if tr.Last() != tt.last {
				t.Errorf("Last() = %q, want %q", tr.Last(), tt.last)
			}
		})
	}
}

func TestTracker_Reset(t *testing.T) {
	var tr Tracker
	tr.Accept("abc")
	tr.Reset()
	if delta, v := tr.Accept("x"); delta != "x" || v != Extend {
		t.Errorf("Accept after Reset = %q, %v", delta, v)
	}
}

func TestTracker_Expect(t *testing.T) {
	var tr Tracker
	tr.Accept("m")
	tr.Expect("")

	// A value typed before the reset arrives is still a delta.
	if delta, v := tr.Accept("mx"); delta != "x" || v != Extend {
		t.Errorf("Accept(mx) = %q, %v, want x, extend", delta, v)
	}
	if delta, v := tr.Accept(""); delta != "" || v != Same {
		t.Errorf("Accept(expected) = %q, %v, want same", delta, v)
	}
	if tr.Last() != "" {
		t.Errorf("Last() = %q, want empty", tr.Last())
	}
	if delta, v := tr.Accept("y"); delta != "y" || v != Extend {
		t.Errorf("Accept(y) = %q, %v, want y, extend", delta, v)
	}

	// The expectation is used once.
	if _, v := tr.Accept(""); v != Reject {
		t.Errorf("second Accept(\"\") = %v, want reject", v)
	}
}
