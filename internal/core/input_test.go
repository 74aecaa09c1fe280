package core

import "testing"

func TestInputFrame(t *testing.T) {
	var f InputFrame
	if !f.Empty() {
		t.Fatal("zero frame should be empty")
	}

	f.Set(ActionJump)
	f.Set(ActionLines)
	f.Set(ActionNone)
	for _, tt := range []struct {
		a        Action
		expected bool
	}{
		{ActionNone, false},
		{ActionJump, true},
		{ActionPause, false},
		{ActionLines, true},
		{ActionQuit, false},
	} {
		if got := f.Has(tt.a); got != tt.expected {
			t.Errorf("Has(%v) = %v, expected %v", tt.a, got, tt.expected)
		}
	}

	clone := f.Clone()
	f.Clear()
	if !f.Empty() {
		t.Error("Clear should empty the frame")
	}
	if !clone.Has(ActionJump) {
		t.Error("clone should not be affected by Clear")
	}
}

func TestActionString(t *testing.T) {
	tests := map[Action]string{
		ActionNone:  "None",
		ActionJump:  "Jump",
		ActionQuit:  "Quit",
		Action(200): "Unknown",
	}
	for a, expected := range tests {
		if got := a.String(); got != expected {
			t.Errorf("Action(%d).String() = %q, expected %q", a, got, expected)
		}
	}
}
