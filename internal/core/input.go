package core

// Action is a semantic game action, abstracted from physical key presses.
type Action uint8

const (
	ActionNone    Action = iota
	ActionJump           // flap
	ActionPause          // pause or resume
	ActionRestart        // restart after game over
	ActionLines          // toggle guide lines to the next gap
	ActionQuit           // exit
)

var actionNames = [...]string{"None", "Jump", "Pause", "Restart", "Lines", "Quit"}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "Unknown"
}

// InputFrame is the set of actions triggered during one tick.
// The zero value is an empty frame.
type InputFrame struct {
	bits uint16
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Set marks an action as triggered. ActionNone is ignored.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone || a >= 16 {
		return
	}
	f.bits |= 1 << a
}

// Has reports whether a was triggered.
func (f InputFrame) Has(a Action) bool {
	return a < 16 && f.bits&(1<<a) != 0
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return f.bits == 0
}

// Clear resets the frame for the next tick.
func (f *InputFrame) Clear() {
	f.bits = 0
}

// Clone returns a copy of the frame.
func (f InputFrame) Clone() InputFrame {
	return f
}
