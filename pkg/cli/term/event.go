package term

import "github.com/panerepl/panerepl/pkg/ui"

// Event represents an event that can be read from the terminal.
type Event interface {
	isEvent()
}

// KeyEvent represents a key press.
type KeyEvent ui.Key

// K constructs a new KeyEvent.
func K(r rune, mods ...ui.Mod) KeyEvent {
	return KeyEvent(ui.K(r, mods...))
}

// MouseEvent represents a mouse event (either pressing or releasing).
type MouseEvent struct {
	Pos
	Down bool
	// Number of the Button, 0-based. -1 for unknown. Wheel motion is reported
	// as WheelUp or WheelDown.
	Button int
	Mod    ui.Mod
}

// Button numbers of wheel motion, as encoded by xterm.
const (
	WheelUp   = 64
	WheelDown = 65
)

// CursorPosition represents a cursor position report.
type CursorPosition Pos

// PasteSetting indicates the start or finish of pasted text.
type PasteSetting bool

func (KeyEvent) isEvent()       {}
func (MouseEvent) isEvent()     {}
func (CursorPosition) isEvent() {}
func (PasteSetting) isEvent()   {}
