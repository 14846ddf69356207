// Package gate decides which editing actions are allowed on the transcript.
//
// Only the live input region, from the current prompt line to the end of the
// transcript, can be edited. The check runs before an action takes effect, so
// a denied action simply never happens.
package gate

import "github.com/panerepl/panerepl/pkg/addr"

// Kind classifies an editing action for the purpose of gating.
type Kind int

const (
	// Edit is any action that changes text at the cursor or moves the
	// cursor without crossing the start of the live region.
	Edit Kind = iota
	// DeleteBackward removes the rune before the cursor.
	DeleteBackward
	// CursorLeft moves the cursor one rune to the left.
	CursorLeft
)

var kindNames = [...]string{"edit", "delete-backward", "cursor-left"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Allow reports whether an action of the given kind may happen with the cursor
// at cursor, when the live region starts at promptLine.
func Allow(kind Kind, cursor addr.Pos, promptLine int) bool {
	if cursor.Line < promptLine {
		return false
	}
	if cursor.Line == promptLine && cursor.Col == 0 {
		switch kind {
		case DeleteBackward, CursorLeft:
			return false
		}
	}
	return true
}

// AllowRange reports whether the text between two positions lies entirely
// within the live region and may be removed.
func AllowRange(from, to addr.Pos, promptLine int) bool {
	from, _ = addr.Order(from, to)
	return from.Line >= promptLine
}
