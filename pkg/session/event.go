package session

import (
	"fmt"

	"github.com/panerepl/panerepl/pkg/addr"
	"github.com/panerepl/panerepl/pkg/ui"
)

// EventKind identifies what an Event asks for.
type EventKind int

// Kinds of events.
const (
	// KeyPress is a key that has no binding of its own. Printable keys insert
	// themselves; navigation and deletion keys edit the live region.
	KeyPress EventKind = iota
	// SoftNewline appends a line to the live region without executing.
	SoftNewline
	// Execute submits the live region.
	Execute
	// Click places the cursor at Pos in Pane.
	Click
	// Scroll scrolls both panes by Lines lines.
	Scroll
	// SetMark anchors a selection at the cursor.
	SetMark
	// Copy copies the selection between the mark and the cursor.
	Copy
	// Cut copies the selection and removes it from the live region.
	Cut
	// Paste inserts Text at the cursor, or the clipboard when Text is empty.
	Paste
)

var eventKindNames = [...]string{
	"key", "soft-newline", "execute", "click", "scroll", "set-mark", "copy",
	"cut", "paste",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// ParseEventKind is the inverse of EventKind.String.
func ParseEventKind(s string) (EventKind, error) {
	for i, name := range eventKindNames {
		if name == s {
			return EventKind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Pane identifies one of the two panes.
type Pane int

// The two panes.
const (
	TranscriptPane Pane = iota
	PromptPane
)

// Event is an input to a Session. Which fields are used depends on Kind.
type Event struct {
	Kind  EventKind
	Key   ui.Key
	Text  string
	Pos   addr.Pos
	Pane  Pane
	Lines int
}

// EffectKind identifies a change made by a Session.
type EffectKind int

// Kinds of effects.
const (
	// InsertText inserts Text at From.
	InsertText EffectKind = iota
	// DeleteText deletes the text between From and To.
	DeleteText
	// MarkPrompt marks Line as the start of a new live region.
	MarkPrompt
	// MoveCursor moves the cursor to To.
	MoveCursor
	// ScrollLines scrolls both panes by Line lines.
	ScrollLines
	// SeeLine scrolls both panes so that Line is visible.
	SeeLine
	// SetClipboard sets the clipboard to Text.
	SetClipboard
)

var effectKindNames = [...]string{
	"insert", "delete", "mark-prompt", "move-cursor", "scroll", "see",
	"set-clipboard",
}

func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(effectKindNames) {
		return fmt.Sprintf("EffectKind(%d)", int(k))
	}
	return effectKindNames[k]
}

// Effect is one change made by a Session in response to an Event. Replaying
// the effects of every event on a fresh pair of panes reproduces the state of
// the Session.
type Effect struct {
	Kind     EffectKind
	From, To addr.Pos
	Text     string
	Line     int
}

func (e Effect) String() string {
	switch e.Kind {
	case InsertText:
		return fmt.Sprintf("insert %v %q", e.From, e.Text)
	case DeleteText:
		return fmt.Sprintf("delete %v %v", e.From, e.To)
	case MoveCursor:
		return fmt.Sprintf("move-cursor %v", e.To)
	case SetClipboard:
		return fmt.Sprintf("set-clipboard %q", e.Text)
	default:
		return fmt.Sprintf("%v %d", e.Kind, e.Line)
	}
}

// Result is the outcome of handling an Event.
type Result struct {
	// Whether the event was consumed. An event that is not handled should be
	// given to whatever handles it by default, if anything.
	Handled bool
	// Effects, in the order they were applied.
	Effects []Effect
}
