package histutil

import "fmt"

// Direction is the direction of a recall.
type Direction int

const (
	// Up recalls the previous (older) command.
	Up Direction = iota
	// Down recalls the next (newer) command.
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// DownPolicy decides when a Down recall applies.
type DownPolicy int

const (
	// DownOnLastLine applies Down when the cursor is on the last line of the
	// live region, mirroring Up, which applies on the first line.
	DownOnLastLine DownPolicy = iota
	// DownOnSingleLineRegion applies Down only when the live region is a
	// single line, regardless of where the cursor is on it.
	DownOnSingleLineRegion
)

// ParseDownPolicy parses the names used in configuration files.
func ParseDownPolicy(s string) (DownPolicy, error) {
	switch s {
	case "", "last-line":
		return DownOnLastLine, nil
	case "single-line-region":
		return DownOnSingleLineRegion, nil
	}
	return 0, fmt.Errorf("unknown down-recall policy %q", s)
}

// Recall is the outcome of a recall attempt.
type Recall struct {
	// Whether the cursor was on the boundary line. When true, the key that
	// triggered the recall is consumed even if nothing was recalled.
	Handled bool
	// Whether Text should replace the live region.
	Recalled bool
	Text     string
}

// Navigator walks through the history with a cursor. The cursor is an index
// into the history; a value equal to the number of entries means no recall
// is active.
type Navigator struct {
	store  Store
	cursor int
	n      int
	Policy DownPolicy
}

// NewNavigator returns a Navigator over the store, with no recall active.
func NewNavigator(store Store) (*Navigator, error) {
	cmds, err := store.AllCmds()
	if err != nil {
		return nil, err
	}
	return &Navigator{store: store, cursor: len(cmds), n: len(cmds)}, nil
}

// Add appends a command and resets the cursor past the end.
func (nv *Navigator) Add(text string) error {
	if _, err := nv.store.AddCmd(text); err != nil {
		return err
	}
	nv.n++
	nv.cursor = nv.n
	return nil
}

// Cursor returns the current cursor.
func (nv *Navigator) Cursor() int { return nv.cursor }

// Len returns the number of entries.
func (nv *Navigator) Len() int { return nv.n }

// Recall attempts a recall in the given direction. The live region spans
// lines promptLine to lastLine, and the cursor is on cursorLine.
//
// Up applies when the cursor is on the first line of the live region. Down
// applies according to Policy. Outside those boundaries Recall returns a zero
// Recall, and the caller should treat the key as cursor movement. When the
// history is exhausted in the requested direction, the recall is handled but
// nothing is recalled.
func (nv *Navigator) Recall(dir Direction, cursorLine, promptLine, lastLine int) (Recall, error) {
	switch dir {
	case Up:
		if cursorLine != promptLine {
			return Recall{}, nil
		}
		if nv.cursor <= 0 {
			return Recall{Handled: true}, nil
		}
		return nv.moveTo(nv.cursor - 1)
	case Down:
		if !nv.downBoundary(cursorLine, promptLine, lastLine) {
			return Recall{}, nil
		}
		if nv.cursor >= nv.n-1 {
			return Recall{Handled: true}, nil
		}
		return nv.moveTo(nv.cursor + 1)
	}
	return Recall{}, fmt.Errorf("bad direction %d", dir)
}

func (nv *Navigator) downBoundary(cursorLine, promptLine, lastLine int) bool {
	if nv.Policy == DownOnSingleLineRegion {
		return lastLine == promptLine
	}
	return cursorLine == lastLine
}

func (nv *Navigator) moveTo(i int) (Recall, error) {
	cmd, err := nv.store.Cmd(i)
	if err != nil {
		return Recall{Handled: true}, err
	}
	nv.cursor = i
	return Recall{Handled: true, Recalled: true, Text: cmd.Text}, nil
}
