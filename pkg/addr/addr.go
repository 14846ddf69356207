// Package addr implements "line.column" addressing into line-oriented text.
//
// Lines are 1-based and columns are 0-based rune offsets, following the
// convention of Tk-style text widgets: "1.0" is the very beginning of a text.
package addr

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a position in a text.
type Pos struct {
	Line, Col int
}

// P is a shorthand for constructing a Pos.
func P(line, col int) Pos { return Pos{line, col} }

// String returns the "line.col" form of the position.
func (p Pos) String() string {
	return strconv.Itoa(p.Line) + "." + strconv.Itoa(p.Col)
}

// Compare returns -1, 0 or 1 when p is before, equal to or after q.
func (p Pos) Compare(q Pos) int {
	switch {
	case p.Line < q.Line:
		return -1
	case p.Line > q.Line:
		return 1
	case p.Col < q.Col:
		return -1
	case p.Col > q.Col:
		return 1
	}
	return 0
}

// Before reports whether p comes strictly before q.
func (p Pos) Before(q Pos) bool { return p.Compare(q) < 0 }

// Order returns p and q with the earlier one first.
func Order(p, q Pos) (Pos, Pos) {
	if q.Before(p) {
		return q, p
	}
	return p, q
}

// EndCol is the column value used for "line.end" indices before they are
// resolved against a text.
const EndCol = -1

// Error is returned when parsing a malformed index.
type Error struct {
	Index string
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bad index %q: %s", e.Index, e.Msg)
}

// Parse parses an index of the form "line.col" or "line.end". The latter
// yields a Pos with Col set to EndCol; use a Lines to resolve it.
func Parse(s string) (Pos, error) {
	lineStr, colStr, ok := strings.Cut(s, ".")
	if !ok {
		return Pos{}, &Error{s, "missing '.'"}
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil {
		return Pos{}, &Error{s, "bad line number"}
	}
	if colStr == "end" {
		return Pos{line, EndCol}, nil
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 0 {
		return Pos{}, &Error{s, "bad column"}
	}
	return Pos{line, col}, nil
}

// Lines is the minimal view of a text needed to resolve indices.
type Lines interface {
	LineCount() int
	// LineLen returns the number of runes on the given 1-based line.
	LineLen(line int) int
}

// Clamp moves p to the nearest valid position in t, the way a text widget
// treats out-of-range indices. A Col of EndCol resolves to the end of the
// line.
func Clamp(t Lines, p Pos) Pos {
	n := t.LineCount()
	if p.Line < 1 {
		return Pos{1, 0}
	}
	if p.Line > n {
		return Pos{n, t.LineLen(n)}
	}
	if l := t.LineLen(p.Line); p.Col == EndCol || p.Col > l {
		p.Col = l
	} else if p.Col < 0 {
		p.Col = 0
	}
	return p
}

// End returns the position just after the last rune of t.
func End(t Lines) Pos {
	n := t.LineCount()
	return Pos{n, t.LineLen(n)}
}

// Resolve parses s and clamps it against t. Besides the forms accepted by
// Parse, it accepts "end".
func Resolve(t Lines, s string) (Pos, error) {
	if s == "end" {
		return End(t), nil
	}
	p, err := Parse(s)
	if err != nil {
		return Pos{}, err
	}
	return Clamp(t, p), nil
}
