package cli

import (
	"strings"

	"github.com/panerepl/panerepl/pkg/addr"
	"github.com/panerepl/panerepl/pkg/cli/term"
	"github.com/panerepl/panerepl/pkg/session"
)

const (
	promptStyle    = "1;32"
	selectionStyle = "7"
)

// layout is the horizontal division of the screen: the prompt pane, the
// transcript pane, and a scrollbar in the last column.
type layout struct {
	promptWidth, transcriptWidth int
	// Number of columns of the transcript scrolled out of view on the left.
	xoff int
}

func newLayout(promptWidth, width int) layout {
	return layout{promptWidth: promptWidth, transcriptWidth: max(width-promptWidth-1, 1)}
}

// follow scrolls the transcript horizontally so that the cursor is visible.
func (lo *layout) follow(s *session.Session) {
	cursor := s.Cursor()
	x := 0
	for i, r := range []rune(s.Line(cursor.Line)) {
		if i >= cursor.Col {
			break
		}
		x += term.RuneWidth(r)
	}
	if x < lo.xoff {
		lo.xoff = x
	} else if x >= lo.xoff+lo.transcriptWidth {
		lo.xoff = x - lo.transcriptWidth + 1
	}
}

// render draws the visible lines of both panes side by side, with the dot at
// the cursor.
func render(s *session.Session, lo layout, height int) *term.Buffer {
	pfrom, pto := s.PromptView().Visible()
	pb := term.NewBufferBuilder(lo.promptWidth)
	for i := 0; i < height; i++ {
		if i > 0 {
			pb.Newline()
		}
		if line := pfrom + i; line <= pto {
			pb.WriteStringSGR(s.PromptMarker(line), promptStyle)
		}
	}

	from, to := s.TranscriptView().Visible()
	cursor := s.Cursor()
	selFrom, selTo, hasSel := selection(s)
	tb := term.NewBufferBuilder(lo.transcriptWidth)
	for i := 0; i < height; i++ {
		if i > 0 {
			tb.Newline()
		}
		line := from + i
		if line > to {
			continue
		}
		col, x, clipped := 0, 0, false
		for _, r := range s.Line(line) {
			p := addr.P(line, col)
			col++
			w := term.RuneWidth(r)
			if x < lo.xoff {
				x += w
				if x > lo.xoff {
					// Right half of a wide rune cut by the left edge.
					tb.Write(strings.Repeat(" ", x-lo.xoff))
				}
				continue
			}
			x += w
			if p == cursor {
				tb.SetDotHere()
			}
			if !tb.Fits(r) {
				clipped = true
				break
			}
			style := ""
			if hasSel && !p.Before(selFrom) && p.Before(selTo) {
				style = selectionStyle
			}
			tb.WriteRuneSGR(r, style)
		}
		if !clipped && addr.P(line, col) == cursor {
			tb.SetDotHere()
		}
	}

	buf := pb.Buffer()
	buf.ExtendRight(tb.Buffer(), true)
	buf.ExtendRight(vscrollbar{s.LineCount(), from - 1, to}.render(height), false)
	return buf
}

func selection(s *session.Session) (from, to addr.Pos, ok bool) {
	mark, hasMark := s.Mark()
	if !hasMark {
		return addr.Pos{}, addr.Pos{}, false
	}
	from, to = addr.Order(mark, s.Cursor())
	return from, to, from != to
}

// locate maps a 0-based screen position to a pane and a position in the
// document. Columns are converted from display width to runes, taking the
// horizontal scroll into account.
func locate(s *session.Session, lo layout, p term.Pos) (session.Pane, addr.Pos) {
	line := s.TranscriptView().Top() + p.Line
	if p.Col < lo.promptWidth {
		return session.PromptPane, addr.P(line, 0)
	}
	if line > s.LineCount() {
		return session.TranscriptPane, addr.P(line, addr.EndCol)
	}
	return session.TranscriptPane, addr.P(line, runeAt(s.Line(line), p.Col-lo.promptWidth+lo.xoff))
}

// runeAt returns the index of the rune of text that occupies display column
// x, or the rune count when x is past the end.
func runeAt(text string, x int) int {
	col, w := 0, 0
	for _, r := range text {
		w += term.RuneWidth(r)
		if w > x {
			return col
		}
		col++
	}
	return col
}
