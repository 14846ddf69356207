package term

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Cell is an indivisible unit on the screen. It is not necessarily 1 column
// wide.
type Cell struct {
	Text  string
	Style string
}

// Pos is a line/column position.
type Pos struct {
	Line, Col int
}

// Returns the total width of a Cell slice.
func cellsWidth(cs []Cell) int {
	w := 0
	for _, c := range cs {
		w += runewidth.StringWidth(c.Text)
	}
	return w
}

// Returns whether two Cell slices are equal, and when they are not, the first
// index at which they differ.
func compareCells(r1, r2 []Cell) (bool, int) {
	for i, c := range r1 {
		if i >= len(r2) || c != r2[i] {
			return false, i
		}
	}
	if len(r1) < len(r2) {
		return false, len(r1)
	}
	return true, 0
}

// Buffer reflects a rectangle area in the terminal, along with a cursor (called
// a "dot" here).
//
// The terminal is never queried for its content. The Buffer is an internal
// reflection that is synchronized one way, from the Buffer to the terminal.
type Buffer struct {
	Width int
	// Lines the content of the buffer.
	Lines [][]Cell
	// Dot is what the user perceives as the cursor.
	Dot Pos
}

// ExtendRight extends b to the right, by padding each line in b to be b.Width
// and appends the corresponding line in b2 to it, making new lines when b2 has
// more lines than b. If moveDot is true, it also updates b.Dot to match the
// dot of b2. It returns b itself.
func (b *Buffer) ExtendRight(b2 *Buffer, moveDot bool) *Buffer {
	i := 0
	for ; i < len(b.Lines) && i < len(b2.Lines); i++ {
		if w0 := cellsWidth(b.Lines[i]); w0 < b.Width {
			b.Lines[i] = append(b.Lines[i], makeSpacing(b.Width-w0)...)
		}
		b.Lines[i] = append(b.Lines[i], b2.Lines[i]...)
	}
	for ; i < len(b2.Lines); i++ {
		row := append(makeSpacing(b.Width), b2.Lines[i]...)
		b.Lines = append(b.Lines, row)
	}

	if moveDot {
		b.Dot = Pos{Line: b2.Dot.Line, Col: b.Width + b2.Dot.Col}
	}
	b.Width += b2.Width
	return b
}

func makeSpacing(n int) []Cell {
	s := make([]Cell, n)
	for i := range s {
		s[i].Text = " "
	}
	return s
}

// TTYString returns a text representation of the buffer. It uses box drawing
// characters to represent the border of the buffer, and embeds SGR sequences to
// represent the style of the text.
func (b *Buffer) TTYString() string {
	if b == nil {
		return "nil"
	}
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "Width = %d, Dot = (%d, %d)\n", b.Width, b.Dot.Line, b.Dot.Col)
	sb.WriteString("┌" + strings.Repeat("─", b.Width) + "┐\n")
	for _, line := range b.Lines {
		sb.WriteRune('│')
		lastStyle := ""
		usedWidth := 0
		for _, cell := range line {
			if cell.Style != lastStyle {
				switch {
				case lastStyle == "":
					sb.WriteString("\033[" + cell.Style + "m")
				case cell.Style == "":
					sb.WriteString("\033[m")
				default:
					sb.WriteString("\033[;" + cell.Style + "m")
				}
				lastStyle = cell.Style
			}
			sb.WriteString(cell.Text)
			usedWidth += runewidth.StringWidth(cell.Text)
		}
		if lastStyle != "" {
			sb.WriteString("\033[m")
		}
		if usedWidth < b.Width {
			sb.WriteString("$" + strings.Repeat(" ", b.Width-usedWidth-1))
		}
		sb.WriteString("│\n")
	}
	sb.WriteString("└" + strings.Repeat("─", b.Width) + "┘\n")
	return sb.String()
}

// BufferBuilder supports building a Buffer line by line. Text that does not
// fit in the width of the buffer is cut off rather than wrapped, so that
// every written line occupies exactly one screen line.
type BufferBuilder struct {
	Width int
	Col   int
	Lines [][]Cell
	Dot   Pos
}

// NewBufferBuilder makes a new BufferBuilder with the given width and one
// empty line.
func NewBufferBuilder(width int) *BufferBuilder {
	return &BufferBuilder{Width: width, Lines: [][]Cell{make([]Cell, 0, width)}}
}

// Cursor returns the current position of the builder.
func (bb *BufferBuilder) Cursor() Pos {
	return Pos{len(bb.Lines) - 1, bb.Col}
}

// SetDotHere sets the dot to the current position.
func (bb *BufferBuilder) SetDotHere() *BufferBuilder {
	bb.Dot = bb.Cursor()
	return bb
}

// Newline starts a new line.
func (bb *BufferBuilder) Newline() *BufferBuilder {
	bb.Lines = append(bb.Lines, make([]Cell, 0, bb.Width))
	bb.Col = 0
	return bb
}

// WriteRuneSGR writes a single rune with the given style. Control characters
// are written in caret notation with reversed video. A rune that does not fit
// in the current line is dropped.
func (bb *BufferBuilder) WriteRuneSGR(r rune, style string) *BufferBuilder {
	if r == '\n' {
		return bb.Newline()
	}
	c := makeCell(r, style)
	w := runewidth.StringWidth(c.Text)
	if bb.Col+w > bb.Width {
		return bb
	}
	last := len(bb.Lines) - 1
	bb.Lines[last] = append(bb.Lines[last], c)
	bb.Col += w
	return bb
}

// Fits reports whether r can be written to the current line without being
// dropped.
func (bb *BufferBuilder) Fits(r rune) bool {
	return bb.Col+RuneWidth(r) <= bb.Width
}

// RuneWidth returns the number of columns r takes when written by a
// BufferBuilder.
func RuneWidth(r rune) int {
	return runewidth.StringWidth(makeCell(r, "").Text)
}

func makeCell(r rune, style string) Cell {
	if r < 0x20 || r == 0x7f {
		// Always show control characters in reverse video.
		if style != "" {
			style += ";7"
		} else {
			style = "7"
		}
		return Cell{"^" + string(r^0x40), style}
	}
	return Cell{string(r), style}
}

// Write writes a string, without any style.
func (bb *BufferBuilder) Write(text string) *BufferBuilder {
	return bb.WriteStringSGR(text, "")
}

// WriteStringSGR writes a string with the given style.
func (bb *BufferBuilder) WriteStringSGR(text, style string) *BufferBuilder {
	for _, r := range text {
		bb.WriteRuneSGR(r, style)
	}
	return bb
}

// Buffer returns a Buffer built by the BufferBuilder.
func (bb *BufferBuilder) Buffer() *Buffer {
	return &Buffer{bb.Width, bb.Lines, bb.Dot}
}
