// Package doc implements the document shared by the prompt pane and the
// transcript pane.
//
// A Document is a list of line records. Each record carries the line's text
// and whether the line starts a new input region, in which case the prompt
// pane shows a glyph next to it. The transcript pane and the prompt column are
// both derived from the same records, and every text mutation goes through
// Insert or Delete, which reconcile the prompt column in the same step. As a
// result the two panes always have the same number of lines.
package doc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/panerepl/panerepl/pkg/addr"
)

// Document is the text model behind both panes. The zero value is not usable;
// use New.
type Document struct {
	lines   []string
	prompts []bool
}

// New returns a Document with a single empty line that starts an input
// region.
func New() *Document {
	return &Document{lines: []string{""}, prompts: []bool{true}}
}

// LineCount returns the number of lines. It is always at least 1.
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns the text of the 1-based line i.
func (d *Document) Line(i int) string { return d.lines[i-1] }

// LineLen returns the number of runes on line i.
func (d *Document) LineLen(i int) int {
	return utf8.RuneCountInString(d.lines[i-1])
}

// IsPrompt reports whether line i starts an input region.
func (d *Document) IsPrompt(i int) bool { return d.prompts[i-1] }

// End returns the position after the last rune of the document.
func (d *Document) End() addr.Pos { return addr.End(d) }

// Clamp moves p to the nearest valid position.
func (d *Document) Clamp(p addr.Pos) addr.Pos { return addr.Clamp(d, p) }

// Index resolves an index string such as "3.4", "3.end" or "end".
func (d *Document) Index(s string) (addr.Pos, error) { return addr.Resolve(d, s) }

// Get returns the text between two positions, with lines joined by "\n".
func (d *Document) Get(from, to addr.Pos) string {
	from, to = addr.Order(d.Clamp(from), d.Clamp(to))
	if from.Line == to.Line {
		l := d.lines[from.Line-1]
		return l[byteOffset(l, from.Col):byteOffset(l, to.Col)]
	}
	var sb strings.Builder
	first := d.lines[from.Line-1]
	sb.WriteString(first[byteOffset(first, from.Col):])
	for i := from.Line + 1; i < to.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(d.lines[i-1])
	}
	last := d.lines[to.Line-1]
	sb.WriteByte('\n')
	sb.WriteString(last[:byteOffset(last, to.Col)])
	return sb.String()
}

// Text returns the whole transcript as one string.
func (d *Document) Text() string { return strings.Join(d.lines, "\n") }

// Insert inserts text at p and returns the position just after the inserted
// text. Lines created by the insertion get blank prompt markers.
func (d *Document) Insert(p addr.Pos, text string) addr.Pos {
	p = d.Clamp(p)
	line := d.lines[p.Line-1]
	i := byteOffset(line, p.Col)
	before, after := line[:i], line[i:]

	parts := strings.Split(text, "\n")
	n := len(parts)
	newLines := make([]string, n)
	copy(newLines, parts)
	newLines[0] = before + newLines[0]
	endCol := utf8.RuneCountInString(newLines[n-1])
	newLines[n-1] += after

	d.lines = splice(d.lines, p.Line-1, 1, newLines...)
	d.prompts = Reconcile(d.prompts, n-1, p.Line+1)
	return addr.Pos{Line: p.Line + n - 1, Col: endCol}
}

// Delete removes the text between two positions. Lines merged away by the
// deletion take their prompt markers with them.
func (d *Document) Delete(from, to addr.Pos) {
	from, to = addr.Order(d.Clamp(from), d.Clamp(to))
	first, last := d.lines[from.Line-1], d.lines[to.Line-1]
	merged := first[:byteOffset(first, from.Col)] + last[byteOffset(last, to.Col):]
	removed := to.Line - from.Line
	d.lines = splice(d.lines, from.Line-1, removed+1, merged)
	d.prompts = Reconcile(d.prompts, -removed, from.Line+1)
}

// Replace deletes the text between two positions and inserts text in its
// place, returning the end of the inserted text.
func (d *Document) Replace(from, to addr.Pos, text string) addr.Pos {
	from, to = addr.Order(d.Clamp(from), d.Clamp(to))
	d.Delete(from, to)
	return d.Insert(from, text)
}

// MarkPrompt makes line i the start of an input region.
func (d *Document) MarkPrompt(i int) { d.prompts[i-1] = true }

// LastPrompt returns the last line that starts an input region.
func (d *Document) LastPrompt() int {
	for i := len(d.prompts); i > 1; i-- {
		if d.prompts[i-1] {
			return i
		}
	}
	return 1
}

// Transcript returns a copy of all lines of text.
func (d *Document) Transcript() []string {
	return append([]string(nil), d.lines...)
}

// PromptColumn renders the prompt pane: glyph on lines that start an input
// region, the empty string elsewhere.
func (d *Document) PromptColumn(glyph string) []string {
	col := make([]string, len(d.prompts))
	for i, p := range d.prompts {
		if p {
			col[i] = glyph
		}
	}
	return col
}

// Check verifies the invariants of the document.
func (d *Document) Check() error {
	if len(d.lines) == 0 {
		return fmt.Errorf("document has no lines")
	}
	if len(d.lines) != len(d.prompts) {
		return fmt.Errorf("prompt column has %d lines, transcript has %d",
			len(d.prompts), len(d.lines))
	}
	for i, l := range d.lines {
		if strings.Contains(l, "\n") {
			return fmt.Errorf("line %d contains a newline", i+1)
		}
	}
	return nil
}

// Reconcile adjusts a prompt column after the transcript changed by delta
// lines at the 1-based line at. A positive delta inserts that many blank
// markers before line at; a negative delta removes -delta markers starting at
// line at. Markers outside the changed range are preserved.
func Reconcile(markers []bool, delta, at int) []bool {
	switch {
	case delta > 0:
		return splice(markers, at-1, 0, make([]bool, delta)...)
	case delta < 0:
		return splice(markers, at-1, -delta)
	}
	return markers
}

// splice removes n elements of s starting at i and inserts vs in their place.
func splice[T any](s []T, i, n int, vs ...T) []T {
	out := make([]T, 0, len(s)-n+len(vs))
	out = append(out, s[:i]...)
	out = append(out, vs...)
	return append(out, s[i+n:]...)
}

// byteOffset converts a rune column to a byte offset into s.
func byteOffset(s string, col int) int {
	for i := range s {
		if col == 0 {
			return i
		}
		col--
	}
	return len(s)
}
