package term

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/panerepl/panerepl/pkg/logutil"
)

var logger = logutil.GetLogger("[cli/term] ")

// Writer represents the output to a terminal.
type Writer interface {
	// Buffer returns the current buffer.
	Buffer() *Buffer
	// ResetBuffer resets the current buffer.
	ResetBuffer()
	// UpdateBuffer updates the terminal display to reflect current buffer.
	UpdateBuffer(buf *Buffer, fullRefresh bool) error
	// SetClipboard asks the terminal to put text on the system clipboard,
	// using the OSC 52 sequence.
	SetClipboard(text string) error
}

// writer renders a full-screen UI. The buffer always starts at the top left
// corner of the screen.
type writer struct {
	file   io.Writer
	curBuf *Buffer
}

// NewWriter returns a Writer that writes VT100 sequences to the given io.Writer.
func NewWriter(f io.Writer) Writer {
	return &writer{f, &Buffer{}}
}

func (w *writer) Buffer() *Buffer {
	return w.curBuf
}

func (w *writer) ResetBuffer() {
	w.curBuf = &Buffer{}
}

// cursorTo returns the escape sequence that moves the cursor to the given
// 0-based position.
func cursorTo(p Pos) string {
	return fmt.Sprintf("\033[%d;%dH", p.Line+1, p.Col+1)
}

const (
	hideCursor = "\033[?25l"
	showCursor = "\033[?25h"
)

// UpdateBuffer updates the terminal display to reflect current buffer.
func (w *writer) UpdateBuffer(buf *Buffer, fullRefresh bool) error {
	if buf.Width != w.curBuf.Width && w.curBuf.Lines != nil {
		// Delta rendering is meaningless when the width has changed.
		fullRefresh = true
	}

	// Store all the output write in a buffer, so that we only write to the
	// terminal once.
	output := new(bytes.Buffer)

	// Hide cursor at the beginning to minimize flickering.
	output.WriteString(hideCursor)
	output.WriteString("\033[H")
	if fullRefresh {
		output.WriteString("\033[J")
	}

	// style of last written cell.
	style := ""

	switchStyle := func(newstyle string) {
		if newstyle != style {
			fmt.Fprintf(output, "\033[0;%sm", newstyle)
			style = newstyle
		}
	}

	writeCells := func(cs []Cell) {
		for _, c := range cs {
			switchStyle(c.Style)
			output.WriteString(c.Text)
		}
	}

	if fullRefresh {
		logger.Printf("full redraw of %d lines", len(buf.Lines))
	}

	for i, line := range buf.Lines {
		if i > 0 {
			// Output processing is off in raw mode, so \n alone does not
			// return to the leftmost column.
			output.WriteString("\r\n")
		}
		if fullRefresh || i >= len(w.curBuf.Lines) {
			writeCells(line)
			continue
		}
		eq, j := compareCells(line, w.curBuf.Lines[i])
		if eq {
			continue
		}
		// This line has changed, and j is the first differing cell. Move to its
		// corresponding column.
		if firstCol := cellsWidth(line[:j]); firstCol != 0 {
			fmt.Fprintf(output, "\033[%dC", firstCol)
		}
		// Erase the rest of the line; this is not necessary if the old version
		// of the line is a prefix of the current version of the line.
		if j < len(w.curBuf.Lines[i]) {
			switchStyle("")
			output.WriteString("\033[K")
		}
		writeCells(line[j:])
	}
	if !fullRefresh && len(w.curBuf.Lines) > len(buf.Lines) {
		// The old buffer is higher; erase the remaining old content.
		switchStyle("")
		output.WriteString("\r\n\033[J")
	}
	switchStyle("")
	output.WriteString(cursorTo(buf.Dot))
	output.WriteString(showCursor)

	_, err := w.file.Write(output.Bytes())
	if err != nil {
		return err
	}

	w.curBuf = buf
	return nil
}

func (w *writer) SetClipboard(text string) error {
	_, err := fmt.Fprintf(w.file, "\033]52;c;%s\a",
		base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}
