// Package sys provides the operating system facilities needed by the terminal
// frontend.
package sys

import (
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
)

const sigsChanBufferSize = 32

// NotifySignals returns a channel on which the signals the frontend reacts to
// get delivered, and a function that stops the delivery.
func NotifySignals() (chan os.Signal, func()) { return notifySignals() }

// SIGWINCH is the window size change signal.
const SIGWINCH = sigWINCH

// WinSize queries the size of the terminal referenced by the given file.
func WinSize(file *os.File) (row, col int) { return winSize(file) }

// IsATTY determines whether the given file is a terminal.
func IsATTY(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

const dumpStackBufSizeInit = 8192

// DumpStack returns the stack traces of all goroutines.
func DumpStack() string {
	buf := make([]byte, dumpStackBufSizeInit)
	for {
		n := runtime.Stack(buf, true)
		if n < cap(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, cap(buf)*2)
	}
}
