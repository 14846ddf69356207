package sys

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// MakeRaw puts the terminal referenced by file into raw mode, and returns a
// function that restores the previous state.
func MakeRaw(file *os.File) (restore func() error, err error) {
	fd := int(file.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return func() error { return term.Restore(fd, state) }, nil
}
