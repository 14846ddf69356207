// Package histutil provides the command history of a session and the
// navigator that recalls it into the live input region.
package histutil

import "errors"

// ErrEndOfHistory is returned when accessing a history entry that does not
// exist.
var ErrEndOfHistory = errors.New("end of history")

// Cmd is an entry in the command history.
type Cmd struct {
	Text string
	Seq  int
}

// Store is a store of command history. Entries are immutable once added.
type Store interface {
	// AddCmd appends a command and returns its sequence number.
	AddCmd(text string) (int, error)
	// AllCmds returns all commands, oldest first.
	AllCmds() ([]Cmd, error)
	// Cmd returns the command with the given sequence number.
	Cmd(seq int) (Cmd, error)
}

// NewMemStore returns a Store that keeps command history in memory. Sequence
// numbers start from 0.
func NewMemStore(texts ...string) Store {
	cmds := make([]Cmd, len(texts))
	for i, text := range texts {
		cmds[i] = Cmd{Text: text, Seq: i}
	}
	return &memStore{cmds}
}

type memStore struct{ cmds []Cmd }

func (s *memStore) AllCmds() ([]Cmd, error) {
	return append([]Cmd(nil), s.cmds...), nil
}

func (s *memStore) AddCmd(text string) (int, error) {
	seq := len(s.cmds)
	s.cmds = append(s.cmds, Cmd{Text: text, Seq: seq})
	return seq, nil
}

func (s *memStore) Cmd(seq int) (Cmd, error) {
	if seq < 0 || seq >= len(s.cmds) {
		return Cmd{}, ErrEndOfHistory
	}
	return s.cmds[seq], nil
}
