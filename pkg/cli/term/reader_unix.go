//go:build unix

package term

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/panerepl/panerepl/pkg/sys"
)

// reader decodes events from a terminal file. Reads can be interrupted by
// writing to a pipe that is polled together with the file.
type reader struct {
	file *os.File
	// Polled together with file. A byte on it interrupts the pending read.
	stopR, stopW *os.File
	// Held during a read, and protects stopped.
	reading sync.Mutex
	stopped bool
}

func newReader(f *os.File) (*reader, error) {
	stopR, stopW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	return &reader{file: f, stopR: stopR, stopW: stopW}, nil
}

func (rd *reader) ReadEvent() (Event, error) {
	return decodeEvent(rd)
}

// Close interrupts a pending ReadEvent and waits for it to return. It does
// not close the terminal file.
func (rd *reader) Close() {
	rd.stopW.Write([]byte{0})
	rd.reading.Lock()
	defer rd.reading.Unlock()
	if !rd.stopped {
		rd.stopped = true
		rd.stopR.Close()
		rd.stopW.Close()
	}
}

func (rd *reader) ReadByteWithTimeout(timeout time.Duration) (byte, error) {
	rd.reading.Lock()
	defer rd.reading.Unlock()
	if rd.stopped {
		return 0, ErrStopped
	}
	ready, err := rd.wait(timeout)
	switch {
	case err != nil:
		return 0, err
	case ready[1]:
		var b [1]byte
		rd.stopR.Read(b[:])
		return 0, ErrStopped
	case !ready[0]:
		return 0, errTimeout
	}
	var b [1]byte
	n, err := rd.file.Read(b[:])
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, io.ErrNoProgress
	}
	return b[0], nil
}

// Waits until the file or the stop pipe is readable, retrying when
// interrupted by a signal such as SIGWINCH.
func (rd *reader) wait(timeout time.Duration) ([]bool, error) {
	for {
		ready, err := sys.WaitForRead(timeout, rd.file, rd.stopR)
		if !errors.Is(err, syscall.EINTR) {
			return ready, err
		}
	}
}
