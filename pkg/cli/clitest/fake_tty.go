// Package clitest provides a fake terminal for testing the cli package.
package clitest

import (
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/panerepl/panerepl/pkg/cli"
	"github.com/panerepl/panerepl/pkg/cli/term"
	"github.com/panerepl/panerepl/pkg/testutil"
)

const (
	// Maximum number of buffer updates FakeTTY expect to see.
	fakeTTYBufferUpdates = 4096
	// Maximum number of events FakeTTY produces.
	fakeTTYEvents = 4096
	// Maximum number of signals FakeTTY produces.
	fakeTTYSignals = 4096
)

// Initial size of fake TTY.
const (
	FakeTTYHeight = 10
	FakeTTYWidth  = 40
)

// An implementation of the cli.TTY interface that is useful in tests.
type fakeTTY struct {
	setup func() (func(), error)
	// Channel that ReadEvent reads from. Can be used to inject events.
	eventCh       chan term.Event
	eventChClosed bool
	// Guards writing and closing eventCh.
	eventChMutex sync.Mutex
	// Channel for publishing buffer updates.
	bufCh chan *term.Buffer
	// Guards bufs and clips.
	mutex sync.RWMutex
	// Records buffer updates and clipboard requests.
	bufs  []*term.Buffer
	clips []string
	// Channel that NotifySignals returns. Can be used to inject signals.
	sigCh chan os.Signal

	sizeMutex     sync.RWMutex
	height, width int
}

// NewFakeTTY creates a new FakeTTY and a handle for controlling it. The
// initial size of the terminal is FakeTTYHeight and FakeTTYWidth.
func NewFakeTTY() (cli.TTY, TTYCtrl) {
	tty := &fakeTTY{
		eventCh: make(chan term.Event, fakeTTYEvents),
		sigCh:   make(chan os.Signal, fakeTTYSignals),
		bufCh:   make(chan *term.Buffer, fakeTTYBufferUpdates),
		height:  FakeTTYHeight, width: FakeTTYWidth,
	}
	return tty, TTYCtrl{tty}
}

// Delegates to the setup function specified using the SetSetup method of
// TTYCtrl, or returns a nop function and a nil error.
func (t *fakeTTY) Setup() (func(), error) {
	if t.setup == nil {
		return func() {}, nil
	}
	return t.setup()
}

func (t *fakeTTY) Size() (h, w int) {
	t.sizeMutex.RLock()
	defer t.sizeMutex.RUnlock()
	return t.height, t.width
}

// Returns the next injected event, or term.ErrStopped after CloseReader.
func (t *fakeTTY) ReadEvent() (term.Event, error) {
	ev, ok := <-t.eventCh
	if !ok {
		return nil, term.ErrStopped
	}
	return ev, nil
}

func (t *fakeTTY) CloseReader() {
	t.eventChMutex.Lock()
	defer t.eventChMutex.Unlock()
	if !t.eventChClosed {
		close(t.eventCh)
		t.eventChClosed = true
	}
}

func (t *fakeTTY) NotifySignals() <-chan os.Signal { return t.sigCh }

func (t *fakeTTY) StopSignals() { close(t.sigCh) }

// Records a nil buffer.
func (t *fakeTTY) ResetBuffer() { t.recordBuf(nil) }

func (t *fakeTTY) UpdateBuffer(buf *term.Buffer, _ bool) error {
	t.recordBuf(buf)
	return nil
}

func (t *fakeTTY) SetClipboard(text string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.clips = append(t.clips, text)
	return nil
}

func (t *fakeTTY) recordBuf(buf *term.Buffer) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.bufs = append(t.bufs, buf)
	t.bufCh <- buf
}

// TTYCtrl is a handle for controlling a fake terminal.
type TTYCtrl struct{ *fakeTTY }

// GetTTYCtrl takes a TTY and returns a TTYCtrl and true, if the TTY is a fake
// terminal. Otherwise it returns an invalid TTYCtrl and false.
func GetTTYCtrl(t cli.TTY) (TTYCtrl, bool) {
	fake, ok := t.(*fakeTTY)
	return TTYCtrl{fake}, ok
}

// SetSetup sets the return values of the Setup method of the fake terminal.
func (t TTYCtrl) SetSetup(restore func(), err error) {
	t.setup = func() (func(), error) { return restore, err }
}

// SetSize sets the size of the fake terminal.
func (t TTYCtrl) SetSize(h, w int) {
	t.sizeMutex.Lock()
	defer t.sizeMutex.Unlock()
	t.height, t.width = h, w
}

// Inject injects events to the fake terminal.
func (t TTYCtrl) Inject(events ...term.Event) {
	t.eventChMutex.Lock()
	defer t.eventChMutex.Unlock()
	if t.eventChClosed {
		return
	}
	for _, event := range events {
		t.eventCh <- event
	}
}

// InjectSignal injects signals.
func (t TTYCtrl) InjectSignal(sigs ...os.Signal) {
	for _, sig := range sigs {
		t.sigCh <- sig
	}
}

// Clipboard returns the texts sent to the clipboard of the terminal.
func (t TTYCtrl) Clipboard() []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append([]string(nil), t.clips...)
}

// BufferHistory returns all buffers that have been drawn.
func (t TTYCtrl) BufferHistory() []*term.Buffer {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return append([]*term.Buffer(nil), t.bufs...)
}

// LastBuffer returns the last buffer that has been drawn.
func (t TTYCtrl) LastBuffer() *term.Buffer {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	if len(t.bufs) == 0 {
		return nil
	}
	return t.bufs[len(t.bufs)-1]
}

// TestBuffer verifies that a buffer will be drawn within a second, and aborts
// the test if it isn't.
func (t TTYCtrl) TestBuffer(tt *testing.T, b *term.Buffer) {
	tt.Helper()
	if !testBuffer(b, t.bufCh) {
		tt.Logf("wanted buffer not shown:\n%s", b.TTYString())
		tt.Logf("last buffer:\n%s", t.LastBuffer().TTYString())
		tt.FailNow()
	}
}

func testBuffer(want *term.Buffer, ch <-chan *term.Buffer) bool {
	timeout := time.After(testutil.Scaled(time.Second))
	for {
		select {
		case buf := <-ch:
			if reflect.DeepEqual(buf, want) {
				return true
			}
		case <-timeout:
			return false
		}
	}
}
