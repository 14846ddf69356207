package cli

import (
	"fmt"
	"os"

	"github.com/panerepl/panerepl/pkg/cli/term"
	"github.com/panerepl/panerepl/pkg/sys"
)

// TTY is the terminal dependency of the App.
type TTY interface {
	// Setup prepares the terminal for the App and returns a function that
	// undoes it. Only errors that make the terminal unusable are returned.
	// Setup must be called before any other method.
	Setup() (restore func(), err error)

	// ReadEvent reads a single event from the terminal.
	ReadEvent() (term.Event, error)
	// CloseReader aborts any pending ReadEvent call, which then returns
	// term.ErrStopped.
	CloseReader()

	// NotifySignals starts relaying signals and returns a channel on which
	// they are delivered.
	NotifySignals() <-chan os.Signal
	// StopSignals stops the relaying of signals and closes the channel
	// returned by NotifySignals.
	StopSignals()

	// Size returns the height and width of the terminal.
	Size() (h, w int)

	// UpdateBuffer draws buf to the terminal.
	UpdateBuffer(buf *term.Buffer, full bool) error
	// ResetBuffer forgets what has been drawn.
	ResetBuffer()
	// SetClipboard puts text on the clipboard of the terminal.
	SetClipboard(text string) error
}

type aTTY struct {
	in, out *os.File
	r       term.Reader
	w       term.Writer

	sigCh    chan os.Signal
	stopSigs func()
}

// NewTTY returns a TTY that reads from in and draws to out.
func NewTTY(in, out *os.File) TTY {
	return &aTTY{in: in, out: out, w: term.NewWriter(out)}
}

func (t *aTTY) Setup() (func(), error) {
	restore, err := term.Setup(t.in, t.out)
	if err != nil {
		return func() {}, err
	}
	t.r, err = term.NewReader(t.in)
	if err != nil {
		restore()
		return func() {}, err
	}
	return func() {
		if err := restore(); err != nil {
			fmt.Fprintln(t.out, "failed to restore terminal properties:", err)
		}
	}, nil
}

func (t *aTTY) ReadEvent() (term.Event, error) { return t.r.ReadEvent() }

func (t *aTTY) CloseReader() {
	if t.r != nil {
		t.r.Close()
	}
}

func (t *aTTY) NotifySignals() <-chan os.Signal {
	t.sigCh, t.stopSigs = sys.NotifySignals()
	return t.sigCh
}

func (t *aTTY) StopSignals() {
	t.stopSigs()
	close(t.sigCh)
	t.sigCh = nil
}

func (t *aTTY) Size() (h, w int) { return sys.WinSize(t.out) }

func (t *aTTY) UpdateBuffer(buf *term.Buffer, full bool) error {
	return t.w.UpdateBuffer(buf, full)
}

func (t *aTTY) ResetBuffer() { t.w.ResetBuffer() }

func (t *aTTY) SetClipboard(text string) error { return t.w.SetClipboard(text) }
