// Package cli implements the full-screen terminal frontend of the console.
//
// The App reads terminal events, maps them to session events through the
// key bindings of the configuration, and draws the two panes after every
// batch of events.
package cli

import (
	"errors"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/panerepl/panerepl/pkg/cli/term"
	"github.com/panerepl/panerepl/pkg/config"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/logutil"
	"github.com/panerepl/panerepl/pkg/session"
	"github.com/panerepl/panerepl/pkg/sys"
	"github.com/panerepl/panerepl/pkg/ui"
)

var logger = logutil.GetLogger("[cli] ")

// Size used when the terminal does not report one.
const (
	defaultHeight = 24
	defaultWidth  = 80
)

// AppSpec specifies the dependencies of an App.
type AppSpec struct {
	// Defaults to a TTY on stdin and stdout.
	TTY TTY
	// Defaults to config.Default().
	Config *config.Config
	// Required.
	Session *session.Session
}

// App runs a Session on a terminal.
type App struct {
	loop *loop
	tty  TTY
	cfg  *config.Config
	s    *session.Session

	height int
	lo     layout

	// Whether a bracketed paste is in progress, and the text pasted so far.
	pasting bool
	pasted  strings.Builder
}

// NewApp creates a new App.
func NewApp(spec AppSpec) *App {
	if spec.TTY == nil {
		spec.TTY = NewTTY(os.Stdin, os.Stdout)
	}
	if spec.Config == nil {
		spec.Config = config.Default()
	}
	a := &App{loop: newLoop(), tty: spec.TTY, cfg: spec.Config, s: spec.Session}
	a.loop.HandleCb(a.handle)
	a.loop.RedrawCb(a.redraw)
	return a
}

// readError is an unrecoverable error from reading the terminal.
type readError struct{ err error }

// Run runs the App until a quit key is pressed, code asks to exit, the
// terminal goes away or reading it fails. When code asks to exit, the
// *eval.ExitError is returned.
func (a *App) Run() (err error) {
	restore, err := a.tty.Setup()
	if err != nil {
		return err
	}
	defer restore()
	defer func() {
		if r := recover(); r != nil {
			logger.Printf("panic: %v\n%s", r, sys.DumpStack())
			panic(r)
		}
	}()

	a.resize()

	var wg sync.WaitGroup
	defer wg.Wait()

	sigCh := a.tty.NotifySignals()
	defer a.tty.StopSignals()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for sig := range sigCh {
			if !a.loop.Input(sig) {
				return
			}
		}
	}()

	defer a.tty.CloseReader()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			ev, err := a.tty.ReadEvent()
			switch {
			case err == nil:
				if !a.loop.Input(ev) {
					return
				}
			case err == term.ErrStopped:
				return
			case term.IsReadErrorRecoverable(err):
				logger.Println("recoverable read error:", err)
			default:
				a.loop.Input(readError{err})
				return
			}
		}
	}()

	return a.loop.Run()
}

func (a *App) handle(e event) {
	switch e := e.(type) {
	case os.Signal:
		switch e {
		case sys.SIGWINCH:
			a.resize()
			a.loop.Redraw(true)
		case syscall.SIGHUP, syscall.SIGTERM:
			logger.Println("quitting on signal", e)
			a.loop.Return(nil)
		}
	case readError:
		a.loop.Return(e.err)
	case term.PasteSetting:
		a.handlePasteSetting(bool(e))
	case term.KeyEvent:
		if a.pasting {
			a.collectPasted(ui.Key(e))
			return
		}
		a.handleKey(ui.Key(e))
	case term.MouseEvent:
		a.handleMouse(e)
	}
}

func (a *App) handlePasteSetting(start bool) {
	if start {
		a.pasting = true
		a.pasted.Reset()
		return
	}
	a.pasting = false
	if a.pasted.Len() > 0 {
		a.dispatch(session.Event{Kind: session.Paste, Text: a.pasted.String()})
	}
}

func (a *App) collectPasted(k ui.Key) {
	switch {
	case k == ui.K(ui.Enter):
		a.pasted.WriteByte('\n')
	case k.Mod == 0 && k.Rune >= 0:
		a.pasted.WriteRune(k.Rune)
	default:
		logger.Println("dropping non-text key in paste:", k)
	}
}

func (a *App) handleKey(k ui.Key) {
	cmd, ok := a.cfg.Bindings[k]
	if !ok {
		if !a.dispatch(session.Event{Kind: session.KeyPress, Key: k}) {
			logger.Println("unbound key:", k)
		}
		return
	}
	switch cmd {
	case config.Execute:
		a.dispatch(session.Event{Kind: session.Execute})
	case config.SoftNewline:
		a.dispatch(session.Event{Kind: session.SoftNewline})
	case config.Copy:
		a.dispatch(session.Event{Kind: session.Copy})
	case config.Cut:
		a.dispatch(session.Event{Kind: session.Cut})
	case config.Paste:
		a.dispatch(session.Event{Kind: session.Paste})
	case config.SetMark:
		a.dispatch(session.Event{Kind: session.SetMark})
	case config.ScrollUp:
		a.scroll(-a.cfg.ScrollStep)
	case config.ScrollDown:
		a.scroll(a.cfg.ScrollStep)
	case config.PageUp:
		a.scroll(-max(a.height-1, 1))
	case config.PageDown:
		a.scroll(max(a.height-1, 1))
	case config.Quit:
		a.loop.Return(nil)
	}
}

func (a *App) handleMouse(e term.MouseEvent) {
	switch e.Button {
	case term.WheelUp:
		a.scroll(-a.cfg.ScrollStep)
	case term.WheelDown:
		a.scroll(a.cfg.ScrollStep)
	case 0:
		if e.Down {
			pane, p := locate(a.s, a.lo, e.Pos)
			a.dispatch(session.Event{Kind: session.Click, Pane: pane, Pos: p})
		}
	}
}

func (a *App) scroll(n int) {
	a.dispatch(session.Event{Kind: session.Scroll, Lines: n})
}

// dispatch gives an event to the session and reports whether it was handled.
func (a *App) dispatch(e session.Event) bool {
	r, err := a.s.Handle(e)
	if err != nil {
		var exitErr *eval.ExitError
		if errors.As(err, &exitErr) {
			a.loop.Return(err)
		} else {
			logger.Printf("handling %v: %v", e.Kind, err)
		}
	}
	if a.cfg.OSC52 {
		for _, eff := range r.Effects {
			if eff.Kind == session.SetClipboard {
				if err := a.tty.SetClipboard(eff.Text); err != nil {
					logger.Println("setting clipboard:", err)
				}
			}
		}
	}
	return r.Handled
}

func (a *App) resize() {
	h, w := a.tty.Size()
	if h <= 0 || w <= 0 {
		h, w = defaultHeight, defaultWidth
	}
	a.height = h
	a.lo = newLayout(a.cfg.PromptWidth(), w)
	a.s.SetHeight(h)
}

func (a *App) redraw(flag redrawFlag) {
	if flag&finalRedraw != 0 {
		a.tty.ResetBuffer()
		return
	}
	a.lo.follow(a.s)
	buf := render(a.s, a.lo, a.height)
	if err := a.tty.UpdateBuffer(buf, flag&fullRedraw != 0); err != nil {
		logger.Println("updating screen:", err)
	}
}
