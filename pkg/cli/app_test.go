package cli_test

import (
	"errors"
	"reflect"
	"syscall"
	"testing"
	"time"

	"github.com/panerepl/panerepl/pkg/addr"
	. "github.com/panerepl/panerepl/pkg/cli"
	. "github.com/panerepl/panerepl/pkg/cli/clitest"
	"github.com/panerepl/panerepl/pkg/cli/term"
	"github.com/panerepl/panerepl/pkg/config"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/session"
	"github.com/panerepl/panerepl/pkg/testutil"
	"github.com/panerepl/panerepl/pkg/ui"
)

type fixture struct {
	s     *session.Session
	tty   TTYCtrl
	errCh chan error
}

func setup(t *testing.T, cfg *config.Config, fns ...func(TTYCtrl)) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	s, err := session.New(session.Config{Glyph: cfg.Prompt})
	if err != nil {
		t.Fatal(err)
	}
	tty, ctrl := NewFakeTTY()
	for _, fn := range fns {
		fn(ctrl)
	}
	app := NewApp(AppSpec{TTY: tty, Config: cfg, Session: s})
	f := &fixture{s, ctrl, make(chan error, 1)}
	go func() { f.errCh <- app.Run() }()
	return f
}

// typeText injects one key event per rune.
func (f *fixture) typeText(text string) {
	for _, r := range text {
		f.tty.Inject(term.K(r))
	}
}

// quit presses the quit key and waits for Run to return.
func (f *fixture) quit(t *testing.T) error {
	t.Helper()
	f.tty.Inject(term.K('Q', ui.Ctrl))
	return f.wait(t)
}

func (f *fixture) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-f.errCh:
		return err
	case <-time.After(testutil.Scaled(2 * time.Second)):
		t.Fatal("timed out waiting for Run to return")
		return nil
	}
}

func TestApp_SetupErrorIsReturned(t *testing.T) {
	errSetup := errors.New("a fake error")
	f := setup(t, nil, func(tty TTYCtrl) { tty.SetSetup(func() {}, errSetup) })
	if err := f.wait(t); err != errSetup {
		t.Errorf("Run -> %v, want %v", err, errSetup)
	}
}

func TestApp_RestoresTTYBeforeReturning(t *testing.T) {
	restoreCalled := 0
	f := setup(t, nil, func(tty TTYCtrl) { tty.SetSetup(func() { restoreCalled++ }, nil) })
	if err := f.quit(t); err != nil {
		t.Errorf("Run -> %v, want nil", err)
	}
	if restoreCalled != 1 {
		t.Errorf("restore called %d times, want once", restoreCalled)
	}
}

func TestApp_TypeAndExecute(t *testing.T) {
	f := setup(t, nil)
	f.typeText("1+1")
	f.tty.Inject(term.K(ui.F5))
	f.typeText("2*3")
	f.tty.Inject(term.K(ui.Enter, ui.Shift))
	f.quit(t)

	want := []string{"1+1", "2", "2*3", "6", ""}
	if got := f.s.Transcript(); !reflect.DeepEqual(got, want) {
		t.Errorf("transcript = %q, want %q", got, want)
	}
	if f.s.PromptLine() != 5 {
		t.Errorf("prompt line = %d, want 5", f.s.PromptLine())
	}
}

func TestApp_EnterIsSoftNewline(t *testing.T) {
	f := setup(t, nil)
	f.typeText("a")
	f.tty.Inject(term.K(ui.Enter))
	f.typeText("b")
	f.quit(t)
	if got := f.s.Input(); got != "a\nb" {
		t.Errorf("input = %q, want %q", got, "a\nb")
	}
}

func TestApp_CustomBinding(t *testing.T) {
	cfg := config.Default()
	cfg.Bindings[ui.K(ui.Enter)] = config.Execute
	f := setup(t, cfg)
	f.typeText("7")
	f.tty.Inject(term.K(ui.Enter))
	f.quit(t)
	if got := f.s.Transcript(); !reflect.DeepEqual(got, []string{"7", "7", ""}) {
		t.Errorf("transcript = %q", got)
	}
}

func TestApp_BracketedPaste(t *testing.T) {
	f := setup(t, nil)
	f.tty.Inject(term.PasteSetting(true))
	f.typeText("x")
	f.tty.Inject(term.K(ui.Enter))
	f.typeText("y")
	f.tty.Inject(term.PasteSetting(false))
	f.quit(t)
	if got := f.s.Input(); got != "x\ny" {
		t.Errorf("input = %q, want %q", got, "x\ny")
	}
	if f.s.Cursor() != addr.P(2, 1) {
		t.Errorf("cursor = %v, want 2.1", f.s.Cursor())
	}
}

func TestApp_ExitIsReturned(t *testing.T) {
	f := setup(t, nil)
	f.typeText("exit(3)")
	f.tty.Inject(term.K(ui.F5))
	err := f.wait(t)
	var exitErr *eval.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 3 {
		t.Errorf("Run -> %v, want exit status 3", err)
	}
}

func TestApp_QuitsOnSIGHUP(t *testing.T) {
	f := setup(t, nil)
	f.tty.InjectSignal(syscall.SIGHUP)
	if err := f.wait(t); err != nil {
		t.Errorf("Run -> %v, want nil", err)
	}
}

func TestApp_CopySendsOSC52(t *testing.T) {
	cfg := config.Default()
	cfg.OSC52 = true
	f := setup(t, cfg)
	f.typeText("ab")
	f.tty.Inject(term.K('`', ui.Ctrl), term.K(ui.Home), term.K('C', ui.Ctrl))
	f.quit(t)
	if got := f.tty.Clipboard(); !reflect.DeepEqual(got, []string{"ab"}) {
		t.Errorf("clipboard requests = %q, want [ab]", got)
	}
	if f.s.Clipboard() != "ab" {
		t.Errorf("session clipboard = %q", f.s.Clipboard())
	}
}

func TestApp_NoOSC52ByDefault(t *testing.T) {
	f := setup(t, nil)
	f.typeText("ab")
	f.tty.Inject(term.K('`', ui.Ctrl), term.K(ui.Home), term.K('C', ui.Ctrl))
	f.quit(t)
	if got := f.tty.Clipboard(); len(got) != 0 {
		t.Errorf("clipboard requests = %q, want none", got)
	}
}

func TestApp_WheelScrollsBothPanes(t *testing.T) {
	f := setup(t, nil, func(tty TTYCtrl) { tty.SetSize(3, 40) })
	for i := 0; i < 3; i++ {
		f.typeText("1")
		f.tty.Inject(term.K(ui.F5))
	}
	f.tty.Inject(term.MouseEvent{Down: true, Button: term.WheelUp})
	f.quit(t)
	// Seven lines, the last three of which were visible before scrolling.
	if top := f.s.TranscriptView().Top(); top != 4 {
		t.Errorf("transcript top = %d, want 4", top)
	}
	if top := f.s.PromptView().Top(); top != 4 {
		t.Errorf("prompt top = %d, want 4", top)
	}
}

func TestApp_PageKeys(t *testing.T) {
	f := setup(t, nil, func(tty TTYCtrl) { tty.SetSize(3, 40) })
	for i := 0; i < 3; i++ {
		f.typeText("1")
		f.tty.Inject(term.K(ui.F5))
	}
	f.tty.Inject(term.K(ui.PageUp))
	f.quit(t)
	if top := f.s.TranscriptView().Top(); top != 3 {
		t.Errorf("top = %d, want 3", top)
	}
}

func TestApp_Click(t *testing.T) {
	f := setup(t, nil)
	f.typeText("hello")
	// The prompt pane is four columns wide; clicks on it are ignored.
	f.tty.Inject(term.MouseEvent{Pos: term.Pos{Line: 0, Col: 1}, Down: true})
	f.quit(t)
	if f.s.Cursor() != addr.P(1, 5) {
		t.Errorf("cursor = %v after clicking the prompt pane, want 1.5", f.s.Cursor())
	}

	f = setup(t, nil)
	f.typeText("hello")
	f.tty.Inject(term.MouseEvent{Pos: term.Pos{Line: 0, Col: 6}, Down: true})
	f.quit(t)
	if f.s.Cursor() != addr.P(1, 2) {
		t.Errorf("cursor = %v, want 1.2", f.s.Cursor())
	}
}
