//go:build unix

package cli_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"

	. "github.com/panerepl/panerepl/pkg/cli"
	"github.com/panerepl/panerepl/pkg/session"
	"github.com/panerepl/panerepl/pkg/testutil"
)

// syncBuffer collects what the console draws.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestApp_OnPseudoTerminal(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptmx.Close()
	defer tty.Close()
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 10, Cols: 40}); err != nil {
		t.Fatal(err)
	}

	var out syncBuffer
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := ptmx.Read(buf)
			out.Write(buf[:n])
			if err != nil {
				return
			}
		}
	}()

	s, err := session.New(session.Config{})
	if err != nil {
		t.Fatal(err)
	}
	app := NewApp(AppSpec{TTY: NewTTY(tty, tty), Session: s})
	errCh := make(chan error, 1)
	go func() { errCh <- app.Run() }()

	waitFor := func(what, text string) {
		t.Helper()
		deadline := time.Now().Add(testutil.Scaled(5 * time.Second))
		for !strings.Contains(out.String(), text) {
			if time.Now().After(deadline) {
				t.Fatalf("%s not drawn; output so far: %q", what, out.String())
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	// Typing before the terminal is in raw mode would be line-buffered.
	waitFor("alternate screen", "\033[?1049h")

	// F5 executes.
	ptmx.WriteString(`"zz" + "top"`)
	ptmx.WriteString("\033[15~")

	waitFor("result", `"zztop"`)

	// Ctrl-Q quits.
	ptmx.WriteString("\x11")
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run -> %v, want nil", err)
		}
	case <-time.After(testutil.Scaled(5 * time.Second)):
		t.Fatal("Run did not return")
	}

	want := []string{`"zz" + "top"`, `"zztop"`, ""}
	got := s.Transcript()
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}
