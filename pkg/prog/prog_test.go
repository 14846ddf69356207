package prog_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/panerepl/panerepl/pkg/logutil"
	. "github.com/panerepl/panerepl/pkg/prog"
	"github.com/panerepl/panerepl/pkg/prog/progtest"
)

var (
	Test         = progtest.Test
	ThatPanerepl = progtest.ThatPanerepl
)

func TestCommonFlagHandling(t *testing.T) {
	Test(t, testProgram{},
		ThatPanerepl("-bad-flag").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -bad-flag\nUsage:"),
		// -h is treated as a bad flag
		ThatPanerepl("-h").
			ExitsWith(2).
			WritesStderrContaining("flag provided but not defined: -h\nUsage:"),

		ThatPanerepl("-help").
			WritesStdoutContaining("Usage: panerepl [flags]"),
	)
}

func TestLogFlag(t *testing.T) {
	t.Cleanup(func() { logutil.SetOutput(io.Discard) })
	logPath := filepath.Join(t.TempDir(), "log")

	Test(t, testProgram{},
		ThatPanerepl("-log", logPath).DoesNothing(),
		ThatPanerepl("-log", filepath.Join(logPath, "not-a-dir", "log")).
			WritesStderrContaining("not-a-dir"),
	)

	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("log file does not exist: %v", err)
	}
}

func TestSharedFlagsRegisteredOnce(t *testing.T) {
	// Both subprograms ask for -json; registering it twice would panic.
	Test(t,
		Composite(&jsonProgram{}, &jsonProgram{}),
		ThatPanerepl("-json").WritesStdout("json"),
	)
}

func TestNoSuitableSubprogram(t *testing.T) {
	Test(t, testProgram{notSuitable: true},
		ThatPanerepl().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{writeOut: "program 2"}),
		ThatPanerepl().WritesStdout("program 2"),
	)
}

func TestComposite_NoSuitableSubprogram(t *testing.T) {
	Test(t,
		Composite(testProgram{notSuitable: true}, testProgram{notSuitable: true}),
		ThatPanerepl().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestComposite_PreferEarlierSubprogram(t *testing.T) {
	Test(t,
		Composite(
			testProgram{writeOut: "program 1"}, testProgram{writeOut: "program 2"}),
		ThatPanerepl().WritesStdout("program 1"),
	)
}

func TestBadUsageError(t *testing.T) {
	Test(t,
		testProgram{returnErr: BadUsage("lorem ipsum")},
		ThatPanerepl().ExitsWith(2).WritesStderrContaining("lorem ipsum\nUsage:"),
	)
}

func TestExitError(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(3)},
		ThatPanerepl().ExitsWith(3),
	)
}

func TestExitError_0(t *testing.T) {
	Test(t, testProgram{returnErr: Exit(0)},
		ThatPanerepl().ExitsWith(0),
	)
}

type testProgram struct {
	notSuitable bool
	writeOut    string
	returnErr   error
}

func (p testProgram) RegisterFlags(*FlagSet) {}

func (p testProgram) Run(fds [3]*os.File, args []string) error {
	if p.notSuitable {
		return ErrNextProgram
	}
	fds[1].WriteString(p.writeOut)
	return p.returnErr
}

type jsonProgram struct{ json *bool }

func (p *jsonProgram) RegisterFlags(fs *FlagSet) { p.json = fs.JSON() }

func (p *jsonProgram) Run(fds [3]*os.File, args []string) error {
	if *p.json {
		fds[1].WriteString("json")
		return nil
	}
	return ErrNextProgram
}
