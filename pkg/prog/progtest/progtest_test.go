package progtest

import (
	"os"
	"testing"

	"github.com/panerepl/panerepl/pkg/prog"
)

// Verify we don't deadlock if more output is written to stdout than can be
// buffered by a pipe.
func TestOutputCaptureDoesNotDeadlock(t *testing.T) {
	Test(t, noisyProgram{},
		ThatPanerepl().WritesStdoutContaining("hello"),
	)
}

type noisyProgram struct{}

func (noisyProgram) RegisterFlags(f *prog.FlagSet) {}

func (noisyProgram) Run(fds [3]*os.File, args []string) error {
	// Pipes typically buffer 8 to 128 KiB.
	bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	for i := 0; i < 128*1024/len(bytes); i++ {
		fds[1].Write(bytes)
	}
	fds[1].WriteString("hello")
	return nil
}

type echoProgram struct{}

func (echoProgram) RegisterFlags(f *prog.FlagSet) {}

func (echoProgram) Run(fds [3]*os.File, args []string) error {
	buf := make([]byte, 64)
	n, _ := fds[0].Read(buf)
	fds[1].Write(buf[:n])
	fds[2].WriteString("done\n")
	return prog.Exit(3)
}

func TestStdinAndExitCode(t *testing.T) {
	Test(t, echoProgram{},
		ThatPanerepl().WithStdin("ping").
			ExitsWith(3).WritesStdout("ping").WritesStderr("done\n"),
	)
}

func TestRun(t *testing.T) {
	exit, stdout, stderr := Run(echoProgram{}, []string{"panerepl"}, "x")
	if exit != 3 || stdout != "x" || stderr != "done\n" {
		t.Errorf("Run -> %v, %q, %q", exit, stdout, stderr)
	}
}
