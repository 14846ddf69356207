// Panerepl is a two-pane console for a Python-like language. The left pane
// shows the prompt glyph next to each input, the right pane the transcript of
// inputs and outputs.
package main

import (
	"os"

	"github.com/panerepl/panerepl/pkg/buildinfo"
	"github.com/panerepl/panerepl/pkg/prog"
	"github.com/panerepl/panerepl/pkg/rpc"
	"github.com/panerepl/panerepl/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(&buildinfo.Program{}, &rpc.Program{}, &shell.Program{})))
}
