// Package shell is the entry point for the console. It runs the full-screen
// two-pane console on a terminal, or executes code given on the command line
// or in a script file.
package shell

import (
	"errors"
	"fmt"
	"os"

	"github.com/panerepl/panerepl/pkg/cli"
	"github.com/panerepl/panerepl/pkg/config"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/logutil"
	"github.com/panerepl/panerepl/pkg/prog"
	"github.com/panerepl/panerepl/pkg/session"
	"github.com/panerepl/panerepl/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It always runs, so it should come last in
// a composite program.
type Program struct {
	code string
	rc   *string
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.StringVar(&p.code, "c", "",
		"execute the given code once and print its output instead of running the console")
	p.rc = fs.RC()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	cfg, err := config.Load(*p.rc)
	if err != nil {
		return err
	}
	if cfg.Log != "" {
		if err := logutil.SetOutputFile(cfg.Log); err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot open log file:", err)
		}
	}

	switch {
	case p.code != "" && len(args) > 0:
		return prog.BadUsage("-c and a script file cannot be used together")
	case p.code != "":
		return script(fds, cfg, "code from -c", p.code)
	case len(args) > 1:
		return prog.BadUsage("only one script file can be given")
	case len(args) == 1:
		code, err := readFileUTF8(args[0])
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", args[0], err)
			return prog.Exit(2)
		}
		return script(fds, cfg, args[0], code)
	}
	return interact(fds, cfg)
}

func interact(fds [3]*os.File, cfg *config.Config) error {
	if !sys.IsATTY(fds[0].Fd()) || !sys.IsATTY(fds[1].Fd()) {
		return prog.BadUsage("standard input and output must be a terminal; use -c, a script file or -rpc")
	}
	s, err := session.New(cfg.SessionConfig())
	if err != nil {
		return err
	}
	app := cli.NewApp(cli.AppSpec{
		TTY: cli.NewTTY(fds[0], fds[1]), Config: cfg, Session: s})
	err = app.Run()
	var exitErr *eval.ExitError
	if errors.As(err, &exitErr) {
		logger.Println("exit with status", exitErr.Code)
		return prog.Exit(exitErr.Code)
	}
	return err
}
