// Package eval runs code submitted to the console.
//
// Code is written in Starlark, a dialect of Python. Each submission is parsed
// and run on its own, but sees every binding made by earlier submissions
// through an Env owned by the caller.
package eval

import (
	"errors"
	"fmt"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/panerepl/panerepl/pkg/logutil"
)

var logger = logutil.GetLogger("[eval] ")

// Env holds the bindings that persist across submissions.
type Env struct {
	Global starlark.StringDict
}

// NewEnv returns an empty Env.
func NewEnv() *Env { return &Env{Global: make(starlark.StringDict)} }

// ExitError is an explicit request to terminate the process, made by calling
// exit or quit. It is never rendered as output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// Evaluator parses, classifies and runs submissions.
type Evaluator struct {
	// Builtins available to every submission in addition to Starlark's
	// universe. Values must be *starlark.Builtin.
	Predeclared starlark.StringDict
	// If nonzero, limits the number of computation steps per submission.
	MaxSteps uint64

	opts *syntax.FileOptions
}

// New returns an Evaluator with the default builtins and Python-like dialect
// options: top-level if/for/while, sets, recursion and reassignment of
// globals are all allowed.
func New() *Evaluator {
	return &Evaluator{
		Predeclared: starlark.StringDict{
			"exit": starlark.NewBuiltin("exit", exit),
			"quit": starlark.NewBuiltin("quit", exit),
		},
		opts: &syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
			GlobalReassign:  true,
			Recursion:       true,
		},
	}
}

func exit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	code := 0
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "code?", &code); err != nil {
		return nil, err
	}
	return nil, &ExitError{code}
}

// Run runs src against env.
//
// The returned output holds everything the code printed, followed by the
// value of the code if it is a single expression. When parsing or running
// fails, output is the description of the failure and isError is true. The
// only non-nil error is an *ExitError, which the caller must not swallow.
//
// Bindings made by the code are merged into env.Global even when running it
// fails halfway.
func (ev *Evaluator) Run(src string, env *Env) (output string, isError bool, err error) {
	f, err := ev.opts.Parse("<stdin>", src, 0)
	if err != nil {
		return err.Error() + "\n", true, nil
	}

	thread := &starlark.Thread{Name: "panerepl"}
	if ev.MaxSteps > 0 {
		thread.SetMaxExecutionSteps(ev.MaxSteps)
	}
	c := startCapture(thread)
	defer c.release()

	if expr := soleExpr(f); expr != nil {
		scope := make(starlark.StringDict, len(ev.Predeclared)+len(env.Global))
		ev.fill(scope, env.Global)
		var v starlark.Value
		v, err = starlark.EvalExprOptions(f.Options, thread, expr, scope)
		if err == nil && v != starlark.None {
			c.buf.WriteString(v.String())
			c.buf.WriteByte('\n')
		}
	} else {
		local := make(starlark.StringDict, len(ev.Predeclared)+len(env.Global))
		ev.fill(local, env.Global)
		err = starlark.ExecREPLChunk(f, thread, local)
		var resolveErr resolve.ErrorList
		if errors.As(err, &resolveErr) && len(f.Stmts) > 1 {
			err = ev.execEach(src, thread, local)
		}
		ev.merge(env.Global, local)
	}

	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			logger.Printf("exit requested with code %d", exitErr.Code)
			return "", false, exitErr
		}
		logger.Printf("error running %q: %v", src, err)
		return c.buf.String() + errorText(err), true, nil
	}
	return c.buf.String(), false, nil
}

// execEach runs the statements of src one by one, stopping at the first
// error. It is used when the whole chunk fails to resolve, so that statements
// before an unbound name still run.
//
// The source is parsed again, since resolving annotates the syntax tree.
func (ev *Evaluator) execEach(src string, thread *starlark.Thread, local starlark.StringDict) error {
	f, err := ev.opts.Parse("<stdin>", src, 0)
	if err != nil {
		return err
	}
	for _, stmt := range f.Stmts {
		chunk := &syntax.File{Path: f.Path, Options: f.Options, Stmts: []syntax.Stmt{stmt}}
		if err := starlark.ExecREPLChunk(chunk, thread, local); err != nil {
			return err
		}
	}
	return nil
}

// fill copies the predeclared builtins and then the global bindings into
// scope. Globals shadow builtins.
func (ev *Evaluator) fill(scope, global starlark.StringDict) {
	for name, v := range ev.Predeclared {
		scope[name] = v
	}
	for name, v := range global {
		scope[name] = v
	}
}

// merge copies the bindings of local into global, skipping builtins that
// were only copied in by fill.
func (ev *Evaluator) merge(global, local starlark.StringDict) {
	for name, v := range local {
		if b, ok := v.(*starlark.Builtin); ok {
			if p, ok := ev.Predeclared[name].(*starlark.Builtin); ok && p == b {
				if _, shadowed := global[name]; !shadowed {
					continue
				}
			}
		}
		global[name] = v
	}
}

func soleExpr(f *syntax.File) syntax.Expr {
	if len(f.Stmts) == 1 {
		if stmt, ok := f.Stmts[0].(*syntax.ExprStmt); ok {
			return stmt.X
		}
	}
	return nil
}

func errorText(err error) string {
	var evalErr *starlark.EvalError
	msg := err.Error()
	if errors.As(err, &evalErr) {
		msg = evalErr.Msg
	}
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return msg
}

// capture redirects the print output of a thread into a buffer until it is
// released.
type capture struct {
	thread *starlark.Thread
	saved  func(*starlark.Thread, string)
	buf    strings.Builder
}

func startCapture(thread *starlark.Thread) *capture {
	c := &capture{thread: thread, saved: thread.Print}
	thread.Print = func(_ *starlark.Thread, msg string) {
		c.buf.WriteString(msg)
		c.buf.WriteByte('\n')
	}
	return c
}

func (c *capture) release() { c.thread.Print = c.saved }
