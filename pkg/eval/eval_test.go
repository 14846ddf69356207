package eval

import (
	"errors"
	"strings"
	"testing"

	"go.starlark.net/starlark"
)

type runResult struct {
	output  string
	isError bool
	err     error
}

func isInt(v starlark.Value, n int) bool {
	if v == nil {
		return false
	}
	eq, err := starlark.Equal(v, starlark.MakeInt(n))
	return err == nil && eq
}

func run(ev *Evaluator, env *Env, src string) runResult {
	output, isError, err := ev.Run(src, env)
	return runResult{output, isError, err}
}

func TestRun_ExpressionIsAutoPrinted(t *testing.T) {
	r := run(New(), NewEnv(), "2 + 2")
	if r != (runResult{"4\n", false, nil}) {
		t.Errorf("got %+v", r)
	}
}

func TestRun_NoneIsNotPrinted(t *testing.T) {
	r := run(New(), NewEnv(), "None")
	if r != (runResult{"", false, nil}) {
		t.Errorf("got %+v", r)
	}
}

func TestRun_StringExpressionIsQuoted(t *testing.T) {
	r := run(New(), NewEnv(), `"zz" + "top"`)
	if r.output != "\"zztop\"\n" {
		t.Errorf("output = %q", r.output)
	}
}

func TestRun_StatementIsSilent(t *testing.T) {
	env := NewEnv()
	r := run(New(), env, "x = 5")
	if r != (runResult{"", false, nil}) {
		t.Errorf("got %+v", r)
	}
	if !isInt(env.Global["x"], 5) {
		t.Errorf("Global[x] = %v, want 5", env.Global["x"])
	}
}

func TestRun_PrintIsCaptured(t *testing.T) {
	r := run(New(), NewEnv(), "print('hi')")
	if r != (runResult{"hi\n", false, nil}) {
		t.Errorf("got %+v", r)
	}
}

func TestRun_PrintInStatementsIsCaptured(t *testing.T) {
	r := run(New(), NewEnv(), "for i in range(3):\n    print(i)")
	if r.output != "0\n1\n2\n" || r.isError {
		t.Errorf("got %+v", r)
	}
}

func TestRun_BindingsPersistAcrossSubmissions(t *testing.T) {
	ev, env := New(), NewEnv()
	run(ev, env, "def double(n):\n    return n * 2")
	run(ev, env, "x = 21")
	r := run(ev, env, "double(x)")
	if r.output != "42\n" {
		t.Errorf("output = %q, want 42", r.output)
	}
	run(ev, env, "x = x + 1")
	if !isInt(env.Global["x"], 22) {
		t.Errorf("Global[x] = %v, want 22", env.Global["x"])
	}
}

func TestRun_MutableValuesStayMutable(t *testing.T) {
	ev, env := New(), NewEnv()
	run(ev, env, "l = [1]")
	r := run(ev, env, "l.append(2)")
	if r.isError {
		t.Fatalf("append failed: %q", r.output)
	}
	if r := run(ev, env, "l"); r.output != "[1, 2]\n" {
		t.Errorf("output = %q", r.output)
	}
}

func TestRun_DivisionByZeroIsContained(t *testing.T) {
	r := run(New(), NewEnv(), "1/0")
	if !r.isError || r.err != nil {
		t.Fatalf("got %+v, want isError and nil err", r)
	}
	if !strings.Contains(r.output, "division by zero") {
		t.Errorf("output = %q, want a division failure", r.output)
	}
}

func TestRun_ParseErrorIsContained(t *testing.T) {
	r := run(New(), NewEnv(), "x = = 1")
	if !r.isError || r.err != nil || r.output == "" {
		t.Errorf("got %+v", r)
	}
	if !strings.HasPrefix(r.output, "<stdin>:1:") {
		t.Errorf("output = %q, want a position", r.output)
	}
}

func TestRun_UndefinedNameIsContained(t *testing.T) {
	r := run(New(), NewEnv(), "nope")
	if !r.isError || !strings.Contains(r.output, "nope") {
		t.Errorf("got %+v", r)
	}
}

func TestRun_PartialBindingsAreMergedOnError(t *testing.T) {
	env := NewEnv()
	r := run(New(), env, "a = 1\nb = 1 // 0\nc = 3")
	if !r.isError {
		t.Errorf("got %+v, want error", r)
	}
	if !isInt(env.Global["a"], 1) {
		t.Errorf("Global[a] = %v, want 1", env.Global["a"])
	}
	if _, ok := env.Global["c"]; ok {
		t.Errorf("Global[c] is set, but its statement never ran")
	}
}

func TestRun_UnresolvedNameKeepsEarlierBindings(t *testing.T) {
	env := NewEnv()
	r := run(New(), env, "x = 1\nprint('ran')\nprint(y)\nz = 2")
	want := runResult{"ran\n<stdin>:3:7: undefined: y\n", true, nil}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
	if !isInt(env.Global["x"], 1) {
		t.Errorf("Global[x] = %v, want 1", env.Global["x"])
	}
	if _, ok := env.Global["z"]; ok {
		t.Errorf("Global[z] is set, but its statement never ran")
	}
}

func TestRun_ForwardReferenceInFunctionBody(t *testing.T) {
	env := NewEnv()
	r := run(New(), env, "def f():\n    return g()\ndef g():\n    return 7\nv = f()")
	if r != (runResult{"", false, nil}) {
		t.Errorf("got %+v", r)
	}
	if !isInt(env.Global["v"], 7) {
		t.Errorf("Global[v] = %v, want 7", env.Global["v"])
	}
}

func TestRun_OutputBeforeErrorIsKept(t *testing.T) {
	r := run(New(), NewEnv(), "print('before')\nfail('boom')")
	if !r.isError || !strings.HasPrefix(r.output, "before\n") || !strings.Contains(r.output, "boom") {
		t.Errorf("got %+v", r)
	}
}

func TestRun_ExitPropagates(t *testing.T) {
	for _, src := range []string{"exit()", "quit(3)", "print('x')\nexit(3)"} {
		r := run(New(), NewEnv(), src)
		var exitErr *ExitError
		if !errors.As(r.err, &exitErr) {
			t.Errorf("%q: err = %v, want *ExitError", src, r.err)
			continue
		}
		if r.output != "" || r.isError {
			t.Errorf("%q: got %+v, want no output", src, r)
		}
	}
	r := run(New(), NewEnv(), "quit(3)")
	if exitErr := r.err.(*ExitError); exitErr.Code != 3 {
		t.Errorf("Code = %d, want 3", exitErr.Code)
	}
}

func TestRun_BuiltinsAreNotMergedIntoGlobal(t *testing.T) {
	env := NewEnv()
	run(New(), env, "y = 1")
	if _, ok := env.Global["exit"]; ok {
		t.Errorf("exit leaked into Global")
	}
}

func TestRun_PrintRoutingIsRestored(t *testing.T) {
	thread := &starlark.Thread{}
	var got []string
	thread.Print = func(_ *starlark.Thread, msg string) { got = append(got, msg) }
	c := startCapture(thread)
	thread.Print(thread, "captured")
	c.release()
	thread.Print(thread, "direct")
	if len(got) != 1 || got[0] != "direct" || c.buf.String() != "captured\n" {
		t.Errorf("got %v, buffer %q", got, c.buf.String())
	}
}

func TestRun_MaxSteps(t *testing.T) {
	ev := New()
	ev.MaxSteps = 1000
	r := run(ev, NewEnv(), "while True:\n    pass")
	if !r.isError || !strings.Contains(r.output, "too many steps") {
		t.Errorf("got %+v", r)
	}
}
