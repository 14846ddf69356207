// Package tt supports table-driven tests with little boilerplate.
//
// A typical use looks like:
//
//	tt.Test(t, tt.Fn("addr.Parse", addr.Parse), tt.Table{
//		tt.Args("1.0").Rets(addr.P(1, 0), nil),
//	})
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
)

// Table is a list of test cases.
type Table []*Case

// Case is one test case, built with Args and augmented with Rets.
type Case struct {
	args     []any
	matchers [][]any
}

// Args returns a new Case with the given arguments.
func Args(args ...any) *Case { return &Case{args: args} }

// Rets adds a requirement on the return values and returns the receiver. Each
// value is compared with cmp.Diff, unless it implements Matcher.
func (c *Case) Rets(matchers ...any) *Case {
	c.matchers = append(c.matchers, matchers)
	return c
}

// FnToTest describes a function under test.
type FnToTest struct {
	name    string
	body    any
	argsFmt string
	retsFmt string
}

// Fn makes a new FnToTest.
func Fn(name string, body any) *FnToTest {
	return &FnToTest{name: name, body: body}
}

// ArgsFmt sets the format string for arguments in error messages.
func (fn *FnToTest) ArgsFmt(s string) *FnToTest {
	fn.argsFmt = s
	return fn
}

// RetsFmt sets the format string for return values in error messages.
func (fn *FnToTest) RetsFmt(s string) *FnToTest {
	fn.retsFmt = s
	return fn
}

// T is the subset of testing.TB used by Test.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Matcher is implemented by return value expectations that are not compared
// by equality.
type Matcher interface {
	Match(RetValue) bool
}

// RetValue is the argument type of Matcher.Match. It is a distinct type so
// that Matcher is not implemented by accident.
type RetValue any

// Any matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

// Test runs fn against every case in the table.
func Test(t T, fn *FnToTest, tests Table) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		for _, want := range test.matchers {
			if match(want, rets) {
				continue
			}
			args := format(fn.argsFmt, test.args, false)
			var diff string
			if fn.retsFmt == "" {
				diff = cmp.Diff(want, rets, cmp.Exporter(func(reflect.Type) bool { return true }))
			} else {
				diff = "-" + format(fn.retsFmt, want, true) + "\n+" + format(fn.retsFmt, rets, true)
			}
			t.Errorf("%s(%s) returns (-Wanted +Actual):\n%s", fn.name, args, diff)
		}
	}
}

func match(matchers, rets []any) bool {
	if len(matchers) != len(rets) {
		return false
	}
	for i, m := range matchers {
		if m, ok := m.(Matcher); ok {
			if !m.Match(rets[i]) {
				return false
			}
			continue
		}
		if !cmp.Equal(m, rets[i], cmp.Exporter(func(reflect.Type) bool { return true })) {
			return false
		}
	}
	return true
}

func format(f string, values []any, rets bool) string {
	if f != "" {
		return fmt.Sprintf(f, values...)
	}
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprint(&sb, v)
	}
	if rets && len(values) != 1 {
		return "(" + sb.String() + ")"
	}
	return sb.String()
}

func call(fn any, args []any) []any {
	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// Use the zero value of the parameter type, so that nil can be
			// passed for pointers, interfaces and slices alike.
			var t reflect.Type
			if fnType.IsVariadic() && i >= fnType.NumIn()-1 {
				t = fnType.In(fnType.NumIn() - 1).Elem()
			} else {
				t = fnType.In(i)
			}
			in[i] = reflect.Zero(t)
		} else {
			in[i] = reflect.ValueOf(arg)
		}
	}
	out := fnValue.Call(in)
	rets := make([]any, len(out))
	for i, v := range out {
		rets[i] = v.Interface()
	}
	return rets
}
