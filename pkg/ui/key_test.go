package ui

import (
	"testing"

	"github.com/panerepl/panerepl/pkg/tt"
)

var Args = tt.Args

// errorWithMessage matches an error with the given message.
type errorWithMessage string

func (m errorWithMessage) Match(v tt.RetValue) bool {
	err, ok := v.(error)
	return ok && err.Error() == string(m)
}

func TestK(t *testing.T) {
	tt.Test(t, tt.Fn("K", K), tt.Table{
		Args('a').Rets(Key{'a', 0}),
		Args('a', Alt).Rets(Key{'a', Alt}),
		Args('a', Alt, Ctrl).Rets(Key{'a', Alt | Ctrl}),
	})
}

func TestKey_String(t *testing.T) {
	tt.Test(t, tt.Fn("Key.String", Key.String), tt.Table{
		Args(K('a')).Rets("a"),
		Args(K('a', Ctrl, Alt, Shift)).Rets("Ctrl-Alt-Shift-a"),
		Args(K(Tab)).Rets("Tab"),
		Args(K(Enter, Shift)).Rets("Shift-Enter"),
		Args(K('`', Ctrl)).Rets("Ctrl-`"),
		Args(K(F5)).Rets("F5"),
		Args(K(PageDown)).Rets("PageDown"),
		Args(K(-1)).Rets("(bad function key -1)"),
	})
}

func TestKey_IsFunc(t *testing.T) {
	tt.Test(t, tt.Fn("Key.IsFunc", Key.IsFunc), tt.Table{
		Args(K('x')).Rets(false),
		Args(K(' ')).Rets(false),
		Args(K(Up)).Rets(true),
		Args(K('C', Ctrl)).Rets(true),
		Args(K('x', Alt)).Rets(true),
	})
}

func TestParseKey(t *testing.T) {
	tt.Test(t, tt.Fn("ParseKey", ParseKey), tt.Table{
		Args("x").Rets(K('x'), nil),
		Args("-").Rets(K('-'), nil),
		Args("F5").Rets(K(F5), nil),
		Args("PageUp").Rets(K(PageUp), nil),

		// Keys bound by the console by default.
		Args("Shift-Enter").Rets(K(Enter, Shift), nil),
		Args("Ctrl-Enter").Rets(K(Enter, Ctrl), nil),
		Args("Ctrl-`").Rets(K('`', Ctrl), nil),
		Args("Ctrl-Up").Rets(K(Up, Ctrl), nil),

		// Ctrl- letters are case-insensitive, Alt- letters are not.
		Args("C-q").Rets(K('Q', Ctrl), nil),
		Args("ctrl+Q").Rets(K('Q', Ctrl), nil),
		Args("a-x").Rets(K('x', Alt), nil),
		Args("M-X").Rets(K('X', Alt), nil),

		// Modifiers in any order.
		Args("Alt-Ctrl-Delete").Rets(K(Delete, Alt, Ctrl), nil),
		Args("Ctrl-Alt-Delete").Rets(K(Delete, Alt, Ctrl), nil),

		// Terminals cannot tell these apart from the plain keys.
		Args("Ctrl-I").Rets(K(Tab), nil),
		Args("Ctrl-J").Rets(K(Enter), nil),
		Args("Ctrl-?").Rets(K(Backspace), nil),

		Args("F123").Rets(Key{}, errorWithMessage("bad key: F123")),
		Args("Super-X").Rets(Key{}, errorWithMessage("bad modifier: super")),
	})
}
