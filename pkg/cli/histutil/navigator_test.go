package histutil

import (
	"testing"

	"github.com/panerepl/panerepl/pkg/tt"
)

func newNavigator(t *testing.T, cmds ...string) *Navigator {
	t.Helper()
	nv, err := NewNavigator(NewMemStore())
	if err != nil {
		t.Fatal(err)
	}
	for _, cmd := range cmds {
		if err := nv.Add(cmd); err != nil {
			t.Fatal(err)
		}
	}
	return nv
}

func recalled(text string) Recall { return Recall{Handled: true, Recalled: true, Text: text} }

var exhausted = Recall{Handled: true}

func TestNavigator_RoundTrip(t *testing.T) {
	nv := newNavigator(t, "a", "b", "c")
	if nv.Cursor() != 3 {
		t.Fatalf("Cursor() = %d, want 3", nv.Cursor())
	}
	// A single-line live region on line 10.
	recall := func(dir Direction) Recall {
		r, err := nv.Recall(dir, 10, 10, 10)
		if err != nil {
			t.Fatal(err)
		}
		return r
	}
	tt.Test(t, tt.Fn("Recall", recall), tt.Table{
		tt.Args(Up).Rets(recalled("c")),
		tt.Args(Up).Rets(recalled("b")),
		tt.Args(Up).Rets(recalled("a")),
		tt.Args(Up).Rets(exhausted),
		tt.Args(Down).Rets(recalled("b")),
		tt.Args(Down).Rets(recalled("c")),
		tt.Args(Down).Rets(exhausted),
	})
}

func TestNavigator_EmptyHistory(t *testing.T) {
	nv := newNavigator(t)
	for _, dir := range []Direction{Up, Down} {
		r, err := nv.Recall(dir, 1, 1, 1)
		if r != exhausted || err != nil {
			t.Errorf("Recall(%v) -> %v, %v", dir, r, err)
		}
	}
}

func TestNavigator_UpOnlyOnPromptLine(t *testing.T) {
	nv := newNavigator(t, "a")
	r, _ := nv.Recall(Up, 6, 5, 7)
	if r != (Recall{}) {
		t.Errorf("Up off the prompt line -> %v, want not handled", r)
	}
	r, _ = nv.Recall(Up, 5, 5, 7)
	if r != recalled("a") {
		t.Errorf("Up on the prompt line -> %v", r)
	}
}

func TestNavigator_DownOnLastLine(t *testing.T) {
	nv := newNavigator(t, "a", "b")
	nv.Recall(Up, 5, 5, 5)
	nv.Recall(Up, 5, 5, 5)
	// Live region spans lines 5 to 7.
	if r, _ := nv.Recall(Down, 5, 5, 7); r != (Recall{}) {
		t.Errorf("Down on the first line of a multi-line region -> %v, want not handled", r)
	}
	if r, _ := nv.Recall(Down, 7, 5, 7); r != recalled("b") {
		t.Errorf("Down on the last line -> %v", r)
	}
}

func TestNavigator_DownOnSingleLineRegion(t *testing.T) {
	nv := newNavigator(t, "a", "b")
	nv.Policy = DownOnSingleLineRegion
	nv.Recall(Up, 5, 5, 5)
	nv.Recall(Up, 5, 5, 5)
	if r, _ := nv.Recall(Down, 7, 5, 7); r != (Recall{}) {
		t.Errorf("Down in a multi-line region -> %v, want not handled", r)
	}
	if r, _ := nv.Recall(Down, 5, 5, 5); r != recalled("b") {
		t.Errorf("Down in a single-line region -> %v", r)
	}
}

func TestNavigator_AddResetsCursor(t *testing.T) {
	nv := newNavigator(t, "a", "b")
	nv.Recall(Up, 1, 1, 1)
	nv.Add("c")
	if nv.Cursor() != 3 || nv.Len() != 3 {
		t.Errorf("Cursor() = %d, Len() = %d, want 3, 3", nv.Cursor(), nv.Len())
	}
}

func TestNavigator_BadDirection(t *testing.T) {
	nv := newNavigator(t, "a")
	if _, err := nv.Recall(Direction(9), 1, 1, 1); err == nil {
		t.Errorf("Recall with a bad direction returns nil error")
	}
}

func TestParseDownPolicy(t *testing.T) {
	tt.Test(t, tt.Fn("ParseDownPolicy", ParseDownPolicy), tt.Table{
		tt.Args("").Rets(DownOnLastLine, nil),
		tt.Args("last-line").Rets(DownOnLastLine, nil),
		tt.Args("single-line-region").Rets(DownOnSingleLineRegion, nil),
		tt.Args("sideways").Rets(DownOnLastLine, tt.Any),
	})
}
