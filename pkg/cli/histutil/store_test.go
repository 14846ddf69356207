package histutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore("a", "b")
	seq, err := s.AddCmd("c")
	if seq != 2 || err != nil {
		t.Errorf("AddCmd -> %d, %v, want 2, nil", seq, err)
	}
	cmds, err := s.AllCmds()
	want := []Cmd{{"a", 0}, {"b", 1}, {"c", 2}}
	if diff := cmp.Diff(want, cmds); diff != "" || err != nil {
		t.Errorf("AllCmds (-want +got):\n%s, err %v", diff, err)
	}
	if cmd, err := s.Cmd(1); cmd.Text != "b" || err != nil {
		t.Errorf("Cmd(1) -> %v, %v", cmd, err)
	}
	if _, err := s.Cmd(3); err != ErrEndOfHistory {
		t.Errorf("Cmd(3) -> err %v, want ErrEndOfHistory", err)
	}
}

func TestMemStore_AllCmdsReturnsCopy(t *testing.T) {
	s := NewMemStore("a")
	cmds, _ := s.AllCmds()
	cmds[0].Text = "changed"
	if cmd, _ := s.Cmd(0); cmd.Text != "a" {
		t.Errorf("store entry mutated through AllCmds result")
	}
}
