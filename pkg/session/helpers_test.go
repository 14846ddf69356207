package session

import (
	"go.starlark.net/starlark"

	"github.com/panerepl/panerepl/pkg/addr"
	"github.com/panerepl/panerepl/pkg/doc"
)

func starlarkInt(v starlark.Value) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, err := starlark.AsInt32(v)
	return i, err == nil
}

// replayer rebuilds the panes from effects alone, the way an external
// frontend would.
type replayer struct {
	doc    *doc.Document
	cursor addr.Pos
}

func newReplayer() *replayer {
	return &replayer{doc: doc.New(), cursor: addr.P(1, 0)}
}

func (r *replayer) apply(e Effect) {
	switch e.Kind {
	case InsertText:
		r.doc.Insert(e.From, e.Text)
	case DeleteText:
		r.doc.Delete(e.From, e.To)
	case MarkPrompt:
		r.doc.MarkPrompt(e.Line)
	case MoveCursor:
		r.cursor = e.To
	}
}
