package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/panerepl/panerepl/pkg/addr"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/logutil"
	"github.com/panerepl/panerepl/pkg/session"
	"github.com/panerepl/panerepl/pkg/ui"
)

var logger = logutil.GetLogger("[rpc] ")

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
	errExited = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidRequest, Message: "session has exited"}
)

type server struct {
	// Requests may be dispatched concurrently by some jsonrpc2 setups.
	mu      sync.Mutex
	session *session.Session
	exited  bool
	code    int
}

func newServer(cfg session.Config) (*server, error) {
	s, err := session.New(cfg)
	if err != nil {
		return nil, err
	}
	return &server{session: s}, nil
}

func (s *server) exitCode() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code, s.exited
}

func handler(s *server) jsonrpc2.Handler {
	return closeOnExit{s, routingHandler(map[string]method{
		"initialize":       s.initialize,
		"session/event":    s.event,
		"session/snapshot": s.snapshot,
		"shutdown":         noop,
		"exit":             exit,

		"initialized": noop,
	})}
}

// closeOnExit closes the connection after the response to a request that
// made the session exit has been sent.
type closeOnExit struct {
	s *server
	jsonrpc2.Handler
}

func (h closeOnExit) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	h.Handler.Handle(ctx, conn, req)
	if code, exited := h.s.exitCode(); exited {
		logger.Printf("session exited with code %d, closing connection", code)
		conn.Close()
	}
}

type method func(context.Context, *jsonrpc2.Conn, json.RawMessage) (any, error)

func noop(_ context.Context, _ *jsonrpc2.Conn, _ json.RawMessage) (any, error) {
	return nil, nil
}

func exit(_ context.Context, conn *jsonrpc2.Conn, _ json.RawMessage) (any, error) {
	return nil, conn.Close()
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

// Wire types. Positions use LSP conventions: lines are 0-based and
// characters count runes. Plain line numbers, like promptLine, are 1-based.

type initializeResult struct {
	Glyph      string `json:"glyph"`
	PromptLine int    `json:"promptLine"`
}

type eventParams struct {
	Kind     string        `json:"kind"`
	Key      string        `json:"key,omitempty"`
	Text     string        `json:"text,omitempty"`
	Position *lsp.Position `json:"position,omitempty"`
	Pane     string        `json:"pane,omitempty"`
	Lines    int           `json:"lines,omitempty"`
}

type effect struct {
	Kind string        `json:"kind"`
	From *lsp.Position `json:"from,omitempty"`
	To   *lsp.Position `json:"to,omitempty"`
	Text string        `json:"text,omitempty"`
	Line int           `json:"line,omitempty"`
}

type eventResult struct {
	Handled    bool         `json:"handled"`
	Effects    []effect     `json:"effects"`
	PromptLine int          `json:"promptLine"`
	Cursor     lsp.Position `json:"cursor"`
	// Set when the submission called exit().
	Exit *int `json:"exit,omitempty"`
}

type snapshotResult struct {
	Transcript   []string     `json:"transcript"`
	PromptColumn []string     `json:"promptColumn"`
	PromptLine   int          `json:"promptLine"`
	Cursor       lsp.Position `json:"cursor"`
	History      int          `json:"history"`
}

// Handler implementations.

func (s *server) initialize(_ context.Context, _ *jsonrpc2.Conn, _ json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return initializeResult{s.session.Glyph(), s.session.PromptLine()}, nil
}

func (s *server) event(_ context.Context, _ *jsonrpc2.Conn, rawParams json.RawMessage) (any, error) {
	var params eventParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	ev, err := parseEvent(params)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exited {
		return nil, errExited
	}
	res, err := s.session.Handle(ev)
	result := eventResult{
		Handled:    res.Handled,
		Effects:    make([]effect, len(res.Effects)),
		PromptLine: s.session.PromptLine(),
		Cursor:     *lspPosition(s.session.Cursor()),
	}
	for i, e := range res.Effects {
		result.Effects[i] = wireEffect(e)
	}
	if err != nil {
		var exitErr *eval.ExitError
		if !errors.As(err, &exitErr) {
			logger.Println("handle event:", err)
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
		}
		s.exited, s.code = true, exitErr.Code
		result.Exit = &exitErr.Code
	}
	return result, nil
}

func (s *server) snapshot(_ context.Context, _ *jsonrpc2.Conn, _ json.RawMessage) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := s.session.History()
	return snapshotResult{
		Transcript:   s.session.Transcript(),
		PromptColumn: s.session.PromptColumn(),
		PromptLine:   s.session.PromptLine(),
		Cursor:       *lspPosition(s.session.Cursor()),
		History:      n,
	}, nil
}

func parseEvent(p eventParams) (session.Event, error) {
	kind, err := session.ParseEventKind(p.Kind)
	if err != nil {
		return session.Event{}, err
	}
	ev := session.Event{Kind: kind, Text: p.Text, Lines: p.Lines}
	if p.Key != "" {
		ev.Key, err = ui.ParseKey(p.Key)
		if err != nil {
			return session.Event{}, err
		}
	}
	if p.Position != nil {
		ev.Pos = addr.P(p.Position.Line+1, p.Position.Character)
	}
	switch p.Pane {
	case "", "transcript":
		ev.Pane = session.TranscriptPane
	case "prompt":
		ev.Pane = session.PromptPane
	default:
		return session.Event{}, errors.New("unknown pane " + p.Pane)
	}
	return ev, nil
}

func wireEffect(e session.Effect) effect {
	w := effect{Kind: e.Kind.String()}
	switch e.Kind {
	case session.InsertText:
		w.From, w.Text = lspPosition(e.From), e.Text
	case session.DeleteText:
		w.From, w.To = lspPosition(e.From), lspPosition(e.To)
	case session.MoveCursor:
		w.To = lspPosition(e.To)
	case session.SetClipboard:
		w.Text = e.Text
	default:
		w.Line = e.Line
	}
	return w
}

func lspPosition(p addr.Pos) *lsp.Position {
	return &lsp.Position{Line: p.Line - 1, Character: p.Col}
}
