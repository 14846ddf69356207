// Package session implements the console: a transcript pane whose last region
// takes input, a prompt pane that marks where each input starts, an
// evaluator, and a command history.
//
// A Session is driven by Events and reports what it changed as Effects. It
// does not draw anything; frontends render its state or replay its effects.
package session

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/panerepl/panerepl/pkg/addr"
	"github.com/panerepl/panerepl/pkg/cli/histutil"
	"github.com/panerepl/panerepl/pkg/doc"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/gate"
	"github.com/panerepl/panerepl/pkg/logutil"
	"github.com/panerepl/panerepl/pkg/panesync"
	"github.com/panerepl/panerepl/pkg/ui"
)

var logger = logutil.GetLogger("[session] ")

// Text inserted by the Tab key.
const tabText = "    "

// Evaluator runs submitted code. It is implemented by *eval.Evaluator.
type Evaluator interface {
	Run(src string, env *eval.Env) (output string, isError bool, err error)
}

// Config keeps the dependencies of a Session. The zero value is usable.
type Config struct {
	// Glyph shown in the prompt pane. Defaults to ">>>".
	Glyph string
	// Number of visible lines of both panes. Defaults to 1.
	Height int
	// Defaults to eval.New().
	Evaluator Evaluator
	// Defaults to an empty in-memory store.
	Store      histutil.Store
	DownPolicy histutil.DownPolicy
}

// Session is the state of one console.
type Session struct {
	glyph string

	doc    *doc.Document
	prompt int
	cursor addr.Pos

	mark      addr.Pos
	hasMark   bool
	clipboard string

	ev   Evaluator
	env  *eval.Env
	hist *histutil.Navigator

	transcriptView *panesync.View
	promptView     *panesync.View

	effects []Effect
}

// New creates a Session with an empty transcript, whose first line is the
// live region.
func New(cfg Config) (*Session, error) {
	if cfg.Glyph == "" {
		cfg.Glyph = ">>>"
	}
	if cfg.Evaluator == nil {
		cfg.Evaluator = eval.New()
	}
	if cfg.Store == nil {
		cfg.Store = histutil.NewMemStore()
	}
	hist, err := histutil.NewNavigator(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	hist.Policy = cfg.DownPolicy

	d := doc.New()
	s := &Session{
		glyph:  cfg.Glyph,
		doc:    d,
		prompt: 1,
		cursor: addr.P(1, 0),
		ev:     cfg.Evaluator,
		env:    eval.NewEnv(),
		hist:   hist,

		transcriptView: panesync.NewView(d.LineCount, cfg.Height),
		promptView:     panesync.NewView(d.LineCount, cfg.Height),
	}
	panesync.Link(s.transcriptView, s.promptView)
	return s, nil
}

// Glyph returns the prompt glyph.
func (s *Session) Glyph() string { return s.glyph }

// PromptLine returns the first line of the live region.
func (s *Session) PromptLine() int { return s.prompt }

// Cursor returns the position of the cursor.
func (s *Session) Cursor() addr.Pos { return s.cursor }

// Mark returns the selection anchor, if one is set.
func (s *Session) Mark() (addr.Pos, bool) { return s.mark, s.hasMark }

// Clipboard returns the content of the clipboard.
func (s *Session) Clipboard() string { return s.clipboard }

// LineCount returns the number of lines in both panes.
func (s *Session) LineCount() int { return s.doc.LineCount() }

// Line returns the text of line i of the transcript.
func (s *Session) Line(i int) string { return s.doc.Line(i) }

// PromptMarker returns what the prompt pane shows on line i.
func (s *Session) PromptMarker(i int) string {
	if s.doc.IsPrompt(i) {
		return s.glyph
	}
	return ""
}

// Transcript returns all lines of the transcript pane.
func (s *Session) Transcript() []string { return s.doc.Transcript() }

// PromptColumn returns all lines of the prompt pane.
func (s *Session) PromptColumn() []string { return s.doc.PromptColumn(s.glyph) }

// Input returns the text of the live region.
func (s *Session) Input() string {
	return s.doc.Get(addr.P(s.prompt, 0), s.doc.End())
}

// History returns the number of history entries and the history cursor.
func (s *Session) History() (n, cursor int) { return s.hist.Len(), s.hist.Cursor() }

// Env returns the environment code is evaluated in.
func (s *Session) Env() *eval.Env { return s.env }

// TranscriptView returns the viewport of the transcript pane.
func (s *Session) TranscriptView() *panesync.View { return s.transcriptView }

// PromptView returns the viewport of the prompt pane. It always shows the
// same lines as the transcript view.
func (s *Session) PromptView() *panesync.View { return s.promptView }

// SetHeight changes the number of visible lines of both panes.
func (s *Session) SetHeight(h int) {
	s.transcriptView.SetHeight(h)
	s.promptView.SetHeight(h)
	s.transcriptView.See(s.cursor.Line)
}

// Check verifies the invariants of the Session.
func (s *Session) Check() error {
	if err := s.doc.Check(); err != nil {
		return err
	}
	if s.prompt < 1 || s.prompt > s.doc.LineCount() {
		return fmt.Errorf("prompt line %d out of range [1, %d]", s.prompt, s.doc.LineCount())
	}
	if last := s.doc.LastPrompt(); s.prompt != last {
		return fmt.Errorf("prompt line is %d, but last marked line is %d", s.prompt, last)
	}
	if s.doc.Clamp(s.cursor) != s.cursor {
		return fmt.Errorf("cursor %v out of range", s.cursor)
	}
	if s.transcriptView.Top() != s.promptView.Top() {
		return fmt.Errorf("panes out of sync: transcript at %d, prompt at %d",
			s.transcriptView.Top(), s.promptView.Top())
	}
	return nil
}

// Handle handles an event. The only errors are failures of the history store
// and an *eval.ExitError, which means that the code asked to end the
// console.
func (s *Session) Handle(e Event) (Result, error) {
	s.effects = nil
	handled, err := s.handle(e)
	effects := s.effects
	s.effects = nil
	return Result{Handled: handled, Effects: effects}, err
}

func (s *Session) handle(e Event) (bool, error) {
	switch e.Kind {
	case KeyPress:
		return s.key(e.Key)
	case SoftNewline:
		s.softNewline()
		return true, nil
	case Execute:
		return true, s.execute()
	case Click:
		s.click(e.Pane, e.Pos)
		return true, nil
	case Scroll:
		s.apply(Effect{Kind: ScrollLines, Line: e.Lines})
		return true, nil
	case SetMark:
		s.mark, s.hasMark = s.cursor, true
		return true, nil
	case Copy:
		s.copySelection()
		return true, nil
	case Cut:
		s.cut()
		return true, nil
	case Paste:
		s.paste(e.Text)
		return true, nil
	}
	return false, fmt.Errorf("unknown event kind %v", e.Kind)
}

// apply makes one change and records it. Every change goes through here.
func (s *Session) apply(e Effect) {
	switch e.Kind {
	case InsertText:
		s.doc.Insert(e.From, e.Text)
		s.refreshViews()
	case DeleteText:
		s.doc.Delete(e.From, e.To)
		s.refreshViews()
	case MarkPrompt:
		s.doc.MarkPrompt(e.Line)
		s.prompt = e.Line
	case MoveCursor:
		s.cursor = s.doc.Clamp(e.To)
	case ScrollLines:
		s.transcriptView.Scroll(e.Line)
	case SeeLine:
		s.transcriptView.See(e.Line)
	case SetClipboard:
		s.clipboard = e.Text
	}
	s.effects = append(s.effects, e)
}

func (s *Session) refreshViews() {
	s.transcriptView.Refresh()
	s.promptView.Refresh()
}

func (s *Session) moveCursor(p addr.Pos) {
	s.apply(Effect{Kind: MoveCursor, To: s.doc.Clamp(p)})
	s.apply(Effect{Kind: SeeLine, Line: s.cursor.Line})
}

func (s *Session) insertAtCursor(text string) {
	s.apply(Effect{Kind: InsertText, From: s.cursor, Text: text})
	s.moveCursor(endOfInsert(s.cursor, text))
}

func (s *Session) softNewline() {
	s.apply(Effect{Kind: InsertText, From: s.doc.End(), Text: "\n"})
	s.moveCursor(s.doc.End())
}

func (s *Session) execute() error {
	command := strings.TrimSpace(s.Input())
	if command == "" {
		s.apply(Effect{Kind: InsertText, From: s.doc.End(), Text: "\n"})
	} else {
		if err := s.hist.Add(command); err != nil {
			return fmt.Errorf("add to history: %w", err)
		}
		logger.Printf("executing %q", command)
		output, isError, err := s.ev.Run(command, s.env)
		if err != nil {
			return err
		}
		if isError {
			logger.Printf("%q failed: %s", command, output)
		}
		text := "\n" + output
		if output != "" && !strings.HasSuffix(output, "\n") {
			text += "\n"
		}
		s.apply(Effect{Kind: InsertText, From: s.doc.End(), Text: text})
	}
	s.apply(Effect{Kind: MarkPrompt, Line: s.doc.LineCount()})
	s.hasMark = false
	s.moveCursor(s.doc.End())
	return nil
}

func (s *Session) click(pane Pane, p addr.Pos) {
	if pane == PromptPane {
		// The prompt pane is not editable; clicks on it do nothing.
		return
	}
	s.apply(Effect{Kind: MoveCursor, To: s.doc.Clamp(p)})
}

func (s *Session) key(k ui.Key) (bool, error) {
	kind := gate.Edit
	switch k {
	case ui.K(ui.Backspace):
		kind = gate.DeleteBackward
	case ui.K(ui.Left):
		kind = gate.CursorLeft
	}
	if !gate.Allow(kind, s.cursor, s.prompt) {
		return true, nil
	}

	switch k {
	case ui.K(ui.Backspace):
		if s.cursor != addr.P(1, 0) {
			s.deleteRange(s.before(s.cursor), s.cursor)
		}
	case ui.K(ui.Delete):
		if s.cursor != s.doc.End() {
			s.deleteRange(s.cursor, s.after(s.cursor))
		}
	case ui.K(ui.Left):
		s.moveCursor(s.before(s.cursor))
	case ui.K(ui.Right):
		s.moveCursor(s.after(s.cursor))
	case ui.K(ui.Home):
		s.moveCursor(addr.P(s.cursor.Line, 0))
	case ui.K(ui.End):
		s.moveCursor(addr.P(s.cursor.Line, addr.EndCol))
	case ui.K(ui.Up):
		return s.upDown(histutil.Up, -1)
	case ui.K(ui.Down):
		return s.upDown(histutil.Down, 1)
	case ui.K(ui.Tab):
		s.insertAtCursor(tabText)
	default:
		if k.IsFunc() || !unicode.IsPrint(k.Rune) {
			return false, nil
		}
		s.insertAtCursor(string(k.Rune))
	}
	return true, nil
}

func (s *Session) upDown(dir histutil.Direction, delta int) (bool, error) {
	last := s.doc.LineCount()
	r, err := s.hist.Recall(dir, s.cursor.Line, s.prompt, last)
	if err != nil {
		return true, err
	}
	if !r.Handled {
		line := s.cursor.Line + delta
		if line < 1 || line > last {
			return true, nil
		}
		s.moveCursor(addr.P(line, s.cursor.Col))
		return true, nil
	}
	if r.Recalled {
		from := addr.P(s.prompt, 0)
		s.apply(Effect{Kind: DeleteText, From: from, To: s.doc.End()})
		s.apply(Effect{Kind: InsertText, From: from, Text: r.Text})
		s.moveCursor(s.doc.End())
	}
	return true, nil
}

// before returns the position one rune before p, which is the end of the
// previous line when p is at the start of a line.
func (s *Session) before(p addr.Pos) addr.Pos {
	switch {
	case p.Col > 0:
		return addr.P(p.Line, p.Col-1)
	case p.Line > 1:
		return addr.P(p.Line-1, s.doc.LineLen(p.Line-1))
	}
	return p
}

// after returns the position one rune after p.
func (s *Session) after(p addr.Pos) addr.Pos {
	switch {
	case p.Col < s.doc.LineLen(p.Line):
		return addr.P(p.Line, p.Col+1)
	case p.Line < s.doc.LineCount():
		return addr.P(p.Line+1, 0)
	}
	return p
}

func (s *Session) deleteRange(from, to addr.Pos) {
	s.apply(Effect{Kind: DeleteText, From: from, To: to})
	s.moveCursor(from)
}

func (s *Session) selection() (from, to addr.Pos, ok bool) {
	if !s.hasMark {
		return addr.Pos{}, addr.Pos{}, false
	}
	from, to = addr.Order(s.doc.Clamp(s.mark), s.cursor)
	return from, to, from != to
}

func (s *Session) copySelection() {
	if from, to, ok := s.selection(); ok {
		s.apply(Effect{Kind: SetClipboard, Text: s.doc.Get(from, to)})
	}
}

func (s *Session) cut() {
	from, to, ok := s.selection()
	if !ok || !gate.Allow(gate.Edit, s.cursor, s.prompt) || !gate.AllowRange(from, to, s.prompt) {
		return
	}
	s.apply(Effect{Kind: SetClipboard, Text: s.doc.Get(from, to)})
	s.deleteRange(from, to)
	s.hasMark = false
}

func (s *Session) paste(text string) {
	if text == "" {
		text = s.clipboard
	}
	text = normalizeNewlines(text)
	if text == "" || !gate.Allow(gate.Edit, s.cursor, s.prompt) {
		return
	}
	s.insertAtCursor(text)
}

// normalizeNewlines converts CRLF and CR line endings, which terminals send
// for pasted text, to LF.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

// endOfInsert returns where text inserted at p ends.
func endOfInsert(p addr.Pos, text string) addr.Pos {
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return addr.P(p.Line+strings.Count(text, "\n"), len([]rune(text[i+1:])))
	}
	return addr.P(p.Line, p.Col+len([]rune(text)))
}
