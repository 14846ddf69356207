package term

import (
	"time"
	"unicode/utf8"

	"github.com/panerepl/panerepl/pkg/ui"
)

// byteSource yields the bytes sent by the terminal.
type byteSource interface {
	// ReadByteWithTimeout reads a single byte, waiting at most timeout. A
	// negative timeout means no timeout.
	ReadByteWithTimeout(timeout time.Duration) (byte, error)
}

// Timeout for the bytes following the first one of an escape sequence.
// Terminal emulators send a whole sequence at once; a lone Escape key is
// followed by nothing.
var keySeqTimeout = 10 * time.Millisecond

// Returned by decoder.next when the sequence has ended.
const endOfSeq rune = -1

// decoder decodes one event.
type decoder struct {
	src byteSource
	// The runes read so far, for error messages.
	seq []rune
}

// decodeEvent reads one event, waiting for as long as it takes for it to
// start.
func decodeEvent(src byteSource) (Event, error) {
	r, err := readRune(src, -1)
	if err != nil {
		return nil, err
	}
	d := &decoder{src: src, seq: []rune{r}}
	if r == 0x1b {
		return d.escape()
	}
	return KeyEvent(ctrlKey(r)), nil
}

func (d *decoder) next() rune {
	r, err := readRune(d.src, keySeqTimeout)
	if err != nil {
		return endOfSeq
	}
	d.seq = append(d.seq, r)
	return r
}

func (d *decoder) fail(msg string) error {
	return seqError{msg, string(d.seq)}
}

// Decodes what follows an Escape.
func (d *decoder) escape() (Event, error) {
	r := d.next()
	// rxvt signals Alt by sending another Escape before a CSI or SS3 sequence.
	alt := false
	if r == 0x1b {
		alt = true
		r = d.next()
	}
	switch r {
	case endOfSeq:
		return KeyEvent{'[', ui.Ctrl}, nil
	case '[':
		return d.csi(alt)
	case 'O':
		return d.ss3(alt)
	}
	k := ctrlKey(r)
	k.Mod |= ui.Alt
	return KeyEvent(k), nil
}

// Decodes an SS3 sequence: Escape, 'O' and exactly one more rune.
func (d *decoder) ss3(alt bool) (Event, error) {
	r := d.next()
	if r == endOfSeq {
		return KeyEvent{'O', ui.Alt}, nil
	}
	k, ok := ss3Keys[r]
	if !ok {
		return nil, d.fail("bad G3")
	}
	if alt {
		k.Mod |= ui.Alt
	}
	return KeyEvent(k), nil
}

// csiSeq is a control sequence: Escape, '[', an optional private marker,
// numeric parameters separated by ';' and a final rune.
type csiSeq struct {
	private rune
	params  []int
	final   rune
}

func (d *decoder) csi(alt bool) (Event, error) {
	var s csiSeq
	r := d.next()
	switch r {
	case endOfSeq:
		return KeyEvent{'[', ui.Alt}, nil
	case 'M':
		return d.x10Mouse()
	case '<':
		s.private = r
		r = d.next()
	}

	for ; ; r = d.next() {
		if r == endOfSeq {
			return nil, d.fail("incomplete CSI")
		}
		if r == ';' {
			if len(s.params) == 0 {
				s.params = append(s.params, 0)
			}
			s.params = append(s.params, 0)
		} else if '0' <= r && r <= '9' {
			if len(s.params) == 0 {
				s.params = append(s.params, 0)
			}
			last := &s.params[len(s.params)-1]
			*last = *last*10 + int(r-'0')
		} else {
			s.final = r
			break
		}
	}

	p := s.params
	switch {
	case s.private == 0 && s.final == 'R':
		if len(p) != 2 {
			return nil, d.fail("bad CPR")
		}
		return CursorPosition{p[0], p[1]}, nil
	case s.private == '<' && (s.final == 'M' || s.final == 'm'):
		if len(p) != 3 {
			return nil, d.fail("bad SGR mouse event")
		}
		return mouseEvent(p[0], Pos{p[2], p[1]}, s.final == 'M'), nil
	case s.private == 0 && s.final == '~' && len(p) == 1 && (p[0] == 200 || p[0] == 201):
		return PasteSetting(p[0] == 200), nil
	}
	k, ok := s.key()
	if !ok {
		return nil, d.fail("bad CSI")
	}
	if alt {
		k.Mod |= ui.Alt
	}
	return KeyEvent(k), nil
}

// Decodes an X10 mouse report: Escape, '[', 'M' and three bytes offset by 32
// for the button, the column and the line.
func (d *decoder) x10Mouse() (Event, error) {
	var b [3]int
	for i := range b {
		r := d.next()
		if r == endOfSeq {
			return nil, d.fail("incomplete mouse event")
		}
		b[i] = int(r) - 32
	}
	cb := b[0]
	ev := mouseEvent(cb, Pos{b[2], b[1]}, true)
	if cb&3 == 3 && cb&64 == 0 {
		// X10 does not say which button was released.
		ev.Down, ev.Button = false, -1
	}
	return ev, nil
}

// mouseEvent builds a MouseEvent from the button byte of a mouse report. The
// wheel bit is kept in Button, so that wheel motion is WheelUp or WheelDown.
func mouseEvent(cb int, pos Pos, down bool) MouseEvent {
	var mod ui.Mod
	if cb&4 != 0 {
		mod |= ui.Shift
	}
	if cb&8 != 0 {
		mod |= ui.Alt
	}
	if cb&16 != 0 {
		mod |= ui.Ctrl
	}
	return MouseEvent{Pos: pos, Down: down, Button: cb&3 | cb&64, Mod: mod}
}

func (s csiSeq) key() (ui.Key, bool) {
	if s.private != 0 {
		return ui.Key{}, false
	}
	p := s.params
	if k, ok := csiKeysByFinal[s.final]; ok {
		switch {
		case len(p) == 0:
			// \e[A is Up.
			return k, true
		case len(p) == 2 && p[0] == 1:
			// \e[1;5A is Ctrl-Up.
			return xtermModify(k, p[1])
		}
		return ui.Key{}, false
	}

	switch s.final {
	case '~':
		switch len(p) {
		case 1, 2:
			// \e[3~ is Delete, \e[3;5~ is Ctrl-Delete.
			r, ok := csiTildeKeys[p[0]]
			if !ok {
				break
			}
			if len(p) == 1 {
				return ui.K(r), true
			}
			return xtermModify(ui.K(r), p[1])
		case 3:
			// xterm's modifyOtherKeys: \e[27;2;13~ is Shift-Enter.
			if p[0] != 27 {
				break
			}
			if r, ok := otherKey(p[2]); ok {
				return xtermModify(ui.K(r), p[1])
			}
		}
	case '$', '^', '@':
		// rxvt replaces the final '~' to signal modifiers.
		if len(p) == 1 {
			if r, ok := csiTildeKeys[p[0]]; ok {
				return ui.K(r, rxvtMods[s.final]), true
			}
		}
	}
	return ui.Key{}, false
}

// xtermModify adds the modifiers encoded by xterm as 1 plus a bit set. Meta
// is treated as Alt.
func xtermModify(k ui.Key, param int) (ui.Key, bool) {
	if param < 0 || param > 16 {
		return ui.Key{}, false
	}
	if param == 0 {
		return k, true
	}
	bits := param - 1
	for i, mod := range [...]ui.Mod{ui.Shift, ui.Alt, ui.Ctrl, ui.Alt} {
		if bits&(1<<i) != 0 {
			k.Mod |= mod
		}
	}
	return k, true
}

// otherKey maps the key code in a modifyOtherKeys sequence to a rune.
func otherKey(code int) (rune, bool) {
	switch {
	case code == 9:
		return ui.Tab, true
	case code == 13:
		return ui.Enter, true
	case code == 127:
		return ui.Backspace, true
	case 32 <= code && code < 127:
		return rune(code), true
	}
	return 0, false
}

// ctrlKey maps a rune that was typed on its own to a key. C0 control
// characters are Ctrl-modified keys.
func ctrlKey(r rune) ui.Key {
	switch {
	case r == 0:
		return ui.K('`', ui.Ctrl)
	case r == '\r':
		// Raw mode turns off the CR to NL translation, so Enter arrives as
		// ^M.
		return ui.K(ui.Enter)
	case r == ui.Tab || r == ui.Enter || r == ui.Backspace:
		// Same as ^I, ^J and ^?; the plain keys are far more common.
		return ui.K(r)
	case r == 0x1e:
		return ui.K('6', ui.Ctrl)
	case r == 0x1f:
		return ui.K('/', ui.Ctrl)
	case 0x1 <= r && r <= 0x1d:
		return ui.K(r+0x40, ui.Ctrl)
	}
	return ui.K(r)
}

// Keys sent as Escape, 'O' and one rune, by xterm, rxvt and tmux.
var ss3Keys = map[rune]ui.Key{
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End), 'M': ui.K(ui.Insert),
	'P': ui.K(ui.F1), 'Q': ui.K(ui.F2), 'R': ui.K(ui.F3), 'S': ui.K(ui.F4),
	// rxvt
	'a': ui.K(ui.Up, ui.Ctrl), 'b': ui.K(ui.Down, ui.Ctrl),
	'c': ui.K(ui.Right, ui.Ctrl), 'd': ui.K(ui.Left, ui.Ctrl),
}

// CSI keys identified by the final rune.
var csiKeysByFinal = map[rune]ui.Key{
	'A': ui.K(ui.Up), 'B': ui.K(ui.Down), 'C': ui.K(ui.Right), 'D': ui.K(ui.Left),
	'H': ui.K(ui.Home), 'F': ui.K(ui.End),
	'Z': ui.K(ui.Tab, ui.Shift),
	// rxvt
	'a': ui.K(ui.Up, ui.Shift), 'b': ui.K(ui.Down, ui.Shift),
	'c': ui.K(ui.Right, ui.Shift), 'd': ui.K(ui.Left, ui.Shift),
}

// CSI keys ending in '~', identified by the first parameter.
var csiTildeKeys = map[int]rune{
	1: ui.Home, 2: ui.Insert, 3: ui.Delete, 4: ui.End,
	5: ui.PageUp, 6: ui.PageDown, 7: ui.Home, 8: ui.End,
	11: ui.F1, 12: ui.F2, 13: ui.F3, 14: ui.F4,
	15: ui.F5, 17: ui.F6, 18: ui.F7, 19: ui.F8,
	20: ui.F9, 21: ui.F10, 23: ui.F11, 24: ui.F12,
}

var rxvtMods = map[rune]ui.Mod{'$': ui.Shift, '^': ui.Ctrl, '@': ui.Shift | ui.Ctrl}

// readRune reads one UTF-8 encoded rune. The timeout applies to the first
// byte; continuation bytes must follow within keySeqTimeout. Invalid encodings
// decode to utf8.RuneError.
func readRune(src byteSource, timeout time.Duration) (rune, error) {
	b, err := src.ReadByteWithTimeout(timeout)
	if err != nil {
		return utf8.RuneError, err
	}
	if b < utf8.RuneSelf {
		return rune(b), nil
	}
	var n int
	switch {
	case b&0xe0 == 0xc0:
		n = 2
	case b&0xf0 == 0xe0:
		n = 3
	case b&0xf8 == 0xf0:
		n = 4
	default:
		return utf8.RuneError, nil
	}
	buf := []byte{b}
	for len(buf) < n {
		b, err := src.ReadByteWithTimeout(keySeqTimeout)
		if err != nil {
			return utf8.RuneError, err
		}
		buf = append(buf, b)
	}
	r, _ := utf8.DecodeRune(buf)
	return r, nil
}
