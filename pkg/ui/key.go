// Package ui contains types describing user input.
package ui

import (
	"fmt"
	"strings"
)

// Key represents a single keyboard input, typically assembled from an escape
// sequence.
type Key struct {
	Rune rune
	Mod  Mod
}

// K constructs a new Key.
func K(r rune, mods ...Mod) Key {
	var mod Mod
	for _, m := range mods {
		mod |= m
	}
	return Key{r, mod}
}

// Mod represents a modifier key.
type Mod byte

// Values for Mod.
const (
	// Shift is the shift modifier. It is only applied to special keys (e.g.
	// Shift-F1). For instance 'A' and '@' which are typically entered with the
	// shift key pressed, are not considered to be shift-modified.
	Shift Mod = 1 << iota
	// Alt is the alt modifier, traditionally known as the meta modifier.
	Alt
	Ctrl
)

const functionKeyOffset = 1000

// Special negative runes to represent function keys, used in the Rune field
// of the Key struct. This also has a few function names that are aliases for
// simple runes. See keyNames below for mapping these values to strings.
const (
	F1 rune = -functionKeyOffset + iota
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	Up
	Down
	Right
	Left

	Home
	Insert
	Delete
	End
	PageUp
	PageDown

	Tab       = '\t'
	Enter     = '\n'
	Backspace = 0x7f
	Space     = ' '
)

// keyNames maps runes, whether they represent a special function key or a
// normal key, to their string representation.
var keyNames = map[rune]string{
	F1: "F1", F2: "F2", F3: "F3", F4: "F4", F5: "F5", F6: "F6",
	F7: "F7", F8: "F8", F9: "F9", F10: "F10", F11: "F11", F12: "F12",

	Up: "Up", Down: "Down", Right: "Right", Left: "Left",
	Home: "Home", Insert: "Insert", Delete: "Delete", End: "End",
	PageUp: "PageUp", PageDown: "PageDown",

	Tab: "Tab", Enter: "Enter", Backspace: "Backspace", Space: "Space",
}

func (k Key) String() string {
	var sb strings.Builder
	if k.Mod&Ctrl != 0 {
		sb.WriteString("Ctrl-")
	}
	if k.Mod&Alt != 0 {
		sb.WriteString("Alt-")
	}
	if k.Mod&Shift != 0 {
		sb.WriteString("Shift-")
	}
	if name, ok := keyNames[k.Rune]; ok {
		sb.WriteString(name)
	} else if k.Rune >= 0 {
		sb.WriteRune(k.Rune)
	} else {
		fmt.Fprintf(&sb, "(bad function key %d)", k.Rune)
	}
	return sb.String()
}

// IsFunc reports whether the key is a function key or carries a modifier, as
// opposed to a plain rune that is inserted as text.
func (k Key) IsFunc() bool { return k.Mod != 0 || k.Rune < 0 }

// modifierByName maps a lower-cased name to a modifier, so that all of C, c,
// CTRL, Ctrl and ctrl represent the Ctrl modifier.
var modifierByName = map[string]Mod{
	"s": Shift, "shift": Shift,
	"a": Alt, "alt": Alt,
	"m": Alt, "meta": Alt,
	"c": Ctrl, "ctrl": Ctrl,
}

// ParseKey parses a symbolic key. The syntax is:
//
//	Key = { Mod ('+' | '-') } BareKey
//
//	BareKey = FunctionKeyName | SingleRune
func ParseKey(s string) (Key, error) {
	var k Key
	orig := s

	// Parse modifiers. A lone "-" or "+" is a bare key, not a separator.
	for len(s) > 1 {
		i := strings.IndexAny(s, "+-")
		if i <= 0 {
			break
		}
		name := strings.ToLower(s[:i])
		mod, ok := modifierByName[name]
		if !ok {
			return Key{}, fmt.Errorf("bad modifier: %s", name)
		}
		k.Mod |= mod
		s = s[i+1:]
	}

	if r := []rune(s); len(r) == 1 {
		k.Rune = r[0]
		if k.Mod&Ctrl != 0 {
			// Ctrl- keys are case-insensitive.
			if 'a' <= k.Rune && k.Rune <= 'z' {
				k.Rune += 'A' - 'a'
			}
			// Normalize Ctrl-I to Tab, Ctrl-J to Enter, and Ctrl-? to
			// Backspace, since terminals send the same byte for them.
			if k.Mod == Ctrl {
				switch k.Rune {
				case 'I':
					return K(Tab), nil
				case 'J':
					return K(Enter), nil
				case '?':
					return K(Backspace), nil
				}
			}
		}
		return k, nil
	}

	for r, name := range keyNames {
		if s == name {
			k.Rune = r
			return k, nil
		}
	}
	return Key{}, fmt.Errorf("bad key: %s", orig)
}
