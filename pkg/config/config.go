// Package config loads the rc file of the console.
//
// The rc file is YAML. Every field is optional; missing fields keep their
// defaults. Example:
//
//	prompt: ">>>"
//	scroll-step: 3
//	down-recall: single-line-region
//	osc52: true
//	bindings:
//	  F9: execute
//	  Ctrl-L: soft-newline
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/panerepl/panerepl/pkg/cli/histutil"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/logutil"
	"github.com/panerepl/panerepl/pkg/session"
	"github.com/panerepl/panerepl/pkg/ui"
)

var logger = logutil.GetLogger("[config] ")

// Command names an action that a key can be bound to.
type Command string

// Commands that keys can be bound to.
const (
	Execute     Command = "execute"
	SoftNewline Command = "soft-newline"
	Copy        Command = "copy"
	Cut         Command = "cut"
	Paste       Command = "paste"
	SetMark     Command = "set-mark"
	ScrollUp    Command = "scroll-up"
	ScrollDown  Command = "scroll-down"
	PageUp      Command = "page-up"
	PageDown    Command = "page-down"
	Quit        Command = "quit"
)

var commands = map[Command]bool{
	Execute: true, SoftNewline: true, Copy: true, Cut: true, Paste: true,
	SetMark: true, ScrollUp: true, ScrollDown: true, PageUp: true,
	PageDown: true, Quit: true,
}

// DefaultBindings are the key bindings in effect before the rc file is
// applied. Plain Enter inserts a newline, so that multi-line input can be
// typed; executing takes a modified Enter, which terminals report in
// different ways, or F5.
var DefaultBindings = map[ui.Key]Command{
	ui.K(ui.Enter):           SoftNewline,
	ui.K(ui.Enter, ui.Shift): Execute,
	ui.K(ui.Enter, ui.Alt):   Execute,
	ui.K(ui.Enter, ui.Ctrl):  Execute,
	ui.K(ui.F5):              Execute,
	ui.K('C', ui.Ctrl):       Copy,
	ui.K('X', ui.Ctrl):       Cut,
	ui.K('V', ui.Ctrl):       Paste,
	ui.K('`', ui.Ctrl):       SetMark,
	ui.K(ui.Up, ui.Ctrl):     ScrollUp,
	ui.K(ui.Down, ui.Ctrl):   ScrollDown,
	ui.K(ui.PageUp):          PageUp,
	ui.K(ui.PageDown):        PageDown,
	ui.K('Q', ui.Ctrl):       Quit,
	ui.K('D', ui.Ctrl):       Quit,
}

// Config is the configuration of the console.
type Config struct {
	// Glyph shown in the prompt pane next to each input region.
	Prompt string
	// Number of lines scrolled by a wheel notch or ScrollUp and ScrollDown.
	ScrollStep int
	// When a Down key recalls history.
	DownPolicy histutil.DownPolicy
	// Whether copied text is also sent to the terminal's clipboard.
	OSC52 bool
	// If nonzero, limits the computation steps of one submission.
	MaxSteps uint64
	// File to write the debug log to.
	Log string
	// Key bindings, including the defaults.
	Bindings map[ui.Key]Command
}

// PromptWidth returns the width of the prompt pane: the glyph plus one
// column of separation.
func (c *Config) PromptWidth() int {
	return runewidth.StringWidth(c.Prompt) + 1
}

// SessionConfig returns the configuration of a session that follows c.
func (c *Config) SessionConfig() session.Config {
	ev := eval.New()
	ev.MaxSteps = c.MaxSteps
	return session.Config{Glyph: c.Prompt, Evaluator: ev, DownPolicy: c.DownPolicy}
}

// Default returns the configuration used when there is no rc file.
func Default() *Config {
	bindings := make(map[ui.Key]Command, len(DefaultBindings))
	for k, cmd := range DefaultBindings {
		bindings[k] = cmd
	}
	return &Config{Prompt: ">>>", ScrollStep: 1, Bindings: bindings}
}

// rcFile is the YAML form of the rc file.
type rcFile struct {
	Prompt     *string           `yaml:"prompt"`
	ScrollStep *int              `yaml:"scroll-step"`
	DownRecall string            `yaml:"down-recall"`
	OSC52      bool              `yaml:"osc52"`
	MaxSteps   uint64            `yaml:"max-steps"`
	Log        string            `yaml:"log"`
	Bindings   map[string]string `yaml:"bindings"`
}

// KeyError is returned when a binding in the rc file cannot be understood.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("binding for %q: %v", e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// DefaultPath returns the default location of the rc file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "panerepl", "rc.yaml"), nil
}

// Load reads the rc file at path. When path is empty, the file at DefaultPath
// is read if it exists, and the default configuration is returned otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			logger.Println("no default rc path:", err)
			return Default(), nil
		}
		cfg, err := Load(p)
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger.Println("loading rc file", path)
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse parses the YAML content of an rc file, applied on top of the default
// configuration. Unknown fields are errors.
func Parse(r io.Reader) (*Config, error) {
	var rc rcFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rc); err != nil && err != io.EOF {
		return nil, err
	}

	cfg := Default()
	if rc.Prompt != nil {
		cfg.Prompt = *rc.Prompt
	}
	if rc.ScrollStep != nil {
		if *rc.ScrollStep <= 0 {
			return nil, fmt.Errorf("scroll-step must be positive, got %d", *rc.ScrollStep)
		}
		cfg.ScrollStep = *rc.ScrollStep
	}
	policy, err := histutil.ParseDownPolicy(rc.DownRecall)
	if err != nil {
		return nil, err
	}
	cfg.DownPolicy = policy
	cfg.OSC52 = rc.OSC52
	cfg.MaxSteps = rc.MaxSteps
	cfg.Log = rc.Log

	for name, cmd := range rc.Bindings {
		k, err := ui.ParseKey(name)
		if err != nil {
			return nil, &KeyError{name, err}
		}
		if cmd == "" || cmd == "none" {
			delete(cfg.Bindings, k)
			continue
		}
		if !commands[Command(cmd)] {
			return nil, &KeyError{name, fmt.Errorf("unknown command %q", cmd)}
		}
		cfg.Bindings[k] = Command(cmd)
	}
	return cfg, nil
}
