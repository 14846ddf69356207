//go:build unix

package term

import (
	"fmt"
	"os"

	"github.com/panerepl/panerepl/pkg/sys"
)

const (
	// Switch to the alternate screen and turn off autowrap.
	enterScreen = "\033[?1049h\033[?7l"
	leaveScreen = "\033[?7h\033[?1049l"
	// Report clicks and wheel motion in SGR encoding.
	enableMouse  = "\033[?1000h\033[?1006h"
	disableMouse = "\033[?1006l\033[?1000l"
	// Ask xterm to report modified Enter and friends as CSI 27 sequences.
	enableModifyOtherKeys  = "\033[>4;1m"
	disableModifyOtherKeys = "\033[>4m"
	enableBracketedPaste   = "\033[?2004h"
	disableBracketedPaste  = "\033[?2004l"
)

// Setup prepares the terminal for the full-screen console: in is put into raw
// mode, and out is switched to the alternate screen with mouse reporting and
// bracketed paste turned on. The returned function undoes all of that.
func Setup(in, out *os.File) (func() error, error) {
	restore, err := sys.MakeRaw(in)
	if err != nil {
		return nil, err
	}
	_, err = fmt.Fprint(out, enterScreen, enableMouse, enableModifyOtherKeys, enableBracketedPaste)
	if err != nil {
		restore()
		return nil, err
	}
	return func() error {
		_, err := fmt.Fprint(out, disableBracketedPaste, disableModifyOtherKeys, disableMouse, leaveScreen)
		if errRestore := restore(); errRestore != nil {
			return errRestore
		}
		return err
	}, nil
}
