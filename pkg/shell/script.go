package shell

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/panerepl/panerepl/pkg/config"
	"github.com/panerepl/panerepl/pkg/eval"
	"github.com/panerepl/panerepl/pkg/prog"
)

// Runs code once, as if it were submitted to a fresh console. Normal output
// goes to stdout and error text to stderr.
func script(fds [3]*os.File, cfg *config.Config, name, code string) error {
	ev := cfg.SessionConfig().Evaluator
	logger.Printf("running %s", name)
	output, isError, err := ev.Run(code, eval.NewEnv())
	if err != nil {
		var exitErr *eval.ExitError
		if errors.As(err, &exitErr) {
			return prog.Exit(exitErr.Code)
		}
		return err
	}
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	if isError {
		fmt.Fprint(fds[2], output)
		return prog.Exit(2)
	}
	fmt.Fprint(fds[1], output)
	return nil
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}
