package testutil

import "strings"

// Lines joins its arguments with newlines. It makes expected multi-line
// transcripts in tests read one line per argument.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n")
}

// Dedent removes the common leading whitespace of all non-blank lines in
// text. An initial newline is removed, so that raw strings can start on the
// line after the opening backtick.
func Dedent(text string) string {
	text = strings.TrimPrefix(text, "\n")
	lines := strings.Split(text, "\n")
	margin := ""
	first := true
	for _, line := range lines {
		if strings.TrimLeft(line, " \t") == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			margin, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, margin) {
			margin = margin[:len(margin)-1]
		}
	}
	for i, line := range lines {
		if strings.TrimLeft(line, " \t") == "" {
			lines[i] = ""
		} else {
			lines[i] = line[len(margin):]
		}
	}
	return strings.Join(lines, "\n")
}
