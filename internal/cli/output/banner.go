package output

import (
	"fmt"
	"io"
	"strings"
)

// Level is the severity of a banner.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

var levelPrefix = map[Level]string{
	LevelInfo:  "info",
	LevelWarn:  "warning",
	LevelError: "error",
}

// Banner writes a one-line notice, e.g. "error: member list: network error".
// Multi-line messages are folded onto one line.
func Banner(w io.Writer, level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	msg = strings.Join(strings.Fields(msg), " ")
	fmt.Fprintf(w, "%s: %s\n", levelPrefix[level], msg)
}
