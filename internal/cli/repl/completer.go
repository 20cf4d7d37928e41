package repl

import (
	"sort"
	"strings"
)

// Builtins are the words the shell handles itself.
var Builtins = []string{"exit", "quit", "history"}

// Completer suggests command paths such as "member list" for a prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a completer over the given command paths plus the
// builtins. Duplicates are dropped and the result is kept sorted.
func NewCompleter(paths []string) *Completer {
	seen := make(map[string]bool, len(paths)+len(Builtins))
	cmds := make([]string, 0, len(paths)+len(Builtins))
	for _, p := range append(append([]string{}, paths...), Builtins...) {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		cmds = append(cmds, p)
	}
	sort.Strings(cmds)
	return &Completer{commands: cmds}
}

// Complete returns the command paths starting with prefix. Whitespace in
// the prefix is normalized, so "member  l" matches "member list".
func (c *Completer) Complete(prefix string) []string {
	trailing := strings.HasSuffix(prefix, " ")
	prefix = strings.Join(strings.Fields(prefix), " ")
	if trailing && prefix != "" {
		prefix += " "
	}
	var out []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}
