// Package repl implements the interactive gymadmin shell.
//
//   - repl.go: read-eval-print loop around an Executor
//   - tokenize.go: shell-style word splitting with quotes
//   - completer.go: prefix completion over the command tree
//   - history.go: line history persisted under the data directory
//
// The loop itself knows nothing about the commands: each line is split into
// arguments and handed to the Executor, which in gymadmin runs the same CLI
// app the shell was started from.
package repl
