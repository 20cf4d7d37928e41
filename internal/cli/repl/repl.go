package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Executor runs one tokenized line.
type Executor func(ctx context.Context, args []string) error

// Config wires a REPL to its environment.
type Config struct {
	In  io.Reader
	Out io.Writer
	// Exec runs every line that is not a builtin.
	Exec Executor
	// Prompt is evaluated before each line. Defaults to "gymadmin> ".
	Prompt func() string
	// Report shows an Exec error. Defaults to printing it to Out.
	Report    func(error)
	Completer *Completer
	History   *History
}

// REPL represents the Read-Eval-Print Loop.
type REPL struct {
	in        *bufio.Reader
	output    io.Writer
	exec      Executor
	prompt    func() string
	report    func(error)
	completer *Completer
	history   *History
}

// New creates a REPL.
func New(cfg Config) *REPL {
	r := &REPL{
		in:        bufio.NewReader(cfg.In),
		output:    cfg.Out,
		exec:      cfg.Exec,
		prompt:    cfg.Prompt,
		report:    cfg.Report,
		completer: cfg.Completer,
		history:   cfg.History,
	}
	if r.prompt == nil {
		r.prompt = func() string { return "gymadmin> " }
	}
	if r.report == nil {
		r.report = func(err error) { fmt.Fprintf(r.output, "Error: %v\n", err) }
	}
	if r.completer == nil {
		r.completer = NewCompleter(nil)
	}
	if r.history == nil {
		r.history = NewHistory("")
	}
	return r
}

// Run reads lines until exit, quit, EOF or ctx is done.
//
// A line ending in "?" lists the completions of what precedes it instead
// of running it.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, r.prompt())

		line, err := r.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				fmt.Fprintln(r.output)
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if stop := r.handle(ctx, line); stop {
			return nil
		}
	}
}

// handle runs one line and reports whether the loop should stop.
func (r *REPL) handle(ctx context.Context, line string) bool {
	if prefix, ok := strings.CutSuffix(line, "?"); ok {
		for _, s := range r.completer.Complete(prefix) {
			fmt.Fprintln(r.output, s)
		}
		return false
	}

	r.history.Add(line)
	args, err := Split(line)
	if err != nil {
		r.report(err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "exit", "quit":
		return true
	case "history":
		for i, entry := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, entry)
		}
		return false
	}

	if err := r.exec(ctx, args); err != nil {
		r.report(err)
	}
	return false
}
