package command

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/cli/repl"
	"github.com/gymone/gymadmin/internal/core/domain"
)

const (
	promptReady     = "gymadmin> "
	promptLoggedOut = "gymadmin (logged out)> "
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell",
		Description: "Every line runs as a gymadmin command with the session, output format\n" +
			"and server of the shell. End a line with ? to list completions.",
		Action: shellAction,
	}
}

// inShellKey marks an app that is already driving a shell.
const inShellKey = "shell"

func shellAction(c *cli.Context) error {
	if c.App.Metadata[inShellKey] == true {
		return domain.Validationf("already in a shell")
	}
	rt := runtimeFrom(c)
	ctx, cancel := rt.Context(c)
	err := rt.Connect(ctx)
	cancel()
	if err != nil {
		return err
	}

	c.App.Metadata[inShellKey] = true
	defer delete(c.App.Metadata, inShellKey)

	var loggedOut atomic.Bool
	loggedOut.Store(!rt.Sessions.IsAuthenticated())
	unsubscribe := rt.Sessions.Guard().Subscribe(func(string) { loggedOut.Store(true) })
	defer unsubscribe()

	stopWatch := rt.WatchConfig()
	defer stopWatch()

	historyFile := ""
	if !rt.ephemeral {
		historyFile = filepath.Join(rt.Config.DataDir, "history")
	}
	history := repl.NewHistory(historyFile)
	if err := history.Load(); err != nil {
		rt.Logger.Debug("history not loaded", "error", err)
	}
	defer func() {
		if err := history.Save(); err != nil {
			rt.Logger.Warn("history not saved", "error", err)
		}
	}()

	app := c.App
	shell := repl.New(repl.Config{
		In:  rt.Input(),
		Out: rt.Out,
		Exec: func(ctx context.Context, args []string) error {
			return app.RunContext(ctx, append([]string{app.Name}, args...))
		},
		Prompt: func() string {
			if rt.Sessions.IsAuthenticated() {
				loggedOut.Store(false)
			}
			if loggedOut.Load() {
				return promptLoggedOut
			}
			return promptReady
		},
		// Command errors were already reported by the app.
		Report: func(err error) {
			if errors.Is(err, repl.ErrUnterminatedQuote) {
				rt.Banner(output.LevelError, "%v", err)
			}
		},
		Completer: repl.NewCompleter(commandPaths("", app.Commands)),
		History:   history,
	})
	return shell.Run(c.Context)
}

// commandPaths lists every command path, e.g. "member list".
func commandPaths(parent string, cmds []*cli.Command) []string {
	var out []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		path := cmd.Name
		if parent != "" {
			path = parent + " " + cmd.Name
		}
		out = append(out, path)
		out = append(out, commandPaths(path, cmd.Subcommands)...)
	}
	return out
}
