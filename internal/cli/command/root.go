package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/config"
	"github.com/gymone/gymadmin/internal/cli/connection"
	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
	"github.com/gymone/gymadmin/internal/infra/buildinfo"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitSession    = 3
)

const runtimeKey = "runtime"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "gymadmin",
		Usage:                "Gym One administration from the terminal",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		Commands:             Commands(),
		Before:               before,
		After:                after,
		ExitErrHandler:       reportError,
		EnableBashCompletion: true,
		Metadata:             map[string]any{},
	}
}

// Commands returns the top-level command tree.
func Commands() []*cli.Command {
	return []*cli.Command{
		AuthCommand(),
		MemberCommand(),
		MembershipCommand(),
		ProductCommand(),
		EmailCommand(),
		QRCommand(),
		DashboardCommand(),
		ConfigCommand(),
		VersionCommand(),
		ShellCommand(),
	}
}

// globalFlags returns the global CLI flags. Only flags the user sets
// override the configuration file.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Backend base URL including the API path (e.g. https://gym.example.com/api)",
			EnvVars: []string{"GYMADMIN_SERVER"},
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default: " + config.DefaultConfigPath() + ")",
			EnvVars: []string{"GYMADMIN_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log debug output to stderr",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory holding the persisted session",
		},
		&cli.BoolFlag{
			Name:  "ephemeral",
			Usage: "Keep the session in memory only",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM bundle of extra CAs trusted for the backend",
		},
	}
}

// flagOverrides maps the global flags the user set to config keys.
func flagOverrides(c *cli.Context) map[string]any {
	m := map[string]any{}
	if c.IsSet("server") {
		m["server"] = c.String("server")
	}
	if c.IsSet("output") {
		m["output"] = c.String("output")
	}
	if c.IsSet("data-dir") {
		m["data_dir"] = c.String("data-dir")
	}
	if c.IsSet("ca-file") {
		m["tls_ca_file"] = c.String("ca-file")
	}
	if c.Bool("verbose") {
		m["log.level"] = "debug"
	}
	return m
}

// before builds the Runtime on the first run. Later runs of the same app,
// as the shell does for every line, reuse it.
func before(c *cli.Context) error {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		rt.enter()
		return nil
	}

	path := c.String("config")
	flags := flagOverrides(c)
	cfg, err := config.Load(config.LoadOptions{Path: path, Flags: flags})
	if err != nil {
		if !toleratesBadConfig(c) {
			return err
		}
		cfg = config.Default()
	}

	rt, err := NewRuntime(cfg, RuntimeOptions{
		ConfigPath: config.Path(path),
		ConfigErr:  err,
		Flags:      flags,
		Wide:       c.Bool("wide"),
		Ephemeral:  c.Bool("ephemeral"),
		Out:        c.App.Writer,
		Err:        c.App.ErrWriter,
		In:         c.App.Reader,
	})
	if err != nil {
		return err
	}
	c.App.Metadata[runtimeKey] = rt
	rt.enter()
	return nil
}

// toleratesBadConfig reports whether the command can run on defaults when
// the configuration does not load: the ones that inspect or replace it.
func toleratesBadConfig(c *cli.Context) bool {
	switch c.Args().First() {
	case "config", "version", "help", "h", "":
		return true
	}
	return false
}

func after(c *cli.Context) error {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt.leave()
	}
	return nil
}

// runtimeFrom returns the Runtime built by before.
func runtimeFrom(c *cli.Context) *Runtime {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		panic("command: runtime not initialized")
	}
	return rt
}

// reportError prints a failed command's error as a banner. A session
// expiry is silent because the login hint was already shown.
func reportError(c *cli.Context, err error) {
	if err == nil || connection.IsSessionExpired(err) {
		return
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) && exit.Error() == "" {
		return
	}
	w := c.App.ErrWriter
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		w = rt.Err
	}
	output.Banner(w, output.LevelError, "%v", err)
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}
	switch domain.CategoryOf(err) {
	case domain.CategoryValidation:
		return ExitValidation
	case domain.CategorySession:
		return ExitSession
	default:
		return ExitFailure
	}
}
