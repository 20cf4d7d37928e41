package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gymone/gymadmin/internal/cli/config"
	"github.com/gymone/gymadmin/internal/cli/output"
	"github.com/gymone/gymadmin/internal/core/domain"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and create the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Check the configuration file",
				Action: configValidate,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
					&cli.BoolFlag{
						Name:  "defaults",
						Usage: "Write the defaults instead of the effective configuration",
					},
				},
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	rt := runtimeFrom(c)
	if rt.ConfigErr != nil {
		rt.Banner(output.LevelWarn, "showing defaults: %v", rt.ConfigErr)
	}
	return rt.Render(rt.Config)
}

func configValidate(c *cli.Context) error {
	rt := runtimeFrom(c)
	if rt.ConfigErr != nil {
		return domain.ErrValidation.WithCause(rt.ConfigErr).WithDetails(rt.ConfigPath)
	}
	if _, err := os.Stat(rt.ConfigPath); errors.Is(err, os.ErrNotExist) {
		rt.Banner(output.LevelInfo, "%s does not exist, defaults apply", rt.ConfigPath)
		return nil
	}
	fmt.Fprintf(rt.Out, "%s is valid\n", rt.ConfigPath)
	return nil
}

func configInit(c *cli.Context) error {
	rt := runtimeFrom(c)
	path := rt.ConfigPath
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return domain.Validationf("%s already exists, use --force to overwrite", path)
	}

	cfg := rt.Config
	if c.Bool("defaults") || rt.ConfigErr != nil {
		cfg = config.Default()
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(rt.Out, "Wrote %s\n", path)
	return nil
}
