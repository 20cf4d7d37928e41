package main

import (
	"os"

	"github.com/gymone/gymadmin/internal/cli/command"
)

func main() {
	app := command.App()

	// The app reports errors itself; only the exit status is left.
	if err := app.Run(os.Args); err != nil {
		os.Exit(command.ExitCode(err))
	}
}
