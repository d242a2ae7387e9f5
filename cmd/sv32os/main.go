// Command sv32os boots the teaching kernel this module implements
// against a disk image, or packs a directory into one.
package main

import (
	"context"
	"os"

	"github.com/smoynes/sv32os/internal/cli"
	"github.com/smoynes/sv32os/internal/cli/cmd"
)

func main() {
	commander := cli.New(context.Background()).
		WithLogger(os.Stderr).
		WithHelp(cmd.Help()).
		WithCommands([]cli.Command{
			cmd.Boot(),
			cmd.Mkfs(),
			cmd.Help(),
		})

	os.Exit(commander.Execute(os.Args[1:]))
}
