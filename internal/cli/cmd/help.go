// Package cmd holds the sv32os binary's subcommands: boot, mkfs and
// help.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/smoynes/sv32os/internal/log"
)

const usage = `sv32os is a teaching kernel for 32-bit RISC-V, simulated on the host.

Usage:

	sv32os <command> [flags]

Commands:

	boot    Boot the kernel against a disk image
	mkfs    Pack a directory into a disk image
	help    Show this message
`

// Help prints the top-level usage message.
func Help() *HelpCmd {
	return &HelpCmd{fs: flag.NewFlagSet("help", flag.ContinueOnError)}
}

type HelpCmd struct {
	fs *flag.FlagSet
}

func (c *HelpCmd) FlagSet() *flag.FlagSet { return c.fs }
func (c *HelpCmd) Help() string           { return usage }

func (c *HelpCmd) Run(_ context.Context, _ []string, out io.Writer, _ *log.Logger) {
	fmt.Fprint(out, usage)
}
