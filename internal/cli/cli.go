// Package cli is the command dispatcher for the sv32os binary: a small
// commander/command pattern built on flag.FlagSet, in the same shape
// this module's teacher generation used.
package cli

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/smoynes/sv32os/internal/log"
)

type Flag = flag.Flag
type FlagSet = flag.FlagSet

// New returns a Commander bound to ctx, with no commands registered yet.
func New(ctx context.Context) *Commander {
	return &Commander{ctx: ctx}
}

// Commander dispatches argv[1:] to the matching registered Command, or
// to the help command if nothing matches.
type Commander struct {
	ctx context.Context
	log *log.Logger

	help     Command
	commands []Command
}

// Execute parses args and runs the matching command, returning a process
// exit code.
func (cli *Commander) Execute(args []string) int {
	if len(args) == 0 {
		cli.help.Run(cli.ctx, nil, os.Stdout, cli.log)
		return 1
	}

	found := cli.help
	for _, cmd := range cli.commands {
		if args[0] == cmd.FlagSet().Name() {
			found = cmd
		}
	}

	fs := found.FlagSet()

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	found.Run(cli.ctx, fs.Args(), os.Stdout, cli.log)

	return 0
}

// WithCommands registers the commands Execute may dispatch to.
func (cli *Commander) WithCommands(cmds []Command) *Commander {
	cli.commands = append([]Command(nil), cmds...)
	return cli
}

// WithHelp sets the command run when no argument matches.
func (cli *Commander) WithHelp(cmd Command) *Commander {
	cli.help = cmd
	return cli
}

// WithLogger installs a formatted logger writing to out and makes it the
// process-wide slog default.
func (cli *Commander) WithLogger(out *os.File) *Commander {
	logger := log.NewFormattedLogger(out)
	cli.log = logger

	slog.SetDefault(logger)

	return cli
}

// Command is one subcommand of the sv32os binary.
type Command interface {
	FlagSet() *flag.FlagSet
	Help() string
	Run(context.Context, []string, io.Writer, *log.Logger)
}
