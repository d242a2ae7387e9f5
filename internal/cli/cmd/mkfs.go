package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/smoynes/sv32os/internal/fs"
	"github.com/smoynes/sv32os/internal/log"
)

// Mkfs returns the "mkfs" subcommand: pack every regular file in a
// directory into a disk image fs.Init can load.
func Mkfs() *MkfsCmd {
	fset := flag.NewFlagSet("mkfs", flag.ContinueOnError)

	c := &MkfsCmd{fs: fset}
	fset.StringVar(&c.out, "out", "disk.tar", "output disk image path")

	return c
}

type MkfsCmd struct {
	fs  *flag.FlagSet
	out string
}

func (c *MkfsCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *MkfsCmd) Help() string {
	return "mkfs: pack a directory's files into a disk image\n\n" +
		"  sv32os mkfs --out disk.tar DIR\n"
}

func (c *MkfsCmd) Run(_ context.Context, args []string, out io.Writer, logger *log.Logger) {
	if len(args) != 1 {
		fmt.Fprintln(out, "mkfs: expected exactly one directory argument")
		os.Exit(2)
	}

	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(out, "mkfs: %v\n", err)
		os.Exit(1)
	}

	var files []fs.Entry

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			fmt.Fprintf(out, "mkfs: reading %s: %v\n", e.Name(), err)
			os.Exit(1)
		}

		if len(data) > fs.DataMax {
			fmt.Fprintf(out, "mkfs: %s exceeds %d bytes, skipping\n", e.Name(), fs.DataMax)
			continue
		}

		files = append(files, fs.Entry{Name: e.Name(), Data: data})
	}

	if len(files) > fs.FilesMax {
		logger.Warn("mkfs: more files than the kernel's table holds; extras are still written to the image",
			"count", len(files), "max", fs.FilesMax)
	}

	image, err := fs.BuildImage(files)
	if err != nil {
		fmt.Fprintf(out, "mkfs: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(c.out, image, 0o644); err != nil {
		fmt.Fprintf(out, "mkfs: writing %s: %v\n", c.out, err)
		os.Exit(1)
	}

	fmt.Fprintf(out, "mkfs: wrote %s (%d files, %d bytes)\n", c.out, len(files), len(image))
}
