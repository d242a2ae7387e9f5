package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/smoynes/sv32os/internal/firmware"
	"github.com/smoynes/sv32os/internal/fs"
	"github.com/smoynes/sv32os/internal/kernel"
	"github.com/smoynes/sv32os/internal/log"
	"github.com/smoynes/sv32os/internal/paging"
	"github.com/smoynes/sv32os/internal/platform"
	"github.com/smoynes/sv32os/internal/tty"
	"github.com/smoynes/sv32os/internal/userimage"
	"github.com/smoynes/sv32os/internal/virtio"
)

// bootConfig is the optional YAML configuration file the boot command
// accepts with --config, letting a disk image and RAM size be pinned
// without retyping flags.
type bootConfig struct {
	Disk       string `yaml:"disk"`
	SectorSize int    `yaml:"sector_count"`
	RAMPages   int    `yaml:"ram_pages"`
}

const (
	defaultSectorCount = 2048
	defaultRAMPages    = 4096
	ramBase            = 0x8000_0000
)

// Boot returns the "boot" subcommand.
func Boot() *BootCmd {
	fs := flag.NewFlagSet("boot", flag.ContinueOnError)

	c := &BootCmd{fs: fs}
	fs.StringVar(&c.diskPath, "disk", "", "path to a tar-formatted disk image")
	fs.StringVar(&c.configPath, "config", "", "path to a YAML boot configuration")
	fs.BoolVar(&c.debug, "debug", false, "enable debug-level logging")
	fs.BoolVar(&c.interactive, "interactive", false, "bridge the console to the real terminal")

	return c
}

type BootCmd struct {
	fs *flag.FlagSet

	diskPath    string
	configPath  string
	debug       bool
	interactive bool
}

func (c *BootCmd) FlagSet() *flag.FlagSet { return c.fs }

func (c *BootCmd) Help() string {
	return "boot: start the kernel against a disk image\n\n" +
		"  sv32os boot --disk disk.tar [--debug] [--config sv32os.yaml]\n"
}

func (c *BootCmd) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) {
	cfg := bootConfig{Disk: c.diskPath, SectorSize: defaultSectorCount, RAMPages: defaultRAMPages}

	if c.configPath != "" {
		raw, err := os.ReadFile(c.configPath)
		if err != nil {
			fmt.Fprintf(out, "boot: reading config: %v\n", err)
			os.Exit(1)
		}

		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			fmt.Fprintf(out, "boot: parsing config: %v\n", err)
			os.Exit(1)
		}
	}

	if cfg.Disk == "" {
		fmt.Fprintln(out, "boot: no disk image given (--disk or config disk:)")
		os.Exit(1)
	}

	if c.debug {
		log.LogLevel.Set(log.Debug)
	}

	diskImage, err := os.ReadFile(cfg.Disk)
	if err != nil {
		fmt.Fprintf(out, "boot: reading disk image: %v\n", err)
		os.Exit(1)
	}

	if pad := cfg.SectorSize*virtio.SectorSize - len(diskImage); pad > 0 {
		diskImage = append(diskImage, make([]byte, pad)...)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("kernel halted", "cause", fmt.Sprint(r))
			select {} // mirrors firmware's halt: spin forever rather than exit
		}
	}()

	mem := paging.NewMemory(ramBase, make([]byte, cfg.RAMPages*paging.PageSize))
	alloc := paging.NewAllocator(mem, ramBase)

	disk := virtio.New(diskImage)
	if err := disk.Init(alloc); err != nil {
		kernel.Fatal(logger, "virtio-blk bring-up: %v", err)
	}

	filesystem := fs.New(disk)
	if err := filesystem.Init(); err != nil {
		kernel.Fatal(logger, "file system load: %v", err)
	}

	var console = firmwareConsole(c.interactive)
	defer console.close()

	k := kernel.New(mem, alloc, console.gateway, disk, filesystem)
	k.WithLogger(logger)

	greeter := k.CreateProcess()
	greeter.Step = userimage.Echo("sv32os booted\n")

	k.Run(1 << 16)

	fmt.Fprintln(out, "boot: all processes exited")
}

// firmwareConsole picks a platform.Gateway: a real terminal bridge when
// --interactive is given, or an in-memory loopback otherwise, since a
// non-interactive boot (tests, CI, a quick demo) has no terminal to
// bridge to.
func firmwareConsole(interactive bool) consoleHandle {
	if !interactive {
		return consoleHandle{gateway: firmware.NewLoopback(), close: func() {}}
	}

	bridge, err := tty.NewConsole()
	if err != nil {
		return consoleHandle{gateway: firmware.NewLoopback(), close: func() {}}
	}

	return consoleHandle{gateway: bridge, close: func() { bridge.Restore() }}
}

type consoleHandle struct {
	gateway platform.Gateway
	close   func()
}
