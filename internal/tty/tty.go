// Package tty bridges the kernel's platform.Gateway to a real host
// terminal, using raw mode so the console behaves like a serial line
// rather than a line-buffered shell.
package tty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/smoynes/sv32os/internal/platform"
)

var _ platform.Gateway = (*Console)(nil)

// ErrNoTTY is returned if standard input is not a terminal.
var ErrNoTTY error = errors.New("console: not a TTY")

// Console is a platform.Gateway backed by the real terminal: bytes typed
// at the host are queued for ConsoleGet, and ConsolePut writes straight
// to the host's stdout.
type Console struct {
	in  *os.File
	out *os.File
	fd  int

	state *term.State

	mut   sync.Mutex
	queue []byte

	cancel context.CancelFunc
}

// NewConsole puts the current process's stdin into raw, non-blocking
// mode and starts a background reader feeding ConsoleGet. Callers must
// call Restore to return the terminal to its original state.
func NewConsole() (*Console, error) {
	fd := int(os.Stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTTY, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Console{
		in:     os.Stdin,
		out:    os.Stdout,
		fd:     fd,
		state:  saved,
		cancel: cancel,
	}

	if err := c.setTerminalParams(1, 0); err != nil {
		cancel()
		_ = term.Restore(fd, saved)

		return nil, err
	}

	go c.readTerminal(ctx)

	return c, nil
}

// ConsolePut writes one byte to the host terminal.
func (c *Console) ConsolePut(b byte) {
	_, _ = c.out.Write([]byte{b})
}

// ConsoleGet returns the next queued byte from the host terminal, if
// any, without blocking.
func (c *Console) ConsoleGet() (byte, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	if len(c.queue) == 0 {
		return 0, false
	}

	b := c.queue[0]
	c.queue = c.queue[1:]

	return b, true
}

// Restore cancels the background reader and returns the terminal to its
// original state.
func (c *Console) Restore() {
	c.cancel()
	_ = c.in.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = c.in.SetReadDeadline(time.Time{})

	return nil
}

func (c *Console) readTerminal(ctx context.Context) {
	buf := bufio.NewReader(c.in)

	_ = syscall.SetNonblock(c.fd, false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			b, err := buf.ReadByte()
			if err != nil {
				return
			}

			c.mut.Lock()
			c.queue = append(c.queue, b)
			c.mut.Unlock()
		}
	}
}
