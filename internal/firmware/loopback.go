// Package firmware provides in-process stand-ins for the OpenSBI console
// extension spec.md §4.1 names as the kernel's only firmware dependency.
// A headless boot, or a test, has no real terminal to bridge to; Loopback
// fills that role.
package firmware

import (
	"bytes"
	"sync"

	"github.com/smoynes/sv32os/internal/log"
	"github.com/smoynes/sv32os/internal/platform"
)

var _ platform.Gateway = (*Loopback)(nil)

// Loopback is an in-memory Gateway. Console output accumulates in Out;
// console input is served byte-by-byte from whatever Feed has queued.
type Loopback struct {
	mut sync.Mutex
	in  bytes.Buffer
	Out bytes.Buffer

	log *log.Logger
}

// NewLoopback returns an empty Loopback gateway.
func NewLoopback() *Loopback {
	return &Loopback{log: log.DefaultLogger()}
}

// Feed queues bytes for a future ConsoleGet to return, in order.
func (l *Loopback) Feed(b ...byte) {
	l.mut.Lock()
	defer l.mut.Unlock()
	l.in.Write(b)
}

func (l *Loopback) ConsolePut(b byte) {
	l.mut.Lock()
	defer l.mut.Unlock()
	l.Out.WriteByte(b)
}

func (l *Loopback) ConsoleGet() (byte, bool) {
	l.mut.Lock()
	defer l.mut.Unlock()

	if l.in.Len() == 0 {
		return 0, false
	}

	b, _ := l.in.ReadByte()

	return b, true
}
