package kernel

import (
	"fmt"

	"github.com/smoynes/sv32os/internal/fs"
	"github.com/smoynes/sv32os/internal/log"
	"github.com/smoynes/sv32os/internal/paging"
	"github.com/smoynes/sv32os/internal/platform"
	"github.com/smoynes/sv32os/internal/virtio"
)

// Kernel wires together every piece spec.md §2 names: the process
// table, the page-table machinery, the firmware gateway, the block
// device, and the file system built on top of it.
type Kernel struct {
	procs   Table
	idle    Process
	current *Process
	satp    uint32

	Mem     *paging.Memory
	Pager   *paging.Allocator
	Console platform.Gateway
	Disk    *virtio.Device
	FS      *fs.FileSystem

	log *log.Logger
}

// New returns a Kernel with its idle process current and nothing else
// yet running. mem and pager back every process's page table; console,
// disk and filesystem may be nil for tests that only exercise the
// scheduler or trap dispatcher.
func New(mem *paging.Memory, pager *paging.Allocator, console platform.Gateway, disk *virtio.Device, filesystem *fs.FileSystem) *Kernel {
	k := &Kernel{
		Mem:     mem,
		Pager:   pager,
		Console: console,
		Disk:    disk,
		FS:      filesystem,
		log:     log.DefaultLogger(),
	}

	k.idle.PID = IdlePID
	k.current = &k.idle

	return k
}

// WithLogger overrides the kernel's logger. It satisfies the
// log.Loggable convention the rest of this module's teacher-derived
// packages follow.
func (k *Kernel) WithLogger(l *log.Logger) { k.log = l }

// Satp returns the paging-CSR value the kernel would have written for
// the currently running process, for tests and logging.
func (k *Kernel) Satp() uint32 { return k.satp }

// CreateProcess allocates a free process-table slot, gives it a fresh
// level-1 page table, and marks it Runnable. It is fatal (per spec.md
// §7) if the table is full, since this kernel never reclaims slots.
func (k *Kernel) CreateProcess() *Process {
	for i := range k.procs {
		if k.procs[i].State == Unused {
			p := &k.procs[i]
			p.PID = int32(i) + 1

			pt, err := k.Pager.Alloc(1)
			if err != nil {
				Fatal(k.log, "allocating page table for new process: %v", err)
			}

			p.PageTable = pt
			p.State = Runnable

			k.log.Info("process created", "pid", p.PID, "page_table", fmt.Sprintf("%#x", pt))

			return p
		}
	}

	Fatal(k.log, "process table exhausted (max %d)", NumProcess)

	return nil // unreachable: Fatal panics
}

// MapPage installs a single page mapping in p's address space, via
// paging.MapPage, using the kernel's allocator for any intermediate
// level-0 table it needs. A misaligned address or an exhausted allocator
// is fatal.
func (k *Kernel) MapPage(p *Process, vaddr, paddr uint32, flags paging.PTEFlags) error {
	if err := paging.MapPage(k.Mem, k.Pager, p.PageTable, vaddr, paddr, flags); err != nil {
		Fatal(k.log, "mapping %#x -> %#x for pid %d: %v", vaddr, paddr, p.PID, err)
	}

	return nil
}

// Run drives the kernel's processes cooperatively until every one has
// exited or steps is exhausted, whichever comes first. It exists for the
// boot command's demo and for scheduling tests; the kernel's own
// dispatch logic (Trap, Syscall, Yield) never calls it.
func (k *Kernel) Run(steps int) {
	for i := 0; i < steps; i++ {
		live := false

		for j := range k.procs {
			p := &k.procs[j]
			if p.State != Runnable || p.Step == nil {
				continue
			}

			live = true
			k.current = p
			k.satp = paging.Satp(p.PageTable)

			if !p.Step(p, k) {
				p.State = Exited
			}
		}

		if !live {
			return
		}

		k.Yield()
	}
}
