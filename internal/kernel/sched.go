package kernel

import "github.com/smoynes/sv32os/internal/paging"

// ProgramStep drives one cooperative slice of a simulated user program.
// It returns false when the process has finished running (having
// already, if it wished to exit, called through Syscall with
// SyscallExit). This hook exists only for the boot command's demo loop
// and for scheduler tests that want runnable processes without a real
// RISC-V instruction stream to execute; the kernel's own scheduling and
// trap-dispatch logic never calls it directly.
type ProgramStep func(p *Process, k *Kernel) bool

// floorMod returns a mod n with a result in [0, n), matching the
// mathematical modulo spec.md's scheduling algorithm assumes (Go's %
// returns a negative result for a negative dividend).
func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}

	return m
}

// Next selects the process the scheduler would switch to next, without
// performing the switch. It scans the table round-robin starting at the
// slot after the current process's own (slot i holds PID i+1, so that is
// slot current.pid mod N; for the idle process, PID -1, it is the last
// slot), and returns the first slot that is Runnable with a positive
// PID. If none is found, the idle process is returned.
func (k *Kernel) Next() *Process {
	n := len(k.procs)
	start := floorMod(int(k.current.PID), n)

	for i := 0; i < n; i++ {
		idx := floorMod(start+i, n)
		p := &k.procs[idx]

		if p.State == Runnable && p.PID > 0 {
			return p
		}
	}

	return &k.idle
}

// Yield switches away from the current process to whatever Next
// selects. Switching to the already-current process is a no-op, per
// spec.md §4.5. Yield updates the paging root the MMU would use (see
// Kernel.satp) and performs the register half of the switch via
// ContextSwitch.
func (k *Kernel) Yield() {
	next := k.Next()
	prev := k.current

	if next == prev {
		return
	}

	k.log.Debug("yield", "from", prev.PID, "to", next.PID)

	ContextSwitch(prev, next)

	k.current = next
	k.satp = paging.Satp(next.PageTable)
}

// Current returns the process the scheduler is presently running.
func (k *Kernel) Current() *Process { return k.current }
