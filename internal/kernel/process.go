package kernel

import "fmt"

// NumProcess is the fixed size of the process table. spec.md names no
// specific bound; this is generous enough for the scheduler scenarios
// this module tests without making the process table unwieldy to print.
const NumProcess = 8

// StackSize is the size, in bytes, of every process's private kernel
// stack, per spec.md §3.
const StackSize = 8192

// ProcessState is the lifecycle state of a process-table slot.
type ProcessState uint8

const (
	Unused ProcessState = iota
	Runnable
	Exited
)

// String implements fmt.Stringer. It is written by hand in the style
// `stringer` would generate, since this module's dev tooling
// (internal/tools.go) is declared but not run as part of building.
func (s ProcessState) String() string {
	switch s {
	case Unused:
		return "UNUSED"
	case Runnable:
		return "RUNNABLE"
	case Exited:
		return "EXITED"
	default:
		return fmt.Sprintf("ProcessState(%d)", uint8(s))
	}
}

// IdlePID is the PID of the idle process. It is never a member of the
// process table and the scheduler never selects it by name; Yield falls
// back to it only when no table slot is Runnable.
const IdlePID = -1

// Process is a process control block: a private kernel stack, an owned
// page table, and the bookkeeping the scheduler needs to pick among
// runnable processes. It corresponds to spec.md §3's "Process" type.
type Process struct {
	PID   int32
	State ProcessState

	// PageTable is the physical base address of this process's Sv32
	// level-1 page table, written into the paging CSR whenever this
	// process becomes current.
	PageTable uint32

	// SavedRegs holds the twelve callee-saved integer registers
	// (s0-s11) and the return address, in the order ContextSwitch
	// saves and restores them. It is the data-level stand-in for what
	// switch_context spills to and reloads from the kernel stack.
	SavedRegs [13]uint32

	// Stack is this process's private kernel stack.
	Stack [StackSize]byte

	// Step, if set, drives one cooperative slice of a simulated user
	// program for the boot command and scheduling tests. It has no
	// counterpart in the real kernel ABI; see sched.go.
	Step ProgramStep
}

// LogValue implements slog.LogValuer so a Process prints as a compact
// group instead of dumping its 8KiB stack.
func (p *Process) LogValue() Value {
	return GroupValue(
		Any("pid", p.PID),
		Any("state", p.State),
		Any("page_table", fmt.Sprintf("%#x", p.PageTable)),
	)
}

// Table is the kernel's fixed-size process table. Slot i's process, once
// created, always has PID i+1; PIDs are never reused for a different
// slot.
type Table [NumProcess]Process
