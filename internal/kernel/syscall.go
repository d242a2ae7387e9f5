package kernel

import "fmt"

// SyscallNumber identifies a supervisor call. Call number arrives in a3;
// arguments arrive in a0-a2; the return value is written back into a0,
// per spec.md §4.6.
type SyscallNumber uint32

const (
	SyscallExit SyscallNumber = iota + 1
	SyscallPutchar
	SyscallGetchar
	SyscallReadFile
	SyscallWriteFile
)

func (n SyscallNumber) String() string {
	switch n {
	case SyscallExit:
		return "SYS_EXIT"
	case SyscallPutchar:
		return "SYS_PUTCHAR"
	case SyscallGetchar:
		return "SYS_GETCHAR"
	case SyscallReadFile:
		return "SYS_READFILE"
	case SyscallWriteFile:
		return "SYS_WRITEFILE"
	default:
		return fmt.Sprintf("SyscallNumber(%d)", uint32(n))
	}
}

// An unrecognized call number is fatal: Syscall's default case raises a
// KernelPanic carrying the number, since it indicates a corrupt user
// program or a kernel/user ABI mismatch, not a recoverable condition.

// Syscall dispatches one supervisor call against the fixed menu spec.md
// §4.6 names. It is called from Trap once a trap's cause has been
// identified as an ECALL from user mode.
func (k *Kernel) Syscall(p *Process, frame *TrapFrame) {
	switch SyscallNumber(frame.A3) {
	case SyscallExit:
		k.log.Info("process exited", "pid", p.PID, "code", int32(frame.A0))
		p.State = Exited
		k.Yield()

	case SyscallPutchar:
		k.Console.ConsolePut(byte(frame.A0))
		frame.A0 = 0

	case SyscallGetchar:
		for {
			if b, ok := k.Console.ConsoleGet(); ok {
				frame.A0 = uint32(int32(b))
				return
			}

			k.Yield()
		}

	case SyscallReadFile:
		k.sysReadFile(p, frame)

	case SyscallWriteFile:
		k.sysWriteFile(p, frame)

	default:
		Fatal(k.log, "unknown syscall %d from pid %d", frame.A3, p.PID)
	}
}
