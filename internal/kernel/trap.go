package kernel

import "fmt"

// TrapCause identifies why control entered the trap vector, mirroring a
// (drastically narrowed) RISC-V scause register: this module only ever
// raises the causes it can itself generate or that its tests inject.
type TrapCause uint8

const (
	CauseECALLFromU TrapCause = iota
	CauseIllegalInstruction
	CauseLoadAccessFault
	CauseStoreAccessFault
	CauseInstructionAccessFault
)

func (c TrapCause) String() string {
	switch c {
	case CauseECALLFromU:
		return "ECALL_FROM_U"
	case CauseIllegalInstruction:
		return "ILLEGAL_INSTRUCTION"
	case CauseLoadAccessFault:
		return "LOAD_ACCESS_FAULT"
	case CauseStoreAccessFault:
		return "STORE_ACCESS_FAULT"
	case CauseInstructionAccessFault:
		return "INSTRUCTION_ACCESS_FAULT"
	default:
		return fmt.Sprintf("TrapCause(%d)", uint8(c))
	}
}

// Trap is the kernel's trap dispatcher, per spec.md §4.4 step 4: an
// ECALL from user mode is handed to the supervisor-call dispatcher and
// the saved program counter is advanced past it so the process resumes
// after the ecall instruction. Every other cause is unexpected for this
// kernel — there is no page-fault handler, no demand paging, no signal
// delivery — and is fatal.
func (k *Kernel) Trap(p *Process, frame *TrapFrame) {
	switch frame.Cause {
	case CauseECALLFromU:
		k.Syscall(p, frame)
		frame.SEPC += 4
	default:
		Fatal(k.log, "unexpected trap: cause=%s sepc=%#x stval=%#x pid=%d",
			frame.Cause, frame.SEPC, frame.Val, p.PID)
	}
}
