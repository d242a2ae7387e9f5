package kernel

import "fmt"

// TrapFrame is the fixed set of integer registers the trap vector saves
// onto a process's kernel stack, per spec.md §4.4. The field order
// matches the order a real vector would write them: x1, then x3 through
// x31 in ascending register-number order, with the faulting stack
// pointer (x2) saved last because it arrives by way of the scratch CSR
// swap rather than a direct register read. SEPC, SCAUSE and STVAL are
// carried alongside the frame proper; on real hardware they are read
// from CSRs at entry rather than stored in the frame itself.
type TrapFrame struct {
	RA                             uint32 // x1
	GP, TP                         uint32 // x3, x4
	T0, T1, T2                     uint32 // x5-x7
	S0, S1                         uint32 // x8, x9
	A0, A1, A2, A3, A4, A5, A6, A7 uint32 // x10-x17, a0-a7
	S2, S3, S4, S5, S6, S7, S8, S9, S10, S11 uint32 // x18-x27
	T3, T4, T5, T6                 uint32 // x28-x31
	SP                             uint32 // x2, saved last from sscratch

	// SEPC is the trapping instruction's address. Trap advances it
	// past the ecall on a handled supervisor call, per spec.md §4.4
	// step 4 and §8's syscall-dispatch scenario.
	SEPC uint32

	// Cause and Val mirror scause/stval. Cause selects Trap's
	// dispatch; Val carries a faulting address for the trap types
	// this module treats as fatal.
	Cause TrapCause
	Val   uint32
}

// LogValue implements slog.LogValuer.
func (f *TrapFrame) LogValue() Value {
	return GroupValue(
		Any("a0", f.A0),
		Any("a1", f.A1),
		Any("a2", f.A2),
		Any("a3", f.A3),
		Any("sepc", fmt.Sprintf("%#x", f.SEPC)),
		Any("cause", f.Cause),
	)
}
