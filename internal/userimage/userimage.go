// Package userimage builds the tiny, fixed user-mode programs this
// module's demo boot command runs. There is no RISC-V
// assembler or compiler in scope (spec.md §1 names the user-space
// runtime only by the syscall interface it uses); a "program" here is a
// [github.com/smoynes/sv32os/internal/kernel.ProgramStep] closure that
// raises the same traps a compiled ecall sequence would, one
// supervisor call per cooperative slice.
package userimage

import "github.com/smoynes/sv32os/internal/kernel"

// Echo returns a program that PUTCHARs one byte of s per cooperative
// slice, then exits.
func Echo(s string) kernel.ProgramStep {
	msg := []byte(s)
	i := 0

	return func(p *kernel.Process, k *kernel.Kernel) bool {
		if i >= len(msg) {
			k.Trap(p, &kernel.TrapFrame{A3: uint32(kernel.SyscallExit), Cause: kernel.CauseECALLFromU})
			return false
		}

		k.Trap(p, &kernel.TrapFrame{
			A0:    uint32(msg[i]),
			A3:    uint32(kernel.SyscallPutchar),
			Cause: kernel.CauseECALLFromU,
		})
		i++

		return true
	}
}

// FileWriter returns a program that WRITEFILEs data under name, reading
// both the name and the data from the process's own mapped memory at
// nameVaddr and dataVaddr, then exits. The caller is responsible for
// mapping those addresses before the program runs.
func FileWriter(nameVaddr, dataVaddr uint32, dataLen uint32) kernel.ProgramStep {
	done := false

	return func(p *kernel.Process, k *kernel.Kernel) bool {
		if done {
			k.Trap(p, &kernel.TrapFrame{A3: uint32(kernel.SyscallExit), Cause: kernel.CauseECALLFromU})
			return false
		}

		k.Trap(p, &kernel.TrapFrame{
			A0:    nameVaddr,
			A1:    dataVaddr,
			A2:    dataLen,
			A3:    uint32(kernel.SyscallWriteFile),
			Cause: kernel.CauseECALLFromU,
		})
		done = true

		return true
	}
}
