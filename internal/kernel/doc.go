/*
Package kernel implements the supervisor core of sv32os: process control
blocks, the trap vector's dispatch logic, the cooperative scheduler, and the
supervisor-call dispatcher described in spec.md §§4.4-4.6.

# Processes #

A fixed-size table of [NumProcess] slots holds every process the kernel
will ever run; there is no dynamic process creation or destruction beyond
marking a slot Exited. Each process owns a private kernel stack and a
page table; there is no demand paging or address-space sharing.

# Traps #

Since this module simulates the kernel rather than executing real RISC-V
instructions, trap entry/exit is modeled as an explicit [TrapFrame] value
and a [Kernel.Trap] call rather than inline assembly: what a real trap
vector would save onto a kernel stack, this module represents as fields
on a struct, in the documented order spec.md §4.4 requires. See
SPEC_FULL.md §4.4 for the rationale.

# Scheduling #

[Kernel.Yield] implements the round-robin selection spec.md §4.5
describes exactly: scanning forward from the current process's slot,
picking the idle process if nothing else is runnable, and treating a
switch to the already-current process as a no-op.
*/
package kernel
