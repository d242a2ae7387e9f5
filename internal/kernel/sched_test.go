package kernel_test

import (
	"testing"

	"github.com/smoynes/sv32os/internal/firmware"
	"github.com/smoynes/sv32os/internal/kernel"
	"github.com/smoynes/sv32os/internal/paging"
	"github.com/smoynes/sv32os/internal/virtio"
)

func newTestKernel(t *testing.T) *kernel.Kernel {
	t.Helper()

	const base = 0x8000_0000
	mem := paging.NewMemory(base, make([]byte, 256*paging.PageSize))
	alloc := paging.NewAllocator(mem, base)
	disk := virtio.New(make([]byte, 64*virtio.SectorSize))

	if err := disk.Init(alloc); err != nil {
		t.Fatalf("disk.Init: %v", err)
	}

	return kernel.New(mem, alloc, firmware.NewLoopback(), disk, nil)
}

func TestYield_RoundRobinAcrossThreeProcesses_SkipsExited(t *testing.T) {
	k := newTestKernel(t)

	p1 := k.CreateProcess()
	p2 := k.CreateProcess()
	p3 := k.CreateProcess()

	p2.State = kernel.Exited

	if got := k.Current().PID; got != kernel.IdlePID {
		t.Fatalf("initial current = %d, want idle", got)
	}

	k.Yield()
	if k.Current() != p1 {
		t.Fatalf("after first yield, current pid = %d, want %d", k.Current().PID, p1.PID)
	}

	k.Yield()
	if k.Current() != p3 {
		t.Fatalf("second yield should skip exited p2: current pid = %d, want %d", k.Current().PID, p3.PID)
	}

	k.Yield()
	if k.Current() != p1 {
		t.Fatalf("third yield should wrap back to p1: current pid = %d, want %d", k.Current().PID, p1.PID)
	}
}

func TestYield_SwitchingToCurrentProcessIsNoop(t *testing.T) {
	k := newTestKernel(t)
	p1 := k.CreateProcess()

	k.Yield()
	if k.Current() != p1 {
		t.Fatalf("current = %d, want %d", k.Current().PID, p1.PID)
	}

	before := k.Satp()
	k.Yield() // only p1 is runnable; Next() should return p1 again
	if k.Current() != p1 || k.Satp() != before {
		t.Fatal("yielding with only one runnable process should be a no-op")
	}
}

func TestYield_FallsBackToIdleWhenNothingRunnable(t *testing.T) {
	k := newTestKernel(t)

	p1 := k.CreateProcess()
	p1.State = kernel.Exited

	k.Yield()
	if got := k.Current().PID; got != kernel.IdlePID {
		t.Fatalf("current pid = %d, want idle (%d)", got, kernel.IdlePID)
	}
}

func TestContextSwitch_ProcessResumesWithSameCalleeSavedRegisters(t *testing.T) {
	k := newTestKernel(t)

	a := k.CreateProcess()
	b := k.CreateProcess()

	want := [13]uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	a.SavedRegs = want

	k.Yield() // idle -> a
	k.Yield() // a -> b

	b.SavedRegs = [13]uint32{99, 99, 99, 99, 99, 99, 99, 99, 99, 99, 99, 99, 99}

	k.Yield() // b -> a

	got := kernel.ContextSwitch(b, a)
	if got != want {
		t.Fatalf("resumed regs = %v, want %v", got, want)
	}
}
