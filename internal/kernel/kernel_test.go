package kernel_test

import (
	"testing"

	"github.com/smoynes/sv32os/internal/kernel"
)

func TestRun_DrivesProcessesUntilAllExit(t *testing.T) {
	k := newTestKernel(t)

	p1 := k.CreateProcess()
	p2 := k.CreateProcess()

	ticks := map[int32]int{}

	p1.Step = func(p *kernel.Process, k *kernel.Kernel) bool {
		ticks[p.PID]++
		return ticks[p.PID] < 2
	}
	p2.Step = func(p *kernel.Process, k *kernel.Kernel) bool {
		ticks[p.PID]++
		return ticks[p.PID] < 3
	}

	k.Run(10)

	if ticks[p1.PID] != 2 || ticks[p2.PID] != 3 {
		t.Fatalf("ticks = %v, want p1=2 p2=3", ticks)
	}

	if p1.State != kernel.Exited || p2.State != kernel.Exited {
		t.Fatalf("states = %s, %s, want both EXITED", p1.State, p2.State)
	}
}

func TestRun_StopsEarlyOnceNothingIsLive(t *testing.T) {
	k := newTestKernel(t)

	p := k.CreateProcess()
	calls := 0

	p.Step = func(*kernel.Process, *kernel.Kernel) bool {
		calls++
		return false
	}

	k.Run(1000)

	if calls != 1 {
		t.Fatalf("Step called %d times, want 1", calls)
	}
}
