package paging_test

import (
	"testing"

	"github.com/smoynes/sv32os/internal/paging"
)

func newTestMemory(size uint32) (*paging.Memory, uint32) {
	const base = 0x8000_0000
	return paging.NewMemory(base, make([]byte, size)), base
}

func TestAllocator_SequentialAllocationsAreContiguousAndZeroed(t *testing.T) {
	mem, base := newTestMemory(4 * paging.PageSize)
	alloc := paging.NewAllocator(mem, base)

	a, err := alloc.Alloc(1)
	if err != nil {
		t.Fatalf("Alloc(1): %v", err)
	}

	if a != base {
		t.Fatalf("first allocation = %#x, want %#x", a, base)
	}

	b, err := alloc.Alloc(1)
	if err != nil {
		t.Fatalf("Alloc(1): %v", err)
	}

	if b != a+paging.PageSize {
		t.Fatalf("second allocation = %#x, want %#x", b, a+paging.PageSize)
	}

	pte := mem.PTEAt(b)
	if pte != 0 {
		t.Fatalf("freshly allocated page not zeroed: PTE read back %#x", pte)
	}
}

func TestAllocator_ExhaustionReturnsError(t *testing.T) {
	mem, base := newTestMemory(1 * paging.PageSize)
	alloc := paging.NewAllocator(mem, base)

	if _, err := alloc.Alloc(1); err != nil {
		t.Fatalf("Alloc(1): %v", err)
	}

	if _, err := alloc.Alloc(1); err == nil {
		t.Fatal("expected ErrOutOfMemory once the window is exhausted")
	}
}
