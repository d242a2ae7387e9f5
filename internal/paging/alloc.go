// Package paging implements the two-level Sv32 page tables and the bump
// allocator described in spec.md §§4.2-4.3. There is no paging out, no
// reference counting, and no free list: once a page is allocated it is
// allocated for the lifetime of the kernel.
package paging

import (
	"encoding/binary"
	"errors"
)

// PageSize is the Sv32 page size in bytes.
const PageSize = 4096

// ErrOutOfMemory is returned when an allocation would exceed the
// allocator's RAM window. Callers in this module treat it as fatal, per
// spec.md §7.
var ErrOutOfMemory = errors.New("paging: out of memory")

// Allocator is a bump allocator carving zero-filled, page-aligned pages
// out of a contiguous window of free RAM, per spec.md §4.2. It shares
// its backing bytes with a Memory so that page tables it allocates are
// directly addressable by physical address.
type Allocator struct {
	mem    *Memory
	base   uint32
	limit  uint32
	cursor uint32
}

// NewAllocator returns an Allocator that carves pages from mem starting
// at base, bounded by the extent of mem's backing RAM.
func NewAllocator(mem *Memory, base uint32) *Allocator {
	return &Allocator{
		mem:   mem,
		base:  base,
		limit: mem.base + uint32(len(mem.ram)),
	}
}

// Alloc carves n contiguous, zero-filled pages out of the allocator's
// window and returns their physical base address. It never frees: a
// second call never returns an address Alloc has already handed out.
func (a *Allocator) Alloc(n int) (uint32, error) {
	need := uint32(n) * PageSize
	addr := a.base + a.cursor

	if addr+need > a.limit {
		return 0, ErrOutOfMemory
	}

	region := a.mem.slice(addr, need)
	for i := range region {
		region[i] = 0
	}

	a.cursor += need

	return addr, nil
}

// Memory models the machine's physical RAM as a single contiguous byte
// slice addressed by physical address. It is the minimum abstraction
// needed for page tables to address other page tables in place, the way
// Sv32 requires, without a full bus/MMU simulation.
type Memory struct {
	base uint32
	ram  []byte
}

// NewMemory wraps ram as the physical address range [base, base+len(ram)).
func NewMemory(base uint32, ram []byte) *Memory {
	return &Memory{base: base, ram: ram}
}

func (m *Memory) slice(paddr, n uint32) []byte {
	off := paddr - m.base
	return m.ram[off : off+n]
}

// PTEAt reads the page table entry stored at the given physical address.
func (m *Memory) PTEAt(paddr uint32) PTE {
	return PTE(binary.LittleEndian.Uint32(m.slice(paddr, 4)))
}

// SetPTEAt writes a page table entry at the given physical address.
func (m *Memory) SetPTEAt(paddr uint32, pte PTE) {
	binary.LittleEndian.PutUint32(m.slice(paddr, 4), uint32(pte))
}

// ReadAt copies n bytes from physical address paddr into dst.
func (m *Memory) ReadAt(dst []byte, paddr uint32) {
	copy(dst, m.slice(paddr, uint32(len(dst))))
}

// WriteAt copies src into physical address paddr.
func (m *Memory) WriteAt(paddr uint32, src []byte) {
	copy(m.slice(paddr, uint32(len(src))), src)
}
