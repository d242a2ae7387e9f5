package paging

import (
	"errors"
	"fmt"
)

// PTEFlags are the low permission bits of an Sv32 page table entry.
type PTEFlags uint32

const (
	V PTEFlags = 1 << 0 // valid
	R PTEFlags = 1 << 1 // readable
	W PTEFlags = 1 << 2 // writable
	X PTEFlags = 1 << 3 // executable
	U PTEFlags = 1 << 4 // accessible to user mode
)

func (f PTEFlags) String() string {
	s := ""
	for _, b := range []struct {
		bit  PTEFlags
		name string
	}{{V, "V"}, {R, "R"}, {W, "W"}, {X, "X"}, {U, "U"}} {
		if f&b.bit != 0 {
			s += b.name
		} else {
			s += "-"
		}
	}

	return s
}

// PTE is one Sv32 page table entry: a 10-bit flags field followed by a
// 22-bit physical page number.
type PTE uint32

// NewLeafPTE builds a valid leaf entry mapping to physical page ppn with
// the given permission flags.
func NewLeafPTE(ppn uint32, flags PTEFlags) PTE {
	return PTE(ppn<<10) | PTE(flags) | PTE(V)
}

// NewTablePTE builds a valid, non-leaf entry pointing at the level-0
// table whose physical base is base. Per Sv32, a pointer entry has V set
// and R, W and X all clear.
func NewTablePTE(base uint32) PTE {
	return PTE((base/PageSize)<<10) | PTE(V)
}

func (e PTE) Valid() bool        { return e&PTE(V) != 0 }
func (e PTE) IsLeaf() bool       { return e.Valid() && e.Flags()&(R|W|X) != 0 }
func (e PTE) PPN() uint32        { return uint32(e) >> 10 }
func (e PTE) Flags() PTEFlags    { return PTEFlags(e) & 0x1f }
func (e PTE) PhysAddr() uint32   { return e.PPN() * PageSize }

func (e PTE) String() string {
	return fmt.Sprintf("PTE{ppn=%#x flags=%s}", e.PPN(), e.Flags())
}

var (
	// ErrUnaligned is returned when a virtual or physical address
	// passed to MapPage is not page-aligned.
	ErrUnaligned = errors.New("paging: address not page-aligned")
)

// Sv32Enable is the mode bit of the paging CSR (satp) that turns Sv32
// translation on.
const Sv32Enable = uint32(1) << 31

// Satp computes the paging-CSR value that activates Sv32 translation
// rooted at the given level-1 table's physical base, per spec.md §4.3.
func Satp(level1Base uint32) uint32 {
	return Sv32Enable | (level1Base / PageSize)
}

// MapPage installs a single 4KiB mapping from vaddr to paddr in the
// two-level table rooted at level1Base, allocating a level-0 table from
// alloc if the covering level-1 slot is not yet populated. It implements
// spec.md §4.3's map_page operation exactly: compute vpn1/vpn0, walk or
// build the level-0 table, then write the leaf entry.
func MapPage(mem *Memory, alloc *Allocator, level1Base, vaddr, paddr uint32, flags PTEFlags) error {
	if vaddr%PageSize != 0 || paddr%PageSize != 0 {
		return fmt.Errorf("%w: vaddr=%#x paddr=%#x", ErrUnaligned, vaddr, paddr)
	}

	vpn1 := (vaddr >> 22) & 0x3ff
	vpn0 := (vaddr >> 12) & 0x3ff

	l1addr := level1Base + vpn1*4
	l1 := mem.PTEAt(l1addr)

	var l0Base uint32

	if !l1.Valid() {
		newTable, err := alloc.Alloc(1)
		if err != nil {
			return err
		}

		l0Base = newTable
		mem.SetPTEAt(l1addr, NewTablePTE(l0Base))
	} else {
		l0Base = l1.PhysAddr()
	}

	l0addr := l0Base + vpn0*4
	mem.SetPTEAt(l0addr, NewLeafPTE(paddr/PageSize, flags))

	return nil
}

// Translate walks the two-level table rooted at level1Base to find the
// physical address backing vaddr. It returns an error if either level's
// entry is not valid. There is no page-fault handler in this kernel; the
// READFILE and WRITEFILE calls report a translation failure to the
// calling process as a -1 return value.
func Translate(mem *Memory, level1Base, vaddr uint32) (uint32, error) {
	vpn1 := (vaddr >> 22) & 0x3ff
	vpn0 := (vaddr >> 12) & 0x3ff
	offset := vaddr & 0xfff

	l1 := mem.PTEAt(level1Base + vpn1*4)
	if !l1.Valid() {
		return 0, fmt.Errorf("paging: unmapped vaddr %#x (level-1)", vaddr)
	}

	l0 := mem.PTEAt(l1.PhysAddr() + vpn0*4)
	if !l0.Valid() {
		return 0, fmt.Errorf("paging: unmapped vaddr %#x (level-0)", vaddr)
	}

	return l0.PhysAddr() + offset, nil
}
