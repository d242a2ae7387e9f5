package kernel

import (
	"github.com/smoynes/sv32os/internal/fs"
	"github.com/smoynes/sv32os/internal/paging"
)

// usermem.go implements the READFILE and WRITEFILE supervisor calls,
// which are the only ones that need to move bytes between a process's
// own virtual address space and the kernel. Buffers are not required to
// fit in a single page; translate walks the page table again whenever a
// copy crosses a page boundary.
//
// A failed translation is reported to the caller as a -1 return value,
// not a fatal trap: spec.md §4.6 treats a bad user pointer as the
// calling process's problem, unlike the trap causes this kernel does
// treat as fatal.
const errReturn = ^uint32(0) // -1, sign-extended into a0

func (k *Kernel) translate(p *Process, vaddr uint32) (uint32, error) {
	return paging.Translate(k.Mem, p.PageTable, vaddr)
}

func (k *Kernel) copyIn(p *Process, vaddr uint32, n int) ([]byte, error) {
	out := make([]byte, n)

	for i := 0; i < n; {
		paddr, err := k.translate(p, vaddr+uint32(i))
		if err != nil {
			return nil, err
		}

		chunk := int(paging.PageSize - paddr%paging.PageSize)
		if chunk > n-i {
			chunk = n - i
		}

		k.Mem.ReadAt(out[i:i+chunk], paddr)
		i += chunk
	}

	return out, nil
}

func (k *Kernel) copyOut(p *Process, vaddr uint32, data []byte) error {
	n := len(data)

	for i := 0; i < n; {
		paddr, err := k.translate(p, vaddr+uint32(i))
		if err != nil {
			return err
		}

		chunk := int(paging.PageSize - paddr%paging.PageSize)
		if chunk > n-i {
			chunk = n - i
		}

		k.Mem.WriteAt(paddr, data[i:i+chunk])
		i += chunk
	}

	return nil
}

func (k *Kernel) copyInCString(p *Process, vaddr uint32, max int) (string, error) {
	buf := make([]byte, 0, max)

	for i := 0; i < max; i++ {
		paddr, err := k.translate(p, vaddr+uint32(i))
		if err != nil {
			return "", err
		}

		b := make([]byte, 1)
		k.Mem.ReadAt(b, paddr)

		if b[0] == 0 {
			break
		}

		buf = append(buf, b[0])
	}

	return string(buf), nil
}

// sysReadFile implements READFILE(name_ptr a0, buf_ptr a1, len a2),
// returning in a0 the number of bytes copied, or -1 on a missing file or
// bad pointer.
func (k *Kernel) sysReadFile(p *Process, frame *TrapFrame) {
	name, err := k.copyInCString(p, frame.A0, fs.NameMax)
	if err != nil {
		frame.A0 = errReturn
		return
	}

	f := k.FS.Lookup(name)
	if f == nil {
		frame.A0 = errReturn
		return
	}

	n := int(frame.A2)
	if n > int(f.Size) {
		n = int(f.Size)
	}

	if err := k.copyOut(p, frame.A1, f.Data[:n]); err != nil {
		frame.A0 = errReturn
		return
	}

	frame.A0 = uint32(n)
}

// sysWriteFile implements WRITEFILE(name_ptr a0, buf_ptr a1, len a2),
// creating the file if it does not exist. It updates the in-memory file
// table only; a process must still cause a flush (see spec.md §4.8) for
// the write to survive a reinit.
func (k *Kernel) sysWriteFile(p *Process, frame *TrapFrame) {
	name, err := k.copyInCString(p, frame.A0, fs.NameMax)
	if err != nil {
		frame.A0 = errReturn
		return
	}

	f, ok := k.FS.LookupOrCreate(name)
	if !ok {
		frame.A0 = errReturn
		return
	}

	n := int(frame.A2)
	if n > fs.DataMax {
		n = fs.DataMax
	}

	data, err := k.copyIn(p, frame.A1, n)
	if err != nil {
		frame.A0 = errReturn
		return
	}

	copy(f.Data[:], data)
	f.Size = uint32(n)

	frame.A0 = uint32(n)
}
