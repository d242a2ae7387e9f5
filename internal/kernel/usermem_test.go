package kernel_test

import (
	"testing"

	"github.com/smoynes/sv32os/internal/firmware"
	"github.com/smoynes/sv32os/internal/fs"
	"github.com/smoynes/sv32os/internal/kernel"
	"github.com/smoynes/sv32os/internal/paging"
	"github.com/smoynes/sv32os/internal/virtio"
)

func TestReadWriteFile_SurvivesFlushAndReinit(t *testing.T) {
	const base = 0x8000_0000

	mem := paging.NewMemory(base, make([]byte, 256*paging.PageSize))
	alloc := paging.NewAllocator(mem, base)
	disk := virtio.New(make([]byte, 64*virtio.SectorSize))

	if err := disk.Init(alloc); err != nil {
		t.Fatalf("disk.Init: %v", err)
	}

	fsys := fs.New(disk)
	if err := fsys.Init(); err != nil {
		t.Fatalf("fs.Init: %v", err)
	}

	k := kernel.New(mem, alloc, firmware.NewLoopback(), disk, fsys)
	p := k.CreateProcess()

	page, err := alloc.Alloc(1)
	if err != nil {
		t.Fatalf("allocating scratch page: %v", err)
	}

	const vaddr = 0x2000_0000

	if err := k.MapPage(p, vaddr, page, paging.R|paging.W); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	mem.WriteAt(page, append([]byte("hello.txt"), 0))
	mem.WriteAt(page+32, []byte("Hi\n"))

	writeFrame := &kernel.TrapFrame{
		A0: vaddr,
		A1: vaddr + 32,
		A2: 3,
		A3: uint32(kernel.SyscallWriteFile),
	}
	k.Syscall(p, writeFrame)

	if writeFrame.A0 != 3 {
		t.Fatalf("WRITEFILE returned %d, want 3", int32(writeFrame.A0))
	}

	if err := fsys.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded := fs.New(disk)
	if err := reloaded.Init(); err != nil {
		t.Fatalf("reinit: %v", err)
	}

	f := reloaded.Lookup("hello.txt")
	if f == nil {
		t.Fatal("hello.txt did not survive flush + reinit")
	}

	if got := string(f.Data[:f.Size]); got != "Hi\n" {
		t.Fatalf("reloaded file contents = %q, want %q", got, "Hi\n")
	}

	k2 := kernel.New(mem, alloc, firmware.NewLoopback(), disk, reloaded)
	p2 := k2.CreateProcess()

	readPage, err := alloc.Alloc(1)
	if err != nil {
		t.Fatalf("allocating read buffer page: %v", err)
	}

	const readVaddr = 0x2000_1000

	if err := k2.MapPage(p2, readVaddr, readPage, paging.R|paging.W); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	mem.WriteAt(readPage, append([]byte("hello.txt"), 0))

	readFrame := &kernel.TrapFrame{
		A0: readVaddr,
		A1: readVaddr + 32,
		A2: 16,
		A3: uint32(kernel.SyscallReadFile),
	}
	k2.Syscall(p2, readFrame)

	if readFrame.A0 != 3 {
		t.Fatalf("READFILE returned %d, want 3", int32(readFrame.A0))
	}

	got := make([]byte, 3)
	mem.ReadAt(got, readPage+32)

	if string(got) != "Hi\n" {
		t.Fatalf("read buffer = %q, want %q", got, "Hi\n")
	}
}

func TestReadFile_MissingFileReturnsNegativeOne(t *testing.T) {
	const base = 0x8000_0000

	mem := paging.NewMemory(base, make([]byte, 64*paging.PageSize))
	alloc := paging.NewAllocator(mem, base)
	disk := virtio.New(make([]byte, 64*virtio.SectorSize))

	if err := disk.Init(alloc); err != nil {
		t.Fatalf("disk.Init: %v", err)
	}

	fsys := fs.New(disk)
	if err := fsys.Init(); err != nil {
		t.Fatalf("fs.Init: %v", err)
	}

	k := kernel.New(mem, alloc, firmware.NewLoopback(), disk, fsys)
	p := k.CreateProcess()

	page, err := alloc.Alloc(1)
	if err != nil {
		t.Fatalf("allocating scratch page: %v", err)
	}

	const vaddr = 0x3000_0000
	if err := k.MapPage(p, vaddr, page, paging.R|paging.W); err != nil {
		t.Fatalf("MapPage: %v", err)
	}

	mem.WriteAt(page, append([]byte("nope.txt"), 0))

	frame := &kernel.TrapFrame{A0: vaddr, A1: vaddr + 32, A2: 16, A3: uint32(kernel.SyscallReadFile)}
	k.Syscall(p, frame)

	if int32(frame.A0) != -1 {
		t.Fatalf("READFILE of a missing file returned %d, want -1", int32(frame.A0))
	}
}
