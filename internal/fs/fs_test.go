package fs_test

import (
	"testing"

	"github.com/smoynes/sv32os/internal/fs"
	"github.com/smoynes/sv32os/internal/virtio"
)

func newTestDisk(t *testing.T) *virtio.Device {
	t.Helper()

	disk := virtio.New(make([]byte, fs.DiskMaxSize+4*virtio.SectorSize))
	if err := disk.Init(nil); err != nil {
		t.Fatalf("disk.Init: %v", err)
	}

	return disk
}

func TestFileSystem_EmptyDiskHasNoFiles(t *testing.T) {
	disk := newTestDisk(t)
	fsys := fs.New(disk)

	if err := fsys.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if fsys.Lookup("anything") != nil {
		t.Fatal("expected no files on a zeroed disk")
	}
}

func TestFileSystem_CreateWriteFlushReinitRoundTrips(t *testing.T) {
	disk := newTestDisk(t)
	fsys := fs.New(disk)

	if err := fsys.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	f, ok := fsys.LookupOrCreate("hello.txt")
	if !ok {
		t.Fatal("LookupOrCreate failed on an empty file table")
	}

	copy(f.Data[:], "Hi\n")
	f.Size = 3

	if err := fsys.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	reloaded := fs.New(disk)
	if err := reloaded.Init(); err != nil {
		t.Fatalf("reinit: %v", err)
	}

	got := reloaded.Lookup("hello.txt")
	if got == nil {
		t.Fatal("hello.txt missing after reinit")
	}

	if string(got.Data[:got.Size]) != "Hi\n" {
		t.Fatalf("reloaded contents = %q, want %q", got.Data[:got.Size], "Hi\n")
	}
}

func TestFileSystem_TableFullRejectsAThirdFile(t *testing.T) {
	disk := newTestDisk(t)
	fsys := fs.New(disk)

	if err := fsys.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	for i := 0; i < fs.FilesMax; i++ {
		if _, ok := fsys.LookupOrCreate(string(rune('a' + i))); !ok {
			t.Fatalf("LookupOrCreate failed for file %d of %d", i, fs.FilesMax)
		}
	}

	if _, ok := fsys.LookupOrCreate("one-too-many"); ok {
		t.Fatal("expected LookupOrCreate to fail once the file table is full")
	}
}

func TestBuildImage_RejectsOversizedFile(t *testing.T) {
	_, err := fs.BuildImage([]fs.Entry{{Name: "big", Data: make([]byte, fs.DataMax+1)}})
	if err == nil {
		t.Fatal("expected an error for a file larger than DataMax")
	}
}
