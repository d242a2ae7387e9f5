// Package fs implements the flat, tar-backed file system spec.md §4.8
// describes: a bounded, fixed-size in-memory file table loaded from (and
// explicitly flushed back to) the start of the block device. There are
// no directories, no multi-block files, and no on-demand paging of file
// contents — every open file's bytes live in RAM for as long as the
// kernel runs.
package fs

import (
	"errors"
	"fmt"

	"github.com/smoynes/sv32os/internal/log"
	"github.com/smoynes/sv32os/internal/virtio"
)

const (
	NameMax  = 100
	DataMax  = 1024
	FilesMax = 2

	sectorSize = virtio.SectorSize

	// fileRecordSize bounds how many sectors Init reads and Flush
	// writes; it is not a literal on-disk layout (files are archived
	// as ustar entries, not as packed structs), just a generous upper
	// bound on one file's header-plus-data footprint.
	fileRecordSize = headerSize + DataMax
)

// DiskMaxSize is the size, rounded up to a whole number of sectors, that
// Init reads and Flush writes, per spec.md §4.8.
const DiskMaxSize = ((FilesMax*fileRecordSize + sectorSize - 1) / sectorSize) * sectorSize

// ErrDiskIO wraps an error reading or writing the backing device.
var ErrDiskIO = errors.New("fs: disk I/O")

// File is one entry in the fixed-size file table.
type File struct {
	InUse bool
	Name  [NameMax]byte
	Data  [DataMax]byte
	Size  uint32
}

// NameString returns the file's NUL-terminated name as a Go string.
func (f *File) NameString() string { return cStr(f.Name[:]) }

// FileSystem is the kernel's file system state: the file table plus the
// block device it is loaded from and flushed to.
type FileSystem struct {
	files [FilesMax]File
	disk  *virtio.Device
	log   *log.Logger
}

// New returns a FileSystem bound to disk. Init must be called before any
// lookup will see files from the disk image.
func New(disk *virtio.Device) *FileSystem {
	return &FileSystem{disk: disk, log: log.DefaultLogger()}
}

// Init reads DiskMaxSize bytes from the start of the device and loads
// every ustar entry it finds into the file table, per spec.md §4.8's
// fs_init. An empty name ends the archive; a header whose magic isn't
// "ustar" is skipped rather than treated as an error, since padding
// blocks between tools' tar writers are common. Loading stops, with a
// warning, if more entries are found than the table holds.
func (fsys *FileSystem) Init() error {
	buf := make([]byte, DiskMaxSize)

	for sec := 0; sec < DiskMaxSize/sectorSize; sec++ {
		if err := fsys.disk.ReadSector(uint64(sec), buf[sec*sectorSize:(sec+1)*sectorSize]); err != nil {
			return fmt.Errorf("%w: %w", ErrDiskIO, err)
		}
	}

	off := 0
	slot := 0

	for off+headerSize <= len(buf) {
		var h tarHeader
		copy(h.raw[:], buf[off:off+headerSize])

		name := h.name()
		if name == "" {
			break
		}

		if h.magic() != "ustar" {
			off += headerSize
			continue
		}

		size, err := h.size()
		if err != nil {
			return err
		}

		if slot >= FilesMax {
			fsys.log.Warn("fs: file table full, stopping load", "name", name)
			break
		}

		f := &fsys.files[slot]
		*f = File{InUse: true}
		copy(f.Name[:], name)

		dataSize := size
		if dataSize > DataMax {
			dataSize = DataMax
		}

		copy(f.Data[:], buf[off+headerSize:off+headerSize+int(dataSize)])
		f.Size = dataSize
		slot++

		off += headerSize + roundUp512(int(size))
	}

	return nil
}

// Lookup returns the named file, or nil if it does not exist.
func (fsys *FileSystem) Lookup(name string) *File {
	for i := range fsys.files {
		if fsys.files[i].InUse && fsys.files[i].NameString() == name {
			return &fsys.files[i]
		}
	}

	return nil
}

// LookupOrCreate returns the named file, creating it in the first free
// slot if it does not already exist. ok is false if the file does not
// exist and the table is full.
func (fsys *FileSystem) LookupOrCreate(name string) (f *File, ok bool) {
	if f := fsys.Lookup(name); f != nil {
		return f, true
	}

	for i := range fsys.files {
		if !fsys.files[i].InUse {
			f := &fsys.files[i]
			*f = File{InUse: true}
			copy(f.Name[:], name)

			return f, true
		}
	}

	return nil, false
}

// Flush serializes every in-use file back into a ustar image and writes
// it to the start of the device, per spec.md §4.8's fs_flush.
func (fsys *FileSystem) Flush() error {
	entries := make([]Entry, 0, FilesMax)

	for i := range fsys.files {
		f := &fsys.files[i]
		if !f.InUse {
			continue
		}

		entries = append(entries, Entry{
			Name: f.NameString(),
			Data: f.Data[:f.Size],
		})
	}

	buf, err := BuildImage(entries)
	if err != nil {
		return err
	}

	for sec := 0; sec < DiskMaxSize/sectorSize; sec++ {
		if err := fsys.disk.WriteSector(uint64(sec), buf[sec*sectorSize:(sec+1)*sectorSize]); err != nil {
			return fmt.Errorf("%w: %w", ErrDiskIO, err)
		}
	}

	return nil
}
