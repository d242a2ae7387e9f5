package virtio

import (
	"errors"
	"fmt"

	"github.com/smoynes/sv32os/internal/log"
	"github.com/smoynes/sv32os/internal/paging"
)

// SectorSize is the virtio-blk sector size this driver assumes.
const SectorSize = 512

// RequestType selects the direction of a virtio-blk request.
type RequestType uint32

const (
	Read RequestType = iota
	Write
)

func (t RequestType) String() string {
	if t == Write {
		return "WRITE"
	}

	return "READ"
}

// Request is the virtio-blk request header and payload, laid out as
// spec.md §4.7 describes: a type word, a reserved word, the target
// sector, a 512-byte data buffer, and a device-written status byte.
type Request struct {
	Type     RequestType
	Reserved uint32
	Sector   uint64
	Data     [SectorSize]byte
	Status   byte
}

var (
	// ErrProbe is returned when the device's magic, version or device
	// ID does not match what this driver expects. spec.md §4.7 treats
	// a probe mismatch as fatal.
	ErrProbe = errors.New("virtio: probe failed")

	// ErrOutOfRange is returned for a request beyond the device's
	// reported capacity.
	ErrOutOfRange = errors.New("virtio: sector out of range")
)

// Device is a polled virtio-blk driver bound to an in-process backing
// image. One request may be outstanding at a time; there are no
// interrupts, so ReadSector and WriteSector service the request
// synchronously and return only once the used ring has advanced.
type Device struct {
	mmio BlkMMIO
	q    Virtqueue
	req  Request

	disk []byte // backing image; len(disk) == capacity*SectorSize

	log *log.Logger
}

// New returns a Device backed by disk, which must already be sized to a
// whole number of sectors.
func New(disk []byte) *Device {
	d := &Device{disk: disk, log: log.DefaultLogger()}

	reg32(&d.mmio.magic, MagicValue)
	reg32(&d.mmio.version, LegacyVersion)
	reg32(&d.mmio.deviceID, DeviceIDBlk)

	return d
}

// Probe validates the device's identity per spec.md §4.7: magic value,
// legacy version, and the block device ID. Any mismatch is reported so
// the caller can treat bring-up as fatal.
func (d *Device) Probe() error {
	if m := reg32r(&d.mmio.magic); m != MagicValue {
		return fmt.Errorf("%w: bad magic %#x", ErrProbe, m)
	}

	if v := reg32r(&d.mmio.version); v != LegacyVersion {
		return fmt.Errorf("%w: bad version %d", ErrProbe, v)
	}

	if id := reg32r(&d.mmio.deviceID); id != DeviceIDBlk {
		return fmt.Errorf("%w: bad device id %d", ErrProbe, id)
	}

	return nil
}

// Init brings the device up: probe, the status-register acknowledge
// sequence, virtqueue 0 configuration, DRIVER_OK, and caching the
// reported capacity, per spec.md §4.7's bring-up sequence. alloc may be
// nil; when given, one page is set aside for the request template, the
// way a real driver would reserve DMA-visible memory for it.
func (d *Device) Init(alloc *paging.Allocator) error {
	if err := d.Probe(); err != nil {
		return err
	}

	reg32(&d.mmio.status, 0)

	status := uint32(StatusAcknowledge)
	reg32(&d.mmio.status, status)

	status |= StatusDriver
	reg32(&d.mmio.status, status)

	status |= StatusFeaturesOK
	reg32(&d.mmio.status, status)

	reg32(&d.mmio.queueSel, 0)
	reg32(&d.mmio.queueNum, VirtqEntryNum)
	reg32(&d.mmio.queueAlign, 0)
	reg32(&d.mmio.queuePFN, 0)

	status |= StatusDriverOK
	reg32(&d.mmio.status, status)

	reg64(&d.mmio.capacity, uint64(len(d.disk)/SectorSize))

	if alloc != nil {
		if _, err := alloc.Alloc(1); err != nil {
			return fmt.Errorf("virtio: reserving request page: %w", err)
		}
	}

	d.log.Debug("virtio-blk ready", "capacity_sectors", reg64r(&d.mmio.capacity))

	return nil
}

// Capacity returns the device's reported capacity in sectors.
func (d *Device) Capacity() uint64 { return reg64r(&d.mmio.capacity) }

// ReadSector reads one sector into buf, which must be at least
// SectorSize bytes.
func (d *Device) ReadSector(sector uint64, buf []byte) error {
	return d.submit(sector, Read, buf)
}

// WriteSector writes one sector from buf, which must be at least
// SectorSize bytes.
func (d *Device) WriteSector(sector uint64, buf []byte) error {
	return d.submit(sector, Write, buf)
}

// submit executes one request: a three-descriptor chain (header, data,
// status) published to the avail ring, a notify, and a poll of the used
// ring. Since the device this driver talks to is emulated in the same
// process, there is no separate hardware thread to race; service runs
// inline, but the ring bookkeeping is exactly what a real polling loop
// would observe.
func (d *Device) submit(sector uint64, rw RequestType, buf []byte) error {
	if (sector+1)*SectorSize > uint64(len(d.disk)) {
		d.log.Warn("virtio: sector out of range", "sector", sector)
		return ErrOutOfRange
	}

	d.req.Type = rw
	d.req.Sector = sector

	if rw == Write {
		copy(d.req.Data[:], buf)
	}

	writeFlag := uint16(0)
	if rw == Read {
		writeFlag = DescFWrite
	}

	d.q.Desc[0] = Descriptor{Addr: 0, Len: 16, Flags: DescFNext, Next: 1}
	d.q.Desc[1] = Descriptor{Addr: 1, Len: SectorSize, Flags: DescFNext | writeFlag, Next: 2}
	d.q.Desc[2] = Descriptor{Addr: 2, Len: 1, Flags: DescFWrite}

	slot := d.q.Avail.Idx % VirtqEntryNum
	d.q.Avail.Ring[slot] = 0
	d.q.Avail.Idx++

	d.notify()

	for d.q.Used.Idx == d.q.LastUsedIdx {
		d.service()
	}

	d.q.LastUsedIdx = d.q.Used.Idx

	if d.req.Status != 0 {
		d.log.Warn("virtio: request failed", "status", d.req.Status, "sector", sector)
		return fmt.Errorf("virtio: request status %d", d.req.Status)
	}

	if rw == Read {
		copy(buf, d.req.Data[:])
	}

	return nil
}

// notify writes the driver's notify register, which on real hardware
// kicks the device. The emulated device here services the request
// inline because nothing else polls it.
func (d *Device) notify() {
	reg32(&d.mmio.queueNotify, 0)
}

// service performs the device side of one request: the backing-image
// I/O and the used-ring publish.
func (d *Device) service() {
	off := d.req.Sector * SectorSize

	switch d.req.Type {
	case Read:
		copy(d.req.Data[:], d.disk[off:off+SectorSize])
	case Write:
		copy(d.disk[off:off+SectorSize], d.req.Data[:])
	}

	d.req.Status = 0

	slot := d.q.Used.Idx % VirtqEntryNum
	d.q.Used.Ring[slot] = UsedElem{ID: 0, Len: SectorSize}
	d.q.Used.Idx++
}
