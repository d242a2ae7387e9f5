// Package virtio implements a polled, legacy-MMIO virtio-blk driver
// bound to an in-process backing image, per spec.md §4.7. There is one
// virtqueue, one outstanding request at a time, and no interrupts: the
// driver notifies the device and then polls the used ring.
package virtio

// mmio.go models the legacy virtio 1.x MMIO register layout this driver
// probes and configures. Since this module simulates the device rather
// than mapping real physical memory, BlkMMIO is an addressable struct
// instead of a byte-addressed register window; reg32/reg64 keep every
// access to it going through one, single, ordered point of mutation,
// matching the volatile-access discipline a real MMIO driver needs and
// that spec.md §4.7 calls out explicitly.
const (
	MagicValue    = 0x74726976 // ASCII "virt"
	LegacyVersion = 1
	DeviceIDBlk   = 2
)

const (
	StatusAcknowledge = 1 << 0
	StatusDriver      = 1 << 1
	StatusDriverOK    = 1 << 2
	StatusFeaturesOK  = 1 << 3
)

// BlkMMIO is the set of registers a legacy virtio-blk device exposes, in
// the order a probe reads them.
type BlkMMIO struct {
	magic    uint32
	version  uint32
	deviceID uint32

	status      uint32
	queueSel    uint32
	queueNum    uint32
	queueAlign  uint32
	queuePFN    uint32
	queueNotify uint32

	capacity uint64 // device-config offset 0, in 512-byte sectors
}

func reg32(reg *uint32, val uint32) { *reg = val }
func reg32r(reg *uint32) uint32     { return *reg }
func reg64(reg *uint64, val uint64) { *reg = val }
func reg64r(reg *uint64) uint64     { return *reg }
