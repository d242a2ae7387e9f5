package virtio

import "github.com/smoynes/sv32os/internal/log"

// VirtqEntryNum is the number of descriptors in the single split
// virtqueue this driver configures, per spec.md §4.7.
const VirtqEntryNum = 16

const (
	DescFNext  = 1 << 0
	DescFWrite = 1 << 1
)

// Descriptor is one virtqueue descriptor: an address/length pair plus
// chaining and direction flags.
type Descriptor struct {
	Addr  uint64
	Len   uint32
	Flags uint16
	Next  uint16
}

// UsedElem is one entry the device publishes to the used ring.
type UsedElem struct {
	ID  uint32
	Len uint32
}

// Virtqueue is a single split virtqueue: a descriptor table shared with
// the device, the driver's available ring, and the device's used ring.
type Virtqueue struct {
	Desc [VirtqEntryNum]Descriptor

	Avail struct {
		Flags uint16
		Idx   uint16
		Ring  [VirtqEntryNum]uint16
	}

	Used struct {
		Flags uint16
		Idx   uint16
		Ring  [VirtqEntryNum]UsedElem
	}

	// LastUsedIdx is the driver's own record of the last used-ring
	// index it has observed, per spec.md's last_used_index.
	LastUsedIdx uint16
}

// LogValue implements slog.LogValuer.
func (q *Virtqueue) LogValue() log.Value {
	return log.GroupValue(
		log.Any("avail_idx", q.Avail.Idx),
		log.Any("used_idx", q.Used.Idx),
		log.Any("last_used_idx", q.LastUsedIdx),
	)
}
