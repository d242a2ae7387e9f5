package virtio_test

import (
	"bytes"
	"testing"

	"github.com/smoynes/sv32os/internal/virtio"
)

func TestDevice_WriteThenReadSectorRoundTrips(t *testing.T) {
	disk := make([]byte, 64*virtio.SectorSize)
	dev := virtio.New(disk)

	if err := dev.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	want := bytes.Repeat([]byte{0xAB}, virtio.SectorSize)

	if err := dev.WriteSector(5, want); err != nil {
		t.Fatalf("WriteSector: %v", err)
	}

	got := make([]byte, virtio.SectorSize)
	if err := dev.ReadSector(5, got); err != nil {
		t.Fatalf("ReadSector: %v", err)
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("round-tripped sector 5 did not match what was written")
	}

	other := make([]byte, virtio.SectorSize)
	if err := dev.ReadSector(6, other); err != nil {
		t.Fatalf("ReadSector(6): %v", err)
	}

	if bytes.Equal(other, want) {
		t.Fatal("writing sector 5 leaked into sector 6")
	}
}

func TestDevice_OutOfRangeSectorIsAnError(t *testing.T) {
	disk := make([]byte, 4*virtio.SectorSize)
	dev := virtio.New(disk)

	if err := dev.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	buf := make([]byte, virtio.SectorSize)
	if err := dev.ReadSector(100, buf); err == nil {
		t.Fatal("expected ErrOutOfRange for a sector beyond capacity")
	}
}

func TestDevice_ProbeAcceptsFreshDevice(t *testing.T) {
	disk := make([]byte, 4*virtio.SectorSize)
	dev := virtio.New(disk)

	if err := dev.Probe(); err != nil {
		t.Fatalf("Probe on a freshly constructed device: %v", err)
	}
}

func TestDevice_CapacityReflectsBackingImageSize(t *testing.T) {
	disk := make([]byte, 10*virtio.SectorSize)
	dev := virtio.New(disk)

	if err := dev.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if got := dev.Capacity(); got != 10 {
		t.Fatalf("Capacity() = %d, want 10", got)
	}
}
