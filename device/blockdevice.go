// Package device provides the lowest layer of the FAT12 reader: a
// read-only, fixed-512-byte-sector view over a flat disk image file.
package device

import (
	"io"
	"os"

	"github.com/lkowalczyk/fat12reader/errors"
)

// SectorSize is the physical sector granularity of the block device.
// A volume's own bytes_per_sector (from its BPB) is used by upper
// layers for addressing, but the image itself is always read in
// 512-byte units at this layer.
const SectorSize = 512

// Device is a read-only block device backed by a disk image. Reads
// are addressed by sector number; partial reads are never returned —
// a short read is surfaced as ErrRange, not a truncated buffer.
type Device struct {
	stream io.ReadSeeker
	closer io.Closer
}

// Open opens the image file at path for read-only sector access.
func Open(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrNotFound.WithMessage(err.Error())
	}
	return &Device{stream: f, closer: f}, nil
}

// NewFromStream wraps an already-open stream as a Device, e.g. an
// in-memory image built by a test. If the stream also implements
// io.Closer, Close() on the Device forwards to it.
func NewFromStream(stream io.ReadSeeker) *Device {
	closer, _ := stream.(io.Closer)
	return &Device{stream: stream, closer: closer}
}

// ReadSectors reads count whole sectors starting at firstSector and
// returns exactly count*SectorSize bytes. A seek failure or a short
// read is reported as ErrRange; there is no partial-success case.
func (d *Device) ReadSectors(firstSector, count uint32) ([]byte, error) {
	if count == 0 {
		return nil, errors.ErrBadArguments.WithMessage("sector count must be positive")
	}

	offset := int64(firstSector) * SectorSize
	if _, err := d.stream.Seek(offset, io.SeekStart); err != nil {
		return nil, errors.ErrRange.WrapError(err)
	}

	want := int(count) * SectorSize
	buffer := make([]byte, want)
	read, err := io.ReadFull(d.stream, buffer)
	if err != nil || read != want {
		return nil, errors.ErrRange.WithMessage("short read from device")
	}
	return buffer, nil
}

// Close releases the underlying image handle.
func (d *Device) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}
