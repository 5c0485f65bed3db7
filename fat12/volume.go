package fat12

import (
	"bytes"

	"github.com/lkowalczyk/fat12reader/device"
	"github.com/lkowalczyk/fat12reader/errors"
)

// Volume is an open FAT12 volume: a decoded BPB, derived geometry, and
// the authoritative FAT buffer. It holds a non-owning reference to the
// Device it was opened on — the device must outlive the volume.
type Volume struct {
	dev *device.Device

	bytesPerSector    uint32
	sectorsPerCluster uint32
	fatCount          uint32
	rootDirCapacity   uint32

	geom geometry
	fat  []byte
}

// OpenVolume opens a FAT12 volume starting at firstSector of dev. It
// reads the BPB, derives geometry, reads both FAT copies and rejects
// the volume as invalid if they disagree: a healthy FAT12 stack keeps
// both copies in sync, so a mismatch signals a malformed or mid-write
// image rather than something safe to read through.
func OpenVolume(dev *device.Device, firstSector uint32) (*Volume, error) {
	if dev == nil {
		return nil, errors.ErrBadArguments.WithMessage("nil device")
	}

	bootSector, err := dev.ReadSectors(firstSector, 1)
	if err != nil {
		return nil, errors.ErrInvalid.WrapError(err)
	}

	raw, err := decodeBPB(bootSector)
	if err != nil {
		return nil, err
	}

	// deriveGeometry rejects a zero bytes_per_sector together with any
	// other BPB defect in one aggregated error.
	geom, err := deriveGeometry(raw)
	if err != nil {
		return nil, err
	}

	fatSectors := uint32(raw.SectorsPerFAT)
	fat1, err := dev.ReadSectors(geom.FAT1Start, fatSectors)
	if err != nil {
		return nil, errors.ErrInvalid.WrapError(err)
	}
	fat2, err := dev.ReadSectors(geom.FAT2Start, fatSectors)
	if err != nil {
		return nil, errors.ErrInvalid.WrapError(err)
	}
	if !bytes.Equal(fat1, fat2) {
		return nil, errors.ErrInvalid.WithMessage("FAT copies disagree")
	}

	return &Volume{
		dev:               dev,
		bytesPerSector:    uint32(raw.BytesPerSector),
		sectorsPerCluster: uint32(raw.SectorsPerCluster),
		fatCount:          uint32(raw.FATCount),
		rootDirCapacity:   uint32(raw.RootDirCapacity),
		geom:              geom,
		fat:               fat1,
	}, nil
}

// Close releases the volume's FAT buffer. It does not close the
// underlying Device — that remains the caller's responsibility.
func (v *Volume) Close() {
	v.fat = nil
}

// BytesPerSector returns the BPB's bytes_per_sector.
func (v *Volume) BytesPerSector() uint32 { return v.bytesPerSector }

// BytesPerCluster returns sectors_per_cluster * bytes_per_sector.
func (v *Volume) BytesPerCluster() uint32 {
	return v.sectorsPerCluster * v.bytesPerSector
}

// SectorsPerCluster returns the BPB's sectors_per_cluster.
func (v *Volume) SectorsPerCluster() uint32 { return v.sectorsPerCluster }

// RootStart returns the first sector of the root directory region.
func (v *Volume) RootStart() uint32 { return v.geom.RootStart }

// SectorsPerRoot returns the number of sectors occupied by the root
// directory region.
func (v *Volume) SectorsPerRoot() uint32 { return v.geom.SectorsPerRoot }

// RootDirCapacity returns the number of 32-byte slots in the root
// directory.
func (v *Volume) RootDirCapacity() uint32 { return v.rootDirCapacity }

// DataStart returns the first sector of the data region (cluster 2).
func (v *Volume) DataStart() uint32 { return v.geom.DataStart }

// AvailableClusters returns the number of usable data clusters.
func (v *Volume) AvailableClusters() uint32 { return v.geom.AvailableClusters }

// clusterToSector converts a data cluster index into the first sector
// of that cluster.
func (v *Volume) clusterToSector(cluster uint32) uint32 {
	return v.geom.DataStart + (cluster-2)*v.sectorsPerCluster
}

// readCluster reads exactly one cluster's worth of data.
func (v *Volume) readCluster(cluster uint32) ([]byte, error) {
	return v.dev.ReadSectors(v.clusterToSector(cluster), v.sectorsPerCluster)
}

// decodeChain follows the FAT12 cluster chain starting at seed.
func (v *Volume) decodeChain(seed uint32) ([]uint32, error) {
	return decodeChain(v.fat, seed, v.geom.AvailableClusters)
}
