package fat12

import (
	"encoding/binary"

	"github.com/hashicorp/go-multierror"

	"github.com/lkowalczyk/fat12reader/errors"
)

// bpbSize is the length, in bytes, of the fields this reader decodes
// from the first sector of the volume. The remainder of the sector
// (boot code, the 0x55AA signature) is not interpreted.
const bpbSize = 36

// rawBPB is the packed, little-endian on-disk layout of the fields of
// a FAT12 BIOS Parameter Block this reader cares about. It deliberately
// omits the BPB's nested time/date bitfields and boot code, neither of
// which this reader ever interprets.
type rawBPB struct {
	BytesPerSector   uint16
	SectorsPerCluster uint8
	ReservedSectors  uint16
	FATCount         uint8
	RootDirCapacity  uint16
	LogicalSectors16 uint16
	SectorsPerFAT    uint16
	LogicalSectors32 uint32
}

// decodeBPB reads the packed BPB fields out of a raw 512-byte boot
// sector. It does not validate them; that's geometry's job.
func decodeBPB(sector []byte) (rawBPB, error) {
	if len(sector) < bpbSize {
		return rawBPB{}, errors.ErrInvalid.WithMessage("boot sector too short")
	}

	var b rawBPB
	b.BytesPerSector = binary.LittleEndian.Uint16(sector[11:13])
	b.SectorsPerCluster = sector[13]
	b.ReservedSectors = binary.LittleEndian.Uint16(sector[14:16])
	b.FATCount = sector[16]
	b.RootDirCapacity = binary.LittleEndian.Uint16(sector[17:19])
	b.LogicalSectors16 = binary.LittleEndian.Uint16(sector[19:21])
	b.SectorsPerFAT = binary.LittleEndian.Uint16(sector[22:24])
	b.LogicalSectors32 = binary.LittleEndian.Uint32(sector[32:36])
	return b, nil
}

// geometry holds the sector/cluster layout derived from a volume's raw
// BPB: where each FAT copy, the root directory, and the data region
// begin, and how many usable data clusters the volume has.
type geometry struct {
	FAT1Start         uint32
	FAT2Start         uint32
	RootStart         uint32
	SectorsPerRoot    uint32
	DataStart         uint32
	TotalSectors      uint32
	AvailableClusters uint32
	FATBytes          uint32
}

// deriveGeometry computes a volume's geometry from its BPB, honoring
// FATCount generically rather than assuming exactly two FAT copies. It
// aggregates every violated invariant into a single error via
// go-multierror so a caller sees all of a malformed BPB's problems at
// once, instead of just the first one found.
func deriveGeometry(b rawBPB) (geometry, error) {
	var problems *multierror.Error

	if b.BytesPerSector == 0 {
		problems = multierror.Append(problems, errors.ErrInvalid.WithMessage("bytes_per_sector is zero"))
	}
	if b.SectorsPerCluster == 0 {
		problems = multierror.Append(problems, errors.ErrInvalid.WithMessage("sectors_per_cluster is zero"))
	}
	if b.FATCount == 0 {
		problems = multierror.Append(problems, errors.ErrInvalid.WithMessage("fat_count is zero"))
	}
	if b.SectorsPerFAT == 0 {
		problems = multierror.Append(problems, errors.ErrInvalid.WithMessage("sectors_per_fat is zero"))
	}

	if problems.ErrorOrNil() != nil {
		return geometry{}, errors.ErrInvalid.WrapError(problems)
	}

	totalSectors := uint32(b.LogicalSectors16)
	if totalSectors == 0 {
		totalSectors = b.LogicalSectors32
	}

	fat1Start := uint32(b.ReservedSectors)
	fat2Start := fat1Start + uint32(b.SectorsPerFAT)
	rootStart := fat1Start + uint32(b.FATCount)*uint32(b.SectorsPerFAT)
	sectorsPerRoot := (uint32(b.RootDirCapacity)*32 + uint32(b.BytesPerSector) - 1) / uint32(b.BytesPerSector)
	dataStart := rootStart + sectorsPerRoot

	reservedForMeta := uint32(b.ReservedSectors) + uint32(b.FATCount)*uint32(b.SectorsPerFAT) + sectorsPerRoot
	if totalSectors <= reservedForMeta {
		return geometry{}, errors.ErrInvalid.WithMessage(
			"total sectors too small for reserved area, FATs, and root directory")
	}

	availableClusters := (totalSectors - reservedForMeta) / uint32(b.SectorsPerCluster)

	return geometry{
		FAT1Start:         fat1Start,
		FAT2Start:         fat2Start,
		RootStart:         rootStart,
		SectorsPerRoot:    sectorsPerRoot,
		DataStart:         dataStart,
		TotalSectors:      totalSectors,
		AvailableClusters: availableClusters,
		FATBytes:          uint32(b.SectorsPerFAT) * uint32(b.BytesPerSector),
	}, nil
}
