package fat12

import (
	"encoding/binary"
)

// Directory entry attribute bits.
const (
	AttrReadOnly    = 0x01
	AttrHidden      = 0x02
	AttrSystem      = 0x04
	AttrVolumeLabel = 0x08
	AttrDirectory   = 0x10
	AttrArchive     = 0x20
)

const (
	direntSize           = 32
	direntTerminatorByte = 0x00
	direntDeletedByte    = 0xE5
)

// rawDirent is the on-disk, 32-byte layout of a FAT12 directory
// entry's fields this reader cares about. Timestamps are not among
// them; this reader never decodes them into a calendar form.
type rawDirent struct {
	Name             [8]byte
	Ext              [3]byte
	Attributes       uint8
	FirstClusterLow  uint16
	FirstClusterHigh uint16
	Size             uint32
}

// decodeRawDirent deserializes one 32-byte slot. It does not inspect
// the sentinel first byte — callers check that before decoding.
func decodeRawDirent(slot []byte) rawDirent {
	var d rawDirent
	copy(d.Name[:], slot[0:8])
	copy(d.Ext[:], slot[8:11])
	d.Attributes = slot[11]
	d.FirstClusterHigh = binary.LittleEndian.Uint16(slot[20:22])
	d.FirstClusterLow = binary.LittleEndian.Uint16(slot[26:28])
	d.Size = binary.LittleEndian.Uint32(slot[28:32])
	return d
}

// Entry is the API-visible, reconstructed form of a root directory
// entry.
type Entry struct {
	Name         string
	Size         uint32
	FirstCluster uint32
	IsReadOnly   bool
	IsHidden     bool
	IsSystem     bool
	IsDirectory  bool
	IsArchive    bool
}

func newEntry(raw rawDirent) Entry {
	return Entry{
		Name:         reconstructName(raw.Name, raw.Ext),
		Size:         raw.Size,
		FirstCluster: uint32(raw.FirstClusterLow), // first_cluster_high_bits is ignored on FAT12
		IsReadOnly:   raw.Attributes&AttrReadOnly != 0,
		IsHidden:     raw.Attributes&AttrHidden != 0,
		IsSystem:     raw.Attributes&AttrSystem != 0,
		IsDirectory:  raw.Attributes&AttrDirectory != 0,
		IsArchive:    raw.Attributes&AttrArchive != 0,
	}
}

// reconstructName rebuilds an 8.3 filename from the space-padded name
// and ext fields: find the first space in name (or 8 if none), count
// ext's leading non-space bytes, and join with a dot only if the
// extension is non-empty.
func reconstructName(name [8]byte, ext [3]byte) string {
	nameEnd := 8
	for i, c := range name {
		if c == ' ' {
			nameEnd = i
			break
		}
	}

	extLen := 0
	for extLen < 3 && ext[extLen] != ' ' && ext[extLen] != 0 {
		extLen++
	}

	base := string(name[:nameEnd])
	if extLen == 0 {
		return base
	}
	return base + "." + string(ext[:extLen])
}
