package fat12_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lkowalczyk/fat12reader/device"
	"github.com/lkowalczyk/fat12reader/fat12"
	"github.com/xaionaro-go/bytesextra"
)

// mustOpenVolume builds the fixture image and opens a volume on it,
// failing the test immediately on error.
func mustOpenVolume(t *testing.T, fb *fixtureBuilder) *fat12.Volume {
	t.Helper()
	vol, err := fat12.OpenVolume(fb.build(), 0)
	require.NoError(t, err)
	return vol
}

// fixtureGeometry is a small, S1/S2-shaped FAT12 image: 512-byte
// sectors, 1 sector per cluster, 1 reserved sector, 2 FATs of 9
// sectors each, a 224-entry root directory.
type fixtureGeometry struct {
	bytesPerSector    uint16
	sectorsPerCluster uint8
	reservedSectors   uint16
	fatCount          uint8
	rootDirCapacity   uint16
	sectorsPerFAT     uint16
	totalSectors      uint16
}

func defaultGeometry() fixtureGeometry {
	return fixtureGeometry{
		bytesPerSector:    512,
		sectorsPerCluster: 1,
		reservedSectors:   1,
		fatCount:          2,
		rootDirCapacity:   224,
		sectorsPerFAT:     9,
		totalSectors:      2880,
	}
}

// fixtureBuilder assembles a flat FAT12 image sector by sector.
type fixtureBuilder struct {
	g             fixtureGeometry
	fat           []byte
	rootEntries   []byte
	dataClusters  map[uint32][]byte
}

func newFixtureBuilder(g fixtureGeometry) *fixtureBuilder {
	return &fixtureBuilder{
		g:            g,
		fat:          make([]byte, int(g.sectorsPerFAT)*int(g.bytesPerSector)),
		dataClusters: map[uint32][]byte{},
	}
}

// setFATEntry packs a 12-bit FAT entry value at cluster index i.
func (fb *fixtureBuilder) setFATEntry(i uint32, value uint16) {
	b := i + (i >> 1)
	if int(b)+1 >= len(fb.fat) {
		panic("FAT index out of range in fixture")
	}
	if i%2 == 0 {
		fb.fat[b] = byte(value & 0xFF)
		fb.fat[b+1] = (fb.fat[b+1] &^ 0x0F) | byte((value>>8)&0x0F)
	} else {
		fb.fat[b] = (fb.fat[b] &^ 0xF0) | byte((value&0x0F)<<4)
		fb.fat[b+1] = byte(value >> 4)
	}
}

// addEntry appends one 32-byte root directory entry.
func (fb *fixtureBuilder) addEntry(name, ext string, attrs uint8, firstCluster uint32, size uint32) {
	slot := make([]byte, 32)
	copy(slot[0:8], padSpaces(name, 8))
	copy(slot[8:11], padSpaces(ext, 3))
	slot[11] = attrs
	binary.LittleEndian.PutUint16(slot[20:22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(slot[26:28], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(slot[28:32], size)
	fb.rootEntries = append(fb.rootEntries, slot...)
}

// addDeletedEntry appends a slot whose first byte is the 0xE5 deleted
// sentinel.
func (fb *fixtureBuilder) addDeletedEntry() {
	slot := make([]byte, 32)
	slot[0] = 0xE5
	fb.rootEntries = append(fb.rootEntries, slot...)
}

func padSpaces(s string, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	return out
}

// setCluster records the content of a data cluster (padded/truncated
// to exactly one cluster's worth of bytes).
func (fb *fixtureBuilder) setCluster(cluster uint32, content []byte) {
	clusterBytes := int(fb.g.sectorsPerCluster) * int(fb.g.bytesPerSector)
	buf := make([]byte, clusterBytes)
	copy(buf, content)
	fb.dataClusters[cluster] = buf
}

// build assembles the full flat image and returns a Device over it.
func (fb *fixtureBuilder) build() *device.Device {
	return device.NewFromStream(bytesextra.NewReadWriteSeeker(fb.buildBytes(false)))
}

// buildWithCorruptSecondFAT builds the image with one flipped byte in
// the second FAT copy only, so OpenVolume must reject it.
func (fb *fixtureBuilder) buildWithCorruptSecondFAT() *device.Device {
	return device.NewFromStream(bytesextra.NewReadWriteSeeker(fb.buildBytes(true)))
}

func (fb *fixtureBuilder) buildBytes(corruptSecondFAT bool) []byte {
	g := fb.g
	rootBytes := (int(g.rootDirCapacity)*32 + int(g.bytesPerSector) - 1) / int(g.bytesPerSector) * int(g.bytesPerSector)
	root := make([]byte, rootBytes)
	copy(root, fb.rootEntries)

	sectorsPerRoot := rootBytes / int(g.bytesPerSector)
	dataStart := int(g.reservedSectors) + int(g.fatCount)*int(g.sectorsPerFAT) + sectorsPerRoot
	availableClusters := (int(g.totalSectors) - dataStart) / int(g.sectorsPerCluster)
	maxCluster := 2 + availableClusters

	dataBytes := availableClusters * int(g.sectorsPerCluster) * int(g.bytesPerSector)
	data := make([]byte, dataBytes)
	for cluster, content := range fb.dataClusters {
		if int(cluster) < 2 || int(cluster) >= maxCluster {
			panic("cluster out of range in fixture")
		}
		offset := (int(cluster) - 2) * int(g.sectorsPerCluster) * int(g.bytesPerSector)
		copy(data[offset:], content)
	}

	secondFAT := make([]byte, len(fb.fat))
	copy(secondFAT, fb.fat)
	if corruptSecondFAT {
		secondFAT[0] ^= 0xFF
	}

	image := make([]byte, 0, int(g.totalSectors)*int(g.bytesPerSector))
	image = append(image, bootSector(g)...)
	// Pad out the rest of reserved sectors (if any beyond the boot sector).
	for i := 1; i < int(g.reservedSectors); i++ {
		image = append(image, make([]byte, g.bytesPerSector)...)
	}
	image = append(image, fb.fat...) // FAT #1
	image = append(image, secondFAT...)
	image = append(image, root...)
	image = append(image, data...)

	// Pad to the declared total size, if the caller over-declared it.
	want := int(g.totalSectors) * int(g.bytesPerSector)
	if len(image) < want {
		image = append(image, make([]byte, want-len(image))...)
	}

	return image
}

func bootSector(g fixtureGeometry) []byte {
	sector := make([]byte, g.bytesPerSector)
	binary.LittleEndian.PutUint16(sector[11:13], g.bytesPerSector)
	sector[13] = g.sectorsPerCluster
	binary.LittleEndian.PutUint16(sector[14:16], g.reservedSectors)
	sector[16] = g.fatCount
	binary.LittleEndian.PutUint16(sector[17:19], g.rootDirCapacity)
	binary.LittleEndian.PutUint16(sector[19:21], g.totalSectors) // logical_sectors16
	binary.LittleEndian.PutUint16(sector[22:24], g.sectorsPerFAT)
	binary.LittleEndian.PutUint32(sector[32:36], 0) // logical_sectors32 unused
	return sector
}

// zeroBytesPerSectorImage builds a single 512-byte boot sector whose
// bytes_per_sector field is zero, padded out to a plausible FAT12
// image size, for exercising OpenVolume's rejection path.
func zeroBytesPerSectorImage() *device.Device {
	sector := make([]byte, 512)
	binary.LittleEndian.PutUint16(sector[11:13], 0)
	sector[13] = 1
	binary.LittleEndian.PutUint16(sector[14:16], 1)
	sector[16] = 2
	binary.LittleEndian.PutUint16(sector[17:19], 224)
	binary.LittleEndian.PutUint16(sector[19:21], 2880)
	binary.LittleEndian.PutUint16(sector[22:24], 9)

	image := make([]byte, 2880*512)
	copy(image, sector)
	return device.NewFromStream(bytesextra.NewReadWriteSeeker(image))
}
