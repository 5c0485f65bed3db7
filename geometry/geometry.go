// Package geometry holds named BPB presets for common floppy disk
// formats, so callers that know they're looking at a "1.44MB floppy"
// don't have to hand-decode its BPB to get the same numbers.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/lkowalczyk/fat12reader/errors"
)

// Preset is one named BPB geometry, as it would be decoded from a boot
// sector, plus a human-readable name for display.
type Preset struct {
	Slug              string `csv:"slug"`
	Name              string `csv:"name"`
	BytesPerSector    uint16 `csv:"bytes_per_sector"`
	SectorsPerCluster uint8  `csv:"sectors_per_cluster"`
	ReservedSectors   uint16 `csv:"reserved_sectors"`
	FATCount          uint8  `csv:"fat_count"`
	RootDirCapacity   uint16 `csv:"root_dir_capacity"`
	SectorsPerFAT     uint16 `csv:"sectors_per_fat"`
	TotalSectors      uint16 `csv:"total_sectors"`
}

// TotalSizeBytes gives the size in bytes of an image with this preset's
// geometry.
func (p Preset) TotalSizeBytes() int64 {
	return int64(p.TotalSectors) * int64(p.BytesPerSector)
}

//go:embed floppy-geometries.csv
var rawCSV string

var presets map[string]Preset

func init() {
	presets = map[string]Preset{}
	reader := strings.NewReader(rawCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Preset) error {
		if _, exists := presets[row.Slug]; exists {
			return fmt.Errorf("duplicate floppy geometry preset %q", row.Slug)
		}
		presets[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Lookup returns the named preset. Unknown slugs fail with ErrNotFound.
func Lookup(slug string) (Preset, error) {
	preset, ok := presets[slug]
	if !ok {
		return Preset{}, errors.ErrNotFound.WithMessage(fmt.Sprintf("no floppy geometry preset %q", slug))
	}
	return preset, nil
}

// Slugs returns the set of known preset slugs, for listing tools.
func Slugs() []string {
	out := make([]string, 0, len(presets))
	for slug := range presets {
		out = append(out, slug)
	}
	return out
}
