// fat12ls is a supplemental inspection tool (not described by the core
// library contract) for listing a FAT12 image's root directory and,
// optionally, checking its geometry against a known floppy preset.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/urfave/cli/v2"

	"github.com/lkowalczyk/fat12reader/device"
	"github.com/lkowalczyk/fat12reader/fat12"
	"github.com/lkowalczyk/fat12reader/geometry"
)

// listingRow is one CSV/table row describing a root directory entry.
type listingRow struct {
	Name         string `csv:"name"`
	Size         uint32 `csv:"size"`
	FirstCluster uint32 `csv:"first_cluster"`
	Directory    bool   `csv:"directory"`
	ReadOnly     bool   `csv:"read_only"`
	Hidden       bool   `csv:"hidden"`
	System       bool   `csv:"system"`
}

func main() {
	app := cli.App{
		Name:  "fat12ls",
		Usage: "List the root directory of a FAT12 image",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "sector",
				Usage: "first sector of the volume on the image",
				Value: 0,
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "print the listing as CSV instead of a table",
			},
			&cli.StringFlag{
				Name:  "check-geometry",
				Usage: "compare the image's BPB against a named floppy preset slug",
			},
		},
		ArgsUsage: "IMAGE_FILE",
		Action:    listRootDirectory,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("fat12ls: %s", err)
	}
}

func listRootDirectory(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one IMAGE_FILE argument", 1)
	}
	imagePath := c.Args().Get(0)

	dev, err := device.Open(imagePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot open %s: %s", imagePath, err), 1)
	}
	defer dev.Close()

	vol, err := fat12.OpenVolume(dev, uint32(c.Uint64("sector")))
	if err != nil {
		return cli.Exit(fmt.Sprintf("%s is not a valid FAT12 volume: %s", imagePath, err), 2)
	}
	defer vol.Close()

	if slug := c.String("check-geometry"); slug != "" {
		if err := checkGeometry(vol, slug); err != nil {
			return cli.Exit(err.Error(), 2)
		}
	}

	rows, err := collectEntries(vol)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error reading root directory: %s", err), 3)
	}

	if c.Bool("csv") {
		out, err := gocsv.MarshalString(&rows)
		if err != nil {
			return cli.Exit(fmt.Sprintf("error marshaling CSV: %s", err), 3)
		}
		fmt.Print(out)
		return nil
	}

	for _, row := range rows {
		kind := "file"
		if row.Directory {
			kind = "dir"
		}
		fmt.Printf("%-6s %10d  cluster=%-5d %s\n", kind, row.Size, row.FirstCluster, row.Name)
	}
	return nil
}

func collectEntries(vol *fat12.Volume) ([]*listingRow, error) {
	dir, err := fat12.OpenRootDirectory(vol, fat12.RootPath)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	var rows []*listingRow
	for {
		entry, err := dir.Next()
		if err != nil {
			break
		}
		rows = append(rows, &listingRow{
			Name:         entry.Name,
			Size:         entry.Size,
			FirstCluster: entry.FirstCluster,
			Directory:    entry.IsDirectory,
			ReadOnly:     entry.IsReadOnly,
			Hidden:       entry.IsHidden,
			System:       entry.IsSystem,
		})
	}
	return rows, nil
}

// checkGeometry reports a mismatch between the open volume's derived
// geometry and a named preset's expected values.
func checkGeometry(vol *fat12.Volume, slug string) error {
	preset, err := geometry.Lookup(slug)
	if err != nil {
		return err
	}

	if vol.BytesPerSector() != uint32(preset.BytesPerSector) {
		return fmt.Errorf(
			"bytes_per_sector mismatch: image has %d, preset %q expects %d",
			vol.BytesPerSector(), slug, preset.BytesPerSector)
	}
	if vol.SectorsPerCluster() != uint32(preset.SectorsPerCluster) {
		return fmt.Errorf(
			"sectors_per_cluster mismatch: image has %d, preset %q expects %d",
			vol.SectorsPerCluster(), slug, preset.SectorsPerCluster)
	}
	if vol.RootDirCapacity() != uint32(preset.RootDirCapacity) {
		return fmt.Errorf(
			"root_dir_capacity mismatch: image has %d, preset %q expects %d",
			vol.RootDirCapacity(), slug, preset.RootDirCapacity)
	}
	return nil
}
