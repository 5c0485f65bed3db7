// fat12cat opens a fixed image file, reads one fixed file out of its
// root directory, and prints the bytes to stdout. It's a thin demo
// wired around the fat12 library, not part of the library itself.
package main

import (
	"errors"
	"fmt"
	"os"

	fat12errors "github.com/lkowalczyk/fat12reader/errors"
	"github.com/lkowalczyk/fat12reader/device"
	"github.com/lkowalczyk/fat12reader/fat12"
)

const (
	imagePath     = "disko.img"
	targetName    = "MONEY"
	readBufferLen = 4096
)

func main() {
	os.Exit(run())
}

func run() int {
	dev, err := device.Open(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %s\n", imagePath, err)
		return 1
	}
	defer dev.Close()

	vol, err := fat12.OpenVolume(dev, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s is not a valid FAT12 volume: %s\n", imagePath, err)
		return 2
	}
	defer vol.Close()

	f, err := fat12.OpenFile(vol, targetName)
	if err != nil {
		if errors.Is(err, fat12errors.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "%s: no such file\n", targetName)
			return 3
		}
		fmt.Fprintf(os.Stderr, "cannot open %s: %s\n", targetName, err)
		return 3
	}
	defer f.Close()

	buf := make([]byte, readBufferLen)
	n, err := f.ReadInto(buf, 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %s\n", targetName, err)
		return 3
	}

	os.Stdout.Write(buf[:n])
	return 0
}
