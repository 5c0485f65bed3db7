package fat12

import (
	"github.com/boljen/go-bitmap"

	"github.com/lkowalczyk/fat12reader/errors"
)

const (
	fatEntryFirstDataCluster = 0x002
	fatEntryLastDataCluster  = 0xFEF
)

// fat12EntryAt decodes the 12-bit FAT entry for cluster index i out of
// the packed FAT buffer: byte offset b = i + (i>>1), reading two
// consecutive bytes lo, hi. Even indices take the low byte plus the
// low nibble of hi; odd indices take the high nibble of lo plus hi.
func fat12EntryAt(fat []byte, i uint32) (uint32, bool) {
	b := i + (i >> 1)
	if int(b)+1 >= len(fat) {
		return 0, false
	}
	lo, hi := fat[b], fat[b+1]
	if i%2 == 0 {
		return (uint32(hi&0x0F) << 8) | uint32(lo), true
	}
	return (uint32(hi) << 4) | uint32(lo>>4), true
}

// decodeChain walks the 12-bit packed FAT from seed, appending each
// cluster visited until an entry falls outside the data-next-pointer
// range [0x002, 0xFEF] (end-of-chain, reserved, and bad-cluster
// entries all terminate the walk). The seed is always appended, even
// if it's already a terminator — a one-cluster file.
//
// availableClusters bounds both the valid cluster range and the
// maximum chain length: a cluster outside [2, 2+availableClusters), or
// a FAT entry that revisits an already-visited cluster, is reported as
// ErrInvalid rather than looping forever on a malformed FAT (the
// source trusts the FAT; this reader doesn't).
func decodeChain(fat []byte, seed uint32, availableClusters uint32) ([]uint32, error) {
	if seed < fatEntryFirstDataCluster || seed >= fatEntryFirstDataCluster+availableClusters {
		return nil, errors.ErrInvalid.WithMessage("seed cluster out of range")
	}

	visited := bitmap.NewSlice(int(availableClusters))
	chain := make([]uint32, 0, 8)

	v := seed
	for {
		idx := int(v - fatEntryFirstDataCluster)
		if idx < 0 || idx >= int(availableClusters) {
			return nil, errors.ErrInvalid.WithMessage("cluster chain left the data region")
		}
		if visited.Get(idx) {
			return nil, errors.ErrInvalid.WithMessage("cluster chain cycle detected")
		}
		visited.Set(idx, true)
		chain = append(chain, v)

		entry, ok := fat12EntryAt(fat, v)
		if !ok {
			return nil, errors.ErrInvalid.WithMessage("FAT entry index out of range")
		}
		if entry < fatEntryFirstDataCluster || entry > fatEntryLastDataCluster {
			return chain, nil
		}
		v = entry
	}
}
