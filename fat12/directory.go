package fat12

import (
	"github.com/lkowalczyk/fat12reader/errors"
)

// RootPath is the only path literal OpenRootDirectory accepts: a
// single backslash, denoting the volume's root directory.
const RootPath = `\`

// Directory is a handle over the root directory region, snapshotted
// in full at open time. Only the root directory is enumerable; this
// reader never walks into subdirectories.
type Directory struct {
	slots []byte
	pos   int
}

// OpenRootDirectory takes an in-memory snapshot of vol's root
// directory region. path must be RootPath; any other value fails with
// ErrInvalid.
func OpenRootDirectory(vol *Volume, path string) (*Directory, error) {
	if vol == nil {
		return nil, errors.ErrBadArguments.WithMessage("nil volume")
	}
	if path != RootPath {
		return nil, errors.ErrInvalid.WithMessage("only the root directory can be opened")
	}

	slots, err := vol.dev.ReadSectors(vol.RootStart(), vol.SectorsPerRoot())
	if err != nil {
		return nil, errors.ErrInvalid.WrapError(err)
	}

	return &Directory{slots: slots}, nil
}

// Next returns the next live directory entry, skipping deleted slots
// transparently. It returns ErrEndOfDirectory once the 0x00 terminator
// slot is reached; further calls continue to return ErrEndOfDirectory.
func (d *Directory) Next() (Entry, error) {
	for {
		offset := d.pos * direntSize
		if offset+direntSize > len(d.slots) {
			return Entry{}, errors.ErrEndOfDirectory
		}

		slot := d.slots[offset : offset+direntSize]
		switch slot[0] {
		case direntTerminatorByte:
			d.pos = len(d.slots) / direntSize // pin the cursor past the terminator
			return Entry{}, errors.ErrEndOfDirectory
		case direntDeletedByte:
			d.pos++
			continue
		default:
			d.pos++
			return newEntry(decodeRawDirent(slot)), nil
		}
	}
}

// Close releases the directory snapshot.
func (d *Directory) Close() {
	d.slots = nil
}
