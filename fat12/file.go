package fat12

import (
	"io"

	"github.com/noxer/bytewriter"

	"github.com/lkowalczyk/fat12reader/errors"
)

// File is a seekable, read-only byte cursor over a file's cluster
// chain. It holds a non-owning reference to its Volume — the volume
// must outlive any File opened on it.
type File struct {
	vol      *Volume
	chain    []uint32
	size     int64
	position int64 // a full 64-bit offset so addressing isn't capped well below Size's 32-bit range

	cachedClusterIdx int
	cachedCluster    []byte
}

// OpenFile resolves name against the volume's root directory by
// byte-exact match (case is not normalized) and builds a file cursor
// over its cluster chain. A match with the directory attribute set
// fails with ErrIsDirectory.
func OpenFile(vol *Volume, name string) (*File, error) {
	if vol == nil || name == "" {
		return nil, errors.ErrBadArguments.WithMessage("nil volume or empty name")
	}

	dir, err := OpenRootDirectory(vol, RootPath)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	var found *Entry
	for {
		entry, err := dir.Next()
		if err == errors.ErrEndOfDirectory {
			break
		}
		if err != nil {
			return nil, err
		}
		if entry.Name == name {
			e := entry
			found = &e
			break
		}
	}

	if found == nil {
		return nil, errors.ErrNotFound.WithMessage(name)
	}
	if found.IsDirectory {
		return nil, errors.ErrIsDirectory.WithMessage(name)
	}

	var chain []uint32
	if found.Size > 0 {
		chain, err = vol.decodeChain(found.FirstCluster)
		if err != nil {
			return nil, err
		}
	}

	return &File{
		vol:              vol,
		chain:            chain,
		size:             int64(found.Size),
		cachedClusterIdx: -1,
	}, nil
}

// Size returns the file's size in bytes, as recorded in its directory
// entry.
func (f *File) Size() int64 { return f.size }

// Seek repositions the cursor. No clamping is performed: the resulting
// position may exceed Size or be negative in principle, but Read
// terminates immediately whenever position >= size.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.position = offset
	case io.SeekCurrent:
		f.position += offset
	case io.SeekEnd:
		f.position = f.size + offset
	default:
		return 0, errors.ErrBadArguments.WithMessage("unknown whence")
	}
	return f.position, nil
}

// Read fills p with up to len(p) bytes starting at the cursor, cross
// cluster boundaries as needed, and advances the cursor. It returns
// io.EOF once position >= size, matching io.Reader convention; no
// partial error is raised for reaching end of file.
func (f *File) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if f.position < 0 || f.position >= f.size {
		return 0, io.EOF
	}

	clusterBytes := int64(f.vol.BytesPerCluster())
	dst := bytewriter.New(p)
	written := 0

	for written < len(p) && f.position < f.size {
		clusterIdx := int(f.position / clusterBytes)
		offsetInCluster := int(f.position % clusterBytes)

		if clusterIdx != f.cachedClusterIdx {
			if clusterIdx >= len(f.chain) {
				return written, errors.ErrRange.WithMessage("cluster chain shorter than file size")
			}
			data, err := f.vol.readCluster(f.chain[clusterIdx])
			if err != nil {
				return written, errors.ErrRange.WrapError(err)
			}
			f.cachedCluster = data
			f.cachedClusterIdx = clusterIdx
		}

		b := f.cachedCluster[offsetInCluster]
		if _, err := dst.Write([]byte{b}); err != nil {
			return written, errors.ErrRange.WrapError(err)
		}

		written++
		f.position++
	}

	return written, nil
}

// ReadInto fills buf byte-by-byte, stopping early at EOF, and returns
// the number of whole elemSize-sized elements filled — bytes read
// divided by elemSize, discarding any trailing partial element. This
// mirrors the classic C fread(buf, elemSize, elemCount, file) contract
// for callers that need element counts rather than byte counts.
func (f *File) ReadInto(buf []byte, elemSize int) (int, error) {
	if elemSize <= 0 {
		return 0, errors.ErrBadArguments.WithMessage("elemSize must be positive")
	}

	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				break
			}
			return total / elemSize, err
		}
		if n == 0 {
			break
		}
	}
	return total / elemSize, nil
}

// Close releases the file's cluster chain.
func (f *File) Close() {
	f.chain = nil
	f.cachedCluster = nil
}
