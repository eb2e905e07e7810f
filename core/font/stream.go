package font

import (
	"time"

	"github.com/npillmayer/satz/core"
)

// A Stream is a byte-oriented random-access view of a font file. Streams are
// produced by loaders (see FileLoader) and consumed by the engine whenever
// font binary data is needed. Implementations must be safe for concurrent
// use: the engine may read fragments from arbitrary goroutines during
// analysis.
type Stream interface {
	// Size returns the total number of bytes in the stream.
	Size() (uint64, error)
	// LastWriteTime returns the last modification time of the underlying
	// resource, expressed in 100-nanosecond intervals since 1601-01-01 UTC.
	// It is used only for cache freshness comparison between candidate
	// faces.
	LastWriteTime() (uint64, error)
	// ReadFragment leases a read-only view of length bytes starting at
	// offset. It fails with an invalid-argument error if offset+length
	// overflows or exceeds the stream size. Fragments may overlap and are
	// safe to read concurrently.
	ReadFragment(offset, length uint64) (Fragment, error)
}

// A Fragment is a leased view into a stream. The byte slice stays valid
// until Release is called or the stream is closed, whichever comes first.
// Callers must not write to the slice.
type Fragment interface {
	Bytes() []byte
	Release()
}

// --- Windows FILETIME conversion -------------------------------------------

// Seconds between the FILETIME epoch (1601-01-01) and the Unix epoch.
const filetimeEpochDelta = 11644473600

// Filetime converts a wall-clock time to 100ns ticks since 1601-01-01 UTC.
func Filetime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano()/100) + filetimeEpochDelta*10_000_000
}

// --- Shared fragment plumbing ----------------------------------------------

// byteFragment is a fragment backed by a plain byte slice. Releasing drops
// the reference so the garbage collector can reclaim per-fragment buffers.
type byteFragment struct {
	b []byte
}

func (f *byteFragment) Bytes() []byte {
	return f.b
}

func (f *byteFragment) Release() {
	f.b = nil
}

// checkFragmentBounds validates a fragment request against the stream size.
func checkFragmentBounds(offset, length, size uint64) error {
	if offset+length < offset {
		return core.Error(core.EINVALID, "fragment range overflows: offset=%d length=%d", offset, length)
	}
	if offset+length > size {
		return core.Error(core.EINVALID, "fragment [%d,+%d) exceeds stream size %d", offset, length, size)
	}
	return nil
}

// readEntire leases the complete stream contents as one fragment.
func readEntire(s Stream) (Fragment, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	return s.ReadFragment(0, size)
}
