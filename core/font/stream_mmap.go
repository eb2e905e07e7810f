//go:build unix

package font

import (
	"os"
	"sync"

	"github.com/npillmayer/satz/core"
	"golang.org/x/sys/unix"
)

// MmapStream maps a font file into memory. Fragments are sub-slices of the
// mapping, so reading a fragment never allocates. The mapping is released
// when the stream is closed; clients must release all fragments before
// closing.
type MmapStream struct {
	mu    sync.Mutex
	data  []byte
	wtime uint64
	path  string
}

var _ Stream = (*MmapStream)(nil)

// OpenMmapStream maps the font file at path read-only.
func OpenMmapStream(path string) (Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot open font file %q", path)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot stat font file %q", path)
	}
	ms := &MmapStream{wtime: Filetime(fi.ModTime()), path: path}
	if fi.Size() > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			return nil, core.WrapError(err, core.EIO, "cannot map font file %q", path)
		}
		ms.data = data
	}
	tracer().Debugf("font file %q mapped, %d bytes", path, fi.Size())
	return ms, nil
}

func (ms *MmapStream) Size() (uint64, error) {
	return uint64(len(ms.data)), nil
}

func (ms *MmapStream) LastWriteTime() (uint64, error) {
	return ms.wtime, nil
}

func (ms *MmapStream) ReadFragment(offset, length uint64) (Fragment, error) {
	ms.mu.Lock()
	data := ms.data
	ms.mu.Unlock()
	if err := checkFragmentBounds(offset, length, uint64(len(data))); err != nil {
		return nil, err
	}
	return memFragment(data[offset : offset+length]), nil
}

// Close unmaps the file. Outstanding fragments become invalid.
func (ms *MmapStream) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.data == nil {
		return nil
	}
	err := unix.Munmap(ms.data)
	ms.data = nil
	if err != nil {
		return core.WrapError(err, core.EIO, "cannot unmap font file %q", ms.path)
	}
	return nil
}
