package font

import (
	"io"
	"os"
	"sync"

	"github.com/npillmayer/satz/core"
)

// FileStream reads fragments from an open file. Access to the file handle
// goes through seek+read and is serialised by a mutex; every fragment gets
// its own buffer.
type FileStream struct {
	mu    sync.Mutex
	f     *os.File
	size  uint64
	wtime uint64
}

var _ Stream = (*FileStream)(nil)

// OpenFileStream opens the font file at path.
func OpenFileStream(path string) (*FileStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EIO, "cannot open font file %q", path)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, core.WrapError(err, core.EIO, "cannot stat font file %q", path)
	}
	tracer().Debugf("font file stream %q opened, %d bytes", path, fi.Size())
	return &FileStream{
		f:     f,
		size:  uint64(fi.Size()),
		wtime: Filetime(fi.ModTime()),
	}, nil
}

// Size returns the file length in bytes.
func (fs *FileStream) Size() (uint64, error) {
	return fs.size, nil
}

// LastWriteTime returns the file's modification time in FILETIME ticks.
func (fs *FileStream) LastWriteTime() (uint64, error) {
	return fs.wtime, nil
}

// ReadFragment reads length bytes at offset into a fresh buffer.
func (fs *FileStream) ReadFragment(offset, length uint64) (Fragment, error) {
	if err := checkFragmentBounds(offset, length, fs.size); err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, err := fs.f.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, core.WrapError(err, core.EIO, "seek in font file failed")
	}
	if _, err := io.ReadFull(fs.f, buf); err != nil {
		return nil, core.WrapError(err, core.EIO, "read from font file failed")
	}
	return &byteFragment{b: buf}, nil
}

// Close closes the underlying file. Fragments already leased stay valid,
// as they own their buffers.
func (fs *FileStream) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.f == nil {
		return nil
	}
	err := fs.f.Close()
	fs.f = nil
	return err
}
