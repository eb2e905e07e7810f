package font

import "time"

// MemoryStream serves fragments from a byte slice held in memory. Fragments
// are sub-slices; Release is a no-op. A MemoryStream is trivially safe for
// concurrent reads.
type MemoryStream struct {
	data  []byte
	wtime uint64
}

var _ Stream = (*MemoryStream)(nil)

// NewMemoryStream wraps data without copying. The caller must not mutate
// data afterwards.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{data: data, wtime: Filetime(time.Now())}
}

// CopyMemoryStream takes a private copy of data.
func CopyMemoryStream(data []byte) *MemoryStream {
	private := make([]byte, len(data))
	copy(private, data)
	return NewMemoryStream(private)
}

func (ms *MemoryStream) Size() (uint64, error) {
	return uint64(len(ms.data)), nil
}

func (ms *MemoryStream) LastWriteTime() (uint64, error) {
	return ms.wtime, nil
}

func (ms *MemoryStream) ReadFragment(offset, length uint64) (Fragment, error) {
	if err := checkFragmentBounds(offset, length, uint64(len(ms.data))); err != nil {
		return nil, err
	}
	return memFragment(ms.data[offset : offset+length]), nil
}

// memFragment is a zero-allocation fragment over shared backing memory.
type memFragment []byte

func (f memFragment) Bytes() []byte {
	return f
}

func (f memFragment) Release() {}
