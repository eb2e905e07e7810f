package font

import (
	"bytes"
	"sync"

	"github.com/npillmayer/satz/core"
)

// File is a reference to a font file, i.e. a wrapped loader key together
// with the factory able to dispatch it. Creating a File does not touch the
// font data; the stream is opened lazily and its content cached for the
// lifetime of the File.
type File struct {
	factory *Factory
	payload []byte

	mu     sync.Mutex
	stream Stream
	frag   Fragment
	bin    binSegm
}

// FileReference creates a font file reference from a loader handle and a
// key of the loader's registered key type.
func (f *Factory) FileReference(h *LoaderHandle, key interface{}) (*File, error) {
	if h == nil || h.factory != f {
		return nil, core.Error(core.EINVALID, "loader handle does not belong to this factory")
	}
	payload, err := h.WrapKey(key)
	if err != nil {
		return nil, err
	}
	return &File{factory: f, payload: payload}, nil
}

// LocalFileReference creates a reference to a font file on the local file
// system, using the factory's built-in loader.
func (f *Factory) LocalFileReference(path string) (*File, error) {
	return f.FileReference(f.localHandle, localFileKey(path))
}

// Key returns a copy of the wrapped loader key payload identifying this
// file. Two files with equal keys refer to the same font data.
func (f *File) Key() []byte {
	k := make([]byte, len(f.payload))
	copy(k, f.payload)
	return k
}

// SameFile reports whether two file references carry the same loader key.
func (f *File) SameFile(other *File) bool {
	return other != nil && bytes.Equal(f.payload, other.payload)
}

// Stream opens the underlying stream through the file's loader. Callers
// own the returned stream.
func (f *File) Stream() (Stream, error) {
	return f.factory.openStream(f.payload)
}

// data returns the complete font binary, reading it on first use. The
// stream stays open as long as the fragment is held: memory-mapped
// fragments alias the mapping.
func (f *File) data() (binSegm, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bin != nil {
		return f.bin, nil
	}
	s, err := f.factory.openStream(f.payload)
	if err != nil {
		return nil, err
	}
	frag, err := readEntire(s)
	if err != nil {
		if c, ok := s.(interface{ Close() error }); ok {
			c.Close()
		}
		return nil, err
	}
	f.stream = s
	f.frag = frag
	f.bin = frag.Bytes()
	return f.bin, nil
}

// Analyze inspects the font data and reports whether the engine can use it,
// which container format it has, and how many faces it holds. A file the
// loader cannot open yields an error; unsupported but readable data yields
// supported=false and no error.
func (f *File) Analyze() (supported bool, format FileFormat, faces int, err error) {
	bin, err := f.data()
	if err != nil {
		return false, FormatUnknown, 0, err
	}
	format, faces = analyzeBinary(bin)
	supported = format != FormatUnknown
	tracer().Debugf("analyzed font file: %s with %d face(s)", format, faces)
	return supported, format, faces, nil
}

// Release drops the cached font binary and closes the stream behind it.
// The File stays usable; the next access re-opens the stream. Faces created
// from the file keep their own references to the data they need.
func (f *File) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.frag != nil {
		f.frag.Release()
		f.frag = nil
		f.bin = nil
	}
	if f.stream != nil {
		if c, ok := f.stream.(interface{ Close() error }); ok {
			c.Close()
		}
		f.stream = nil
	}
}

// faceData returns the standalone font binary for one face of the file.
// For collections the member font is extracted into a fresh buffer. The
// result never aliases the file's cache, so faces survive File.Release.
func (f *File) faceData(index int) ([]byte, error) {
	bin, err := f.data()
	if err != nil {
		return nil, err
	}
	format, faces := analyzeBinary(bin)
	switch format {
	case FormatUnknown:
		return nil, core.Error(core.EINVALID, "font file format not supported")
	case FormatCollection:
		return extractMember(bin, index)
	}
	if index != 0 {
		return nil, core.Error(core.EINVALID, "font file has %d face(s), index %d requested", faces, index)
	}
	own := make([]byte, len(bin))
	copy(own, bin)
	return own, nil
}
