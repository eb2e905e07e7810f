package font

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"sync"

	"github.com/npillmayer/satz/core"
)

// FileLoader is the client-supplied source of font file streams. The raw key
// bytes passed to OpenStream are exactly the bytes the client wrapped with
// its loader handle; the engine treats them as opaque.
//
// Loaders must be safe for concurrent use.
type FileLoader interface {
	OpenStream(key []byte) (Stream, error)
}

// CollectionLoader enumerates the font files belonging to a collection key.
type CollectionLoader interface {
	Enumerate(key []byte) (FileEnumerator, error)
}

// FileEnumerator walks the font files of a custom collection, in the order
// the collection defines. A typical implementation creates its files with
// Factory.FileReference.
type FileEnumerator interface {
	Next() bool
	File() (*File, error)
}

// --- Type fingerprints ------------------------------------------------------

// Loader keys cross an opaque boundary as byte payloads. To keep two loaders
// with unrelated key types from being confused, each payload is prefixed
// with a 64-bit FNV-1a hash over the identity of the key's Go type. The
// prefix is validated on every dispatch.

const keyPrefixLen = 8

func typeFingerprint(t reflect.Type) uint64 {
	h := fnv.New64a()
	h.Write([]byte(t.PkgPath()))
	h.Write([]byte{0})
	h.Write([]byte(t.String()))
	return h.Sum64()
}

// keyBytes marshals a key value of a registered type. Key types must have
// string or byte-slice kind.
func keyBytes(v reflect.Value) ([]byte, error) {
	switch v.Kind() {
	case reflect.String:
		return []byte(v.String()), nil
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes(), nil
		}
	}
	return nil, core.Error(core.EINVALID, "loader key type %s must have string or []byte kind", v.Type())
}

// --- Registry ---------------------------------------------------------------

// Factory is the root object of the catalogue. It owns the registries of
// font-file and font-collection loaders and the lazily built system font
// collection. A Factory is safe for concurrent use.
type Factory struct {
	mu          sync.Mutex
	fileLoaders map[uint64]*LoaderHandle
	collLoaders map[uint64]*CollectionHandle
	localHandle *LoaderHandle
	embHandle   *LoaderHandle
	sysOnce     sync.Once
	system      *Collection
	sysErr      error
}

// NewFactory creates a factory with the engine's own loaders for local
// files and embedded fonts pre-registered.
func NewFactory() *Factory {
	f := &Factory{
		fileLoaders: make(map[uint64]*LoaderHandle),
		collLoaders: make(map[uint64]*CollectionHandle),
	}
	var err error
	if f.localHandle, err = f.RegisterFileLoader(localFileKey(""), localFileLoader{}); err != nil {
		panic("cannot register local font file loader") // this cannot happen
	}
	if f.embHandle, err = f.RegisterFileLoader(embeddedFontKey(""), embeddedFontLoader{}); err != nil {
		panic("cannot register embedded font loader") // this cannot happen
	}
	return f
}

// LoaderHandle pins a registered file loader to the key type it was
// registered with. Only keys of that type can be wrapped for this loader.
type LoaderHandle struct {
	factory *Factory
	loader  FileLoader
	keyType reflect.Type
	fp      uint64
	valid   bool // guarded by factory.mu
}

// CollectionHandle is the collection-loader counterpart of LoaderHandle.
type CollectionHandle struct {
	factory *Factory
	loader  CollectionLoader
	keyType reflect.Type
	fp      uint64
	valid   bool // guarded by factory.mu
}

// RegisterFileLoader registers a loader under the type of keyProto. The
// prototype's value is ignored; only its type matters. Registering a second
// loader with the same key type fails.
func (f *Factory) RegisterFileLoader(keyProto interface{}, loader FileLoader) (*LoaderHandle, error) {
	if loader == nil {
		return nil, core.Error(core.EINVALID, "cannot register nil font file loader")
	}
	t := reflect.TypeOf(keyProto)
	if t == nil {
		return nil, core.Error(core.EINVALID, "loader key prototype must not be untyped nil")
	}
	if _, err := keyBytes(reflect.Zero(t)); err != nil {
		return nil, err
	}
	fp := typeFingerprint(t)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fileLoaders[fp]; ok {
		return nil, core.Error(core.EINVALID, "a font file loader for key type %s is already registered", t)
	}
	h := &LoaderHandle{factory: f, loader: loader, keyType: t, fp: fp, valid: true}
	f.fileLoaders[fp] = h
	tracer().Debugf("registered font file loader for key type %s (%#x)", t, fp)
	return h, nil
}

// UnregisterFileLoader invalidates the handle and all future key
// resolutions through it. Streams already open remain valid.
func (f *Factory) UnregisterFileLoader(h *LoaderHandle) error {
	if h == nil || h.factory != f {
		return core.Error(core.EINVALID, "loader handle does not belong to this factory")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !h.valid {
		return core.Error(core.EMISSING, "font file loader already unregistered")
	}
	h.valid = false
	delete(f.fileLoaders, h.fp)
	return nil
}

// RegisterCollectionLoader registers a collection loader under the type of
// keyProto, analogous to RegisterFileLoader.
func (f *Factory) RegisterCollectionLoader(keyProto interface{}, loader CollectionLoader) (*CollectionHandle, error) {
	if loader == nil {
		return nil, core.Error(core.EINVALID, "cannot register nil font collection loader")
	}
	t := reflect.TypeOf(keyProto)
	if t == nil {
		return nil, core.Error(core.EINVALID, "loader key prototype must not be untyped nil")
	}
	if _, err := keyBytes(reflect.Zero(t)); err != nil {
		return nil, err
	}
	fp := typeFingerprint(t)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.collLoaders[fp]; ok {
		return nil, core.Error(core.EINVALID, "a font collection loader for key type %s is already registered", t)
	}
	h := &CollectionHandle{factory: f, loader: loader, keyType: t, fp: fp, valid: true}
	f.collLoaders[fp] = h
	tracer().Debugf("registered font collection loader for key type %s (%#x)", t, fp)
	return h, nil
}

// UnregisterCollectionLoader invalidates the handle; collections already
// built from it stay usable.
func (f *Factory) UnregisterCollectionLoader(h *CollectionHandle) error {
	if h == nil || h.factory != f {
		return core.Error(core.EINVALID, "loader handle does not belong to this factory")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !h.valid {
		return core.Error(core.EMISSING, "font collection loader already unregistered")
	}
	h.valid = false
	delete(f.collLoaders, h.fp)
	return nil
}

// WrapKey produces the payload for a key value: the loader's type
// fingerprint followed by the key bytes. The key must be of the exact type
// the loader was registered with.
func (h *LoaderHandle) WrapKey(key interface{}) ([]byte, error) {
	t := reflect.TypeOf(key)
	if t != h.keyType {
		return nil, core.Error(core.EINVALID, "loader key has type %v, registered type is %v", t, h.keyType)
	}
	raw, err := keyBytes(reflect.ValueOf(key))
	if err != nil {
		return nil, err
	}
	payload := make([]byte, keyPrefixLen+len(raw))
	binary.BigEndian.PutUint64(payload, h.fp)
	copy(payload[keyPrefixLen:], raw)
	return payload, nil
}

// WrapKey produces the payload for a collection key, analogous to
// LoaderHandle.WrapKey.
func (h *CollectionHandle) WrapKey(key interface{}) ([]byte, error) {
	t := reflect.TypeOf(key)
	if t != h.keyType {
		return nil, core.Error(core.EINVALID, "loader key has type %v, registered type is %v", t, h.keyType)
	}
	raw, err := keyBytes(reflect.ValueOf(key))
	if err != nil {
		return nil, err
	}
	payload := make([]byte, keyPrefixLen+len(raw))
	binary.BigEndian.PutUint64(payload, h.fp)
	copy(payload[keyPrefixLen:], raw)
	return payload, nil
}

// resolveFileKey validates a payload and finds the loader it dispatches to.
func (f *Factory) resolveFileKey(payload []byte) (*LoaderHandle, []byte, error) {
	if len(payload) < keyPrefixLen {
		return nil, nil, core.Error(core.EINVALID, "malformed loader key payload of %d bytes", len(payload))
	}
	fp := binary.BigEndian.Uint64(payload)
	f.mu.Lock()
	h, ok := f.fileLoaders[fp]
	f.mu.Unlock()
	if !ok {
		return nil, nil, core.Error(core.EMISSING, "no font file loader registered for key fingerprint %#x", fp)
	}
	return h, payload[keyPrefixLen:], nil
}

func (f *Factory) resolveCollectionKey(payload []byte) (*CollectionHandle, []byte, error) {
	if len(payload) < keyPrefixLen {
		return nil, nil, core.Error(core.EINVALID, "malformed loader key payload of %d bytes", len(payload))
	}
	fp := binary.BigEndian.Uint64(payload)
	f.mu.Lock()
	h, ok := f.collLoaders[fp]
	f.mu.Unlock()
	if !ok {
		return nil, nil, core.Error(core.EMISSING, "no font collection loader registered for key fingerprint %#x", fp)
	}
	return h, payload[keyPrefixLen:], nil
}

// openStream dispatches a wrapped key payload to its loader. Loader panics
// are recovered and surfaced as callback errors.
func (f *Factory) openStream(payload []byte) (s Stream, err error) {
	h, raw, err := f.resolveFileKey(payload)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = core.Error(core.ECALLBACK, "font file loader panicked: %v", r)
		}
	}()
	s, cberr := h.loader.OpenStream(raw)
	if cberr != nil {
		return nil, core.WrapError(cberr, core.ECALLBACK, "font file loader failed for key")
	}
	if s == nil {
		return nil, core.Error(core.ECALLBACK, "font file loader returned no stream")
	}
	return s, nil
}

// --- The local file loader --------------------------------------------------

// localFileKey keys the engine's own loader for font files reachable
// through the file system.
type localFileKey string

// localFileLoader maps local file paths to memory-mapped streams.
type localFileLoader struct{}

func (localFileLoader) OpenStream(key []byte) (Stream, error) {
	return OpenMmapStream(string(key))
}

var _ FileLoader = localFileLoader{}

func (h *LoaderHandle) String() string {
	return fmt.Sprintf("LoaderHandle(%s, %#x)", h.keyType, h.fp)
}
