package font

import (
	"github.com/npillmayer/satz/core"
)

// NewCustomCollection builds a font collection by running a registered
// collection loader over a key. The loader's enumerator yields the font
// files; their faces are classified and grouped into families in
// enumeration order.
func (f *Factory) NewCustomCollection(h *CollectionHandle, key interface{}) (*Collection, error) {
	if h == nil || h.factory != f {
		return nil, core.Error(core.EINVALID, "loader handle does not belong to this factory")
	}
	payload, err := h.WrapKey(key)
	if err != nil {
		return nil, err
	}
	hh, raw, err := f.resolveCollectionKey(payload)
	if err != nil {
		return nil, err
	}
	c := newCollection(f)
	if err := enumerateInto(c, hh.loader, raw); err != nil {
		return nil, err
	}
	tracer().Infof("built custom font collection with %d families", c.NumFamilies())
	return c, nil
}

// enumerateInto drives a collection loader's enumerator, shielding the
// engine from callback panics.
func enumerateInto(c *Collection, loader CollectionLoader, key []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = core.Error(core.ECALLBACK, "font collection loader panicked: %v", r)
		}
	}()
	enum, cberr := loader.Enumerate(key)
	if cberr != nil {
		return core.WrapError(cberr, core.ECALLBACK, "font collection loader failed")
	}
	if enum == nil {
		return core.Error(core.ECALLBACK, "font collection loader returned no enumerator")
	}
	for enum.Next() {
		file, cberr := enum.File()
		if cberr != nil {
			return core.WrapError(cberr, core.ECALLBACK, "font collection enumerator failed")
		}
		if file == nil {
			continue
		}
		c.addFile(file)
	}
	return nil
}

// NewCollectionFromFiles builds a collection directly from font files,
// without going through a loader registration.
func (f *Factory) NewCollectionFromFiles(files ...*File) (*Collection, error) {
	c := newCollection(f)
	for _, file := range files {
		if file == nil {
			return nil, core.Error(core.EINVALID, "cannot add nil font file to collection")
		}
		c.addFile(file)
	}
	return c, nil
}
