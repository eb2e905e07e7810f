package font

import (
	"testing"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

type testKey string

type testLoader struct {
	data map[string][]byte
}

func (l *testLoader) OpenStream(key []byte) (Stream, error) {
	d, ok := l.data[string(key)]
	if !ok {
		return nil, core.Error(core.EMISSING, "no font for key '%s'", key)
	}
	return NewMemoryStream(d), nil
}

func TestLoaderRegistration(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	f := NewFactory()
	loader := &testLoader{data: map[string][]byte{"a": []byte("AAAA")}}
	_, err := f.RegisterFileLoader(testKey(""), loader)
	require.NoError(t, err)
	_, err = f.RegisterFileLoader(testKey(""), loader)
	require.Error(t, err, "second registration for the same key type must fail")
	require.Equal(t, core.EINVALID, core.Code(err))
}

func TestLoaderKeyWrapping(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	f := NewFactory()
	loader := &testLoader{data: map[string][]byte{"a": []byte("AAAA")}}
	h, err := f.RegisterFileLoader(testKey(""), loader)
	require.NoError(t, err)
	payload, err := h.WrapKey(testKey("a"))
	require.NoError(t, err)
	require.Len(t, payload, 8+1, "payload is fingerprint plus key bytes")
	_, err = h.WrapKey("a") // plain string, not testKey
	require.Error(t, err, "key of unregistered type must be rejected")
	require.Equal(t, core.EINVALID, core.Code(err))

	s, err := f.openStream(payload)
	require.NoError(t, err)
	frag, err := readEntire(s)
	require.NoError(t, err)
	require.Equal(t, []byte("AAAA"), frag.Bytes())
	frag.Release()
}

func TestLoaderKeyDispatchErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	f := NewFactory()
	_, err := f.openStream([]byte{1, 2, 3})
	require.Equal(t, core.EINVALID, core.Code(err), "short payload must be invalid")
	_, err = f.openStream([]byte{9, 9, 9, 9, 9, 9, 9, 9, 'x'})
	require.Equal(t, core.EMISSING, core.Code(err), "unknown fingerprint must be missing")
}

func TestLoaderUnregister(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	f := NewFactory()
	loader := &testLoader{data: map[string][]byte{"a": []byte("AAAA")}}
	h, err := f.RegisterFileLoader(testKey(""), loader)
	require.NoError(t, err)
	payload, err := h.WrapKey(testKey("a"))
	require.NoError(t, err)
	s, err := f.openStream(payload) // stream opened before unregistering
	require.NoError(t, err)
	require.NoError(t, f.UnregisterFileLoader(h))
	_, err = f.openStream(payload)
	require.Equal(t, core.EMISSING, core.Code(err), "resolution after unregister must fail")
	size, err := s.Size() // the open stream itself stays valid
	require.NoError(t, err)
	require.EqualValues(t, 4, size)
	err = f.UnregisterFileLoader(h)
	require.Equal(t, core.EMISSING, core.Code(err))
}

type panicLoader struct{}

func (panicLoader) OpenStream(key []byte) (Stream, error) {
	panic("loader gone rogue")
}

type panicKey string

func TestLoaderPanicIsCaught(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	f := NewFactory()
	h, err := f.RegisterFileLoader(panicKey(""), panicLoader{})
	require.NoError(t, err)
	payload, err := h.WrapKey(panicKey("boom"))
	require.NoError(t, err)
	_, err = f.openStream(payload)
	require.Equal(t, core.ECALLBACK, core.Code(err), "loader panic must surface as callback error")
}
