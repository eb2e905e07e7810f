package render

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/satz/core"
)

func TestMatrixApply(t *testing.T) {
	m := Identity()
	x, y := m.Apply(3, 4)
	require.Equal(t, float32(3), x)
	require.Equal(t, float32(4), y)
	//
	m = Matrix{M11: 2, M22: 2, Dx: 10, Dy: -1}
	x, y = m.Apply(3, 4)
	require.Equal(t, float32(16), x)
	require.Equal(t, float32(7), y)
	require.False(t, m.IsTranslation())
	require.True(t, Matrix{M11: 1, M22: 1, Dx: 5, Dy: 5}.IsTranslation())
}

func TestSnapBaseline(t *testing.T) {
	id := Identity()
	cases := map[string]struct {
		m        Matrix
		ppd      float32
		y        float32
		expected float32
	}{
		"down":        {id, 1, 10.3, 10},
		"up":          {id, 1, 10.6, 11},
		"half pixels": {id, 2, 10.3, 10.5},
		"translated":  {Matrix{M11: 1, M22: 1, Dy: 0.5}, 1, 10.3, 10.5},
		"scaled":      {Matrix{M11: 2, M22: 2}, 1, 10.3, 10.3},
		"bad ppd":     {id, 0, 10.3, 10.3},
	}
	for name, c := range cases {
		if got := SnapBaseline(c.m, c.ppd, c.y); got != c.expected {
			t.Errorf("%s: snapped %f to %f, expected %f", name, c.y, got, c.expected)
		}
	}
}

func TestCallbackWrapsFailures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	err := Callback("DrawGlyphRun", func() error { return nil })
	require.NoError(t, err)
	//
	err = Callback("DrawGlyphRun", func() error {
		return core.Error(core.EIO, "client ran out of canvas")
	})
	require.Error(t, err)
	require.Equal(t, core.ECALLBACK, core.Code(err))
	//
	err = Callback("DrawUnderline", func() error { panic("client bug") })
	require.Error(t, err)
	require.Equal(t, core.ECALLBACK, core.Code(err))
}

func TestGlyphRunWidth(t *testing.T) {
	run := &GlyphRun{Advances: []float32{4, 5, 6}, BidiLevel: 1}
	require.Equal(t, float32(15), run.Width())
	require.True(t, run.RightToLeft())
}
