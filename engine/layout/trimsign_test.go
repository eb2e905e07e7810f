package layout

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/engine/inline"
)

func TestEllipsisTrimmingSign(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	sign, err := NewEllipsisTrimmingSign(testFormat(t, 16), testCollection(t))
	require.NoError(t, err)
	//
	m, err := sign.Metrics()
	require.NoError(t, err)
	require.Greater(t, m.Width, float32(0))
	require.Greater(t, m.Height, float32(0))
	require.Greater(t, m.Baseline, float32(0))
	require.Less(t, m.Baseline, m.Height)
	//
	pre, post, err := sign.BreakConditions()
	require.NoError(t, err)
	require.Equal(t, inline.Neutral, pre)
	require.Equal(t, inline.Neutral, post)
	//
	ov, err := sign.OverhangMetrics()
	require.NoError(t, err)
	require.Equal(t, inline.Overhang{}, ov)
}

func TestEllipsisTrimmingSignValidation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	_, err := NewEllipsisTrimmingSign(nil, testCollection(t))
	require.Equal(t, core.EINVALID, core.Code(err))
	_, err = NewEllipsisTrimmingSign(testFormat(t, 16), nil)
	require.Equal(t, core.EINVALID, core.Code(err))
}

func TestEllipsisTrimmingSignDraws(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	sign, err := NewEllipsisTrimmingSign(testFormat(t, 16), testCollection(t))
	require.NoError(t, err)
	m, err := sign.Metrics()
	require.NoError(t, err)
	//
	rec := newRecorder()
	err = sign.Draw(rec, inline.DrawContext{OriginX: 5, OriginY: 7, Effect: "dim"})
	require.NoError(t, err)
	require.Len(t, rec.runs, 1)
	require.Equal(t, "…", rec.runs[0].text)
	require.InDelta(t, 5, rec.runs[0].x, 0.01)
	require.InDelta(t, 7+m.Baseline, rec.runs[0].y, 0.01)
	require.Equal(t, "dim", rec.runs[0].effect)
	//
	// a renderer of the wrong shape is rejected
	err = sign.Draw("not a renderer", inline.DrawContext{})
	require.Equal(t, core.EINVALID, core.Code(err))
}
