package layout

import (
	"math"
	"testing"
	"unicode/utf16"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/render"
	"github.com/npillmayer/satz/engine/text"
)

type recordedRun struct {
	x, y   float32
	text   string
	pos    uint32
	glyphs int
	level  uint32
	effect interface{}
}

type recordedObject struct {
	x, y   float32
	obj    inline.Object
	rtl    bool
	effect interface{}
}

// recordingRenderer captures every callback of a draw pass. Inline
// objects are delegated back to their own Draw, the way a real backend
// would.
type recordingRenderer struct {
	transform  render.Matrix
	ppd        float32
	snap       bool
	queried    int
	runs       []recordedRun
	underlines []render.Underline
	ulx        []float32
	strikes    []render.Strikethrough
	objects    []recordedObject
	runErr     error
	onGlyphRun func() error
}

func newRecorder() *recordingRenderer {
	return &recordingRenderer{transform: render.Identity(), ppd: 1}
}

func (r *recordingRenderer) CurrentTransform(ctx interface{}) (render.Matrix, error) {
	r.queried++
	return r.transform, nil
}

func (r *recordingRenderer) PixelsPerDip(ctx interface{}) (float32, error) {
	return r.ppd, nil
}

func (r *recordingRenderer) PixelSnappingDisabled(ctx interface{}) (bool, error) {
	return !r.snap, nil
}

func (r *recordingRenderer) DrawGlyphRun(ctx interface{}, x, y float32, mm format.MeasuringMode,
	run *render.GlyphRun, desc *render.GlyphRunDescription, effect interface{}) error {
	if r.onGlyphRun != nil {
		if err := r.onGlyphRun(); err != nil {
			return err
		}
	}
	if r.runErr != nil {
		return r.runErr
	}
	r.runs = append(r.runs, recordedRun{
		x:      x,
		y:      y,
		text:   string(utf16.Decode(desc.Text)),
		pos:    desc.TextPosition,
		glyphs: len(run.Glyphs),
		level:  run.BidiLevel,
		effect: effect,
	})
	return nil
}

func (r *recordingRenderer) DrawUnderline(ctx interface{}, x, y float32, ul *render.Underline,
	effect interface{}) error {
	r.underlines = append(r.underlines, *ul)
	r.ulx = append(r.ulx, x)
	return nil
}

func (r *recordingRenderer) DrawStrikethrough(ctx interface{}, x, y float32, st *render.Strikethrough,
	effect interface{}) error {
	r.strikes = append(r.strikes, *st)
	return nil
}

func (r *recordingRenderer) DrawInlineObject(ctx interface{}, x, y float32, obj inline.Object,
	sideways, rightToLeft bool, effect interface{}) error {
	r.objects = append(r.objects, recordedObject{x: x, y: y, obj: obj, rtl: rightToLeft, effect: effect})
	return obj.Draw(r, inline.DrawContext{
		OriginX:     x,
		OriginY:     y,
		RightToLeft: rightToLeft,
		Effect:      effect,
		Client:      ctx,
	})
}

func TestDrawEmitsGlyphRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 10, 20))
	require.Equal(t, 1, rec.queried)
	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	require.Equal(t, "Hi", run.text)
	require.Equal(t, 2, run.glyphs)
	require.EqualValues(t, 0, run.pos)
	require.InDelta(t, 10, run.x, 0.01)
	//
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	require.InDelta(t, 20+lm[0].Baseline, run.y, 0.01)
}

func TestDrawSnapsBaselines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	rec := newRecorder()
	rec.snap = true
	require.NoError(t, l.Draw(nil, rec, 0, 0.3))
	require.Len(t, rec.runs, 1)
	y := float64(rec.runs[0].y)
	require.InDelta(t, math.Round(y), y, 1e-4)
}

func TestDrawSplitsAtEffectBoundaries(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	require.NoError(t, l.SetDrawingEffect("red", text.MakeRange(0, 1)))
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Len(t, rec.runs, 2)
	require.Equal(t, "H", rec.runs[0].text)
	require.Equal(t, "red", rec.runs[0].effect)
	require.Equal(t, "i", rec.runs[1].text)
	require.Nil(t, rec.runs[1].effect)
	require.Greater(t, rec.runs[1].x, rec.runs[0].x)
}

func TestDrawSkipsNewlines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\nb", 300, 200)
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Len(t, rec.runs, 2)
	require.Equal(t, "a", rec.runs[0].text)
	require.Equal(t, "b", rec.runs[1].text)
	require.Greater(t, rec.runs[1].y, rec.runs[0].y)
}

func TestDrawUnderlineSegment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "hello", 300, 200)
	require.NoError(t, l.SetUnderline(true, text.MakeRange(1, 2)))
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 10, 0))
	require.Len(t, rec.underlines, 1)
	ul := rec.underlines[0]
	require.Greater(t, ul.Thickness, float32(0))
	require.Greater(t, ul.Offset, float32(0)) // below the baseline
	//
	x1, _, _, err := l.HitTestTextPosition(1, false)
	require.NoError(t, err)
	x3, _, _, err := l.HitTestTextPosition(3, false)
	require.NoError(t, err)
	require.InDelta(t, 10+x1, rec.ulx[0], 0.01)
	require.InDelta(t, x3-x1, ul.Width, 0.01)
}

func TestDrawStrikethroughSegment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "hello", 300, 200)
	require.NoError(t, l.SetStrikethrough(true, text.MakeRange(0, 5)))
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Len(t, rec.strikes, 1)
	require.Greater(t, rec.strikes[0].Thickness, float32(0))
	require.Less(t, rec.strikes[0].Offset, float32(0)) // above the baseline
}

func TestDrawInlineObject(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "axb", 300, 200)
	obj := &testObject{metrics: inline.Metrics{Width: 40, Height: 60, Baseline: 50}}
	require.NoError(t, l.SetInlineObject(obj, text.MakeRange(1, 1)))
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	//
	require.Len(t, rec.objects, 1)
	require.Equal(t, inline.Object(obj), rec.objects[0].obj)
	require.Equal(t, 1, obj.drawn)
	require.False(t, rec.objects[0].rtl)
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	require.InDelta(t, lm[0].Baseline-50, rec.objects[0].y, 0.01)
	//
	require.Len(t, rec.runs, 2)
	require.Equal(t, "a", rec.runs[0].text)
	require.Equal(t, "b", rec.runs[1].text)
}

func TestDrawRightToLeftRun(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "שלום", 300, 200)
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Len(t, rec.runs, 1)
	require.EqualValues(t, 1, rec.runs[0].level)
	require.Equal(t, 4, rec.runs[0].glyphs)
}

func TestDrawCallbackFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	rec := newRecorder()
	rec.runErr = core.Error(core.EIO, "canvas lost")
	err := l.Draw(nil, rec, 0, 0)
	require.Equal(t, core.ECALLBACK, core.Code(err))
	//
	rec = newRecorder()
	rec.onGlyphRun = func() error { panic("renderer bug") }
	err = l.Draw(nil, rec, 0, 0)
	require.Equal(t, core.ECALLBACK, core.Code(err))
	//
	// a failed draw leaves the layout usable
	rec = newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Len(t, rec.runs, 1)
}

func TestDrawFreezesAttributes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	rec := newRecorder()
	var setErr, queryErr error
	rec.onGlyphRun = func() error {
		setErr = l.SetUnderline(true, all(l))
		_, queryErr = l.ClusterMetrics()
		return nil
	}
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Equal(t, core.EREENTRY, core.Code(setErr))
	require.NoError(t, queryErr)
	//
	// thawed again after the pass
	require.NoError(t, l.SetUnderline(true, all(l)))
}

func TestDrawTrimmingSign(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "abcdefghijklmnopqrstuvwxyz", 60, 200)
	require.NoError(t, l.SetWordWrapping(format.NoWrap))
	sign, err := NewEllipsisTrimmingSign(testFormat(t, 16), testCollection(t))
	require.NoError(t, err)
	require.NoError(t, l.SetTrimming(format.Trimming{Granularity: format.TrimCharacter}, sign))
	//
	rec := newRecorder()
	require.NoError(t, l.Draw(nil, rec, 0, 0))
	require.Len(t, rec.objects, 1)
	require.Equal(t, sign, rec.objects[0].obj)
	// the delegated sign drew its own glyph run
	found := false
	for _, run := range rec.runs {
		if run.text == "…" {
			found = true
		}
	}
	require.True(t, found, "the ellipsis glyph run never reached the renderer")
}
