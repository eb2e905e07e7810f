package layout

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/satz/engine/format"
)

func TestCaretPositions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "hello", 300, 200)
	prev := float32(-1)
	for pos := uint32(0); pos <= 5; pos++ {
		x, y, m, err := l.HitTestTextPosition(pos, false)
		require.NoError(t, err)
		require.InDelta(t, 0, y, 0.01)
		require.True(t, m.IsText)
		if x < prev {
			t.Errorf("caret at %d sits at x=%f, left of the previous caret %f", pos, x, prev)
		}
		prev = x
	}
	// the trailing caret of a cluster is the leading caret of the next
	for pos := uint32(0); pos < 5; pos++ {
		xt, _, _, err := l.HitTestTextPosition(pos, true)
		require.NoError(t, err)
		xl, _, _, err := l.HitTestTextPosition(pos+1, false)
		require.NoError(t, err)
		require.InDelta(t, xt, xl, 0.01, "seam between %d and %d", pos, pos+1)
	}
	// positions beyond the text keep resolving to the end of the last line
	xEnd, _, _, err := l.HitTestTextPosition(5, false)
	require.NoError(t, err)
	xFar, _, _, err := l.HitTestTextPosition(99, true)
	require.NoError(t, err)
	require.Equal(t, xEnd, xFar)
}

func TestHitTestPoint(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "ab", 300, 200)
	x0, _, _, err := l.HitTestTextPosition(0, false)
	require.NoError(t, err)
	x1, _, _, err := l.HitTestTextPosition(0, true)
	require.NoError(t, err)
	//
	m, trailing, inside, err := l.HitTestPoint(x0+(x1-x0)/4, 1)
	require.NoError(t, err)
	require.True(t, inside)
	require.False(t, trailing)
	require.EqualValues(t, 0, m.TextPosition)
	require.EqualValues(t, 1, m.Length)
	//
	m, trailing, inside, err = l.HitTestPoint(x0+(x1-x0)*3/4, 1)
	require.NoError(t, err)
	require.True(t, inside)
	require.True(t, trailing)
	require.EqualValues(t, 0, m.TextPosition)
	//
	// left of the line: clamped to the first cluster's leading side
	m, trailing, inside, err = l.HitTestPoint(-50, 1)
	require.NoError(t, err)
	require.False(t, inside)
	require.False(t, trailing)
	require.EqualValues(t, 0, m.TextPosition)
	//
	// beyond the right edge: trailing side of the last cluster
	m, trailing, inside, err = l.HitTestPoint(250, 1)
	require.NoError(t, err)
	require.False(t, inside)
	require.True(t, trailing)
	require.EqualValues(t, 1, m.TextPosition)
	//
	// far above and below clamp to the single line
	_, _, inside, err = l.HitTestPoint(x0+1, -100)
	require.NoError(t, err)
	require.False(t, inside)
	_, _, inside, err = l.HitTestPoint(x0+1, 1000)
	require.NoError(t, err)
	require.False(t, inside)
}

func TestHitTestPointLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\nb", 300, 200)
	_, y1, _, err := l.HitTestTextPosition(2, false)
	require.NoError(t, err)
	require.Greater(t, y1, float32(0))
	m, _, inside, err := l.HitTestPoint(1, y1+1)
	require.NoError(t, err)
	require.True(t, inside)
	require.EqualValues(t, 2, m.TextPosition)
	//
	// the empty line after a trailing newline is a valid caret target
	l2 := testLayout(t, "b\n", 300, 200)
	lm, err := l2.LineMetrics()
	require.NoError(t, err)
	m, trailing, _, err := l2.HitTestPoint(0, lm[0].Height+1)
	require.NoError(t, err)
	require.False(t, trailing)
	require.EqualValues(t, 2, m.TextPosition)
	require.EqualValues(t, 0, m.Length)
	require.False(t, m.IsText)
}

func TestHitTestTextRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "hello world", 300, 200)
	rects, err := l.HitTestTextRange(6, 5)
	require.NoError(t, err)
	require.Len(t, rects, 1)
	require.EqualValues(t, 6, rects[0].TextPosition)
	require.EqualValues(t, 5, rects[0].Length)
	//
	xl, _, _, err := l.HitTestTextPosition(6, false)
	require.NoError(t, err)
	xr, _, _, err := l.HitTestTextPosition(10, true)
	require.NoError(t, err)
	require.InDelta(t, xl, rects[0].Left, 0.01)
	require.InDelta(t, xr, rects[0].Left+rects[0].Width, 0.01)
	//
	// a zero-length range selects nothing
	rects, err = l.HitTestTextRange(3, 0)
	require.NoError(t, err)
	require.Empty(t, rects)
	// overlong ranges clamp to the paragraph
	rects, err = l.HitTestTextRange(6, 500)
	require.NoError(t, err)
	require.Len(t, rects, 1)
	require.EqualValues(t, 5, rects[0].Length)
}

func TestHitTestTextRangeAcrossLines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "one two three four", 48, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	rects, err := l.HitTestTextRange(0, 18)
	require.NoError(t, err)
	require.EqualValues(t, m.LineCount, len(rects))
	var total uint32
	tops := map[float32]bool{}
	for _, r := range rects {
		total += r.Length
		require.Greater(t, r.Height, float32(0))
		tops[r.Top] = true
	}
	require.EqualValues(t, 18, total)
	require.EqualValues(t, m.LineCount, len(tops))
}

func TestHitTestRightToLeft(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "שלום", 300, 200)
	rects, err := l.HitTestTextRange(0, 4)
	require.NoError(t, err)
	require.Len(t, rects, 1)
	require.EqualValues(t, 0, rects[0].TextPosition)
	require.EqualValues(t, 4, rects[0].Length)
	require.EqualValues(t, 1, rects[0].BidiLevel)
}

func TestHitTestTrimmedRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "abcdefghijklmnopqrstuvwxyz", 60, 200)
	require.NoError(t, l.SetWordWrapping(format.NoWrap))
	require.NoError(t, l.SetTrimming(format.Trimming{Granularity: format.TrimCharacter}, nil))
	rects, err := l.HitTestTextRange(0, 26)
	require.NoError(t, err)
	require.NotEmpty(t, rects)
	var trimmed, total uint32
	for _, r := range rects {
		total += r.Length
		if r.IsTrimmed {
			trimmed++
			require.Equal(t, float32(0), r.Width)
		}
	}
	require.EqualValues(t, 26, total)
	require.EqualValues(t, 1, trimmed)
}
