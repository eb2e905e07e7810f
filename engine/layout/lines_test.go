package layout

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/text"
)

func TestSingleLine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	require.EqualValues(t, 1, m.LineCount)
	require.Greater(t, m.Width, float32(0))
	require.LessOrEqual(t, m.Width, m.WidthIncludingTrailingWhitespace)
	require.Greater(t, m.Height, float32(0))
	require.Equal(t, float32(300), m.LayoutWidth)
	require.Equal(t, float32(200), m.LayoutHeight)
	//
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	require.Len(t, lm, 1)
	require.EqualValues(t, 2, lm[0].Length)
	require.EqualValues(t, 0, lm[0].NewlineLength)
	require.Equal(t, m.Height, lm[0].Height)
}

func TestNewlines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	cases := map[string]struct {
		text    string
		lines   int
		lengths []uint32
	}{
		"interior":     {"a\nb", 2, []uint32{2, 1}},
		"trailing":     {"b\n", 2, []uint32{2, 0}},
		"empty":        {"", 1, []uint32{0}},
		"only newline": {"\n", 2, []uint32{1, 0}},
		"crlf":         {"a\r\nb", 2, []uint32{3, 1}},
	}
	for name, c := range cases {
		l := testLayout(t, c.text, 300, 200)
		lm, err := l.LineMetrics()
		require.NoError(t, err, name)
		if len(lm) != c.lines {
			t.Errorf("%s: got %d lines, expected %d", name, len(lm), c.lines)
			continue
		}
		var total uint32
		for i, line := range lm {
			if line.Length != c.lengths[i] {
				t.Errorf("%s: line %d holds %d units, expected %d", name, i, line.Length, c.lengths[i])
			}
			if line.Height <= 0 {
				t.Errorf("%s: line %d has no height", name, i)
			}
			total += line.Length
		}
		if total != uint32(len(text.FromString(c.text).Units())) {
			t.Errorf("%s: line lengths sum to %d units", name, total)
		}
	}
}

func TestWordWrap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	// three em wide, so at most one short word per line
	l := testLayout(t, "one two three four", 48, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	require.GreaterOrEqual(t, m.LineCount, uint32(2))
	require.LessOrEqual(t, m.Width, float32(48.01))
	//
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	var total uint32
	for i, line := range lm {
		total += line.Length
		if i < len(lm)-1 && line.TrailingWhitespaceLength == 0 {
			t.Errorf("line %d broke mid-word, no trailing whitespace", i)
		}
	}
	require.EqualValues(t, 18, total)
	for i := range l.lines {
		if w := l.lines[i].width; w > 48.01 {
			t.Errorf("line %d is %f wide in a 48 DIP box", i, w)
		}
	}
}

func TestWrappingModes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	const unbreakable = "abcdefghijklmnop"
	cases := map[string]struct {
		mode     format.WordWrapping
		multiple bool // breaks the word across lines
	}{
		"wrap overflows":      {format.Wrap, false},
		"whole word":          {format.WholeWord, false},
		"no wrap":             {format.NoWrap, false},
		"emergency":           {format.EmergencyBreak, true},
		"character":           {format.CharacterBreak, true},
	}
	for name, c := range cases {
		l := testLayout(t, unbreakable, 50, 200)
		require.NoError(t, l.SetWordWrapping(c.mode))
		m, err := l.Metrics()
		require.NoError(t, err, name)
		if c.multiple {
			if m.LineCount < 2 {
				t.Errorf("%s: word was not broken, %d lines", name, m.LineCount)
			}
			if m.Width > 50.01 {
				t.Errorf("%s: line sticks out to %f", name, m.Width)
			}
		} else {
			if m.LineCount != 1 {
				t.Errorf("%s: expected a single overflowing line, got %d", name, m.LineCount)
			}
			if m.Width <= 50 {
				t.Errorf("%s: expected overflow beyond 50, width is %f", name, m.Width)
			}
		}
	}
}

func TestZeroWidthLayout(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	// wrap in a zero-width box degrades to emergency breaking
	l := testLayout(t, "ab c", 0, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	require.EqualValues(t, 4, m.LineCount)
}

func TestAlignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "Hi", 300, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	w := m.Width
	require.InDelta(t, 0, m.Left, 0.01)
	//
	require.NoError(t, l.SetTextAlignment(format.AlignCenter))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, (300-w)/2, m.Left, 0.01)
	require.InDelta(t, w, m.Width, 0.01)
	//
	require.NoError(t, l.SetTextAlignment(format.AlignTrailing))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, 300-w, m.Left, 0.01)
}

func TestJustification(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "aaa bbb ccc ddd eee", 80, 200)
	require.NoError(t, l.SetTextAlignment(format.AlignJustified))
	m, err := l.Metrics()
	require.NoError(t, err)
	require.GreaterOrEqual(t, m.LineCount, uint32(2))
	// every line but the last stretches to the layout width
	for i := 0; i < len(l.lines)-1; i++ {
		if w := l.lines[i].width; w < 79.9 || w > 80.1 {
			t.Errorf("justified line %d is %f wide, expected 80", i, w)
		}
	}
	// the last line keeps its natural width
	last := l.lines[len(l.lines)-1]
	if last.width >= 79.9 {
		t.Errorf("last line was justified to %f", last.width)
	}
}

func TestParagraphAlignment(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\nb", 300, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	h := m.Height
	require.InDelta(t, 0, m.Top, 0.01)
	//
	require.NoError(t, l.SetParagraphAlignment(format.ParagraphFar))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, 200-h, m.Top, 0.01)
	//
	require.NoError(t, l.SetParagraphAlignment(format.ParagraphCenter))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, (200-h)/2, m.Top, 0.01)
}

func TestFlowDirection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\nb", 300, 200)
	require.NoError(t, l.SetFlowDirection(format.BottomToTop))
	_, y0, _, err := l.HitTestTextPosition(0, false)
	require.NoError(t, err)
	_, y1, _, err := l.HitTestTextPosition(2, false)
	require.NoError(t, err)
	if y0 <= y1 {
		t.Errorf("bottom-up flow puts the first line at y=%f above the second at y=%f", y0, y1)
	}
}

func TestLineSpacing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\nb\nc", 300, 300)
	require.NoError(t, l.SetLineSpacing(format.SpacingUniform, 40, 30))
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	for i, line := range lm {
		if line.Height != 40 || line.Baseline != 30 {
			t.Errorf("line %d spaced %f/%f, expected 40/30", i, line.Height, line.Baseline)
		}
	}
	m, err := l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, 40*float64(m.LineCount), float64(m.Height), 0.01)
	//
	require.NoError(t, l.SetLineSpacing(format.SpacingDefault, 0, 0))
	natural, err := l.LineMetrics()
	require.NoError(t, err)
	require.NoError(t, l.SetLineSpacing(format.SpacingProportional, 2, 2))
	doubled, err := l.LineMetrics()
	require.NoError(t, err)
	for i := range natural {
		require.InDelta(t, 2*natural[i].Height, doubled[i].Height, 0.01)
	}
}

func TestIncrementalTabs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\tb", 300, 200)
	// default tab stops sit at multiples of four em
	x, _, _, err := l.HitTestTextPosition(2, false)
	require.NoError(t, err)
	require.InDelta(t, 64, x, 0.01)
	//
	require.NoError(t, l.SetIncrementalTabStop(50))
	x, _, _, err = l.HitTestTextPosition(2, false)
	require.NoError(t, err)
	require.InDelta(t, 50, x, 0.01)
}

func TestTrimming(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a rather long single line of text", 60, 200)
	require.NoError(t, l.SetWordWrapping(format.NoWrap))
	m, err := l.Metrics()
	require.NoError(t, err)
	require.Greater(t, m.Width, float32(60))
	//
	require.NoError(t, l.SetTrimming(format.Trimming{Granularity: format.TrimCharacter}, nil))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.LessOrEqual(t, m.Width, float32(60.01))
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	require.Len(t, lm, 1)
	require.True(t, lm[0].IsTrimmed)
	//
	// with a sign, the sign's width is part of the budget
	sign, err := NewEllipsisTrimmingSign(testFormat(t, 16), testCollection(t))
	require.NoError(t, err)
	require.NoError(t, l.SetTrimming(format.Trimming{Granularity: format.TrimCharacter}, sign))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.LessOrEqual(t, m.Width, float32(60.01))
}

func TestTrimmingDelimiter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	// path ellipsis: keep the tail following the last slash
	l := testLayout(t, "/usr/local/share/fonts/gofont.ttf", 100, 200)
	require.NoError(t, l.SetWordWrapping(format.NoWrap))
	require.NoError(t, l.SetTrimming(format.Trimming{
		Granularity:    format.TrimCharacter,
		Delimiter:      '/',
		DelimiterCount: 1,
	}, nil))
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	require.True(t, lm[0].IsTrimmed)
	// the tail after the delimiter stays visible
	ln := &l.lines[0]
	tail := "gofont.ttf"
	for ci := ln.cto - len(tail); ci < ln.cto; ci++ {
		if ln.hidden[ci-ln.cfrom] {
			t.Errorf("cluster %d of the preserved tail was trimmed away", ci)
		}
	}
}

func TestFamilySwitchChangesAdvances(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "iiii", 300, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	narrow := m.Width
	//
	require.NoError(t, l.SetFamily("Go Mono", all(l)))
	fam, r := l.Family(0)
	require.Equal(t, "Go Mono", fam)
	require.Equal(t, all(l), r)
	m, err = l.Metrics()
	require.NoError(t, err)
	if m.Width <= narrow {
		t.Errorf("monospaced i advance %f not wider than proportional %f", m.Width, narrow)
	}
}

func TestCharacterSpacing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "ab", 300, 200)
	m, err := l.Metrics()
	require.NoError(t, err)
	natural := m.Width
	//
	require.NoError(t, l.SetCharacterSpacing(2, 3, 0, all(l)))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, natural+10, m.Width, 0.01)
	//
	require.NoError(t, l.SetCharacterSpacing(0, 0, 50, all(l)))
	m, err = l.Metrics()
	require.NoError(t, err)
	require.InDelta(t, 100, m.Width, 0.01)
}

func TestBidiReordering(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "שלום", 300, 200)
	cm, err := l.ClusterMetrics()
	require.NoError(t, err)
	require.Len(t, cm, 4)
	for i, c := range cm {
		if !c.IsRightToLeft {
			t.Errorf("hebrew cluster %d not marked right-to-left", i)
		}
	}
	m, err := l.Metrics()
	require.NoError(t, err)
	require.EqualValues(t, 1, m.MaxBidiDepth)
	// logically first is visually rightmost
	x0, _, _, err := l.HitTestTextPosition(0, false)
	require.NoError(t, err)
	x3, _, _, err := l.HitTestTextPosition(3, false)
	require.NoError(t, err)
	if x0 <= x3 {
		t.Errorf("first letter at x=%f should sit right of last at x=%f", x0, x3)
	}
}

func TestSurrogatePairCluster(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "a\U0001F600b", 300, 200)
	cm, err := l.ClusterMetrics()
	require.NoError(t, err)
	require.Len(t, cm, 3)
	require.EqualValues(t, 1, cm[0].Length)
	require.EqualValues(t, 2, cm[1].Length)
	require.EqualValues(t, 1, cm[2].Length)
	//
	lm, err := l.LineMetrics()
	require.NoError(t, err)
	require.EqualValues(t, 4, lm[0].Length)
}

func TestDetermineMinWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.layout")
	defer teardown()
	//
	l := testLayout(t, "aa bbbb cc", 300, 200)
	minW, err := l.DetermineMinWidth()
	require.NoError(t, err)
	require.Greater(t, minW, float32(0))
	m, err := l.Metrics()
	require.NoError(t, err)
	require.Less(t, minW, m.Width)
	// wrapping at the minimum width fits every word
	narrow := testLayout(t, "aa bbbb cc", minW, 200)
	nm, err := narrow.Metrics()
	require.NoError(t, err)
	require.EqualValues(t, 3, nm.LineCount)
	require.InDelta(t, minW, nm.Width, 0.01)
}
