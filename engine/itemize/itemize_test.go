package itemize

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/text"
)

type para struct {
	buf   *text.Buffer
	dir   format.ReadingDirection
	subst func(pos int) (*format.NumberSubstitution, int)
}

func source(s string, dir format.ReadingDirection) *para {
	return &para{buf: text.FromString(s), dir: dir}
}

func (p *para) TextAt(pos int) []uint16 {
	return p.buf.Slice(pos, p.buf.Len())
}

func (p *para) TextBefore(pos int) []uint16 {
	return p.buf.Slice(0, pos)
}

func (p *para) LocaleName(pos int) (string, int) {
	return "en-US", p.buf.Len() - pos
}

func (p *para) NumberSubstitution(pos int) (*format.NumberSubstitution, int) {
	if p.subst != nil {
		return p.subst(pos)
	}
	return nil, p.buf.Len() - pos
}

func (p *para) ReadingDirection() format.ReadingDirection {
	return p.dir
}

func TestBidiPlainLatin(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	runs, max := BidiRuns(source("Hello, world", format.LeftToRight))
	require.Len(t, runs, 1)
	if runs[0].Level != 0 || runs[0].Range != text.MakeRange(0, 12) {
		t.Errorf("expected one level-0 run over the whole text, got %v", runs[0])
	}
	if max != 0 {
		t.Errorf("expected max level 0, got %d", max)
	}
}

func TestBidiMixed(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	runs, max := BidiRuns(source("abc עברית xyz", format.LeftToRight))
	for _, r := range runs {
		t.Logf("run %v level %d", r.Range, r.Level)
	}
	require.Len(t, runs, 3)
	require.Equal(t, uint8(0), runs[0].Level)
	require.Equal(t, uint8(1), runs[1].Level)
	require.Equal(t, uint8(0), runs[2].Level)
	if runs[1].Range != text.MakeRange(4, 5) {
		t.Errorf("expected the Hebrew stretch at [4…9), got %v", runs[1].Range)
	}
	if !runs[1].RightToLeft() || runs[0].RightToLeft() {
		t.Errorf("level parity does not match directions")
	}
	require.Equal(t, uint8(1), max)
}

func TestBidiRTLBase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	runs, max := BidiRuns(source("abc עברית xyz", format.RightToLeft))
	for _, r := range runs {
		t.Logf("run %v level %d", r.Range, r.Level)
	}
	// under a right-to-left base the Latin stretches sit at level 2 and
	// the neutrals between them join the base run
	require.Len(t, runs, 3)
	require.Equal(t, uint8(2), runs[0].Level)
	require.Equal(t, uint8(1), runs[1].Level)
	require.Equal(t, uint8(2), runs[2].Level)
	if runs[0].Range != text.MakeRange(0, 3) || runs[1].Range != text.MakeRange(3, 7) {
		t.Errorf("unexpected run boundaries %v, %v", runs[0].Range, runs[1].Range)
	}
	require.Equal(t, uint8(2), max)
}

func TestBidiNewlineChunks(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	runs, _ := BidiRuns(source("שלום\nabc", format.LeftToRight))
	require.Len(t, runs, 2)
	if runs[0].Range != text.MakeRange(0, 4) || runs[0].Level != 1 {
		t.Errorf("expected the Hebrew chunk at level 1, got %v", runs[0])
	}
	// the newline itself takes the base level and joins the Latin run
	if runs[1].Range != text.MakeRange(4, 4) || runs[1].Level != 0 {
		t.Errorf("expected newline + abc at level 0, got %v", runs[1])
	}
}

func TestBidiEmpty(t *testing.T) {
	a := Analyze(source("", format.LeftToRight))
	if len(a.Bidi) != 0 || len(a.Scripts) != 0 || len(a.Substs) != 0 {
		t.Errorf("empty paragraph must have empty partitions")
	}
	if a.MaxLevel != 0 {
		t.Errorf("empty paragraph must report depth 0")
	}
}

func TestScriptRunsSplit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	runs := ScriptRuns(source("Hello мир", format.LeftToRight))
	require.Len(t, runs, 2)
	require.Equal(t, language.MustParseScript("Latn"), runs[0].Script)
	require.Equal(t, language.MustParseScript("Cyrl"), runs[1].Script)
	if runs[0].Range != text.MakeRange(0, 6) || runs[1].Range != text.MakeRange(6, 3) {
		t.Errorf("space must stay with the run in progress: %v, %v", runs[0].Range, runs[1].Range)
	}
}

func TestScriptRunsLeadingCommon(t *testing.T) {
	runs := ScriptRuns(source("123 мир", format.LeftToRight))
	require.Len(t, runs, 1)
	require.Equal(t, language.MustParseScript("Cyrl"), runs[0].Script)
	if runs[0].Range != text.MakeRange(0, 7) {
		t.Errorf("leading digits must join the first strong script, got %v", runs[0].Range)
	}
}

func TestScriptRunsAllCommon(t *testing.T) {
	runs := ScriptRuns(source("123 456", format.LeftToRight))
	require.Len(t, runs, 1)
	require.Equal(t, language.MustParseScript("Zyyy"), runs[0].Script)
}

func TestScriptRunsInheritedMarks(t *testing.T) {
	runs := ScriptRuns(source("ae\u0301x", format.LeftToRight))
	require.Len(t, runs, 1)
	require.Equal(t, language.MustParseScript("Latn"), runs[0].Script)
	if runs[0].Range != text.MakeRange(0, 4) {
		t.Errorf("combining marks must extend the run, got %v", runs[0].Range)
	}
}

func TestScriptRunsEmoji(t *testing.T) {
	runs := ScriptRuns(source("a🦃b", format.LeftToRight))
	require.Len(t, runs, 1)
	require.Equal(t, language.MustParseScript("Latn"), runs[0].Script)
	if runs[0].Range != text.MakeRange(0, 4) {
		t.Errorf("emoji are script-common and must not split the run, got %v", runs[0].Range)
	}
}

func TestScriptFor(t *testing.T) {
	for r, iso := range map[rune]string{
		'a': "Latn",
		'ש': "Hebr",
		'中': "Hani",
		'ก': "Thai",
		'1': "Zyyy",
		'م': "Arab",
	} {
		if ScriptFor(r) != language.MustParseScript(iso) {
			t.Errorf("%#U: expected script %s, got %v", r, iso, ScriptFor(r))
		}
	}
}

func TestSubstRunsCoalesce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	arabic, err := format.NewNumberSubstitution(format.SubstNational, "ar", false)
	require.NoError(t, err)
	p := source("0123456789ab", format.LeftToRight)
	p.subst = func(pos int) (*format.NumberSubstitution, int) {
		switch {
		case pos < 5:
			return nil, 5 - pos
		case pos < 8:
			return arabic, 8 - pos
		default:
			return arabic, p.buf.Len() - pos
		}
	}
	runs := SubstRuns(p)
	require.Len(t, runs, 2, "adjacent stretches with one policy must coalesce")
	if runs[0].Subst != nil || runs[0].Range != text.MakeRange(0, 5) {
		t.Errorf("expected a nil-policy run at [0…5), got %v", runs[0].Range)
	}
	if runs[1].Subst != arabic || runs[1].Range != text.MakeRange(5, 7) {
		t.Errorf("expected the Arabic policy over [5…12), got %v", runs[1].Range)
	}
}

func TestAnalyzePartitions(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.text")
	defer teardown()
	//
	a := Analyze(source("one שתיים three", format.LeftToRight))
	n := uint32(15)
	for _, partition := range [][]text.Range{bidiRanges(a.Bidi), scriptRanges(a.Scripts), substRanges(a.Substs)} {
		var pos uint32
		for _, r := range partition {
			if r.Start != pos {
				t.Fatalf("partition has a gap at %d: %v", pos, partition)
			}
			pos = r.End()
		}
		if pos != n {
			t.Fatalf("partition stops at %d of %d", pos, n)
		}
	}
	require.Equal(t, uint8(1), a.MaxLevel)
}

func bidiRanges(runs []BidiRun) []text.Range {
	rs := make([]text.Range, len(runs))
	for i, r := range runs {
		rs[i] = r.Range
	}
	return rs
}

func scriptRanges(runs []ScriptRun) []text.Range {
	rs := make([]text.Range, len(runs))
	for i, r := range runs {
		rs[i] = r.Range
	}
	return rs
}

func substRanges(runs []SubstRun) []text.Range {
	rs := make([]text.Range, len(runs))
	for i, r := range runs {
		rs[i] = r.Range
	}
	return rs
}
