package font

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

type sw struct {
	s Style
	w Weight
}

func TestGuess(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	//
	for k, v := range map[string]sw{
		"OpenSans-BoldItalic.ttf":      {StyleItalic, WeightBold},
		"Roboto-Light":                 {StyleNormal, WeightLight},
		"Lato-ExtraBoldItalic":         {StyleItalic, WeightExtraBold},
		"SomeFont-Oblique":             {StyleOblique, WeightNormal},
		"Microsoft/Cambria Math.ttf":   {StyleNormal, WeightNormal},
		"Inter-Thin.otf":               {StyleNormal, WeightThin},
		"fonts/Archivo-SemiBold.ttf":   {StyleNormal, WeightSemiBold},
		"Clarendon Black":              {StyleNormal, WeightBlack},
	} {
		style, weight := GuessStyleAndWeight(k)
		t.Logf("%s: style = %v, weight = %v", k, style, weight)
		if style != v.s || weight != v.w {
			t.Errorf("expected different style or weight for %s", k)
		}
	}
}

func TestNormalizeFontname(t *testing.T) {
	for k, v := range map[string]string{
		"Open Sans-Bold_Italic.TTF": "opensansbolditalic",
		"GoRegular":                 "goregular",
		"my-font.otf":               "myfont",
	} {
		if n := NormalizeFontname(k); n != v {
			t.Errorf("expected %s to normalize to %s, got %s", k, v, n)
		}
	}
}

func TestGuessStretch(t *testing.T) {
	if s := guessStretch("PT Sans Narrow"); s != StretchCondensed {
		t.Errorf("expected Narrow to be condensed, got %v", s)
	}
	if s := guessStretch("Archivo-SemiExpanded.ttf"); s != StretchSemiExpanded {
		t.Errorf("expected semi expanded, got %v", s)
	}
	if s := guessStretch("Go-Regular"); s != StretchNormal {
		t.Errorf("expected normal width, got %v", s)
	}
}

func TestMatchConfidences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "satz.font")
	defer teardown()
	//
	if c := MatchStyle("Font-Italic", StyleItalic); c != PerfectConfidence {
		t.Errorf("expected perfect style match, got %d", c)
	}
	if c := MatchStyle("Font-Italic", StyleOblique); c != HighConfidence {
		t.Errorf("expected high confidence for italic vs oblique, got %d", c)
	}
	if c := MatchWeight("Font-Bold", WeightBold); c != PerfectConfidence {
		t.Errorf("expected perfect weight match, got %d", c)
	}
	if c := MatchWeight("Font-SemiBold", WeightBold); c != HighConfidence {
		t.Errorf("expected high confidence for neighboring weight, got %d", c)
	}
	if c := MatchWeight("Font-Thin", WeightBlack); c != NoConfidence {
		t.Errorf("expected no confidence for thin vs black, got %d", c)
	}
}

func TestWWSDistance(t *testing.T) {
	font := &Font{weight: WeightBold, stretch: StretchNormal, style: StyleNormal}
	if d := wwsDistance(font, WeightBold, StretchNormal, StyleNormal); d != 0 {
		t.Errorf("expected exact match to have distance 0, got %d", d)
	}
	if d := wwsDistance(font, WeightNormal, StretchNormal, StyleNormal); d != 12 {
		t.Errorf("expected 300 weight units to count 12, got %d", d)
	}
	if d := wwsDistance(font, WeightBold, StretchCondensed, StyleNormal); d != 4 {
		t.Errorf("expected 2 stretch classes to count 4, got %d", d)
	}
	if d := wwsDistance(font, WeightBold, StretchNormal, StyleItalic); d != 2 {
		t.Errorf("expected italic against upright to count 2, got %d", d)
	}
}
