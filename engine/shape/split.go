package shape

import (
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/text"
)

// FaceRun binds a stretch of source text to the font that shapes it. A
// nil font marks characters no candidate covers; they render as missing
// glyphs with the selector's first match.
type FaceRun struct {
	Range text.Range
	Font  *font.Font
	Scale float32
}

// SplitByFaces walks a window of text through the collection's character
// mapper and cuts it wherever the mapped font changes. Offsets in the
// returned runs are relative to the window.
func SplitByFaces(coll *font.Collection, window []uint16, sel font.Selector, locale string) []FaceRun {
	var runs []FaceRun
	for pos := 0; pos < len(window); {
		f, mapped, scale := coll.MapCharacters(window, pos, len(window)-pos, sel, locale)
		if mapped <= 0 {
			mapped = len(window) - pos
		}
		if n := len(runs); n > 0 && runs[n-1].Font == f && runs[n-1].Scale == scale {
			runs[n-1].Range.Length += uint32(mapped)
		} else {
			runs = append(runs, FaceRun{
				Range: text.MakeRange(uint32(pos), uint32(mapped)),
				Font:  f,
				Scale: scale,
			})
		}
		pos += mapped
	}
	if len(runs) > 1 {
		tracer().Debugf("window of %d units split over %d fonts", len(window), len(runs))
	}
	return runs
}

// Hyphen resolves the glyph a line break on a soft hyphen renders,
// preferring U+2010 over the ASCII hyphen-minus, together with its
// advance at the given em size.
func Hyphen(face *font.Face, size float32) (font.GlyphID, float32) {
	r := '‐'
	if !face.HasChar(r) {
		r = '-'
	}
	g := face.GlyphIndices([]rune{r})[0]
	gm, err := face.GlyphMetrics([]font.GlyphID{g})
	if err != nil || len(gm) == 0 {
		return g, 0
	}
	scale := size / float32(face.Metrics().UnitsPerEm)
	return g, float32(gm[0].AdvanceWidth) * scale
}
