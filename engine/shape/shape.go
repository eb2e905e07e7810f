package shape

import (
	"encoding/binary"
	"unicode"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	hblang "github.com/benoitkugler/textlayout/language"
	"golang.org/x/text/language"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/text"
)

// GlyphOffset is the placement adjustment of one glyph, in DIPs. Advance
// moves the glyph along the reading direction, Ascender towards the
// ascender line.
type GlyphOffset struct {
	Advance  float32
	Ascender float32
}

// ClusterFlags classify a glyph cluster for the line breaker and for
// cluster metrics.
type ClusterFlags uint8

const (
	// ClusterCanWrapAfter marks a line break opportunity after the
	// cluster. The shaper leaves it unset; the line breaker fills it in
	// from its paragraph-wide analysis.
	ClusterCanWrapAfter ClusterFlags = 1 << iota
	ClusterWhitespace                // whitespace character
	ClusterNewline                   // mandatory break character
	ClusterSoftHyphen                // U+00AD
	ClusterRightToLeft               // cluster sits in an odd-level run
)

// ShapingRun is the input to one shaper call: a window of source text
// with everything resolved that shaping depends on. Windows are cut by
// the itemizer such that level, script, locale, font and features are
// uniform over the window.
type ShapingRun struct {
	Text        []uint16 // source window, UTF-16 code units
	Level       uint8    // resolved embedding level
	Script      language.Script
	Locale      string // BCP 47 language tag
	Face        *font.Face
	Size        float32          // em size in DIPs
	Features    []format.Feature // merged feature list
	PairKerning bool
	Subst       *format.NumberSubstitution // digit substitution policy, may be nil
}

// RightToLeft reports whether the run sits at an odd embedding level.
func (run ShapingRun) RightToLeft() bool { return run.Level&1 == 1 }

// ShapedRun is the shaper output: parallel per-glyph arrays plus the
// mapping back to the source window. Lengths and positions are in DIPs.
type ShapedRun struct {
	Glyphs     []font.GlyphID // glyph indices into the face
	Advances   []float32      // per glyph
	Offsets    []GlyphOffset  // per glyph
	ClusterMap []uint16       // per source code unit: first glyph of its cluster
	Flags      []ClusterFlags // per source code unit: flags of its cluster
	Width      float32        // sum of advances
}

const softHyphen = '­'

// Shape shapes one run of text into positioned glyphs. The cluster map
// is monotonically non-decreasing for left-to-right runs and
// non-increasing for right-to-left runs. Soft hyphens shape to
// zero-width glyphs; a break landing on one is measured separately with
// Hyphen.
func Shape(run ShapingRun) (shaped ShapedRun, err error) {
	if run.Face == nil {
		return shaped, core.Error(core.EINVALID, "shaping needs a font face")
	}
	if !(run.Size > 0) {
		return shaped, core.Error(core.EINVALID, "shaping needs a positive em size, got %.2f", run.Size)
	}
	if len(run.Text) == 0 {
		return shaped, nil
	}
	runes, offsets := text.DecodeRunes(run.Text)
	input := substituteDigits(runes, run)
	hbFont, err := run.Face.ShaperFont()
	if err != nil {
		return shaped, core.WrapError(err, core.ESHAPING, "font face cannot shape")
	}
	defer func() {
		if p := recover(); p != nil {
			err = core.Error(core.ESHAPING, "shaper failed on %d characters: %v", len(input), p)
		}
	}()
	buf := hb.NewBuffer()
	buf.Props = segmentProps(run)
	buf.AddRunes(input, 0, len(input))
	buf.Shape(hbFont, features(run, len(input)))
	tracer().Debugf("shaped %d code-units into %d glyphs", len(run.Text), len(buf.Info))
	return convert(buf, run, runes, offsets), nil
}

// substituteDigits maps ASCII digits to the locale's digit shapes where
// the run's substitution policy asks for it. Unresolved-script stretches
// follow the run direction, which covers digit-only paragraphs.
func substituteDigits(runes []rune, run ShapingRun) []rune {
	n := run.Subst
	if n.Resolve() == format.SubstNone {
		return runes
	}
	apply := n.SubstitutesIn(run.Script)
	if !apply && run.RightToLeft() && run.Script.String() == "Zyyy" {
		apply = true
	}
	if !apply {
		return runes
	}
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = n.Digit(r)
	}
	return out
}

// segmentProps fills the HarfBuzz segment properties from the run.
func segmentProps(run ShapingRun) hb.SegmentProperties {
	var props hb.SegmentProperties
	if run.Locale != "" {
		props.Language = hblang.NewLanguage(run.Locale)
	}
	var none language.Script
	if run.Script != none {
		props.Script = script4HB(run.Script)
	}
	if run.RightToLeft() {
		props.Direction = hb.RightToLeft
	} else {
		props.Direction = hb.LeftToRight
	}
	return props
}

// script4HB returns a script as a HarfBuzz script.
func script4HB(s language.Script) hblang.Script {
	b := []byte(s.String())
	b[0] = byte(unicode.ToLower(rune(b[0])))
	return hblang.Script(binary.BigEndian.Uint32(b))
}

// features converts the run's merged feature list for HarfBuzz. The
// pair-kerning switch rides on the 'kern' feature and comes first, so an
// explicit kerning selection in the list takes precedence over the flag.
func features(run ShapingRun, n int) []hb.Feature {
	fs := make([]hb.Feature, 0, len(run.Features)+1)
	kern := uint32(0)
	if run.PairKerning {
		kern = 1
	}
	fs = append(fs, hb.Feature{Tag: hbtt.Tag(format.FeatureKerning), Value: kern, Start: 0, End: n})
	for _, f := range run.Features {
		fs = append(fs, hb.Feature{
			Tag:   hbtt.Tag(f.Tag),
			Value: f.Parameter,
			Start: 0,
			End:   n,
		})
	}
	return fs
}

// convert moves the HarfBuzz output into a ShapedRun, scaling design
// units to DIPs and building the per-unit cluster map. HarfBuzz tags
// every glyph with the rune index its cluster starts at; runes merged
// into a preceding cluster carry no tag of their own and inherit
// backwards.
func convert(buf *hb.Buffer, run ShapingRun, runes []rune, offsets []int) ShapedRun {
	scale := run.Size / float32(run.Face.Metrics().UnitsPerEm)
	nglyphs := len(buf.Info)
	shaped := ShapedRun{
		Glyphs:     make([]font.GlyphID, nglyphs),
		Advances:   make([]float32, nglyphs),
		Offsets:    make([]GlyphOffset, nglyphs),
		ClusterMap: make([]uint16, len(run.Text)),
		Flags:      make([]ClusterFlags, len(run.Text)),
	}
	// first glyph of the cluster starting at rune i, -1 where no cluster starts
	first := make([]int, len(runes))
	for i := range first {
		first[i] = -1
	}
	for g := range buf.Info {
		if c := int(buf.Info[g].Cluster); 0 <= c && c < len(first) {
			if first[c] < 0 || g < first[c] {
				first[c] = g
			}
		}
	}
	for g := range buf.Info {
		pos := &buf.Pos[g]
		shaped.Glyphs[g] = font.GlyphID(buf.Info[g].Glyph)
		adv := float32(pos.XAdvance) * scale
		if c := int(buf.Info[g].Cluster); 0 <= c && c < len(runes) && runes[c] == softHyphen {
			adv = 0 // invisible unless the line breaks here
		}
		shaped.Advances[g] = adv
		shaped.Offsets[g] = GlyphOffset{
			Advance:  float32(pos.XOffset) * scale,
			Ascender: float32(pos.YOffset) * scale,
		}
		shaped.Width += adv
	}
	if len(runes) == 0 {
		return shaped
	}
	// every rune joins the nearest cluster start at or before it
	base := make([]int, len(runes)) // first rune of the cluster containing rune i
	if first[0] < 0 {
		first[0] = 0
	}
	for i := 1; i < len(first); i++ {
		if first[i] < 0 {
			first[i] = first[i-1]
			base[i] = base[i-1]
		} else {
			base[i] = i
		}
	}
	rtl := run.RightToLeft()
	for r := 0; r < len(runes); r++ {
		flags := runeFlags(runes[base[r]], rtl)
		for u := offsets[r]; u < offsets[r+1]; u++ {
			shaped.ClusterMap[u] = uint16(first[r])
			shaped.Flags[u] = flags
		}
	}
	return shaped
}

// runeFlags classifies one character.
func runeFlags(r rune, rtl bool) ClusterFlags {
	var f ClusterFlags
	if rtl {
		f |= ClusterRightToLeft
	}
	switch {
	case text.IsNewline(r):
		f |= ClusterNewline | ClusterWhitespace
	case unicode.IsSpace(r):
		f |= ClusterWhitespace
	case r == softHyphen:
		f |= ClusterSoftHyphen
	}
	return f
}
