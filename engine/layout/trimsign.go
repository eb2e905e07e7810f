package layout

import (
	"golang.org/x/text/language"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/render"
	"github.com/npillmayer/satz/engine/shape"
	"github.com/npillmayer/satz/engine/text"
)

// NewEllipsisTrimmingSign shapes a horizontal ellipsis in the format's
// font and wraps it as an inline object, suitable as the sign of a
// trimming policy. Fonts without U+2026 fall back to three full stops.
func NewEllipsisTrimmingSign(f *format.Format, coll *font.Collection) (inline.Object, error) {
	if f == nil || coll == nil {
		return nil, core.Error(core.EINVALID, "trimming sign needs a format and a font collection")
	}
	sel := font.Selector{
		Family:  f.Family(),
		Weight:  f.Weight(),
		Stretch: f.Stretch(),
		Style:   f.Style(),
	}
	units := text.FromString("…").Units()
	runs := shape.SplitByFaces(coll, units, sel, f.Locale())
	if len(runs) == 0 || runs[0].Font == nil {
		units = text.FromString("...").Units()
		runs = shape.SplitByFaces(coll, units, sel, f.Locale())
	}
	if len(runs) == 0 || runs[0].Font == nil {
		return nil, core.Error(core.EMISSING, "no font for a trimming sign in family %q", f.Family())
	}
	fnt := runs[0].Font
	shaped, err := shape.Shape(shape.ShapingRun{
		Text:   units,
		Script: language.MustParseScript("Zyyy"),
		Locale: f.Locale(),
		Face:   fnt.Face(),
		Size:   f.Size(),
	})
	if err != nil {
		return nil, err
	}
	fm := fnt.Metrics()
	scale := f.Size() / float32(fm.UnitsPerEm)
	asc := float32(fm.Ascent) * scale
	desc := float32(fm.Descent) * scale
	sign := &ellipsisSign{
		run: render.GlyphRun{
			Face:     fnt.Face(),
			Size:     f.Size(),
			Glyphs:   shaped.Glyphs,
			Advances: shaped.Advances,
			Offsets:  shaped.Offsets,
		},
		desc: render.GlyphRunDescription{
			Locale:     f.Locale(),
			Text:       units,
			ClusterMap: shaped.ClusterMap,
		},
		metrics: inline.Metrics{
			Width:    shaped.Width,
			Height:   asc + desc,
			Baseline: asc,
		},
	}
	return sign, nil
}

// ellipsisSign is a pre-shaped glyph run behind the inline object
// protocol. It is immutable and safe to share between layouts.
type ellipsisSign struct {
	run     render.GlyphRun
	desc    render.GlyphRunDescription
	metrics inline.Metrics
}

func (s *ellipsisSign) Metrics() (inline.Metrics, error) {
	return s.metrics, nil
}

func (s *ellipsisSign) OverhangMetrics() (inline.Overhang, error) {
	return inline.Overhang{}, nil
}

func (s *ellipsisSign) BreakConditions() (before, after inline.BreakCondition, err error) {
	return inline.Neutral, inline.Neutral, nil
}

func (s *ellipsisSign) Draw(renderer interface{}, ctx inline.DrawContext) error {
	r, ok := renderer.(render.Renderer)
	if !ok {
		return core.Error(core.EINVALID, "trimming sign cannot draw on a %T", renderer)
	}
	run := s.run
	desc := s.desc
	return r.DrawGlyphRun(ctx.Client, ctx.OriginX, ctx.OriginY+s.metrics.Baseline,
		format.MeasureNatural, &run, &desc, ctx.Effect)
}
