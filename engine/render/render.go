package render

import (
	"math"

	"golang.org/x/image/math/fixed"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/shape"
)

// Matrix is a 2-D affine transform in row-vector convention: a point
// (x, y) maps to (x·M11 + y·M21 + Dx, x·M12 + y·M22 + Dy).
type Matrix struct {
	M11, M12 float32
	M21, M22 float32
	Dx, Dy   float32
}

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{M11: 1, M22: 1} }

// Apply transforms a point.
func (m Matrix) Apply(x, y float32) (float32, float32) {
	return x*m.M11 + y*m.M21 + m.Dx, x*m.M12 + y*m.M22 + m.Dy
}

// IsTranslation reports whether the transform only moves. Snapping to
// the pixel grid is restricted to translations; rotated or scaled
// output keeps exact positions.
func (m Matrix) IsTranslation() bool {
	return m.M11 == 1 && m.M12 == 0 && m.M21 == 0 && m.M22 == 1
}

// GlyphRun is one maximal run of glyphs sharing font face, em size,
// embedding level and orientation, as handed to the renderer.
type GlyphRun struct {
	Face      *font.Face
	Size      float32 // em size in DIPs
	Glyphs    []font.GlyphID
	Advances  []float32 // DIPs, one per glyph
	Offsets   []shape.GlyphOffset
	Sideways  bool
	BidiLevel uint32
}

// RightToLeft reports whether the run's glyphs advance right to left.
func (gr *GlyphRun) RightToLeft() bool { return gr.BidiLevel&1 == 1 }

// Width returns the sum of the run's advances.
func (gr *GlyphRun) Width() float32 {
	var w float32
	for _, adv := range gr.Advances {
		w += adv
	}
	return w
}

// GlyphRunDescription ties a glyph run back to the source text it was
// shaped from. ClusterMap has one entry per code unit of Text, naming
// the first glyph of the cluster the unit belongs to.
type GlyphRunDescription struct {
	Locale       string
	Text         []uint16
	ClusterMap   []uint16
	TextPosition uint32 // offset of Text within the paragraph
}

// Underline describes one underline segment under a stretch of glyph
// runs. Offset is the distance from the baseline to the top of the
// line, positive below the baseline.
type Underline struct {
	Width            float32
	Thickness        float32
	Offset           float32
	RunHeight        float32
	ReadingDirection format.ReadingDirection
	FlowDirection    format.FlowDirection
	Locale           string
	MeasuringMode    format.MeasuringMode
}

// Strikethrough describes one strikethrough segment. Offset is negative
// above the baseline.
type Strikethrough struct {
	Width            float32
	Thickness        float32
	Offset           float32
	ReadingDirection format.ReadingDirection
	FlowDirection    format.FlowDirection
	Locale           string
	MeasuringMode    format.MeasuringMode
}

// Renderer is the client-implemented sink of a layout's draw pass. The
// ctx argument round-trips the drawing context the client passed to
// Draw; effect is the drawing effect set on the emitted range, nil
// where none is.
//
// An error return from any callback aborts the draw pass.
type Renderer interface {
	CurrentTransform(ctx interface{}) (Matrix, error)
	PixelsPerDip(ctx interface{}) (float32, error)
	PixelSnappingDisabled(ctx interface{}) (bool, error)
	DrawGlyphRun(ctx interface{}, baselineX, baselineY float32, mm format.MeasuringMode,
		run *GlyphRun, desc *GlyphRunDescription, effect interface{}) error
	DrawUnderline(ctx interface{}, baselineX, baselineY float32, ul *Underline,
		effect interface{}) error
	DrawStrikethrough(ctx interface{}, baselineX, baselineY float32, st *Strikethrough,
		effect interface{}) error
	DrawInlineObject(ctx interface{}, originX, originY float32, obj inline.Object,
		sideways, rightToLeft bool, effect interface{}) error
}

// SnapBaseline snaps a baseline coordinate to the pixel grid of the
// device space behind the transform.
func SnapBaseline(m Matrix, pixelsPerDip, y float32) float32 {
	if !m.IsTranslation() || !(pixelsPerDip > 0) {
		return y
	}
	dev := fixed.Int26_6(math.Round(float64((y+m.Dy)*pixelsPerDip) * 64))
	return float32(dev.Round())/pixelsPerDip - m.Dy
}

// Callback runs one renderer callback, turning an error return or a
// panic into a callback error for the draw pass to abort with.
func Callback(name string, f func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			tracer().Errorf("renderer callback %s panicked: %v", name, p)
			err = core.Error(core.ECALLBACK, "renderer callback %s panicked: %v", name, p)
		}
	}()
	if cberr := f(); cberr != nil {
		return core.WrapError(cberr, core.ECALLBACK, "renderer callback %s failed", name)
	}
	return nil
}
