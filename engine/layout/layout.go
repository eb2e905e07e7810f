package layout

import (
	"math"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/itemize"
	"github.com/npillmayer/satz/engine/text"
)

// layoutState tracks which caches of a layout are valid. Attribute
// mutation resets the state; queries advance it as far as they need.
type layoutState uint8

const (
	unformatted layoutState = iota // nothing cached
	analysed                       // runs shaped, clusters built
	formatted                      // lines broken and positioned
)

// CharacterSpacing expands every cluster of a range: Leading is added in
// front of a cluster, Trailing after it, and MinAdvance is a floor below
// which a cluster's advance may not shrink. Negative leading or trailing
// tightens the text.
type CharacterSpacing struct {
	Leading    float32
	Trailing   float32
	MinAdvance float32
}

// attributes holds one interval map per character attribute.
type attributes struct {
	family    *attrMap // string
	weight    *attrMap // font.Weight
	stretch   *attrMap // font.Stretch
	style     *attrMap // font.Style
	size      *attrMap // float32
	locale    *attrMap // string
	underline *attrMap // bool
	strike    *attrMap // bool
	effect    *attrMap // interface{}, client-defined
	object    *attrMap // inline.Object
	typo      *attrMap // *format.Typography
	subst     *attrMap // *format.NumberSubstitution
	kerning   *attrMap // bool
	spacing   *attrMap // CharacterSpacing
}

func newAttributes(n uint32, f *format.Format) *attributes {
	var noEffect interface{}
	var noObject inline.Object
	var noTypo *format.Typography
	var noSubst *format.NumberSubstitution
	return &attributes{
		family:    newAttrMap(n, f.Family()),
		weight:    newAttrMap(n, f.Weight()),
		stretch:   newAttrMap(n, f.Stretch()),
		style:     newAttrMap(n, f.Style()),
		size:      newAttrMap(n, f.Size()),
		locale:    newAttrMap(n, f.Locale()),
		underline: newAttrMap(n, false),
		strike:    newAttrMap(n, false),
		effect:    newAttrMap(n, noEffect),
		object:    newAttrMap(n, noObject),
		typo:      newAttrMap(n, noTypo),
		subst:     newAttrMap(n, noSubst),
		kerning:   newAttrMap(n, true),
		spacing:   newAttrMap(n, CharacterSpacing{}),
	}
}

// shapingBoundaries collects the partition starts of every attribute
// which influences font resolution or shaping.
func (a *attributes) shapingBoundaries(dst []uint32) []uint32 {
	dst = a.family.boundaries(dst)
	dst = a.weight.boundaries(dst)
	dst = a.stretch.boundaries(dst)
	dst = a.style.boundaries(dst)
	dst = a.size.boundaries(dst)
	dst = a.locale.boundaries(dst)
	dst = a.typo.boundaries(dst)
	dst = a.kerning.boundaries(dst)
	dst = a.object.boundaries(dst)
	return dst
}

// Layout is a block of text, analysed and formatted into lines. It is
// built from a text, a format carrying the paragraph defaults and a font
// collection to resolve faces from, plus the dimensions of the layout
// box. Character attributes may then be set on ranges of the text.
//
// All expensive work happens lazily: metric queries, hit tests and
// drawing trigger analysis and line breaking as needed, mutation
// invalidates the caches. A Layout is not safe for concurrent use.
type Layout struct {
	buf   *text.Buffer
	fmt   *format.Format
	coll  *font.Collection
	maxW  float32
	maxH  float32
	attrs *attributes

	state   layoutState
	drawing bool

	analysis *itemize.Analysis
	runs     []shapedRun
	clusters []cluster
	unitCl   []int // code unit -> cluster index
	lines    []line
}

// New creates a layout for a string, converted to UTF-16. maxWidth and
// maxHeight are the dimensions of the layout box in DIP; either may be
// infinite for an unconstrained axis.
func New(s string, f *format.Format, coll *font.Collection, maxWidth, maxHeight float32) (*Layout, error) {
	return newLayout(text.FromString(s), f, coll, maxWidth, maxHeight)
}

// NewFromUnits creates a layout for text given as UTF-16 code units.
// The unit slice is copied.
func NewFromUnits(units []uint16, f *format.Format, coll *font.Collection, maxWidth, maxHeight float32) (*Layout, error) {
	return newLayout(text.FromUnits(units), f, coll, maxWidth, maxHeight)
}

func newLayout(buf *text.Buffer, f *format.Format, coll *font.Collection, maxWidth, maxHeight float32) (*Layout, error) {
	if f == nil {
		return nil, core.Error(core.EINVALID, "layout needs a text format")
	}
	if coll == nil {
		return nil, core.Error(core.EINVALID, "layout needs a font collection")
	}
	if !validExtent(maxWidth) || !validExtent(maxHeight) {
		return nil, core.Error(core.EINVALID, "layout box %g x %g is invalid", maxWidth, maxHeight)
	}
	l := &Layout{
		buf:   buf,
		fmt:   f.Clone(),
		coll:  coll,
		maxW:  maxWidth,
		maxH:  maxHeight,
		attrs: newAttributes(uint32(buf.Len()), f),
	}
	tracer().Debugf("created layout for %d code units in a %g x %g box", buf.Len(), maxWidth, maxHeight)
	return l, nil
}

// validExtent accepts any non-negative dimension, including zero and
// positive infinity.
func validExtent(x float32) bool {
	return !math.IsNaN(float64(x)) && x >= 0
}

func positive(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0) && x > 0
}

func finite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Text returns the layout's text.
func (l *Layout) Text() string {
	return l.buf.String()
}

// Format returns a copy of the paragraph format the layout currently
// uses. Mutate the layout through its setters, not through the copy.
func (l *Layout) Format() *format.Format {
	return l.fmt.Clone()
}

// MaxWidth returns the width of the layout box.
func (l *Layout) MaxWidth() float32 { return l.maxW }

// MaxHeight returns the height of the layout box.
func (l *Layout) MaxHeight() float32 { return l.maxH }

// SetMaxWidth resizes the layout box. Lines are re-broken on the next
// query; shaping results are kept.
func (l *Layout) SetMaxWidth(w float32) error {
	if err := l.guard(); err != nil {
		return err
	}
	if !validExtent(w) {
		return core.Error(core.EINVALID, "layout width %g is invalid", w)
	}
	if w != l.maxW {
		l.maxW = w
		l.invalidateLines()
	}
	return nil
}

// SetMaxHeight resizes the layout box.
func (l *Layout) SetMaxHeight(h float32) error {
	if err := l.guard(); err != nil {
		return err
	}
	if !validExtent(h) {
		return core.Error(core.EINVALID, "layout height %g is invalid", h)
	}
	if h != l.maxH {
		l.maxH = h
		l.invalidateLines()
	}
	return nil
}

// guard rejects mutation while a draw pass is running.
func (l *Layout) guard() error {
	if l.drawing {
		return core.Error(core.EREENTRY, "layout is drawing, attributes are frozen")
	}
	return nil
}

// invalidate drops all caches; the next query re-analyses the text.
func (l *Layout) invalidate() {
	l.state = unformatted
	l.analysis = nil
	l.runs = nil
	l.clusters = nil
	l.unitCl = nil
	l.lines = nil
}

// invalidateLines drops the line cache but keeps shaping results.
func (l *Layout) invalidateLines() {
	if l.state == formatted {
		l.state = analysed
	}
	l.lines = nil
}

// paragraph-level setters, forwarded to the layout's format copy

// SetTextAlignment changes how lines align inside the layout box.
func (l *Layout) SetTextAlignment(a format.TextAlignment) error {
	return l.setParagraph(func() error { return l.fmt.SetTextAlignment(a) })
}

// SetParagraphAlignment changes how the block of lines aligns along the
// flow axis.
func (l *Layout) SetParagraphAlignment(a format.ParagraphAlignment) error {
	return l.setParagraph(func() error { return l.fmt.SetParagraphAlignment(a) })
}

// SetWordWrapping changes the line breaking policy.
func (l *Layout) SetWordWrapping(w format.WordWrapping) error {
	return l.setParagraph(func() error { return l.fmt.SetWordWrapping(w) })
}

// SetFlowDirection changes the direction lines stack in.
func (l *Layout) SetFlowDirection(d format.FlowDirection) error {
	return l.setParagraph(func() error { return l.fmt.SetFlowDirection(d) })
}

// SetTrimming changes how overflowing lines are shortened.
func (l *Layout) SetTrimming(t format.Trimming, sign inline.Object) error {
	return l.setParagraph(func() error { return l.fmt.SetTrimming(t, sign) })
}

// SetLineSpacing changes the line spacing policy.
func (l *Layout) SetLineSpacing(method format.LineSpacingMethod, height, baseline float32) error {
	return l.setParagraph(func() error { return l.fmt.SetLineSpacing(method, height, baseline) })
}

// SetIncrementalTabStop changes the distance between tab stops.
func (l *Layout) SetIncrementalTabStop(w float32) error {
	return l.setParagraph(func() error { return l.fmt.SetIncrementalTabStop(w) })
}

// SetReadingDirection changes the paragraph base direction. Unlike the
// other paragraph setters this invalidates the analysis, since embedding
// levels depend on it.
func (l *Layout) SetReadingDirection(d format.ReadingDirection) error {
	if err := l.guard(); err != nil {
		return err
	}
	if d == l.fmt.ReadingDirection() {
		return nil
	}
	if err := l.fmt.SetReadingDirection(d); err != nil {
		return err
	}
	l.invalidate()
	return nil
}

func (l *Layout) setParagraph(set func() error) error {
	if err := l.guard(); err != nil {
		return err
	}
	if err := set(); err != nil {
		return err
	}
	l.invalidateLines()
	return nil
}

// character attributes

// SetFamily sets the font family name on a range of text.
func (l *Layout) SetFamily(name string, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	if name == "" {
		return core.Error(core.EINVALID, "font family name must not be empty")
	}
	l.setShaping(l.attrs.family, r, name)
	return nil
}

// Family returns the font family name at pos and the range over which
// it holds.
func (l *Layout) Family(pos uint32) (string, text.Range) {
	v, r := l.attrs.family.get(pos)
	return v.(string), r
}

// SetWeight sets the font weight on a range of text.
func (l *Layout) SetWeight(w font.Weight, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	if w < 1 || w > 999 {
		return core.Error(core.EINVALID, "font weight %d outside 1…999", w)
	}
	l.setShaping(l.attrs.weight, r, w)
	return nil
}

// Weight returns the font weight at pos.
func (l *Layout) Weight(pos uint32) (font.Weight, text.Range) {
	v, r := l.attrs.weight.get(pos)
	return v.(font.Weight), r
}

// SetStretch sets the font stretch on a range of text.
func (l *Layout) SetStretch(s font.Stretch, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	if s < 1 || s > 9 {
		return core.Error(core.EINVALID, "font stretch %d outside 1…9", s)
	}
	l.setShaping(l.attrs.stretch, r, s)
	return nil
}

// Stretch returns the font stretch at pos.
func (l *Layout) Stretch(pos uint32) (font.Stretch, text.Range) {
	v, r := l.attrs.stretch.get(pos)
	return v.(font.Stretch), r
}

// SetStyle sets the font style on a range of text.
func (l *Layout) SetStyle(s font.Style, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	if s > font.StyleItalic {
		return core.Error(core.EINVALID, "unknown font style %d", s)
	}
	l.setShaping(l.attrs.style, r, s)
	return nil
}

// Style returns the font style at pos.
func (l *Layout) Style(pos uint32) (font.Style, text.Range) {
	v, r := l.attrs.style.get(pos)
	return v.(font.Style), r
}

// SetSize sets the em size in DIP on a range of text.
func (l *Layout) SetSize(size float32, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	if !positive(size) {
		return core.Error(core.EINVALID, "font size must be positive, is %f", size)
	}
	l.setShaping(l.attrs.size, r, size)
	return nil
}

// Size returns the em size at pos.
func (l *Layout) Size(pos uint32) (float32, text.Range) {
	v, r := l.attrs.size.get(pos)
	return v.(float32), r
}

// SetLocale sets the BCP 47 locale on a range of text.
func (l *Layout) SetLocale(locale string, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.setShaping(l.attrs.locale, r, locale)
	return nil
}

// Locale returns the locale at pos.
func (l *Layout) Locale(pos uint32) (string, text.Range) {
	v, r := l.attrs.locale.get(pos)
	return v.(string), r
}

// SetUnderline switches underlining on a range of text. Underlines do
// not affect metrics, so no caches are invalidated.
func (l *Layout) SetUnderline(on bool, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.attrs.underline.set(r, on)
	return nil
}

// Underline reports whether text at pos is underlined.
func (l *Layout) Underline(pos uint32) (bool, text.Range) {
	v, r := l.attrs.underline.get(pos)
	return v.(bool), r
}

// SetStrikethrough switches strikethrough on a range of text.
func (l *Layout) SetStrikethrough(on bool, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.attrs.strike.set(r, on)
	return nil
}

// Strikethrough reports whether text at pos is struck through.
func (l *Layout) Strikethrough(pos uint32) (bool, text.Range) {
	v, r := l.attrs.strike.get(pos)
	return v.(bool), r
}

// SetDrawingEffect attaches a client-defined value to a range of text.
// The layout never interprets it; it is handed back through the renderer
// callbacks covering the range. A nil effect clears the attribute.
func (l *Layout) SetDrawingEffect(effect interface{}, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.attrs.effect.set(r, effect)
	return nil
}

// DrawingEffect returns the drawing effect at pos, which may be nil.
func (l *Layout) DrawingEffect(pos uint32) (interface{}, text.Range) {
	return l.attrs.effect.get(pos)
}

// SetInlineObject embeds an object in a range of text. The range's text
// is replaced by the object for layout purposes: the object becomes a
// single non-splittable cluster with the dimensions its metrics claim.
// A nil object clears the attribute and the text reappears.
func (l *Layout) SetInlineObject(obj inline.Object, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.setShaping(l.attrs.object, r, obj)
	return nil
}

// InlineObject returns the inline object at pos, or nil.
func (l *Layout) InlineObject(pos uint32) (inline.Object, text.Range) {
	v, r := l.attrs.object.get(pos)
	if v == nil {
		return nil, r
	}
	return v.(inline.Object), r
}

// SetTypography applies a set of OpenType feature settings to a range
// of text. A nil value restores the default features.
func (l *Layout) SetTypography(t *format.Typography, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.setShaping(l.attrs.typo, r, t)
	return nil
}

// Typography returns the feature settings at pos, or nil.
func (l *Layout) Typography(pos uint32) (*format.Typography, text.Range) {
	v, r := l.attrs.typo.get(pos)
	return v.(*format.Typography), r
}

// SetNumberSubstitution sets the digit substitution policy on a range
// of text. A nil value restores plain European digits.
func (l *Layout) SetNumberSubstitution(n *format.NumberSubstitution, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.setShaping(l.attrs.subst, r, n)
	return nil
}

// NumberSubstitution returns the digit substitution policy at pos, or
// nil.
func (l *Layout) NumberSubstitution(pos uint32) (*format.NumberSubstitution, text.Range) {
	v, r := l.attrs.subst.get(pos)
	return v.(*format.NumberSubstitution), r
}

// SetPairKerning switches pair kerning on a range of text. Kerning is
// on by default.
func (l *Layout) SetPairKerning(on bool, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	l.setShaping(l.attrs.kerning, r, on)
	return nil
}

// PairKerning reports whether pair kerning applies at pos.
func (l *Layout) PairKerning(pos uint32) (bool, text.Range) {
	v, r := l.attrs.kerning.get(pos)
	return v.(bool), r
}

// SetCharacterSpacing adjusts inter-cluster spacing on a range of text.
// minAdvance guards clusters against collapsing when the spacing is
// negative; it must not be negative itself.
func (l *Layout) SetCharacterSpacing(leading, trailing, minAdvance float32, r text.Range) error {
	if err := l.guard(); err != nil {
		return err
	}
	if !finite(leading) || !finite(trailing) {
		return core.Error(core.EINVALID, "character spacing %g/%g is not finite", leading, trailing)
	}
	if !finite(minAdvance) || minAdvance < 0 {
		return core.Error(core.EINVALID, "minimum advance %g must not be negative", minAdvance)
	}
	l.setShaping(l.attrs.spacing, r, CharacterSpacing{Leading: leading, Trailing: trailing, MinAdvance: minAdvance})
	return nil
}

// CharacterSpacingAt returns the spacing adjustment at pos.
func (l *Layout) CharacterSpacingAt(pos uint32) (CharacterSpacing, text.Range) {
	v, r := l.attrs.spacing.get(pos)
	return v.(CharacterSpacing), r
}

// setShaping writes an attribute which influences shaping and drops the
// caches if the partition changed.
func (l *Layout) setShaping(am *attrMap, r text.Range, v interface{}) {
	if am.set(r, v) {
		l.invalidate()
	}
}
