package format

import (
	"fmt"
	"math"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/inline"
)

// ReadingDirection is the direction text progresses along a line.
type ReadingDirection uint8

const (
	LeftToRight ReadingDirection = iota
	RightToLeft
)

func (d ReadingDirection) String() string {
	switch d {
	case LeftToRight:
		return "left-to-right"
	case RightToLeft:
		return "right-to-left"
	}
	return "broken reading direction"
}

// FlowDirection is the direction lines stack inside the layout box.
type FlowDirection uint8

const (
	TopToBottom FlowDirection = iota
	BottomToTop
)

func (d FlowDirection) String() string {
	switch d {
	case TopToBottom:
		return "top-to-bottom"
	case BottomToTop:
		return "bottom-to-top"
	}
	return "broken flow direction"
}

// WordWrapping selects the line breaking policy of a paragraph.
type WordWrapping uint8

const (
	Wrap           WordWrapping = iota // break at legal opportunities only
	NoWrap                             // a single logical line, regardless of width
	EmergencyBreak                     // like Wrap, but break inside a word when nothing fits
	WholeWord                          // like Wrap, but never break inside a word
	CharacterBreak                     // every cluster boundary is an opportunity
)

func (w WordWrapping) String() string {
	switch w {
	case Wrap:
		return "wrap"
	case NoWrap:
		return "no-wrap"
	case EmergencyBreak:
		return "emergency-break"
	case WholeWord:
		return "whole-word"
	case CharacterBreak:
		return "character"
	}
	return "broken word wrapping"
}

// TextAlignment positions the lines of a paragraph along the reading axis.
// Leading is the side where reading starts, i.e. the left edge for
// left-to-right text and the right edge for right-to-left text.
type TextAlignment uint8

const (
	AlignLeading TextAlignment = iota
	AlignTrailing
	AlignCenter
	AlignJustified
)

func (a TextAlignment) String() string {
	switch a {
	case AlignLeading:
		return "leading"
	case AlignTrailing:
		return "trailing"
	case AlignCenter:
		return "center"
	case AlignJustified:
		return "justified"
	}
	return "broken text alignment"
}

// ParagraphAlignment positions the block of lines along the flow axis.
type ParagraphAlignment uint8

const (
	ParagraphNear ParagraphAlignment = iota
	ParagraphFar
	ParagraphCenter
)

func (a ParagraphAlignment) String() string {
	switch a {
	case ParagraphNear:
		return "near"
	case ParagraphFar:
		return "far"
	case ParagraphCenter:
		return "center"
	}
	return "broken paragraph alignment"
}

// TrimmingGranularity is the unit removed from an overflowing line when
// trimming is active.
type TrimmingGranularity uint8

const (
	TrimNone TrimmingGranularity = iota
	TrimCharacter
	TrimWord
)

func (g TrimmingGranularity) String() string {
	switch g {
	case TrimNone:
		return "none"
	case TrimCharacter:
		return "character"
	case TrimWord:
		return "word"
	}
	return "broken trimming granularity"
}

// Trimming describes how an overflowing, unwrapped line is shortened.
// With a non-zero Delimiter, the trailing segment after the
// DelimiterCount-th occurrence of the delimiter, counted from the end, is
// preserved and the trimming sign replaces the middle of the line. This
// is the classic way to shorten file paths ("/usr/…/readme.txt").
type Trimming struct {
	Granularity    TrimmingGranularity
	Delimiter      rune
	DelimiterCount uint32
}

// LineSpacingMethod selects how line heights are determined.
type LineSpacingMethod uint8

const (
	SpacingDefault      LineSpacingMethod = iota // per line, from the tallest run
	SpacingUniform                               // fixed height and baseline for all lines
	SpacingProportional                          // default heights scaled by a factor
)

func (m LineSpacingMethod) String() string {
	switch m {
	case SpacingDefault:
		return "default"
	case SpacingUniform:
		return "uniform"
	case SpacingProportional:
		return "proportional"
	}
	return "broken line spacing method"
}

// LineSpacing is a line spacing policy. Height and Baseline are DIP
// values for SpacingUniform and scaling factors for SpacingProportional;
// SpacingDefault ignores both.
type LineSpacing struct {
	Method   LineSpacingMethod
	Height   float32
	Baseline float32
}

// MeasuringMode controls how glyph advances are quantised. Natural uses
// the font's fractional advances; the two GDI modes snap advances to
// whole pixels for compatibility with GDI-rendered text.
type MeasuringMode uint8

const (
	MeasureNatural MeasuringMode = iota
	MeasureGdiClassic
	MeasureGdiNatural
)

func (m MeasuringMode) String() string {
	switch m {
	case MeasureNatural:
		return "natural"
	case MeasureGdiClassic:
		return "GDI classic"
	case MeasureGdiNatural:
		return "GDI natural"
	}
	return "broken measuring mode"
}

// Format collects the paragraph-level defaults for laying out a text:
// the font selection every range starts out with, directionality,
// wrapping, alignment, trimming, line spacing and tab stops.
//
// Font selection and size are fixed at construction. The paragraph-level
// policies have validated setters. A layout copies the format it is
// constructed with, so a format may be mutated and reused for the next
// paragraph without affecting existing layouts.
type Format struct {
	family   string
	weight   font.Weight
	stretch  font.Stretch
	style    font.Style
	size     float32
	locale   string
	reading  ReadingDirection
	flow     FlowDirection
	wrapping WordWrapping
	align    TextAlignment
	paralign ParagraphAlignment
	trimming Trimming
	sign     inline.Object
	spacing  LineSpacing
	tabStop  float32
}

// NewFormat creates a text format for the given font selection. size is
// the em size in DIP and must be positive. locale is a BCP 47 tag and
// may be empty for an unspecified locale.
func NewFormat(family string, weight font.Weight, stretch font.Stretch, style font.Style,
	size float32, locale string) (*Format, error) {
	//
	if family == "" {
		return nil, core.Error(core.EINVALID, "text format needs a font family name")
	}
	if weight < 1 || weight > 999 {
		return nil, core.Error(core.EINVALID, "font weight %d outside 1…999", weight)
	}
	if stretch < 1 || stretch > 9 {
		return nil, core.Error(core.EINVALID, "font stretch %d outside 1…9", stretch)
	}
	if style > font.StyleItalic {
		return nil, core.Error(core.EINVALID, "unknown font style %d", style)
	}
	if !positive(size) {
		return nil, core.Error(core.EINVALID, "font size must be positive, is %f", size)
	}
	f := &Format{
		family:  family,
		weight:  weight,
		stretch: stretch,
		style:   style,
		size:    size,
		locale:  locale,
	}
	tracer().Debugf("created text format %v", f)
	return f, nil
}

func positive(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0) && x > 0
}

func finite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (f *Format) String() string {
	return fmt.Sprintf("%s %s/%s/%s %.1fdp", f.family, f.weight, f.stretch, f.style, f.size)
}

// Clone returns a copy of f. The trimming sign, if set, is shared.
func (f *Format) Clone() *Format {
	c := *f
	return &c
}

// Family returns the default font family name.
func (f *Format) Family() string { return f.family }

// Weight returns the default font weight.
func (f *Format) Weight() font.Weight { return f.weight }

// Stretch returns the default font stretch.
func (f *Format) Stretch() font.Stretch { return f.stretch }

// Style returns the default font style.
func (f *Format) Style() font.Style { return f.style }

// Size returns the em size in DIP.
func (f *Format) Size() float32 { return f.size }

// Locale returns the BCP 47 locale tag, possibly empty.
func (f *Format) Locale() string { return f.locale }

// ReadingDirection returns the paragraph's reading direction.
func (f *Format) ReadingDirection() ReadingDirection { return f.reading }

// SetReadingDirection sets the paragraph's reading direction.
func (f *Format) SetReadingDirection(d ReadingDirection) error {
	if d > RightToLeft {
		return core.Error(core.EINVALID, "unknown reading direction %d", d)
	}
	f.reading = d
	return nil
}

// FlowDirection returns the direction lines stack in.
func (f *Format) FlowDirection() FlowDirection { return f.flow }

// SetFlowDirection sets the direction lines stack in.
func (f *Format) SetFlowDirection(d FlowDirection) error {
	if d > BottomToTop {
		return core.Error(core.EINVALID, "unknown flow direction %d", d)
	}
	f.flow = d
	return nil
}

// WordWrapping returns the line breaking policy.
func (f *Format) WordWrapping() WordWrapping { return f.wrapping }

// SetWordWrapping sets the line breaking policy.
func (f *Format) SetWordWrapping(w WordWrapping) error {
	if w > CharacterBreak {
		return core.Error(core.EINVALID, "unknown word wrapping mode %d", w)
	}
	f.wrapping = w
	return nil
}

// TextAlignment returns the alignment of lines along the reading axis.
func (f *Format) TextAlignment() TextAlignment { return f.align }

// SetTextAlignment sets the alignment of lines along the reading axis.
func (f *Format) SetTextAlignment(a TextAlignment) error {
	if a > AlignJustified {
		return core.Error(core.EINVALID, "unknown text alignment %d", a)
	}
	f.align = a
	return nil
}

// ParagraphAlignment returns the alignment of the line block along the
// flow axis.
func (f *Format) ParagraphAlignment() ParagraphAlignment { return f.paralign }

// SetParagraphAlignment sets the alignment of the line block along the
// flow axis.
func (f *Format) SetParagraphAlignment(a ParagraphAlignment) error {
	if a > ParagraphCenter {
		return core.Error(core.EINVALID, "unknown paragraph alignment %d", a)
	}
	f.paralign = a
	return nil
}

// Trimming returns the trimming policy and the sign drawn in place of
// removed text, which may be nil.
func (f *Format) Trimming() (Trimming, inline.Object) {
	return f.trimming, f.sign
}

// SetTrimming sets the trimming policy. sign may be nil for trimming
// without a visible sign.
func (f *Format) SetTrimming(t Trimming, sign inline.Object) error {
	if t.Granularity > TrimWord {
		return core.Error(core.EINVALID, "unknown trimming granularity %d", t.Granularity)
	}
	if t.Delimiter == 0 && t.DelimiterCount > 0 {
		return core.Error(core.EINVALID, "trimming delimiter count without a delimiter")
	}
	f.trimming = t
	f.sign = sign
	return nil
}

// LineSpacing returns the line spacing policy.
func (f *Format) LineSpacing() LineSpacing { return f.spacing }

// SetLineSpacing sets the line spacing policy. For SpacingUniform,
// height and baseline are absolute DIP values and height must be
// positive; for SpacingProportional they scale the per-line defaults.
func (f *Format) SetLineSpacing(method LineSpacingMethod, height, baseline float32) error {
	if method > SpacingProportional {
		return core.Error(core.EINVALID, "unknown line spacing method %d", method)
	}
	if method != SpacingDefault {
		if !positive(height) {
			return core.Error(core.EINVALID, "line height must be positive, is %f", height)
		}
		if !finite(baseline) || baseline < 0 {
			return core.Error(core.EINVALID, "line baseline must not be negative, is %f", baseline)
		}
	}
	f.spacing = LineSpacing{Method: method, Height: height, Baseline: baseline}
	return nil
}

// IncrementalTabStop returns the distance between successive tab stops.
// Unless set explicitly, it defaults to four em.
func (f *Format) IncrementalTabStop() float32 {
	if f.tabStop > 0 {
		return f.tabStop
	}
	return 4 * f.size
}

// SetIncrementalTabStop sets the distance between successive tab stops.
func (f *Format) SetIncrementalTabStop(w float32) error {
	if !positive(w) {
		return core.Error(core.EINVALID, "tab stop width must be positive, is %f", w)
	}
	f.tabStop = w
	return nil
}
