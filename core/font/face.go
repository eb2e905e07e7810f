package font

import (
	"bytes"
	"sync"

	hbtt "github.com/benoitkugler/textlayout/fonts/truetype"
	hb "github.com/benoitkugler/textlayout/harfbuzz"
	"github.com/npillmayer/satz/core"
)

// GlyphID indexes a glyph within a font face.
type GlyphID uint16

// Simulations are algorithmic style emulations applied to a face that does
// not provide the style natively.
type Simulations uint8

const (
	SimulateNone    Simulations = 0
	SimulateBold    Simulations = 1 << 0
	SimulateOblique Simulations = 1 << 1
)

// FaceMetrics are the font-wide vertical metrics of a face, in design
// units. Descent is positive downwards, underline position negative below
// the baseline, strikethrough position positive above it.
type FaceMetrics struct {
	UnitsPerEm             int32
	Ascent                 int32
	Descent                int32
	LineGap                int32
	CapHeight              int32
	XHeight                int32
	UnderlinePosition      int32
	UnderlineThickness     int32
	StrikethroughPosition  int32
	StrikethroughThickness int32
}

// GlyphMetrics are the per-glyph ink and advance metrics, in design units.
type GlyphMetrics struct {
	AdvanceWidth      int32
	LeftSideBearing   int32
	RightSideBearing  int32
	TopSideBearing    int32
	BottomSideBearing int32
	AdvanceHeight     int32
	VerticalOriginY   int32
}

// Face is one concrete font face: a single font resource cut out of its
// file, with its tables parsed as far as the engine needs them. A Face is
// immutable after creation and safe for concurrent use.
type Face struct {
	file  *File
	index int
	sim   Simulations

	bin       binSegm
	header    *sfntHeader
	names     map[int]string
	head      headInfo
	hhea      hheaInfo
	os2       os2Info
	hasOS2    bool
	post      postInfo
	hasPost   bool
	numGlyphs int
	metrics   FaceMetrics

	hmtx binSegm
	loca binSegm
	glyf binSegm

	cmapOnce sync.Once
	charmap  cmapTable

	parseOnce sync.Once
	hbFont    *hb.Font
	parseErr  error
}

// NewFace creates a font face for one of the file's font resources.
// Collections address their members by index; single font files only
// accept index 0.
func (f *Factory) NewFace(file *File, index int, sim Simulations) (*Face, error) {
	if file == nil {
		return nil, core.Error(core.EINVALID, "cannot create face from nil font file")
	}
	bin, err := file.faceData(index)
	if err != nil {
		return nil, err
	}
	fc := &Face{file: file, index: index, sim: sim, bin: bin}
	if fc.header, err = parseHeader(fc.bin, 0); err != nil {
		return nil, err
	}
	if err = fc.parseTables(); err != nil {
		return nil, err
	}
	fc.computeMetrics()
	tracer().Debugf("created font face '%s' (%d glyphs, %d upem)",
		fc.names[nameFullFontName], fc.numGlyphs, fc.metrics.UnitsPerEm)
	return fc, nil
}

func (fc *Face) parseTables() error {
	t := func(tag string) binSegm {
		b, err := fc.header.tableData(fc.bin, MakeTag(tag))
		if err != nil {
			return nil
		}
		return b
	}
	var err error
	headb := t("head")
	if headb == nil {
		return errFontFormat("head table missing")
	}
	if fc.head, err = parseHead(headb); err != nil {
		return err
	}
	if fc.head.unitsPerEm == 0 {
		return errFontFormat("head table has no units per em")
	}
	hheab := t("hhea")
	if hheab == nil {
		return errFontFormat("hhea table missing")
	}
	if fc.hhea, err = parseHHea(hheab); err != nil {
		return err
	}
	maxpb := t("maxp")
	if maxpb == nil {
		return errFontFormat("maxp table missing")
	}
	if fc.numGlyphs, err = parseMaxpNumGlyphs(maxpb); err != nil {
		return err
	}
	nameb := t("name")
	if nameb != nil {
		if fc.names, err = parseNames(nameb); err != nil {
			return err
		}
	} else {
		fc.names = map[int]string{}
	}
	if os2b := t("OS/2"); os2b != nil {
		if fc.os2, err = parseOS2(os2b); err == nil {
			fc.hasOS2 = true
		}
	}
	if postb := t("post"); postb != nil {
		if fc.post, err = parsePost(postb); err == nil {
			fc.hasPost = true
		}
	}
	fc.hmtx = t("hmtx")
	fc.loca = t("loca")
	fc.glyf = t("glyf")
	return nil
}

// computeMetrics fills FaceMetrics from OS/2 where present, hhea otherwise.
// Fonts flagged with useTypoMetrics get the typographic ascent and descent,
// all others the Windows clipping metrics.
func (fc *Face) computeMetrics() {
	upem := int32(fc.head.unitsPerEm)
	m := FaceMetrics{UnitsPerEm: upem}
	switch {
	case fc.hasOS2 && fc.os2.fsSelection&fsSelUseTypoMetr != 0:
		m.Ascent = int32(fc.os2.typoAscender)
		m.Descent = -int32(fc.os2.typoDescender)
		m.LineGap = int32(fc.os2.typoLineGap)
	case fc.hasOS2:
		m.Ascent = int32(fc.os2.winAscent)
		m.Descent = int32(fc.os2.winDescent)
		m.LineGap = int32(fc.os2.typoLineGap)
	default:
		m.Ascent = int32(fc.hhea.ascender)
		m.Descent = -int32(fc.hhea.descender)
		m.LineGap = int32(fc.hhea.lineGap)
	}
	if fc.hasOS2 && fc.os2.capHeight != 0 {
		m.CapHeight = int32(fc.os2.capHeight)
	} else {
		m.CapHeight = 7 * upem / 10
	}
	if fc.hasOS2 && fc.os2.xHeight != 0 {
		m.XHeight = int32(fc.os2.xHeight)
	} else {
		m.XHeight = upem / 2
	}
	if fc.hasPost && fc.post.underlineThickness != 0 {
		m.UnderlinePosition = int32(fc.post.underlinePosition)
		m.UnderlineThickness = int32(fc.post.underlineThickness)
	} else {
		m.UnderlinePosition = -upem / 10
		m.UnderlineThickness = upem / 20
	}
	if fc.hasOS2 && fc.os2.strikeoutSize != 0 {
		m.StrikethroughPosition = int32(fc.os2.strikeoutPosition)
		m.StrikethroughThickness = int32(fc.os2.strikeoutSize)
	} else {
		m.StrikethroughPosition = upem / 4
		m.StrikethroughThickness = m.UnderlineThickness
	}
	fc.metrics = m
}

// File returns the font file this face was created from.
func (fc *Face) File() *File { return fc.file }

// Index returns the face index within the font file.
func (fc *Face) Index() int { return fc.index }

// Simulations returns the style simulations the face was created with.
func (fc *Face) Simulations() Simulations { return fc.sim }

// NumGlyphs returns the glyph count of the face.
func (fc *Face) NumGlyphs() int { return fc.numGlyphs }

// Metrics returns the font-wide metrics of the face in design units.
func (fc *Face) Metrics() FaceMetrics { return fc.metrics }

// IsMonospaced reports whether the font declares a fixed pitch.
func (fc *Face) IsMonospaced() bool { return fc.hasPost && fc.post.fixedPitch }

// ItalicAngle returns the italic angle in degrees, counter-clockwise from
// vertical. Simulated oblique is not reflected here.
func (fc *Face) ItalicAngle() float32 {
	if fc.hasPost {
		return fc.post.italicAngle
	}
	return 0
}

// Table returns the raw bytes of an SFNT table, or false if the face has
// no such table. The slice aliases the face's data and must be treated as
// read-only.
func (fc *Face) Table(tag Tag) ([]byte, bool) {
	b, err := fc.header.tableData(fc.bin, tag)
	if err != nil {
		return nil, false
	}
	return b, true
}

// ensureParsed runs the full font parser over the face binary, once. Only
// the shaper needs the parsed form; catalogue queries work off the raw
// tables.
func (fc *Face) ensureParsed() error {
	fc.parseOnce.Do(func() {
		otf, err := hbtt.Parse(bytes.NewReader(fc.bin), true)
		if err != nil {
			fc.parseErr = core.WrapError(err, core.EINVALID, "font face not parsable")
			return
		}
		fc.hbFont = hb.NewFont(otf)
	})
	return fc.parseErr
}

// ShaperFont returns the face prepared for the shaper, scaled to design
// units.
func (fc *Face) ShaperFont() (*hb.Font, error) {
	if err := fc.ensureParsed(); err != nil {
		return nil, err
	}
	return fc.hbFont, nil
}

func (fc *Face) cmap() cmapTable {
	fc.cmapOnce.Do(func() {
		if b, ok := fc.Table(MakeTag("cmap")); ok {
			fc.charmap = parseCmap(binSegm(b))
		} else {
			fc.charmap = cmapNone{}
		}
	})
	return fc.charmap
}

// GlyphIndices maps characters to their nominal glyph indices, not
// applying any shaping. Unmapped characters yield glyph 0.
func (fc *Face) GlyphIndices(chars []rune) []GlyphID {
	glyphs := make([]GlyphID, len(chars))
	cm := fc.cmap()
	for i, r := range chars {
		if gid, ok := cm.lookup(r); ok {
			glyphs[i] = gid
		}
	}
	return glyphs
}

// HasChar reports whether the face maps the character to a glyph.
func (fc *Face) HasChar(r rune) bool {
	_, ok := fc.cmap().lookup(r)
	return ok
}

// advance returns the horizontal advance of a glyph from the hmtx table,
// in design units.
func (fc *Face) advance(g GlyphID) int32 {
	n := int(fc.hhea.numHMetrics)
	if n == 0 || fc.hmtx == nil {
		return 0
	}
	i := int(g)
	if i >= n {
		i = n - 1
	}
	adv, err := fc.hmtx.u16(4 * i)
	if err != nil {
		return 0
	}
	return int32(adv)
}

// leftSideBearing returns the lsb of a glyph from the hmtx table.
func (fc *Face) leftSideBearing(g GlyphID) int32 {
	n := int(fc.hhea.numHMetrics)
	if n == 0 || fc.hmtx == nil {
		return 0
	}
	var lsb int16
	var err error
	if int(g) < n {
		lsb, err = fc.hmtx.i16(4*int(g) + 2)
	} else {
		lsb, err = fc.hmtx.i16(4*n + 2*(int(g)-n))
	}
	if err != nil {
		return 0
	}
	return int32(lsb)
}

// bbox returns the control box of a glyph from the glyf table. Glyphs
// without outline data, and all glyphs of CFF-flavored fonts, report ok
// false.
func (fc *Face) bbox(g GlyphID) (xMin, yMin, xMax, yMax int32, ok bool) {
	if fc.loca == nil || fc.glyf == nil || int(g) >= fc.numGlyphs {
		return 0, 0, 0, 0, false
	}
	var from, to uint32
	if fc.head.indexToLoca == 0 {
		a, err1 := fc.loca.u16(2 * int(g))
		b, err2 := fc.loca.u16(2*int(g) + 2)
		if err1 != nil || err2 != nil {
			return 0, 0, 0, 0, false
		}
		from, to = uint32(a)*2, uint32(b)*2
	} else {
		a, err1 := fc.loca.u32(4 * int(g))
		b, err2 := fc.loca.u32(4*int(g) + 4)
		if err1 != nil || err2 != nil {
			return 0, 0, 0, 0, false
		}
		from, to = a, b
	}
	if to <= from { // empty glyph, e.g. space
		return 0, 0, 0, 0, false
	}
	rec, err := fc.glyf.view(int(from), 10)
	if err != nil {
		return 0, 0, 0, 0, false
	}
	x0, _ := rec.i16(2)
	y0, _ := rec.i16(4)
	x1, _ := rec.i16(6)
	y1, _ := rec.i16(8)
	return int32(x0), int32(y0), int32(x1), int32(y1), true
}

// GlyphMetrics returns the design-unit metrics for a batch of glyphs.
// Glyphs without ink report their full advance as right side bearing.
func (fc *Face) GlyphMetrics(glyphs []GlyphID) ([]GlyphMetrics, error) {
	out := make([]GlyphMetrics, len(glyphs))
	lineHeight := fc.metrics.Ascent + fc.metrics.Descent
	for i, g := range glyphs {
		if int(g) >= fc.numGlyphs {
			return nil, core.Error(core.EINVALID, "glyph index %d out of range for face with %d glyphs", g, fc.numGlyphs)
		}
		gm := GlyphMetrics{
			AdvanceWidth:    fc.advance(g),
			LeftSideBearing: fc.leftSideBearing(g),
			AdvanceHeight:   lineHeight,
			VerticalOriginY: fc.metrics.Ascent,
		}
		if xMin, yMin, xMax, yMax, ok := fc.bbox(g); ok {
			gm.RightSideBearing = gm.AdvanceWidth - gm.LeftSideBearing - (xMax - xMin)
			gm.TopSideBearing = fc.metrics.Ascent - yMax
			gm.BottomSideBearing = yMin + fc.metrics.Descent
		} else {
			gm.RightSideBearing = gm.AdvanceWidth - gm.LeftSideBearing
			gm.TopSideBearing = fc.metrics.Ascent
			gm.BottomSideBearing = fc.metrics.Descent
		}
		out[i] = gm
	}
	return out, nil
}

// FamilyName returns the family name recorded in the face, preferring the
// typographic over the legacy entry.
func (fc *Face) FamilyName() string {
	if s, ok := fc.names[nameTypographicFam]; ok {
		return s
	}
	return fc.names[nameFontFamily]
}

// SubfamilyName returns the style name recorded in the face.
func (fc *Face) SubfamilyName() string {
	if s, ok := fc.names[nameTypographicSub]; ok {
		return s
	}
	return fc.names[nameFontSubfamily]
}

// FullName returns the full font name recorded in the face.
func (fc *Face) FullName() string { return fc.names[nameFullFontName] }

// PostscriptName returns the PostScript name recorded in the face.
func (fc *Face) PostscriptName() string { return fc.names[namePostscriptName] }
