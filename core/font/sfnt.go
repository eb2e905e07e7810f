package font

import (
	"bytes"
	"encoding/binary"

	"github.com/npillmayer/satz/core"
)

// FileFormat classifies the container format of a font file.
type FileFormat int

// Font file formats detectable by File.Analyze.
const (
	FormatUnknown FileFormat = iota
	FormatTrueType
	FormatCFF
	FormatCollection
)

func (ff FileFormat) String() string {
	switch ff {
	case FormatTrueType:
		return "TrueType"
	case FormatCFF:
		return "CFF"
	case FormatCollection:
		return "Collection"
	}
	return "Unknown"
}

// Tag is a 4-byte identifier of an SFNT table or feature, as used throughout
// the OpenType specification.
type Tag uint32

// MakeTag creates a tag from the first 4 bytes of s, padding with spaces.
func MakeTag(s string) Tag {
	var b [4]byte
	copy(b[:], "    ")
	copy(b[:], s)
	return Tag(binary.BigEndian.Uint32(b[:]))
}

func (t Tag) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(t))
	return string(b[:])
}

// SFNT version words and table tags we dispatch on.
const (
	sfntVersionTrueType = 0x00010000
	sfntVersionAppleTT  = 0x74727565 // 'true'
	sfntVersionCFF      = 0x4f54544f // 'OTTO'
	sfntVersionTTC      = 0x74746366 // 'ttcf'
)

// --- Binary segments --------------------------------------------------------

// binSegm is a segment of font binary data. All multi-byte values in SFNT
// fonts are big-endian.
type binSegm []byte

func (b binSegm) view(from, size int) (binSegm, error) {
	if from < 0 || size < 0 || from+size > len(b) {
		return nil, errFontFormat("internal structure out of bounds")
	}
	return b[from : from+size], nil
}

func (b binSegm) u16(at int) (uint16, error) {
	if at < 0 || at+2 > len(b) {
		return 0, errFontFormat("internal structure out of bounds")
	}
	return binary.BigEndian.Uint16(b[at:]), nil
}

func (b binSegm) u32(at int) (uint32, error) {
	if at < 0 || at+4 > len(b) {
		return 0, errFontFormat("internal structure out of bounds")
	}
	return binary.BigEndian.Uint32(b[at:]), nil
}

func (b binSegm) i16(at int) (int16, error) {
	u, err := b.u16(at)
	return int16(u), err
}

func errFontFormat(x string) error {
	return core.Error(core.EINVALID, "font format error: %s", x)
}

// --- Table directory --------------------------------------------------------

// tableRecord is one entry of an SFNT table directory.
type tableRecord struct {
	tag      Tag
	checksum uint32
	offset   uint32
	length   uint32
}

// sfntHeader is the parsed table directory of one font resource, either a
// standalone font file or a member of a collection.
type sfntHeader struct {
	version uint32
	tables  []tableRecord
}

func (h *sfntHeader) table(tag Tag) (tableRecord, bool) {
	for _, rec := range h.tables {
		if rec.tag == tag {
			return rec, true
		}
	}
	return tableRecord{}, false
}

// tableData returns the raw bytes of a table, cut from the font binary.
func (h *sfntHeader) tableData(bin binSegm, tag Tag) (binSegm, error) {
	rec, ok := h.table(tag)
	if !ok {
		return nil, core.Error(core.EMISSING, "font has no '%s' table", tag)
	}
	return bin.view(int(rec.offset), int(rec.length))
}

// parseHeader parses the table directory at the given offset into the font
// binary. Layout is a 12-byte header followed by numTables 16-byte records,
// sorted by tag.
func parseHeader(bin binSegm, offset uint32) (*sfntHeader, error) {
	const headerLen, recordLen = 12, 16
	b, err := bin.view(int(offset), headerLen)
	if err != nil {
		return nil, err
	}
	h := &sfntHeader{version: binary.BigEndian.Uint32(b)}
	switch h.version {
	case sfntVersionTrueType, sfntVersionAppleTT, sfntVersionCFF:
		break
	default:
		return nil, errFontFormat("unrecognized SFNT version")
	}
	n := int(binary.BigEndian.Uint16(b[4:]))
	recs, err := bin.view(int(offset)+headerLen, n*recordLen)
	if err != nil {
		return nil, err
	}
	h.tables = make([]tableRecord, n)
	for i := 0; i < n; i++ {
		r := recs[i*recordLen:]
		h.tables[i] = tableRecord{
			tag:      Tag(binary.BigEndian.Uint32(r)),
			checksum: binary.BigEndian.Uint32(r[4:]),
			offset:   binary.BigEndian.Uint32(r[8:]),
			length:   binary.BigEndian.Uint32(r[12:]),
		}
		if h.tables[i].offset&3 != 0 {
			tracer().Infof("font table '%s' not aligned on long word", h.tables[i].tag)
		}
		if int64(h.tables[i].offset)+int64(h.tables[i].length) > int64(len(bin)) {
			return nil, errFontFormat("table extends beyond end of font data")
		}
	}
	return h, nil
}

// analyzeBinary inspects the leading bytes of font data and reports the
// container format and the number of faces in it.
func analyzeBinary(bin binSegm) (FileFormat, int) {
	version, err := bin.u32(0)
	if err != nil {
		return FormatUnknown, 0
	}
	switch version {
	case sfntVersionTrueType, sfntVersionAppleTT:
		if _, err := parseHeader(bin, 0); err != nil {
			return FormatUnknown, 0
		}
		return FormatTrueType, 1
	case sfntVersionCFF:
		if _, err := parseHeader(bin, 0); err != nil {
			return FormatUnknown, 0
		}
		return FormatCFF, 1
	case sfntVersionTTC:
		offsets, err := ttcOffsets(bin)
		if err != nil {
			return FormatUnknown, 0
		}
		return FormatCollection, len(offsets)
	}
	return FormatUnknown, 0
}

// ttcOffsets reads the offset table of a TrueType/OpenType collection:
// 'ttcf', version, numFonts, then one offset per member font.
func ttcOffsets(bin binSegm) ([]uint32, error) {
	n, err := bin.u32(8)
	if err != nil {
		return nil, err
	}
	if n == 0 || n > 1024 {
		return nil, errFontFormat("implausible number of fonts in collection")
	}
	offs := make([]uint32, n)
	for i := range offs {
		if offs[i], err = bin.u32(12 + 4*i); err != nil {
			return nil, err
		}
	}
	return offs, nil
}

// extractMember cuts one member font out of a collection and rebuilds it as
// a standalone font binary: fresh table directory, table data copied over,
// offsets rebased. Tables shared between members are duplicated.
func extractMember(bin binSegm, index int) ([]byte, error) {
	offsets, err := ttcOffsets(bin)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(offsets) {
		return nil, core.Error(core.EINVALID, "collection has %d fonts, index %d requested", len(offsets), index)
	}
	h, err := parseHeader(bin, offsets[index])
	if err != nil {
		return nil, err
	}
	const headerLen, recordLen = 12, 16
	n := len(h.tables)
	size := headerLen + n*recordLen
	for _, rec := range h.tables {
		size += int(rec.length+3) &^ 3
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint32(out, h.version)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	// The binary-search fields of the directory are required but unused by
	// the parsers we feed this to.
	entrySelector := uint16(0)
	for 1<<(entrySelector+1) <= n {
		entrySelector++
	}
	searchRange := uint16(1<<entrySelector) * recordLen
	binary.BigEndian.PutUint16(out[6:], searchRange)
	binary.BigEndian.PutUint16(out[8:], entrySelector)
	binary.BigEndian.PutUint16(out[10:], uint16(n)*recordLen-searchRange)
	pos := uint32(headerLen + n*recordLen)
	for i, rec := range h.tables {
		data, err := bin.view(int(rec.offset), int(rec.length))
		if err != nil {
			return nil, err
		}
		r := out[headerLen+i*recordLen:]
		binary.BigEndian.PutUint32(r, uint32(rec.tag))
		binary.BigEndian.PutUint32(r[4:], rec.checksum)
		binary.BigEndian.PutUint32(r[8:], pos)
		binary.BigEndian.PutUint32(r[12:], rec.length)
		copy(out[pos:], data)
		pos += rec.length + 3
		pos &^= 3
	}
	return out, nil
}

// --- Naming table -----------------------------------------------------------

// Name IDs of interest, per the OpenType 'name' table.
const (
	nameFontFamily     = 1
	nameFontSubfamily  = 2
	nameFullFontName   = 4
	namePostscriptName = 6
	nameTypographicFam = 16
	nameTypographicSub = 17
	nameWWSFamily      = 21
	nameWWSSubfamily   = 22
)

// parseNames collects the entries of the name table by name ID, preferring
// Windows Unicode entries over Macintosh ones.
func parseNames(names binSegm) (map[int]string, error) {
	n, err := names.u16(2)
	if err != nil {
		return nil, err
	}
	strOffset, err := names.u16(4)
	if err != nil {
		return nil, err
	}
	recs, err := names.view(6, int(n)*12)
	if err != nil {
		return nil, err
	}
	found := make(map[int]string)
	prio := make(map[int]int)
	for i := 0; i < int(n); i++ {
		r := recs[i*12:]
		platformID := binary.BigEndian.Uint16(r)
		encodingID := binary.BigEndian.Uint16(r[2:])
		languageID := binary.BigEndian.Uint16(r[4:])
		nameID := int(binary.BigEndian.Uint16(r[6:]))
		length := int(binary.BigEndian.Uint16(r[8:]))
		offset := int(binary.BigEndian.Uint16(r[10:]))
		raw, err := names.view(int(strOffset)+offset, length)
		if err != nil {
			continue // tolerate broken entries, some shipping fonts have them
		}
		var s string
		var p int
		switch {
		case platformID == 3 && (encodingID == 1 || encodingID == 10):
			s, p = decodeUTF16BE(raw), 3
			if languageID == 0x0409 { // en-US preferred among Windows entries
				p = 4
			}
		case platformID == 0:
			s, p = decodeUTF16BE(raw), 2
		case platformID == 1 && encodingID == 0:
			s, p = decodeMacRoman(raw), 1
		default:
			continue
		}
		if s == "" || p <= prio[nameID] {
			continue
		}
		found[nameID] = s
		prio[nameID] = p
	}
	return found, nil
}

func decodeUTF16BE(b []byte) string {
	var buf bytes.Buffer
	for i := 0; i+1 < len(b); i += 2 {
		u := rune(binary.BigEndian.Uint16(b[i:]))
		if u >= 0xD800 && u < 0xDC00 && i+3 < len(b) {
			lo := rune(binary.BigEndian.Uint16(b[i+2:]))
			if lo >= 0xDC00 && lo < 0xE000 {
				u = 0x10000 + (u-0xD800)<<10 + (lo - 0xDC00)
				i += 2
			}
		}
		buf.WriteRune(u)
	}
	return buf.String()
}

func decodeMacRoman(b []byte) string {
	var buf bytes.Buffer
	for _, c := range b {
		if c < 0x80 {
			buf.WriteByte(c)
		} else {
			buf.WriteRune('?') // extended MacRoman is irrelevant for matching
		}
	}
	return buf.String()
}

// --- Metric and style tables ------------------------------------------------

// os2Info carries the style classification and vertical metric fields of
// the OS/2 table. Fields of table versions the font predates stay zero.
type os2Info struct {
	version           uint16
	weightClass       uint16
	widthClass        uint16
	fsSelection       uint16
	typoAscender      int16
	typoDescender     int16
	typoLineGap       int16
	winAscent         uint16
	winDescent        uint16
	strikeoutSize     int16
	strikeoutPosition int16
	xHeight           int16
	capHeight         int16
}

const (
	fsSelItalic      = 1 << 0
	fsSelBold        = 1 << 5
	fsSelUseTypoMetr = 1 << 7
	fsSelWWS         = 1 << 8
	fsSelOblique     = 1 << 9
)

func parseOS2(b binSegm) (os2Info, error) {
	var info os2Info
	var err error
	if info.version, err = b.u16(0); err != nil {
		return info, err
	}
	if info.weightClass, err = b.u16(4); err != nil {
		return info, err
	}
	if info.widthClass, err = b.u16(6); err != nil {
		return info, err
	}
	if info.strikeoutSize, err = b.i16(26); err != nil {
		return info, err
	}
	if info.strikeoutPosition, err = b.i16(28); err != nil {
		return info, err
	}
	if info.fsSelection, err = b.u16(62); err != nil {
		return info, err
	}
	if info.typoAscender, err = b.i16(68); err != nil {
		return info, err
	}
	if info.typoDescender, err = b.i16(70); err != nil {
		return info, err
	}
	if info.typoLineGap, err = b.i16(72); err != nil {
		return info, err
	}
	if info.winAscent, err = b.u16(74); err != nil {
		return info, err
	}
	if info.winDescent, err = b.u16(76); err != nil {
		return info, err
	}
	if info.version >= 2 && len(b) >= 90 {
		info.xHeight, _ = b.i16(86)
		info.capHeight, _ = b.i16(88)
	}
	return info, nil
}

// headInfo carries the fields of the head table the catalogue needs.
type headInfo struct {
	unitsPerEm  uint16
	macStyle    uint16
	indexToLoca uint16
}

const (
	macStyleBold   = 1 << 0
	macStyleItalic = 1 << 1
)

func parseHead(b binSegm) (headInfo, error) {
	var info headInfo
	var err error
	if info.unitsPerEm, err = b.u16(18); err != nil {
		return info, err
	}
	if info.macStyle, err = b.u16(44); err != nil {
		return info, err
	}
	if info.indexToLoca, err = b.u16(50); err != nil {
		return info, err
	}
	return info, nil
}

// hheaInfo carries the vertical metrics of the hhea table.
type hheaInfo struct {
	ascender    int16
	descender   int16
	lineGap     int16
	numHMetrics uint16
}

func parseHHea(b binSegm) (hheaInfo, error) {
	var info hheaInfo
	var err error
	if info.ascender, err = b.i16(4); err != nil {
		return info, err
	}
	if info.descender, err = b.i16(6); err != nil {
		return info, err
	}
	if info.lineGap, err = b.i16(8); err != nil {
		return info, err
	}
	if info.numHMetrics, err = b.u16(34); err != nil {
		return info, err
	}
	return info, nil
}

// postInfo carries the style and underline fields of the post table.
type postInfo struct {
	italicAngle        float32
	underlinePosition  int16
	underlineThickness int16
	fixedPitch         bool
}

func parsePost(b binSegm) (postInfo, error) {
	var info postInfo
	angle, err := b.u32(4)
	if err != nil {
		return info, err
	}
	info.italicAngle = float32(int32(angle)) / 65536
	if info.underlinePosition, err = b.i16(8); err != nil {
		return info, err
	}
	if info.underlineThickness, err = b.i16(10); err != nil {
		return info, err
	}
	fixed, err := b.u32(12)
	if err != nil {
		return info, err
	}
	info.fixedPitch = fixed != 0
	return info, nil
}

// parseMaxpNumGlyphs returns the glyph count of the maxp table.
func parseMaxpNumGlyphs(b binSegm) (int, error) {
	n, err := b.u16(4)
	return int(n), err
}
