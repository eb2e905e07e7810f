package font

import (
	"encoding/binary"
	"sort"
)

// Character-to-glyph mapping, parsed from the cmap table. The engine
// needs nominal lookups only; shaping-level mappings (variation
// selectors, contextual forms) are the shaper's business.

type cmapTable interface {
	lookup(r rune) (GlyphID, bool)
}

// selectCmapSubtable picks the best unicode subtable of a cmap: full
// repertoire tables first, then BMP-only ones.
func selectCmapSubtable(cmap binSegm) binSegm {
	n, err := cmap.u16(2)
	if err != nil {
		return nil
	}
	var best binSegm
	bestScore := 0
	for i := 0; i < int(n); i++ {
		rec, err := cmap.view(4+8*i, 8)
		if err != nil {
			return nil
		}
		platformID := binary.BigEndian.Uint16(rec)
		encodingID := binary.BigEndian.Uint16(rec[2:])
		offset := binary.BigEndian.Uint32(rec[4:])
		score := 0
		switch {
		case platformID == 3 && encodingID == 10: // Windows, full Unicode
			score = 5
		case platformID == 0 && encodingID >= 4: // Unicode, full repertoire
			score = 4
		case platformID == 3 && encodingID == 1: // Windows, BMP
			score = 3
		case platformID == 0: // Unicode, BMP
			score = 2
		case platformID == 3 && encodingID == 0: // symbol
			score = 1
		default:
			continue
		}
		if score <= bestScore || int(offset) >= len(cmap) {
			continue
		}
		best, bestScore = cmap[offset:], score
	}
	return best
}

// parseCmap parses the best subtable of a cmap table. Formats 4, 6 and 12
// are supported; fonts offering none of these map nothing.
func parseCmap(cmap binSegm) cmapTable {
	sub := selectCmapSubtable(cmap)
	if sub == nil {
		return cmapNone{}
	}
	format, err := sub.u16(0)
	if err != nil {
		return cmapNone{}
	}
	switch format {
	case 4:
		return parseCmapFormat4(sub)
	case 6:
		return parseCmapFormat6(sub)
	case 12:
		return parseCmapFormat12(sub)
	}
	return cmapNone{}
}

type cmapNone struct{}

func (cmapNone) lookup(rune) (GlyphID, bool) { return 0, false }

// --- Format 4: segmented BMP mapping ----------------------------------------

type cmapFormat4 struct {
	endCodes   []uint16
	startCodes []uint16
	idDeltas   []uint16
	// rangeData starts at the idRangeOffset array, so that an
	// idRangeOffset value indexes relative to its own position, the way
	// the format defines it.
	rangeData binSegm
}

func parseCmapFormat4(sub binSegm) cmapTable {
	segX2, err := sub.u16(6)
	if err != nil || segX2 < 2 || segX2%2 != 0 {
		return cmapNone{}
	}
	segs := int(segX2 / 2)
	need := 16 + 8*segs
	if len(sub) < need {
		return cmapNone{}
	}
	t := &cmapFormat4{
		endCodes:   make([]uint16, segs),
		startCodes: make([]uint16, segs),
		idDeltas:   make([]uint16, segs),
	}
	for i := 0; i < segs; i++ {
		t.endCodes[i] = binary.BigEndian.Uint16(sub[14+2*i:])
		t.startCodes[i] = binary.BigEndian.Uint16(sub[16+segX2+2*i:])
		t.idDeltas[i] = binary.BigEndian.Uint16(sub[16+2*segX2+2*i:])
	}
	t.rangeData = sub[16+3*int(segX2):]
	return t
}

func (t *cmapFormat4) lookup(r rune) (GlyphID, bool) {
	if r > 0xFFFF {
		return 0, false
	}
	c := uint16(r)
	i := sort.Search(len(t.endCodes), func(i int) bool { return t.endCodes[i] >= c })
	if i == len(t.endCodes) || t.startCodes[i] > c {
		return 0, false
	}
	rangeOffset, err := t.rangeData.u16(2 * i)
	if err != nil {
		return 0, false
	}
	if rangeOffset == 0 {
		g := GlyphID(c + t.idDeltas[i])
		if g == 0 {
			return 0, false
		}
		return g, true
	}
	at := 2*i + int(rangeOffset) + 2*int(c-t.startCodes[i])
	raw, err := t.rangeData.u16(at)
	if err != nil || raw == 0 {
		return 0, false
	}
	return GlyphID(raw + t.idDeltas[i]), true
}

// --- Format 6: trimmed table ------------------------------------------------

type cmapFormat6 struct {
	first  uint16
	glyphs []uint16
}

func parseCmapFormat6(sub binSegm) cmapTable {
	first, err1 := sub.u16(6)
	count, err2 := sub.u16(8)
	if err1 != nil || err2 != nil || len(sub) < 10+2*int(count) {
		return cmapNone{}
	}
	t := &cmapFormat6{first: first, glyphs: make([]uint16, count)}
	for i := range t.glyphs {
		t.glyphs[i] = binary.BigEndian.Uint16(sub[10+2*i:])
	}
	return t
}

func (t *cmapFormat6) lookup(r rune) (GlyphID, bool) {
	if r < rune(t.first) || r >= rune(t.first)+rune(len(t.glyphs)) {
		return 0, false
	}
	g := GlyphID(t.glyphs[r-rune(t.first)])
	return g, g != 0
}

// --- Format 12: segmented coverage ------------------------------------------

type cmapGroup struct {
	startChar  uint32
	endChar    uint32
	startGlyph uint32
}

type cmapFormat12 struct {
	groups []cmapGroup
}

func parseCmapFormat12(sub binSegm) cmapTable {
	n, err := sub.u32(12)
	if err != nil || len(sub) < 16+12*int(n) {
		return cmapNone{}
	}
	t := &cmapFormat12{groups: make([]cmapGroup, n)}
	for i := range t.groups {
		g := sub[16+12*i:]
		t.groups[i] = cmapGroup{
			startChar:  binary.BigEndian.Uint32(g),
			endChar:    binary.BigEndian.Uint32(g[4:]),
			startGlyph: binary.BigEndian.Uint32(g[8:]),
		}
	}
	return t
}

func (t *cmapFormat12) lookup(r rune) (GlyphID, bool) {
	c := uint32(r)
	i := sort.Search(len(t.groups), func(i int) bool { return t.groups[i].endChar >= c })
	if i == len(t.groups) || t.groups[i].startChar > c {
		return 0, false
	}
	g := t.groups[i].startGlyph + (c - t.groups[i].startChar)
	if g == 0 || g > 0xFFFF {
		return 0, false
	}
	return GlyphID(g), true
}
