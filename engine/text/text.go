// Package text holds the text model shared by the layout pipeline:
// positions and ranges counted in UTF-16 code units, and an immutable
// paragraph buffer which maps between code units and runes.
package text

import (
	"fmt"
	"strings"
	"unicode/utf16"
)

// ToEnd is the range length denoting "up to the end of the paragraph".
const ToEnd uint32 = 0xFFFFFFFF

// Range is a half-open interval [Start, Start+Length) of UTF-16 code
// units. A length of ToEnd reaches to the end of the paragraph,
// whatever its length.
type Range struct {
	Start  uint32
	Length uint32
}

// MakeRange creates a range from a start position and a length.
func MakeRange(start, length uint32) Range {
	return Range{Start: start, Length: length}
}

// All returns the range covering a whole paragraph.
func All() Range {
	return Range{Start: 0, Length: ToEnd}
}

// End returns the first position after the range. Ranges reaching the
// numeric limit saturate instead of wrapping around.
func (r Range) End() uint32 {
	end := uint64(r.Start) + uint64(r.Length)
	if end > uint64(ToEnd) {
		return ToEnd
	}
	return uint32(end)
}

// IsEmpty returns true for ranges of length 0.
func (r Range) IsEmpty() bool {
	return r.Length == 0
}

// Contains checks whether a position lies inside the range.
func (r Range) Contains(pos uint32) bool {
	return pos >= r.Start && pos < r.End()
}

// Clamp restricts a range to a paragraph of n code units. Ranges
// starting beyond the end become empty ranges at position n.
func (r Range) Clamp(n uint32) Range {
	if r.Start >= n {
		return Range{Start: n, Length: 0}
	}
	if r.End() > n {
		r.Length = n - r.Start
	}
	return r
}

func (r Range) String() string {
	if r.Length == ToEnd {
		return fmt.Sprintf("[%d…]", r.Start)
	}
	return fmt.Sprintf("[%d…%d)", r.Start, r.End())
}

// UnitLen returns the number of UTF-16 code units a rune occupies,
// 1 or 2.
func UnitLen(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// IsNewline checks for the characters terminating a line: LF, VT, FF,
// CR, NEL, LINE SEPARATOR and PARAGRAPH SEPARATOR. A CR LF pair counts
// as a single newline sequence, which callers detect themselves.
func IsNewline(r rune) bool {
	switch r {
	case 0x000A, 0x000B, 0x000C, 0x000D, 0x0085, 0x2028, 0x2029:
		return true
	}
	return false
}

// DecodeRunes decodes UTF-16 code units into runes. The second return
// value holds the code-unit offset of each rune plus one final entry
// equal to len(units). Unpaired surrogates decode to U+FFFD.
func DecodeRunes(units []uint16) (runes []rune, offsets []int) {
	offsets = make([]int, 0, len(units)+1)
	for i := 0; i < len(units); {
		w := 1
		r := rune(units[i])
		if utf16.IsSurrogate(r) {
			r = 0xFFFD
			if i+1 < len(units) {
				if c := utf16.DecodeRune(rune(units[i]), rune(units[i+1])); c != 0xFFFD {
					r, w = c, 2
				}
			}
		}
		runes = append(runes, r)
		offsets = append(offsets, i)
		i += w
	}
	offsets = append(offsets, len(units))
	return runes, offsets
}

// Buffer is an immutable paragraph of UTF-16 code units. It keeps the
// decoded runes and the mapping between code-unit offsets and rune
// indices, so that the analysis passes, which work on runes, and the
// public API, which counts code units, can translate positions both
// ways without scanning.
type Buffer struct {
	units []uint16
	runes []rune
	r2u   []int // rune index → code-unit offset, len = len(runes)+1
	u2r   []int // code-unit offset → index of covering rune, len = len(units)+1
}

// FromString builds a paragraph buffer from a Go string.
func FromString(s string) *Buffer {
	return newBuffer(utf16.Encode([]rune(s)))
}

// FromUnits builds a paragraph buffer from UTF-16 code units. The units
// are copied; unpaired surrogates decode to U+FFFD.
func FromUnits(units []uint16) *Buffer {
	own := make([]uint16, len(units))
	copy(own, units)
	return newBuffer(own)
}

func newBuffer(units []uint16) *Buffer {
	runes, offsets := DecodeRunes(units)
	b := &Buffer{
		units: units,
		runes: runes,
		r2u:   offsets,
		u2r:   make([]int, len(units)+1),
	}
	for i := 0; i < len(runes); i++ {
		for u := offsets[i]; u < offsets[i+1]; u++ {
			b.u2r[u] = i
		}
	}
	b.u2r[len(units)] = len(runes)
	return b
}

// Len returns the paragraph length in code units.
func (b *Buffer) Len() int {
	return len(b.units)
}

// Units returns the backing code units. Callers must not modify them.
func (b *Buffer) Units() []uint16 {
	return b.units
}

// Runes returns the decoded runes. Callers must not modify them.
func (b *Buffer) Runes() []rune {
	return b.runes
}

// RuneCount returns the paragraph length in runes.
func (b *Buffer) RuneCount() int {
	return len(b.runes)
}

// Slice returns the code units of [from, to), clamped to the paragraph.
// The slice aliases the buffer.
func (b *Buffer) Slice(from, to int) []uint16 {
	if from < 0 {
		from = 0
	}
	if to > len(b.units) {
		to = len(b.units)
	}
	if from >= to {
		return nil
	}
	return b.units[from:to]
}

// RuneIndex returns the index of the rune covering code-unit position
// pos. Positions at or beyond the end return the rune count.
func (b *Buffer) RuneIndex(pos int) int {
	if pos < 0 {
		return 0
	}
	if pos >= len(b.units) {
		return len(b.runes)
	}
	return b.u2r[pos]
}

// RuneOffset returns the code-unit offset at which rune idx starts.
// Indices at or beyond the rune count return the paragraph length.
func (b *Buffer) RuneOffset(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx >= len(b.runes) {
		return len(b.units)
	}
	return b.r2u[idx]
}

// RuneAt returns the rune covering code-unit position pos together with
// its width in code units. Positions outside the paragraph return
// (0, 0).
func (b *Buffer) RuneAt(pos int) (rune, int) {
	if pos < 0 || pos >= len(b.units) {
		return 0, 0
	}
	i := b.u2r[pos]
	return b.runes[i], b.r2u[i+1] - b.r2u[i]
}

// String decodes the paragraph back to a Go string.
func (b *Buffer) String() string {
	var sb strings.Builder
	for _, r := range b.runes {
		sb.WriteRune(r)
	}
	return sb.String()
}
