package font

import (
	"sort"

	"github.com/npillmayer/satz/core"
)

// Family groups the fonts sharing one family name within a collection.
// Fonts keep the order in which they entered the collection.
type Family struct {
	collection *Collection
	name       string
	fonts      []*Font
}

// Name returns the family name.
func (fam *Family) Name() string { return fam.name }

// Collection returns the collection the family belongs to.
func (fam *Family) Collection() *Collection { return fam.collection }

// NumFonts returns the number of fonts in the family.
func (fam *Family) NumFonts() int { return len(fam.fonts) }

// Font returns the family member at the given position.
func (fam *Family) Font(i int) (*Font, error) {
	if i < 0 || i >= len(fam.fonts) {
		return nil, core.Error(core.EINVALID, "family '%s' has %d fonts, index %d requested", fam.name, len(fam.fonts), i)
	}
	return fam.fonts[i], nil
}

// FontList is an ordered list of candidate fonts, best match first.
type FontList struct {
	fonts []*Font
}

// Len returns the number of fonts in the list.
func (fl *FontList) Len() int { return len(fl.fonts) }

// Font returns the list entry at the given position.
func (fl *FontList) Font(i int) *Font { return fl.fonts[i] }

// wwsDistance ranks a font against a requested (weight, stretch, style)
// triple. Weight counts per 100 units with factor 4, stretch per width
// class with factor 2, slope per step.
func wwsDistance(f *Font, weight Weight, stretch Stretch, style Style) int {
	dw := int(f.weight) - int(weight)
	if dw < 0 {
		dw = -dw
	}
	ds := int(f.stretch) - int(stretch)
	if ds < 0 {
		ds = -ds
	}
	dy := int(f.style) - int(style)
	if dy < 0 {
		dy = -dy
	}
	return 4*dw/100 + 2*ds + dy
}

// MatchingFonts returns the members of the family ordered by their WWS
// distance to the requested triple. Fonts at equal distance keep their
// order within the collection.
func (fam *Family) MatchingFonts(weight Weight, stretch Stretch, style Style) *FontList {
	list := make([]*Font, len(fam.fonts))
	copy(list, fam.fonts)
	sort.SliceStable(list, func(i, j int) bool {
		return wwsDistance(list[i], weight, stretch, style) < wwsDistance(list[j], weight, stretch, style)
	})
	return &FontList{fonts: list}
}

// FirstMatchingFont returns the family member closest to the requested
// triple.
func (fam *Family) FirstMatchingFont(weight Weight, stretch Stretch, style Style) (*Font, error) {
	if len(fam.fonts) == 0 {
		return nil, core.Error(core.EMISSING, "family '%s' has no fonts", fam.name)
	}
	best := fam.fonts[0]
	bestd := wwsDistance(best, weight, stretch, style)
	for _, f := range fam.fonts[1:] {
		if d := wwsDistance(f, weight, stretch, style); d < bestd {
			best, bestd = f, d
		}
	}
	return best, nil
}
