package font

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/derekparker/trie"
	"github.com/npillmayer/satz/core"
	"golang.org/x/text/cases"
)

// Collection is an immutable set of font families, ordered by insertion.
// Family names are indexed case-insensitively. Collections are safe for
// concurrent use once built.
type Collection struct {
	factory  *Factory
	families []*Family
	names    *trie.Trie // folded family name -> family position
}

func newCollection(f *Factory) *Collection {
	return &Collection{factory: f, names: trie.New()}
}

// foldName case-folds a family name for lookup, using full Unicode
// folding rather than plain lower-casing.
func foldName(name string) string {
	return cases.Fold().String(name)
}

// NumFamilies returns the number of families in the collection.
func (c *Collection) NumFamilies() int { return len(c.families) }

// Family returns the family at the given position.
func (c *Collection) Family(i int) (*Family, error) {
	if i < 0 || i >= len(c.families) {
		return nil, core.Error(core.EINVALID, "collection has %d families, index %d requested", len(c.families), i)
	}
	return c.families[i], nil
}

// FindFamilyByName looks up a family case-insensitively and returns its
// position, or false if the collection holds no family of that name.
func (c *Collection) FindFamilyByName(name string) (int, bool) {
	node, ok := c.names.Find(foldName(name))
	if !ok {
		return 0, false
	}
	return node.Meta().(int), true
}

// FamilyByName is FindFamilyByName resolving to the family itself.
func (c *Collection) FamilyByName(name string) (*Family, bool) {
	if i, ok := c.FindFamilyByName(name); ok {
		return c.families[i], true
	}
	return nil, false
}

// ClosestFamily finds the family best matching a possibly inexact name
// pattern, together with a confidence score. Exact folded matches score
// perfect, unique prefix completions high, substring hits low.
func (c *Collection) ClosestFamily(pattern string) (*Family, MatchConfidence) {
	folded := foldName(pattern)
	if node, ok := c.names.Find(folded); ok {
		return c.families[node.Meta().(int)], PerfectConfidence
	}
	if keys := c.names.PrefixSearch(folded); len(keys) > 0 {
		if node, ok := c.names.Find(keys[0]); ok {
			return c.families[node.Meta().(int)], HighConfidence
		}
	}
	if norm := NormalizeFontname(pattern); len(norm) >= 3 {
		for _, fam := range c.families {
			if strings.Contains(NormalizeFontname(fam.name), norm) {
				return fam, LowConfidence
			}
		}
	}
	return nil, NoConfidence
}

// addFile analyzes a font file and adds all its usable faces to the
// collection. Unsupported or broken files are skipped and logged, so that
// one stray file does not spoil an enumeration.
func (c *Collection) addFile(file *File) {
	supported, _, faces, err := file.Analyze()
	if err != nil || !supported {
		tracer().Infof("skipping font file: %v", err)
		return
	}
	for i := 0; i < faces; i++ {
		fc, err := c.factory.NewFace(file, i, SimulateNone)
		if err != nil {
			tracer().Infof("skipping font face %d: %v", i, err)
			continue
		}
		c.addFace(fc)
	}
}

// addFace classifies a face and files it into its family, creating the
// family on first contact.
func (c *Collection) addFace(fc *Face) {
	famName := fc.FamilyName()
	if famName == "" {
		famName = "Unknown"
	}
	folded := foldName(famName)
	var fam *Family
	if node, ok := c.names.Find(folded); ok {
		fam = c.families[node.Meta().(int)]
	} else {
		fam = &Family{collection: c, name: famName}
		c.names.Add(folded, len(c.families))
		c.families = append(c.families, fam)
	}
	weight, stretch, style := classifyFace(fc)
	fam.fonts = append(fam.fonts, &Font{
		family:  fam,
		face:    fc,
		weight:  weight,
		stretch: stretch,
		style:   style,
	})
}

// --- Character to font mapping ----------------------------------------------

// Selector describes the font a client asks for, prior to matching.
type Selector struct {
	Family  string
	Weight  Weight
	Stretch Stretch
	Style   Style
}

// MapCharacters maps a prefix of text[from:from+length] to the single best
// font for it. It walks candidate fonts, the requested family's WWS
// matches first, then every other family in collection order, and extends
// the mapped prefix for as long as the chosen font covers the characters.
// mapped is a count of UTF-16 code units. A nil font with mapped > 0 means
// no candidate covers the prefix and it should render as missing glyphs.
// The scale is a size multiplier for the returned font, currently always 1.
func (c *Collection) MapCharacters(text []uint16, from, length int, sel Selector, locale string) (font *Font, mapped int, scale float32) {
	scale = 1
	if from < 0 || from >= len(text) || length <= 0 {
		return nil, 0, scale
	}
	if from+length > len(text) {
		length = len(text) - from
	}
	runes := utf16.Decode(text[from : from+length])
	if len(runes) == 0 {
		return nil, 0, scale
	}
	candidates := c.candidates(sel)
	font = firstWithChar(candidates, runes[0])
	mapped = unitLen(runes[0])
	for _, r := range runes[1:] {
		if font != nil {
			if !font.HasChar(r) && !joinsPrevious(r) {
				break
			}
		} else {
			if firstWithChar(candidates, r) != nil {
				break
			}
		}
		mapped += unitLen(r)
	}
	return font, mapped, scale
}

// candidates builds the fallback chain for a selector: the named family's
// fonts ordered by WWS distance, then the closest member of every other
// family in collection order.
func (c *Collection) candidates(sel Selector) []*Font {
	var cands []*Font
	base := -1
	if i, ok := c.FindFamilyByName(sel.Family); ok {
		base = i
		cands = append(cands, c.families[i].MatchingFonts(sel.Weight, sel.Stretch, sel.Style).fonts...)
	}
	for i, fam := range c.families {
		if i == base {
			continue
		}
		if f, err := fam.FirstMatchingFont(sel.Weight, sel.Stretch, sel.Style); err == nil {
			cands = append(cands, f)
		}
	}
	return cands
}

func firstWithChar(fonts []*Font, r rune) *Font {
	for _, f := range fonts {
		if f.HasChar(r) {
			return f
		}
	}
	return nil
}

// joinsPrevious reports characters that must stay with the font of the
// character before them: combining marks, joiners and variation selectors.
func joinsPrevious(r rune) bool {
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) {
		return true
	}
	switch {
	case r == 0x200C || r == 0x200D: // zero width (non-)joiner
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r == 0x20E3: // combining enclosing keycap
		return true
	}
	return false
}

// unitLen is the UTF-16 code unit count of a character.
func unitLen(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
