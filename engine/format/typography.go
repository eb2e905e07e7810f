package format

import (
	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
)

// Feature is an OpenType feature selection: a registered four-byte tag
// plus a parameter. For simple on/off features the parameter is 0 or 1;
// features like 'salt' select an alternate by number.
type Feature struct {
	Tag       font.Tag
	Parameter uint32
}

// Tags for common OpenType features. The full registry is open-ended,
// arbitrary tags may be created with font.MakeTag.
var (
	FeatureGlyphComposition    = font.MakeTag("ccmp")
	FeatureStandardLigatures   = font.MakeTag("liga")
	FeatureContextualLigatures = font.MakeTag("clig")
	FeatureRequiredLigatures   = font.MakeTag("rlig")
	FeatureDiscretionaryLigs   = font.MakeTag("dlig")
	FeatureHistoricalLigatures = font.MakeTag("hlig")
	FeatureContextualAlts      = font.MakeTag("calt")
	FeatureKerning             = font.MakeTag("kern")
	FeatureMarkPositioning     = font.MakeTag("mark")
	FeatureMarkToMark          = font.MakeTag("mkmk")
	FeatureCursivePositioning  = font.MakeTag("curs")
	FeatureSmallCaps           = font.MakeTag("smcp")
	FeatureCapsToSmallCaps     = font.MakeTag("c2sc")
	FeaturePetiteCaps          = font.MakeTag("pcap")
	FeatureOldStyleFigures     = font.MakeTag("onum")
	FeatureLiningFigures       = font.MakeTag("lnum")
	FeatureProportionalFigures = font.MakeTag("pnum")
	FeatureTabularFigures      = font.MakeTag("tnum")
	FeatureFractions           = font.MakeTag("frac")
	FeatureOrdinals            = font.MakeTag("ordn")
	FeatureSuperscript         = font.MakeTag("sups")
	FeatureSubscript           = font.MakeTag("subs")
	FeatureScientificInferiors = font.MakeTag("sinf")
	FeatureSlashedZero         = font.MakeTag("zero")
	FeatureStylisticAlternates = font.MakeTag("salt")
	FeatureSwash               = font.MakeTag("swsh")
	FeatureTitling             = font.MakeTag("titl")
	FeatureRubyNotation        = font.MakeTag("ruby")
)

// StylisticSet returns the feature tag for stylistic set n, with n
// between 1 and 20 ('ss01'…'ss20').
func StylisticSet(n int) (font.Tag, error) {
	if n < 1 || n > 20 {
		return 0, core.Error(core.EINVALID, "stylistic sets are numbered 1…20, not %d", n)
	}
	return font.MakeTag("ss" + string(rune('0'+n/10)) + string(rune('0'+n%10))), nil
}

// Typography is an ordered list of OpenType feature selections, applied
// to a text range on top of the features the shaper enables by default
// for the range's script. Features may be added repeatedly; when the
// list is applied, the last selection of a tag wins.
type Typography struct {
	features []Feature
}

// NewTypography creates an empty feature list.
func NewTypography() *Typography {
	return &Typography{}
}

// AddFeature appends a feature selection.
func (t *Typography) AddFeature(f Feature) {
	t.features = append(t.features, f)
}

// Len returns the number of feature selections.
func (t *Typography) Len() int {
	if t == nil {
		return 0
	}
	return len(t.features)
}

// Feature returns the i-th feature selection.
func (t *Typography) Feature(i int) (Feature, error) {
	if i < 0 || i >= t.Len() {
		return Feature{}, core.Error(core.EINVALID, "feature index %d outside 0…%d", i, t.Len())
	}
	return t.features[i], nil
}

// Apply merges the feature list onto a set of default features. Every
// tag keeps the position of its first occurrence, but carries the
// parameter of its last selection. t may be nil.
func (t *Typography) Apply(defaults []Feature) []Feature {
	merged := make([]Feature, 0, len(defaults)+t.Len())
	at := make(map[font.Tag]int, len(defaults)+t.Len())
	for _, lst := range [][]Feature{defaults, t.featureList()} {
		for _, f := range lst {
			if i, ok := at[f.Tag]; ok {
				merged[i].Parameter = f.Parameter
				continue
			}
			at[f.Tag] = len(merged)
			merged = append(merged, f)
		}
	}
	return merged
}

func (t *Typography) featureList() []Feature {
	if t == nil {
		return nil
	}
	return t.features
}
