/*
BSD License

Copyright (c) 2017-21, Norbert Pillmayer

All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/

package font

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Weight is the visual weight of a font, 1 to 999, with the standard
// OpenType values named below.
type Weight uint16

const (
	WeightThin       Weight = 100
	WeightExtraLight Weight = 200
	WeightLight      Weight = 300
	WeightSemiLight  Weight = 350
	WeightNormal     Weight = 400
	WeightMedium     Weight = 500
	WeightSemiBold   Weight = 600
	WeightBold       Weight = 700
	WeightExtraBold  Weight = 800
	WeightBlack      Weight = 900
	WeightExtraBlack Weight = 950
)

func (w Weight) String() string {
	switch w {
	case WeightThin:
		return "Thin"
	case WeightExtraLight:
		return "ExtraLight"
	case WeightLight:
		return "Light"
	case WeightSemiLight:
		return "SemiLight"
	case WeightNormal:
		return "Regular"
	case WeightMedium:
		return "Medium"
	case WeightSemiBold:
		return "SemiBold"
	case WeightBold:
		return "Bold"
	case WeightExtraBold:
		return "ExtraBold"
	case WeightBlack:
		return "Black"
	case WeightExtraBlack:
		return "ExtraBlack"
	}
	return "Weight(" + strconv.Itoa(int(w)) + ")"
}

// Stretch is the width class of a font, 1 (ultra-condensed) to
// 9 (ultra-expanded), 5 being normal.
type Stretch uint8

const (
	StretchUltraCondensed Stretch = 1
	StretchExtraCondensed Stretch = 2
	StretchCondensed      Stretch = 3
	StretchSemiCondensed  Stretch = 4
	StretchNormal         Stretch = 5
	StretchSemiExpanded   Stretch = 6
	StretchExpanded       Stretch = 7
	StretchExtraExpanded  Stretch = 8
	StretchUltraExpanded  Stretch = 9
)

func (s Stretch) String() string {
	names := [...]string{"UltraCondensed", "ExtraCondensed", "Condensed",
		"SemiCondensed", "Normal", "SemiExpanded", "Expanded",
		"ExtraExpanded", "UltraExpanded"}
	if s >= 1 && s <= 9 {
		return names[s-1]
	}
	return "Stretch(" + strconv.Itoa(int(s)) + ")"
}

// Style is the slope of a font.
type Style uint8

const (
	StyleNormal Style = iota
	StyleOblique
	StyleItalic
)

func (s Style) String() string {
	switch s {
	case StyleOblique:
		return "Oblique"
	case StyleItalic:
		return "Italic"
	}
	return "Normal"
}

// InformationalStringID selects one of the descriptive strings a font may
// carry in its naming table.
type InformationalStringID int

const (
	InfoNone InformationalStringID = iota
	InfoCopyright
	InfoVersionStrings
	InfoTrademark
	InfoManufacturer
	InfoDesigner
	InfoDescription
	InfoLicense
	InfoFamilyNames
	InfoSubfamilyNames
	InfoFullName
	InfoPostscriptName
	InfoTypographicFamilyNames
	InfoTypographicSubfamilyNames
	InfoWWSFamilyNames
	InfoWWSSubfamilyNames
)

var infoNameIDs = map[InformationalStringID]int{
	InfoCopyright:                 0,
	InfoVersionStrings:            5,
	InfoTrademark:                 7,
	InfoManufacturer:              8,
	InfoDesigner:                  9,
	InfoDescription:               10,
	InfoLicense:                   13,
	InfoFamilyNames:               nameFontFamily,
	InfoSubfamilyNames:            nameFontSubfamily,
	InfoFullName:                  nameFullFontName,
	InfoPostscriptName:            namePostscriptName,
	InfoTypographicFamilyNames:    nameTypographicFam,
	InfoTypographicSubfamilyNames: nameTypographicSub,
	InfoWWSFamilyNames:            nameWWSFamily,
	InfoWWSSubfamilyNames:         nameWWSSubfamily,
}

// --- Fonts ------------------------------------------------------------------

// Font is one member of a font family: a physical face plus the weight,
// stretch and style it represents within the family.
type Font struct {
	family  *Family
	face    *Face
	weight  Weight
	stretch Stretch
	style   Style
}

// Family returns the family the font belongs to.
func (f *Font) Family() *Family { return f.family }

// Face returns the font face backing this font.
func (f *Font) Face() *Face { return f.face }

// Weight returns the weight slot of the font within its family.
func (f *Font) Weight() Weight { return f.weight }

// Stretch returns the stretch slot of the font within its family.
func (f *Font) Stretch() Stretch { return f.stretch }

// Style returns the slope slot of the font within its family.
func (f *Font) Style() Style { return f.style }

// Metrics returns the design-unit metrics of the backing face.
func (f *Font) Metrics() FaceMetrics { return f.face.Metrics() }

// HasChar reports whether the font maps the character to a glyph.
func (f *Font) HasChar(r rune) bool { return f.face.HasChar(r) }

// FaceName returns the name distinguishing this font within its family,
// e.g. "Bold Italic".
func (f *Font) FaceName() string {
	if s := f.face.SubfamilyName(); s != "" {
		return s
	}
	return f.style.String()
}

// InformationalString returns a descriptive string from the font's naming
// table, or false if the font does not carry it.
func (f *Font) InformationalString(id InformationalStringID) (string, bool) {
	nameID, ok := infoNameIDs[id]
	if !ok {
		return "", false
	}
	s, ok := f.face.names[nameID]
	return s, ok
}

func (f *Font) String() string {
	return f.family.Name() + " " + f.FaceName()
}

// classifyFace derives the (weight, stretch, style) slots of a face from
// its OS/2 table, falling back to the Macintosh style bits and the
// subfamily name for fonts without one.
func classifyFace(fc *Face) (Weight, Stretch, Style) {
	weight, stretch, style := WeightNormal, StretchNormal, StyleNormal
	if fc.hasOS2 {
		w := fc.os2.weightClass
		if w >= 1 && w <= 9 { // some legacy fonts use 1..9
			w *= 100
		}
		if w >= 1 && w <= 999 {
			weight = Weight(w)
		}
		if fc.os2.widthClass >= 1 && fc.os2.widthClass <= 9 {
			stretch = Stretch(fc.os2.widthClass)
		}
		if fc.os2.fsSelection&fsSelItalic != 0 {
			style = StyleItalic
		} else if fc.os2.fsSelection&fsSelOblique != 0 {
			style = StyleOblique
		}
		if fc.os2.fsSelection&fsSelBold != 0 && weight == WeightNormal {
			weight = WeightBold
		}
		return weight, stretch, style
	}
	if fc.head.macStyle&macStyleBold != 0 {
		weight = WeightBold
	}
	if fc.head.macStyle&macStyleItalic != 0 {
		style = StyleItalic
	} else if fc.ItalicAngle() != 0 {
		style = StyleOblique
	}
	if name := fc.SubfamilyName(); name != "" {
		gstyle, gweight := GuessStyleAndWeight(name)
		if gstyle != StyleNormal {
			style = gstyle
		}
		if gweight != WeightNormal {
			weight = gweight
		}
		stretch = guessStretch(name)
	}
	return weight, stretch, style
}

// --- Font name heuristics ---------------------------------------------------

// NormalizeFontname returns a canonical key for font name lookup: lower
// case, with spaces, dashes and underscores removed and a file extension
// cut off.
func NormalizeFontname(fname string) string {
	fname = strings.TrimSuffix(fname, filepath.Ext(fname))
	fname = strings.ToLower(fname)
	fname = strings.ReplaceAll(fname, "-", "")
	fname = strings.ReplaceAll(fname, "_", "")
	fname = strings.ReplaceAll(fname, " ", "")
	return fname
}

var weightPatterns = []struct {
	pattern string
	weight  Weight
}{
	{"extrablack", WeightExtraBlack},
	{"ultrablack", WeightExtraBlack},
	{"extrabold", WeightExtraBold},
	{"ultrabold", WeightExtraBold},
	{"semibold", WeightSemiBold},
	{"demibold", WeightSemiBold},
	{"demi", WeightSemiBold},
	{"extralight", WeightExtraLight},
	{"ultralight", WeightExtraLight},
	{"semilight", WeightSemiLight},
	{"black", WeightBlack},
	{"heavy", WeightBlack},
	{"bold", WeightBold},
	{"medium", WeightMedium},
	{"light", WeightLight},
	{"thin", WeightThin},
	{"hairline", WeightThin},
	{"regular", WeightNormal},
	{"book", WeightNormal},
	{"roman", WeightNormal},
}

// GuessStyleAndWeight infers style and weight from a font name or file
// name. Longer patterns win over their substrings, "extrabold" over
// "bold". Unrecognized names count as regular.
func GuessStyleAndWeight(fname string) (Style, Weight) {
	fname = NormalizeFontname(fname)
	style, weight := StyleNormal, WeightNormal
	if strings.Contains(fname, "italic") || strings.Contains(fname, "ital") {
		style = StyleItalic
	} else if strings.Contains(fname, "oblique") {
		style = StyleOblique
	}
	for _, p := range weightPatterns {
		if strings.Contains(fname, p.pattern) {
			weight = p.weight
			break
		}
	}
	return style, weight
}

// guessStretch infers the width class from a font name. Unrecognized
// names count as normal width.
func guessStretch(fname string) Stretch {
	fname = NormalizeFontname(fname)
	switch {
	case strings.Contains(fname, "ultracondensed"):
		return StretchUltraCondensed
	case strings.Contains(fname, "extracondensed"):
		return StretchExtraCondensed
	case strings.Contains(fname, "semicondensed"):
		return StretchSemiCondensed
	case strings.Contains(fname, "condensed"), strings.Contains(fname, "narrow"):
		return StretchCondensed
	case strings.Contains(fname, "ultraexpanded"):
		return StretchUltraExpanded
	case strings.Contains(fname, "extraexpanded"):
		return StretchExtraExpanded
	case strings.Contains(fname, "semiexpanded"):
		return StretchSemiExpanded
	case strings.Contains(fname, "expanded"), strings.Contains(fname, "extended"),
		strings.Contains(fname, "wide"):
		return StretchExpanded
	}
	return StretchNormal
}

// MatchConfidence is a heuristic score for how well a font matches a
// descriptive pattern.
type MatchConfidence int

const (
	NoConfidence      MatchConfidence = 0
	LowConfidence     MatchConfidence = 2
	HighConfidence    MatchConfidence = 3
	PerfectConfidence MatchConfidence = 4
)

// MatchStyle scores how well a font name matches a style.
func MatchStyle(fname string, style Style) MatchConfidence {
	guess, _ := GuessStyleAndWeight(fname)
	switch {
	case guess == style:
		return PerfectConfidence
	case guess == StyleItalic && style == StyleOblique:
		return HighConfidence
	case guess == StyleOblique && style == StyleItalic:
		return HighConfidence
	case guess == StyleNormal:
		return LowConfidence
	}
	return NoConfidence
}

// MatchWeight scores how well a font name matches a weight.
func MatchWeight(fname string, weight Weight) MatchConfidence {
	_, guess := GuessStyleAndWeight(fname)
	switch {
	case guess == weight:
		return PerfectConfidence
	case guess > weight && guess-weight <= 100:
		return HighConfidence
	case weight > guess && weight-guess <= 100:
		return HighConfidence
	case guess == WeightNormal:
		return LowConfidence
	}
	return NoConfidence
}
