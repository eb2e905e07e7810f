package format

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/npillmayer/satz/core"
)

// NumberSubstitutionMethod selects when ASCII digits in the text are
// replaced by the digit shapes of the locale.
type NumberSubstitutionMethod uint8

const (
	SubstFromCulture NumberSubstitutionMethod = iota // what the locale conventionally does
	SubstContextual                                  // substitute digits adjoining right-to-left text
	SubstNone                                        // keep ASCII digits
	SubstNational                                    // always use the locale's national digits
	SubstTraditional                                 // always use the locale's traditional digits
)

func (m NumberSubstitutionMethod) String() string {
	switch m {
	case SubstFromCulture:
		return "from-culture"
	case SubstContextual:
		return "contextual"
	case SubstNone:
		return "none"
	case SubstNational:
		return "national"
	case SubstTraditional:
		return "traditional"
	}
	return "broken number substitution method"
}

// nationalDigits maps a language subtag to the zero digit of the
// script's decimal digit block. Digits 1…9 follow contiguously in every
// block listed here.
var nationalDigits = map[string]rune{
	"ar": 0x0660, // arabic-indic
	"fa": 0x06F0, // extended arabic-indic
	"ur": 0x06F0,
	"ps": 0x06F0,
	"ku": 0x0660,
	"hi": 0x0966, // devanagari
	"mr": 0x0966,
	"ne": 0x0966,
	"bn": 0x09E6, // bengali
	"as": 0x09E6,
	"pa": 0x0A66, // gurmukhi
	"gu": 0x0AE6, // gujarati
	"or": 0x0B66, // oriya
	"ta": 0x0BE6, // tamil
	"te": 0x0C66, // telugu
	"kn": 0x0CE6, // kannada
	"ml": 0x0D66, // malayalam
	"th": 0x0E50, // thai
	"lo": 0x0ED0, // lao
	"bo": 0x0F20, // tibetan
	"my": 0x1040, // myanmar
	"km": 0x17E0, // khmer
}

// nationalScripts maps a language subtag to the ISO 15924 code of the
// script its national digits belong to.
var nationalScripts = map[string]string{
	"ar": "Arab",
	"fa": "Arab",
	"ur": "Arab",
	"ps": "Arab",
	"ku": "Arab",
	"hi": "Deva",
	"mr": "Deva",
	"ne": "Deva",
	"bn": "Beng",
	"as": "Beng",
	"pa": "Guru",
	"gu": "Gujr",
	"or": "Orya",
	"ta": "Taml",
	"te": "Telu",
	"kn": "Knda",
	"ml": "Mlym",
	"th": "Thai",
	"lo": "Laoo",
	"bo": "Tibt",
	"my": "Mymr",
	"km": "Khmr",
}

// NumberSubstitution is a digit substitution policy for a text range.
// During analysis the engine partitions the paragraph into substitution
// runs; the shaper then replaces ASCII digits according to the resolved
// method before the runs reach the font.
type NumberSubstitution struct {
	method   NumberSubstitutionMethod
	locale   string
	lang     string
	override bool
	zero     rune
}

// NewNumberSubstitution creates a substitution policy for a locale.
// With ignoreUserOverride set, the locale's defaults are followed even
// when the host environment carries per-user digit preferences.
func NewNumberSubstitution(method NumberSubstitutionMethod, locale string,
	ignoreUserOverride bool) (*NumberSubstitution, error) {
	//
	if method > SubstTraditional {
		return nil, core.Error(core.EINVALID, "unknown number substitution method %d", method)
	}
	n := &NumberSubstitution{
		method:   method,
		locale:   locale,
		override: ignoreUserOverride,
	}
	lang := locale
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	n.lang = strings.ToLower(lang)
	n.zero = nationalDigits[n.lang]
	return n, nil
}

// Method returns the substitution method as constructed.
func (n *NumberSubstitution) Method() NumberSubstitutionMethod { return n.method }

// Locale returns the locale the policy was created for.
func (n *NumberSubstitution) Locale() string { return n.locale }

// IgnoresUserOverride returns true if per-user digit preferences of the
// host environment are to be ignored.
func (n *NumberSubstitution) IgnoresUserOverride() bool { return n.override }

// Resolve narrows the method down to one of None, Contextual, National
// or Traditional. SubstFromCulture resolves to the locale's convention:
// contextual substitution for locales with national digit shapes, no
// substitution otherwise. A nil policy resolves to SubstNone.
func (n *NumberSubstitution) Resolve() NumberSubstitutionMethod {
	if n == nil {
		return SubstNone
	}
	if n.method != SubstFromCulture {
		if n.zero == 0 && n.method != SubstNone {
			return SubstNone
		}
		return n.method
	}
	if n.zero != 0 {
		return SubstContextual
	}
	return SubstNone
}

// SubstitutesIn reports whether the policy replaces digits within text
// of the given script. The explicit methods substitute everywhere;
// contextual substitution follows the script of the surrounding text,
// so digits embedded in Latin text keep their ASCII shapes.
func (n *NumberSubstitution) SubstitutesIn(s language.Script) bool {
	switch n.Resolve() {
	case SubstNational, SubstTraditional:
		return true
	case SubstContextual:
		iso, ok := nationalScripts[n.lang]
		return ok && s.String() == iso
	}
	return false
}

// Digit substitutes a single character: ASCII digits map to the
// locale's digit shapes, everything else passes through unchanged. For
// policies resolving to SubstNone the mapping is the identity; for
// SubstContextual the caller decides from the surrounding text whether
// to consult Digit at all.
func (n *NumberSubstitution) Digit(r rune) rune {
	if n == nil || n.zero == 0 || r < '0' || r > '9' || n.Resolve() == SubstNone {
		return r
	}
	return n.zero + (r - '0')
}
