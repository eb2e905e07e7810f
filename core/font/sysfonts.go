package font

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/satz/core"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// The embedded Go fonts back the guaranteed fallback: every factory can
// hand out a usable font even on a system without any installed fonts.

type embeddedFontKey string

type embeddedFontLoader struct{}

var embeddedFonts = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomono":       gomono.TTF,
}

// embeddedOrder fixes the enumeration order of the embedded fonts, maps
// iterate randomly.
var embeddedOrder = []string{"goregular", "gobold", "goitalic", "gobolditalic", "gomono"}

func (embeddedFontLoader) OpenStream(key []byte) (Stream, error) {
	ttf, ok := embeddedFonts[string(key)]
	if !ok {
		return nil, core.Error(core.EMISSING, "no embedded font '%s'", string(key))
	}
	return &MemoryStream{data: ttf}, nil
}

// SystemCollection returns the collection of fonts installed on the
// system, built on first use and cached. The embedded Go fonts are
// appended at the end, so the collection is never empty and character
// mapping always finds a last-resort candidate.
func (f *Factory) SystemCollection() (*Collection, error) {
	f.sysOnce.Do(func() {
		c := newCollection(f)
		paths := findfont.List()
		sort.Strings(paths)
		for _, path := range paths {
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ttf", ".otf", ".ttc", ".otc":
				break
			default:
				continue
			}
			file, err := f.LocalFileReference(path)
			if err != nil {
				continue
			}
			c.addFile(file)
		}
		for _, name := range embeddedOrder {
			file, err := f.FileReference(f.embHandle, embeddedFontKey(name))
			if err != nil {
				continue
			}
			c.addFile(file)
		}
		tracer().Infof("system font collection has %d families from %d files",
			c.NumFamilies(), len(paths))
		f.system = c
	})
	return f.system, f.sysErr
}

// FallbackFont returns a font that is always available, independent of
// installed system fonts.
func (f *Factory) FallbackFont() *Font {
	c, err := f.SystemCollection()
	if err == nil {
		if fam, ok := c.FamilyByName("Go"); ok {
			if font, err := fam.FirstMatchingFont(WeightNormal, StretchNormal, StyleNormal); err == nil {
				return font
			}
		}
	}
	panic("fallback font unavailable, embedded fonts broken")
}
