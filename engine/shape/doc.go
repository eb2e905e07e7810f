/*
Package shape turns analysed runs of text into positioned glyphs.

Shaping is the step from characters to glyphs: ligature formation, mark
attachment, cursive joining and kerning, driven by the font's OpenType
layout tables. The package wraps the HarfBuzz port of the textlayout
project and translates between the engine's view of a run (UTF-16 window,
embedding level, script, locale, feature list) and HarfBuzz buffers.

Output comes back in device-independent pixels, scaled from the face's
design units by the requested em size, together with a cluster map that
ties every source code unit to the first glyph of its cluster.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package shape

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'satz.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("satz.glyphs")
}
