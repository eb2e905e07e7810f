/*
Package format holds paragraph and character formatting.

A Format carries the paragraph-level defaults of a text: font selection,
reading and flow direction, wrapping, alignment, trimming, line spacing
and tab stops. Character-level attributes are ranged over the text by the
layout and override the format's defaults. Typography feature sets and
number substitution complete the picture.

Formats are created with defaults matching plain left-to-right prose and
mutated through validated setters. A layout copies the format it is
created with, so later mutation of a format does not reach into existing
layouts.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package format

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'satz.format'.
func tracer() tracing.Trace {
	return tracing.Select("satz.format")
}
