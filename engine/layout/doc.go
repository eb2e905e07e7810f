/*
Package layout is the paragraph engine: it turns a text, a format and a
font collection into positioned lines of glyphs.

A Layout is constructed once per paragraph and then queried. Construction
is cheap; the expensive passes run lazily when a query needs them and
their results are cached. The first pass analyses the text (bidi levels,
scripts, number substitution), resolves fonts and shapes every run into
glyph clusters. The second pass breaks the clusters into lines, aligns
and, if requested, justifies or trims them. Metric queries, hit tests and
drawing all work off the cached line list.

Character ranges address the text in UTF-16 code units, the unit of the
cluster maps and of all reported metrics. Attributes like font family,
size, underline or a drawing effect apply to ranges and may overlap
freely; the layout keeps one interval map per attribute.

Mutating an attribute invalidates the affected caches and the next query
rebuilds them. During a call to Draw the layout is locked: renderer
callbacks may query metrics but calls that would mutate the layout fail.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package layout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'satz.layout'.
func tracer() tracing.Trace {
	return tracing.Select("satz.layout")
}
