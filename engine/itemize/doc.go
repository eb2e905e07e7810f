/*
Package itemize splits a paragraph into runs of uniform script and
directionality.

Itemization is the first analysis pass of the layout pipeline: the
paragraph is consumed through a lazy windowed source and partitioned
into bidi runs (resolved embedding levels per the Unicode Bidirectional
Algorithm), script runs (Unicode script property, with combining marks
and common characters attached to the script run in progress) and
number-substitution runs. The layout intersects these partitions with
its attribute ranges to form the runs handed to the shaper.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package itemize

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'satz.text'.
func tracer() tracing.Trace {
	return tracing.Select("satz.text")
}
