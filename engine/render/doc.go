/*
Package render defines the protocol between a layout and its output.

Clients implement the Renderer interface; a layout's draw pass walks its
lines and calls back with glyph runs, underlines, strikethroughs and
inline objects, all positioned in device-independent pixels relative to
the draw origin. The renderer answers questions about the device space
(current transform, pixels per DIP, pixel snapping) once per pass.

The engine never rasterizes. What a renderer does with the callbacks,
whether it paints, records or measures, is its own business.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package render

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'satz.layout'.
func tracer() tracing.Trace {
	return tracing.Select("satz.layout")
}
