/*
Package font implements the font catalogue of the layout engine.

The catalogue side of text layout is a graph of small immutable objects:
a Collection owns font families, a Family owns fonts, a Font owns faces
(one per simulation combination), and a Face finally gives access to
glyphs and metrics. Font binaries enter the catalogue through streams,
which are produced by loaders. Loaders are client code; they register
with a Factory and are identified by type-fingerprinted keys, so that
keys of unrelated loaders cannot be confused.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'satz.font'
func tracer() tracing.Trace {
	return tracing.Select("satz.font")
}
