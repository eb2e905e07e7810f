/*
Package inline defines the protocol for host-supplied inline objects.

An inline object occupies a single position in a paragraph and is treated
by the layout as one non-splittable cluster: an image, a widget, or the
trimming sign appended to an ellipsed line. The object reports its
metrics and break conditions to the layout and is handed back the draw
origin when the paragraph is rendered.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package inline
