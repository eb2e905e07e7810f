// Package dip implements device-independent pixel geometry.
//
/*
BSD License

Copyright (c) 2017–21, Norbert Pillmayer (norbert@pillmayer.com)

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
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.  */
package dip

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// All coordinates and lengths in this engine are device-independent pixels,
// i.e. 1/96 of an inch, stored as float32. Positive y points downward.
// This package collects the handful of geometric helpers shared by layout,
// metrics and hit-testing.

// Units, expressed in DIPs.
const (
	PX float32 = 1            // a device-independent pixel
	IN float32 = 96           // inch
	PT float32 = 96.0 / 72.0  // printer's point, 1/72 inch
	MM float32 = 96.0 / 25.4  // millimeters
	CM float32 = 960.0 / 25.4 // centimeters
)

// Infinity is used for layout boxes without wrapping or clipping.
// Comparisons with ≥ Infinity treat a dimension as unconstrained.
var Infinity = float32(math.Inf(1))

// IsInfinite is true for dimensions that denote an unconstrained extent.
func IsInfinite(d float32) bool {
	return math.IsInf(float64(d), 1)
}

// Point is a point in the layout plane.
type Point struct {
	X, Y float32
}

// Origin is origin
var Origin = Point{0, 0}

// Shift a point along a vector.
func (p *Point) Shift(vector Point) *Point {
	p.X += vector.X
	p.Y += vector.Y
	return p
}

// Rect is an axis-aligned rectangle in the layout plane.
type Rect struct {
	TopL, BotR Point
}

// Width returns the width of a rectangle, i.e. the difference between
// x-coordinates of bottom-right and top-left corner.
func (r Rect) Width() float32 {
	return r.BotR.X - r.TopL.X
}

// Height returns the height of a rectangle, i.e. the difference between
// y-coordinates of bottom-right and top-left corner.
func (r Rect) Height() float32 {
	return r.BotR.Y - r.TopL.Y
}

// Contains is true if (x,y) lies within the rectangle. Points on the
// top and left edge are inside, points on the bottom and right edge are not.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.TopL.X && x < r.BotR.X && y >= r.TopL.Y && y < r.BotR.Y
}

// Union returns the smallest rectangle enclosing r and s.
func (r Rect) Union(s Rect) Rect {
	return Rect{
		TopL: Point{Min(r.TopL.X, s.TopL.X), Min(r.TopL.Y, s.TopL.Y)},
		BotR: Point{Max(r.BotR.X, s.BotR.X), Max(r.BotR.Y, s.BotR.Y)},
	}
}

// ---------------------------------------------------------------------------

var dipPattern = regexp.MustCompile(`^([+\-]?[0-9]+(?:\.[0-9]+)?)(%|[a-z]{2})?$`)

// ParseDIP parses a string to return a length in DIPs. Syntax is CSS Unit.
// If a percentage value is given (`80%`), the second return value will be true.
func ParseDIP(s string) (float32, bool, error) {
	d := dipPattern.FindStringSubmatch(s)
	if len(d) < 2 {
		return 0, false, errors.New("format error parsing dimension")
	}
	scale := PX
	ispcnt := false
	if len(d) > 2 {
		switch d[2] {
		case "pt":
			scale = PT
		case "mm":
			scale = MM
		case "px", "":
			scale = PX
		case "cm":
			scale = CM
		case "in":
			scale = IN
		case "%":
			scale, ispcnt = 1, true
		default:
			return 0, false, errors.New("format error parsing dimension")
		}
	}
	n, err := strconv.ParseFloat(d[1], 32)
	if err != nil {
		return 0, false, errors.New("format error parsing dimension")
	}
	return float32(n) * scale, ispcnt, nil
}

// ---------------------------------------------------------------------------

// Min returns the smaller of two dimensions.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// Max returns the greater of two dimensions.
func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
