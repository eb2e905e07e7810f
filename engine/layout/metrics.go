package layout

import (
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/render"
	"github.com/npillmayer/satz/engine/shape"
)

// ClusterMetrics describes one cluster: its natural advance width, the
// code units it covers and its breaking properties. Tab clusters report
// their shaped width; the resolved width depends on the line position.
type ClusterMetrics struct {
	Width            float32
	Length           uint16
	CanWrapLineAfter bool
	IsWhitespace     bool
	IsNewline        bool
	IsSoftHyphen     bool
	IsRightToLeft    bool
}

// LineMetrics describes one formatted line. The length fields count
// code units; the sum of Length over all lines is the paragraph length.
type LineMetrics struct {
	Length                   uint32
	TrailingWhitespaceLength uint32
	NewlineLength            uint32
	Height                   float32
	Baseline                 float32
	IsTrimmed                bool
}

// TextMetrics is the bounding information of the formatted text inside
// its layout box.
type TextMetrics struct {
	Left                             float32
	Top                              float32
	Width                            float32
	WidthIncludingTrailingWhitespace float32
	Height                           float32
	LayoutWidth                      float32
	LayoutHeight                     float32
	MaxBidiDepth                     uint32
	LineCount                        uint32
}

// OverhangMetrics reports how far ink reaches beyond the layout box on
// each side. Positive values lie outside the box.
type OverhangMetrics struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

// ClusterMetrics returns the metrics of every cluster of the paragraph
// in logical order.
func (l *Layout) ClusterMetrics() ([]ClusterMetrics, error) {
	if err := l.ensureAnalysed(); err != nil {
		return nil, err
	}
	out := make([]ClusterMetrics, len(l.clusters))
	for i := range l.clusters {
		c := &l.clusters[i]
		out[i] = ClusterMetrics{
			Width:            c.width,
			Length:           uint16(c.Range.Length),
			CanWrapLineAfter: c.flags&shape.ClusterCanWrapAfter != 0,
			IsWhitespace:     c.flags&shape.ClusterWhitespace != 0,
			IsNewline:        c.flags&shape.ClusterNewline != 0,
			IsSoftHyphen:     c.flags&shape.ClusterSoftHyphen != 0,
			IsRightToLeft:    c.flags&shape.ClusterRightToLeft != 0,
		}
	}
	return out, nil
}

// LineMetrics returns the metrics of every line, first to last.
func (l *Layout) LineMetrics() ([]LineMetrics, error) {
	if err := l.ensureFormatted(); err != nil {
		return nil, err
	}
	out := make([]LineMetrics, len(l.lines))
	for i := range l.lines {
		ln := &l.lines[i]
		out[i] = LineMetrics{
			Length:                   ln.Range.Length,
			TrailingWhitespaceLength: ln.trailingWS,
			NewlineLength:            ln.newline,
			Height:                   ln.height,
			Baseline:                 ln.baseline,
			IsTrimmed:                ln.trimmed,
		}
	}
	return out, nil
}

// Metrics returns the overall extent of the formatted text.
func (l *Layout) Metrics() (TextMetrics, error) {
	if err := l.ensureFormatted(); err != nil {
		return TextMetrics{}, err
	}
	m := TextMetrics{
		LayoutWidth:  l.maxW,
		LayoutHeight: l.maxH,
		MaxBidiDepth: uint32(l.analysis.MaxLevel),
		LineCount:    uint32(len(l.lines)),
	}
	first := true
	for i := range l.lines {
		ln := &l.lines[i]
		left := ln.x + ln.contentLeft
		if first || left < m.Left {
			m.Left = left
		}
		if first || ln.y < m.Top {
			m.Top = ln.y
		}
		if ln.width > m.Width {
			m.Width = ln.width
		}
		if ln.fullWidth > m.WidthIncludingTrailingWhitespace {
			m.WidthIncludingTrailingWhitespace = ln.fullWidth
		}
		m.Height += ln.height
		first = false
	}
	return m, nil
}

// OverhangMetrics reports ink extents relative to the layout box,
// including the overhangs embedded objects declare. An unconstrained
// axis never overhangs.
func (l *Layout) OverhangMetrics() (OverhangMetrics, error) {
	if err := l.ensureFormatted(); err != nil {
		return OverhangMetrics{}, err
	}
	var inkL, inkT, inkR, inkB float32
	first := true
	extend := func(left, top, right, bottom float32) {
		if first || left < inkL {
			inkL = left
		}
		if first || top < inkT {
			inkT = top
		}
		if first || right > inkR {
			inkR = right
		}
		if first || bottom > inkB {
			inkB = bottom
		}
		first = false
	}
	for i := range l.lines {
		ln := &l.lines[i]
		extend(ln.x, ln.y, ln.x+ln.fullWidth, ln.y+ln.height)
		for _, ci := range ln.visual {
			run := &l.runs[l.clusters[ci].run]
			if run.object == nil {
				continue
			}
			var ov inline.Overhang
			err := render.Callback("inline object overhang", func() error {
				var e error
				ov, e = run.object.OverhangMetrics()
				return e
			})
			if err != nil {
				return OverhangMetrics{}, err
			}
			x := ln.x + ln.xs[ci-ln.cfrom]
			top := ln.y + ln.baseline - run.objMetrics.Baseline
			extend(x-ov.Left, top-ov.Top,
				x+run.objMetrics.Width+ov.Right, top+run.objMetrics.Height+ov.Bottom)
		}
	}
	boxW, boxH := l.maxW, l.maxH
	if !finite(boxW) {
		boxW = inkR
	}
	if !finite(boxH) {
		boxH = inkB
	}
	return OverhangMetrics{
		Left:   -inkL,
		Top:    -inkT,
		Right:  inkR - boxW,
		Bottom: inkB - boxH,
	}, nil
}

// DetermineMinWidth returns the smallest layout width at which no line
// ever needs an emergency break: the width of the widest unbreakable
// cluster sequence.
func (l *Layout) DetermineMinWidth() (float32, error) {
	if err := l.ensureAnalysed(); err != nil {
		return 0, err
	}
	var min, seg float32
	for i := range l.clusters {
		c := &l.clusters[i]
		ws := c.flags&shape.ClusterWhitespace != 0
		if !ws {
			seg += c.width
		}
		if ws || c.flags&shape.ClusterCanWrapAfter != 0 || c.mandatory {
			if seg > min {
				min = seg
			}
			seg = 0
		}
	}
	if seg > min {
		min = seg
	}
	return min, nil
}
