package layout

import (
	"math"

	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/text"
)

// HitTestMetrics describes the geometry of a caret position or of one
// visual rectangle of a text span. Positions inside a cluster snap to
// the cluster's edges; clusters hidden by trimming collapse onto the
// trimming sign with width zero.
type HitTestMetrics struct {
	TextPosition uint32
	Length       uint32
	Left         float32
	Top          float32
	Width        float32
	Height       float32
	BidiLevel    uint32
	IsText       bool
	IsTrimmed    bool
}

// HitTestPoint maps a point in layout coordinates to the cluster under
// it. isTrailing tells which caret side of the cluster the point is
// closer to, in reading order; isInside is false when the point had to
// be clamped onto the nearest line or cluster.
func (l *Layout) HitTestPoint(x, y float32) (m HitTestMetrics, isTrailing, isInside bool, err error) {
	if err = l.ensureFormatted(); err != nil {
		return HitTestMetrics{}, false, false, err
	}
	li, insideY := l.lineAt(y)
	ln := &l.lines[li]
	lx := x - ln.x
	insideX := lx >= 0 && lx <= ln.fullWidth
	if len(ln.visual) == 0 {
		return l.emptyLineMetrics(ln), false, insideY && insideX, nil
	}
	hit := -1
	for _, ci := range ln.visual {
		vi := ci - ln.cfrom
		if lx < ln.xs[vi]+ln.widths[vi] {
			hit = ci
			break
		}
	}
	if hit < 0 {
		hit = ln.visual[len(ln.visual)-1]
	}
	vi := hit - ln.cfrom
	rtl := l.runs[l.clusters[hit].run].rightToLeft()
	mid := ln.xs[vi] + ln.widths[vi]/2
	isTrailing = ln.widths[vi] > 0 && (lx > mid != rtl)
	return l.clusterHitMetrics(ln, hit), isTrailing, insideY && insideX, nil
}

// HitTestTextPosition returns the caret point for a text position and
// the metrics of the cluster carrying it. isTrailing selects the caret
// after the cluster in reading order. Positions beyond the text map to
// the end of the last line.
func (l *Layout) HitTestTextPosition(pos uint32, isTrailing bool) (x, y float32, m HitTestMetrics, err error) {
	if err = l.ensureFormatted(); err != nil {
		return 0, 0, HitTestMetrics{}, err
	}
	if pos >= uint32(l.buf.Len()) {
		ln := &l.lines[len(l.lines)-1]
		if ln.cfrom == ln.cto {
			return ln.x, ln.y, l.emptyLineMetrics(ln), nil
		}
		ci := ln.cto - 1
		return l.caretX(ln, ci, true), ln.y, l.clusterHitMetrics(ln, ci), nil
	}
	ci := l.unitCl[pos]
	ln := l.lineOf(ci)
	return l.caretX(ln, ci, isTrailing), ln.y, l.clusterHitMetrics(ln, ci), nil
}

// HitTestTextRange returns one metrics entry per visual rectangle the
// text span covers. Spans crossing line ends or direction boundaries
// produce several rectangles; parts hidden by trimming yield a
// zero-width rectangle at the trimming sign.
func (l *Layout) HitTestTextRange(start, length uint32) ([]HitTestMetrics, error) {
	if err := l.ensureFormatted(); err != nil {
		return nil, err
	}
	r := text.MakeRange(start, length).Clamp(uint32(l.buf.Len()))
	if r.IsEmpty() {
		return nil, nil
	}
	var rects []HitTestMetrics
	for li := range l.lines {
		ln := &l.lines[li]
		if ln.Range.IsEmpty() || ln.Range.End() <= r.Start || ln.Range.Start >= r.End() {
			continue
		}
		rects = l.lineRangeRects(rects, ln, r)
	}
	return rects, nil
}

// lineRangeRects appends the rectangles of r's intersection with one
// line. Visually and logically adjacent clusters of equal level merge
// into a single rectangle.
func (l *Layout) lineRangeRects(rects []HitTestMetrics, ln *line, r text.Range) []HitTestMetrics {
	var cur *HitTestMetrics
	for _, ci := range ln.visual {
		c := &l.clusters[ci]
		if c.Range.Start >= r.End() || c.Range.End() <= r.Start {
			cur = nil
			continue
		}
		vi := ci - ln.cfrom
		run := &l.runs[c.run]
		left := ln.x + ln.xs[vi]
		width := ln.widths[vi]
		is, ie := c.Range.Start, c.Range.End()
		if r.Start > is {
			is = r.Start
		}
		if r.End() < ie {
			ie = r.End()
		}
		isText := run.object == nil
		level := uint32(run.level)
		if cur != nil && cur.IsText == isText && cur.BidiLevel == level &&
			left == cur.Left+cur.Width &&
			(is == cur.TextPosition+cur.Length || ie == cur.TextPosition) {
			cur.Width += width
			if is < cur.TextPosition {
				cur.TextPosition = is
			}
			cur.Length += ie - is
			continue
		}
		rects = append(rects, HitTestMetrics{
			TextPosition: is,
			Length:       ie - is,
			Left:         left,
			Top:          ln.y,
			Width:        width,
			Height:       ln.height,
			BidiLevel:    level,
			IsText:       isText,
		})
		cur = &rects[len(rects)-1]
	}
	if ln.hidden != nil {
		var from, to uint32
		found := false
		for ci := ln.cfrom; ci < ln.cto; ci++ {
			if !ln.hidden[ci-ln.cfrom] {
				continue
			}
			c := &l.clusters[ci]
			if c.Range.Start >= r.End() || c.Range.End() <= r.Start {
				continue
			}
			is, ie := c.Range.Start, c.Range.End()
			if r.Start > is {
				is = r.Start
			}
			if r.End() < ie {
				ie = r.End()
			}
			if !found {
				from, to, found = is, ie, true
				continue
			}
			if is < from {
				from = is
			}
			if ie > to {
				to = ie
			}
		}
		if found {
			rects = append(rects, HitTestMetrics{
				TextPosition: from,
				Length:       to - from,
				Left:         ln.x + ln.signX,
				Top:          ln.y,
				Height:       ln.height,
				IsTrimmed:    true,
			})
		}
	}
	return rects
}

// lineAt finds the line containing y, or the nearest one when y lies
// outside every line box.
func (l *Layout) lineAt(y float32) (int, bool) {
	best, bestDist := 0, float32(math.Inf(1))
	for i := range l.lines {
		ln := &l.lines[i]
		switch {
		case y < ln.y:
			if d := ln.y - y; d < bestDist {
				best, bestDist = i, d
			}
		case y >= ln.y+ln.height:
			if d := y - ln.y - ln.height; d < bestDist {
				best, bestDist = i, d
			}
		default:
			return i, true
		}
	}
	return best, false
}

func (l *Layout) lineOf(ci int) *line {
	for i := range l.lines {
		ln := &l.lines[i]
		if ci >= ln.cfrom && ci < ln.cto {
			return ln
		}
	}
	return &l.lines[len(l.lines)-1]
}

// caretX returns the x coordinate of the caret before (leading) or
// after (trailing) a cluster, in reading order.
func (l *Layout) caretX(ln *line, ci int, trailing bool) float32 {
	vi := ci - ln.cfrom
	if ln.hidden != nil && ln.hidden[vi] {
		return ln.x + ln.signX
	}
	lead := ln.x + ln.xs[vi]
	trail := lead + ln.widths[vi]
	if l.runs[l.clusters[ci].run].rightToLeft() {
		lead, trail = trail, lead
	}
	if trailing {
		return trail
	}
	return lead
}

func (l *Layout) clusterHitMetrics(ln *line, ci int) HitTestMetrics {
	c := &l.clusters[ci]
	vi := ci - ln.cfrom
	run := &l.runs[c.run]
	m := HitTestMetrics{
		TextPosition: c.Range.Start,
		Length:       c.Range.Length,
		Left:         ln.x + ln.xs[vi],
		Top:          ln.y,
		Width:        ln.widths[vi],
		Height:       ln.height,
		BidiLevel:    uint32(run.level),
		IsText:       run.object == nil,
	}
	if ln.hidden != nil && ln.hidden[vi] {
		m.Left = ln.x + ln.signX
		m.Width = 0
		m.IsTrimmed = true
	}
	return m
}

// emptyLineMetrics is the caret geometry of a line without clusters:
// the empty final line after a trailing newline, or an empty paragraph.
func (l *Layout) emptyLineMetrics(ln *line) HitTestMetrics {
	var level uint32
	if l.fmt.ReadingDirection() == format.RightToLeft {
		level = 1
	}
	return HitTestMetrics{
		TextPosition: ln.Range.Start,
		Left:         ln.x,
		Top:          ln.y,
		Height:       ln.height,
		BidiLevel:    level,
	}
}
