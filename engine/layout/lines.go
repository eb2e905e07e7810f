package layout

import (
	"math"

	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/render"
	"github.com/npillmayer/satz/engine/shape"
	"github.com/npillmayer/satz/engine/text"
)

// line is one formatted line: a span of clusters with resolved widths
// and visual positions. widths, hidden and xs are indexed by cluster
// index minus cfrom.
type line struct {
	cfrom, cto int        // cluster span, half-open
	Range      text.Range // code units incl trailing whitespace and newline
	width      float32    // visible width excluding trailing whitespace
	fullWidth  float32    // visible width including trailing whitespace
	trailingWS uint32     // code units of trailing whitespace incl the newline
	newline    uint32     // code units of the trailing newline sequence
	height     float32
	baseline   float32
	x, y        float32 // top-left corner of the line box
	contentLeft float32 // visual left edge of the content box, relative to x
	trimmed     bool
	mandatory   bool      // the line ends with a forced break
	widths     []float32 // resolved cluster widths (tabs, justification)
	hidden     []bool    // clusters removed by trimming, nil when untrimmed
	xs         []float32 // visual left edge per cluster, relative to x
	visual     []int     // drawn cluster indices in visual order
	sign       inline.Object
	signW      float32
	signX      float32 // visual left edge of the trimming sign, relative to x
}

// lineSpan is the breaker's raw output before geometry is attached.
type lineSpan struct {
	from, to  int
	mandatory bool
	widths    []float32
}

// ensureFormatted breaks the analysed clusters into positioned lines.
// It is a no-op when the line cache is valid.
func (l *Layout) ensureFormatted() error {
	if l.state >= formatted {
		return nil
	}
	if err := l.ensureAnalysed(); err != nil {
		return err
	}
	if err := l.breakLines(); err != nil {
		l.lines = nil
		return err
	}
	l.state = formatted
	return nil
}

func (l *Layout) breakLines() error {
	spans := l.lineSpans()
	l.lines = make([]line, 0, len(spans))
	for _, s := range spans {
		l.lines = append(l.lines, l.buildLine(s))
	}
	if err := l.trimLines(); err != nil {
		return err
	}
	l.justifyLines()
	for i := range l.lines {
		l.positionClusters(&l.lines[i])
	}
	l.placeLines()
	tracer().Debugf("formatted layout into %d lines", len(l.lines))
	return nil
}

// lineSpans sweeps the clusters greedily into lines. A trailing
// mandatory break, and likewise an empty paragraph, yields an empty
// final line.
func (l *Layout) lineSpans() []lineSpan {
	mode := l.fmt.WordWrapping()
	n := len(l.clusters)
	if mode == format.Wrap && l.maxW == 0 && n > 0 {
		mode = format.EmergencyBreak
	}
	var spans []lineSpan
	cs := 0
	for cs < n {
		span := l.fillLine(cs, mode)
		spans = append(spans, span)
		cs = span.to
	}
	if n == 0 || l.clusters[n-1].mandatory {
		spans = append(spans, lineSpan{from: n, to: n})
	}
	return spans
}

// fillLine accumulates clusters from cs onward until the line is full
// or a break is forced, and decides where the line ends. Whitespace
// never triggers overflow, it hangs beyond the layout edge.
func (l *Layout) fillLine(cs int, mode format.WordWrapping) lineSpan {
	n := len(l.clusters)
	tabStop := l.fmt.IncrementalTabStop()
	limit := l.maxW
	bounded := mode != format.NoWrap && !math.IsInf(float64(limit), 1)

	widths := make([]float32, 0, n-cs)
	x := float32(0)       // running width incl whitespace
	content := float32(0) // running width up to the last non-whitespace cluster
	lastOpp := -1

	for i := cs; i < n; i++ {
		c := &l.clusters[i]
		w := c.width
		if c.tab {
			w = nextTab(x, tabStop)
		}
		widths = append(widths, w)
		x += w
		if c.flags&shape.ClusterWhitespace == 0 {
			content = x
		}
		if c.mandatory {
			return lineSpan{from: cs, to: i + 1, mandatory: true, widths: widths}
		}
		if bounded && content > limit && i > cs {
			if lastOpp >= cs {
				return lineSpan{from: cs, to: lastOpp + 1, widths: widths[:lastOpp+1-cs]}
			}
			if mode == format.EmergencyBreak || mode == format.CharacterBreak {
				return lineSpan{from: cs, to: i, widths: widths[:i-cs]}
			}
			// wrap and whole-word overflow until the next opportunity
		}
		if c.flags&shape.ClusterCanWrapAfter != 0 || mode == format.CharacterBreak {
			lastOpp = i
		}
	}
	return lineSpan{from: cs, to: n, widths: widths}
}

// nextTab returns the advance from x to the next tab stop.
func nextTab(x, stop float32) float32 {
	if stop <= 0 {
		return 0
	}
	k := float32(math.Floor(float64(x/stop))) + 1
	return k*stop - x
}

// buildLine attaches unit counts and vertical metrics to a line span.
func (l *Layout) buildLine(s lineSpan) line {
	ln := line{cfrom: s.from, cto: s.to, mandatory: s.mandatory, widths: s.widths}
	if s.from < s.to {
		from := l.clusters[s.from].Range.Start
		ln.Range = text.MakeRange(from, l.clusters[s.to-1].Range.End()-from)
	} else {
		ln.Range = text.MakeRange(uint32(l.buf.Len()), 0)
	}
	wsWidth := float32(0)
	for i := s.to - 1; i >= s.from; i-- {
		c := &l.clusters[i]
		if c.flags&shape.ClusterWhitespace == 0 {
			break
		}
		ln.trailingWS += c.Range.Length
		if c.flags&shape.ClusterNewline != 0 {
			ln.newline += c.Range.Length
		}
		wsWidth += s.widths[i-s.from]
	}
	for _, w := range s.widths {
		ln.fullWidth += w
	}
	ln.width = ln.fullWidth - wsWidth
	l.lineHeight(&ln)
	return ln
}

// lineHeight derives height and baseline per the spacing policy. With
// default spacing the tallest run of the line wins; empty lines fall
// back to the font the paragraph defaults resolve to.
func (l *Layout) lineHeight(ln *line) {
	spacing := l.fmt.LineSpacing()
	if spacing.Method == format.SpacingUniform {
		ln.height, ln.baseline = spacing.Height, spacing.Baseline
		return
	}
	var asc, desc float32
	seen := false
	for i := ln.cfrom; i < ln.cto; i++ {
		run := &l.runs[l.clusters[i].run]
		var a, d float32
		if run.object != nil {
			a = run.objMetrics.Baseline
			d = run.objMetrics.Height - run.objMetrics.Baseline
		} else {
			a, d = runExtent(run)
		}
		if a > asc {
			asc = a
		}
		if d > desc {
			desc = d
		}
		seen = true
	}
	if !seen {
		asc, desc = l.defaultExtent(ln.Range.Start)
	}
	ln.height = asc + desc
	ln.baseline = asc
	if spacing.Method == format.SpacingProportional {
		ln.height *= spacing.Height
		ln.baseline *= spacing.Baseline
	}
}

// runExtent returns a run's ascent and descent in DIP. The line gap
// counts below the descender.
func runExtent(run *shapedRun) (asc, desc float32) {
	m := run.font.Metrics()
	scale := run.size / float32(m.UnitsPerEm)
	return float32(m.Ascent) * scale, float32(m.Descent+m.LineGap) * scale
}

// defaultExtent resolves the font the attributes at pos select and
// returns its vertical extent. Lines without any cluster take their
// height from here.
func (l *Layout) defaultExtent(pos uint32) (asc, desc float32) {
	famV, _ := l.attrs.family.get(pos)
	weightV, _ := l.attrs.weight.get(pos)
	stretchV, _ := l.attrs.stretch.get(pos)
	styleV, _ := l.attrs.style.get(pos)
	sizeV, _ := l.attrs.size.get(pos)
	fnt, err := l.fallbackFont(font.Selector{
		Family:  famV.(string),
		Weight:  weightV.(font.Weight),
		Stretch: stretchV.(font.Stretch),
		Style:   styleV.(font.Style),
	})
	if err != nil {
		return 0, 0
	}
	m := fnt.Metrics()
	scale := sizeV.(float32) / float32(m.UnitsPerEm)
	return float32(m.Ascent) * scale, float32(m.Descent+m.LineGap) * scale
}

// trimLines shortens lines which still overflow the layout width after
// wrapping, when the format carries a trimming policy.
func (l *Layout) trimLines() error {
	trim, sign := l.fmt.Trimming()
	if trim.Granularity == format.TrimNone || !finite(l.maxW) {
		return nil
	}
	var signW float32
	if sign != nil {
		var m inline.Metrics
		err := render.Callback("trimming sign metrics", func() error {
			var e error
			m, e = sign.Metrics()
			return e
		})
		if err != nil {
			return err
		}
		signW = m.Width
	}
	for i := range l.lines {
		ln := &l.lines[i]
		if ln.width <= l.maxW || ln.cfrom == ln.cto {
			continue
		}
		l.trimLine(ln, trim, sign, signW)
	}
	return nil
}

// trimLine hides trailing clusters of an overflowing line until the
// kept part plus the trimming sign fits. With a delimiter, the tail
// after the Nth-from-end occurrence survives and the middle is hidden.
func (l *Layout) trimLine(ln *line, trim format.Trimming, sign inline.Object, signW float32) {
	ln.trimmed = true
	ln.sign = sign
	ln.signW = signW
	ln.hidden = make([]bool, ln.cto-ln.cfrom)

	tail := ln.cto
	tailW := float32(0)
	if trim.Delimiter != 0 && trim.DelimiterCount > 0 {
		count := uint32(0)
		for i := ln.cto - 1; i >= ln.cfrom; i-- {
			if r, _ := l.buf.RuneAt(int(l.clusters[i].Range.Start)); r == trim.Delimiter {
				count++
				if count == trim.DelimiterCount {
					tail = i + 1
					break
				}
			}
		}
		for i := tail; i < ln.cto; i++ {
			tailW += ln.widths[i-ln.cfrom]
		}
	}
	budget := l.maxW - signW - tailW
	x := float32(0)
	keep := ln.cfrom
	for i := ln.cfrom; i < tail; i++ {
		w := ln.widths[i-ln.cfrom]
		if x+w > budget {
			break
		}
		x += w
		keep = i + 1
	}
	if trim.Granularity == format.TrimWord {
		for keep > ln.cfrom && l.clusters[keep-1].flags&shape.ClusterCanWrapAfter == 0 {
			keep--
		}
	}
	for i := keep; i < tail; i++ {
		ln.hidden[i-ln.cfrom] = true
	}
}

// justifyLines stretches the whitespace of every line up to the layout
// width. Lines ending a paragraph, by mandatory break or by being the
// last one, keep their natural width; lines without any whitespace are
// left alone.
func (l *Layout) justifyLines() {
	if l.fmt.TextAlignment() != format.AlignJustified || !finite(l.maxW) {
		return
	}
	for i := range l.lines {
		ln := &l.lines[i]
		if ln.mandatory || i == len(l.lines)-1 || ln.trimmed {
			continue
		}
		extra := l.maxW - ln.width
		if extra <= 0 {
			continue
		}
		end := ln.cto
		for end > ln.cfrom && l.clusters[end-1].flags&shape.ClusterWhitespace != 0 {
			end--
		}
		total := float32(0)
		for ci := ln.cfrom; ci < end; ci++ {
			if l.clusters[ci].flags&shape.ClusterWhitespace != 0 {
				total += ln.widths[ci-ln.cfrom]
			}
		}
		if total <= 0 {
			continue
		}
		scale := extra / total
		for ci := ln.cfrom; ci < end; ci++ {
			if l.clusters[ci].flags&shape.ClusterWhitespace != 0 {
				ln.widths[ci-ln.cfrom] += ln.widths[ci-ln.cfrom] * scale
			}
		}
	}
}

// positionClusters arranges a line's clusters visually, assigns their x
// positions and aligns the line inside the layout box. Hidden clusters
// collapse onto the trimming sign's position.
func (l *Layout) positionClusters(ln *line) {
	count := ln.cto - ln.cfrom
	ln.xs = make([]float32, count)
	levels := make([]uint8, count)
	for i := 0; i < count; i++ {
		levels[i] = l.runs[l.clusters[ln.cfrom+i].run].level
	}
	order := visualOrder(levels)
	ln.visual = make([]int, 0, count)
	x := float32(0)
	signPlaced := !ln.trimmed
	for _, vi := range order {
		if ln.hidden != nil && ln.hidden[vi] {
			if !signPlaced {
				ln.signX = x
				x += ln.signW
				signPlaced = true
			}
			ln.xs[vi] = x
			continue
		}
		ln.xs[vi] = x
		x += ln.widths[vi]
		ln.visual = append(ln.visual, ln.cfrom+vi)
	}
	if !signPlaced {
		ln.signX = x
		x += ln.signW
	}
	ln.fullWidth = x

	// the content box excludes trailing whitespace, which hangs beyond
	// the layout edge and does not take part in alignment
	trailingFrom := ln.cto
	for trailingFrom > ln.cfrom && l.clusters[trailingFrom-1].flags&shape.ClusterWhitespace != 0 {
		trailingFrom--
	}
	left, right := float32(0), float32(0)
	first := true
	for ci := ln.cfrom; ci < trailingFrom; ci++ {
		vi := ci - ln.cfrom
		if ln.hidden != nil && ln.hidden[vi] {
			continue
		}
		cl, cr := ln.xs[vi], ln.xs[vi]+ln.widths[vi]
		if first || cl < left {
			left = cl
		}
		if first || cr > right {
			right = cr
		}
		first = false
	}
	if ln.trimmed && ln.sign != nil {
		if first || ln.signX < left {
			left = ln.signX
		}
		if first || ln.signX+ln.signW > right {
			right = ln.signX + ln.signW
		}
		first = false
	}
	ln.width = right - left
	ln.contentLeft = left

	avail := l.maxW
	if !finite(avail) {
		avail = ln.width
	}
	rtl := l.fmt.ReadingDirection() == format.RightToLeft
	target := float32(0)
	switch l.fmt.TextAlignment() {
	case format.AlignLeading, format.AlignJustified:
		if rtl {
			target = avail - ln.width
		}
	case format.AlignTrailing:
		if !rtl {
			target = avail - ln.width
		}
	case format.AlignCenter:
		target = (avail - ln.width) / 2
	}
	ln.x = target - left
}

// placeLines stacks the lines along the flow axis and applies paragraph
// alignment.
func (l *Layout) placeLines() {
	total := float32(0)
	for i := range l.lines {
		total += l.lines[i].height
	}
	bottomUp := l.fmt.FlowDirection() == format.BottomToTop
	offset := float32(0)
	if finite(l.maxH) {
		near := l.fmt.ParagraphAlignment() == format.ParagraphNear
		far := l.fmt.ParagraphAlignment() == format.ParagraphFar
		if bottomUp {
			near, far = far, near
		}
		switch {
		case far:
			offset = l.maxH - total
		case !near:
			offset = (l.maxH - total) / 2
		}
	}
	if bottomUp {
		y := offset + total
		for i := range l.lines {
			y -= l.lines[i].height
			l.lines[i].y = y
		}
		return
	}
	y := offset
	for i := range l.lines {
		l.lines[i].y = y
		y += l.lines[i].height
	}
}

// visualOrder arranges logical indices into visual order: from the
// highest embedding level down to the lowest odd one, every maximal
// sequence at that level or higher is reversed.
func visualOrder(levels []uint8) []int {
	n := len(levels)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	var max uint8
	min := uint8(255)
	for _, lv := range levels {
		if lv > max {
			max = lv
		}
		if lv < min {
			min = lv
		}
	}
	if min%2 == 0 {
		min++
	}
	for lvl := max; lvl >= min; lvl-- {
		for i := 0; i < n; i++ {
			if levels[order[i]] < lvl {
				continue
			}
			j := i
			for j+1 < n && levels[order[j+1]] >= lvl {
				j++
			}
			for a, b := i, j; a < b; a, b = a+1, b-1 {
				order[a], order[b] = order[b], order[a]
			}
			i = j
		}
	}
	return order
}
