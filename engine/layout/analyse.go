package layout

import (
	"sort"
	"strings"

	"github.com/npillmayer/uax"
	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
	"golang.org/x/text/language"

	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/core/font"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/itemize"
	"github.com/npillmayer/satz/engine/render"
	"github.com/npillmayer/satz/engine/shape"
	"github.com/npillmayer/satz/engine/text"
)

// analysisSource adapts a layout to the itemizer's windowed view of a
// paragraph.
type analysisSource struct {
	l *Layout
}

func (s analysisSource) TextAt(pos int) []uint16 {
	return s.l.buf.Slice(pos, s.l.buf.Len())
}

func (s analysisSource) TextBefore(pos int) []uint16 {
	return s.l.buf.Slice(0, pos)
}

func (s analysisSource) LocaleName(pos int) (string, int) {
	v, r := s.l.attrs.locale.get(uint32(pos))
	return v.(string), int(r.End()) - pos
}

func (s analysisSource) NumberSubstitution(pos int) (*format.NumberSubstitution, int) {
	v, r := s.l.attrs.subst.get(uint32(pos))
	return v.(*format.NumberSubstitution), int(r.End()) - pos
}

func (s analysisSource) ReadingDirection() format.ReadingDirection {
	return s.l.fmt.ReadingDirection()
}

// shapedRun is a uniformly shaped stretch of the paragraph: one
// embedding level, script, locale, face and size, or a single embedded
// object.
type shapedRun struct {
	Range      text.Range
	level      uint8
	script     language.Script
	locale     string
	font       *font.Font
	size       float32
	shaped     shape.ShapedRun
	object     inline.Object
	objMetrics inline.Metrics
}

func (r *shapedRun) rightToLeft() bool {
	return r.level&1 == 1
}

// cluster is the atomic unit of layout: a stretch of code units the
// shaper mapped to an indivisible glyph group, or an embedded object.
// Lines break only between clusters.
type cluster struct {
	run       int
	Range     text.Range
	gfrom     int // glyph span within the run's shaped arrays
	gto       int
	width     float32
	flags     shape.ClusterFlags
	mandatory bool // a line break is forced after this cluster
	forced    bool // mandatory came from an object's must-break
	inhibited bool // an object suppressed the break opportunity
	tab       bool
}

// ensureAnalysed shapes the paragraph into runs and clusters. It is a
// no-op when the caches are valid. On failure all caches are dropped, so
// the next query retries from scratch.
func (l *Layout) ensureAnalysed() error {
	if l.state >= analysed {
		return nil
	}
	l.analysis = itemize.Analyze(analysisSource{l})
	err := l.shapeRuns()
	if err == nil {
		l.foldCRLF()
		l.applySpacing()
		err = l.markBreaks()
	}
	if err != nil {
		l.invalidate()
		return err
	}
	tracer().Debugf("analysed layout: %d runs, %d clusters", len(l.runs), len(l.clusters))
	l.state = analysed
	return nil
}

// windowBounds collects every position at which shaping input changes:
// bidi, script or substitution runs and shaping-relevant attributes.
func (l *Layout) windowBounds(n uint32) []uint32 {
	bounds := make([]uint32, 0, 32)
	for _, r := range l.analysis.Bidi {
		bounds = append(bounds, r.Range.Start)
	}
	for _, r := range l.analysis.Scripts {
		bounds = append(bounds, r.Range.Start)
	}
	for _, r := range l.analysis.Substs {
		bounds = append(bounds, r.Range.Start)
	}
	bounds = l.attrs.shapingBoundaries(bounds)
	bounds = append(bounds, n)
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })
	uniq := bounds[:0]
	for i, b := range bounds {
		if i == 0 || b != uniq[len(uniq)-1] {
			uniq = append(uniq, b)
		}
	}
	return uniq
}

func nextBound(bounds []uint32, pos uint32) uint32 {
	i := sort.Search(len(bounds), func(i int) bool { return bounds[i] > pos })
	return bounds[i]
}

func (l *Layout) levelAt(pos uint32) uint8 {
	for _, r := range l.analysis.Bidi {
		if r.Range.Contains(pos) {
			return r.Level
		}
	}
	return 0
}

func (l *Layout) scriptAt(pos uint32) language.Script {
	for _, r := range l.analysis.Scripts {
		if r.Range.Contains(pos) {
			return r.Script
		}
	}
	return language.MustParseScript("Zyyy")
}

// shapeRuns walks the paragraph window by window, resolves fonts and
// shapes every text window; embedded objects become single clusters.
func (l *Layout) shapeRuns() error {
	n := uint32(l.buf.Len())
	l.runs = nil
	l.clusters = nil
	l.unitCl = make([]int, n)
	if n == 0 {
		return nil
	}
	bounds := l.windowBounds(n)
	pos := uint32(0)
	for pos < n {
		end := nextBound(bounds, pos)
		if v, r := l.attrs.object.get(pos); v != nil {
			end = r.End()
			if end > n {
				end = n
			}
			if err := l.appendObjectRun(v.(inline.Object), text.MakeRange(pos, end-pos)); err != nil {
				return err
			}
			pos = end
			continue
		}
		if err := l.shapeWindow(pos, end); err != nil {
			return err
		}
		pos = end
	}
	return nil
}

// appendObjectRun reserves the space an embedded object claims. The
// object covers its whole range as one cluster.
func (l *Layout) appendObjectRun(obj inline.Object, r text.Range) error {
	var m inline.Metrics
	err := render.Callback("inline object metrics", func() error {
		var e error
		m, e = obj.Metrics()
		return e
	})
	if err != nil {
		return err
	}
	size, _ := l.attrs.size.get(r.Start)
	ri := len(l.runs)
	l.runs = append(l.runs, shapedRun{
		Range:      r,
		level:      l.levelAt(r.Start),
		size:       size.(float32),
		object:     obj,
		objMetrics: m,
	})
	l.addCluster(cluster{run: ri, Range: r, width: m.Width})
	return nil
}

// shapeWindow shapes [from, to), splitting further where font fallback
// switches faces.
func (l *Layout) shapeWindow(from, to uint32) error {
	level := l.levelAt(from)
	script := l.scriptAt(from)
	famV, _ := l.attrs.family.get(from)
	weightV, _ := l.attrs.weight.get(from)
	stretchV, _ := l.attrs.stretch.get(from)
	styleV, _ := l.attrs.style.get(from)
	sizeV, _ := l.attrs.size.get(from)
	localeV, _ := l.attrs.locale.get(from)
	typoV, _ := l.attrs.typo.get(from)
	kernV, _ := l.attrs.kerning.get(from)
	substV, _ := l.attrs.subst.get(from)
	sel := font.Selector{
		Family:  famV.(string),
		Weight:  weightV.(font.Weight),
		Stretch: stretchV.(font.Stretch),
		Style:   styleV.(font.Style),
	}
	size := sizeV.(float32)
	locale := localeV.(string)
	var feats []format.Feature
	if typo := typoV.(*format.Typography); typo != nil {
		feats = typo.Apply(nil)
	}
	window := l.buf.Slice(int(from), int(to))
	for _, fr := range shape.SplitByFaces(l.coll, window, sel, locale) {
		fnt := fr.Font
		if fnt == nil {
			var err error
			if fnt, err = l.fallbackFont(sel); err != nil {
				return err
			}
		}
		abs := text.MakeRange(from+fr.Range.Start, fr.Range.Length)
		out, err := shape.Shape(shape.ShapingRun{
			Text:        l.buf.Slice(int(abs.Start), int(abs.End())),
			Level:       level,
			Script:      script,
			Locale:      locale,
			Face:        fnt.Face(),
			Size:        size,
			Features:    feats,
			PairKerning: kernV.(bool),
			Subst:       substV.(*format.NumberSubstitution),
		})
		if err != nil {
			return err
		}
		ri := len(l.runs)
		l.runs = append(l.runs, shapedRun{
			Range:  abs,
			level:  level,
			script: script,
			locale: locale,
			font:   fnt,
			size:   size,
			shaped: out,
		})
		l.clustersFromRun(ri)
	}
	return nil
}

// fallbackFont picks a font for characters no collection font maps, so
// that missing glyphs still occupy space and draw as .notdef boxes.
func (l *Layout) fallbackFont(sel font.Selector) (*font.Font, error) {
	if fam, ok := l.coll.FamilyByName(sel.Family); ok {
		if f, err := fam.FirstMatchingFont(sel.Weight, sel.Stretch, sel.Style); err == nil {
			return f, nil
		}
	}
	if fam, conf := l.coll.ClosestFamily(sel.Family); conf > font.NoConfidence {
		if f, err := fam.FirstMatchingFont(sel.Weight, sel.Stretch, sel.Style); err == nil {
			return f, nil
		}
	}
	if l.coll.NumFamilies() > 0 {
		if fam, err := l.coll.Family(0); err == nil {
			if f, err := fam.FirstMatchingFont(sel.Weight, sel.Stretch, sel.Style); err == nil {
				return f, nil
			}
		}
	}
	return nil, core.Error(core.EMISSING, "no font in collection for family %q", sel.Family)
}

// clustersFromRun cuts a shaped run into clusters along its cluster
// map. Newline clusters lose their width, so that a trailing newline
// never contributes to line extents.
func (l *Layout) clustersFromRun(ri int) {
	run := &l.runs[ri]
	sh := &run.shaped
	nu := len(sh.ClusterMap)
	rtl := run.rightToLeft()
	u := 0
	for u < nu {
		m := int(sh.ClusterMap[u])
		v := u + 1
		for v < nu && int(sh.ClusterMap[v]) == m {
			v++
		}
		gfrom, gto := m, len(sh.Glyphs)
		if rtl {
			if u > 0 {
				gto = int(sh.ClusterMap[u-1])
			}
		} else if v < nu {
			gto = int(sh.ClusterMap[v])
		}
		c := cluster{
			run:   ri,
			Range: text.MakeRange(run.Range.Start+uint32(u), uint32(v-u)),
			gfrom: gfrom,
			gto:   gto,
			flags: sh.Flags[u],
		}
		if c.flags&shape.ClusterNewline != 0 {
			for g := gfrom; g < gto; g++ {
				sh.Advances[g] = 0
			}
			c.mandatory = true
		} else {
			for g := gfrom; g < gto; g++ {
				c.width += sh.Advances[g]
			}
		}
		if r, _ := l.buf.RuneAt(int(c.Range.Start)); r == '\t' {
			c.tab = true
		}
		l.addCluster(c)
		u = v
	}
}

func (l *Layout) addCluster(c cluster) {
	ci := len(l.clusters)
	l.clusters = append(l.clusters, c)
	for u := c.Range.Start; u < c.Range.End(); u++ {
		l.unitCl[u] = ci
	}
}

// foldCRLF joins a CR LF pair into a single line break: the break
// moves to the LF, so the pair ends one line instead of two. Other
// newline sequences keep one break per character.
func (l *Layout) foldCRLF() {
	for i := 0; i+1 < len(l.clusters); i++ {
		c, next := &l.clusters[i], &l.clusters[i+1]
		if c.flags&next.flags&shape.ClusterNewline == 0 {
			continue
		}
		r1, _ := l.buf.RuneAt(int(c.Range.Start))
		r2, _ := l.buf.RuneAt(int(next.Range.Start))
		if r1 == '\r' && r2 == '\n' {
			c.mandatory = false
		}
	}
}

// applySpacing folds character spacing into the cluster widths and the
// edge glyph advances, so that positions derived from advances stay in
// step with the cluster widths.
func (l *Layout) applySpacing() {
	if l.attrs.spacing.uniform() {
		if v, _ := l.attrs.spacing.at(0); v.(CharacterSpacing) == (CharacterSpacing{}) {
			return
		}
	}
	for ci := range l.clusters {
		c := &l.clusters[ci]
		if c.flags&shape.ClusterNewline != 0 || l.runs[c.run].object != nil {
			continue
		}
		v, _ := l.attrs.spacing.at(c.Range.Start)
		sp := v.(CharacterSpacing)
		if sp == (CharacterSpacing{}) {
			continue
		}
		w := c.width + sp.Leading + sp.Trailing
		if sp.MinAdvance > 0 && w < sp.MinAdvance {
			w = sp.MinAdvance
		}
		if c.gto > c.gfrom {
			sh := &l.runs[c.run].shaped
			sh.Advances[c.gfrom] += sp.Leading
			sh.Advances[c.gto-1] += w - c.width - sp.Leading
		}
		c.width = w
	}
}

// markBreaks stamps Unicode line break opportunities onto the clusters
// and lets embedded objects override the boundaries they touch.
func (l *Layout) markBreaks() error {
	if len(l.clusters) == 0 {
		return nil
	}
	seg := segment.NewSegmenter(uax14.NewLineWrap())
	seg.Init(strings.NewReader(l.buf.String()))
	pos := uint32(0)
	for seg.Next() {
		for _, r := range seg.Text() {
			pos += uint32(text.UnitLen(r))
		}
		p1, _ := seg.Penalties()
		if p1 >= uax.InfinitePenalty {
			continue
		}
		if ci, ok := l.clusterEndingAt(pos); ok {
			l.clusters[ci].flags |= shape.ClusterCanWrapAfter
		}
	}
	return l.objectBreaks()
}

// clusterEndingAt finds the cluster whose range ends exactly at pos.
// Positions inside a cluster are not break opportunities.
func (l *Layout) clusterEndingAt(pos uint32) (int, bool) {
	if pos == 0 || pos > uint32(len(l.unitCl)) {
		return 0, false
	}
	ci := l.unitCl[pos-1]
	if l.clusters[ci].Range.End() != pos {
		return 0, false
	}
	return ci, true
}

func (l *Layout) objectBreaks() error {
	for ci := range l.clusters {
		obj := l.runs[l.clusters[ci].run].object
		if obj == nil {
			continue
		}
		var pre, post inline.BreakCondition
		err := render.Callback("inline object break conditions", func() error {
			var e error
			pre, post, e = obj.BreakConditions()
			return e
		})
		if err != nil {
			return err
		}
		if ci > 0 {
			l.overrideBreak(ci-1, pre)
		}
		l.overrideBreak(ci, post)
	}
	return nil
}

// overrideBreak replaces the Unicode break opportunity after cluster ci
// with an object's condition. Between two objects, must-break wins over
// may-not-break wins over can-break; newlines always break.
func (l *Layout) overrideBreak(ci int, cond inline.BreakCondition) {
	c := &l.clusters[ci]
	switch cond {
	case inline.CanBreak:
		if !c.inhibited {
			c.flags |= shape.ClusterCanWrapAfter
		}
	case inline.MayNotBreak:
		c.inhibited = true
		c.flags &^= shape.ClusterCanWrapAfter
		if !c.forced && c.flags&shape.ClusterNewline == 0 {
			c.mandatory = false
		}
	case inline.MustBreak:
		c.forced = true
		c.mandatory = true
	}
}
