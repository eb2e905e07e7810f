package layout

import (
	"github.com/npillmayer/satz/core"
	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/inline"
	"github.com/npillmayer/satz/engine/render"
	"github.com/npillmayer/satz/engine/shape"
	"github.com/npillmayer/satz/engine/text"
)

// Draw walks the formatted lines and feeds them to the renderer, offset
// by the given origin. Glyph runs are emitted in logical text order,
// split wherever the face, size, embedding level or drawing effect
// changes; decorations follow as merged segments per line. While Draw
// runs the layout's attributes are frozen, and any error or panic from
// a renderer callback aborts the pass.
func (l *Layout) Draw(ctx interface{}, renderer render.Renderer, originX, originY float32) error {
	if renderer == nil {
		return core.Error(core.EINVALID, "renderer must not be nil")
	}
	if err := l.guard(); err != nil {
		return err
	}
	if err := l.ensureFormatted(); err != nil {
		return err
	}
	l.drawing = true
	defer func() { l.drawing = false }()

	d := drawPass{l: l, ctx: ctx, r: renderer, ox: originX, oy: originY}
	if err := render.Callback("current transform", func() error {
		var err error
		d.transform, err = renderer.CurrentTransform(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := render.Callback("pixels per DIP", func() error {
		var err error
		d.ppd, err = renderer.PixelsPerDip(ctx)
		return err
	}); err != nil {
		return err
	}
	if err := render.Callback("pixel snapping", func() error {
		var err error
		d.noSnap, err = renderer.PixelSnappingDisabled(ctx)
		return err
	}); err != nil {
		return err
	}
	for li := range l.lines {
		if err := d.drawLine(&l.lines[li]); err != nil {
			return err
		}
	}
	return nil
}

// drawPass carries the per-call state of one Draw invocation. Transform,
// scaling and snapping mode are queried once up front and reused for
// every emitted piece.
type drawPass struct {
	l         *Layout
	ctx       interface{}
	r         render.Renderer
	ox, oy    float32
	transform render.Matrix
	ppd       float32
	noSnap    bool
}

func (d *drawPass) baseline(ln *line) float32 {
	y := d.oy + ln.y + ln.baseline
	if d.noSnap {
		return y
	}
	return render.SnapBaseline(d.transform, d.ppd, y)
}

// glyphPiece accumulates logically and visually contiguous clusters of
// one run under one drawing effect window, until a boundary forces a
// flush.
type glyphPiece struct {
	run        int
	gfrom, gto int // glyph span within the run, visual order
	tfrom, tto uint32
	minX       float32 // visual left edge, line-relative
	effect     interface{}
	effEnd     uint32
	members    []int
}

func (d *drawPass) drawLine(ln *line) error {
	var piece *glyphPiece
	flush := func() error {
		if piece == nil {
			return nil
		}
		p := piece
		piece = nil
		return d.flushPiece(ln, p)
	}
	for ci := ln.cfrom; ci < ln.cto; ci++ {
		vi := ci - ln.cfrom
		if ln.hidden != nil && ln.hidden[vi] {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		c := &d.l.clusters[ci]
		if c.flags&shape.ClusterNewline != 0 {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		run := &d.l.runs[c.run]
		if run.object != nil {
			if err := flush(); err != nil {
				return err
			}
			if err := d.drawObject(ln, ci); err != nil {
				return err
			}
			continue
		}
		if piece != nil {
			adjacent := c.gfrom == piece.gto
			if run.rightToLeft() {
				adjacent = c.gto == piece.gfrom
			}
			if piece.run != c.run || !adjacent || c.Range.Start >= piece.effEnd {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		if piece == nil {
			effV, effR := d.l.attrs.effect.get(c.Range.Start)
			piece = &glyphPiece{
				run:    c.run,
				gfrom:  c.gfrom,
				gto:    c.gto,
				tfrom:  c.Range.Start,
				tto:    c.Range.End(),
				minX:   ln.xs[vi],
				effect: effV,
				effEnd: effR.End(),
			}
		} else {
			if c.gfrom < piece.gfrom {
				piece.gfrom = c.gfrom
			}
			if c.gto > piece.gto {
				piece.gto = c.gto
			}
			piece.tto = c.Range.End()
			if ln.xs[vi] < piece.minX {
				piece.minX = ln.xs[vi]
			}
		}
		piece.members = append(piece.members, ci)
	}
	if err := flush(); err != nil {
		return err
	}
	if err := d.drawDecorations(ln, d.l.attrs.underline, true); err != nil {
		return err
	}
	if err := d.drawDecorations(ln, d.l.attrs.strike, false); err != nil {
		return err
	}
	return d.drawSign(ln)
}

// flushPiece hands one assembled glyph run to the renderer. Cluster
// advances are patched to the line's resolved widths, so tab stops and
// justification show up in the emitted positions.
func (d *drawPass) flushPiece(ln *line, p *glyphPiece) error {
	if len(p.members) == 0 {
		return nil
	}
	run := &d.l.runs[p.run]
	sh := &run.shaped
	n := p.gto - p.gfrom
	advances := make([]float32, n)
	copy(advances, sh.Advances[p.gfrom:p.gto])
	offsets := make([]shape.GlyphOffset, n)
	copy(offsets, sh.Offsets[p.gfrom:p.gto])
	for _, ci := range p.members {
		c := &d.l.clusters[ci]
		w := ln.widths[ci-ln.cfrom]
		if w == c.width || c.gto <= c.gfrom {
			continue
		}
		advances[c.gto-1-p.gfrom] += w - c.width
	}
	cm := make([]uint16, p.tto-p.tfrom)
	for i := range cm {
		cm[i] = sh.ClusterMap[p.tfrom-run.Range.Start+uint32(i)] - uint16(p.gfrom)
	}
	gr := &render.GlyphRun{
		Face:      run.font.Face(),
		Size:      run.size,
		Glyphs:    sh.Glyphs[p.gfrom:p.gto],
		Advances:  advances,
		Offsets:   offsets,
		BidiLevel: uint32(run.level),
	}
	desc := &render.GlyphRunDescription{
		Locale:       run.locale,
		Text:         d.l.buf.Slice(int(p.tfrom), int(p.tto)),
		ClusterMap:   cm,
		TextPosition: p.tfrom,
	}
	bx := d.ox + ln.x + p.minX
	by := d.baseline(ln)
	return render.Callback("draw glyph run", func() error {
		return d.r.DrawGlyphRun(d.ctx, bx, by, format.MeasureNatural, gr, desc, p.effect)
	})
}

func (d *drawPass) drawObject(ln *line, ci int) error {
	c := &d.l.clusters[ci]
	run := &d.l.runs[c.run]
	vi := ci - ln.cfrom
	effV, _ := d.l.attrs.effect.get(c.Range.Start)
	x := d.ox + ln.x + ln.xs[vi]
	y := d.oy + ln.y + ln.baseline - run.objMetrics.Baseline
	return render.Callback("draw inline object", func() error {
		return d.r.DrawInlineObject(d.ctx, x, y, run.object, false, run.rightToLeft(), effV)
	})
}

// decoStretch is a maximal visually contiguous stretch of decorated
// clusters sharing run and effect window.
type decoStretch struct {
	run         int
	left, right float32
	effect      interface{}
	effR        text.Range
}

// drawDecorations emits the underline or strikethrough segments of one
// line. Stretches split at run boundaries, since thickness and offset
// come from the run's face.
func (d *drawPass) drawDecorations(ln *line, attr *attrMap, underline bool) error {
	var cur *decoStretch
	flush := func() error {
		if cur == nil {
			return nil
		}
		s := cur
		cur = nil
		return d.flushDecoration(ln, s, underline)
	}
	for _, ci := range ln.visual {
		c := &d.l.clusters[ci]
		run := &d.l.runs[c.run]
		vi := ci - ln.cfrom
		if run.object != nil || c.flags&shape.ClusterNewline != 0 {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		on, _ := attr.get(c.Range.Start)
		if !on.(bool) {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		effV, effR := d.l.attrs.effect.get(c.Range.Start)
		left := ln.xs[vi]
		right := left + ln.widths[vi]
		if cur != nil && cur.run == c.run && cur.effR == effR && left == cur.right {
			cur.right = right
			continue
		}
		if err := flush(); err != nil {
			return err
		}
		cur = &decoStretch{run: c.run, left: left, right: right, effect: effV, effR: effR}
	}
	return flush()
}

func (d *drawPass) flushDecoration(ln *line, s *decoStretch, underline bool) error {
	run := &d.l.runs[s.run]
	fm := run.font.Metrics()
	scale := run.size / float32(fm.UnitsPerEm)
	bx := d.ox + ln.x + s.left
	by := d.baseline(ln)
	if underline {
		ul := &render.Underline{
			Width:            s.right - s.left,
			Thickness:        float32(fm.UnderlineThickness) * scale,
			Offset:           -float32(fm.UnderlinePosition) * scale,
			RunHeight:        ln.height,
			ReadingDirection: d.l.fmt.ReadingDirection(),
			FlowDirection:    d.l.fmt.FlowDirection(),
			Locale:           run.locale,
			MeasuringMode:    format.MeasureNatural,
		}
		if fm.UnderlineThickness == 0 { // faces without post table values
			ul.Thickness = run.size / 14
		}
		if fm.UnderlinePosition == 0 {
			ul.Offset = run.size / 7
		}
		return render.Callback("draw underline", func() error {
			return d.r.DrawUnderline(d.ctx, bx, by, ul, s.effect)
		})
	}
	st := &render.Strikethrough{
		Width:            s.right - s.left,
		Thickness:        float32(fm.StrikethroughThickness) * scale,
		Offset:           -float32(fm.StrikethroughPosition) * scale,
		ReadingDirection: d.l.fmt.ReadingDirection(),
		FlowDirection:    d.l.fmt.FlowDirection(),
		Locale:           run.locale,
		MeasuringMode:    format.MeasureNatural,
	}
	if fm.StrikethroughThickness == 0 {
		st.Thickness = run.size / 14
	}
	if fm.StrikethroughPosition == 0 {
		st.Offset = -run.size / 3
	}
	return render.Callback("draw strikethrough", func() error {
		return d.r.DrawStrikethrough(d.ctx, bx, by, st, s.effect)
	})
}

func (d *drawPass) drawSign(ln *line) error {
	if !ln.trimmed || ln.sign == nil {
		return nil
	}
	var m inline.Metrics
	if err := render.Callback("trimming sign metrics", func() error {
		var e error
		m, e = ln.sign.Metrics()
		return e
	}); err != nil {
		return err
	}
	x := d.ox + ln.x + ln.signX
	y := d.oy + ln.y + ln.baseline - m.Baseline
	rtl := d.l.fmt.ReadingDirection() == format.RightToLeft
	return render.Callback("draw trimming sign", func() error {
		return d.r.DrawInlineObject(d.ctx, x, y, ln.sign, false, rtl, nil)
	})
}
