package itemize

import (
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/bidi"

	"github.com/npillmayer/satz/engine/format"
	"github.com/npillmayer/satz/engine/text"
)

// Source is the windowed view the analysis passes consume a paragraph
// through. Layouts implement it over their paragraph buffer and
// attribute partitions; all windows are slices of the backing buffer,
// nothing is copied.
type Source interface {
	// TextAt returns the code units from pos up to the paragraph end.
	TextAt(pos int) []uint16
	// TextBefore returns the code units preceding pos.
	TextBefore(pos int) []uint16
	// LocaleName returns the locale at pos and the number of code units
	// it covers.
	LocaleName(pos int) (string, int)
	// NumberSubstitution returns the substitution policy at pos, which
	// may be nil, and the number of code units it covers.
	NumberSubstitution(pos int) (*format.NumberSubstitution, int)
	// ReadingDirection returns the paragraph's base direction.
	ReadingDirection() format.ReadingDirection
}

// BidiRun is a stretch of text with a uniform resolved embedding level:
// even levels run left-to-right, odd levels right-to-left.
type BidiRun struct {
	Range text.Range
	Level uint8
}

// RightToLeft is true for runs with an odd embedding level.
func (r BidiRun) RightToLeft() bool {
	return r.Level&1 == 1
}

// ScriptRun is a stretch of text in a single ISO 15924 script.
type ScriptRun struct {
	Range  text.Range
	Script language.Script
}

// SubstRun is a stretch of text governed by one number substitution
// policy, possibly nil.
type SubstRun struct {
	Range text.Range
	Subst *format.NumberSubstitution
}

// Analysis holds the run partitions of one paragraph. Each run slice
// partitions [0, paragraph length) without gaps; an empty paragraph has
// empty partitions.
type Analysis struct {
	Bidi     []BidiRun
	Scripts  []ScriptRun
	Substs   []SubstRun
	MaxLevel uint8
}

// Analyze runs all itemization passes over a paragraph.
func Analyze(src Source) *Analysis {
	runes, offsets := text.DecodeRunes(src.TextAt(0))
	a := &Analysis{
		Substs: SubstRuns(src),
	}
	a.Bidi, a.MaxLevel = bidiRuns(runes, offsets, src.ReadingDirection())
	a.Scripts = scriptRuns(runes, offsets)
	tracer().Debugf("analyzed paragraph of %d runes: %d bidi runs, %d script runs, %d subst runs",
		len(runes), len(a.Bidi), len(a.Scripts), len(a.Substs))
	return a
}

// BidiRuns partitions the paragraph into runs of uniform embedding
// level and reports the deepest level.
func BidiRuns(src Source) ([]BidiRun, uint8) {
	runes, offsets := text.DecodeRunes(src.TextAt(0))
	return bidiRuns(runes, offsets, src.ReadingDirection())
}

func baseLevel(d format.ReadingDirection) uint8 {
	if d == format.RightToLeft {
		return 1
	}
	return 0
}

// bidiRuns resolves embedding levels per newline-delimited chunk. The
// level of a left-to-right run is 0 under a left-to-right base and 2
// under a right-to-left base; right-to-left runs always resolve to 1.
// Newline characters take the base level of the paragraph.
func bidiRuns(runes []rune, offsets []int, dir format.ReadingDirection) ([]BidiRun, uint8) {
	base := baseLevel(dir)
	levels := make([]uint8, len(runes))
	for i := range levels {
		levels[i] = base
	}
	start := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && !text.IsNewline(runes[i]) {
			continue
		}
		resolveChunk(runes[start:i], levels[start:i], dir)
		start = i + 1
	}
	return mergeLevels(levels, offsets), maxLevel(levels, base)
}

// resolveChunk runs the UBA over one newline-free chunk and fills in
// the synthesized levels. A direction mark is prepended so that the
// first-strong heuristic of the UBA implementation resolves to the
// declared reading direction; the mark is dropped from the result.
func resolveChunk(runes []rune, levels []uint8, dir format.ReadingDirection) {
	if len(runes) == 0 {
		return
	}
	mark := "‎" // LEFT-TO-RIGHT MARK
	if dir == format.RightToLeft {
		mark = "‏"
	}
	var p bidi.Paragraph
	if _, err := p.SetString(mark + string(runes)); err != nil {
		return
	}
	order, err := p.Order()
	if err != nil {
		tracer().Infof("bidi resolution failed, keeping base level: %v", err)
		return
	}
	base := baseLevel(dir)
	for i := 0; i < order.NumRuns(); i++ {
		run := order.Run(i)
		from, to := run.Pos() // rune indices into mark + chunk, to inclusive
		lvl := base
		switch run.Direction() {
		case bidi.LeftToRight:
			if base == 1 {
				lvl = 2
			} else {
				lvl = 0
			}
		case bidi.RightToLeft:
			lvl = 1
		}
		for j := from - 1; j < to && j < len(levels); j++ {
			if j < 0 {
				continue
			}
			levels[j] = lvl
		}
	}
}

func mergeLevels(levels []uint8, offsets []int) []BidiRun {
	var runs []BidiRun
	for i := 0; i < len(levels); {
		j := i + 1
		for j < len(levels) && levels[j] == levels[i] {
			j++
		}
		runs = append(runs, BidiRun{
			Range: text.MakeRange(uint32(offsets[i]), uint32(offsets[j]-offsets[i])),
			Level: levels[i],
		})
		i = j
	}
	return runs
}

func maxLevel(levels []uint8, base uint8) uint8 {
	if len(levels) == 0 {
		return 0
	}
	max := base
	for _, l := range levels {
		if l > max {
			max = l
		}
	}
	return max
}

// ScriptRuns partitions the paragraph into runs of uniform script.
func ScriptRuns(src Source) []ScriptRun {
	runes, offsets := text.DecodeRunes(src.TextAt(0))
	return scriptRuns(runes, offsets)
}

// scriptRuns classifies every rune and attaches common, inherited and
// unassigned characters to the script run in progress. A prefix without
// a strong script joins the first strong script following it; a
// paragraph without any strong script stays a single common run.
func scriptRuns(runes []rune, offsets []int) []ScriptRun {
	scripts := make([]language.Script, len(runes))
	carry := commonScript
	for i, r := range runes {
		s := ScriptFor(r)
		if s == commonScript || s == inheritedScript || s == unknownScript {
			scripts[i] = carry
			continue
		}
		if carry == commonScript {
			for j := 0; j < i; j++ {
				scripts[j] = s
			}
		}
		scripts[i] = s
		carry = s
	}
	//
	var runs []ScriptRun
	for i := 0; i < len(scripts); {
		j := i + 1
		for j < len(scripts) && scripts[j] == scripts[i] {
			j++
		}
		runs = append(runs, ScriptRun{
			Range:  text.MakeRange(uint32(offsets[i]), uint32(offsets[j]-offsets[i])),
			Script: scripts[i],
		})
		i = j
	}
	return runs
}

// SubstRuns reads the number-substitution partition off the source,
// coalescing stretches sharing a policy.
func SubstRuns(src Source) []SubstRun {
	n := len(src.TextAt(0))
	var runs []SubstRun
	for pos := 0; pos < n; {
		subst, l := src.NumberSubstitution(pos)
		if l <= 0 || l > n-pos {
			l = n - pos
		}
		if k := len(runs) - 1; k >= 0 && runs[k].Subst == subst {
			runs[k].Range.Length += uint32(l)
		} else {
			runs = append(runs, SubstRun{
				Range: text.MakeRange(uint32(pos), uint32(l)),
				Subst: subst,
			})
		}
		pos += l
	}
	return runs
}
