package pattern

import (
	"github.com/openrhythm/rox/model"
)

// candidate is a provisional timeline segment. Candidates own disjoint
// slot ranges that jointly cover every slot, which is what keeps the
// final entries non-overlapping and the note accounting exact.
type candidate struct {
	slotLo, slotHi int
	label          model.PatternType
}

// analyzeCrossSegment slides a fixed-size window over the slot sequence
// and cuts candidates where the window label changes. The stride is
// smaller than the window so transitions are seen twice and single-slot
// noise cannot flip a segment.
func analyzeCrossSegment(stream *NoteStream, tree *Tree, cfg Config) []candidate {
	n := len(stream.Slots())
	if n == 0 {
		return nil
	}
	if n <= cfg.WindowSlots {
		// Too short for windowing; the merged root already labels the
		// whole chart.
		return []candidate{{slotLo: 0, slotHi: n, label: tree.Root().Classification}}
	}

	type window struct {
		start int
		label model.PatternType
	}
	var windows []window
	for i := 0; i < n; i += cfg.StrideSlots {
		hi := i + cfg.WindowSlots
		if hi > n {
			hi = n
		}
		label := classifyWindow(stream, i, hi, cfg)
		if label == model.PatternSingle {
			// Sparse windows carry little structure of their own; let the
			// merged tree decide if the surrounding region knows better.
			if merged := tree.classificationFor(i, hi); merged.Specificity() > label.Specificity() {
				label = merged
			}
		}
		windows = append(windows, window{start: i, label: label})
	}

	var cands []candidate
	cur := candidate{slotLo: 0, slotHi: n, label: windows[0].label}
	for _, w := range windows[1:] {
		switch {
		case w.label == cur.label || w.label == model.PatternUnclassified:
			// Same label keeps extending; an unclassified window never
			// starts a segment of its own.
		case cur.label == model.PatternUnclassified:
			cur.label = w.label
		default:
			// Split at the midpoint of the overlap between the last
			// old-label window and this one.
			boundary := w.start + (cfg.WindowSlots-cfg.StrideSlots)/2
			if boundary >= n {
				continue
			}
			cur.slotHi = boundary
			cands = append(cands, cur)
			cur = candidate{slotLo: boundary, slotHi: n, label: w.label}
		}
	}
	cands = append(cands, cur)
	return cands
}

// classifyWindow labels the slot range [lo, hi) from its raw rows.
func classifyWindow(stream *NoteStream, lo, hi int, cfg Config) model.PatternType {
	rows := stream.Slots()[lo:hi]
	if len(rows) == 1 {
		return classifySlot(stream, rows[0])
	}

	total := 0
	hands := false
	jumps := false
	for _, r := range rows {
		total += r.NoteCount()
		if r.NoteCount() >= 3 {
			hands = true
		}
		if r.NoteCount() >= 2 {
			jumps = true
		}
	}

	cells := float64(len(rows)) * float64(stream.KeyCount())
	if float64(total) >= cfg.DenseFillRatio*cells {
		return model.PatternQuad
	}

	jacks := false
	streamy := false
	for i := 1; i < len(rows); i++ {
		if shareColumn(rows[i-1].Columns, rows[i].Columns) {
			jacks = true
		}
		if adjacentColumns(rows[i-1].Columns, rows[i].Columns) {
			streamy = true
		}
	}

	switch {
	case hands && jacks:
		return model.PatternChordjack
	case jumps && jacks:
		return model.PatternChordjack
	case hands && streamy:
		return model.PatternHandstream
	case jumps && streamy:
		return model.PatternJumpstream
	case jacks && streamy:
		return model.PatternTechnical
	case hands:
		return model.PatternHand
	case jumps:
		return model.PatternJump
	case jacks:
		return model.PatternJack
	case streamy:
		return model.PatternStream
	case total <= len(rows):
		return model.PatternSingle
	default:
		return model.PatternTechnical
	}
}

// classifySlot labels a lone slot by chord size, reading a single note as
// the continuation of a jack when its predecessor is close enough.
func classifySlot(stream *NoteStream, s Slot) model.PatternType {
	switch {
	case s.NoteCount() == 1:
		if gap, ok := stream.PrevGap(s.Columns[0], s.TimeUs); ok && gap <= stream.JackGapUs() {
			return model.PatternJack
		}
		return model.PatternSingle
	case s.NoteCount() == 2:
		if s.Columns[0] != s.Columns[1] {
			return model.PatternJump
		}
		return model.PatternJack
	case s.NoteCount() == 3:
		return model.PatternHand
	case distinctColumns(s.Columns) == int(stream.KeyCount()) && stream.KeyCount() >= 4:
		return model.PatternQuad
	default:
		return model.PatternHand
	}
}

// adjacentColumns reports whether any column of a sits exactly one lane
// from any column of b, the step shape of a stream.
func adjacentColumns(a, b []uint8) bool {
	for _, ca := range a {
		for _, cb := range b {
			d := int(ca) - int(cb)
			if d == 1 || d == -1 {
				return true
			}
		}
	}
	return false
}
