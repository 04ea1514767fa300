package pattern

import (
	"github.com/openrhythm/rox/model"
)

// QuadNode is one cell of the spatial-temporal partition. Children live in
// the same arena as a contiguous index range: 4 when both axes split, 2
// when only one can (degenerate regions), 0 at a leaf. Parents always
// precede their descendants, so a reverse walk of the arena visits
// children first.
type QuadNode struct {
	TimeRange      [2]int64
	ColumnRange    [2]uint8
	NoteCount      uint32
	Classification model.PatternType
	ChildStart     int
	ChildCount     int

	slotLo, slotHi int
}

// Tree is the scratch partition built for a single analysis call. It is
// discarded once the timeline is flattened.
type Tree struct {
	Nodes  []QuadNode
	stream *NoteStream
}

func (t *Tree) Root() *QuadNode {
	return &t.Nodes[0]
}

type treeBuilder struct {
	stream *NoteStream
	cfg    Config
	nodes  []QuadNode
}

func buildTree(stream *NoteStream, cfg Config) *Tree {
	b := &treeBuilder{stream: stream, cfg: cfg}
	b.nodes = append(b.nodes, QuadNode{})
	b.fill(0, 0, len(stream.Slots()), 0, stream.KeyCount()-1)
	return &Tree{Nodes: b.nodes, stream: stream}
}

// fill writes the node at idx for the region (slot range × column range)
// and recurses. Child placeholders are reserved before recursing so that
// siblings stay contiguous in the arena.
func (b *treeBuilder) fill(idx int, slotLo, slotHi int, colLo, colHi uint8) {
	n := QuadNode{
		ColumnRange: [2]uint8{colLo, colHi},
		slotLo:      slotLo,
		slotHi:      slotHi,
	}
	if slotHi > slotLo {
		slots := b.stream.Slots()
		n.TimeRange = [2]int64{slots[slotLo].TimeUs, slots[slotHi-1].TimeUs}
	}
	n.NoteCount = b.countNotes(slotLo, slotHi, colLo, colHi)

	canSplitTime := slotHi-slotLo >= 2
	canSplitCols := colHi > colLo
	atomic := int(colHi-colLo) < 2 && slotHi-slotLo <= 2

	if n.NoteCount <= uint32(b.cfg.LeafNoteLimit) || colLo == colHi || atomic ||
		(!canSplitTime && !canSplitCols) {
		n.Classification = b.classifyLeaf(slotLo, slotHi, colLo, colHi)
		b.nodes[idx] = n
		return
	}

	type region struct {
		slotLo, slotHi int
		colLo, colHi   uint8
	}
	var regions []region
	slotMid := (slotLo + slotHi) / 2
	colMid := (colLo + colHi) / 2
	switch {
	case canSplitTime && canSplitCols:
		regions = []region{
			{slotLo, slotMid, colLo, colMid},
			{slotLo, slotMid, colMid + 1, colHi},
			{slotMid, slotHi, colLo, colMid},
			{slotMid, slotHi, colMid + 1, colHi},
		}
	case canSplitTime:
		regions = []region{
			{slotLo, slotMid, colLo, colHi},
			{slotMid, slotHi, colLo, colHi},
		}
	default:
		regions = []region{
			{slotLo, slotHi, colLo, colMid},
			{slotLo, slotHi, colMid + 1, colHi},
		}
	}

	n.ChildStart = len(b.nodes)
	n.ChildCount = len(regions)
	for range regions {
		b.nodes = append(b.nodes, QuadNode{})
	}
	b.nodes[idx] = n
	for i, r := range regions {
		b.fill(n.ChildStart+i, r.slotLo, r.slotHi, r.colLo, r.colHi)
	}
}

func (b *treeBuilder) countNotes(slotLo, slotHi int, colLo, colHi uint8) uint32 {
	slots := b.stream.Slots()
	var total uint32
	for i := slotLo; i < slotHi; i++ {
		for _, c := range slots[i].Columns {
			if c >= colLo && c <= colHi {
				total++
			}
		}
	}
	return total
}

// classifyLeaf derives the primitive pattern of an atomic cell from the
// arrangement of its notes (restricted to the cell's columns).
func (b *treeBuilder) classifyLeaf(slotLo, slotHi int, colLo, colHi uint8) model.PatternType {
	slots := b.stream.Slots()
	var rows [][]uint8
	var times []int64
	for i := slotLo; i < slotHi; i++ {
		var cols []uint8
		for _, c := range slots[i].Columns {
			if c >= colLo && c <= colHi {
				cols = append(cols, c)
			}
		}
		if len(cols) > 0 {
			rows = append(rows, cols)
			times = append(times, slots[i].TimeUs)
		}
	}

	if len(rows) == 0 {
		return model.PatternUnclassified
	}
	if len(rows) == 1 {
		return b.classifyRow(rows[0], times[0])
	}

	for i := 1; i < len(rows); i++ {
		if shareColumn(rows[i-1], rows[i]) {
			return model.PatternJack
		}
	}

	best := model.PatternUnclassified
	for _, row := range rows {
		best = model.MoreSpecific(best, b.chordClass(row))
	}
	return best
}

// classifyRow labels a single slot, treating a lone note as a Jack when
// its same-column predecessor is close enough.
func (b *treeBuilder) classifyRow(row []uint8, timeUs int64) model.PatternType {
	if len(row) == 1 {
		if gap, ok := b.stream.PrevGap(row[0], timeUs); ok && gap <= b.stream.JackGapUs() {
			return model.PatternJack
		}
		return model.PatternSingle
	}
	return b.chordClass(row)
}

// chordClass labels a slot purely by chord size.
func (b *treeBuilder) chordClass(row []uint8) model.PatternType {
	distinct := distinctColumns(row)
	switch {
	case len(row) == 1:
		return model.PatternSingle
	case len(row) == 2 && distinct == 2:
		return model.PatternJump
	case len(row) == 2:
		return model.PatternJack
	case len(row) == 3:
		return model.PatternHand
	case distinct == int(b.stream.KeyCount()) && b.stream.KeyCount() >= 4:
		return model.PatternQuad
	default:
		return model.PatternHand
	}
}

func shareColumn(a, b []uint8) bool {
	for _, ca := range a {
		for _, cb := range b {
			if ca == cb {
				return true
			}
		}
	}
	return false
}

func distinctColumns(row []uint8) int {
	var seen [32]bool
	count := 0
	for _, c := range row {
		if int(c) < len(seen) && !seen[c] {
			seen[c] = true
			count++
		}
	}
	return count
}

// classificationFor resolves the merged label of the deepest node whose
// slot range covers [slotLo, slotHi) across the full key range. Only
// time-split children (same column span as the parent) are descended
// into, so the answer always reflects every column.
func (t *Tree) classificationFor(slotLo, slotHi int) model.PatternType {
	idx := 0
	for {
		n := &t.Nodes[idx]
		next := -1
		for c := n.ChildStart; c < n.ChildStart+n.ChildCount; c++ {
			child := &t.Nodes[c]
			if child.ColumnRange != n.ColumnRange {
				continue
			}
			if child.slotLo <= slotLo && slotHi <= child.slotHi {
				next = c
				break
			}
		}
		if next < 0 {
			return n.Classification
		}
		idx = next
	}
}
