package pattern

import (
	"fmt"

	"github.com/openrhythm/rox/model"
)

type mergeKey struct {
	lo, hi model.PatternType
}

func pair(a, b model.PatternType) mergeKey {
	if a > b {
		a, b = b, a
	}
	return mergeKey{lo: a, hi: b}
}

// mergeTable pins every allowed pairwise merge. Identical labels merge to
// themselves and an unlisted pair merges to Unclassified; both are handled
// in mergePair. Unclassified never suppresses a specific sibling.
var mergeTable = map[mergeKey]model.PatternType{
	pair(model.PatternUnclassified, model.PatternSingle):     model.PatternSingle,
	pair(model.PatternUnclassified, model.PatternTechnical):  model.PatternTechnical,
	pair(model.PatternUnclassified, model.PatternJump):       model.PatternJump,
	pair(model.PatternUnclassified, model.PatternHand):       model.PatternHand,
	pair(model.PatternUnclassified, model.PatternJack):       model.PatternJack,
	pair(model.PatternUnclassified, model.PatternStream):     model.PatternStream,
	pair(model.PatternUnclassified, model.PatternJumpstream): model.PatternJumpstream,
	pair(model.PatternUnclassified, model.PatternHandstream): model.PatternHandstream,
	pair(model.PatternUnclassified, model.PatternChordjack):  model.PatternChordjack,
	pair(model.PatternUnclassified, model.PatternQuad):       model.PatternQuad,

	pair(model.PatternSingle, model.PatternTechnical):  model.PatternTechnical,
	pair(model.PatternSingle, model.PatternJump):       model.PatternStream,
	pair(model.PatternSingle, model.PatternHand):       model.PatternHandstream,
	pair(model.PatternSingle, model.PatternJack):       model.PatternTechnical,
	pair(model.PatternSingle, model.PatternStream):     model.PatternStream,
	pair(model.PatternSingle, model.PatternJumpstream): model.PatternJumpstream,
	pair(model.PatternSingle, model.PatternHandstream): model.PatternHandstream,
	pair(model.PatternSingle, model.PatternChordjack):  model.PatternChordjack,
	pair(model.PatternSingle, model.PatternQuad):       model.PatternQuad,

	pair(model.PatternTechnical, model.PatternJump):       model.PatternTechnical,
	pair(model.PatternTechnical, model.PatternHand):       model.PatternTechnical,
	pair(model.PatternTechnical, model.PatternJack):       model.PatternTechnical,
	pair(model.PatternTechnical, model.PatternStream):     model.PatternTechnical,
	pair(model.PatternTechnical, model.PatternJumpstream): model.PatternTechnical,
	pair(model.PatternTechnical, model.PatternHandstream): model.PatternTechnical,
	pair(model.PatternTechnical, model.PatternChordjack):  model.PatternChordjack,
	pair(model.PatternTechnical, model.PatternQuad):       model.PatternChordjack,

	pair(model.PatternJump, model.PatternHand):       model.PatternHand,
	pair(model.PatternJump, model.PatternJack):       model.PatternChordjack,
	pair(model.PatternJump, model.PatternStream):     model.PatternJumpstream,
	pair(model.PatternJump, model.PatternJumpstream): model.PatternJumpstream,
	pair(model.PatternJump, model.PatternHandstream): model.PatternHandstream,
	pair(model.PatternJump, model.PatternChordjack):  model.PatternChordjack,
	pair(model.PatternJump, model.PatternQuad):       model.PatternQuad,

	pair(model.PatternHand, model.PatternJack):       model.PatternChordjack,
	pair(model.PatternHand, model.PatternStream):     model.PatternHandstream,
	pair(model.PatternHand, model.PatternJumpstream): model.PatternHandstream,
	pair(model.PatternHand, model.PatternHandstream): model.PatternHandstream,
	pair(model.PatternHand, model.PatternChordjack):  model.PatternChordjack,
	pair(model.PatternHand, model.PatternQuad):       model.PatternQuad,

	pair(model.PatternJack, model.PatternStream):     model.PatternTechnical,
	pair(model.PatternJack, model.PatternJumpstream): model.PatternChordjack,
	pair(model.PatternJack, model.PatternHandstream): model.PatternChordjack,
	pair(model.PatternJack, model.PatternChordjack):  model.PatternChordjack,
	pair(model.PatternJack, model.PatternQuad):       model.PatternChordjack,

	pair(model.PatternStream, model.PatternJumpstream): model.PatternJumpstream,
	pair(model.PatternStream, model.PatternHandstream): model.PatternHandstream,
	// Stream+Chordjack is deliberately unlisted: a stream bleeding into a
	// chordjack is genuinely ambiguous and must not invent a hybrid here.

	pair(model.PatternJumpstream, model.PatternHandstream): model.PatternHandstream,
	pair(model.PatternJumpstream, model.PatternChordjack):  model.PatternChordjack,

	pair(model.PatternHandstream, model.PatternChordjack): model.PatternChordjack,

	pair(model.PatternChordjack, model.PatternQuad): model.PatternChordjack,

	pair(model.PatternHandstream, model.PatternQuad): model.PatternHandstream,
	pair(model.PatternJumpstream, model.PatternQuad): model.PatternHandstream,
	pair(model.PatternStream, model.PatternQuad):     model.PatternHandstream,
}

// mergePair resolves two sibling classifications. Unlisted pairs collapse
// to Unclassified so an incidental mix never fabricates a high-level
// label.
func mergePair(a, b model.PatternType) model.PatternType {
	if a == b {
		return a
	}
	if res, ok := mergeTable[pair(a, b)]; ok {
		return res
	}
	return model.PatternUnclassified
}

// merge propagates leaf classifications to the root. The arena stores
// parents before descendants, so one reverse pass is a full bottom-up
// walk. Empty children are skipped; accounting stays additive no matter
// what the labels resolve to.
func (t *Tree) merge() {
	for i := len(t.Nodes) - 1; i >= 0; i-- {
		n := &t.Nodes[i]
		if n.ChildCount == 0 {
			continue
		}

		var total uint32
		acc := model.PatternUnclassified
		first := true
		for c := n.ChildStart; c < n.ChildStart+n.ChildCount; c++ {
			child := &t.Nodes[c]
			if child.slotLo < n.slotLo || child.slotHi > n.slotHi ||
				child.ColumnRange[0] < n.ColumnRange[0] || child.ColumnRange[1] > n.ColumnRange[1] {
				panic(fmt.Sprintf("pattern: tree node %d outside parent %d bounds", c, i))
			}
			total += child.NoteCount
			if child.NoteCount == 0 {
				continue
			}
			if first {
				acc = child.Classification
				first = false
			} else {
				acc = mergePair(acc, child.Classification)
			}
		}
		if total != n.NoteCount {
			panic(fmt.Sprintf("pattern: tree node %d counts %d notes, children hold %d", i, n.NoteCount, total))
		}
		n.Classification = acc
	}
}
