package pattern

import (
	"github.com/openrhythm/rox/model"
)

// The two families of labels that may share a timeline entry. Hand sits
// in both: hands occur inside handstreams and inside dense chordjacks.
// Equal labels are always compatible; the relation is symmetric and
// deliberately not transitive, so runs are resolved pairwise in time
// order.
var streamFamily = map[model.PatternType]bool{
	model.PatternStream:     true,
	model.PatternJumpstream: true,
	model.PatternHandstream: true,
	model.PatternJump:       true,
	model.PatternHand:       true,
	model.PatternSingle:     true,
	model.PatternTechnical:  true,
}

var chordjackFamily = map[model.PatternType]bool{
	model.PatternChordjack: true,
	model.PatternJack:      true,
	model.PatternQuad:      true,
	model.PatternHand:      true,
}

func compatible(a, b model.PatternType) bool {
	if a == b {
		return true
	}
	if streamFamily[a] && streamFamily[b] {
		return true
	}
	return chordjackFamily[a] && chordjackFamily[b]
}

// flatten coalesces adjacent compatible candidates under their most
// specific label and emits the final entries. BPM statistics are
// re-derived from the combined slot range of each run — never averaged
// across runs — so seam deltas are included and rounding does not
// compound.
func flatten(cands []candidate, stream *NoteStream, ta *timingAnalyzer) model.Timeline {
	timeline := model.Timeline{}
	if len(cands) == 0 {
		return timeline
	}

	runs := make([]candidate, 0, len(cands))
	cur := cands[0]
	for _, c := range cands[1:] {
		if compatible(cur.label, c.label) {
			cur.slotHi = c.slotHi
			cur.label = model.MoreSpecific(cur.label, c.label)
		} else {
			runs = append(runs, cur)
			cur = c
		}
	}
	runs = append(runs, cur)

	slots := stream.Slots()
	for _, r := range runs {
		if r.slotHi <= r.slotLo {
			continue
		}
		avg, min, max := ta.statsRange(r.slotLo, r.slotHi)
		start := slots[r.slotLo].TimeUs
		end := slots[r.slotHi-1].TimeUs
		timeline = append(timeline, model.PatternEntry{
			StartTimeUs: start,
			EndTimeUs:   end,
			DurationUs:  end - start,
			Pattern:     r.label,
			AvgBpm:      avg,
			MinBpm:      min,
			MaxBpm:      max,
			NoteCount:   stream.noteCountRange(r.slotLo, r.slotHi),
		})
	}
	return timeline
}
