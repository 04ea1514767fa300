package pattern

import (
	"sort"

	"github.com/openrhythm/rox/model"
)

// Slot is a group of near-simultaneous onsets: every note whose time falls
// within the simultaneity tolerance of the slot's first onset. Columns
// holds one entry per note, in onset order.
type Slot struct {
	TimeUs  int64
	Columns []uint8
}

func (s Slot) NoteCount() int {
	return len(s.Columns)
}

func (s Slot) Has(col uint8) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// NoteStream is a read-only, time-sorted view of a chart's notes: the
// global slot sequence plus per-column onset times. Every note contributes
// exactly one onset (holds at their head, mines like taps) so that the
// timeline's note accounting matches the chart's.
type NoteStream struct {
	keyCount uint8
	slots    []Slot
	columns  [][]int64
	total    int
	jackGap  int64
}

func newNoteStream(chart *model.Chart, cfg Config) (*NoteStream, error) {
	if len(chart.Notes) == 0 {
		return nil, ErrEmptyChart
	}

	type onset struct {
		timeUs int64
		column uint8
	}
	onsets := make([]onset, 0, len(chart.Notes))
	for _, n := range chart.Notes {
		onsets = append(onsets, onset{timeUs: n.TimeUs, column: n.Column})
	}
	sort.Slice(onsets, func(i, j int) bool {
		if onsets[i].timeUs != onsets[j].timeUs {
			return onsets[i].timeUs < onsets[j].timeUs
		}
		return onsets[i].column < onsets[j].column
	})

	s := &NoteStream{
		keyCount: chart.KeyCount,
		columns:  make([][]int64, chart.KeyCount),
		total:    len(onsets),
	}

	var cur Slot
	for i, o := range onsets {
		if i == 0 || o.timeUs-cur.TimeUs > cfg.SimultaneityToleranceUs {
			if i > 0 {
				s.slots = append(s.slots, cur)
			}
			cur = Slot{TimeUs: o.timeUs}
		}
		cur.Columns = append(cur.Columns, o.column)
		s.columns[o.column] = append(s.columns[o.column], o.timeUs)
	}
	s.slots = append(s.slots, cur)

	s.jackGap = jackGapUs(s.slots)
	return s, nil
}

// jackGapUs is the largest same-column gap still read as a jack: twice the
// median slot delta, clamped to [10ms, 250ms]. Derived from observed
// spacing so the cutoff tracks the chart's own density.
func jackGapUs(slots []Slot) int64 {
	var deltas []int64
	for i := 1; i < len(slots); i++ {
		if d := slots[i].TimeUs - slots[i-1].TimeUs; d > 0 {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return 250_000
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i] < deltas[j] })
	gap := 2 * deltas[len(deltas)/2]
	if gap < 10_000 {
		return 10_000
	}
	if gap > 250_000 {
		return 250_000
	}
	return gap
}

func (s *NoteStream) KeyCount() uint8 {
	return s.keyCount
}

func (s *NoteStream) Slots() []Slot {
	return s.slots
}

func (s *NoteStream) TotalNotes() int {
	return s.total
}

func (s *NoteStream) JackGapUs() int64 {
	return s.jackGap
}

// PrevGap returns the time since the previous onset in col strictly
// before timeUs, false when there is none.
func (s *NoteStream) PrevGap(col uint8, timeUs int64) (int64, bool) {
	if int(col) >= len(s.columns) {
		return 0, false
	}
	onsets := s.columns[col]
	i := sort.Search(len(onsets), func(i int) bool { return onsets[i] >= timeUs })
	if i == 0 {
		return 0, false
	}
	return timeUs - onsets[i-1], true
}

// noteCountRange sums slot sizes over [lo, hi).
func (s *NoteStream) noteCountRange(lo, hi int) uint32 {
	var total uint32
	for i := lo; i < hi; i++ {
		total += uint32(len(s.slots[i].Columns))
	}
	return total
}
