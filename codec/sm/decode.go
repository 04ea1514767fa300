package sm

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/openrhythm/rox/model"
)

var ErrNoCharts = errors.New("no charts in simfile")

// Decode converts the first chart of a simfile.
func Decode(data []byte) (*model.Chart, error) {
	sim := parseSimfile(data)
	if len(sim.charts) == 0 {
		return nil, ErrNoCharts
	}
	return sim.toChart(&sim.charts[0]), nil
}

func (sim *simfile) toChart(section *chartSection) *model.Chart {
	chart := model.NewChart(uint8(section.columns))
	chart.Metadata.Title = sim.title
	chart.Metadata.Artist = sim.artist
	chart.Metadata.Creator = sim.credit
	chart.Metadata.DifficultyName = section.difficulty
	chart.Metadata.DifficultyValue = float64(section.meter)
	chart.Metadata.AudioFile = sim.music
	chart.Metadata.BackgroundFile = sim.background
	// SM offsets run the opposite way: positive pushes notes later.
	chart.Metadata.AudioOffsetUs = -sim.offsetUs
	chart.Metadata.PreviewTimeUs = int64(sim.sampleStart * 1e6)
	chart.Metadata.PreviewDurationUs = int64(sim.sampleLength * 1e6)

	for _, bpm := range sim.bpms {
		chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(bpm.timeUs, bpm.bpm))
	}

	notes := append([]timedNote{}, section.notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].timeUs != notes[j].timeUs {
			return notes[i].timeUs < notes[j].timeUs
		}
		return notes[i].column < notes[j].column
	})

	// Hold and roll heads wait here until their tails arrive. Tails
	// prefer holds, orphan tails are dropped.
	type pendingHead struct {
		timeUs int64
		column uint8
	}
	var holds, rolls []pendingHead
	take := func(list []pendingHead, column uint8) ([]pendingHead, *pendingHead) {
		for i := range list {
			if list[i].column == column {
				head := list[i]
				return append(list[:i], list[i+1:]...), &head
			}
		}
		return list, nil
	}

	for _, n := range notes {
		switch n.noteChar {
		case charTap, charLift:
			chart.Notes = append(chart.Notes, model.Tap(n.timeUs, n.column))
		case charMine:
			chart.Notes = append(chart.Notes, model.Mine(n.timeUs, n.column))
		case charHoldHead:
			holds = append(holds, pendingHead{n.timeUs, n.column})
		case charRollHead:
			rolls = append(rolls, pendingHead{n.timeUs, n.column})
		case charTail:
			var head *pendingHead
			if holds, head = take(holds, n.column); head != nil {
				chart.Notes = append(chart.Notes, model.Hold(head.timeUs, n.column, n.timeUs-head.timeUs))
			} else if rolls, head = take(rolls, n.column); head != nil {
				chart.Notes = append(chart.Notes, model.Burst(head.timeUs, n.column, n.timeUs-head.timeUs))
			}
		}
	}

	chart.SortNotes()
	chart.SortTimingPoints()
	return chart
}
