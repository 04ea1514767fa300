// Package midi decodes standard MIDI files as 4K charts. Every note-on
// lands on column key mod 4 and tempo events become BPM changes. The
// mapping is lossy, so there is no encoder.
package midi

import (
	"bytes"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/openrhythm/rox/model"
)

const keyCount = 4

type noteSlot struct {
	timeUs int64
	column uint8
}

// Decode flattens every track of an SMF file onto four columns.
func Decode(data []byte) (chart *model.Chart, err error) {
	// smf panics on some malformed files instead of returning an
	// error: https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			chart, err = nil, errors.Errorf("could not parse midi file: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse midi file")
	}

	chart = model.NewChart(keyCount)
	seen := make(map[noteSlot]bool)
	for _, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			absTime := s.TimeAt(absTicks)
			var channel, key, velocity uint8
			var bpm float64
			var name string
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				// A zero-velocity note-on is a disguised note-off.
				if velocity == 0 {
					continue
				}
				slot := noteSlot{timeUs: absTime, column: key % keyCount}
				if seen[slot] {
					continue
				}
				seen[slot] = true
				chart.Notes = append(chart.Notes, model.Tap(slot.timeUs, slot.column))
			case event.Message.GetMetaTempo(&bpm):
				chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(absTime, bpm))
			case event.Message.GetMetaTrackName(&name):
				if chart.Metadata.Title == "" && name != "" {
					chart.Metadata.Title = name
				}
			}
		}
	}

	chart.SortTimingPoints()
	if len(chart.TimingPoints) == 0 || chart.TimingPoints[0].TimeUs > 0 {
		chart.TimingPoints = append([]model.TimingPoint{model.BpmChange(0, 120)}, chart.TimingPoints...)
	}
	chart.SortNotes()
	return chart, nil
}
