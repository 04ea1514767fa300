// Package fnf decodes Friday Night Funkin' charts (bare .json files).
//
// FNF charts interleave two characters on eight lanes, with
// mustHitSection flipping which half belongs to the player per
// section. Decoding extracts one side as a 4K chart, or both sides as
// 8K with the opponent on the left. There is no encoder.
package fnf

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/openrhythm/rox/model"
)

// Side selects which character's lanes to keep.
type Side int

const (
	SidePlayer Side = iota
	SideOpponent
	SideBoth
)

type fnfFile struct {
	Song fnfSong `json:"song"`
}

type fnfSong struct {
	Song    string       `json:"song"`
	Bpm     float64      `json:"bpm"`
	Speed   float64      `json:"speed"`
	Player1 string       `json:"player1"`
	Player2 string       `json:"player2"`
	Notes   []fnfSection `json:"notes"`
}

type fnfSection struct {
	SectionNotes   []fnfNote `json:"sectionNotes"`
	LengthInSteps  int       `json:"lengthInSteps"`
	MustHitSection bool      `json:"mustHitSection"`
	ChangeBpm      bool      `json:"changeBPM"`
	Bpm            float64   `json:"bpm"`
}

// fnfNote is the [timeMs, lane, sustainMs] triple; files in the wild
// sometimes carry fewer or extra elements.
type fnfNote []float64

func (n fnfNote) timeMs() float64 {
	if len(n) > 0 {
		return n[0]
	}
	return 0
}

func (n fnfNote) lane() uint8 {
	if len(n) < 2 || n[1] <= 0 {
		return 0
	}
	if n[1] >= 255 {
		return 255
	}
	return uint8(n[1])
}

func (n fnfNote) durationMs() float64 {
	if len(n) > 2 {
		return n[2]
	}
	return 0
}

// Decode extracts the player side as a 4K chart.
func Decode(data []byte) (*model.Chart, error) {
	return DecodeSide(data, SidePlayer)
}

// DecodeSide decodes an FNF chart keeping the lanes of the given side.
func DecodeSide(data []byte, side Side) (*model.Chart, error) {
	var fnf fnfFile
	if err := json.Unmarshal(data, &fnf); err != nil {
		return nil, errors.Wrap(err, "could not parse fnf json")
	}

	keyCount := uint8(4)
	if side == SideBoth {
		keyCount = 8
	}
	chart := model.NewChart(keyCount)
	chart.Metadata.Title = fnf.Song.Song
	chart.Metadata.Creator = fnf.Song.Player2
	if chart.Metadata.Creator == "" {
		chart.Metadata.Creator = "dad"
	}
	chart.Metadata.DifficultyName = "Normal"

	currentBpm := fnf.Song.Bpm
	addedInitialBpm := false
	for _, section := range fnf.Song.Notes {
		if section.ChangeBpm && section.Bpm > 0 {
			// The change lands on the section's first note.
			if len(section.SectionNotes) > 0 {
				timeUs := usFromMs(section.SectionNotes[0].timeMs())
				chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(timeUs, section.Bpm))
				currentBpm = section.Bpm
			}
		} else if !addedInitialBpm {
			chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(0, currentBpm))
			addedInitialBpm = true
		}

		for _, note := range section.SectionNotes {
			column, keep := resolveColumn(note.lane(), section.MustHitSection, side)
			if !keep {
				continue
			}
			timeUs := usFromMs(note.timeMs())
			if note.durationMs() > 0 {
				chart.Notes = append(chart.Notes, model.Hold(timeUs, column, usFromMs(note.durationMs())))
			} else {
				chart.Notes = append(chart.Notes, model.Tap(timeUs, column))
			}
		}
	}
	if !addedInitialBpm {
		chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(0, fnf.Song.Bpm))
	}

	chart.SortNotes()
	chart.SortTimingPoints()
	return chart, nil
}

// resolveColumn maps a raw 0-7 lane onto the requested side.
// mustHitSection=true puts the player on lanes 0-3, otherwise the
// player is on 4-7.
func resolveColumn(raw uint8, mustHit bool, side Side) (uint8, bool) {
	isPlayer, base := mustHit, raw
	if raw >= 4 {
		isPlayer, base = !mustHit, raw-4
	}
	switch side {
	case SidePlayer:
		return base, isPlayer
	case SideOpponent:
		return base, !isPlayer
	default:
		if isPlayer {
			return base + 4, true
		}
		return base, true
	}
}

func usFromMs(ms float64) int64 {
	return int64(ms * 1000)
}
