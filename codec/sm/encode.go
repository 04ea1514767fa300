package sm

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/openrhythm/rox/model"
)

// Encode renders a simfile with a single #NOTES block. Beat zero is
// pinned to the first BPM point, and #OFFSET carries that anchor.
func Encode(chart *model.Chart) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "#TITLE:%s;\n", chart.Metadata.Title)
	b.WriteString("#SUBTITLE:;\n")
	fmt.Fprintf(&b, "#ARTIST:%s;\n", chart.Metadata.Artist)
	b.WriteString("#TITLETRANSLIT:;\n")
	b.WriteString("#ARTISTTRANSLIT:;\n")
	b.WriteString("#GENRE:;\n")
	fmt.Fprintf(&b, "#CREDIT:%s;\n", chart.Metadata.Creator)
	b.WriteString("#BANNER:;\n")
	fmt.Fprintf(&b, "#BACKGROUND:%s;\n", chart.Metadata.BackgroundFile)
	b.WriteString("#LYRICSPATH:;\n")
	b.WriteString("#CDTITLE:;\n")
	fmt.Fprintf(&b, "#MUSIC:%s;\n", chart.Metadata.AudioFile)

	bpms := bpmPoints(chart)
	var startUs int64
	if len(bpms) > 0 {
		startUs = bpms[0].timeUs
	}
	fmt.Fprintf(&b, "#OFFSET:%.6f;\n", float64(startUs)/1e6)
	fmt.Fprintf(&b, "#SAMPLESTART:%.3f;\n", float64(chart.Metadata.PreviewTimeUs)/1e6)
	fmt.Fprintf(&b, "#SAMPLELENGTH:%.3f;\n", float64(chart.Metadata.PreviewDurationUs)/1e6)
	b.WriteString("#SELECTABLE:YES;\n")

	b.WriteString("#BPMS:")
	for i, bpm := range bpms {
		if i > 0 {
			b.WriteByte(',')
		}
		beat := usToBeat(bpm.timeUs, bpms, startUs)
		if math.Abs(beat-math.Round(beat)) < 0.001 {
			fmt.Fprintf(&b, "%.0f=%.3f", beat, bpm.bpm)
		} else {
			fmt.Fprintf(&b, "%.3f=%.3f", beat, bpm.bpm)
		}
	}
	b.WriteString(";\n")
	b.WriteString("#STOPS:;\n\n")

	b.WriteString("#NOTES:\n")
	fmt.Fprintf(&b, "     %s:\n", stepsTypeFor(chart.KeyCount))
	b.WriteString("     :\n")
	fmt.Fprintf(&b, "     %s:\n", standardDifficulty(chart.Metadata.DifficultyName))
	fmt.Fprintf(&b, "     %d:\n", meterFor(chart.Metadata.DifficultyValue))
	b.WriteString("     0,0,0,0,0:\n")
	writeMeasures(&b, chart, bpms, startUs)
	b.WriteString(";\n")

	return []byte(b.String()), nil
}

func bpmPoints(chart *model.Chart) []timedBpm {
	var out []timedBpm
	for _, tp := range chart.TimingPoints {
		if !tp.Inherited {
			out = append(out, timedBpm{timeUs: tp.TimeUs, bpm: tp.Bpm})
		}
	}
	return out
}

func stepsTypeFor(keyCount uint8) string {
	switch keyCount {
	case 6:
		return "dance-solo"
	case 8:
		return "dance-double"
	default:
		return "dance-single"
	}
}

// standardDifficulty keeps names StepMania recognizes and falls back to
// Hard for everything else.
func standardDifficulty(name string) string {
	switch name {
	case "Beginner", "Easy", "Medium", "Hard", "Challenge", "Edit":
		return name
	default:
		return "Hard"
	}
}

func meterFor(difficultyValue float64) int {
	if difficultyValue <= 0 {
		return 1
	}
	return int(difficultyValue)
}

// usToBeat is the inverse walk of rowToUs, anchored at startUs.
func usToBeat(timeUs int64, bpms []timedBpm, startUs int64) float64 {
	if len(bpms) == 0 {
		return usToBeats(timeUs-startUs, fallbackBpm)
	}
	cur := startUs
	beat := 0.0
	bpm := bpms[0].bpm
	for i := 1; i < len(bpms); i++ {
		if bpms[i].timeUs > timeUs {
			break
		}
		beat += usToBeats(bpms[i].timeUs-cur, bpm)
		cur = bpms[i].timeUs
		bpm = bpms[i].bpm
	}
	return beat + usToBeats(timeUs-cur, bpm)
}

func usToBeats(us int64, bpm float64) float64 {
	return float64(us) / 1e6 * bpm / 60
}

type noteEvent struct {
	timeUs int64
	column uint8
	ch     byte
}

type placedEvent struct {
	beatInMeasure float64
	column        uint8
	ch            byte
}

func writeMeasures(b *strings.Builder, chart *model.Chart, bpms []timedBpm, startUs int64) {
	keyCount := int(chart.KeyCount)
	if len(chart.Notes) == 0 {
		for i := 0; i < 4; i++ {
			b.WriteString(strings.Repeat("0", keyCount))
			b.WriteByte('\n')
		}
		return
	}

	totalBeats := usToBeat(chart.DurationUs(), bpms, startUs)
	totalMeasures := 1
	if totalBeats > 0 {
		totalMeasures = int(math.Ceil(totalBeats/4)) + 1
	}

	events := noteEvents(chart)
	measures := make([][]placedEvent, totalMeasures)
	for _, e := range events {
		if e.ch == charEmpty {
			continue
		}
		raw := usToBeat(e.timeUs, bpms, startUs)
		if raw < 0 {
			// Before beat zero; the grid cannot hold it.
			continue
		}
		// Snap to the 48th-of-a-beat grid to absorb rounding jitter.
		beat := math.Round(raw*rowsPerBeat) / rowsPerBeat
		if math.Abs(beat-math.Round(beat)) < 1e-6 {
			beat = math.Round(beat)
		}
		idx := int(beat / 4)
		for idx >= len(measures) {
			measures = append(measures, nil)
		}
		measures[idx] = append(measures[idx], placedEvent{
			beatInMeasure: math.Mod(beat, 4),
			column:        e.column,
			ch:            e.ch,
		})
	}

	for m, evs := range measures {
		if m > 0 {
			b.WriteString(",\n")
		}
		div := measureDivisor(evs)
		for i := 0; i < div; i++ {
			line := []byte(strings.Repeat("0", keyCount))
			for _, e := range evs {
				pos := e.beatInMeasure * float64(div) / 4
				if math.Abs(pos-float64(i)) < 0.001 && int(e.column) < keyCount {
					line[e.column] = e.ch
				}
			}
			b.Write(line)
			b.WriteByte('\n')
		}
	}
}

// measureDivisor picks the coarsest row count that lands every event on
// a line. 192 rows can hold anything the 48th-grid snap produces.
func measureDivisor(evs []placedEvent) int {
	if len(evs) == 0 {
		return 4
	}
	for _, div := range []int{4, 8, 12, 16, 24, 32, 48, 64, 96, 192} {
		ok := true
		for _, e := range evs {
			pos := e.beatInMeasure * float64(div) / 4
			if math.Abs(pos-math.Round(pos)) > 0.001 {
				ok = false
				break
			}
		}
		if ok {
			return div
		}
	}
	return 192
}

// noteEvents flattens notes to (time, column, char) rows and resolves
// the one layout StepMania cannot express: a tail and a new head on the
// same row of the same column. The hold becomes a tap and its tail is
// blanked.
func noteEvents(chart *model.Chart) []noteEvent {
	var events []noteEvent
	for _, n := range chart.Notes {
		switch n.Kind {
		case model.KindHold:
			events = append(events,
				noteEvent{n.TimeUs, n.Column, charHoldHead},
				noteEvent{n.EndTimeUs(), n.Column, charTail})
		case model.KindBurst:
			events = append(events,
				noteEvent{n.TimeUs, n.Column, charRollHead},
				noteEvent{n.EndTimeUs(), n.Column, charTail})
		case model.KindMine:
			events = append(events, noteEvent{n.TimeUs, n.Column, charMine})
		default:
			events = append(events, noteEvent{n.TimeUs, n.Column, charTap})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].timeUs < events[j].timeUs })

	for i := 0; i+1 < len(events); i++ {
		e1, e2 := events[i], events[i+1]
		if e1.timeUs != e2.timeUs || e1.column != e2.column || e1.ch != charTail {
			continue
		}
		if e2.ch != charTap && e2.ch != charHoldHead && e2.ch != charRollHead && e2.ch != charMine {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if events[j].column != e1.column {
				continue
			}
			if events[j].ch == charHoldHead || events[j].ch == charRollHead {
				events[j].ch = charTap
				events[i].ch = charEmpty
				break
			}
			if events[j].ch == charTail {
				break
			}
		}
	}
	return events
}
