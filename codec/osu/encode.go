package osu

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/openrhythm/rox/model"
)

// Encode writes a mania (Mode 3) beatmap. Bursts and mines have no osu
// equivalent and become plain taps.
func Encode(chart *model.Chart) ([]byte, error) {
	var b strings.Builder
	b.WriteString("osu file format v14\n\n")

	b.WriteString("[General]\n")
	fmt.Fprintf(&b, "AudioFilename: %s\n", chart.Metadata.AudioFile)
	fmt.Fprintf(&b, "AudioLeadIn: %d\n", chart.Metadata.AudioOffsetUs/1000)
	fmt.Fprintf(&b, "PreviewTime: %d\n", chart.Metadata.PreviewTimeUs/1000)
	b.WriteString("Countdown: 0\n")
	b.WriteString("SampleSet: Normal\n")
	b.WriteString("StackLeniency: 0.7\n")
	b.WriteString("Mode: 3\n")
	b.WriteString("LetterboxInBreaks: 0\n")
	b.WriteString("SpecialStyle: 0\n")
	b.WriteString("WidescreenStoryboard: 0\n\n")

	b.WriteString("[Editor]\n")
	b.WriteString("DistanceSpacing: 1\n")
	b.WriteString("BeatDivisor: 4\n")
	b.WriteString("GridSize: 4\n")
	b.WriteString("TimelineZoom: 1\n\n")

	b.WriteString("[Metadata]\n")
	fmt.Fprintf(&b, "Title:%s\n", chart.Metadata.Title)
	fmt.Fprintf(&b, "TitleUnicode:%s\n", chart.Metadata.Title)
	fmt.Fprintf(&b, "Artist:%s\n", chart.Metadata.Artist)
	fmt.Fprintf(&b, "ArtistUnicode:%s\n", chart.Metadata.Artist)
	fmt.Fprintf(&b, "Creator:%s\n", chart.Metadata.Creator)
	fmt.Fprintf(&b, "Version:%s\n", chart.Metadata.DifficultyName)
	if chart.Metadata.Source != "" {
		fmt.Fprintf(&b, "Source:%s\n", chart.Metadata.Source)
	}
	if chart.Metadata.Tags != "" {
		fmt.Fprintf(&b, "Tags:%s\n", chart.Metadata.Tags)
	}
	b.WriteString("BeatmapID:0\n")
	b.WriteString("BeatmapSetID:-1\n\n")

	od := chart.Metadata.DifficultyValue
	if od == 0 {
		od = 8
	}
	b.WriteString("[Difficulty]\n")
	b.WriteString("HPDrainRate:8\n")
	fmt.Fprintf(&b, "CircleSize:%d\n", chart.KeyCount)
	fmt.Fprintf(&b, "OverallDifficulty:%s\n", num(od))
	b.WriteString("ApproachRate:5\n")
	b.WriteString("SliderMultiplier:1.4\n")
	b.WriteString("SliderTickRate:1\n\n")

	b.WriteString("[Events]\n")
	b.WriteString("//Background and Video events\n")
	if chart.Metadata.BackgroundFile != "" {
		fmt.Fprintf(&b, "0,0,%q,0,0\n", chart.Metadata.BackgroundFile)
	}
	b.WriteString("//Break Periods\n")
	b.WriteString("//Storyboard Layer 0 (Background)\n")
	b.WriteString("//Storyboard Layer 1 (Fail)\n")
	b.WriteString("//Storyboard Layer 2 (Pass)\n")
	b.WriteString("//Storyboard Layer 3 (Foreground)\n")
	b.WriteString("//Storyboard Sound Samples\n\n")

	b.WriteString("[TimingPoints]\n")
	for _, tp := range chart.TimingPoints {
		timeMs := float64(tp.TimeUs) / 1000
		if !tp.Inherited {
			fmt.Fprintf(&b, "%s,%s,%d,1,0,100,1,0\n", num(timeMs), num(60_000/tp.Bpm), tp.Signature)
		} else {
			fmt.Fprintf(&b, "%s,%s,4,1,0,100,0,0\n", num(timeMs), num(-100/tp.ScrollSpeed))
		}
	}
	b.WriteString("\n\n")

	b.WriteString("[HitObjects]\n")
	for _, n := range chart.Notes {
		timeMs := n.TimeUs / 1000
		x := xForColumn(n.Column, chart.KeyCount)
		if n.Kind == model.KindHold {
			endMs := timeMs + n.DurationUs/1000
			fmt.Fprintf(&b, "%d,192,%d,128,0,%d:0:0:0:0:\n", x, timeMs, endMs)
		} else {
			fmt.Fprintf(&b, "%d,192,%d,1,0,0:0:0:0:\n", x, timeMs)
		}
	}

	return []byte(b.String()), nil
}

// xForColumn is the inverse of columnForX: the centre of the column's
// slice of the 512 unit playfield. For 7K: 36, 109, 182, 256, 329, 402,
// 475.
func xForColumn(column, keyCount uint8) int {
	width := 512.0 / float64(keyCount)
	return int(math.Floor(float64(column)*width + width/2))
}

// num renders a float the way osu expects: no exponent, no trailing
// zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
