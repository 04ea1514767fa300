package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/openrhythm/rox/constants"
)

// NoteKind distinguishes the playable note variants.
type NoteKind string

const (
	KindTap   NoteKind = "tap"
	KindHold  NoteKind = "hold"
	KindBurst NoteKind = "burst" // hold that must be mashed instead of held
	KindMine  NoteKind = "mine"
)

// Note is a single object in a chart. Times are microseconds from the
// start of the audio. DurationUs is 0 for taps and mines.
type Note struct {
	TimeUs        int64    `json:"time_us" yaml:"time_us"`
	Column        uint8    `json:"column" yaml:"column"`
	Kind          NoteKind `json:"kind" yaml:"kind"`
	DurationUs    int64    `json:"duration_us,omitempty" yaml:"duration_us,omitempty"`
	HitsoundIndex int16    `json:"hitsound_index" yaml:"hitsound_index"`
}

func Tap(timeUs int64, column uint8) Note {
	return Note{TimeUs: timeUs, Column: column, Kind: KindTap, HitsoundIndex: -1}
}

func Hold(timeUs int64, column uint8, durationUs int64) Note {
	return Note{TimeUs: timeUs, Column: column, Kind: KindHold, DurationUs: durationUs, HitsoundIndex: -1}
}

func Burst(timeUs int64, column uint8, durationUs int64) Note {
	return Note{TimeUs: timeUs, Column: column, Kind: KindBurst, DurationUs: durationUs, HitsoundIndex: -1}
}

func Mine(timeUs int64, column uint8) Note {
	return Note{TimeUs: timeUs, Column: column, Kind: KindMine, HitsoundIndex: -1}
}

func (n Note) IsMine() bool {
	return n.Kind == KindMine
}

// EndTimeUs is the onset for taps and mines, the tail for holds and bursts.
func (n Note) EndTimeUs() int64 {
	return n.TimeUs + n.DurationUs
}

// TimingPoint is either a BPM change (Inherited false, Bpm meaningful) or
// an SV change (Inherited true, ScrollSpeed meaningful).
type TimingPoint struct {
	TimeUs      int64   `json:"time_us" yaml:"time_us"`
	Bpm         float64 `json:"bpm" yaml:"bpm"`
	Signature   uint8   `json:"signature" yaml:"signature"`
	Inherited   bool    `json:"inherited" yaml:"inherited"`
	ScrollSpeed float64 `json:"scroll_speed" yaml:"scroll_speed"`
}

func BpmChange(timeUs int64, bpm float64) TimingPoint {
	return TimingPoint{TimeUs: timeUs, Bpm: bpm, Signature: 4, ScrollSpeed: 1.0}
}

func SvChange(timeUs int64, multiplier float64) TimingPoint {
	return TimingPoint{TimeUs: timeUs, Signature: 4, Inherited: true, ScrollSpeed: multiplier}
}

type Metadata struct {
	Title             string  `json:"title" yaml:"title"`
	Artist            string  `json:"artist" yaml:"artist"`
	Creator           string  `json:"creator" yaml:"creator"`
	DifficultyName    string  `json:"difficulty_name" yaml:"difficulty_name"`
	DifficultyValue   float64 `json:"difficulty_value" yaml:"difficulty_value"`
	AudioFile         string  `json:"audio_file" yaml:"audio_file"`
	BackgroundFile    string  `json:"background_file,omitempty" yaml:"background_file,omitempty"`
	AudioOffsetUs     int64   `json:"audio_offset_us" yaml:"audio_offset_us"`
	PreviewTimeUs     int64   `json:"preview_time_us" yaml:"preview_time_us"`
	PreviewDurationUs int64   `json:"preview_duration_us" yaml:"preview_duration_us"`
	Source            string  `json:"source,omitempty" yaml:"source,omitempty"`
	Genre             string  `json:"genre,omitempty" yaml:"genre,omitempty"`
	Language          string  `json:"language,omitempty" yaml:"language,omitempty"`
	Tags              string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	ChartID           string  `json:"chart_id,omitempty" yaml:"chart_id,omitempty"`
	ChartsetID        string  `json:"chartset_id,omitempty" yaml:"chartset_id,omitempty"`
}

// Chart is the in-memory representation every codec decodes into and the
// analyzers consume. Notes are kept sorted by (TimeUs, Column).
type Chart struct {
	Version      uint8         `json:"version" yaml:"version"`
	KeyCount     uint8         `json:"key_count" yaml:"key_count"`
	Metadata     Metadata      `json:"metadata" yaml:"metadata"`
	TimingPoints []TimingPoint `json:"timing_points" yaml:"timing_points"`
	Notes        []Note        `json:"notes" yaml:"notes"`
	Hitsounds    []string      `json:"hitsounds,omitempty" yaml:"hitsounds,omitempty"`
}

func NewChart(keyCount uint8) *Chart {
	return &Chart{
		Version:  constants.RoxVersion,
		KeyCount: keyCount,
		Metadata: Metadata{PreviewDurationUs: constants.PreviewDurationUs},
	}
}

func (c *Chart) NoteCount() int {
	return len(c.Notes)
}

// DurationUs is the time of the latest note end, 0 for an empty chart.
func (c *Chart) DurationUs() int64 {
	var max int64
	for _, n := range c.Notes {
		if end := n.EndTimeUs(); end > max {
			max = end
		}
	}
	return max
}

// SortNotes orders notes by (TimeUs, Column), the order Validate demands.
func (c *Chart) SortNotes() {
	sort.SliceStable(c.Notes, func(i, j int) bool {
		if c.Notes[i].TimeUs != c.Notes[j].TimeUs {
			return c.Notes[i].TimeUs < c.Notes[j].TimeUs
		}
		return c.Notes[i].Column < c.Notes[j].Column
	})
}

func (c *Chart) SortTimingPoints() {
	sort.SliceStable(c.TimingPoints, func(i, j int) bool {
		return c.TimingPoints[i].TimeUs < c.TimingPoints[j].TimeUs
	})
}

// InvalidColumnError reports a note outside the chart's key range.
type InvalidColumnError struct {
	Column   uint8
	KeyCount uint8
}

func (e InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid column %d for key count %d", e.Column, e.KeyCount)
}

type InvalidHoldDurationError struct {
	TimeUs     int64
	DurationUs int64
}

func (e InvalidHoldDurationError) Error() string {
	return fmt.Sprintf("invalid hold duration %dus at %dus", e.DurationUs, e.TimeUs)
}

type OverlappingNotesError struct {
	Column uint8
	TimeUs int64
}

func (e OverlappingNotesError) Error() string {
	return fmt.Sprintf("overlapping notes in column %d at %dus", e.Column, e.TimeUs)
}

type NotesNotSortedError struct {
	PrevUs int64
	TimeUs int64
}

func (e NotesNotSortedError) Error() string {
	return fmt.Sprintf("notes not sorted: %dus after %dus", e.TimeUs, e.PrevUs)
}

type TimingPointsNotSortedError struct {
	PrevUs int64
	TimeUs int64
}

func (e TimingPointsNotSortedError) Error() string {
	return fmt.Sprintf("timing points not sorted: %dus after %dus", e.TimeUs, e.PrevUs)
}

type InvalidKeyCountError struct {
	KeyCount uint8
}

func (e InvalidKeyCountError) Error() string {
	return fmt.Sprintf("invalid key count %d (must be 1-%d)", e.KeyCount, constants.MaxKeyCount)
}

type NoBpmError struct {
	FirstNoteUs int64
}

func (e NoBpmError) Error() string {
	return fmt.Sprintf("no BPM timing point at or before the first note (%dus)", e.FirstNoteUs)
}

// Validate checks the structural invariants the analyzers and encoders
// rely on: sane key count, sorted notes inside the key range, positive
// hold durations, no overlapping notes per column, sorted timing points,
// and a BPM point covering the first note.
func (c *Chart) Validate() error {
	if c.KeyCount == 0 || c.KeyCount > constants.MaxKeyCount {
		return InvalidKeyCountError{KeyCount: c.KeyCount}
	}

	var prev *Note
	lastEnd := make([]int64, c.KeyCount) // end of the previous note per column
	for i := range lastEnd {
		lastEnd[i] = math.MinInt64 // note times may be negative
	}
	for i := range c.Notes {
		n := &c.Notes[i]
		if n.Column >= c.KeyCount {
			return InvalidColumnError{Column: n.Column, KeyCount: c.KeyCount}
		}
		if prev != nil {
			if n.TimeUs < prev.TimeUs || (n.TimeUs == prev.TimeUs && n.Column < prev.Column) {
				return NotesNotSortedError{PrevUs: prev.TimeUs, TimeUs: n.TimeUs}
			}
		}
		switch n.Kind {
		case KindHold, KindBurst:
			if n.DurationUs <= 0 {
				return InvalidHoldDurationError{TimeUs: n.TimeUs, DurationUs: n.DurationUs}
			}
		case KindTap, KindMine:
			if n.DurationUs != 0 {
				return InvalidHoldDurationError{TimeUs: n.TimeUs, DurationUs: n.DurationUs}
			}
		default:
			return fmt.Errorf("unknown note kind %q at %dus", n.Kind, n.TimeUs)
		}
		if n.TimeUs <= lastEnd[n.Column] {
			return OverlappingNotesError{Column: n.Column, TimeUs: n.TimeUs}
		}
		lastEnd[n.Column] = n.EndTimeUs()
		prev = n
	}

	var prevTp *TimingPoint
	hasBpm := false
	var firstBpmUs int64
	for i := range c.TimingPoints {
		tp := &c.TimingPoints[i]
		if prevTp != nil && tp.TimeUs < prevTp.TimeUs {
			return TimingPointsNotSortedError{PrevUs: prevTp.TimeUs, TimeUs: tp.TimeUs}
		}
		if !tp.Inherited && !hasBpm {
			hasBpm = true
			firstBpmUs = tp.TimeUs
		}
		prevTp = tp
	}
	if len(c.Notes) > 0 {
		if !hasBpm || firstBpmUs > c.Notes[0].TimeUs {
			return NoBpmError{FirstNoteUs: c.Notes[0].TimeUs}
		}
	}

	return nil
}
