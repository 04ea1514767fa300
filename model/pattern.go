package model

import (
	"encoding/json"
	"fmt"
)

// PatternType labels a region of a chart with the dominant gameplay
// pattern. The numeric order is the specificity order used for merge
// tie-breaks: a higher value always beats a lower one.
type PatternType uint8

const (
	PatternUnclassified PatternType = iota
	PatternSingle
	PatternTechnical
	PatternJump
	PatternHand
	PatternJack
	PatternStream
	PatternJumpstream
	PatternHandstream
	PatternChordjack
	PatternQuad
)

var patternNames = [...]string{
	PatternUnclassified: "Unclassified",
	PatternSingle:       "Single",
	PatternTechnical:    "Technical",
	PatternJump:         "Jump",
	PatternHand:         "Hand",
	PatternJack:         "Jack",
	PatternStream:       "Stream",
	PatternJumpstream:   "Jumpstream",
	PatternHandstream:   "Handstream",
	PatternChordjack:    "Chordjack",
	PatternQuad:         "Quad",
}

// Weights carried over from the priority table the timeline merger was
// tuned with. Same order as the enum, kept explicit so a reordering of
// the constants cannot silently change merge decisions.
var patternSpecificity = [...]int{
	PatternUnclassified: 0,
	PatternSingle:       10,
	PatternTechnical:    35,
	PatternJump:         40,
	PatternHand:         45,
	PatternJack:         50,
	PatternStream:       60,
	PatternJumpstream:   70,
	PatternHandstream:   80,
	PatternChordjack:    90,
	PatternQuad:         100,
}

func (p PatternType) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return fmt.Sprintf("PatternType(%d)", uint8(p))
}

func (p PatternType) Specificity() int {
	if int(p) < len(patternSpecificity) {
		return patternSpecificity[p]
	}
	return 0
}

// MoreSpecific returns the winner of a specificity tie-break.
func MoreSpecific(a, b PatternType) PatternType {
	if b.Specificity() > a.Specificity() {
		return b
	}
	return a
}

func ParsePatternType(s string) (PatternType, error) {
	for i, name := range patternNames {
		if name == s {
			return PatternType(i), nil
		}
	}
	return PatternUnclassified, fmt.Errorf("unknown pattern type %q", s)
}

func (p PatternType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PatternType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePatternType(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PatternEntry is one span of the final timeline. The JSON field set and
// names are consumed by external tooling; changing them is a breaking
// change.
type PatternEntry struct {
	StartTimeUs int64       `json:"start_time_us"`
	EndTimeUs   int64       `json:"end_time_us"`
	DurationUs  int64       `json:"duration_us"`
	Pattern     PatternType `json:"pattern_type"`
	AvgBpm      float64     `json:"avg_bpm"`
	MinBpm      float64     `json:"min_bpm"`
	MaxBpm      float64     `json:"max_bpm"`
	NoteCount   uint32      `json:"note_count"`
}

// Timeline is the ordered, non-overlapping sequence of pattern entries
// produced by one analysis call.
type Timeline []PatternEntry

// TotalNotes sums the per-entry counts; equals the chart's note count.
func (t Timeline) TotalNotes() uint32 {
	var total uint32
	for _, e := range t {
		total += e.NoteCount
	}
	return total
}

// AnalysisResult is the serialized product of pattern analysis. The
// scratch tree never leaves the analyzer.
type AnalysisResult struct {
	Timeline Timeline `json:"timeline"`
	KeyCount uint8    `json:"key_count"`
}
