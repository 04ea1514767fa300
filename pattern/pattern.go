// Package pattern derives a flat timeline of gameplay patterns (streams,
// jacks, jumpstreams, chordjacks...) with observed-BPM statistics from a
// chart. Analysis is a pure function of the chart: scratch state lives and
// dies inside one call, so independent charts can be analyzed
// concurrently.
package pattern

import (
	"github.com/pkg/errors"

	"github.com/openrhythm/rox/model"
)

var (
	// ErrEmptyChart marks a chart with zero notes. Analyze resolves it to
	// an empty timeline rather than a failure.
	ErrEmptyChart = errors.New("chart has no notes")

	// ErrTooManyNotes is returned when the input exceeds Config.MaxNotes.
	ErrTooManyNotes = errors.New("note count exceeds the analysis limit")
)

// Config holds the analyzer's tunables. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	// SimultaneityToleranceUs groups onsets into one slot. Community
	// charts carry a little timing jitter, so exact equality is too
	// strict.
	SimultaneityToleranceUs int64

	// LeafNoteLimit stops the tree subdivision once a cell is this small.
	LeafNoteLimit int

	// WindowSlots and StrideSlots shape the cross-segment scan. The
	// stride must stay below the window so consecutive windows overlap.
	WindowSlots int
	StrideSlots int

	// DenseFillRatio is the fill fraction above which a window reads as
	// solid chords.
	DenseFillRatio float64

	// MaxNotes is the safety ceiling; larger charts are rejected with
	// ErrTooManyNotes.
	MaxNotes int
}

func DefaultConfig() Config {
	return Config{
		SimultaneityToleranceUs: 1_000,
		LeafNoteLimit:           4,
		WindowSlots:             4,
		StrideSlots:             2,
		DenseFillRatio:          0.75,
		MaxNotes:                4_000_000,
	}
}

func (c Config) normalized() Config {
	if c.SimultaneityToleranceUs < 0 {
		c.SimultaneityToleranceUs = 0
	}
	if c.LeafNoteLimit < 1 {
		c.LeafNoteLimit = 1
	}
	if c.WindowSlots < 2 {
		c.WindowSlots = 2
	}
	if c.StrideSlots < 1 {
		c.StrideSlots = 1
	}
	if c.StrideSlots >= c.WindowSlots {
		c.StrideSlots = c.WindowSlots - 1
	}
	if c.DenseFillRatio <= 0 || c.DenseFillRatio > 1 {
		c.DenseFillRatio = 0.75
	}
	if c.MaxNotes < 1 {
		c.MaxNotes = DefaultConfig().MaxNotes
	}
	return c
}

// Analyze runs the full pipeline: slot the notes, build and merge the
// partition tree, scan it into candidates, and flatten those into the
// timeline. The chart is assumed to be validated; an empty chart yields
// an empty timeline and no error.
func Analyze(chart *model.Chart, cfg Config) (model.AnalysisResult, error) {
	cfg = cfg.normalized()
	res := model.AnalysisResult{
		Timeline: model.Timeline{},
		KeyCount: chart.KeyCount,
	}

	if chart.NoteCount() == 0 {
		return res, nil
	}
	if chart.KeyCount == 0 {
		return res, errors.Wrap(model.InvalidKeyCountError{KeyCount: 0}, "cannot analyze")
	}
	if chart.NoteCount() > cfg.MaxNotes {
		return res, errors.Wrapf(ErrTooManyNotes, "%d notes, limit %d", chart.NoteCount(), cfg.MaxNotes)
	}

	stream, err := newNoteStream(chart, cfg)
	if err != nil {
		if err == ErrEmptyChart {
			return res, nil
		}
		return res, err
	}

	tree := buildTree(stream, cfg)
	tree.merge()

	cands := analyzeCrossSegment(stream, tree, cfg)
	ta := newTimingAnalyzer(stream.Slots())
	res.Timeline = flatten(cands, stream, ta)
	return res, nil
}

// AnalyzeDefault is Analyze with DefaultConfig.
func AnalyzeDefault(chart *model.Chart) (model.AnalysisResult, error) {
	return Analyze(chart, DefaultConfig())
}
