package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrhythm/rox/model"
)

func TestSlotGroupingByTolerance(t *testing.T) {
	chart := chartOf(4,
		model.Tap(0, 0),
		model.Tap(400, 1),
		model.Tap(900, 2),
		model.Tap(2_500, 0),
	)
	stream, err := newNoteStream(chart, DefaultConfig())

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(stream.Slots(), 2)
	assert.Equal(int64(0), stream.Slots()[0].TimeUs)
	assert.Equal([]uint8{0, 1, 2}, stream.Slots()[0].Columns)
	assert.Equal(3, stream.Slots()[0].NoteCount())
	assert.Equal(int64(2_500), stream.Slots()[1].TimeUs)
	assert.Equal(4, stream.TotalNotes())
	assert.True(stream.Slots()[0].Has(1))
	assert.False(stream.Slots()[1].Has(1))
}

func TestSlotGroupingAnchorsAtFirstOnset(t *testing.T) {
	// 600 and 1200 are each within tolerance of their predecessor but
	// 1200 is outside the tolerance of the slot anchor at 0.
	chart := chartOf(4,
		model.Tap(0, 0),
		model.Tap(600, 1),
		model.Tap(1_200, 2),
	)
	stream, err := newNoteStream(chart, DefaultConfig())

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(stream.Slots(), 2)
	assert.Equal([]uint8{0, 1}, stream.Slots()[0].Columns)
	assert.Equal([]uint8{2}, stream.Slots()[1].Columns)
}

func TestNoteStreamRejectsEmptyChart(t *testing.T) {
	_, err := newNoteStream(model.NewChart(4), DefaultConfig())
	assert.ErrorIs(t, err, ErrEmptyChart)
}

func TestJackGapTracksDensity(t *testing.T) {
	spaced := func(deltaUs int64, count int) *model.Chart {
		var notes []model.Note
		for i := 0; i < count; i++ {
			notes = append(notes, model.Tap(int64(i)*deltaUs, uint8(i%4)))
		}
		return chartOf(4, notes...)
	}

	cases := []struct {
		name    string
		chart   *model.Chart
		wantGap int64
	}{
		{"tracks twice the median", spaced(100_000, 10), 200_000},
		{"clamped below", spaced(2_000, 10), 10_000},
		{"clamped above", spaced(400_000, 10), 250_000},
		{"single slot falls back", chartOf(4, model.Tap(0, 0)), 250_000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stream, err := newNoteStream(c.chart, DefaultConfig())
			assert.NoError(t, err)
			assert.Equal(t, c.wantGap, stream.JackGapUs())
		})
	}
}

func TestPrevGap(t *testing.T) {
	chart := chartOf(4,
		model.Tap(0, 0),
		model.Tap(100_000, 0),
		model.Tap(250_000, 1),
	)
	stream, err := newNoteStream(chart, DefaultConfig())

	assert := assert.New(t)
	assert.NoError(err)

	gap, ok := stream.PrevGap(0, 100_000)
	assert.True(ok)
	assert.Equal(int64(100_000), gap)

	_, ok = stream.PrevGap(0, 0)
	assert.False(ok, "first onset in a column has no predecessor")

	_, ok = stream.PrevGap(1, 250_000)
	assert.False(ok)

	_, ok = stream.PrevGap(7, 100_000)
	assert.False(ok, "columns outside the chart never match")
}

func TestTimingStats(t *testing.T) {
	slots := []Slot{
		{TimeUs: 0},
		{TimeUs: 75_000},
		{TimeUs: 150_000},
		{TimeUs: 300_000},
	}
	ta := newTimingAnalyzer(slots)

	assert := assert.New(t)

	avg, min, max := ta.statsRange(0, 4)
	assert.InDelta(166.6666, avg, 1e-3)
	assert.InDelta(100.0, min, 1e-9)
	assert.InDelta(200.0, max, 1e-9)

	avg, min, max = ta.statsRange(0, 3)
	assert.InDelta(200.0, avg, 1e-9)
	assert.InDelta(200.0, min, 1e-9)
	assert.InDelta(200.0, max, 1e-9)

	// A single slot has no delta to read a tempo from.
	avg, min, max = ta.statsRange(2, 3)
	assert.Equal(0.0, avg)
	assert.Equal(0.0, min)
	assert.Equal(0.0, max)
}

func TestWindowClassifier(t *testing.T) {
	mk := func(rows ...[]uint8) *NoteStream {
		var notes []model.Note
		for i, cols := range rows {
			for _, c := range cols {
				notes = append(notes, model.Tap(int64(i)*60_000, c))
			}
		}
		stream, err := newNoteStream(chartOf(4, notes...), DefaultConfig())
		assert.NoError(t, err)
		return stream
	}

	cases := []struct {
		name string
		rows [][]uint8
		want model.PatternType
	}{
		{"stair singles", [][]uint8{{0}, {1}, {2}, {3}}, model.PatternStream},
		{"anchored singles", [][]uint8{{0}, {0}, {0}, {0}}, model.PatternJack},
		{"spread singles", [][]uint8{{0}, {2}, {0}, {2}}, model.PatternSingle},
		{"jumps with steps", [][]uint8{{0, 1}, {2}, {1, 3}, {0}}, model.PatternJumpstream},
		{"jumps sharing a column", [][]uint8{{0, 1}, {1, 2}, {0, 1}, {1, 2}}, model.PatternChordjack},
		{"hands with steps", [][]uint8{{0, 1, 2}, {3}, {0, 1, 2}, {3}}, model.PatternHandstream},
		{"repeated jump", [][]uint8{{0, 2}, {0, 2}}, model.PatternChordjack},
		{"full chords", [][]uint8{{0, 1, 2, 3}, {0, 1, 2, 3}}, model.PatternQuad},
		{"single jacks into steps", [][]uint8{{0}, {0}, {1}, {2}}, model.PatternTechnical},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stream := mk(c.rows...)
			got := classifyWindow(stream, 0, len(c.rows), DefaultConfig())
			assert.Equal(t, c.want, got)
		})
	}
}
