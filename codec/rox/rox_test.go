package rox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrhythm/rox/constants"
	"github.com/openrhythm/rox/model"
)

func testChart() *model.Chart {
	chart := model.NewChart(7)
	chart.Metadata.Title = "Roundtrip"
	chart.Metadata.Artist = "Codec"
	chart.Metadata.Creator = "someone"
	chart.Metadata.DifficultyName = "Another"
	chart.Metadata.DifficultyValue = 21.5
	chart.Metadata.AudioFile = "audio.mp3"
	chart.Metadata.BackgroundFile = "bg.jpg"
	chart.Metadata.PreviewTimeUs = 42_000_000
	chart.TimingPoints = []model.TimingPoint{
		model.BpmChange(0, 180),
		model.SvChange(5_000_000, 1.2),
		model.BpmChange(10_000_000, 90),
	}
	chart.Notes = []model.Note{
		model.Tap(0, 0),
		model.Tap(62_500, 3),
		model.Hold(125_000, 1, 500_000),
		model.Mine(250_000, 6),
		model.Burst(312_500, 2, 250_000),
		model.Tap(1_000_000, 5),
	}
	return chart
}

func TestRoundtrip(t *testing.T) {
	assert := assert.New(t)
	chart := testChart()

	data, err := Encode(chart)
	assert.NoError(err)

	decoded, err := Decode(data)
	assert.NoError(err)
	assert.Equal(chart, decoded)
}

func TestEncodedFileStartsWithMagic(t *testing.T) {
	assert := assert.New(t)

	data, err := Encode(testChart())
	assert.NoError(err)
	assert.GreaterOrEqual(len(data), 4)
	assert.Equal(constants.RoxMagic[:], data[:4])
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	assert := assert.New(t)

	data, err := Encode(testChart())
	assert.NoError(err)
	data[0] = 'X'

	_, err = Decode(data)
	assert.ErrorIs(err, ErrBadMagic)
}

func TestDecodeRejectsShortData(t *testing.T) {
	assert := assert.New(t)

	for _, data := range [][]byte{nil, {}, {0x52}, {0x52, 0x4F, 0x58}} {
		_, err := Decode(data)
		assert.ErrorIs(err, ErrBadMagic)
	}
}

func TestDecodeRejectsGarbagePayload(t *testing.T) {
	assert := assert.New(t)

	data := append(constants.RoxMagic[:], 0xDE, 0xAD, 0xBE, 0xEF)
	_, err := Decode(data)
	assert.Error(err)
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	assert := assert.New(t)

	chart := testChart()
	chart.Version = constants.RoxVersion + 1
	data, err := Encode(chart)
	assert.NoError(err)

	_, err = Decode(data)
	assert.ErrorIs(err, ErrUnsupportedVersion)
}

func TestEmptyChartRoundtrip(t *testing.T) {
	assert := assert.New(t)

	chart := model.NewChart(4)
	data, err := Encode(chart)
	assert.NoError(err)

	decoded, err := Decode(data)
	assert.NoError(err)
	assert.Equal(uint8(4), decoded.KeyCount)
	assert.Empty(decoded.Notes)
}

func TestNegativeTimesSurviveRoundtrip(t *testing.T) {
	assert := assert.New(t)

	chart := model.NewChart(4)
	chart.TimingPoints = []model.TimingPoint{model.BpmChange(-500_000, 120)}
	chart.Notes = []model.Note{
		model.Tap(-500_000, 0),
		model.Tap(-250_000, 1),
		model.Tap(0, 2),
	}

	data, err := Encode(chart)
	assert.NoError(err)
	decoded, err := Decode(data)
	assert.NoError(err)
	assert.Equal(chart.Notes, decoded.Notes)
}

func TestHitsoundsSurviveRoundtrip(t *testing.T) {
	assert := assert.New(t)

	chart := model.NewChart(4)
	chart.Hitsounds = []string{"kick.wav", "snare.wav"}
	chart.TimingPoints = []model.TimingPoint{model.BpmChange(0, 120)}
	n := model.Tap(0, 0)
	n.HitsoundIndex = 1
	chart.Notes = []model.Note{n}

	data, err := Encode(chart)
	assert.NoError(err)
	decoded, err := Decode(data)
	assert.NoError(err)
	assert.Equal([]string{"kick.wav", "snare.wav"}, decoded.Hitsounds)
	assert.Equal(int16(1), decoded.Notes[0].HitsoundIndex)
}

func TestEncodeDoesNotMutateTheChart(t *testing.T) {
	assert := assert.New(t)

	chart := testChart()
	times := make([]int64, 0, len(chart.Notes))
	for _, n := range chart.Notes {
		times = append(times, n.TimeUs)
	}

	_, err := Encode(chart)
	assert.NoError(err)
	for i, n := range chart.Notes {
		assert.Equal(times[i], n.TimeUs)
	}
}

func TestDeltaEncodeRoundtrip(t *testing.T) {
	assert := assert.New(t)

	notes := []model.Note{
		model.Tap(1_000, 0),
		model.Tap(1_500, 1),
		model.Tap(4_000, 2),
		model.Tap(4_000, 3),
	}

	encoded := deltaEncode(notes)
	assert.Equal(int64(1_000), encoded[0].TimeUs)
	assert.Equal(int64(500), encoded[1].TimeUs)
	assert.Equal(int64(2_500), encoded[2].TimeUs)
	assert.Equal(int64(0), encoded[3].TimeUs)

	decoded := deltaDecode(encoded)
	assert.Equal(notes, decoded)
}

func TestRepetitiveChartsCompressWell(t *testing.T) {
	assert := assert.New(t)

	chart := model.NewChart(4)
	chart.TimingPoints = []model.TimingPoint{model.BpmChange(0, 200)}
	for i := 0; i < 10_000; i++ {
		chart.Notes = append(chart.Notes, model.Tap(int64(i)*75_000, uint8(i%4)))
	}

	data, err := Encode(chart)
	assert.NoError(err)
	// 10k notes at ~40 bytes of gob each would be ~400KB uncompressed.
	assert.Less(len(data), 100_000)

	decoded, err := Decode(data)
	assert.NoError(err)
	assert.Len(decoded.Notes, 10_000)
	assert.Equal(int64(9_999*75_000), decoded.Notes[9_999].TimeUs)
}

func TestVariousKeyCounts(t *testing.T) {
	assert := assert.New(t)

	for _, kc := range []uint8{1, 4, 7, 10, 18} {
		chart := model.NewChart(kc)
		chart.TimingPoints = []model.TimingPoint{model.BpmChange(0, 120)}
		for c := uint8(0); c < kc; c++ {
			chart.Notes = append(chart.Notes, model.Tap(int64(c)*10_000, c))
		}

		data, err := Encode(chart)
		assert.NoError(err)
		decoded, err := Decode(data)
		assert.NoError(err)
		assert.Equal(kc, decoded.KeyCount)
		assert.Len(decoded.Notes, int(kc))
	}
}
