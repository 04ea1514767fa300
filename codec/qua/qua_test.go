package qua

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrhythm/rox/model"
)

const basicQua = `AudioFile: audio.mp3
SongPreviewTime: 5000
BackgroundFile: bg.jpg
MapId: 1234
MapSetId: 567
Mode: Keys4
Title: Starlight
Artist: Comet
Source: Album
Tags: electro fast
Creator: charter
DifficultyName: Insane
BPMDoesNotAffectScrollVelocity: true
InitialScrollVelocity: 1
TimingPoints:
- StartTime: 0
  Bpm: 174
- StartTime: 4000
  Bpm: 87
  Signature: Triple
SliderVelocities:
- StartTime: 2000
  Multiplier: 0.5
HitObjects:
- StartTime: 0
  Lane: 1
- StartTime: 250
  Lane: 2
- StartTime: 500
  Lane: 3
  EndTime: 1000
- StartTime: 750
  Lane: 4
`

func TestDecode(t *testing.T) {
	assert := assert.New(t)
	chart, err := Decode([]byte(basicQua))
	assert.NoError(err)
	assert.NoError(chart.Validate())

	assert.Equal(uint8(4), chart.KeyCount)
	assert.Equal("Starlight", chart.Metadata.Title)
	assert.Equal("Comet", chart.Metadata.Artist)
	assert.Equal("charter", chart.Metadata.Creator)
	assert.Equal("Insane", chart.Metadata.DifficultyName)
	assert.Equal("audio.mp3", chart.Metadata.AudioFile)
	assert.Equal("bg.jpg", chart.Metadata.BackgroundFile)
	assert.Equal("Album", chart.Metadata.Source)
	assert.Equal("electro fast", chart.Metadata.Tags)
	assert.Equal(int64(5_000_000), chart.Metadata.PreviewTimeUs)
	assert.Equal("1234", chart.Metadata.ChartID)
	assert.Equal("567", chart.Metadata.ChartsetID)

	bpm := model.BpmChange(4_000_000, 87)
	bpm.Signature = 3
	assert.Equal([]model.TimingPoint{
		model.BpmChange(0, 174),
		model.SvChange(2_000_000, 0.5),
		bpm,
	}, chart.TimingPoints)

	assert.Equal([]model.Note{
		model.Tap(0, 0),
		model.Tap(250_000, 1),
		model.Hold(500_000, 2, 500_000),
		model.Tap(750_000, 3),
	}, chart.Notes)
}

func TestDecodeKeys7(t *testing.T) {
	assert := assert.New(t)
	chart, err := Decode([]byte("Mode: Keys7\nTitle: Wide\n"))
	assert.NoError(err)
	assert.Equal(uint8(7), chart.KeyCount)
}

func TestDecodeDefaultsTo4K(t *testing.T) {
	assert := assert.New(t)
	chart, err := Decode([]byte("Title: NoMode\n"))
	assert.NoError(err)
	assert.Equal(uint8(4), chart.KeyCount)
}

func TestDecodeRejectsUnknownMode(t *testing.T) {
	assert := assert.New(t)
	_, err := Decode([]byte("Mode: Keys8\n"))
	assert.ErrorContains(err, "unsupported qua mode")
}

func TestDecodeRejectsMalformedYaml(t *testing.T) {
	assert := assert.New(t)
	_, err := Decode([]byte("Mode: [unclosed\n"))
	assert.Error(err)
}

func TestLaneZeroStaysInBounds(t *testing.T) {
	assert := assert.New(t)
	chart, err := Decode([]byte("HitObjects:\n- StartTime: 100\n  Lane: 0\n"))
	assert.NoError(err)
	assert.Equal([]model.Note{model.Tap(100_000, 0)}, chart.Notes)
}

func TestEncodeDecodeRoundtrip(t *testing.T) {
	assert := assert.New(t)
	chart := model.NewChart(7)
	chart.Metadata.Title = "Roundtrip"
	chart.Metadata.Artist = "Composer"
	chart.Metadata.Creator = "charter"
	chart.Metadata.DifficultyName = "Extra"
	chart.Metadata.AudioFile = "song.mp3"
	chart.Metadata.BackgroundFile = "bg.png"
	chart.Metadata.Source = "Album"
	chart.Metadata.Tags = "dnb"
	chart.Metadata.PreviewTimeUs = 42_000_000
	chart.TimingPoints = []model.TimingPoint{
		model.BpmChange(0, 170),
		model.SvChange(10_000_000, 1.5),
	}
	chart.Notes = []model.Note{
		model.Tap(0, 0),
		model.Hold(500_000, 3, 1_000_000),
		model.Tap(2_000_000, 6),
	}

	data, err := Encode(chart)
	assert.NoError(err)
	decoded, err := Decode(data)
	assert.NoError(err)

	assert.Equal(chart.KeyCount, decoded.KeyCount)
	assert.Equal(chart.Metadata.Title, decoded.Metadata.Title)
	assert.Equal(chart.Metadata.Artist, decoded.Metadata.Artist)
	assert.Equal(chart.Metadata.Creator, decoded.Metadata.Creator)
	assert.Equal(chart.Metadata.DifficultyName, decoded.Metadata.DifficultyName)
	assert.Equal(chart.Metadata.AudioFile, decoded.Metadata.AudioFile)
	assert.Equal(chart.Metadata.BackgroundFile, decoded.Metadata.BackgroundFile)
	assert.Equal(chart.Metadata.Source, decoded.Metadata.Source)
	assert.Equal(chart.Metadata.Tags, decoded.Metadata.Tags)
	assert.Equal(chart.Metadata.PreviewTimeUs, decoded.Metadata.PreviewTimeUs)
	assert.Equal(chart.TimingPoints, decoded.TimingPoints)
	assert.Equal(chart.Notes, decoded.Notes)
}

func TestEncodeWritesModeAndLanes(t *testing.T) {
	assert := assert.New(t)
	chart := model.NewChart(7)
	chart.TimingPoints = []model.TimingPoint{model.BpmChange(0, 120)}
	chart.Notes = []model.Note{model.Tap(0, 6)}

	data, err := Encode(chart)
	assert.NoError(err)
	text := string(data)
	assert.Contains(text, "Mode: Keys7")
	assert.Contains(text, "Lane: 7")
	assert.Contains(text, "BPMDoesNotAffectScrollVelocity: true")
	assert.Contains(text, "InitialScrollVelocity: 1")
}

func TestEncodeMinesBecomeTaps(t *testing.T) {
	assert := assert.New(t)
	chart := model.NewChart(4)
	chart.TimingPoints = []model.TimingPoint{model.BpmChange(0, 120)}
	chart.Notes = []model.Note{
		model.Mine(0, 0),
		model.Burst(500_000, 1, 250_000),
	}

	data, err := Encode(chart)
	assert.NoError(err)
	decoded, err := Decode(data)
	assert.NoError(err)
	assert.Equal([]model.Note{
		model.Tap(0, 0),
		model.Tap(500_000, 1),
	}, decoded.Notes)
}
