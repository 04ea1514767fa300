package yrox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrhythm/rox/model"
)

func TestRoundtrip(t *testing.T) {
	assert := assert.New(t)

	chart := model.NewChart(7)
	chart.Metadata.Title = "Yrox Test"
	chart.Metadata.Artist = "Someone"
	chart.TimingPoints = []model.TimingPoint{
		model.BpmChange(0, 174),
		model.SvChange(1_000_000, 0.5),
	}
	chart.Notes = []model.Note{
		model.Tap(0, 6),
		model.Burst(250_000, 0, 125_000),
	}

	encoded, err := Encode(chart)
	assert.NoError(err)

	decoded, err := Decode(encoded)
	assert.NoError(err)
	assert.Equal(chart, decoded)
}

func TestDecodeReadsHandWrittenYAML(t *testing.T) {
	assert := assert.New(t)

	data := []byte(`
version: 1
key_count: 4
metadata:
  title: Manual
timing_points:
  - time_us: 0
    bpm: 120
    signature: 4
notes:
  - time_us: 0
    column: 1
    kind: tap
    hitsound_index: -1
`)

	chart, err := Decode(data)
	assert.NoError(err)
	assert.Equal("Manual", chart.Metadata.Title)
	assert.Equal(uint8(1), chart.Notes[0].Column)
	assert.NoError(chart.Validate())
}

func TestDecodeRejectsMalformedYAML(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode([]byte("{: bad"))
	assert.Error(err)
}
