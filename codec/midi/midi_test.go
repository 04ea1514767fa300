package midi

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/openrhythm/rox/model"
)

func writeSmf(t *testing.T, s *smf.SMF) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	assert.NoError(t, err)
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	assert := assert.New(t)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("Sonata"))
	tr.Add(0, smf.MetaTempo(150))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(960, gomidi.NoteOff(0, 60))
	tr.Add(0, gomidi.NoteOn(0, 61, 100))
	tr.Add(960, gomidi.NoteOff(0, 61))
	tr.Close(0)
	s.Add(tr)

	chart, err := Decode(writeSmf(t, s))
	assert.NoError(err)
	assert.NoError(chart.Validate())
	assert.Equal(uint8(4), chart.KeyCount)
	assert.Equal("Sonata", chart.Metadata.Title)
	assert.Equal([]model.TimingPoint{model.BpmChange(0, 150)}, chart.TimingPoints)
	// 960 ticks is one quarter note: 400ms at 150 BPM.
	assert.Equal([]model.Note{
		model.Tap(0, 0),
		model.Tap(400_000, 1),
	}, chart.Notes)
}

func TestDecodeCollapsesSameColumnChords(t *testing.T) {
	assert := assert.New(t)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(0, gomidi.NoteOn(0, 64, 100))
	tr.Add(0, gomidi.NoteOn(0, 62, 100))
	tr.Close(0)
	s.Add(tr)

	chart, err := Decode(writeSmf(t, s))
	assert.NoError(err)
	assert.Equal([]model.Note{
		model.Tap(0, 0),
		model.Tap(0, 2),
	}, chart.Notes)
}

func TestDecodeSkipsZeroVelocityNoteOns(t *testing.T) {
	assert := assert.New(t)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 80))
	tr.Add(480, gomidi.NoteOn(0, 60, 0))
	tr.Close(0)
	s.Add(tr)

	chart, err := Decode(writeSmf(t, s))
	assert.NoError(err)
	assert.Equal([]model.Note{model.Tap(0, 0)}, chart.Notes)
}

func TestDecodeInsertsFallbackBpm(t *testing.T) {
	assert := assert.New(t)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(960, gomidi.NoteOff(0, 60))
	tr.Close(0)
	s.Add(tr)

	chart, err := Decode(writeSmf(t, s))
	assert.NoError(err)
	assert.Equal([]model.TimingPoint{model.BpmChange(0, 120)}, chart.TimingPoints)
}

func TestDecodePrependsFallbackBeforeLateTempo(t *testing.T) {
	assert := assert.New(t)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(960, smf.MetaTempo(150))
	tr.Close(0)
	s.Add(tr)

	chart, err := Decode(writeSmf(t, s))
	assert.NoError(err)
	// SMF time runs at 120 BPM until the first tempo event.
	assert.Equal([]model.TimingPoint{
		model.BpmChange(0, 120),
		model.BpmChange(500_000, 150),
	}, chart.TimingPoints)
	assert.NoError(chart.Validate())
}

func TestDecodeMergesTracks(t *testing.T) {
	assert := assert.New(t)
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(960)
	var tr1 smf.Track
	tr1.Add(0, smf.MetaTempo(120))
	tr1.Add(0, gomidi.NoteOn(0, 60, 100))
	tr1.Close(0)
	s.Add(tr1)
	var tr2 smf.Track
	tr2.Add(960, gomidi.NoteOn(1, 63, 100))
	tr2.Close(0)
	s.Add(tr2)

	chart, err := Decode(writeSmf(t, s))
	assert.NoError(err)
	assert.Equal([]model.Note{
		model.Tap(0, 0),
		model.Tap(500_000, 3),
	}, chart.Notes)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	assert := assert.New(t)
	_, err := Decode([]byte("not a midi file"))
	assert.Error(err)
}
