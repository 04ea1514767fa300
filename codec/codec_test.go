package codec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrhythm/rox/constants"
	"github.com/openrhythm/rox/model"
)

func testChart() *model.Chart {
	chart := model.NewChart(4)
	chart.Metadata.Title = "Registry"
	chart.TimingPoints = []model.TimingPoint{model.BpmChange(0, 120)}
	chart.Notes = []model.Note{model.Tap(0, 0), model.Tap(250_000, 1)}
	return chart
}

func TestForPath(t *testing.T) {
	assert := assert.New(t)
	for path, name := range map[string]string{
		"chart.rox":          "rox",
		"chart.jrox":         "jrox",
		"chart.yrox":         "yrox",
		"songs/chart.osu":    "osu",
		"songs/chart.sm":     "sm",
		"chart.qua":          "qua",
		"week1/hard.json":    "fnf",
		"track.mid":          "midi",
		"track.midi":         "midi",
		"WEIRD/CASING.RoX":   "rox",
		"Song (Mapper).OSU":  "osu",
		"dir.with.dots/a.sm": "sm",
	} {
		c, err := ForPath(path)
		assert.NoError(err, path)
		assert.Equal(name, c.Name(), path)
	}
}

func TestForPathUnknownExtension(t *testing.T) {
	assert := assert.New(t)
	for _, path := range []string{"chart.xyz", "noextension", "chart.rox.bak"} {
		_, err := ForPath(path)
		assert.ErrorIs(err, ErrUnknownFormat, path)
	}
}

func TestExtensions(t *testing.T) {
	assert := assert.New(t)
	assert.Equal([]string{"jrox", "json", "mid", "midi", "osu", "qua", "rox", "sm", "yrox"}, Extensions())
}

func TestDecodeRejectsOversizedFiles(t *testing.T) {
	assert := assert.New(t)
	c, err := ForPath("big.rox")
	assert.NoError(err)
	_, err = c.Decode(make([]byte, constants.MaxFileSize+1))
	assert.ErrorIs(err, ErrFileTooLarge)
}

func TestEncodeUnsupportedForReadOnlyFormats(t *testing.T) {
	assert := assert.New(t)
	for _, path := range []string{"chart.json", "chart.mid", "chart.midi"} {
		c, err := ForPath(path)
		assert.NoError(err)
		_, err = c.Encode(testChart())
		assert.ErrorIs(err, ErrEncodeUnsupported, path)
	}
}

func TestDecodeValidatesChart(t *testing.T) {
	assert := assert.New(t)
	c, err := ForPath("chart.jrox")
	assert.NoError(err)
	// Parses fine but fails validation: key count zero.
	_, err = c.Decode([]byte(`{"version":1,"key_count":0}`))
	assert.Error(err)
}

func TestEncodeRejectsInvalidChart(t *testing.T) {
	assert := assert.New(t)
	chart := testChart()
	chart.Notes = []model.Note{model.Tap(1_000, 0), model.Tap(0, 0)}

	for _, path := range []string{"chart.rox", "chart.osu"} {
		c, err := ForPath(path)
		assert.NoError(err)
		_, err = c.Encode(chart)
		assert.Error(err, path)
	}
}

func TestEncodeFileDecodeFileRoundtrip(t *testing.T) {
	assert := assert.New(t)
	chart := testChart()
	path := filepath.Join(t.TempDir(), "song.rox")

	assert.NoError(EncodeFile(chart, path))
	decoded, err := DecodeFile(path)
	assert.NoError(err)
	assert.Equal(chart, decoded)
}

func TestDecodeFileErrors(t *testing.T) {
	assert := assert.New(t)
	_, err := DecodeFile(filepath.Join(t.TempDir(), "missing.rox"))
	assert.Error(err)

	_, err = DecodeFile("chart.unknown")
	assert.ErrorIs(err, ErrUnknownFormat)

	err = EncodeFile(testChart(), "chart.unknown")
	assert.ErrorIs(err, ErrUnknownFormat)
}
