// Package qua converts Quaver beatmaps (.qua, a YAML document) to and
// from charts. Quaver stores times in milliseconds and lanes 1-indexed.
package qua

import (
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/openrhythm/rox/model"
)

// quaFile mirrors the on-disk YAML layout of a Quaver beatmap.
type quaFile struct {
	AudioFile                      string              `yaml:"AudioFile"`
	SongPreviewTime                int64               `yaml:"SongPreviewTime"`
	BackgroundFile                 string              `yaml:"BackgroundFile"`
	MapID                          int64               `yaml:"MapId"`
	MapSetID                       int64               `yaml:"MapSetId"`
	Mode                           string              `yaml:"Mode"`
	Title                          string              `yaml:"Title"`
	Artist                         string              `yaml:"Artist"`
	Source                         string              `yaml:"Source"`
	Tags                           string              `yaml:"Tags"`
	Creator                        string              `yaml:"Creator"`
	DifficultyName                 string              `yaml:"DifficultyName"`
	BpmDoesNotAffectScrollVelocity bool                `yaml:"BPMDoesNotAffectScrollVelocity"`
	InitialScrollVelocity          float64             `yaml:"InitialScrollVelocity"`
	TimingPoints                   []quaTimingPoint    `yaml:"TimingPoints"`
	SliderVelocities               []quaSliderVelocity `yaml:"SliderVelocities"`
	HitObjects                     []quaHitObject      `yaml:"HitObjects"`
}

type quaTimingPoint struct {
	StartTime float64 `yaml:"StartTime"`
	Bpm       float64 `yaml:"Bpm"`
	Signature string  `yaml:"Signature,omitempty"`
}

type quaSliderVelocity struct {
	StartTime  float64 `yaml:"StartTime"`
	Multiplier float64 `yaml:"Multiplier"`
}

type quaHitObject struct {
	StartTime float64 `yaml:"StartTime"`
	Lane      uint8   `yaml:"Lane"`
	EndTime   float64 `yaml:"EndTime,omitempty"`
}

// Decode parses a .qua document into a chart.
func Decode(data []byte) (*model.Chart, error) {
	var qua quaFile
	if err := yaml.Unmarshal(data, &qua); err != nil {
		return nil, errors.Wrap(err, "could not parse qua file")
	}
	return qua.toChart()
}

// Encode renders a chart as a .qua document. Quaver has no mine or
// burst lanes, so those notes are written as plain hit objects.
func Encode(chart *model.Chart) ([]byte, error) {
	mode := "Keys4"
	if chart.KeyCount == 7 {
		mode = "Keys7"
	}
	qua := quaFile{
		AudioFile:                      chart.Metadata.AudioFile,
		SongPreviewTime:                chart.Metadata.PreviewTimeUs / 1000,
		BackgroundFile:                 chart.Metadata.BackgroundFile,
		Mode:                           mode,
		Title:                          chart.Metadata.Title,
		Artist:                         chart.Metadata.Artist,
		Source:                         chart.Metadata.Source,
		Tags:                           chart.Metadata.Tags,
		Creator:                        chart.Metadata.Creator,
		DifficultyName:                 chart.Metadata.DifficultyName,
		BpmDoesNotAffectScrollVelocity: true,
		InitialScrollVelocity:          1,
	}

	for _, tp := range chart.TimingPoints {
		startTime := float64(tp.TimeUs) / 1000
		if tp.Inherited {
			qua.SliderVelocities = append(qua.SliderVelocities, quaSliderVelocity{
				StartTime:  startTime,
				Multiplier: tp.ScrollSpeed,
			})
		} else {
			qua.TimingPoints = append(qua.TimingPoints, quaTimingPoint{
				StartTime: startTime,
				Bpm:       tp.Bpm,
			})
		}
	}

	for _, n := range chart.Notes {
		// Quaver lanes are 1-indexed.
		ho := quaHitObject{StartTime: float64(n.TimeUs) / 1000, Lane: n.Column + 1}
		if n.Kind == model.KindHold {
			ho.EndTime = float64(n.EndTimeUs()) / 1000
		}
		qua.HitObjects = append(qua.HitObjects, ho)
	}

	return yaml.Marshal(&qua)
}

func keyCountForMode(mode string) (uint8, error) {
	switch mode {
	case "", "Keys4":
		return 4, nil
	case "Keys7":
		return 7, nil
	default:
		return 0, errors.Errorf("unsupported qua mode %q", mode)
	}
}

func (q *quaFile) toChart() (*model.Chart, error) {
	keyCount, err := keyCountForMode(q.Mode)
	if err != nil {
		return nil, err
	}
	chart := model.NewChart(keyCount)
	chart.Metadata.Title = q.Title
	chart.Metadata.Artist = q.Artist
	chart.Metadata.Creator = q.Creator
	chart.Metadata.DifficultyName = q.DifficultyName
	chart.Metadata.AudioFile = q.AudioFile
	chart.Metadata.BackgroundFile = q.BackgroundFile
	chart.Metadata.Source = q.Source
	chart.Metadata.Tags = q.Tags
	chart.Metadata.PreviewTimeUs = q.SongPreviewTime * 1000
	if q.MapID > 0 {
		chart.Metadata.ChartID = strconv.FormatInt(q.MapID, 10)
	}
	if q.MapSetID > 0 {
		chart.Metadata.ChartsetID = strconv.FormatInt(q.MapSetID, 10)
	}

	for _, tp := range q.TimingPoints {
		point := model.BpmChange(usFromMs(tp.StartTime), tp.Bpm)
		if tp.Signature == "Triple" {
			point.Signature = 3
		}
		chart.TimingPoints = append(chart.TimingPoints, point)
	}
	for _, sv := range q.SliderVelocities {
		chart.TimingPoints = append(chart.TimingPoints, model.SvChange(usFromMs(sv.StartTime), sv.Multiplier))
	}

	for _, ho := range q.HitObjects {
		timeUs := usFromMs(ho.StartTime)
		// Quaver lanes are 1-indexed.
		column := ho.Lane
		if column > 0 {
			column--
		}
		if ho.EndTime != 0 {
			chart.Notes = append(chart.Notes, model.Hold(timeUs, column, usFromMs(ho.EndTime)-timeUs))
		} else {
			chart.Notes = append(chart.Notes, model.Tap(timeUs, column))
		}
	}

	chart.SortNotes()
	chart.SortTimingPoints()
	return chart, nil
}

func usFromMs(ms float64) int64 {
	return int64(ms * 1000)
}
