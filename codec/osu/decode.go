package osu

import (
	"github.com/pkg/errors"

	"github.com/openrhythm/rox/model"
)

var ErrUnsupportedMode = errors.New("only osu! taiko (1) and mania (3) modes are supported")

func Decode(data []byte) (*model.Chart, error) {
	bm, err := parseBeatmap(data)
	if err != nil {
		return nil, err
	}
	switch bm.mode {
	case modeMania:
		return bm.toManiaChart()
	case modeTaiko:
		return bm.toTaikoChart(), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedMode, "mode %d", bm.mode)
	}
}

func (bm *beatmap) toManiaChart() (*model.Chart, error) {
	keyCount := int(bm.circleSize)
	if keyCount <= 0 {
		return nil, errors.Errorf("invalid CircleSize %g", bm.circleSize)
	}

	chart := model.NewChart(uint8(keyCount))
	bm.fillMetadata(chart)
	chart.Metadata.DifficultyValue = bm.overallDifficulty
	chart.Metadata.AudioOffsetUs = bm.audioLeadInMs * 1000
	chart.Metadata.Source = bm.source
	chart.Metadata.Tags = bm.tags

	for _, tp := range bm.timingPoints {
		timeUs := int64(tp.timeMs * 1000)
		if tp.uninherited {
			if tp.beatLength <= 0 {
				continue
			}
			p := model.BpmChange(timeUs, 60_000/tp.beatLength)
			p.Signature = uint8(tp.meter)
			chart.TimingPoints = append(chart.TimingPoints, p)
		} else if tp.beatLength < 0 {
			chart.TimingPoints = append(chart.TimingPoints, model.SvChange(timeUs, -100/tp.beatLength))
		}
	}

	for _, obj := range bm.hitObjects {
		column := columnForX(obj.x, keyCount)
		timeUs := int64(obj.timeMs) * 1000
		if obj.kind&typeHold != 0 {
			if duration := int64(obj.endMs-obj.timeMs) * 1000; duration > 0 {
				chart.Notes = append(chart.Notes, model.Hold(timeUs, column, duration))
				continue
			}
		}
		chart.Notes = append(chart.Notes, model.Tap(timeUs, column))
	}

	chart.SortNotes()
	chart.SortTimingPoints()
	return chart, nil
}

// toTaikoChart lays taiko drums onto four lanes: dons (centre hits) on
// the outer columns 0 and 3, kats (rim hits) on the inner columns 1 and
// 2, alternating within each pair. Big notes hit both columns of the
// pair at once. Spinners are dropped.
func (bm *beatmap) toTaikoChart() *model.Chart {
	chart := model.NewChart(4)
	bm.fillMetadata(chart)

	for _, tp := range bm.timingPoints {
		if !tp.uninherited || tp.beatLength <= 0 {
			continue
		}
		timeUs := int64(tp.timeMs * 1000)
		chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(timeUs, 60_000/tp.beatLength))
	}
	if len(chart.TimingPoints) == 0 {
		chart.TimingPoints = append(chart.TimingPoints, model.BpmChange(0, 120))
	}

	drums := drumLanes{don: [2]uint8{0, 3}, kat: [2]uint8{1, 2}}
	for _, obj := range bm.hitObjects {
		if obj.kind&typeSpinner != 0 {
			continue
		}
		timeUs := int64(obj.timeMs) * 1000
		big := obj.sound&soundFinish != 0
		kat := obj.sound&(soundWhistle|soundClap) != 0
		for _, col := range drums.next(kat, big) {
			chart.Notes = append(chart.Notes, model.Tap(timeUs, col))
		}
	}

	chart.SortNotes()
	chart.SortTimingPoints()
	return chart
}

func (bm *beatmap) fillMetadata(chart *model.Chart) {
	title := bm.titleUnicode
	if title == "" {
		title = bm.title
	}
	artist := bm.artistUnicode
	if artist == "" {
		artist = bm.artist
	}
	chart.Metadata.Title = title
	chart.Metadata.Artist = artist
	chart.Metadata.Creator = bm.creator
	chart.Metadata.DifficultyName = bm.version
	chart.Metadata.AudioFile = bm.audioFilename
	chart.Metadata.BackgroundFile = bm.background
	if bm.previewTimeMs > 0 {
		chart.Metadata.PreviewTimeUs = bm.previewTimeMs * 1000
	}
}

// drumLanes alternates single hits across each column pair so rolls
// spread over both hands.
type drumLanes struct {
	don, kat [2]uint8
	donIdx   int
	katIdx   int
}

func (d *drumLanes) next(kat, big bool) []uint8 {
	pair, idx := d.don, &d.donIdx
	if kat {
		pair, idx = d.kat, &d.katIdx
	}
	if big {
		return pair[:]
	}
	col := pair[*idx]
	*idx = (*idx + 1) % 2
	return []uint8{col}
}

// columnForX inverts the mania column packing: osu stores the column as
// an x position inside the 512 unit playfield.
func columnForX(x, keyCount int) uint8 {
	col := x * keyCount / 512
	if col < 0 {
		col = 0
	}
	if col >= keyCount {
		col = keyCount - 1
	}
	return uint8(col)
}
