// Package osu converts osu! beatmaps (.osu, file format v14) to and from
// charts. Mania maps (Mode 3) convert directly; taiko maps (Mode 1) are
// rearranged onto four lanes. Other modes are rejected.
package osu

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	modeTaiko = 1
	modeMania = 3

	typeCircle  = 1
	typeSlider  = 2
	typeSpinner = 8
	typeHold    = 128

	soundWhistle = 2
	soundFinish  = 4
	soundClap    = 8
)

// beatmap is the raw parse of an .osu file, before any mode-specific
// conversion.
type beatmap struct {
	mode              int
	audioFilename     string
	audioLeadInMs     int64
	previewTimeMs     int64
	title             string
	titleUnicode      string
	artist            string
	artistUnicode     string
	creator           string
	version           string
	source            string
	tags              string
	circleSize        float64
	overallDifficulty float64
	background        string
	timingPoints      []timingPoint
	hitObjects        []hitObject
}

type timingPoint struct {
	timeMs      float64
	beatLength  float64
	meter       int
	uninherited bool
}

type hitObject struct {
	x      int
	timeMs int
	kind   int
	sound  int
	endMs  int // holds only
}

type section int

const (
	sectionNone section = iota
	sectionGeneral
	sectionEditor
	sectionMetadata
	sectionDifficulty
	sectionEvents
	sectionTimingPoints
	sectionHitObjects
)

var sectionNames = map[string]section{
	"[General]":      sectionGeneral,
	"[Editor]":       sectionEditor,
	"[Metadata]":     sectionMetadata,
	"[Difficulty]":   sectionDifficulty,
	"[Events]":       sectionEvents,
	"[TimingPoints]": sectionTimingPoints,
	"[HitObjects]":   sectionHitObjects,
}

func parseBeatmap(data []byte) (*beatmap, error) {
	// Mode defaults to mania: old mania maps sometimes omit the field.
	bm := &beatmap{mode: modeMania, circleSize: 4}

	cur := sectionNone
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if s, ok := sectionNames[line]; ok {
			cur = s
			continue
		}
		switch cur {
		case sectionGeneral, sectionMetadata, sectionDifficulty:
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			bm.setField(cur, strings.TrimSpace(key), strings.TrimSpace(value))
		case sectionEvents:
			bm.parseEvent(line)
		case sectionTimingPoints:
			bm.parseTimingPoint(line)
		case sectionHitObjects:
			bm.parseHitObject(line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read beatmap lines")
	}
	return bm, nil
}

func (bm *beatmap) setField(sec section, key, value string) {
	switch sec {
	case sectionGeneral:
		switch key {
		case "AudioFilename":
			bm.audioFilename = value
		case "AudioLeadIn":
			bm.audioLeadInMs, _ = strconv.ParseInt(value, 10, 64)
		case "PreviewTime":
			bm.previewTimeMs, _ = strconv.ParseInt(value, 10, 64)
		case "Mode":
			bm.mode, _ = strconv.Atoi(value)
		}
	case sectionMetadata:
		switch key {
		case "Title":
			bm.title = value
		case "TitleUnicode":
			bm.titleUnicode = value
		case "Artist":
			bm.artist = value
		case "ArtistUnicode":
			bm.artistUnicode = value
		case "Creator":
			bm.creator = value
		case "Version":
			bm.version = value
		case "Source":
			bm.source = value
		case "Tags":
			bm.tags = value
		}
	case sectionDifficulty:
		switch key {
		case "CircleSize":
			bm.circleSize, _ = strconv.ParseFloat(value, 64)
		case "OverallDifficulty":
			bm.overallDifficulty, _ = strconv.ParseFloat(value, 64)
		}
	}
}

// parseEvent only cares about the background image line: 0,0,"bg.jpg",0,0
func (bm *beatmap) parseEvent(line string) {
	if !strings.HasPrefix(line, `0,0,"`) {
		return
	}
	rest := strings.TrimPrefix(line, `0,0,"`)
	if end := strings.IndexByte(rest, '"'); end >= 0 {
		bm.background = rest[:end]
	}
}

// parseTimingPoint reads time,beatLength,meter,sampleSet,sampleIndex,
// volume,uninherited,effects. Older formats omit trailing fields.
func (bm *beatmap) parseTimingPoint(line string) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return
	}
	timeMs, err1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	beatLength, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err1 != nil || err2 != nil {
		return
	}

	tp := timingPoint{timeMs: timeMs, beatLength: beatLength, meter: 4}
	if len(fields) > 2 {
		if m, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil && m > 0 {
			tp.meter = m
		}
	}
	if len(fields) > 6 {
		tp.uninherited = strings.TrimSpace(fields[6]) == "1"
	} else {
		tp.uninherited = beatLength > 0
	}
	bm.timingPoints = append(bm.timingPoints, tp)
}

// parseHitObject reads x,y,time,type,hitSound[,objectParams,hitSample].
// Mania holds carry their end time in the sixth field, before the first
// colon.
func (bm *beatmap) parseHitObject(line string) {
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return
	}
	x, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
	timeMs, err2 := strconv.Atoi(strings.TrimSpace(fields[2]))
	kind, err3 := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err1 != nil || err2 != nil || err3 != nil {
		return
	}

	obj := hitObject{x: x, timeMs: timeMs, kind: kind}
	obj.sound, _ = strconv.Atoi(strings.TrimSpace(fields[4]))
	if kind&typeHold != 0 && len(fields) > 5 {
		endStr, _, _ := strings.Cut(strings.TrimSpace(fields[5]), ":")
		if end, err := strconv.Atoi(endStr); err == nil {
			obj.endMs = end
		}
	}
	bm.hitObjects = append(bm.hitObjects, obj)
}
