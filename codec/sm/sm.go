// Package sm converts StepMania simfiles (.sm) to and from charts.
//
// Simfiles store notes on a beat grid (48 rows per beat, 192 per
// measure) relative to a BPM schedule, so both directions walk the BPM
// segments to translate between beats and microseconds. Stops are
// parsed but not folded into note times.
package sm

import (
	"sort"
	"strconv"
	"strings"
)

const (
	rowsPerBeat    = 48.0
	rowsPerMeasure = 192.0
	fallbackBpm    = 120.0
)

const (
	charEmpty    = '0'
	charTap      = '1'
	charHoldHead = '2'
	charTail     = '3'
	charRollHead = '4'
	charMine     = 'M'
	charLift     = 'L'
	charFake     = 'F'
)

// simfile is the raw parse of an .sm file.
type simfile struct {
	title          string
	subtitle       string
	artist         string
	titleTranslit  string
	artistTranslit string
	credit         string
	music          string
	banner         string
	background     string
	sampleStart    float64
	sampleLength   float64
	offsetUs       int64
	bpms           []timedBpm
	stops          []timedStop
	charts         []chartSection
}

// timedBpm is a BPM change with its position already resolved to
// microseconds.
type timedBpm struct {
	timeUs int64
	bpm    float64
}

type timedStop struct {
	timeUs     int64
	durationUs int64
}

// chartSection is one #NOTES block.
type chartSection struct {
	stepsType   string
	description string
	difficulty  string
	meter       int
	columns     int
	notes       []timedNote
}

type timedNote struct {
	timeUs   int64
	column   uint8
	noteChar byte
}

func parseSimfile(data []byte) *simfile {
	content := string(data)

	sim := &simfile{}
	sim.title, _ = tagValue(content, "#TITLE:")
	sim.subtitle, _ = tagValue(content, "#SUBTITLE:")
	sim.artist, _ = tagValue(content, "#ARTIST:")
	sim.titleTranslit, _ = tagValue(content, "#TITLETRANSLIT:")
	sim.artistTranslit, _ = tagValue(content, "#ARTISTTRANSLIT:")
	sim.credit, _ = tagValue(content, "#CREDIT:")
	sim.music, _ = tagValue(content, "#MUSIC:")
	sim.banner, _ = tagValue(content, "#BANNER:")
	sim.background, _ = tagValue(content, "#BACKGROUND:")
	sim.sampleStart, _ = floatTag(content, "#SAMPLESTART:")
	sim.sampleLength, _ = floatTag(content, "#SAMPLELENGTH:")
	if offset, ok := floatTag(content, "#OFFSET:"); ok {
		sim.offsetUs = int64(offset * 1e6)
	}

	sim.bpms = bpmSchedule(parsePairs(content, "#BPMS:"))
	for _, p := range parsePairs(content, "#STOPS:") {
		sim.stops = append(sim.stops, timedStop{
			timeUs:     rowToUs(p[0]*rowsPerBeat, sim.bpms),
			durationUs: int64(p[1] * 1e6),
		})
	}

	for _, section := range strings.Split(content, "#NOTES:")[1:] {
		if end := strings.IndexByte(section, '#'); end >= 0 {
			section = section[:end]
		}
		if chart, ok := parseChartSection(section, sim.bpms); ok {
			sim.charts = append(sim.charts, chart)
		}
	}
	return sim
}

// tagValue extracts a `#TAG:value;` field.
func tagValue(content, tag string) (string, bool) {
	start := strings.Index(content, tag)
	if start < 0 {
		return "", false
	}
	rest := content[start+len(tag):]
	end := strings.IndexByte(rest, ';')
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func floatTag(content, tag string) (float64, bool) {
	value, ok := tagValue(content, tag)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parsePairs reads `beat=value,beat=value` lists, sorted by beat.
func parsePairs(content, tag string) [][2]float64 {
	value, ok := tagValue(content, tag)
	if !ok {
		return nil
	}
	var pairs [][2]float64
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		beatStr, valueStr, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		beat, err1 := strconv.ParseFloat(strings.TrimSpace(beatStr), 64)
		v, err2 := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pairs = append(pairs, [2]float64{beat, v})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}

// bpmSchedule resolves (beat, bpm) pairs to microsecond positions,
// walking each segment at the preceding tempo. A 120 BPM point is
// inserted at time zero when the file has none.
func bpmSchedule(pairs [][2]float64) []timedBpm {
	var out []timedBpm
	var timeUs int64
	beat := 0.0
	bpm := fallbackBpm
	for _, p := range pairs {
		if p[0] > beat {
			timeUs += rowsToUs((p[0]-beat)*rowsPerBeat, bpm)
			beat = p[0]
		}
		out = append(out, timedBpm{timeUs: timeUs, bpm: p[1]})
		bpm = p[1]
	}
	if len(out) == 0 || out[0].timeUs > 0 {
		out = append([]timedBpm{{timeUs: 0, bpm: fallbackBpm}}, out...)
	}
	return out
}

func rowsToUs(rows, bpm float64) int64 {
	beats := rows / rowsPerBeat
	seconds := beats / (bpm / 60)
	return int64(seconds * 1e6)
}

func usToRows(us int64, bpm float64) float64 {
	seconds := float64(us) / 1e6
	return seconds * (bpm / 60) * rowsPerBeat
}

// rowToUs walks the BPM schedule to place a grid row in time.
func rowToUs(row float64, bpms []timedBpm) int64 {
	if len(bpms) == 0 {
		return rowsToUs(row, fallbackBpm)
	}
	var timeUs int64
	curRow := 0.0
	bpm := bpms[0].bpm
	for i := 1; i < len(bpms); i++ {
		bpmRow := curRow + usToRows(bpms[i].timeUs-timeUs, bpm)
		if bpmRow >= row {
			break
		}
		timeUs = bpms[i].timeUs
		curRow = bpmRow
		bpm = bpms[i].bpm
	}
	return timeUs + rowsToUs(row-curRow, bpm)
}

func columnsForStepsType(stepsType string) int {
	switch stepsType {
	case "dance-single", "pump-single":
		return 4
	case "dance-solo", "pump-halfdouble":
		return 6
	case "dance-double", "dance-couple", "pump-double":
		return 8
	default:
		return 4
	}
}

// parseChartSection reads one #NOTES block: five header lines
// (stepstype, description, difficulty, meter, radar values) followed by
// measures of note rows separated by commas and terminated by a
// semicolon.
func parseChartSection(content string, bpms []timedBpm) (chartSection, bool) {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var header []string
	idx := 0
	for idx < len(lines) && len(header) < 5 {
		line := lines[idx]
		idx++
		if line == "" {
			continue
		}
		header = append(header, strings.TrimSuffix(line, ":"))
	}
	if len(header) < 5 {
		return chartSection{}, false
	}

	chart := chartSection{
		stepsType:   header[0],
		description: header[1],
		difficulty:  header[2],
		meter:       1,
	}
	if m, err := strconv.Atoi(header[3]); err == nil {
		chart.meter = m
	}
	chart.columns = columnsForStepsType(chart.stepsType)

	measureNum := 0
	var measure []string
	flush := func() {
		chart.appendMeasure(measure, measureNum, bpms)
		measure = measure[:0]
		measureNum++
	}
	for ; idx < len(lines); idx++ {
		line := lines[idx]
		if pos := strings.Index(line, "//"); pos >= 0 {
			line = strings.TrimSpace(line[:pos])
		}
		if line == "" {
			continue
		}
		if line == ";" {
			flush()
			return chart, true
		}
		if line == "," {
			flush()
			continue
		}
		if isNoteLine(line) {
			if len(line) > chart.columns {
				chart.columns = len(line)
			}
			measure = append(measure, line)
		}
	}
	// Missing terminator; keep whatever parsed.
	flush()
	return chart, true
}

func isNoteLine(line string) bool {
	if line == "" {
		return false
	}
	for _, c := range line {
		switch c {
		case '0', '1', '2', '3', '4', 'M', 'm', 'L', 'l', 'F', 'f':
		default:
			return false
		}
	}
	return true
}

// appendMeasure places each row of the measure on the 192 row grid and
// resolves it to microseconds.
func (c *chartSection) appendMeasure(lines []string, measureNum int, bpms []timedBpm) {
	if len(lines) == 0 {
		return
	}
	rowsPerLine := rowsPerMeasure / float64(len(lines))
	for lineIdx, line := range lines {
		row := float64(measureNum)*rowsPerMeasure + float64(lineIdx)*rowsPerLine
		timeUs := rowToUs(row, bpms)
		for col, ch := range line {
			nc := normalizeNoteChar(ch)
			if nc == charEmpty || nc == charFake {
				continue
			}
			c.notes = append(c.notes, timedNote{timeUs: timeUs, column: uint8(col), noteChar: nc})
		}
	}
}

func normalizeNoteChar(c rune) byte {
	switch c {
	case 'm':
		return charMine
	case 'l':
		return charLift
	case 'f':
		return charFake
	default:
		return byte(c)
	}
}
