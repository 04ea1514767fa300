// Package analysis derives summary statistics from a chart: note density,
// BPM extrema, lane usage and content hashes. Everything here is a pure
// read of the chart.
package analysis

import (
	"math"
	"sort"

	"github.com/openrhythm/rox/model"
)

// Nps is the average notes-per-second over the whole chart.
func Nps(chart *model.Chart) float64 {
	durationS := float64(chart.DurationUs()) / 1_000_000.0
	if durationS <= 0 {
		return 0
	}
	return float64(chart.NoteCount()) / durationS
}

// Density splits the chart into equal time segments and returns the NPS
// of each. Notes at the very end land in the last segment.
func Density(chart *model.Chart, segments int) []float64 {
	if segments <= 0 {
		return nil
	}

	durationUs := chart.DurationUs()
	if durationUs == 0 {
		return make([]float64, segments)
	}

	segmentDurationUs := float64(durationUs) / float64(segments)
	counts := make([]int, segments)
	for _, n := range chart.Notes {
		idx := int(math.Floor(float64(n.TimeUs) / segmentDurationUs))
		if idx > segments-1 {
			idx = segments - 1
		}
		counts[idx]++
	}

	segmentDurationS := segmentDurationUs / 1_000_000.0
	out := make([]float64, segments)
	for i, count := range counts {
		if segmentDurationS > 0 {
			out[i] = float64(count) / segmentDurationS
		}
	}
	return out
}

func sortedNoteTimes(chart *model.Chart) []int64 {
	times := make([]int64, 0, len(chart.Notes))
	for _, n := range chart.Notes {
		times = append(times, n.TimeUs)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

// HighestNps is the peak NPS over a sliding window of windowS seconds.
// The window is anchored at each note in turn and counts the notes in
// (end-window, end].
func HighestNps(chart *model.Chart, windowS float64) float64 {
	windowUs := int64(windowS * 1_000_000.0)
	if windowUs <= 0 || len(chart.Notes) == 0 {
		return 0
	}

	times := sortedNoteTimes(chart)
	maxInWindow := 0
	left := 0
	for right := range times {
		windowStart := times[right] - windowUs
		for left < right && times[left] <= windowStart {
			left++
		}
		if count := right - left + 1; count > maxInWindow {
			maxInWindow = count
		}
	}
	return float64(maxInWindow) / windowS
}

// LowestNps is the minimum NPS over the same sliding window, measured
// from the first note onward. Any inter-note gap wider than the window
// means some window is empty, so the answer is 0.
func LowestNps(chart *model.Chart, windowS float64) float64 {
	windowUs := int64(windowS * 1_000_000.0)
	if windowUs <= 0 || len(chart.Notes) == 0 {
		return 0
	}

	times := sortedNoteTimes(chart)
	firstNoteTime := times[0]
	for i := 1; i < len(times); i++ {
		if times[i]-times[i-1] > windowUs {
			return 0
		}
	}

	minInWindow := -1
	left := 0
	for right := range times {
		windowStart := times[right] - windowUs
		if windowStart < firstNoteTime {
			continue
		}
		for left < right && times[left] <= windowStart {
			left++
		}
		if count := right - left + 1; minInWindow < 0 || count < minInWindow {
			minInWindow = count
		}
	}
	if minInWindow < 0 {
		return 0
	}
	return float64(minInWindow) / windowS
}

// HighestDrainTime is the longest stretch (in seconds) where the
// 1-second NPS stays at or above 90% of the chart's peak, sampled every
// 100ms.
func HighestDrainTime(chart *model.Chart) float64 {
	peak := HighestNps(chart, 1.0)
	if peak <= 0 {
		return 0
	}
	durationUs := chart.DurationUs()
	if durationUs <= 0 {
		return 0
	}

	const scanStepUs = 100_000
	const windowSizeUs = 1_000_000
	threshold := peak * 0.9

	times := sortedNoteTimes(chart)
	maxTicks, curTicks := 0, 0
	left, right := 0, 0
	for t := int64(0); t <= durationUs; t += scanStepUs {
		windowStart := t - windowSizeUs
		if windowStart < 0 {
			windowStart = 0
		}
		for right < len(times) && times[right] <= t {
			right++
		}
		for left < right && times[left] < windowStart {
			left++
		}
		// The window is exactly one second, so the count is the NPS.
		if float64(right-left) >= threshold {
			curTicks++
		} else {
			if curTicks > maxTicks {
				maxTicks = curTicks
			}
			curTicks = 0
		}
	}
	if curTicks > maxTicks {
		maxTicks = curTicks
	}
	return float64(maxTicks) * scanStepUs / 1_000_000.0
}

// BpmMin is the lowest BPM among non-inherited timing points, 0 when
// there are none.
func BpmMin(chart *model.Chart) float64 {
	min, found := 0.0, false
	for _, tp := range chart.TimingPoints {
		if tp.Inherited {
			continue
		}
		if !found || tp.Bpm < min {
			min = tp.Bpm
			found = true
		}
	}
	return min
}

// BpmMax is the highest BPM among non-inherited timing points, 0 when
// there are none.
func BpmMax(chart *model.Chart) float64 {
	max, found := 0.0, false
	for _, tp := range chart.TimingPoints {
		if tp.Inherited {
			continue
		}
		if !found || tp.Bpm > max {
			max = tp.Bpm
			found = true
		}
	}
	return max
}

// BpmMode is the BPM active for the longest total time. BPMs are rounded
// to two decimals before bucketing so float noise does not split a
// steady tempo; the last BPM extends to the chart's end. Ties resolve to
// the lowest BPM.
func BpmMode(chart *model.Chart) float64 {
	durationUs := chart.DurationUs()
	if durationUs == 0 {
		return 0
	}

	points := make([]model.TimingPoint, 0, len(chart.TimingPoints))
	for _, tp := range chart.TimingPoints {
		if !tp.Inherited {
			points = append(points, tp)
		}
	}
	if len(points) == 0 {
		return 0
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].TimeUs < points[j].TimeUs })

	durations := map[float64]float64{}
	for i, tp := range points {
		nextTime := durationUs
		if i+1 < len(points) {
			nextTime = points[i+1].TimeUs
		}
		start := clampInt64(tp.TimeUs, 0, durationUs)
		end := clampInt64(nextTime, 0, durationUs)
		if end > start {
			key := math.Round(tp.Bpm*100) / 100
			durations[key] += float64(end - start)
		}
	}

	keys := make([]float64, 0, len(durations))
	for k := range durations {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	best, bestDur := 0.0, -1.0
	for _, k := range keys {
		if durations[k] > bestDur {
			best, bestDur = k, durations[k]
		}
	}
	return best
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Polyphony is the chord-size histogram: how many moments hold exactly 1
// note, 2 notes, and so on. Mines do not press keys and are skipped;
// clustering is by exact timestamp.
func Polyphony(chart *model.Chart) map[int]int {
	dist := map[int]int{}
	if len(chart.Notes) == 0 {
		return dist
	}

	times := make([]int64, 0, len(chart.Notes))
	for _, n := range chart.Notes {
		if n.IsMine() {
			continue
		}
		times = append(times, n.TimeUs)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	clusterSize := 0
	for i, t := range times {
		if i > 0 && t != times[i-1] {
			dist[clusterSize]++
			clusterSize = 0
		}
		clusterSize++
	}
	if clusterSize > 0 {
		dist[clusterSize]++
	}
	return dist
}

// LaneBalance counts playable notes per column. Mines are skipped.
func LaneBalance(chart *model.Chart) []uint32 {
	counts := make([]uint32, chart.KeyCount)
	for _, n := range chart.Notes {
		if n.IsMine() {
			continue
		}
		if int(n.Column) < len(counts) {
			counts[n.Column]++
		}
	}
	return counts
}
