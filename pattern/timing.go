package pattern

// One onset step is treated as a 1/4-beat subdivision, so 16ths at
// 200 BPM (75ms apart) read back as 200.
const bpmNumeratorUs = 15_000_000.0

// timingAnalyzer precomputes the instantaneous BPM of every slot-to-slot
// delta. bpms[i] belongs to the delta between slots i and i+1; the last
// slot has no sample.
type timingAnalyzer struct {
	times []int64
	bpms  []float64
}

func newTimingAnalyzer(slots []Slot) *timingAnalyzer {
	ta := &timingAnalyzer{
		times: make([]int64, len(slots)),
	}
	for i, s := range slots {
		ta.times[i] = s.TimeUs
	}
	if len(slots) > 1 {
		ta.bpms = make([]float64, len(slots)-1)
		for i := 0; i+1 < len(slots); i++ {
			delta := ta.times[i+1] - ta.times[i]
			if delta > 0 {
				ta.bpms[i] = bpmNumeratorUs / float64(delta)
			}
		}
	}
	return ta
}

// statsRange derives avg/min/max BPM from the deltas inside the slot
// range [lo, hi). Non-positive deltas are skipped; fewer than two slots
// (or no usable deltas) yields all zeros rather than dividing by zero.
func (ta *timingAnalyzer) statsRange(lo, hi int) (avg, min, max float64) {
	var sum float64
	var count int
	for i := lo; i < hi-1 && i < len(ta.bpms); i++ {
		bpm := ta.bpms[i]
		if bpm <= 0 {
			continue
		}
		if count == 0 || bpm < min {
			min = bpm
		}
		if count == 0 || bpm > max {
			max = bpm
		}
		sum += bpm
		count++
	}
	if count == 0 {
		return 0, 0, 0
	}
	return sum / float64(count), min, max
}
