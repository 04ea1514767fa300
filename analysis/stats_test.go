package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openrhythm/rox/model"
)

func TestNps(t *testing.T) {
	chart := model.NewChart(4)
	chart.Notes = append(chart.Notes,
		model.Tap(0, 0),
		model.Tap(1_000_000, 0),
		model.Tap(2_000_000, 0),
	)

	assert := assert.New(t)
	assert.Equal(1.5, Nps(chart))
	assert.Equal(0.0, Nps(model.NewChart(4)))
}

func TestDensity(t *testing.T) {
	chart := model.NewChart(4)
	chart.Notes = append(chart.Notes, model.Tap(9_999_999, 0))
	for i := int64(0); i < 10; i++ {
		chart.Notes = append(chart.Notes, model.Tap(i*500_000, 0))
	}

	dens := Density(chart, 2)

	assert := assert.New(t)
	assert.Len(dens, 2)
	assert.InDelta(2.0, dens[0], 0.001)
	assert.InDelta(0.2, dens[1], 0.001)
	assert.Nil(Density(chart, 0))
	assert.Equal([]float64{0, 0, 0}, Density(model.NewChart(4), 3))
}

func TestHighestNps(t *testing.T) {
	chart := model.NewChart(4)
	for i := int64(0); i < 10; i++ {
		chart.Notes = append(chart.Notes, model.Tap(10_000_000+i*50_000, 0))
	}
	chart.Notes = append(chart.Notes, model.Tap(0, 0))
	chart.Notes = append(chart.Notes, model.Tap(20_000_000, 0))

	assert := assert.New(t)
	assert.Equal(10.0, HighestNps(chart, 1.0))
	assert.Equal(0.0, HighestNps(model.NewChart(4), 1.0))
	assert.Equal(0.0, HighestNps(chart, 0))
}

func TestLowestNps(t *testing.T) {
	assert := assert.New(t)

	gappy := model.NewChart(4)
	gappy.Notes = append(gappy.Notes,
		model.Tap(0, 0),
		model.Tap(1_000_000, 0),
		model.Tap(10_000_000, 0),
	)
	assert.Equal(0.0, LowestNps(gappy, 2.0))

	steady := model.NewChart(4)
	for i := int64(0); i <= 20; i++ {
		steady.Notes = append(steady.Notes, model.Tap(i*500_000, 0))
	}
	assert.Equal(2.0, LowestNps(steady, 1.0))
}

func TestHighestDrainTime(t *testing.T) {
	chart := model.NewChart(4)
	// 10 NPS for five seconds, a four-second gap, then 10 NPS for ten
	// seconds: the drain window must pick the second run.
	for i := int64(0); i < 50; i++ {
		chart.Notes = append(chart.Notes, model.Tap(1_000_000+i*100_000, 0))
	}
	for i := int64(0); i < 100; i++ {
		chart.Notes = append(chart.Notes, model.Tap(10_000_000+i*100_000, 0))
	}

	drain := HighestDrainTime(chart)

	assert := assert.New(t)
	assert.GreaterOrEqual(drain, 9.0)
	assert.LessOrEqual(drain, 10.5)
	assert.Equal(0.0, HighestDrainTime(model.NewChart(4)))
}

func TestBpmStats(t *testing.T) {
	chart := model.NewChart(4)
	chart.TimingPoints = append(chart.TimingPoints,
		model.BpmChange(0, 100),
		model.BpmChange(10_000_000, 200),
		model.BpmChange(20_000_000, 100),
	)
	chart.Notes = append(chart.Notes, model.Tap(30_000_000, 0))

	assert := assert.New(t)
	assert.Equal(100.0, BpmMin(chart))
	assert.Equal(200.0, BpmMax(chart))
	// 100 BPM holds for 20 of the 30 seconds.
	assert.Equal(100.0, BpmMode(chart))
}

func TestBpmStatsIgnoreInheritedPoints(t *testing.T) {
	chart := model.NewChart(4)
	chart.TimingPoints = append(chart.TimingPoints,
		model.BpmChange(0, 150),
		model.SvChange(5_000_000, 0.5),
	)
	chart.Notes = append(chart.Notes, model.Tap(10_000_000, 0))

	assert := assert.New(t)
	assert.Equal(150.0, BpmMin(chart))
	assert.Equal(150.0, BpmMax(chart))
	assert.Equal(150.0, BpmMode(chart))
}

func TestBpmModeBucketsNearbyTempos(t *testing.T) {
	chart := model.NewChart(4)
	chart.TimingPoints = append(chart.TimingPoints,
		model.BpmChange(0, 174.996),
		model.BpmChange(5_000_000, 175.004),
	)
	chart.Notes = append(chart.Notes, model.Tap(10_000_000, 0))

	assert.InDelta(t, 175.0, BpmMode(chart), 1e-9)
}

func TestPolyphony(t *testing.T) {
	chart := model.NewChart(4)
	chart.Notes = append(chart.Notes,
		model.Tap(0, 0),
		model.Tap(100, 0),
		model.Tap(100, 1),
		model.Tap(200, 0),
		model.Tap(200, 1),
		model.Tap(200, 2),
		model.Tap(300, 3),
		model.Mine(300, 0),
	)

	dist := Polyphony(chart)

	assert := assert.New(t)
	assert.Equal(2, dist[1])
	assert.Equal(1, dist[2])
	assert.Equal(1, dist[3])
	assert.NotContains(dist, 4)
}

func TestLaneBalance(t *testing.T) {
	chart := model.NewChart(4)
	chart.Notes = append(chart.Notes,
		model.Tap(0, 0),
		model.Tap(100, 0),
		model.Tap(200, 3),
		model.Mine(300, 1),
	)

	assert.Equal(t, []uint32{2, 0, 0, 1}, LaneBalance(chart))
}
