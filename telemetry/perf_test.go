package telemetry

import (
	"math"
	"testing"
	"time"
)

// stepClock is a hand-advanced clock for PerfCollector.
type stepClock struct{ t time.Time }

func (c *stepClock) now() time.Time { return c.t }

func (c *stepClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newSteppedCollector(window int) (*PerfCollector, *stepClock) {
	clk := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewPerfCollector(window).WithClock(clk.now), clk
}

type span struct {
	name string
	d    time.Duration
}

// frame runs one tick with the given phase durations, in order.
func frame(pc *PerfCollector, clk *stepClock, phases ...span) {
	pc.StartTick()
	for _, ph := range phases {
		pc.StartPhase(ph.name)
		clk.advance(ph.d)
	}
	pc.EndTick()
}

func TestPerfCollector_PhaseAverages(t *testing.T) {
	pc, clk := newSteppedCollector(10)
	for i := 0; i < 5; i++ {
		frame(pc, clk,
			span{PhaseInstall, 100 * time.Microsecond},
			span{PhasePhysics, 300 * time.Microsecond},
			span{PhaseRender, 600 * time.Microsecond},
		)
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 1ms", stats.AvgTickDuration)
	}
	if stats.TicksPerSecond != 1000 {
		t.Errorf("TicksPerSecond = %v, want 1000", stats.TicksPerSecond)
	}

	tests := []struct {
		name string
		avg  time.Duration
		pct  float64
	}{
		{PhaseInstall, 100 * time.Microsecond, 10},
		{PhasePhysics, 300 * time.Microsecond, 30},
		{PhaseRender, 600 * time.Microsecond, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stats.PhaseAvg[tt.name]; got != tt.avg {
				t.Errorf("PhaseAvg = %v, want %v", got, tt.avg)
			}
			if got := stats.PhasePct[tt.name]; math.Abs(got-tt.pct) > 1e-9 {
				t.Errorf("PhasePct = %v, want %v", got, tt.pct)
			}
		})
	}
}

func TestPerfCollector_UnevenPhases(t *testing.T) {
	pc, clk := newSteppedCollector(10)
	for i := 0; i < 5; i++ {
		frame(pc, clk, span{"fast", 2 * time.Millisecond}, span{"slow", 20 * time.Millisecond})
	}

	stats := pc.Stats()
	if fast, slow := stats.PhasePct["fast"], stats.PhasePct["slow"]; slow <= fast {
		t.Errorf("slow phase %.1f%% should exceed fast phase %.1f%%", slow, fast)
	}
}

func TestPerfCollector_WallClock(t *testing.T) {
	pc := NewPerfCollector(4)
	for i := 0; i < 3; i++ {
		pc.StartTick()
		pc.StartPhase(PhasePhysics)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}
	if stats := pc.Stats(); stats.AvgTickDuration < 2*time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want >= 2ms", stats.AvgTickDuration)
	}
}

func TestPerfCollector_RingEvictsOldFrames(t *testing.T) {
	pc, clk := newSteppedCollector(3)
	for i := 0; i < 3; i++ {
		frame(pc, clk, span{PhasePhysics, 10 * time.Millisecond})
	}
	for i := 0; i < 3; i++ {
		frame(pc, clk, span{PhasePhysics, time.Millisecond})
	}

	stats := pc.Stats()
	if stats.AvgTickDuration != time.Millisecond {
		t.Errorf("AvgTickDuration = %v, want 1ms once the slow frames are evicted", stats.AvgTickDuration)
	}
	if stats.MinTickDuration != time.Millisecond || stats.MaxTickDuration != time.Millisecond {
		t.Errorf("min/max = %v/%v, want 1ms/1ms", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_MinMax(t *testing.T) {
	pc, clk := newSteppedCollector(10)
	for _, d := range []time.Duration{4, 1, 7, 2} {
		frame(pc, clk, span{PhaseRender, d * time.Millisecond})
	}
	stats := pc.Stats()
	if stats.MinTickDuration != time.Millisecond {
		t.Errorf("MinTickDuration = %v, want 1ms", stats.MinTickDuration)
	}
	if stats.MaxTickDuration != 7*time.Millisecond {
		t.Errorf("MaxTickDuration = %v, want 7ms", stats.MaxTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	if stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 || stats.FPS != 0 {
		t.Errorf("empty collector reports timing: %+v", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("phase maps should be allocated even when empty")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc, clk := newSteppedCollector(10)

	pc.RecordFrame()
	if stats := pc.Stats(); stats.FPS != 0 {
		t.Errorf("FPS after one frame = %v, want 0", stats.FPS)
	}

	clk.advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", stats.FrameDuration)
	}
	if stats.FPS != 50 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}

func TestPerfCollector_Generation(t *testing.T) {
	pc := NewPerfCollector(10)

	if stats := pc.Stats(); stats.Generations != 0 || stats.AvgGeneration != 0 {
		t.Fatalf("fresh collector reports generations: %+v", stats)
	}

	pc.RecordGeneration(10 * time.Millisecond)
	pc.RecordGeneration(30 * time.Millisecond)

	stats := pc.Stats()
	if stats.Generations != 2 {
		t.Errorf("Generations = %d, want 2", stats.Generations)
	}
	if stats.AvgGeneration != 20*time.Millisecond {
		t.Errorf("AvgGeneration = %v, want 20ms", stats.AvgGeneration)
	}
	if stats.LastGeneration != 30*time.Millisecond {
		t.Errorf("LastGeneration = %v, want 30ms", stats.LastGeneration)
	}

	row := stats.ToCSV(42)
	if row.WindowEnd != 42 || row.Generations != 2 || row.AvgGenerationMS != 20 {
		t.Errorf("ToCSV = %+v", row)
	}
}
