package telemetry

// Collector accumulates per-frame stats and emits windowed aggregates.
type Collector struct {
	windowDurationSec float64

	windowStartFrame int64
	windowStartTime  float64
	settledAt        float64

	frames  int
	steps   int
	dropped float64
	settled int
	msv     []float64
	last    FrameStats
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 1
	}
	return &Collector{
		windowDurationSec: windowDurationSec,
		settledAt:         -1,
	}
}

// Record adds one frame to the current window.
func (c *Collector) Record(f FrameStats) {
	if c.frames == 0 {
		c.windowStartFrame = f.Frame
	}
	c.frames++
	c.steps += f.Steps
	c.dropped += f.DroppedMS
	if f.Settled {
		c.settled++
		if c.settledAt < 0 {
			c.settledAt = f.SimTimeSec
		}
	}
	c.msv = append(c.msv, f.MeanSqVel)
	c.last = f
}

// ShouldFlush returns true if enough simulation time has passed to flush the window.
func (c *Collector) ShouldFlush(simTimeSec float64) bool {
	return c.frames > 0 && simTimeSec-c.windowStartTime >= c.windowDurationSec
}

// ResetSettled forgets the first-settle time, e.g. after targets change.
func (c *Collector) ResetSettled() {
	c.settledAt = -1
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush() WindowStats {
	mean, std, p10, p50, p90 := ComputeDistribution(c.msv)

	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   c.last.Frame,
		SimTimeSec:       c.last.SimTimeSec,

		Frames:    c.frames,
		Steps:     c.steps,
		DroppedMS: c.dropped,

		Points:      c.last.Points,
		Temperature: c.last.Temperature,
		Progress:    c.last.Progress,

		MSVMean: mean,
		MSVStd:  std,
		MSVP10:  p10,
		MSVP50:  p50,
		MSVP90:  p90,

		SettledAt: c.settledAt,
	}
	if c.frames > 0 {
		stats.StepsPerFrame = float64(c.steps) / float64(c.frames)
		stats.SettledFrac = float64(c.settled) / float64(c.frames)
	}

	// Reset for next window
	c.windowStartTime = c.last.SimTimeSec
	c.frames = 0
	c.steps = 0
	c.dropped = 0
	c.settled = 0
	c.msv = c.msv[:0]

	return stats
}
