package simulation

import (
	"github.com/pthm-cable/morph/telemetry"
)

// beginFrame starts perf timing for the frame if needed and switches phase.
func (c *Controller) beginFrame(phase string) {
	if !c.inFrame {
		c.perf.StartTick()
		c.inFrame = true
		c.phase = ""
	}
	if c.phase != phase {
		c.perf.StartPhase(phase)
		c.phase = phase
	}
}

// endFrame records the frame's stats and flushes the stats window when due.
func (c *Controller) endFrame() {
	c.perf.EndTick()
	c.perf.RecordFrame()
	c.inFrame = false

	c.frame++
	lf := c.loop.LastFrame()
	stats := telemetry.FrameStats{
		Frame:       c.frame,
		SimTimeSec:  c.simTime.Seconds(),
		Steps:       lf.Steps,
		Alpha:       lf.Alpha,
		DroppedMS:   float64(lf.Dropped.Microseconds()) / 1000,
		Temperature: c.temperature,
		MeanSqVel:   c.integrator.MeanSquaredVelocity(c.points),
		Progress:    c.renderer.Progress(),
		Settled:     c.settled,
		Points:      c.points.Count(),
	}
	c.collector.Record(stats)
	if c.opts.OnFrame != nil {
		c.opts.OnFrame(stats)
	}

	c.flushTelemetry(false)
}

// flushTelemetry emits the current stats window when it is due, or
// unconditionally when final is set and the window holds frames.
func (c *Controller) flushTelemetry(final bool) {
	simSec := c.simTime.Seconds()
	if !c.collector.ShouldFlush(simSec) && !(final && c.frame > 0) {
		return
	}

	stats := c.collector.Flush()
	if stats.Frames == 0 {
		return
	}
	perfStats := c.perf.Stats()

	if c.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if c.opts.Output != nil {
		if err := c.opts.Output.WriteStats(stats); err != nil {
			c.logger.Error("failed to write stats", "error", err)
		}
		if err := c.opts.Output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			c.logger.Error("failed to write perf", "error", err)
		}
	}
}
