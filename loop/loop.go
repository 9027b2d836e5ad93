// Package loop runs fixed-size physics steps decoupled from the display rate.
//
// Each displayed frame adds the (clamped) elapsed wall time to an accumulator,
// consumes it in whole steps up to a per-frame cap, then renders with the
// leftover fraction as an interpolation factor.
package loop

import (
	"time"

	"github.com/pthm-cable/morph/config"
)

// Params configures a Loop.
type Params struct {
	Step         time.Duration // Fixed physics step
	MaxSteps     int           // Hard cap on steps per displayed frame
	MaxFrameTime time.Duration // Elapsed time is clamped to this
}

// ParamsFromConfig extracts loop params from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Step:         cfg.Derived.Step,
		MaxSteps:     cfg.Physics.MaxStepsPerFrame,
		MaxFrameTime: cfg.Derived.MaxFrameTime,
	}
}

// PhysicsFunc runs one fixed step of length dt.
type PhysicsFunc func(dt time.Duration)

// RenderFunc draws a frame. alpha in [0,1) is the fraction of a step the
// accumulator holds; elapsed is the clamped frame time.
type RenderFunc func(alpha float64, elapsed time.Duration)

// Frame describes the most recent displayed frame.
type Frame struct {
	Steps   int
	Alpha   float64
	Elapsed time.Duration
	Dropped time.Duration // Simulated time discarded by the step cap
}

// Loop is the fixed-timestep driver. It is stopped until Start.
type Loop struct {
	params  Params
	sched   Scheduler
	clock   Clock
	physics PhysicsFunc
	render  RenderFunc

	running     bool
	accumulator time.Duration
	last        time.Time
	frameID     FrameID
	pending     bool
	lastFrame   Frame
}

// New creates a stopped loop.
func New(params Params, sched Scheduler, clock Clock, physics PhysicsFunc, render RenderFunc) *Loop {
	if params.MaxSteps < 1 {
		params.MaxSteps = 1
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{
		params:  params,
		sched:   sched,
		clock:   clock,
		physics: physics,
		render:  render,
	}
}

// Start begins scheduling frames. The accumulator is reset and the wall-clock
// anchor moved to now, so a long pause does not cause a catch-up burst.
// Starting a running loop is a no-op.
func (l *Loop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.accumulator = 0
	l.last = l.clock.Now()
	l.schedule()
}

// Stop cancels the pending frame. Safe to call at any time, including from
// inside a physics or render callback.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.running = false
	if l.pending {
		l.sched.CancelFrame(l.frameID)
		l.pending = false
	}
}

// IsRunning reports whether frames are being scheduled.
func (l *Loop) IsRunning() bool {
	return l.running
}

// LastFrame returns stats for the most recent frame.
func (l *Loop) LastFrame() Frame {
	return l.lastFrame
}

// Params returns the loop configuration.
func (l *Loop) Params() Params {
	return l.params
}

// Advance adds elapsed (clamped to [0, MaxFrameTime]) to the accumulator and
// runs physics steps while a whole step is available, up to MaxSteps. When the
// cap is hit the accumulator is reduced modulo the step so alpha stays below 1.
func (l *Loop) Advance(elapsed time.Duration) (steps int, alpha float64) {
	elapsed = l.clampElapsed(elapsed)
	l.accumulator += elapsed

	step := l.params.Step
	if step <= 0 {
		return 0, 0
	}

	for l.accumulator >= step && steps < l.params.MaxSteps {
		if l.physics != nil {
			l.physics(step)
		}
		l.accumulator -= step
		steps++
	}

	var dropped time.Duration
	if l.accumulator >= step {
		dropped = l.accumulator - l.accumulator%step
		l.accumulator %= step
	}

	alpha = float64(l.accumulator) / float64(step)
	l.lastFrame = Frame{Steps: steps, Alpha: alpha, Elapsed: elapsed, Dropped: dropped}
	return steps, alpha
}

// tick is the scheduled frame callback.
func (l *Loop) tick(now time.Time) {
	l.pending = false
	if !l.running {
		return
	}

	elapsed := now.Sub(l.last)
	l.last = now

	_, alpha := l.Advance(elapsed)
	if l.render != nil && l.running {
		l.render(alpha, l.lastFrame.Elapsed)
	}

	// Render may have stopped (or stopped and restarted) the loop
	if l.running && !l.pending {
		l.schedule()
	}
}

func (l *Loop) schedule() {
	l.frameID = l.sched.RequestFrame(l.tick)
	l.pending = true
}

func (l *Loop) clampElapsed(elapsed time.Duration) time.Duration {
	if elapsed < 0 {
		return 0
	}
	if l.params.MaxFrameTime > 0 && elapsed > l.params.MaxFrameTime {
		return l.params.MaxFrameTime
	}
	return elapsed
}
