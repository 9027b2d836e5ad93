package telemetry

import (
	"log/slog"
	"time"
)

// Frame phases timed by the controller.
const (
	PhaseInstall = "install"
	PhasePhysics = "physics"
	PhaseRender  = "render"
)

// frameTiming is one slot of the ring.
type frameTiming struct {
	total  time.Duration
	phases map[string]time.Duration
}

// PerfCollector keeps the last N frame timings, split by phase, plus
// running totals for off-thread target generation.
type PerfCollector struct {
	now func() time.Time

	ring   []frameTiming
	next   int
	filled int

	open       map[string]time.Duration
	frameBegin time.Time
	phaseBegin time.Time
	phase      string

	prevPresent time.Time
	presentGap  time.Duration

	genCount int
	genTotal time.Duration
	genLast  time.Duration
}

// NewPerfCollector returns a collector averaging over window frames.
// A window below one falls back to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		now:  time.Now,
		ring: make([]frameTiming, window),
		open: make(map[string]time.Duration),
	}
}

// WithClock replaces the wall clock used for frame and phase timing.
func (p *PerfCollector) WithClock(now func() time.Time) *PerfCollector {
	if now != nil {
		p.now = now
	}
	return p
}

// StartTick opens a frame.
func (p *PerfCollector) StartTick() {
	p.frameBegin = p.now()
	p.open = make(map[string]time.Duration)
	p.phase = ""
}

// StartPhase closes the running phase, if any, and opens phase.
func (p *PerfCollector) StartPhase(phase string) {
	at := p.now()
	p.closePhase(at)
	p.phaseBegin = at
	p.phase = phase
}

func (p *PerfCollector) closePhase(at time.Time) {
	if p.phase != "" {
		p.open[p.phase] += at.Sub(p.phaseBegin)
	}
}

// EndTick closes the frame and stores it in the ring.
func (p *PerfCollector) EndTick() {
	at := p.now()
	p.closePhase(at)
	p.ring[p.next] = frameTiming{total: at.Sub(p.frameBegin), phases: p.open}
	p.next = (p.next + 1) % len(p.ring)
	p.filled = min(p.filled+1, len(p.ring))
}

// RecordFrame marks a presented frame; the gap to the previous one gives FPS.
func (p *PerfCollector) RecordFrame() {
	at := p.now()
	if !p.prevPresent.IsZero() {
		p.presentGap = at.Sub(p.prevPresent)
	}
	p.prevPresent = at
}

// RecordGeneration adds one finished target generation.
func (p *PerfCollector) RecordGeneration(d time.Duration) {
	p.genCount++
	p.genTotal += d
	p.genLast = d
}

// PerfStats summarises the collector's window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	PhaseAvg map[string]time.Duration
	// PhasePct is each phase's share of the average frame, 0-100.
	PhasePct map[string]float64

	TicksPerSecond float64

	FrameDuration time.Duration
	FPS           float64

	Generations    int
	AvgGeneration  time.Duration
	LastGeneration time.Duration
}

// Stats aggregates the frames currently held in the ring.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg:       make(map[string]time.Duration),
		PhasePct:       make(map[string]float64),
		FrameDuration:  p.presentGap,
		Generations:    p.genCount,
		LastGeneration: p.genLast,
	}
	if p.presentGap > 0 {
		out.FPS = float64(time.Second) / float64(p.presentGap)
	}
	if p.genCount > 0 {
		out.AvgGeneration = p.genTotal / time.Duration(p.genCount)
	}
	if p.filled == 0 {
		return out
	}

	var sum time.Duration
	perPhase := make(map[string]time.Duration)
	for i, f := range p.ring[:p.filled] {
		sum += f.total
		if i == 0 || f.total < out.MinTickDuration {
			out.MinTickDuration = f.total
		}
		out.MaxTickDuration = max(out.MaxTickDuration, f.total)
		for name, d := range f.phases {
			perPhase[name] += d
		}
	}

	n := time.Duration(p.filled)
	out.AvgTickDuration = sum / n
	for name, d := range perPhase {
		out.PhaseAvg[name] = d / n
		if out.AvgTickDuration > 0 {
			out.PhasePct[name] = 100 * float64(d/n) / float64(out.AvgTickDuration)
		}
	}
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	return out
}

// LogStats writes a one-line "perf" record to the default logger.
func (s PerfStats) LogStats() {
	args := []any{
		"avg_frame_us", s.AvgTickDuration.Microseconds(),
		"min_frame_us", s.MinTickDuration.Microseconds(),
		"max_frame_us", s.MaxTickDuration.Microseconds(),
	}
	if s.FPS > 0 {
		args = append(args, "fps", int(s.FPS))
	}
	for _, name := range []string{PhaseInstall, PhasePhysics, PhaseRender} {
		// sub-0.1% phases are noise
		if pct := s.PhasePct[name]; pct > 0.1 {
			args = append(args, name+"_pct", float64(int(pct*10))/10)
		}
	}
	if s.Generations > 0 {
		args = append(args, "generations", s.Generations, "avg_generation_ms", s.AvgGeneration.Milliseconds())
	}
	slog.Info("perf", args...)
}

func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for name, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(name+"_pct", pct))
	}
	if s.Generations > 0 {
		attrs = append(attrs,
			slog.Int("generations", s.Generations),
			slog.Duration("avg_generation", s.AvgGeneration),
		)
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd       int64   `csv:"window_end"`
	AvgFrameUS      int64   `csv:"avg_frame_us"`
	MinFrameUS      int64   `csv:"min_frame_us"`
	MaxFrameUS      int64   `csv:"max_frame_us"`
	FramesPerSec    float64 `csv:"frames_per_sec"`
	FPS             float64 `csv:"fps"`
	InstallPct      float64 `csv:"install_pct"`
	PhysicsPct      float64 `csv:"physics_pct"`
	RenderPct       float64 `csv:"render_pct"`
	Generations     int     `csv:"generations"`
	AvgGenerationMS float64 `csv:"avg_generation_ms"`
}

// ToCSV flattens s into a perf.csv row stamped with windowEnd.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgFrameUS:      s.AvgTickDuration.Microseconds(),
		MinFrameUS:      s.MinTickDuration.Microseconds(),
		MaxFrameUS:      s.MaxTickDuration.Microseconds(),
		FramesPerSec:    s.TicksPerSecond,
		FPS:             s.FPS,
		InstallPct:      s.PhasePct[PhaseInstall],
		PhysicsPct:      s.PhasePct[PhasePhysics],
		RenderPct:       s.PhasePct[PhaseRender],
		Generations:     s.Generations,
		AvgGenerationMS: float64(s.AvgGeneration) / float64(time.Millisecond),
	}
}
