package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FrameStats describes one displayed frame.
type FrameStats struct {
	Frame       int64
	SimTimeSec  float64
	Steps       int
	Alpha       float64
	DroppedMS   float64
	Temperature float64
	MeanSqVel   float64 // mean squared implied velocity, px²/step²
	Progress    float64 // resolved-view crossfade, 0..1
	Settled     bool
	Points      int
}

// LogValue implements slog.LogValuer for structured logging.
func (f FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", f.Frame),
		slog.Float64("sim_time", f.SimTimeSec),
		slog.Int("steps", f.Steps),
		slog.Float64("alpha", f.Alpha),
		slog.Float64("dropped_ms", f.DroppedMS),
		slog.Float64("temperature", f.Temperature),
		slog.Float64("msv", f.MeanSqVel),
		slog.Float64("progress", f.Progress),
		slog.Bool("settled", f.Settled),
		slog.Int("points", f.Points),
	)
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int64   `csv:"-"`
	WindowEndFrame   int64   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	Frames        int     `csv:"frames"`
	Steps         int     `csv:"steps"`
	StepsPerFrame float64 `csv:"steps_per_frame"`
	DroppedMS     float64 `csv:"dropped_ms"` // total time discarded by the step cap

	// Sampled at window end
	Points      int     `csv:"points"`
	Temperature float64 `csv:"temperature"`
	Progress    float64 `csv:"progress"`

	// Motion distribution across the window's frames
	MSVMean float64 `csv:"msv_mean"`
	MSVStd  float64 `csv:"msv_std"`
	MSVP10  float64 `csv:"msv_p10"`
	MSVP50  float64 `csv:"msv_p50"`
	MSVP90  float64 `csv:"msv_p90"`

	SettledFrac float64 `csv:"settled_frac"`
	SettledAt   float64 `csv:"settled_at"` // sim time of first settle, -1 if not yet
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean, population standard deviation and
// 10/50/90th percentiles of values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartFrame),
		slog.Int64("window_end", s.WindowEndFrame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("frames", s.Frames),
		slog.Int("steps", s.Steps),
		slog.Float64("steps_per_frame", s.StepsPerFrame),
		slog.Float64("dropped_ms", s.DroppedMS),
		slog.Int("points", s.Points),
		slog.Float64("temperature", s.Temperature),
		slog.Float64("progress", s.Progress),
		slog.Float64("msv_mean", s.MSVMean),
		slog.Float64("msv_std", s.MSVStd),
		slog.Float64("msv_p10", s.MSVP10),
		slog.Float64("msv_p50", s.MSVP50),
		slog.Float64("msv_p90", s.MSVP90),
		slog.Float64("settled_frac", s.SettledFrac),
		slog.Float64("settled_at", s.SettledAt),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"points", s.Points,
		"temperature", s.Temperature,
		"steps_per_frame", s.StepsPerFrame,
		"msv_p50", s.MSVP50,
		"settled_frac", s.SettledFrac,
	)
}
