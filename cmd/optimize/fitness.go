package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/morph/app"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/viewport"
)

const (
	// Never settling costs this many frames on top of the run length.
	unsettledPenalty = 600
	// Weight of the peak per-frame motion, which shows up as visible snapping.
	jerkWeight = 20.0
	// Below this noise floor the field looks frozen once settled.
	minLiveliness = 0.02
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxFrames  int
	seeds      []int64
	baseConfig *config.Config
	size       viewport.Size

	mu          sync.Mutex
	lastSettled float64 // mean settle frame from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int, seeds []int64, baseCfg *config.Config, size viewport.Size) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxFrames:  maxFrames,
		seeds:      seeds,
		baseConfig: baseCfg,
		size:       size,
	}
}

// LastSettled returns the mean settle frame from the most recent evaluation.
func (fe *FitnessEvaluator) LastSettled() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSettled
}

// runResult holds the results from a single simulation run.
type runResult struct {
	settledAt int     // first settled frame, or maxFrames+unsettledPenalty
	peakMSV   float64 // largest per-frame mean squared velocity
	finalMSV  float64 // mean squared velocity on the last frame
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the mean settle frame plus a penalty for jerky motion, so
// parameters that settle quickly without snapping win.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return math.Inf(1)
	}

	// Run all seeds in parallel
	results := make([]runResult, len(fe.seeds))
	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(cfg, seed)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("evaluation failed", "error", err)
		return math.Inf(1)
	}

	var totalFitness, totalSettled float64
	for _, r := range results {
		totalFitness += fe.computeFitness(r)
		totalSettled += float64(r.settledAt)
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastSettled = totalSettled / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation executes a single headless run.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) (runResult, error) {
	var r runResult
	res, err := app.RunHeadless(context.Background(), cfg, app.HeadlessOptions{
		Options: app.Options{
			Seed:   seed,
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			OnFrame: func(fs telemetry.FrameStats) {
				// The first frames measure the scatter, not the approach
				if fs.Frame > 10 && fs.MeanSqVel > r.peakMSV {
					r.peakMSV = fs.MeanSqVel
				}
			},
		},
		Frames: fe.maxFrames,
		Size:   fe.size,
	})
	if err != nil {
		return r, err
	}

	r.settledAt = res.SettledAt
	if r.settledAt < 0 {
		r.settledAt = fe.maxFrames + unsettledPenalty
	}
	r.finalMSV = res.Last.MeanSqVel
	return r, nil
}

// computeFitness scores one run.
func (fe *FitnessEvaluator) computeFitness(r runResult) float64 {
	fitness := float64(r.settledAt) + jerkWeight*math.Sqrt(r.peakMSV)
	if r.finalMSV < minLiveliness {
		fitness += unsettledPenalty / 2
	}
	return fitness
}

// copyConfig creates a copy of the base config for one evaluation.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}
