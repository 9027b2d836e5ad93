package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/loop"
	"github.com/pthm-cable/morph/renderer"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/viewport"
)

// HeadlessOptions configures a headless run.
type HeadlessOptions struct {
	Options

	Frames   int           // Display frames to run
	FrameDur time.Duration // Wall time per frame; 0 = 1/target_fps
	Size     viewport.Size // 0 = screen size from config
	Snapshot string        // PNG of the final frame, empty = none
	Plot     io.Writer     // ASCII settle curve, nil = none
	ViewAt   int           // Toggle to the resolved view at this frame, 0 = never
}

// HeadlessResult summarizes a headless run.
type HeadlessResult struct {
	Frames    int
	Points    int
	Targets   int
	Settled   bool
	SettledAt int // First settled frame, -1 = never
	Last      telemetry.FrameStats
}

// RunHeadless drives the simulation on a software surface with a manual
// clock, so runs are reproducible for a given seed.
func RunHeadless(ctx context.Context, cfg *config.Config, opts HeadlessOptions) (HeadlessResult, error) {
	logger := opts.logger()
	res := HeadlessResult{SettledAt: -1}

	size := opts.Size
	if !size.Valid() {
		size = viewport.Size{Width: float64(cfg.Screen.Width), Height: float64(cfg.Screen.Height), DPR: 1}
	}
	frameDur := opts.FrameDur
	if frameDur <= 0 {
		frameDur = time.Second / time.Duration(max(cfg.Screen.TargetFPS, 1))
	}

	var msv []float64
	userOnFrame := opts.OnFrame
	opts.OnFrame = func(fs telemetry.FrameStats) {
		msv = append(msv, fs.MeanSqVel)
		if fs.Settled && res.SettledAt < 0 {
			res.SettledAt = int(fs.Frame)
		}
		if userOnFrame != nil {
			userOnFrame(fs)
		}
	}

	surface := renderer.NewImageSurface(1, 1)
	clock := loop.NewManualClock(time.Unix(0, 0))
	sess, err := newSession(cfg, size, surface, clock, opts.Options)
	if err != nil {
		return res, err
	}
	closed := false
	defer func() {
		if !closed {
			sess.close()
		}
	}()

	if err := sess.ctrl.Init(ctx); err != nil {
		return res, fmt.Errorf("initializing simulation: %w", err)
	}
	if err := sess.ctrl.Start(); err != nil {
		return res, err
	}
	logger.Info("starting headless run",
		"frames", opts.Frames,
		"width", size.Width,
		"height", size.Height,
		"seed", opts.Seed,
	)

	for i := 1; i <= opts.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if i == opts.ViewAt {
			sess.ctrl.ToggleView()
		}
		now := clock.Advance(frameDur)
		sess.ctrl.Poll(now)
		if sess.queue.Pump(now) == 0 {
			sess.ctrl.Redraw()
		}
		res.Frames = i
	}

	res.Points = sess.ctrl.Points().Count()
	res.Targets = len(sess.ctrl.Targets())
	res.Settled = sess.ctrl.Settled()
	res.Last = sess.last

	if opts.Snapshot != "" {
		if !sess.ctrl.IsRunning() {
			sess.ctrl.Redraw()
		}
		if err := surface.WritePNG(opts.Snapshot); err != nil {
			return res, err
		}
		logger.Info("wrote snapshot", "path", opts.Snapshot)
	}

	closed = true
	if err := sess.close(); err != nil {
		return res, fmt.Errorf("closing output: %w", err)
	}

	if opts.Plot != nil && len(msv) > 0 {
		graph := asciigraph.Plot(msv,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("mean squared velocity (px²/step²) per frame"),
		)
		fmt.Fprintln(opts.Plot, graph)
	}

	logger.Info("headless run finished",
		"frames", res.Frames,
		"settled", res.Settled,
		"settled_at", res.SettledAt,
	)
	return res, nil
}
