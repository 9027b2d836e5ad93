package simulation

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/targets"
	"github.com/pthm-cable/morph/viewport"
)

// job describes one generation request. Target results are tagged with
// targetsID and resolved views with viewID; a result whose tag no longer
// matches the controller's latest request is stale and dropped.
type job struct {
	targetsID uint64 // 0 = resolved view only
	viewID    uint64
	size      viewport.Size
	count     int
	fg        color.Color
	resize    bool
}

// result is what a job produces, delivered to the frame thread.
type result struct {
	job

	targets []points.Target
	view    *image.RGBA
	err     error // degraded outcome, targets may be empty
	elapsed time.Duration
}

// run generates targets and the resolved view concurrently. A failed target
// generation falls back to the text-only path, unless it failed because
// nothing was filled. A failed resolved view is logged and left nil.
func (c *Controller) run(ctx context.Context, j job) result {
	start := time.Now()
	res := result{job: j}
	text, ref := c.opts.Text, c.opts.ImageRef
	w, h := j.size.Width, j.size.Height

	var g errgroup.Group
	if j.targetsID != 0 {
		g.Go(func() error {
			t, err := c.generator.GenerateTargets(ctx, text, ref, w, h, j.count)
			switch {
			case err == nil:
			case errors.Is(err, targets.ErrEmptyTargetSet):
				c.logger.Warn("no targets generated, points stay scattered", "text", text)
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				c.logger.Warn("target generation failed, using text only", "error", err)
				t, err = c.generator.GenerateTargetsSimple(text, w, h, j.count)
				if err != nil && !errors.Is(err, targets.ErrEmptyTargetSet) {
					return err
				}
			}
			res.targets = t
			res.err = err
			return nil
		})
	}
	g.Go(func() error {
		bw, bh := j.size.Backing()
		view, err := c.generator.GenerateResolvedView(ctx, text, ref, float64(bw), float64(bh), j.fg)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("resolved view generation failed", "error", err)
			return nil
		}
		res.view = view
		return nil
	})

	if err := g.Wait(); err != nil {
		res.err = err
	}
	res.elapsed = time.Since(start)
	return res
}

// launch runs j in the background and delivers the result to Poll.
func (c *Controller) launch(j job) {
	c.pendingJobs++
	go func() {
		res := c.run(c.ctx, j)
		select {
		case c.results <- res:
		case <-c.ctx.Done():
		}
	}()
}

// install applies a result on the frame thread. Stale or post-destroy
// results are discarded.
func (c *Controller) install(res result) {
	if c.destroyed {
		return
	}
	c.perf.RecordGeneration(res.elapsed)

	if res.targetsID != 0 && res.targetsID == c.targetsGen {
		c.awaitingTargets = false
		if res.err != nil && !errors.Is(res.err, targets.ErrEmptyTargetSet) {
			c.logger.Error("target generation failed", "error", res.err)
		} else {
			c.targets = res.targets
			c.points.SetTargets(res.targets)
			c.settled = false
			c.collector.ResetSettled()
			if res.resize {
				c.noise.Refresh()
			}
			if c.opts.ReducedMotion && c.started {
				c.showFinalState()
			}
		}
		c.logger.Debug("targets installed",
			"generation", res.targetsID,
			"count", len(res.targets),
			"elapsed_ms", res.elapsed.Milliseconds(),
		)
	}

	if res.viewID == c.viewGen && res.view != nil {
		c.renderer.SetResolvedImage(res.view)
	}
}
