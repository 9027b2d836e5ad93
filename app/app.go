// Package app runs a simulation controller either in a raylib window or
// headless against a software surface.
package app

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/loop"
	"github.com/pthm-cable/morph/renderer"
	"github.com/pthm-cable/morph/simulation"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/theme"
	"github.com/pthm-cable/morph/viewport"
)

// Options are shared by the window and headless runners.
type Options struct {
	Seed          int64
	ReducedMotion bool
	LogStats      bool
	OutputDir     string // empty = no CSV output
	Logger        *slog.Logger

	// OnFrame, if set, receives every frame's stats after the runner's own
	// bookkeeping.
	OnFrame func(telemetry.FrameStats)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// session bundles a controller with what drives it.
type session struct {
	ctrl   *simulation.Controller
	queue  *loop.FrameQueue
	theme  *theme.Switcher
	output *telemetry.OutputManager

	last    telemetry.FrameStats
	settles int
	onFrame func(telemetry.FrameStats)
}

// newSession builds an uninitialized controller on surface. Text, image and
// temperature come from cfg.Content.
func newSession(cfg *config.Config, size viewport.Size, surface renderer.Surface, clock loop.Clock, opts Options) (*session, error) {
	logger := opts.logger()

	sw, err := theme.NewSwitcher(cfg.Theme)
	if err != nil {
		return nil, fmt.Errorf("building theme: %w", err)
	}
	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	s := &session{
		queue:   loop.NewFrameQueue(),
		theme:   sw,
		output:  out,
		onFrame: opts.OnFrame,
	}
	s.ctrl, err = simulation.New(cfg, size, simulation.Deps{
		Surface:   surface,
		Scheduler: s.queue,
		Clock:     clock,
		Theme:     sw,
	}, simulation.Options{
		Text:               cfg.Content.Text,
		ImageRef:           cfg.Content.Image,
		InitialTemperature: cfg.Content.InitialTemperature,
		ReducedMotion:      opts.ReducedMotion,
		Seed:               opts.Seed,
		LogStats:           opts.LogStats,
		Output:             out,
		Logger:             logger,
		OnFrame:            s.recordFrame,
		OnSettled: func() {
			s.settles++
			logger.Info("points settled", "count", s.settles)
		},
	})
	if err != nil {
		out.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) recordFrame(fs telemetry.FrameStats) {
	s.last = fs
	if s.onFrame != nil {
		s.onFrame(fs)
	}
}

// close destroys the controller, which flushes the final stats window, and
// then closes the CSV files.
func (s *session) close() error {
	s.ctrl.Destroy()
	return s.output.Close()
}
