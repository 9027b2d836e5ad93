// Package simulation composes the point store, integrator, fixed-step loop
// and renderer into one controller with a lifecycle, viewport handling and
// asynchronous target generation.
//
// Every method must be called from the frame thread: the goroutine that
// pumps the loop's scheduler. Background generation only hands results back
// through Poll.
package simulation

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/loop"
	"github.com/pthm-cable/morph/physics"
	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/random"
	"github.com/pthm-cable/morph/renderer"
	"github.com/pthm-cable/morph/targets"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/theme"
	"github.com/pthm-cable/morph/viewport"
)

// Options configures what the points resolve into and how the controller reports.
type Options struct {
	Text               string
	ImageRef           string
	InitialTemperature float64
	ReducedMotion      bool
	Seed               int64

	// OnSettled is called once each time the points settle on a new target set.
	OnSettled func()
	// OnFrame receives stats for every rendered frame.
	OnFrame func(telemetry.FrameStats)

	LogStats bool
	Output   *telemetry.OutputManager
	Logger   *slog.Logger
}

// Deps are the collaborators the controller draws on and is driven by.
type Deps struct {
	Surface   renderer.Surface
	Scheduler loop.Scheduler
	Clock     loop.Clock     // nil = system clock
	Theme     theme.Provider // nil = switcher built from config
	Loader    *targets.Loader
}

// resizable is implemented by surfaces that own their backing buffer.
type resizable interface {
	Resize(width, height int)
}

// Controller owns one running point field.
type Controller struct {
	cfg    *config.Config
	opts   Options
	logger *slog.Logger

	surface    renderer.Surface
	clock      loop.Clock
	points     *points.Data
	noise      *random.Source
	integrator *physics.Integrator
	generator  *targets.Generator
	renderer   *renderer.Renderer
	loop       *loop.Loop
	resize     *viewport.ResizeFilter
	size       viewport.Size

	temperature float64
	pointer     physics.Pointer
	targets     []points.Target

	// Lifecycle
	initialized bool
	started     bool
	destroyed   bool
	hidden      bool
	offscreen   bool
	settled     bool

	// Async generation
	ctx         context.Context
	cancel      context.CancelFunc
	results     chan result
	targetsGen  uint64
	viewGen     uint64
	pendingJobs int
	// set while a resize's target set is still generating
	awaitingTargets bool

	// Telemetry
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	frame     int64
	simTime   time.Duration
	inFrame   bool
	phase     string
}

// New builds a stopped, uninitialized controller for a canvas of the given
// size. The device pixel ratio is clamped to the configured maximum.
func New(cfg *config.Config, size viewport.Size, deps Deps, opts Options) (*Controller, error) {
	if deps.Surface == nil {
		return nil, ErrMissingSurface
	}
	if deps.Scheduler == nil {
		return nil, ErrMissingScheduler
	}
	if !size.Valid() {
		return nil, ErrInvalidViewport
	}
	size.DPR = viewport.ClampDPR(size.DPR, cfg.Screen.MaxDPR)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = loop.SystemClock{}
	}
	if deps.Theme == nil {
		sw, err := theme.NewSwitcher(cfg.Theme)
		if err != nil {
			return nil, err
		}
		deps.Theme = sw
	}
	if deps.Loader == nil {
		deps.Loader = targets.NewLoader(nil, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		cfg:         cfg,
		opts:        opts,
		logger:      logger,
		surface:     deps.Surface,
		clock:       deps.Clock,
		points:      points.New(cfg.Derived.MaxPoints),
		noise:       random.New(opts.Seed, cfg.Random.TableSize),
		generator:   targets.NewGenerator(cfg.Targets, deps.Loader, opts.Seed, logger),
		resize:      viewport.NewResizeFilter(size, cfg.Derived.Debounce, cfg.Resize.MinHeightDelta),
		size:        size,
		temperature: clampTemperature(opts.InitialTemperature, 0),
		ctx:         ctx,
		cancel:      cancel,
		results:     make(chan result, 4),
		collector:   telemetry.NewCollector(cfg.Telemetry.LogInterval),
		perf:        telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
	}
	c.integrator = physics.NewIntegrator(physics.ParamsFromConfig(cfg), c.noise)

	c.resizeSurface(size)
	c.renderer = renderer.New(deps.Surface, deps.Theme, renderer.ParamsFromConfig(cfg))
	c.renderer.SetDimensions(size.Width, size.Height)
	c.renderer.OnThemeChange(func(theme.Theme) { c.regenerateView() })

	c.loop = loop.New(loop.ParamsFromConfig(cfg), deps.Scheduler, deps.Clock, c.physicsStep, c.renderFrame)
	c.points.InitializeGrid(size.Width, size.Height, cfg.PointCount(size.Width))

	return c, nil
}

// Init generates the first target set and resolved view, waiting for the
// image to load. Physics and rendering do nothing until Init returns. Calling
// Init again is a no-op.
func (c *Controller) Init(ctx context.Context) error {
	if c.destroyed {
		return ErrDestroyed
	}
	if c.initialized {
		return nil
	}

	c.targetsGen++
	c.viewGen++
	res := c.run(ctx, job{
		targetsID: c.targetsGen,
		viewID:    c.viewGen,
		size:      c.size,
		count:     c.points.Count(),
		fg:        c.renderer.Foreground(),
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	c.install(res)
	if res.err != nil && len(c.targets) == 0 {
		c.logger.Warn("starting without targets", "error", res.err)
	}

	c.initialized = true
	c.logger.Info("simulation initialized",
		"width", c.size.Width,
		"height", c.size.Height,
		"dpr", c.size.DPR,
		"points", c.points.Count(),
		"targets", len(c.targets),
		"elapsed_ms", res.elapsed.Milliseconds(),
	)

	if c.opts.Output != nil {
		if err := c.opts.Output.WriteConfig(c.cfg); err != nil {
			c.logger.Error("failed to write config snapshot", "error", err)
		}
	}
	return nil
}

// Start begins the frame loop. With reduced motion the points are snapped
// onto their targets and drawn once instead.
func (c *Controller) Start() error {
	if c.destroyed {
		return ErrDestroyed
	}
	if !c.initialized {
		return ErrNotInitialized
	}
	c.started = true

	if c.opts.ReducedMotion {
		c.showFinalState()
		return nil
	}
	if c.hidden || c.offscreen {
		return nil
	}
	c.loop.Start()
	return nil
}

// showFinalState snaps to targets, draws one frame and reports settling.
func (c *Controller) showFinalState() {
	c.points.SnapToTargets()
	c.renderer.Render(c.points, 1, 0)
	c.markSettled()
}

// Pause cancels the pending frame.
func (c *Controller) Pause() {
	c.loop.Stop()
}

// Resume restarts the loop unless the controller is hidden, offscreen,
// uninitialized, destroyed or in reduced-motion mode.
func (c *Controller) Resume() {
	if c.destroyed || !c.initialized || !c.started || c.opts.ReducedMotion {
		return
	}
	if c.hidden || c.offscreen {
		return
	}
	c.loop.Start()
}

// SetHidden pauses while the host window is hidden or minimized.
func (c *Controller) SetHidden(hidden bool) {
	c.hidden = hidden
	if hidden {
		c.Pause()
	} else {
		c.Resume()
	}
}

// SetIntersecting pauses while the canvas is scrolled out of view.
func (c *Controller) SetIntersecting(visible bool) {
	c.offscreen = !visible
	if visible {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Destroy stops the loop and releases the renderer. Generation still in
// flight is abandoned and its result discarded.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.loop.Stop()
	c.cancel()
	c.renderer.Destroy()
	c.flushTelemetry(true)
}

// Redraw paints the current state without advancing physics. Window drivers
// call it on frames where the loop is stopped. With reduced motion a pending
// view crossfade completes in one redraw; otherwise it does not advance.
func (c *Controller) Redraw() {
	if !c.initialized || c.destroyed {
		return
	}
	if c.opts.ReducedMotion {
		c.renderer.FinishTransition()
		c.renderer.Render(c.points, 1, 0)
		return
	}
	c.renderer.Render(c.points, c.loop.LastFrame().Alpha, 0)
}

// IsRunning reports whether frames are being scheduled.
func (c *Controller) IsRunning() bool {
	return c.loop.IsRunning()
}

// SetTemperature sets the noise temperature, clamped to [0, 100].
func (c *Controller) SetTemperature(t float64) {
	c.temperature = clampTemperature(t, c.temperature)
}

// Temperature returns the current temperature.
func (c *Controller) Temperature() float64 {
	return c.temperature
}

// SetPointer activates pointer repulsion at (x, y) in canvas space.
func (c *Controller) SetPointer(x, y float32) {
	c.pointer = physics.Pointer{X: x, Y: y, Active: true}
}

// ClearPointer disables pointer repulsion.
func (c *Controller) ClearPointer() {
	c.pointer = physics.NoPointer
}

// Pointer returns the current pointer state.
func (c *Controller) Pointer() physics.Pointer {
	return c.pointer
}

// ToggleView flips between scattered points and the resolved image and
// returns true when the resolved view is now selected. Nothing is drawn
// until the next frame or Redraw.
func (c *Controller) ToggleView() bool {
	return c.renderer.ToggleResolvedView()
}

// Resize records a new viewport size. The change is applied by Poll once
// the debounce period has passed, if it is significant.
func (c *Controller) Resize(size viewport.Size) {
	if !size.Valid() {
		c.logger.Debug("ignoring empty viewport", "width", size.Width, "height", size.Height)
		return
	}
	size.DPR = viewport.ClampDPR(size.DPR, c.cfg.Screen.MaxDPR)
	c.resize.Observe(size, c.clock.Now())
}

// Size returns the committed viewport size.
func (c *Controller) Size() viewport.Size {
	return c.size
}

// Poll installs finished generation results and commits debounced resizes.
// Call it once per display frame, before pumping the scheduler.
func (c *Controller) Poll(now time.Time) {
	if c.destroyed {
		return
	}
	c.inFrame = false
	if c.loop.IsRunning() {
		c.beginFrame(telemetry.PhaseInstall)
	}

	for drained := false; !drained; {
		select {
		case res := <-c.results:
			c.pendingJobs--
			c.install(res)
		default:
			drained = true
		}
	}

	if prev, next, ok := c.resize.Poll(now); ok {
		c.applyResize(prev, next)
	}
}

// Pending reports how many background generations have not been installed.
func (c *Controller) Pending() int {
	return c.pendingJobs
}

// applyResize re-lays the points on a fresh lattice and regenerates targets
// and the resolved view in the background. The previous resolved view stays
// visible until the new one arrives. A change of pixel ratio alone only
// regenerates the resolved view.
func (c *Controller) applyResize(prev, next viewport.Size) {
	c.logger.Info("viewport resized",
		"from_width", prev.Width, "from_height", prev.Height,
		"to_width", next.Width, "to_height", next.Height,
		"from_dpr", prev.DPR, "dpr", next.DPR,
	)
	c.size = next
	if next.Width == prev.Width && next.Height == prev.Height {
		c.regenerateView()
		return
	}

	c.resizeSurface(next)
	c.renderer.SetDimensions(next.Width, next.Height)
	// settled is re-armed by install once the new targets land.
	c.points.InitializeGrid(next.Width, next.Height, c.cfg.PointCount(next.Width))
	c.targets = nil

	if !c.initialized {
		return
	}
	c.awaitingTargets = true
	c.targetsGen++
	c.viewGen++
	c.launch(job{
		targetsID: c.targetsGen,
		viewID:    c.viewGen,
		size:      next,
		count:     c.points.Count(),
		fg:        c.renderer.Foreground(),
		resize:    true,
	})
}

// regenerateView redraws the resolved view in the current foreground color.
func (c *Controller) regenerateView() {
	if c.destroyed || !c.initialized {
		return
	}
	c.viewGen++
	c.launch(job{
		viewID: c.viewGen,
		size:   c.size,
		fg:     c.renderer.Foreground(),
	})
}

func (c *Controller) resizeSurface(size viewport.Size) {
	if s, ok := c.surface.(resizable); ok {
		s.Resize(int(math.Round(size.Width)), int(math.Round(size.Height)))
	}
}

// Targets returns a copy of the installed target set.
func (c *Controller) Targets() []points.Target {
	return slices.Clone(c.targets)
}

// Points exposes the point store for read-only inspection.
func (c *Controller) Points() *points.Data {
	return c.points
}

// Renderer returns the renderer.
func (c *Controller) Renderer() *renderer.Renderer {
	return c.renderer
}

// Settled reports whether the points have settled on the current targets.
func (c *Controller) Settled() bool {
	return c.settled
}

// Perf returns the rolling performance statistics.
func (c *Controller) Perf() telemetry.PerfStats {
	return c.perf.Stats()
}

// physicsStep is the loop's fixed-step callback.
func (c *Controller) physicsStep(dt time.Duration) {
	if !c.initialized || c.destroyed {
		return
	}
	c.beginFrame(telemetry.PhasePhysics)

	c.integrator.Step(c.points, c.temperature, c.pointer)
	c.simTime += dt

	if !c.settled && !c.awaitingTargets && c.integrator.AreSettled(c.points, c.cfg.Physics.SettleThreshold) {
		c.markSettled()
	}
}

// renderFrame is the loop's per-frame render callback.
func (c *Controller) renderFrame(alpha float64, elapsed time.Duration) {
	if !c.initialized || c.destroyed {
		return
	}
	c.beginFrame(telemetry.PhaseRender)
	c.renderer.Render(c.points, alpha, elapsed)
	c.endFrame()
}

func (c *Controller) markSettled() {
	if c.settled {
		return
	}
	c.settled = true
	c.logger.Debug("points settled", "sim_time", c.simTime.Seconds(), "temperature", c.temperature)
	if c.opts.OnSettled != nil {
		c.opts.OnSettled()
	}
}

// clampTemperature clamps t to [0, 100]; NaN yields fallback.
func clampTemperature(t, fallback float64) float64 {
	if math.IsNaN(t) {
		return fallback
	}
	return math.Max(0, math.Min(100, t))
}
