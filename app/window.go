package app

import (
	"context"
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/renderer"
	"github.com/pthm-cable/morph/theme"
	"github.com/pthm-cable/morph/ui"
	"github.com/pthm-cable/morph/viewport"
)

const (
	controlsWidth = 240
	hudWidth      = 230
	keyLegend     = "[Space] Pause  [V] View  [T] Theme  [Up/Down] Temperature  [C] Controls  [H] HUD  [F11] Fullscreen"
)

// window is the interactive raylib frontend.
type window struct {
	sess *session

	surface  *renderer.RaylibSurface
	controls *ui.ControlsPanel
	hud      *ui.HUD

	screenW, screenH int32
	paused           bool // paused by the user, as opposed to by visibility
	hidden           bool
	offscreen        bool
}

// RunWindow opens a resizable window and runs the simulation until it is
// closed or ctx is cancelled.
func RunWindow(ctx context.Context, cfg *config.Config, opts Options) error {
	logger := opts.logger()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "morph")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	w := &window{
		screenW:  int32(rl.GetScreenWidth()),
		screenH:  int32(rl.GetScreenHeight()),
		controls: ui.NewControlsPanel(10, 10, controlsWidth),
		hud:      ui.NewHUD(),
	}
	w.surface = renderer.NewRaylibSurface(int(w.screenW), int(w.screenH))
	defer w.surface.Unload()

	sess, err := newSession(cfg, w.viewportSize(), w.surface, nil, opts)
	if err != nil {
		return err
	}
	w.sess = sess
	defer func() {
		if err := sess.close(); err != nil {
			logger.Error("closing output", "error", err)
		}
	}()

	w.applyTheme()
	sess.theme.Subscribe(func(_ theme.Theme) { w.applyTheme() })

	// Content is generated before the first frame is shown
	rl.BeginDrawing()
	rl.ClearBackground(sess.theme.Current().BackgroundRGBA())
	rl.DrawText("loading...", 10, 10, 20, rl.Gray)
	rl.EndDrawing()

	if err := sess.ctrl.Init(ctx); err != nil {
		return fmt.Errorf("initializing simulation: %w", err)
	}
	// Reduced motion draws its single frame inside Start
	rl.BeginDrawing()
	err = sess.ctrl.Start()
	rl.EndDrawing()
	if err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			break
		}
		w.frame()
	}
	return nil
}

func (w *window) viewportSize() viewport.Size {
	return viewport.Size{
		Width:  float64(w.screenW),
		Height: float64(w.screenH),
		DPR:    float64(rl.GetWindowScaleDPI().X),
	}
}

func (w *window) applyTheme() {
	style := ui.StyleFor(w.sess.theme.Current())
	w.controls.SetStyle(style)
	w.hud.SetStyle(style)
}

// frame runs one display frame: input, generation results, the loop's
// scheduled callbacks, then the UI on top.
func (w *window) frame() {
	w.handleInput()

	now := time.Now()
	ctrl := w.sess.ctrl

	rl.BeginDrawing()
	ctrl.Poll(now)
	if w.sess.queue.Pump(now) == 0 {
		ctrl.Redraw()
	}
	w.drawUI()
	rl.EndDrawing()
}

func (w *window) handleInput() {
	ctrl := w.sess.ctrl
	w.handleResize()
	w.handleVisibility()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		w.paused = !w.paused
		if w.paused {
			ctrl.Pause()
		} else {
			ctrl.Resume()
		}
	}
	if rl.IsKeyPressed(rl.KeyV) {
		ctrl.ToggleView()
	}
	if rl.IsKeyPressed(rl.KeyT) {
		w.sess.theme.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		w.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		w.hud.Toggle()
	}
	if rl.IsKeyDown(rl.KeyUp) {
		ctrl.SetTemperature(ctrl.Temperature() + 0.5)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		ctrl.SetTemperature(ctrl.Temperature() - 0.5)
	}

	w.handlePointer()
}

// handleResize forwards window size changes. The controller debounces them.
func (w *window) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if sw == w.screenW && sh == w.screenH {
		return
	}
	w.screenW, w.screenH = sw, sh
	w.sess.ctrl.Resize(w.viewportSize())
}

// handleVisibility pauses while minimized or hidden. The controller resumes
// on its own unless the user paused.
func (w *window) handleVisibility() {
	ctrl := w.sess.ctrl
	if hidden := rl.IsWindowMinimized(); hidden != w.hidden {
		w.hidden = hidden
		ctrl.SetHidden(hidden)
	}
	if offscreen := rl.IsWindowHidden(); offscreen != w.offscreen {
		w.offscreen = offscreen
		ctrl.SetIntersecting(!offscreen)
	}
	if w.paused && ctrl.IsRunning() {
		ctrl.Pause()
	}
}

// handlePointer maps the mouse or first touch into canvas space. Input over
// the controls panel or outside the window clears repulsion.
func (w *window) handlePointer() {
	ctrl := w.sess.ctrl

	var pos rl.Vector2
	switch {
	case rl.GetTouchPointCount() > 0:
		pos = rl.GetTouchPosition(0)
	case rl.IsCursorOnScreen():
		pos = rl.GetMousePosition()
	default:
		ctrl.ClearPointer()
		return
	}
	if w.controls.Contains(pos.X, pos.Y) {
		ctrl.ClearPointer()
		return
	}

	size := ctrl.Size()
	m := viewport.Mapping{
		ScreenW: float32(w.screenW),
		ScreenH: float32(w.screenH),
		CanvasW: float32(size.Width),
		CanvasH: float32(size.Height),
	}
	if x, y, ok := m.ScreenToCanvas(pos.X, pos.Y); ok {
		ctrl.SetPointer(x, y)
	} else {
		ctrl.ClearPointer()
	}
}

func (w *window) drawUI() {
	ctrl := w.sess.ctrl

	in := w.controls.Draw(ui.ControlsState{
		Temperature: ctrl.Temperature(),
		Resolved:    ctrl.Renderer().IsResolved(),
		Dark:        w.sess.theme.IsDark(),
		Running:     ctrl.IsRunning(),
	})
	if in.TemperatureSet {
		ctrl.SetTemperature(in.Temperature)
	}
	if in.ToggleView {
		ctrl.ToggleView()
	}
	if in.ToggleTheme {
		w.sess.theme.Toggle()
	}

	w.hud.Draw(ui.HUDData{
		Frame:   w.sess.last,
		Perf:    ctrl.Perf(),
		FPS:     rl.GetFPS(),
		Running: ctrl.IsRunning(),
		Pending: ctrl.Pending(),
	}, w.screenW, hudWidth)
	w.hud.DrawControls(w.screenH, keyLegend)
}
