// Package renderer draws the point field and crossfades to the resolved view.
package renderer

import (
	"image"
	"image/color"
	"math"
	"time"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/theme"
)

// Params configures drawing.
type Params struct {
	PointRadius     float32 // Half the side of each drawn square
	TransitionSpeed float64 // Crossfade progress units per second
	Glow            bool    // Draw a soft halo pass under the points
}

// ParamsFromConfig extracts renderer params from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		PointRadius:     float32(cfg.Rendering.PointRadius),
		TransitionSpeed: cfg.Rendering.TransitionSpeed,
		Glow:            cfg.Rendering.Glow,
	}
}

// Renderer reads point data each frame and paints it onto a Surface.
type Renderer struct {
	surface     Surface
	provider    theme.Provider
	unsubscribe func()
	params      Params

	theme theme.Theme
	fg    color.RGBA
	glow  color.NRGBA
	bg    color.RGBA

	width, height float64

	// View state
	resolved      bool
	progress      float64 // 0 = scattered points, 1 = resolved image
	target        float64
	transitioning bool

	view image.Image

	bufX, bufY []float32

	onTheme   func(theme.Theme)
	destroyed bool
}

// New creates a renderer drawing onto surface with colors from provider.
// It subscribes to theme changes until Destroy.
func New(surface Surface, provider theme.Provider, params Params) *Renderer {
	r := &Renderer{
		surface:  surface,
		provider: provider,
		params:   params,
	}
	r.applyTheme(provider.Current())
	r.unsubscribe = provider.Subscribe(func(t theme.Theme) {
		r.applyTheme(t)
		if r.onTheme != nil {
			r.onTheme(t)
		}
	})
	w, h := surface.Size()
	r.width, r.height = float64(w), float64(h)
	return r
}

func (r *Renderer) applyTheme(t theme.Theme) {
	r.theme = t
	r.fg = t.ForegroundRGBA()
	r.glow = t.GlowRGBA()
	r.bg = t.BackgroundRGBA()
}

// Theme returns the theme colors are currently derived from.
func (r *Renderer) Theme() theme.Theme {
	return r.theme
}

// Foreground returns the current point color.
func (r *Renderer) Foreground() color.RGBA {
	return r.fg
}

// OnThemeChange registers fn to run after the renderer has re-derived its
// colors for a new theme. The resolved view is theme-colored, so the owner
// uses this to regenerate it.
func (r *Renderer) OnThemeChange(fn func(theme.Theme)) {
	r.onTheme = fn
}

// SetDimensions updates the logical canvas size.
func (r *Renderer) SetDimensions(width, height float64) {
	r.width, r.height = width, height
}

// Dimensions returns the logical canvas size.
func (r *Renderer) Dimensions() (width, height float64) {
	return r.width, r.height
}

// SetResolvedImage replaces the cached resolved view. Nil clears it.
func (r *Renderer) SetResolvedImage(img image.Image) {
	r.view = img
}

// ResolvedImage returns the cached resolved view, or nil.
func (r *Renderer) ResolvedImage() image.Image {
	return r.view
}

// ToggleResolvedView flips between the points and the resolved image and
// returns true if the resolved view is now the destination.
func (r *Renderer) ToggleResolvedView() bool {
	r.resolved = !r.resolved
	if r.resolved {
		r.target = 1
	} else {
		r.target = 0
	}
	r.transitioning = true
	return r.resolved
}

// IsResolved reports whether the resolved view is the crossfade destination.
func (r *Renderer) IsResolved() bool {
	return r.resolved
}

// Progress returns the crossfade position in [0,1].
func (r *Renderer) Progress() float64 {
	return r.progress
}

// FinishTransition jumps the crossfade to its destination.
func (r *Renderer) FinishTransition() {
	r.progress = r.target
	r.transitioning = false
}

// updateTransition moves progress toward target at TransitionSpeed, snapping
// when within one step.
func (r *Renderer) updateTransition(dt time.Duration) {
	if !r.transitioning {
		return
	}
	diff := r.target - r.progress
	step := r.params.TransitionSpeed * dt.Seconds()
	if math.Abs(diff) <= step {
		r.progress = r.target
		r.transitioning = false
		return
	}
	if diff > 0 {
		r.progress += step
	} else {
		r.progress -= step
	}
}

// Render advances the crossfade by dt, clears the surface and draws the
// points interpolated by alpha at opacity 1-progress, then the resolved image
// (if any) at opacity progress.
func (r *Renderer) Render(p *points.Data, alpha float64, dt time.Duration) {
	if r.destroyed {
		return
	}
	r.updateTransition(dt)

	r.surface.Clear(r.bg)

	t := r.progress
	if t < 1 {
		n := p.Count()
		if cap(r.bufX) < n {
			r.bufX = make([]float32, n)
			r.bufY = make([]float32, n)
		}
		xs, ys := r.bufX[:n], r.bufY[:n]
		p.InterpolateInto(xs, ys, float32(alpha))

		opacity := 1 - t
		if r.params.Glow {
			glow := r.glow
			r.surface.FillSquares(xs, ys, r.params.PointRadius*2, color.RGBA{R: glow.R, G: glow.G, B: glow.B, A: 255}, opacity*float64(glow.A)/255)
		}
		r.surface.FillSquares(xs, ys, r.params.PointRadius, r.fg, opacity)
	}

	if t > 0 && r.view != nil {
		r.surface.DrawImage(r.view, r.width, r.height, t)
	}
}

// Destroy stops listening for theme changes. Further Render calls do nothing.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	r.view = nil
}
