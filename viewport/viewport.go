// Package viewport tracks canvas size, device pixel ratio and resize events,
// and maps pointer input into canvas space.
package viewport

import (
	"math"
	"time"
)

// Size is a logical canvas size with its device pixel ratio.
type Size struct {
	Width, Height float64
	DPR           float64
}

// Valid reports whether the size has area.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Backing returns the physical pixel dimensions.
func (s Size) Backing() (width, height int) {
	dpr := s.DPR
	if dpr <= 0 {
		dpr = 1
	}
	return int(math.Round(s.Width * dpr)), int(math.Round(s.Height * dpr))
}

// ClampDPR caps a reported device pixel ratio at maxDPR. Unknown or invalid
// ratios are treated as 1.
func ClampDPR(dpr, maxDPR float64) float64 {
	if dpr <= 0 || math.IsNaN(dpr) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	if maxDPR > 0 && dpr > maxDPR {
		return maxDPR
	}
	return dpr
}

// ResizeFilter debounces raw size observations and drops changes that only
// nudge the height by a small amount (mobile browser chrome, window title
// bars). Any width change, a height change beyond MinHeightDelta, or a new
// pixel ratio is committed once observations have been quiet for the
// debounce period. A pixel ratio change alone keeps the committed width and
// height.
type ResizeFilter struct {
	debounce       time.Duration
	minHeightDelta float64

	current  Size
	pending  Size
	waiting  bool
	deadline time.Time
}

// NewResizeFilter starts from the given committed size.
func NewResizeFilter(initial Size, debounce time.Duration, minHeightDelta float64) *ResizeFilter {
	return &ResizeFilter{
		debounce:       debounce,
		minHeightDelta: minHeightDelta,
		current:        initial,
	}
}

// Current returns the last committed size.
func (f *ResizeFilter) Current() Size {
	return f.current
}

// Observe records a raw size and restarts the debounce timer.
func (f *ResizeFilter) Observe(s Size, now time.Time) {
	f.pending = s
	f.waiting = true
	f.deadline = now.Add(f.debounce)
}

// Poll returns the previous and new committed sizes when a debounced change
// is significant. Insignificant changes are discarded without updating the
// committed size.
func (f *ResizeFilter) Poll(now time.Time) (prev, next Size, changed bool) {
	if !f.waiting || now.Before(f.deadline) {
		return f.current, f.current, false
	}
	f.waiting = false

	next = f.pending
	widthChanged := next.Width != f.current.Width
	heightChanged := math.Abs(next.Height-f.current.Height) > f.minHeightDelta
	if !widthChanged && !heightChanged {
		if next.DPR == f.current.DPR {
			return f.current, f.current, false
		}
		next.Width, next.Height = f.current.Width, f.current.Height
	}

	prev = f.current
	f.current = next
	return prev, next, true
}

// Mapping converts between screen (window) and canvas coordinates when the
// canvas is stretched over the window.
type Mapping struct {
	ScreenW, ScreenH float32
	CanvasW, CanvasH float32
}

// ScreenToCanvas maps a screen position into canvas space. ok is false when
// the position lies outside the window or either size is degenerate.
func (m Mapping) ScreenToCanvas(sx, sy float32) (cx, cy float32, ok bool) {
	if m.ScreenW <= 0 || m.ScreenH <= 0 || m.CanvasW <= 0 || m.CanvasH <= 0 {
		return 0, 0, false
	}
	if sx < 0 || sy < 0 || sx > m.ScreenW || sy > m.ScreenH {
		return 0, 0, false
	}
	return sx * m.CanvasW / m.ScreenW, sy * m.CanvasH / m.ScreenH, true
}

// CanvasToScreen is the inverse of ScreenToCanvas.
func (m Mapping) CanvasToScreen(cx, cy float32) (sx, sy float32) {
	if m.CanvasW <= 0 || m.CanvasH <= 0 {
		return 0, 0
	}
	return cx * m.ScreenW / m.CanvasW, cy * m.ScreenH / m.CanvasH
}
