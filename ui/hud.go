package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/morph/telemetry"
)

// HUDData holds all the data needed to render the HUD.
type HUDData struct {
	Frame   telemetry.FrameStats
	Perf    telemetry.PerfStats
	FPS     int32
	Running bool
	Pending int // generations in flight
}

// HUD renders the frame statistics readout.
type HUD struct {
	renderer *Renderer
	visible  bool
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// SetStyle replaces the HUD style.
func (h *HUD) SetStyle(s Style) {
	h.renderer.Style = s
}

// Toggle switches HUD visibility.
func (h *HUD) Toggle() bool {
	h.visible = !h.visible
	return h.visible
}

// IsVisible returns whether the HUD is shown.
func (h *HUD) IsVisible() bool {
	return h.visible
}

// hudRow is one label/value line.
type hudRow struct {
	label, value string
}

func hudRows(d HUDData) []hudRow {
	status := "running"
	switch {
	case !d.Running:
		status = "paused"
	case d.Frame.Settled:
		status = "settled"
	}
	if d.Pending > 0 {
		status += " (generating)"
	}

	return []hudRow{
		{"Status", status},
		{"FPS", fmt.Sprintf("%d", d.FPS)},
		{"Points", fmt.Sprintf("%d", d.Frame.Points)},
		{"Temperature", fmt.Sprintf("%.0f", d.Frame.Temperature)},
		{"Steps/frame", fmt.Sprintf("%d (alpha %.2f)", d.Frame.Steps, d.Frame.Alpha)},
		{"Motion", fmt.Sprintf("%.3f px²", d.Frame.MeanSqVel)},
		{"Physics", fmt.Sprintf("%.1f%%", d.Perf.PhasePct[telemetry.PhasePhysics])},
		{"Render", fmt.Sprintf("%.1f%%", d.Perf.PhasePct[telemetry.PhaseRender])},
	}
}

// Draw renders the HUD in the top-right corner.
func (h *HUD) Draw(d HUDData, screenWidth int32, width int32) {
	if !h.visible {
		return
	}
	r := h.renderer
	s := r.Style
	rows := hudRows(d)

	x := screenWidth - width - s.Padding
	y := s.Padding
	height := s.Padding*2 + s.LineHeight*int32(len(rows)+1) + s.BarHeight + 6
	r.DrawPanel(x, y, width, height)

	x += s.Padding
	y += s.Padding
	for _, row := range rows {
		y = r.DrawLabelValue(x, y, row.label, row.value)
	}
	r.DrawBar(x, y+2, "Resolved", float32(d.Frame.Progress), width-s.Padding*2)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, legend string) {
	rl.DrawText(legend, 10, screenHeight-25, 14, h.renderer.Style.LabelColor)
}
