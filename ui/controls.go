package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ControlsState is what the panel shows.
type ControlsState struct {
	Temperature float64
	Resolved    bool
	Dark        bool
	Running     bool
}

// ControlsInput is what the user did on the panel this frame.
type ControlsInput struct {
	Temperature    float64
	TemperatureSet bool
	ToggleView     bool
	ToggleTheme    bool
}

// ControlsPanel renders the temperature slider and view/theme buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

const (
	controlsRowHeight = 20
	controlsButtonH   = 26
)

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetStyle replaces the panel style, e.g. after a theme switch.
func (c *ControlsPanel) SetStyle(s Style) {
	c.renderer.Style = s
}

// SetPosition moves the panel.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x, c.y = x, y
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Height returns the panel height for the current style.
func (c *ControlsPanel) Height() int32 {
	s := c.renderer.Style
	return s.Padding*2 + s.LineHeight + 4 + // title
		s.LineHeight + controlsRowHeight + 8 + // temperature
		controlsButtonH
}

// Bounds returns the panel rectangle in screen space.
func (c *ControlsPanel) Bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.Height())}
}

// Contains reports whether a screen position is over the visible panel, so
// the caller can keep it from driving pointer repulsion.
func (c *ControlsPanel) Contains(x, y float32) bool {
	if !c.visible {
		return false
	}
	b := c.Bounds()
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Draw renders the panel and returns the user's input.
func (c *ControlsPanel) Draw(state ControlsState) ControlsInput {
	in := ControlsInput{Temperature: state.Temperature}
	if !c.visible {
		return in
	}

	r := c.renderer
	s := r.Style
	r.DrawPanel(c.x, c.y, c.width, c.Height())

	x := float32(c.x + s.Padding)
	y := c.y + s.Padding
	inner := float32(c.width - s.Padding*2)

	title := "Controls"
	if !state.Running {
		title = "Controls (paused)"
	}
	y = r.DrawSectionHeader(int32(x), y, title) + 4

	rl.DrawText(fmt.Sprintf("Temperature: %.0f", state.Temperature), int32(x), y, s.FontSize, s.LabelColor)
	y += s.LineHeight
	t := gui.SliderBar(
		rl.Rectangle{X: x + 20, Y: float32(y), Width: inner - 50, Height: controlsRowHeight},
		"0", "100",
		float32(state.Temperature), 0, 100,
	)
	if float64(t) != state.Temperature {
		in.Temperature = float64(t)
		in.TemperatureSet = true
	}
	y += controlsRowHeight + 8

	half := (inner - 8) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: controlsButtonH}, toggleText(state.Resolved, "Show points", "Show image")) {
		in.ToggleView = true
	}
	if gui.Button(rl.Rectangle{X: x + half + 8, Y: float32(y), Width: half, Height: controlsButtonH}, toggleText(state.Dark, "Light theme", "Dark theme")) {
		in.ToggleTheme = true
	}

	return in
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
