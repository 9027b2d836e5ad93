// Package ui draws the raylib control panel and heads-up display on top of
// the point field.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/morph/theme"
)

// Style holds UI styling constants.
type Style struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultStyle returns the style used before any theme is applied.
func DefaultStyle() Style {
	return Style{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// StyleFor derives panel colors from the point field theme so the UI reads
// on both dark and light backgrounds.
func StyleFor(t theme.Theme) Style {
	s := DefaultStyle()
	fg := t.ForegroundRGBA()
	s.SectionHeader = fg
	s.BarFill = fg

	if t.Dark {
		return s
	}
	s.PanelBg = rl.Color{R: 245, G: 245, B: 248, A: 230}
	s.PanelBorder = rl.Color{R: 200, G: 200, B: 210, A: 255}
	s.LabelColor = rl.Color{R: 90, G: 90, B: 100, A: 255}
	s.ValueColor = rl.Color{R: 30, G: 30, B: 40, A: 255}
	s.BarBg = rl.Color{R: 220, G: 220, B: 228, A: 255}
	return s
}
