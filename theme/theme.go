// Package theme supplies the point and glow colors for the light and dark
// palettes, and notifies subscribers when the active palette changes.
package theme

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/morph/config"
)

// Theme is one resolved palette.
type Theme struct {
	Name       string
	Dark       bool
	Foreground colorful.Color
	Glow       colorful.Color
	GlowAlpha  float64
	Background colorful.Color
}

// FromPalette parses a configured palette.
func FromPalette(name string, dark bool, p config.PaletteConfig) (Theme, error) {
	fg, err := colorful.Hex(p.Foreground)
	if err != nil {
		return Theme{}, fmt.Errorf("theme %s: foreground: %w", name, err)
	}
	glow, err := colorful.Hex(p.Glow)
	if err != nil {
		return Theme{}, fmt.Errorf("theme %s: glow: %w", name, err)
	}
	bg, err := colorful.Hex(p.Background)
	if err != nil {
		return Theme{}, fmt.Errorf("theme %s: background: %w", name, err)
	}
	if p.GlowAlpha < 0 || p.GlowAlpha > 1 {
		return Theme{}, fmt.Errorf("theme %s: glow_alpha must be in [0,1], got %g", name, p.GlowAlpha)
	}
	return Theme{
		Name:       name,
		Dark:       dark,
		Foreground: fg,
		Glow:       glow,
		GlowAlpha:  p.GlowAlpha,
		Background: bg,
	}, nil
}

// ForegroundRGBA returns the opaque point color.
func (t Theme) ForegroundRGBA() color.RGBA {
	return toRGBA(t.Foreground, 1)
}

// GlowRGBA returns the glow color at its configured alpha.
func (t Theme) GlowRGBA() color.NRGBA {
	r, g, b := t.Glow.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(t.GlowAlpha*255 + 0.5)}
}

// BackgroundRGBA returns the opaque background color.
func (t Theme) BackgroundRGBA() color.RGBA {
	return toRGBA(t.Background, 1)
}

// Muted blends the foreground toward the background by f in [0,1], in Lab
// space. Used for secondary UI text.
func (t Theme) Muted(f float64) color.RGBA {
	return toRGBA(t.Foreground.BlendLab(t.Background, f).Clamped(), 1)
}

func toRGBA(c colorful.Color, alpha float64) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	a := uint8(alpha*255 + 0.5)
	if a == 255 {
		return color.RGBA{R: r, G: g, B: b, A: 255}
	}
	// color.RGBA is alpha-premultiplied
	return color.RGBA{
		R: uint8(uint16(r) * uint16(a) / 255),
		G: uint8(uint16(g) * uint16(a) / 255),
		B: uint8(uint16(b) * uint16(a) / 255),
		A: a,
	}
}

// Provider is the source of the active theme. Subscribers are called with the
// new theme whenever it changes; the returned func removes the subscription.
type Provider interface {
	Current() Theme
	Subscribe(fn func(Theme)) (unsubscribe func())
}

// Switcher is a Provider toggling between a dark and a light theme.
type Switcher struct {
	dark, light Theme

	mu     sync.Mutex
	isDark bool
	subs   map[int]func(Theme)
	nextID int
}

// NewSwitcher builds both palettes from cfg and selects cfg.Prefer.
func NewSwitcher(cfg config.ThemeConfig) (*Switcher, error) {
	dark, err := FromPalette("dark", true, cfg.Dark)
	if err != nil {
		return nil, err
	}
	light, err := FromPalette("light", false, cfg.Light)
	if err != nil {
		return nil, err
	}
	return &Switcher{
		dark:   dark,
		light:  light,
		isDark: cfg.Prefer != "light",
		subs:   make(map[int]func(Theme)),
	}, nil
}

// Current returns the active theme.
func (s *Switcher) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Switcher) current() Theme {
	if s.isDark {
		return s.dark
	}
	return s.light
}

// IsDark reports whether the dark theme is active.
func (s *Switcher) IsDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isDark
}

// SetDark selects the dark or light theme, notifying subscribers on change.
func (s *Switcher) SetDark(dark bool) {
	s.mu.Lock()
	if s.isDark == dark {
		s.mu.Unlock()
		return
	}
	s.isDark = dark
	t := s.current()
	subs := make([]func(Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(t)
	}
}

// Toggle flips between dark and light and returns the new theme.
func (s *Switcher) Toggle() Theme {
	s.SetDark(!s.IsDark())
	return s.Current()
}

// Subscribe registers fn for theme changes.
func (s *Switcher) Subscribe(fn func(Theme)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Static is a Provider that never changes.
type Static Theme

// Current returns the fixed theme.
func (s Static) Current() Theme { return Theme(s) }

// Subscribe never calls fn.
func (s Static) Subscribe(func(Theme)) func() { return func() {} }
