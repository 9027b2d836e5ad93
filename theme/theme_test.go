package theme

import (
	"image/color"
	"testing"

	"github.com/pthm-cable/morph/config"
)

func TestDefaultPalettes(t *testing.T) {
	s, err := NewSwitcher(config.Default().Theme)
	if err != nil {
		t.Fatalf("NewSwitcher: %v", err)
	}

	dark := s.Current()
	if !dark.Dark {
		t.Fatal("default theme should be dark")
	}
	if got := dark.ForegroundRGBA(); got != (color.RGBA{R: 0x39, G: 0xff, B: 0x14, A: 0xff}) {
		t.Errorf("dark foreground = %v, want #39ff14", got)
	}
	if got := dark.GlowRGBA(); got.A != 102 {
		t.Errorf("dark glow alpha = %d, want 102", got.A)
	}

	light := s.Toggle()
	if light.Dark {
		t.Fatal("Toggle did not switch to light")
	}
	if got := light.ForegroundRGBA(); got != (color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}) {
		t.Errorf("light foreground = %v, want #2563eb", got)
	}
	if got := light.GlowRGBA(); got.A != 77 {
		t.Errorf("light glow alpha = %d, want 77", got.A)
	}
}

func TestFromPaletteErrors(t *testing.T) {
	good := config.PaletteConfig{Foreground: "#ffffff", Glow: "#ffffff", GlowAlpha: 0.5, Background: "#000000"}

	tests := []struct {
		name   string
		mutate func(*config.PaletteConfig)
	}{
		{"bad foreground", func(p *config.PaletteConfig) { p.Foreground = "green" }},
		{"bad glow", func(p *config.PaletteConfig) { p.Glow = "#12" }},
		{"bad background", func(p *config.PaletteConfig) { p.Background = "" }},
		{"alpha too high", func(p *config.PaletteConfig) { p.GlowAlpha = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := good
			tt.mutate(&p)
			if _, err := FromPalette("test", true, p); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := FromPalette("test", true, good); err != nil {
		t.Errorf("valid palette: %v", err)
	}
}

func TestSwitcherNotifiesSubscribers(t *testing.T) {
	s, err := NewSwitcher(config.Default().Theme)
	if err != nil {
		t.Fatal(err)
	}

	var got []bool
	unsubscribe := s.Subscribe(func(th Theme) { got = append(got, th.Dark) })

	s.SetDark(true) // unchanged, no notification
	s.SetDark(false)
	s.SetDark(true)
	unsubscribe()
	s.SetDark(false)

	want := []bool{false, true}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPreferLight(t *testing.T) {
	cfg := config.Default().Theme
	cfg.Prefer = "light"
	s, err := NewSwitcher(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if s.IsDark() {
		t.Error("prefer light started dark")
	}
}

func TestMuted(t *testing.T) {
	th, err := FromPalette("t", true, config.PaletteConfig{
		Foreground: "#ffffff", Glow: "#ffffff", GlowAlpha: 0.4, Background: "#000000",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := th.Muted(0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Muted(0) = %v, want white", got)
	}
	if got := th.Muted(1); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("Muted(1) = %v, want black", got)
	}
	mid := th.Muted(0.5)
	if mid.R == 0 || mid.R == 255 {
		t.Errorf("Muted(0.5) = %v, want a grey", mid)
	}
}

func TestStatic(t *testing.T) {
	th := Theme{Name: "fixed"}
	p := Provider(Static(th))
	if p.Current().Name != "fixed" {
		t.Error("Static.Current returned wrong theme")
	}
	p.Subscribe(func(Theme) { t.Error("Static should never notify") })()
}
