package ui

import (
	"strings"
	"testing"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/theme"
)

func TestStyleFor(t *testing.T) {
	cfg := config.Default()
	for _, dark := range []bool{true, false} {
		th, err := theme.FromPalette("test", dark, cfg.Palette(dark))
		if err != nil {
			t.Fatal(err)
		}
		s := StyleFor(th)
		if s.BarFill != th.ForegroundRGBA() {
			t.Errorf("dark=%v: bar fill %v, want foreground %v", dark, s.BarFill, th.ForegroundRGBA())
		}
		light := int(s.PanelBg.R)+int(s.PanelBg.G)+int(s.PanelBg.B) > 3*128
		if light == dark {
			t.Errorf("dark=%v: panel background %v has the wrong brightness", dark, s.PanelBg)
		}
	}
}

func TestControlsPanelContains(t *testing.T) {
	c := NewControlsPanel(10, 20, 200)
	h := float32(c.Height())

	tests := []struct {
		name string
		x, y float32
		want bool
	}{
		{"inside", 50, 30, true},
		{"top left corner", 10, 20, true},
		{"left of panel", 9, 30, false},
		{"right edge", 210, 30, false},
		{"below", 50, 20 + h, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}

	c.SetVisible(false)
	if c.Contains(50, 30) {
		t.Error("hidden panel captures input")
	}
}

func TestHUDRows(t *testing.T) {
	tests := []struct {
		name   string
		data   HUDData
		status string
	}{
		{"running", HUDData{Running: true}, "running"},
		{"settled", HUDData{Running: true, Frame: telemetry.FrameStats{Settled: true}}, "settled"},
		{"paused", HUDData{Frame: telemetry.FrameStats{Settled: true}}, "paused"},
		{"generating", HUDData{Running: true, Pending: 1}, "running (generating)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := hudRows(tt.data)
			if rows[0].label != "Status" || rows[0].value != tt.status {
				t.Errorf("status row = %+v, want %q", rows[0], tt.status)
			}
		})
	}

	rows := hudRows(HUDData{Running: true, Frame: telemetry.FrameStats{Points: 1500, Temperature: 15}})
	var joined []string
	for _, r := range rows {
		joined = append(joined, r.label+"="+r.value)
	}
	all := strings.Join(joined, ",")
	if !strings.Contains(all, "Points=1500") || !strings.Contains(all, "Temperature=15") {
		t.Errorf("rows = %s", all)
	}
}
