// Target field preview tool - tune target generation with sliders and see
// the sampled targets live.
//
// Usage: go run ./cmd/targetpreview [-config path] [-text "HELLO"] [-image logo.png]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/targets"
)

const (
	windowWidth  = 1100
	windowHeight = 620
	canvasWidth  = 720
	canvasHeight = 540
	panelWidth   = windowWidth - canvasWidth - 30
)

// previewState is what the sliders control.
type previewState struct {
	params config.TargetsConfig
	count  int
	seed   int64
	simple bool
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	text := flag.String("text", "", "Text to preview (empty = config)")
	imageRef := flag.String("image", "", "Image path or URL (empty = config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *text != "" {
		cfg.Content.Text = *text
	}
	if *imageRef != "" {
		cfg.Content.Image = *imageRef
	}

	rl.InitWindow(windowWidth, windowHeight, "Target Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := previewState{
		params: cfg.Targets,
		count:  cfg.PointCount(canvasWidth),
		seed:   1,
	}
	state := defaults

	// One loader for the whole session so the image is fetched once
	loader := targets.NewLoader(nil, nil)
	var (
		ts         []points.Target
		genErr     error
		genElapsed time.Duration
	)
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			gen := targets.NewGenerator(state.params, loader, state.seed, nil)
			start := time.Now()
			if state.simple {
				ts, genErr = gen.GenerateTargetsSimple(cfg.Content.Text, canvasWidth, canvasHeight, state.count)
			} else {
				ts, genErr = gen.GenerateTargets(context.Background(), cfg.Content.Text, cfg.Content.Image, canvasWidth, canvasHeight, state.count)
			}
			genElapsed = time.Since(start)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Draw preview
		rl.DrawRectangle(10, 10, canvasWidth, canvasHeight, rl.Color{R: 10, G: 10, B: 10, A: 255})
		for _, t := range ts {
			rl.DrawRectangleV(rl.Vector2{X: 10 + t.X - 1, Y: 10 + t.Y - 1}, rl.Vector2{X: 2, Y: 2}, rl.Color{R: 57, G: 255, B: 20, A: 255})
		}
		rl.DrawRectangleLines(10, 10, canvasWidth, canvasHeight, rl.DarkGray)

		// Draw stats
		statsY := int32(canvasHeight + 25)
		status := fmt.Sprintf("Targets: %d  Generated in %s", len(ts), genElapsed.Round(time.Microsecond))
		if genErr != nil {
			status = fmt.Sprintf("Error: %v", genErr)
		}
		rl.DrawText(status, 15, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Text: %q  Image: %q", cfg.Content.Text, cfg.Content.Image), 15, statsY+20, 16, rl.DarkGray)

		// Control panel
		panelX := float32(canvasWidth + 20)
		panelY := float32(10)

		rl.DrawText("Target Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		p := &state.params
		if v, ok := slider(panelX, &panelY, "Luminance threshold", "%.0f", float32(p.LuminanceThreshold), 1, 254); ok {
			p.LuminanceThreshold = float64(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Text share", "%.2f", float32(p.TextShare), 0, 1); ok {
			p.TextShare = float64(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Working width (px)", "%.0f", float32(p.WorkingWidth), 100, 1200); ok && int(v) != p.WorkingWidth {
			p.WorkingWidth = int(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Text band (fraction of height)", "%.2f", float32(p.TextBand), 0.1, 0.6); ok {
			p.TextBand = float64(v)
			needsRegen = true
		}
		if v, ok := slider(panelX, &panelY, "Point count", "%.0f", float32(state.count), 100, 4000); ok && int(v) != state.count {
			state.count = int(v)
			needsRegen = true
		}
		panelY += 10

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(state.simple, "Full path", "Text only")) {
			state.simple = !state.simple
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reseed") {
			state.seed = int64(rl.GetRandomValue(1, 99999))
			needsRegen = true
		}
		panelY += 40
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 250, Height: 30}, "Reset All") {
			state = defaults
			needsRegen = true
		}
		panelY += 45

		// Output YAML
		out := targetsYAML(state.params)
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range []string{
			"targets:",
			fmt.Sprintf("  working_width: %d", p.WorkingWidth),
			fmt.Sprintf("  luminance_threshold: %.0f", p.LuminanceThreshold),
			fmt.Sprintf("  text_share: %.2f", p.TextShare),
			fmt.Sprintf("  text_band: %.2f", p.TextBand),
		} {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		// Instructions
		rl.DrawText("Press C to copy the targets section to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(out)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled slider and advances y. ok is true when the user
// moved it this frame.
func slider(x float32, y *float32, label, format string, value, minV, maxV float32) (float32, bool) {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 80), Height: 20},
		"", "",
		value, minV, maxV,
	)
	rl.DrawText(fmt.Sprintf(format, value), int32(x+float32(panelWidth-70)), int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v, v != value
}

// targetsYAML renders the full targets section as it appears in config.yaml.
func targetsYAML(p config.TargetsConfig) string {
	data, err := yaml.Marshal(map[string]config.TargetsConfig{"targets": p})
	if err != nil {
		return ""
	}
	return string(data)
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
