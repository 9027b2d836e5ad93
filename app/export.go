package app

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/targets"
	"github.com/pthm-cable/morph/theme"
)

// ExportOptions configures a one-off target generation.
type ExportOptions struct {
	Width, Height float64
	Count         int    // 0 = responsive tier for Width
	Seed          int64
	CSV           string // Target coordinates, empty = none
	PNG           string // Target preview, empty = none
	View          string // Resolved view, empty = none
	Simple        bool   // Text-only fallback path
}

// ExportTargets generates one target set for cfg.Content and writes the
// requested files. It returns the generated targets.
func ExportTargets(ctx context.Context, cfg *config.Config, opts ExportOptions) ([]points.Target, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = float64(cfg.Screen.Width), float64(cfg.Screen.Height)
	}
	if opts.Count <= 0 {
		opts.Count = cfg.PointCount(opts.Width)
	}

	gen := targets.NewGenerator(cfg.Targets, nil, opts.Seed, nil)
	text := cfg.Content.Text

	var (
		ts  []points.Target
		err error
	)
	if opts.Simple {
		ts, err = gen.GenerateTargetsSimple(text, opts.Width, opts.Height, opts.Count)
	} else {
		ts, err = gen.GenerateTargets(ctx, text, cfg.Content.Image, opts.Width, opts.Height, opts.Count)
	}
	if err != nil {
		return nil, err
	}

	dark := cfg.Theme.Prefer != "light"
	th, err := theme.FromPalette(cfg.Theme.Prefer, dark, cfg.Palette(dark))
	if err != nil {
		return nil, err
	}

	if opts.CSV != "" {
		if err := writeTargetsCSV(opts.CSV, ts); err != nil {
			return ts, err
		}
	}
	if opts.PNG != "" {
		img := previewTargets(ts, int(opts.Width), int(opts.Height), th)
		if err := writePNG(opts.PNG, img); err != nil {
			return ts, err
		}
	}
	if opts.View != "" {
		view, err := gen.GenerateResolvedView(ctx, text, cfg.Content.Image, opts.Width, opts.Height, th.ForegroundRGBA())
		if err != nil {
			return ts, err
		}
		if err := writePNG(opts.View, view); err != nil {
			return ts, err
		}
	}
	return ts, nil
}

func writeTargetsCSV(path string, ts []points.Target) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := gocsv.MarshalFile(&ts, f); err != nil {
		f.Close()
		return fmt.Errorf("writing targets: %w", err)
	}
	return f.Close()
}

// previewTargets plots each target as one pixel on the theme background.
func previewTargets(ts []points.Target, w, h int, th theme.Theme) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	bg := th.BackgroundRGBA()
	fg := th.ForegroundRGBA()
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	for _, t := range ts {
		img.SetRGBA(int(t.X), int(t.Y), fg)
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
