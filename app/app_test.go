package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/telemetry"
	"github.com/pthm-cable/morph/viewport"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Content.Text = "AB"
	cfg.Content.Image = ""
	cfg.Content.InitialTemperature = 0
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunHeadless(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "final.png")
	var plot bytes.Buffer
	var frames int

	res, err := RunHeadless(context.Background(), testConfig(), HeadlessOptions{
		Options: Options{
			Seed:      7,
			OutputDir: filepath.Join(dir, "out"),
			Logger:    quietLogger(),
			OnFrame:   func(telemetry.FrameStats) { frames++ },
		},
		Frames:   1500,
		Size:     viewport.Size{Width: 400, Height: 300, DPR: 1},
		Snapshot: snapshot,
		Plot:     &plot,
	})
	if err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}

	if res.Frames != 1500 || frames != 1500 {
		t.Errorf("ran %d frames, observed %d, want 1500", res.Frames, frames)
	}
	if res.Points != 600 || res.Targets != 600 {
		t.Errorf("points=%d targets=%d, want 600 each", res.Points, res.Targets)
	}
	if !res.Settled || res.SettledAt < 1 {
		t.Errorf("settled=%v at %d", res.Settled, res.SettledAt)
	}
	if !strings.Contains(plot.String(), "mean squared velocity") {
		t.Errorf("plot missing caption:\n%s", plot.String())
	}

	for _, name := range []string{"final.png", "out/stats.csv", "out/perf.csv", "out/config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestRunHeadlessReducedMotion(t *testing.T) {
	res, err := RunHeadless(context.Background(), testConfig(), HeadlessOptions{
		Options: Options{Seed: 7, ReducedMotion: true, Logger: quietLogger()},
		Frames:  10,
		Size:    viewport.Size{Width: 400, Height: 300},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Settled {
		t.Error("reduced motion run did not report settled")
	}
	// No frames are rendered by the loop
	if res.Last.Frame != 0 {
		t.Errorf("loop rendered %d frames under reduced motion", res.Last.Frame)
	}
}

func TestRunHeadlessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunHeadless(ctx, testConfig(), HeadlessOptions{
		Options: Options{Seed: 7, Logger: quietLogger()},
		Frames:  10,
	})
	if err == nil {
		t.Fatal("cancelled run returned no error")
	}
}

func TestExportTargets(t *testing.T) {
	tests := []struct {
		name   string
		simple bool
	}{
		{"full", false},
		{"simple", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := ExportOptions{
				Width:  600,
				Height: 400,
				Count:  250,
				Seed:   3,
				CSV:    filepath.Join(dir, "targets.csv"),
				PNG:    filepath.Join(dir, "targets.png"),
				View:   filepath.Join(dir, "view.png"),
				Simple: tt.simple,
			}
			ts, err := ExportTargets(context.Background(), testConfig(), opts)
			if err != nil {
				t.Fatalf("ExportTargets: %v", err)
			}
			if len(ts) != 250 {
				t.Fatalf("got %d targets, want 250", len(ts))
			}

			f, err := os.Open(opts.CSV)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			var read []points.Target
			if err := gocsv.UnmarshalFile(f, &read); err != nil {
				t.Fatalf("reading CSV: %v", err)
			}
			if len(read) != len(ts) {
				t.Fatalf("CSV holds %d targets, want %d", len(read), len(ts))
			}
			if read[0] != ts[0] {
				t.Errorf("first target = %v, want %v", read[0], ts[0])
			}

			for _, p := range []string{opts.PNG, opts.View} {
				if _, err := os.Stat(p); err != nil {
					t.Error(err)
				}
			}
		})
	}
}

func TestExportTargetsDefaultsToTier(t *testing.T) {
	ts, err := ExportTargets(context.Background(), testConfig(), ExportOptions{Width: 1000, Height: 600, Seed: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(ts) != 1500 {
		t.Errorf("got %d targets, want tier count 1500", len(ts))
	}
}
