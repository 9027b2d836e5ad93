package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/morph/app"
	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/viewport"
)

var (
	// Shared
	configPath    string
	text          string
	imageRef      string
	temperature   float64
	reducedMotion bool
	dark          bool
	light         bool
	seed          int64
	logLevel      string
	logFormat     string
	logStats      bool
	outputDir     string

	// headless
	frames      int
	width       float64
	height      float64
	dpr         float64
	snapshot    string
	plot        bool
	viewAtFrame int

	// targets
	count     int
	csvPath   string
	pngPath   string
	viewPath  string
	simpleGen bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "morph",
		Short:         "point field that resolves into text and an image",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWindow,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")
	pf.StringVar(&text, "text", "", "text to resolve into (empty = config)")
	pf.StringVar(&imageRef, "image", "", "image path or URL (empty = config)")
	pf.Float64Var(&temperature, "temperature", -1, "initial temperature 0-100 (negative = config)")
	pf.BoolVar(&reducedMotion, "reduced-motion", false, "show the resolved state without animating")
	pf.BoolVar(&dark, "dark", false, "start with the dark theme")
	pf.BoolVar(&light, "light", false, "start with the light theme")
	pf.Int64Var(&seed, "seed", 0, "RNG seed (0 = time-based)")
	pf.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "json", "log format: json or text")
	pf.BoolVar(&logStats, "log-stats", false, "output stats windows via slog")
	pf.StringVar(&outputDir, "output-dir", "", "output directory for CSV logs and config snapshot")
	rootCmd.MarkFlagsMutuallyExclusive("dark", "light")

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run without a window against a software surface",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	headlessCmd.Flags().IntVar(&frames, "frames", 600, "display frames to run")
	headlessCmd.Flags().Float64Var(&width, "width", 0, "canvas width (0 = config)")
	headlessCmd.Flags().Float64Var(&height, "height", 0, "canvas height (0 = config)")
	headlessCmd.Flags().Float64Var(&dpr, "dpr", 1, "device pixel ratio")
	headlessCmd.Flags().StringVar(&snapshot, "snapshot", "", "write the final frame to this PNG")
	headlessCmd.Flags().BoolVar(&plot, "plot", false, "print the settle curve")
	headlessCmd.Flags().IntVar(&viewAtFrame, "view-at", 0, "switch to the resolved view at this frame (0 = never)")

	targetsCmd := &cobra.Command{
		Use:   "targets",
		Short: "generate one target set and write it as CSV and PNG",
		Args:  cobra.NoArgs,
		RunE:  runTargets,
	}
	targetsCmd.Flags().Float64Var(&width, "width", 0, "canvas width (0 = config)")
	targetsCmd.Flags().Float64Var(&height, "height", 0, "canvas height (0 = config)")
	targetsCmd.Flags().IntVar(&count, "count", 0, "number of targets (0 = responsive tier)")
	targetsCmd.Flags().StringVar(&csvPath, "csv", "targets.csv", "CSV output path (empty = none)")
	targetsCmd.Flags().StringVar(&pngPath, "png", "", "target preview PNG (empty = none)")
	targetsCmd.Flags().StringVar(&viewPath, "view", "", "resolved view PNG (empty = none)")
	targetsCmd.Flags().BoolVar(&simpleGen, "simple", false, "use the text-only generation path")

	rootCmd.AddCommand(headlessCmd, targetsCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("morph failed", "error", err)
		os.Exit(1)
	}
}

// setup loads config, applies flag overrides and installs the logger.
func setup() (*config.Config, app.Options, error) {
	logger, err := newLogger(logLevel, logFormat)
	if err != nil {
		return nil, app.Options{}, err
	}
	slog.SetDefault(logger)

	if err := config.Init(configPath); err != nil {
		return nil, app.Options{}, fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()

	if text != "" {
		cfg.Content.Text = text
	}
	if imageRef != "" {
		cfg.Content.Image = imageRef
	}
	if temperature >= 0 {
		cfg.Content.InitialTemperature = temperature
	}
	switch {
	case dark:
		cfg.Theme.Prefer = "dark"
	case light:
		cfg.Theme.Prefer = "light"
	}

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = cfg.Random.Seed
	}
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	return cfg, app.Options{
		Seed:          rngSeed,
		ReducedMotion: reducedMotion,
		LogStats:      logStats,
		OutputDir:     outputDir,
		Logger:        logger,
	}, nil
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stdout, handlerOpts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stdout, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q", format)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runWindow(cmd *cobra.Command, args []string) error {
	cfg, opts, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	slog.Info("starting morph", "seed", opts.Seed, "text", cfg.Content.Text, "image", cfg.Content.Image)
	return app.RunWindow(ctx, cfg, opts)
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, opts, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	hopts := app.HeadlessOptions{
		Options:  opts,
		Frames:   frames,
		Size:     viewport.Size{Width: width, Height: height, DPR: dpr},
		Snapshot: snapshot,
		ViewAt:   viewAtFrame,
	}
	if plot {
		hopts.Plot = cmd.OutOrStdout()
	}

	res, err := app.RunHeadless(ctx, cfg, hopts)
	if err != nil {
		return err
	}
	slog.Info("summary",
		"frames", res.Frames,
		"points", res.Points,
		"targets", res.Targets,
		"settled", res.Settled,
		"settled_at", res.SettledAt,
		"mean_sq_vel", res.Last.MeanSqVel,
	)
	return nil
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg, opts, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	ts, err := app.ExportTargets(ctx, cfg, app.ExportOptions{
		Width:  width,
		Height: height,
		Count:  count,
		Seed:   opts.Seed,
		CSV:    csvPath,
		PNG:    pngPath,
		View:   viewPath,
		Simple: simpleGen,
	})
	if err != nil {
		return err
	}
	slog.Info("targets written", "count", len(ts), "csv", csvPath, "png", pngPath, "view", viewPath)
	return nil
}
