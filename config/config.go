// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Rendering  RenderingConfig  `yaml:"rendering"`
	Responsive ResponsiveConfig `yaml:"responsive"`
	Targets    TargetsConfig    `yaml:"targets"`
	Random     RandomConfig     `yaml:"random"`
	Resize     ResizeConfig     `yaml:"resize"`
	Theme      ThemeConfig      `yaml:"theme"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Content    ContentConfig    `yaml:"content"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	MaxDPR    float64 `yaml:"max_dpr"` // Device pixel ratio cap
}

// PhysicsConfig holds integrator and loop parameters.
// SpringK and Damping are per-step coefficients and are not scaled by DT.
type PhysicsConfig struct {
	SpringK          float64 `yaml:"spring_k"`
	Damping          float64 `yaml:"damping"`
	BaseTemperature  float64 `yaml:"base_temperature"`
	MaxTemperature   float64 `yaml:"max_temperature"`
	DT               float64 `yaml:"dt"`
	MaxStepsPerFrame int     `yaml:"max_steps_per_frame"`
	MaxFrameTime     float64 `yaml:"max_frame_time"`
	SettleThreshold  float64 `yaml:"settle_threshold"`
}

// PointerConfig holds pointer repulsion parameters.
type PointerConfig struct {
	RepulsionRadius   float64 `yaml:"repulsion_radius"`
	RepulsionStrength float64 `yaml:"repulsion_strength"`
	Epsilon           float64 `yaml:"epsilon"` // Distances below this get no repulsion
}

// RenderingConfig holds point drawing and crossfade parameters.
type RenderingConfig struct {
	PointRadius     float64 `yaml:"point_radius"`
	TransitionSpeed float64 `yaml:"transition_speed"` // Progress units per second
	Glow            bool    `yaml:"glow"`
}

// ResponsiveConfig maps viewport widths to point budgets.
type ResponsiveConfig struct {
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig is one responsive tier. MaxWidth 0 means unbounded.
type TierConfig struct {
	MaxWidth float64 `yaml:"max_width"`
	Count    int     `yaml:"count"`
}

// TargetsConfig holds target field rasterization parameters.
// Fractions are relative to the working buffer dimensions.
type TargetsConfig struct {
	WorkingWidth             int     `yaml:"working_width"`
	LuminanceThreshold       float64 `yaml:"luminance_threshold"`
	TextShare                float64 `yaml:"text_share"`
	TextWidthFraction        float64 `yaml:"text_width_fraction"`
	TextHeightFraction       float64 `yaml:"text_height_fraction"`
	TextCenter               float64 `yaml:"text_center"`
	TextBand                 float64 `yaml:"text_band"`
	ImageTop                 float64 `yaml:"image_top"`
	ImageMaxWidth            float64 `yaml:"image_max_width"`
	ImageMaxHeight           float64 `yaml:"image_max_height"`
	FallbackSquare           float64 `yaml:"fallback_square"`
	FallbackSquareTop        float64 `yaml:"fallback_square_top"`
	SimpleTextHeightFraction float64 `yaml:"simple_text_height_fraction"`
	ReferenceFontSize        float64 `yaml:"reference_font_size"`
	MinFontSize              float64 `yaml:"min_font_size"`
}

// RandomConfig holds noise table parameters.
type RandomConfig struct {
	TableSize int   `yaml:"table_size"`
	Seed      int64 `yaml:"seed"`
}

// ResizeConfig holds viewport resize filtering parameters.
type ResizeConfig struct {
	Debounce       float64 `yaml:"debounce"`         // Seconds
	MinHeightDelta float64 `yaml:"min_height_delta"` // Height changes at or below this are ignored
}

// ThemeConfig holds the two palettes and the initial preference.
type ThemeConfig struct {
	Prefer string        `yaml:"prefer"` // "dark" or "light"
	Dark   PaletteConfig `yaml:"dark"`
	Light  PaletteConfig `yaml:"light"`
}

// PaletteConfig holds hex colors for one theme.
type PaletteConfig struct {
	Foreground string  `yaml:"foreground"`
	Glow       string  `yaml:"glow"`
	GlowAlpha  float64 `yaml:"glow_alpha"`
	Background string  `yaml:"background"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int     `yaml:"perf_window"`
	LogInterval float64 `yaml:"log_interval"` // Seconds between stats log lines
}

// ContentConfig holds what the points resolve into.
type ContentConfig struct {
	Text               string  `yaml:"text"`
	Image              string  `yaml:"image"`
	InitialTemperature float64 `yaml:"initial_temperature"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxPoints    int           // Largest tier count, PointData capacity
	Step         time.Duration // Physics.DT as a duration
	Debounce     time.Duration // Resize.Debounce as a duration
	MaxFrameTime time.Duration // Physics.MaxFrameTime as a duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate reports every constraint the configuration violates.
func (c *Config) Validate() error {
	var errs []error
	p := c.Physics
	if p.Damping <= 0 || p.Damping >= 1 {
		errs = append(errs, fmt.Errorf("physics.damping must be in (0,1), got %g", p.Damping))
	}
	if p.SpringK <= 0 || p.SpringK > 1 {
		errs = append(errs, fmt.Errorf("physics.spring_k must be in (0,1], got %g", p.SpringK))
	}
	if p.DT <= 0 {
		errs = append(errs, fmt.Errorf("physics.dt must be positive, got %g", p.DT))
	}
	if p.MaxStepsPerFrame < 1 {
		errs = append(errs, fmt.Errorf("physics.max_steps_per_frame must be >= 1, got %d", p.MaxStepsPerFrame))
	}
	if p.MaxFrameTime <= 0 {
		errs = append(errs, fmt.Errorf("physics.max_frame_time must be positive, got %g", p.MaxFrameTime))
	}
	if n := c.Random.TableSize; n <= 0 || n&(n-1) != 0 {
		errs = append(errs, fmt.Errorf("random.table_size must be a power of two, got %d", n))
	}
	if s := c.Targets.TextShare; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("targets.text_share must be in [0,1], got %g", s))
	}
	if c.Targets.WorkingWidth <= 0 {
		errs = append(errs, fmt.Errorf("targets.working_width must be positive, got %d", c.Targets.WorkingWidth))
	}
	if len(c.Responsive.Tiers) == 0 {
		errs = append(errs, errors.New("responsive.tiers must not be empty"))
	}
	for i, tier := range c.Responsive.Tiers {
		if tier.Count <= 0 {
			errs = append(errs, fmt.Errorf("responsive.tiers[%d].count must be positive, got %d", i, tier.Count))
		}
	}
	if c.Theme.Prefer != "dark" && c.Theme.Prefer != "light" {
		errs = append(errs, fmt.Errorf("theme.prefer must be dark or light, got %q", c.Theme.Prefer))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.MaxPoints = 0
	for _, tier := range c.Responsive.Tiers {
		if tier.Count > c.Derived.MaxPoints {
			c.Derived.MaxPoints = tier.Count
		}
	}
	c.Derived.Step = seconds(c.Physics.DT)
	c.Derived.Debounce = seconds(c.Resize.Debounce)
	c.Derived.MaxFrameTime = seconds(c.Physics.MaxFrameTime)
}

// PointCount returns the point budget for a viewport width.
// Tiers are checked in order; the first whose MaxWidth exceeds width wins.
func (c *Config) PointCount(width float64) int {
	for _, tier := range c.Responsive.Tiers {
		if tier.MaxWidth == 0 || width < tier.MaxWidth {
			return tier.Count
		}
	}
	return c.Responsive.Tiers[len(c.Responsive.Tiers)-1].Count
}

// Palette returns the palette for the dark or light theme.
func (c *Config) Palette(dark bool) PaletteConfig {
	if dark {
		return c.Theme.Dark
	}
	return c.Theme.Light
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
