// Package targets turns text and an optional image into target coordinates
// for the point field, and renders the matching resolved view.
//
// Content is rasterized onto a downscaled working buffer, thresholded by
// luminance, split into a text band and an image region, and subsampled so
// the result always has the requested length (unless nothing was filled).
package targets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/points"
)

// Generator produces target sets and resolved views. Safe for concurrent use;
// each call draws from its own random stream.
type Generator struct {
	params config.TargetsConfig
	loader *Loader
	logger *slog.Logger

	seed  int64
	calls atomic.Int64
}

// NewGenerator creates a generator. A nil loader gets a default one.
func NewGenerator(params config.TargetsConfig, loader *Loader, seed int64, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = NewLoader(nil, logger)
	}
	return &Generator{
		params: params,
		loader: loader,
		logger: logger,
		seed:   seed,
	}
}

// Params returns the generator's layout parameters.
func (g *Generator) Params() config.TargetsConfig {
	return g.params
}

// Loader returns the image loader shared by all generation calls.
func (g *Generator) Loader() *Loader {
	return g.loader
}

func (g *Generator) newRand() *rand.Rand {
	return rand.New(rand.NewSource(g.seed + g.calls.Add(1)))
}

// workingSize returns the downscale factor and working buffer size for a
// canvas. The buffer is capped at WorkingWidth and never upscaled.
func (g *Generator) workingSize(width, height float64) (scale float64, w, h int, err error) {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return 0, 0, 0, &TargetGenerationError{Stage: "layout", Err: ErrInvalidDimensions}
	}
	scale = math.Min(1, float64(g.params.WorkingWidth)/width)
	w = int(math.Floor(width * scale))
	h = int(math.Floor(height * scale))
	if w < 1 || h < 1 {
		return 0, 0, 0, &TargetGenerationError{Stage: "layout", Err: ErrInvalidDimensions}
	}
	return scale, w, h, nil
}

// GenerateTargets returns count targets forming text in a top band and the
// image referenced by imageRef below it, in canvas coordinates.
//
// An image that fails to load is replaced by a filled square and logged;
// it is not an error. A cancelled ctx is reported as a
// *TargetGenerationError. If nothing was filled the result is empty and the
// error is ErrEmptyTargetSet.
func (g *Generator) GenerateTargets(ctx context.Context, text, imageRef string, width, height float64, count int) ([]points.Target, error) {
	start := time.Now()
	p := g.params

	scale, w, h, err := g.workingSize(width, height)
	if err != nil {
		return nil, err
	}
	canvas := newCanvas(w, h, color.Black)
	fw, fh := float64(w), float64(h)

	size, err := fitFontSize(text, fw*p.TextWidthFraction, fh*p.TextHeightFraction, p.ReferenceFontSize, p.MinFontSize)
	if err != nil {
		return nil, &TargetGenerationError{Stage: "font", Err: err}
	}
	if err := drawCenteredText(canvas, text, size, fw/2, fh*p.TextCenter, color.White); err != nil {
		return nil, &TargetGenerationError{Stage: "font", Err: err}
	}

	hasImage := imageRef != ""
	if hasImage {
		img, err := g.loader.Load(ctx, imageRef).Await(ctx)
		switch {
		case err == nil:
			drawImageFit(canvas, img, fw*p.ImageMaxWidth, fh*p.ImageMaxHeight, fh*p.ImageTop)
		case ctx.Err() != nil:
			return nil, &TargetGenerationError{Stage: "image", Err: err}
		default:
			g.logger.Warn("image load failed, using fallback square", "ref", imageRef, "error", err)
			side := math.Min(fw, fh) * p.FallbackSquare
			fillRect(canvas, (fw-side)/2, fh*p.FallbackSquareTop, side, side, color.White)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &TargetGenerationError{Stage: "scan", Err: err}
	}

	band := int(fh * p.TextBand)
	var textPixels, imagePixels []points.Target
	for _, px := range scanFilled(canvas, p.LuminanceThreshold) {
		t := points.Target{X: float32(float64(px.X) / scale), Y: float32(float64(px.Y) / scale)}
		if px.Y < band {
			textPixels = append(textPixels, t)
		} else {
			imagePixels = append(imagePixels, t)
		}
	}

	textQuota, imageQuota := splitQuota(count, p.TextShare, len(textPixels), len(imagePixels))

	rng := g.newRand()
	result := make([]points.Target, 0, count)
	result = append(result, SubsamplePixels(textPixels, textQuota, rng)...)
	result = append(result, SubsamplePixels(imagePixels, imageQuota, rng)...)
	rng.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})

	g.logger.Debug("targets generated",
		"text_pixels", len(textPixels),
		"image_pixels", len(imagePixels),
		"count", len(result),
		"working_width", w,
		"working_height", h,
		"elapsed", time.Since(start),
	)

	if len(result) == 0 {
		g.logger.Warn("target set is empty", "text", text, "image", imageRef)
		return result, ErrEmptyTargetSet
	}
	return result, nil
}

// splitQuota divides count between the text and image regions. A region with
// no filled pixels hands its whole quota to the other.
func splitQuota(count int, textShare float64, textPixels, imagePixels int) (textQuota, imageQuota int) {
	if count <= 0 {
		return 0, 0
	}
	switch {
	case textPixels == 0 && imagePixels == 0:
		return 0, 0
	case imagePixels == 0:
		return count, 0
	case textPixels == 0:
		return 0, count
	}
	textQuota = int(math.Round(float64(count) * textShare))
	return textQuota, count - textQuota
}

// GenerateTargetsSimple is the text-only path: text centered vertically, no
// image region, whole budget to the text.
func (g *Generator) GenerateTargetsSimple(text string, width, height float64, count int) ([]points.Target, error) {
	p := g.params

	scale, w, h, err := g.workingSize(width, height)
	if err != nil {
		return nil, err
	}
	canvas := newCanvas(w, h, color.Black)
	fw, fh := float64(w), float64(h)

	size, err := fitFontSize(text, fw*p.TextWidthFraction, fh*p.SimpleTextHeightFraction, p.ReferenceFontSize, p.MinFontSize)
	if err != nil {
		return nil, &TargetGenerationError{Stage: "font", Err: err}
	}
	if err := drawCenteredText(canvas, text, size, fw/2, fh/2, color.White); err != nil {
		return nil, &TargetGenerationError{Stage: "font", Err: err}
	}

	filled := scanFilled(canvas, p.LuminanceThreshold)
	pixels := make([]points.Target, len(filled))
	for i, px := range filled {
		pixels[i] = points.Target{X: float32(float64(px.X) / scale), Y: float32(float64(px.Y) / scale)}
	}

	result := SubsamplePixels(pixels, count, g.newRand())
	if len(result) == 0 {
		g.logger.Warn("target set is empty", "text", text)
		return result, ErrEmptyTargetSet
	}
	return result, nil
}

// GenerateResolvedView renders text and image at full canvas resolution on a
// transparent background, with text in fg. The layout matches
// GenerateTargets so the crossfade lines up with the settled points. An image
// that fails to load is omitted.
func (g *Generator) GenerateResolvedView(ctx context.Context, text, imageRef string, width, height float64, fg color.Color) (*image.RGBA, error) {
	p := g.params

	w, h := int(math.Round(width)), int(math.Round(height))
	if w < 1 || h < 1 {
		return nil, &TargetGenerationError{Stage: "layout", Err: ErrInvalidDimensions}
	}
	canvas := newCanvas(w, h, nil)
	fw, fh := float64(w), float64(h)

	// Font sizing is computed at working resolution and scaled up, so glyph
	// proportions match the sampled targets.
	scale, ww, wh, err := g.workingSize(fw, fh)
	if err != nil {
		return nil, err
	}
	size, err := fitFontSize(text, float64(ww)*p.TextWidthFraction, float64(wh)*p.TextHeightFraction, p.ReferenceFontSize, p.MinFontSize)
	if err != nil {
		return nil, &TargetGenerationError{Stage: "font", Err: err}
	}
	if err := drawCenteredText(canvas, text, size/scale, fw/2, fh*p.TextCenter, fg); err != nil {
		return nil, &TargetGenerationError{Stage: "font", Err: err}
	}

	if imageRef != "" {
		img, err := g.loader.Load(ctx, imageRef).Await(ctx)
		switch {
		case err == nil:
			drawImageFit(canvas, img, fw*p.ImageMaxWidth, fh*p.ImageMaxHeight, fh*p.ImageTop)
		case ctx.Err() != nil:
			return nil, &TargetGenerationError{Stage: "image", Err: err}
		default:
			var loadErr *AssetLoadError
			if errors.As(err, &loadErr) {
				g.logger.Warn("resolved view omits image", "ref", loadErr.Ref, "error", loadErr.Err)
			}
		}
	}
	return canvas, nil
}
