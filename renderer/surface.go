package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// Surface is a drawing target in canvas pixels.
type Surface interface {
	Size() (width, height int)
	Clear(bg color.RGBA)
	// FillSquares draws a square of half-side half centered on each
	// (xs[i], ys[i]), in c at the given overall opacity.
	FillSquares(xs, ys []float32, half float32, c color.RGBA, opacity float64)
	// DrawImage draws img scaled to width x height at the origin.
	DrawImage(img image.Image, width, height float64, opacity float64)
}

// ImageSurface is a software Surface backed by an RGBA buffer. Used by the
// headless runner and tests.
type ImageSurface struct {
	img *image.RGBA

	// Cache of the last scaled image
	scaledSrc image.Image
	scaled    *image.RGBA
}

// NewImageSurface allocates a width x height surface.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Resize reallocates the buffer. Contents are discarded.
func (s *ImageSurface) Resize(width, height int) {
	s.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	s.scaledSrc, s.scaled = nil, nil
}

// Image returns the backing buffer.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// Size returns the buffer dimensions.
func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Clear fills the whole buffer with bg.
func (s *ImageSurface) Clear(bg color.RGBA) {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
}

func opacityMask(opacity float64) *image.Uniform {
	a := uint8(math.Round(math.Max(0, math.Min(1, opacity)) * 255))
	return image.NewUniform(color.Alpha{A: a})
}

// FillSquares draws each square with draw.Over through a uniform opacity mask.
func (s *ImageSurface) FillSquares(xs, ys []float32, half float32, c color.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	src := image.NewUniform(c)
	mask := opacityMask(opacity)
	side := max(int(math.Round(float64(half*2))), 1)
	for i := range xs {
		x0 := int(math.Round(float64(xs[i] - half)))
		y0 := int(math.Round(float64(ys[i] - half)))
		r := image.Rect(x0, y0, x0+side, y0+side)
		draw.DrawMask(s.img, r, src, image.Point{}, mask, image.Point{}, draw.Over)
	}
}

// DrawImage scales img to width x height (cached while img is unchanged) and
// composites it at the given opacity.
func (s *ImageSurface) DrawImage(img image.Image, width, height float64, opacity float64) {
	if img == nil || opacity <= 0 {
		return
	}
	w, h := int(math.Round(width)), int(math.Round(height))
	if w < 1 || h < 1 {
		return
	}

	src := img
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		if s.scaledSrc != img || s.scaled == nil || s.scaled.Bounds().Dx() != w || s.scaled.Bounds().Dy() != h {
			s.scaled = image.NewRGBA(image.Rect(0, 0, w, h))
			xdraw.ApproxBiLinear.Scale(s.scaled, s.scaled.Bounds(), img, b, xdraw.Src, nil)
			s.scaledSrc = img
		}
		src = s.scaled
	}
	draw.DrawMask(s.img, image.Rect(0, 0, w, h), src, src.Bounds().Min, opacityMask(opacity), image.Point{}, draw.Over)
}

// WritePNG encodes the buffer to path.
func (s *ImageSurface) WritePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := png.Encode(f, s.img); err != nil {
		f.Close()
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return f.Close()
}
