package targets

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// headlineFont parses the bundled bold face once. The parsed font is safe
// for concurrent use; faces built from it are not and are made per draw.
var headlineFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(gobold.TTF)
})

func newFace(size float64) (font.Face, error) {
	f, err := headlineFont()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// fitFontSize returns the largest whole font size, starting from reference,
// whose rendered text fits maxWidth and whose size does not exceed
// maxHeight. The result is never below minSize.
func fitFontSize(text string, maxWidth, maxHeight, reference, minSize float64) (float64, error) {
	size := reference

	face, err := newFace(reference)
	if err != nil {
		return 0, err
	}
	width := fixedToFloat(font.MeasureString(face, text))
	face.Close()

	if width > maxWidth && width > 0 {
		size = math.Floor(size * (maxWidth / width))
	}
	if size > maxHeight {
		size = math.Floor(maxHeight)
	}
	return math.Max(size, minSize), nil
}

// drawCenteredText draws text horizontally centered on cx with the middle of
// the em box on cy.
func drawCenteredText(dst draw.Image, text string, size, cx, cy float64, c color.Color) error {
	if text == "" {
		return nil
	}
	face, err := newFace(size)
	if err != nil {
		return drawBitmapText(dst, text, size, cx, cy, c)
	}
	defer face.Close()

	m := face.Metrics()
	width := fixedToFloat(font.MeasureString(face, text))
	baseline := cy + (fixedToFloat(m.Ascent)-fixedToFloat(m.Descent))/2

	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: floatToFixed(cx - width/2), Y: floatToFixed(baseline)},
	}
	d.DrawString(text)
	return nil
}

// drawBitmapText renders text with the built-in 7x13 face and scales it up to
// roughly size pixels tall. Used when the vector face is unavailable.
func drawBitmapText(dst draw.Image, text string, size, cx, cy float64, c color.Color) error {
	if text == "" {
		return nil
	}
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	h := face.Height

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	scale := size / float64(h)
	sw := int(math.Round(float64(w) * scale))
	sh := int(math.Round(float64(h) * scale))
	if sw < 1 || sh < 1 {
		return nil
	}
	scaled := image.NewAlpha(image.Rect(0, 0, sw, sh))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), mask, mask.Bounds(), xdraw.Src, nil)

	x0 := int(math.Round(cx - float64(sw)/2))
	y0 := int(math.Round(cy - float64(sh)/2))
	r := image.Rect(x0, y0, x0+sw, y0+sh)
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, scaled, image.Point{}, draw.Over)
	return nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
