package targets

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// newCanvas allocates a w x h RGBA buffer filled with bg. A nil bg leaves it
// fully transparent.
func newCanvas(w, h int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	return img
}

// fillRect fills the float rectangle, rounded to whole pixels.
func fillRect(dst draw.Image, x, y, w, h float64, c color.Color) {
	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// fitRect returns the largest size with src's aspect ratio that fits within
// maxW x maxH.
func fitRect(srcW, srcH int, maxW, maxH float64) (w, h float64) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	aspect := float64(srcW) / float64(srcH)
	if aspect > maxW/maxH {
		return maxW, maxW / aspect
	}
	return maxH * aspect, maxH
}

// drawImageFit scales src to fit maxW x maxH, centers it horizontally and
// draws it with its top edge at top.
func drawImageFit(dst draw.Image, src image.Image, maxW, maxH, top float64) {
	canvasW := float64(dst.Bounds().Dx())
	b := src.Bounds()
	w, h := fitRect(b.Dx(), b.Dy(), maxW, maxH)
	if w < 1 || h < 1 {
		return
	}
	x := (canvasW - w) / 2
	r := image.Rect(
		int(math.Round(x)), int(math.Round(top)),
		int(math.Round(x+w)), int(math.Round(top+h)),
	)
	xdraw.CatmullRom.Scale(dst, r, src, b, xdraw.Over, nil)
}

// luminance returns perceived brightness in [0,255].
func luminance(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// filledPixel is a working-buffer coordinate whose luminance passed the threshold.
type filledPixel struct {
	X, Y int
}

// scanFilled returns every pixel of img brighter than threshold, in row order.
func scanFilled(img *image.RGBA, threshold float64) []filledPixel {
	b := img.Bounds()
	var out []filledPixel
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := x * 4
			if luminance(row[i], row[i+1], row[i+2]) > threshold {
				out = append(out, filledPixel{X: x, Y: y - b.Min.Y})
			}
		}
	}
	return out
}
