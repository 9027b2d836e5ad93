package renderer

import (
	"image"
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// RaylibSurface draws into the current raylib frame. All methods must be
// called between rl.BeginDrawing and rl.EndDrawing on the window thread.
type RaylibSurface struct {
	width, height int

	// Resolved view texture, re-uploaded when the source image changes
	tex    rl.Texture2D
	texSrc image.Image
	hasTex bool
	texW   int
	texH   int
}

// NewRaylibSurface creates a surface of the given canvas size.
func NewRaylibSurface(width, height int) *RaylibSurface {
	return &RaylibSurface{width: width, height: height}
}

// Resize updates the canvas size after a window resize.
func (s *RaylibSurface) Resize(width, height int) {
	s.width, s.height = width, height
}

// Size returns the canvas size.
func (s *RaylibSurface) Size() (int, int) {
	return s.width, s.height
}

// Clear clears the frame to bg.
func (s *RaylibSurface) Clear(bg color.RGBA) {
	rl.ClearBackground(bg)
}

// FillSquares draws one rectangle per point.
func (s *RaylibSurface) FillSquares(xs, ys []float32, half float32, c color.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	col := rl.Fade(c, float32(opacity))
	size := rl.Vector2{X: half * 2, Y: half * 2}
	for i := range xs {
		rl.DrawRectangleV(rl.Vector2{X: xs[i] - half, Y: ys[i] - half}, size, col)
	}
}

// DrawImage draws img stretched over width x height, uploading it to a
// texture the first time it is seen.
func (s *RaylibSurface) DrawImage(img image.Image, width, height float64, opacity float64) {
	if img == nil || opacity <= 0 {
		return
	}
	if !s.hasTex || s.texSrc != img {
		s.upload(img)
	}

	src := rl.Rectangle{X: 0, Y: 0, Width: float32(s.texW), Height: float32(s.texH)}
	dst := rl.Rectangle{X: 0, Y: 0, Width: float32(width), Height: float32(height)}
	rl.DrawTexturePro(s.tex, src, dst, rl.Vector2{}, 0, rl.Fade(rl.White, float32(opacity)))
}

func (s *RaylibSurface) upload(img image.Image) {
	if s.hasTex {
		rl.UnloadTexture(s.tex)
	}
	rlImg := rl.NewImageFromImage(img)
	s.tex = rl.LoadTextureFromImage(rlImg)
	rl.UnloadImage(rlImg)
	rl.SetTextureFilter(s.tex, rl.FilterBilinear)

	b := img.Bounds()
	s.texW, s.texH = b.Dx(), b.Dy()
	s.texSrc = img
	s.hasTex = true
}

// Unload frees the texture.
func (s *RaylibSurface) Unload() {
	if s.hasTex {
		rl.UnloadTexture(s.tex)
		s.hasTex = false
		s.texSrc = nil
	}
}
