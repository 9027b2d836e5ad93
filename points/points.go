// Package points holds the structure-of-arrays store for simulated points.
//
// Slot i across every slice describes one point. Only the first Count slots
// are active; slots at or beyond Count are inert and never read.
package points

import (
	"math"

	"gonum.org/v1/gonum/blas/blas32"
)

// Target is a canvas-space coordinate a point is attracted toward.
type Target struct {
	X float32 `csv:"x"`
	Y float32 `csv:"y"`
}

// Data stores current, previous and target positions for up to Capacity points.
// Velocity is implicit: current minus previous.
type Data struct {
	capacity int
	count    int

	PosX, PosY       []float32
	PrevX, PrevY     []float32
	TargetX, TargetY []float32
}

// New allocates storage for capacity points.
func New(capacity int) *Data {
	if capacity < 0 {
		capacity = 0
	}
	return &Data{
		capacity: capacity,
		PosX:     make([]float32, capacity),
		PosY:     make([]float32, capacity),
		PrevX:    make([]float32, capacity),
		PrevY:    make([]float32, capacity),
		TargetX:  make([]float32, capacity),
		TargetY:  make([]float32, capacity),
	}
}

// Capacity returns the fixed maximum point count.
func (d *Data) Capacity() int { return d.capacity }

// Count returns the number of active points.
func (d *Data) Count() int { return d.count }

// InitializeGrid lays count points (clamped to capacity) on a near-square
// lattice filling width x height. Current, previous and target are all set to
// the lattice position, so every point starts at rest.
func (d *Data) InitializeGrid(width, height float64, count int) {
	count = min(max(count, 0), d.capacity)
	if width <= 0 || height <= 0 {
		count = 0
	}
	d.count = count
	if count == 0 {
		return
	}

	aspect := width / height
	cols := int(math.Ceil(math.Sqrt(float64(count) * aspect)))
	cols = max(cols, 1)
	rows := (count + cols - 1) / cols

	// Points sit on interior lattice lines so none touch the canvas edge
	spacingX := width / float64(cols+1)
	spacingY := height / float64(rows+1)

	idx := 0
	for row := 0; row < rows && idx < count; row++ {
		y := float32(spacingY * float64(row+1))
		for col := 0; col < cols && idx < count; col++ {
			x := float32(spacingX * float64(col+1))
			d.PosX[idx], d.PosY[idx] = x, y
			d.PrevX[idx], d.PrevY[idx] = x, y
			d.TargetX[idx], d.TargetY[idx] = x, y
			idx++
		}
	}
}

// SetTargets copies up to min(len(targets), Count) targets. Slots without a
// supplied target keep their previous target.
func (d *Data) SetTargets(targets []Target) {
	n := min(len(targets), d.count)
	for i := 0; i < n; i++ {
		d.TargetX[i] = targets[i].X
		d.TargetY[i] = targets[i].Y
	}
}

// SnapToTargets moves every active point onto its target with zero velocity.
func (d *Data) SnapToTargets() {
	n := d.count
	copy(d.PosX[:n], d.TargetX[:n])
	copy(d.PosY[:n], d.TargetY[:n])
	copy(d.PrevX[:n], d.TargetX[:n])
	copy(d.PrevY[:n], d.TargetY[:n])
}

// Resize rescales all active coordinates from the old canvas size to the new one.
func (d *Data) Resize(oldWidth, oldHeight, newWidth, newHeight float64) {
	if oldWidth <= 0 || oldHeight <= 0 {
		return
	}
	sx := float32(newWidth / oldWidth)
	sy := float32(newHeight / oldHeight)
	n := d.count
	for i := 0; i < n; i++ {
		d.PosX[i] *= sx
		d.PosY[i] *= sy
		d.PrevX[i] *= sx
		d.PrevY[i] *= sy
		d.TargetX[i] *= sx
		d.TargetY[i] *= sy
	}
}

// Velocity returns the implicit velocity of point i.
func (d *Data) Velocity(i int) (vx, vy float32) {
	return d.PosX[i] - d.PrevX[i], d.PosY[i] - d.PrevY[i]
}

// Interpolated returns prev + (cur - prev) * alpha for point i.
func (d *Data) Interpolated(i int, alpha float32) (x, y float32) {
	x = d.PrevX[i] + (d.PosX[i]-d.PrevX[i])*alpha
	y = d.PrevY[i] + (d.PosY[i]-d.PrevY[i])*alpha
	return x, y
}

// InterpolateInto writes interpolated positions of all active points into
// dstX and dstY, which must hold at least Count elements.
func (d *Data) InterpolateInto(dstX, dstY []float32, alpha float32) {
	n := d.count
	if n == 0 {
		return
	}
	lerp(dstX[:n], d.PrevX[:n], d.PosX[:n], alpha)
	lerp(dstY[:n], d.PrevY[:n], d.PosY[:n], alpha)
}

// lerp computes dst = (1-alpha)*prev + alpha*cur.
func lerp(dst, prev, cur []float32, alpha float32) {
	n := len(dst)
	copy(dst, prev)
	d := blas32.Vector{N: n, Inc: 1, Data: dst}
	blas32.Scal(1-alpha, d)
	blas32.Axpy(alpha, blas32.Vector{N: n, Inc: 1, Data: cur}, d)
}
