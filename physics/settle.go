package physics

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/morph/points"
)

// MeanSquaredVelocity returns the mean of |cur - prev|^2 over active points.
// Zero points yields zero.
func (in *Integrator) MeanSquaredVelocity(p *points.Data) float64 {
	n := p.Count()
	if n == 0 {
		return 0
	}
	if cap(in.scratchX) < n {
		in.scratchX = make([]float32, n)
		in.scratchY = make([]float32, n)
	}
	vx := in.scratchX[:n]
	vy := in.scratchY[:n]

	sum := velocitySq(vx, p.PosX[:n], p.PrevX[:n]) + velocitySq(vy, p.PosY[:n], p.PrevY[:n])
	return float64(sum) / float64(n)
}

// AreSettled reports whether mean squared velocity is below threshold^2.
// An empty point set is treated as settled.
func (in *Integrator) AreSettled(p *points.Data, threshold float64) bool {
	if p.Count() == 0 {
		return true
	}
	return in.MeanSquaredVelocity(p) < threshold*threshold
}

// velocitySq fills dst with cur - prev and returns its squared norm.
func velocitySq(dst, cur, prev []float32) float32 {
	n := len(dst)
	copy(dst, cur)
	v := blas32.Vector{N: n, Inc: 1, Data: dst}
	blas32.Axpy(-1, blas32.Vector{N: n, Inc: 1, Data: prev}, v)
	return blas32.Dot(v, v)
}
