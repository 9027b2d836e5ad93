// Package physics advances point positions one fixed step at a time.
//
// The integrator is position based: velocity is implied by the difference
// between current and previous positions. Damping and spring coefficients are
// per-step constants and are deliberately not scaled by the step duration.
package physics

import (
	"math"

	"github.com/pthm-cable/morph/config"
	"github.com/pthm-cable/morph/points"
	"github.com/pthm-cable/morph/random"
)

// Pointer is an optional repulsor in canvas space.
type Pointer struct {
	X, Y   float32
	Active bool
}

// NoPointer is the inactive pointer.
var NoPointer = Pointer{}

// Params holds integrator coefficients.
type Params struct {
	SpringK           float32 // Fraction of the target offset applied per step
	Damping           float32 // Fraction of implied velocity retained per step
	BaseTemperature   float32 // Noise amplitude at temperature 0
	MaxTemperature    float32 // Additional amplitude at temperature 100
	RepulsionRadius   float32
	RepulsionStrength float32
	Epsilon           float32 // Pointer distances below this produce no repulsion
}

// ParamsFromConfig extracts integrator params from the loaded config.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		SpringK:           float32(cfg.Physics.SpringK),
		Damping:           float32(cfg.Physics.Damping),
		BaseTemperature:   float32(cfg.Physics.BaseTemperature),
		MaxTemperature:    float32(cfg.Physics.MaxTemperature),
		RepulsionRadius:   float32(cfg.Pointer.RepulsionRadius),
		RepulsionStrength: float32(cfg.Pointer.RepulsionStrength),
		Epsilon:           float32(cfg.Pointer.Epsilon),
	}
}

// Integrator applies momentum, attraction, noise and pointer repulsion.
type Integrator struct {
	params Params
	noise  *random.Source

	// scratch holds implied velocities for the settle check
	scratchX, scratchY []float32
}

// NewIntegrator creates an integrator drawing noise from src.
func NewIntegrator(params Params, src *random.Source) *Integrator {
	return &Integrator{params: params, noise: src}
}

// Params returns the integrator coefficients.
func (in *Integrator) Params() Params { return in.params }

// NoiseAmplitude maps temperature in [0,100] to a jitter amplitude.
func (in *Integrator) NoiseAmplitude(temperature float64) float32 {
	temperature = clamp(temperature, 0, 100)
	return in.params.BaseTemperature + float32(temperature/100)*in.params.MaxTemperature
}

// Step advances every active point by one fixed step.
func (in *Integrator) Step(p *points.Data, temperature float64, pointer Pointer) {
	n := p.Count()
	if n == 0 {
		return
	}

	noiseAmp := in.NoiseAmplitude(temperature)
	pull := in.params.SpringK
	momentum := in.params.Damping

	posX, posY := p.PosX[:n], p.PosY[:n]
	prevX, prevY := p.PrevX[:n], p.PrevY[:n]
	targetX, targetY := p.TargetX[:n], p.TargetY[:n]

	for i := 0; i < n; i++ {
		x, y := posX[i], posY[i]

		velX := x - prevX[i]
		velY := y - prevY[i]

		dx := targetX[i] - x
		dy := targetY[i] - y

		var rx, ry float32
		if pointer.Active {
			rx, ry = in.Repulsion(x, y, pointer)
		}

		prevX[i] = x
		prevY[i] = y
		posX[i] = x + momentum*velX + pull*dx + rx + noiseAmp*in.noise.Sample()
		posY[i] = y + momentum*velY + pull*dy + ry + noiseAmp*in.noise.Sample()
	}
}

// Repulsion returns the displacement pushing (x, y) away from the pointer.
// Falloff is quadratic in (1 - d/radius): full strength at the pointer, zero
// at the radius. Points outside the radius or within Epsilon get nothing.
func (in *Integrator) Repulsion(x, y float32, pointer Pointer) (float32, float32) {
	if !pointer.Active {
		return 0, 0
	}
	radius := in.params.RepulsionRadius
	dx := x - pointer.X
	dy := y - pointer.Y
	distSq := dx*dx + dy*dy
	if distSq >= radius*radius {
		return 0, 0
	}
	dist := float32(math.Sqrt(float64(distSq)))
	if dist < in.params.Epsilon {
		return 0, 0
	}
	falloff := 1 - dist/radius
	force := falloff * falloff * in.params.RepulsionStrength
	return dx / dist * force, dy / dist * force
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
