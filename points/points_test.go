package points

import (
	"math"
	"testing"
)

func TestInitializeGridBoundsAndUniqueness(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		count         int
	}{
		{"landscape", 800, 600, 100},
		{"portrait", 390, 844, 600},
		{"wide strip", 1920, 200, 2000},
		{"single", 100, 100, 1},
		{"prime count", 1280, 720, 997},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(2000)
			d.InitializeGrid(tt.width, tt.height, tt.count)

			if d.Count() != tt.count {
				t.Fatalf("count = %d, want %d", d.Count(), tt.count)
			}

			seen := make(map[[2]float32]bool, d.Count())
			for i := 0; i < d.Count(); i++ {
				x, y := d.PosX[i], d.PosY[i]
				if x < 0 || float64(x) > tt.width || y < 0 || float64(y) > tt.height {
					t.Errorf("point %d at (%v,%v) outside %vx%v", i, x, y, tt.width, tt.height)
				}
				key := [2]float32{x, y}
				if seen[key] {
					t.Errorf("duplicate lattice coordinate (%v,%v)", x, y)
				}
				seen[key] = true

				if d.PrevX[i] != x || d.PrevY[i] != y {
					t.Errorf("point %d previous != current", i)
				}
				if d.TargetX[i] != x || d.TargetY[i] != y {
					t.Errorf("point %d target != current", i)
				}
			}
		})
	}
}

func TestInitializeGridClampsToCapacity(t *testing.T) {
	d := New(50)
	d.InitializeGrid(800, 600, 100)
	if d.Count() != 50 {
		t.Errorf("count = %d, want capacity 50", d.Count())
	}

	d.InitializeGrid(800, 600, -3)
	if d.Count() != 0 {
		t.Errorf("count = %d for negative request, want 0", d.Count())
	}

	d.InitializeGrid(0, 600, 10)
	if d.Count() != 0 {
		t.Errorf("count = %d for zero width, want 0", d.Count())
	}
}

func TestSetTargets(t *testing.T) {
	d := New(10)
	d.InitializeGrid(100, 100, 4)
	origX, origY := d.TargetX[3], d.TargetY[3]

	// Fewer targets than points: the rest keep their old target
	d.SetTargets([]Target{{1, 2}, {3, 4}, {5, 6}})
	if d.TargetX[0] != 1 || d.TargetY[0] != 2 || d.TargetX[2] != 5 {
		t.Errorf("targets not copied: %v %v", d.TargetX[:3], d.TargetY[:3])
	}
	if d.TargetX[3] != origX || d.TargetY[3] != origY {
		t.Error("unsupplied target slot was modified")
	}

	// More targets than points: extras are ignored
	d.SetTargets([]Target{{9, 9}, {9, 9}, {9, 9}, {9, 9}, {7, 7}, {7, 7}})
	if d.TargetX[4] != 0 || d.TargetY[4] != 0 {
		t.Error("target written beyond active count")
	}
}

func TestSnapToTargetsScenario(t *testing.T) {
	d := New(100)
	d.InitializeGrid(800, 600, 100)

	targets := make([]Target, 100)
	for i := range targets {
		targets[i] = Target{X: float32(i * 7 % 800), Y: float32(i * 13 % 600)}
	}
	d.SetTargets(targets)
	d.SnapToTargets()

	for i := 0; i < d.Count(); i++ {
		if d.PosX[i] != targets[i].X || d.PosY[i] != targets[i].Y {
			t.Errorf("point %d at (%v,%v), want target (%v,%v)", i, d.PosX[i], d.PosY[i], targets[i].X, targets[i].Y)
		}
		vx, vy := d.Velocity(i)
		if vx != 0 || vy != 0 {
			t.Errorf("point %d velocity (%v,%v), want exactly zero", i, vx, vy)
		}
	}
}

func TestResize(t *testing.T) {
	d := New(4)
	d.InitializeGrid(100, 100, 4)
	d.PosX[0], d.PosY[0] = 50, 20

	d.Resize(100, 100, 200, 50)

	if d.PosX[0] != 100 || d.PosY[0] != 10 {
		t.Errorf("resized position = (%v,%v), want (100,10)", d.PosX[0], d.PosY[0])
	}

	// Zero old size is ignored rather than producing Inf
	d.Resize(0, 0, 10, 10)
	if math.IsInf(float64(d.PosX[0]), 0) {
		t.Error("resize from zero size produced Inf")
	}
}

func TestInterpolation(t *testing.T) {
	d := New(3)
	d.InitializeGrid(100, 100, 3)
	for i := 0; i < 3; i++ {
		d.PrevX[i], d.PrevY[i] = 0, 10
		d.PosX[i], d.PosY[i] = 10, 30
	}

	tests := []struct {
		alpha float32
		x, y  float32
	}{
		{0, 0, 10},
		{0.5, 5, 20},
		{1, 10, 30},
	}

	dstX := make([]float32, 3)
	dstY := make([]float32, 3)
	for _, tt := range tests {
		x, y := d.Interpolated(1, tt.alpha)
		if math.Abs(float64(x-tt.x)) > 1e-5 || math.Abs(float64(y-tt.y)) > 1e-5 {
			t.Errorf("Interpolated(alpha=%v) = (%v,%v), want (%v,%v)", tt.alpha, x, y, tt.x, tt.y)
		}

		d.InterpolateInto(dstX, dstY, tt.alpha)
		for i := 0; i < 3; i++ {
			if math.Abs(float64(dstX[i]-tt.x)) > 1e-5 || math.Abs(float64(dstY[i]-tt.y)) > 1e-5 {
				t.Errorf("InterpolateInto(alpha=%v)[%d] = (%v,%v), want (%v,%v)", tt.alpha, i, dstX[i], dstY[i], tt.x, tt.y)
			}
		}
	}
}
