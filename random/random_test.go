package random

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestGaussianMoments(t *testing.T) {
	src := New(7, DefaultTableSize)

	const n = 200000
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = src.Gaussian()
	}

	mean, variance := stat.MeanVariance(samples, nil)
	if math.Abs(mean) > 0.02 {
		t.Errorf("mean = %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 0.02 {
		t.Errorf("variance = %v, want ~1", variance)
	}
}

func TestTableMoments(t *testing.T) {
	src := New(11, DefaultTableSize)

	table := src.Table()
	values := make([]float64, len(table))
	for i, v := range table {
		values[i] = float64(v)
	}

	mean, std := stat.MeanStdDev(values, nil)
	if math.Abs(mean) > 0.1 {
		t.Errorf("table mean = %v, want ~0", mean)
	}
	if math.Abs(std-1) > 0.1 {
		t.Errorf("table std = %v, want ~1", std)
	}
}

func TestSampleCyclesThroughTable(t *testing.T) {
	src := New(3, 8)

	first := make([]float32, 8)
	for i := range first {
		first[i] = src.Sample()
	}
	for i := range first {
		if got := src.Sample(); got != first[i] {
			t.Fatalf("sample %d = %v on second cycle, want %v", i, got, first[i])
		}
	}
}

func TestSampleFillsLazily(t *testing.T) {
	src := New(5, 16)
	if src.filled {
		t.Fatal("table should not be filled before first use")
	}
	src.Sample()
	if !src.filled {
		t.Error("table should be filled after first Sample")
	}
}

func TestRefreshRegeneratesTable(t *testing.T) {
	src := New(9, 64)
	before := append([]float32(nil), src.Table()...)

	src.Sample()
	src.Sample()
	src.Refresh()

	if src.index != 0 {
		t.Errorf("index = %d after Refresh, want 0", src.index)
	}

	same := 0
	for i, v := range src.Table() {
		if v == before[i] {
			same++
		}
	}
	if same == len(before) {
		t.Error("Refresh left the table unchanged")
	}
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{0, DefaultTableSize},
		{-4, DefaultTableSize},
		{1000, DefaultTableSize},
		{1024, 1024},
		{1, 1},
	}
	for _, tt := range tests {
		if got := New(1, tt.size).TableSize(); got != tt.want {
			t.Errorf("New(_, %d).TableSize() = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestSamplesAreFinite(t *testing.T) {
	src := New(13, 256)
	for i := 0; i < 10000; i++ {
		v := src.Sample()
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("sample %d is not finite: %v", i, v)
		}
	}
}
