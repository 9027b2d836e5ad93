// Package random provides a fast approximately-normal noise source for
// thermal jitter. It is not suitable for anything needing cryptographic
// randomness.
package random

import (
	"math"
	"math/rand"
)

// DefaultTableSize is the number of precomputed samples.
const DefaultTableSize = 4096

// Source produces standard-normal samples.
//
// Gaussian is the ground-truth generator (polar Box-Muller). Sample reads a
// lazily filled lookup table of ground-truth samples, which is what the hot
// physics loop uses. Source is not safe for concurrent use.
type Source struct {
	rng *rand.Rand

	spare    float64
	hasSpare bool

	table  []float32
	mask   int
	index  int
	filled bool
}

// New creates a source with the given table size (must be a power of two;
// anything else falls back to DefaultTableSize).
func New(seed int64, tableSize int) *Source {
	if tableSize <= 0 || tableSize&(tableSize-1) != 0 {
		tableSize = DefaultTableSize
	}
	return &Source{
		rng:   rand.New(rand.NewSource(seed)),
		table: make([]float32, tableSize),
		mask:  tableSize - 1,
	}
}

// Gaussian returns a standard-normal sample using the polar method.
// Each accepted pair yields two samples; the second is kept for the next call.
func (s *Source) Gaussian() float64 {
	if s.hasSpare {
		s.hasSpare = false
		return s.spare
	}

	var u, v, q float64
	for {
		u = s.rng.Float64()*2 - 1
		v = s.rng.Float64()*2 - 1
		q = u*u + v*v
		if q < 1 && q != 0 {
			break
		}
	}

	mul := math.Sqrt(-2 * math.Log(q) / q)
	s.spare = v * mul
	s.hasSpare = true
	return u * mul
}

// Sample returns the next table sample, filling the table on first use.
func (s *Source) Sample() float32 {
	if !s.filled {
		s.fill()
	}
	s.index = (s.index + 1) & s.mask
	return s.table[s.index]
}

// Refresh regenerates the whole table and resets the read index.
func (s *Source) Refresh() {
	s.fill()
	s.index = 0
}

// TableSize returns the lookup table length.
func (s *Source) TableSize() int {
	return len(s.table)
}

// Table exposes the lookup table, filling it if needed. Callers must not modify it.
func (s *Source) Table() []float32 {
	if !s.filled {
		s.fill()
	}
	return s.table
}

func (s *Source) fill() {
	for i := range s.table {
		s.table[i] = float32(s.Gaussian())
	}
	s.filled = true
}
