package targets

import (
	"math/rand"

	"github.com/pthm-cable/morph/points"
)

// SubsamplePixels returns exactly n coordinates drawn from pixels, or an
// empty slice if pixels is empty or n <= 0.
//
// With too few candidates every pixel is kept and the remainder is padded
// with randomly chosen duplicates. With too many, a uniform shuffle of a
// copy is truncated to n. The input is never modified.
func SubsamplePixels(pixels []points.Target, n int, rng *rand.Rand) []points.Target {
	if len(pixels) == 0 || n <= 0 {
		return []points.Target{}
	}

	if len(pixels) <= n {
		out := make([]points.Target, n)
		copy(out, pixels)
		for i := len(pixels); i < n; i++ {
			out[i] = pixels[rng.Intn(len(pixels))]
		}
		return out
	}

	shuffled := make([]points.Target, len(pixels))
	copy(shuffled, pixels)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n:n]
}
