// Package agent provides the trading participants that drive the simulated
// markets. Every agent draws randomness from its own source so runs are
// reproducible given a seed.
package agent

import "math/rand"

// uniform returns a draw from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// randQty returns an integer quantity in [1, max] as a float.
func randQty(rng *rand.Rand, max int) float64 {
	if max < 1 {
		max = 1
	}
	return float64(1 + rng.Intn(max))
}
