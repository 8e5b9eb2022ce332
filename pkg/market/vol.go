package market

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RealizedVol estimates annualized volatility from the trailing lookback
// window of log returns. It reports ok=false when fewer than two usable
// returns are available, leaving the caller's previous estimate intact.
func RealizedVol(prices []float64, lookback int, annualization float64) (vol float64, ok bool) {
	n := len(prices)
	if n < 3 {
		return 0, false
	}

	start := n - lookback
	if start < 1 {
		start = 1
	}

	rets := make([]float64, 0, n-start)
	for i := start; i < n; i++ {
		p0, p1 := prices[i-1], prices[i]
		if p0 <= 0 || p1 <= 0 {
			continue
		}
		rets = append(rets, math.Log(p1/p0))
	}
	if len(rets) < 2 {
		return 0, false
	}

	return stat.StdDev(rets, nil) * math.Sqrt(annualization), true
}
