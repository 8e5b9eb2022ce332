package pricing

// Bisection bounds and budget for the implied-volatility search.
const (
	IVLowerBound    = 1e-4
	IVUpperBound    = 5.0
	IVTolerance     = 1e-6
	IVMaxIterations = 100
)

// ImpliedVolatility inverts Price over volatility by bisection, so that
// Price(s, k, r, q, iv, t, kind) approximates observed.
//
// It reports ok=false when the input is degenerate (non-positive observed
// price, spot, strike, or time-to-expiry). Bisection is valid because Price
// is monotonically increasing in volatility on the searched bracket. The
// search always terminates: if the iteration budget is exhausted before the
// tolerance is met, the midpoint of the final bracket is returned as a
// best-effort estimate.
func ImpliedVolatility(observed, s, k, r, q, t float64, kind Kind) (iv float64, ok bool) {
	if observed <= 0 || s <= 0 || k <= 0 || t <= 0 {
		return 0, false
	}

	lo, hi := IVLowerBound, IVUpperBound
	mid := 0.5 * (lo + hi)
	for i := 0; i < IVMaxIterations; i++ {
		mid = 0.5 * (lo + hi)
		p := Price(s, k, r, q, mid, t, kind)
		diff := p - observed
		if diff < IVTolerance && diff > -IVTolerance {
			return mid, true
		}
		if diff < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return mid, true
}
