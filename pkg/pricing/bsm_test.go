package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice_IntrinsicAtExpiry(t *testing.T) {
	assert.Equal(t, 5.0, Price(105, 100, 0.01, 0.0, 0.2, 0, Call))
	assert.Equal(t, 0.0, Price(95, 100, 0.01, 0.0, 0.2, 0, Call))
	assert.Equal(t, 5.0, Price(95, 100, 0.01, 0.0, 0.2, 0, Put))
	assert.Equal(t, 0.0, Price(105, 100, 0.01, 0.0, 0.2, 0, Put))

	// negative time is treated the same as expiry
	assert.Equal(t, 5.0, Price(105, 100, 0.01, 0.0, 0.2, -1.0, Call))
}

func TestPrice_ZeroVolatility(t *testing.T) {
	s, k, r, q, tau := 105.0, 100.0, 0.05, 0.01, 0.5

	call := Price(s, k, r, q, 0, tau, Call)
	want := s*math.Exp(-q*tau) - k*math.Exp(-r*tau)
	assert.InDelta(t, want, call, 1e-12)

	// deep out of the money: discounted payoff floors at zero
	assert.Equal(t, 0.0, Price(50, 100, r, q, 0, tau, Call))
	assert.Equal(t, 0.0, Price(150, 100, r, q, 0, tau, Put))
}

func TestPrice_PutCallParity(t *testing.T) {
	s, k, r, q, sigma, tau := 100.0, 95.0, 0.02, 0.01, 0.3, 0.25

	call := Price(s, k, r, q, sigma, tau, Call)
	put := Price(s, k, r, q, sigma, tau, Put)

	parity := s*math.Exp(-q*tau) - k*math.Exp(-r*tau)
	assert.InDelta(t, parity, call-put, 1e-9)
}

func TestPrice_MonotonicInVolatility(t *testing.T) {
	prev := Price(100, 100, 0.01, 0.0, 0.01, 0.5, Call)
	for sigma := 0.05; sigma <= 3.0; sigma += 0.05 {
		p := Price(100, 100, 0.01, 0.0, sigma, 0.5, Call)
		assert.Greater(t, p, prev, "price must increase with volatility (sigma=%v)", sigma)
		prev = p
	}
}

func TestDelta_Boundaries(t *testing.T) {
	assert.Equal(t, 1.0, Delta(105, 100, 0.01, 0.0, 0.2, 0, Call))
	assert.Equal(t, 0.0, Delta(95, 100, 0.01, 0.0, 0.2, 0, Call))
	assert.Equal(t, -1.0, Delta(95, 100, 0.01, 0.0, 0.2, 0, Put))
	assert.Equal(t, 0.0, Delta(105, 100, 0.01, 0.0, 0.2, 0, Put))
	assert.Equal(t, 0.0, Delta(100, 100, 0.01, 0.0, 0.2, 0, Put))
}

func TestDelta_Range(t *testing.T) {
	for _, s := range []float64{60, 80, 100, 120, 140} {
		dCall := Delta(s, 100, 0.01, 0.0, 0.25, 0.5, Call)
		dPut := Delta(s, 100, 0.01, 0.0, 0.25, 0.5, Put)

		assert.GreaterOrEqual(t, dCall, 0.0)
		assert.LessOrEqual(t, dCall, 1.0)
		assert.GreaterOrEqual(t, dPut, -1.0)
		assert.LessOrEqual(t, dPut, 0.0)
	}
}

func TestDelta_ZeroVolatility(t *testing.T) {
	// surely exercised: delta collapses to the discounted forward exposure
	assert.InDelta(t, math.Exp(-0.01*0.5), Delta(120, 100, 0.02, 0.01, 0, 0.5, Call), 1e-12)
	assert.Equal(t, 0.0, Delta(80, 100, 0.02, 0.01, 0, 0.5, Call))
	assert.InDelta(t, -math.Exp(-0.01*0.5), Delta(80, 100, 0.02, 0.01, 0, 0.5, Put), 1e-12)
	assert.Equal(t, 0.0, Delta(120, 100, 0.02, 0.01, 0, 0.5, Put))
}

func TestGreeks_DegenerateInputsReturnZero(t *testing.T) {
	for _, tau := range []float64{0, -0.5} {
		assert.Equal(t, 0.0, Vega(100, 100, 0.01, 0, 0.2, tau))
		assert.Equal(t, 0.0, Gamma(100, 100, 0.01, 0, 0.2, tau))
		assert.Equal(t, 0.0, Theta(100, 100, 0.01, 0, 0.2, tau, Call))
	}
	assert.Equal(t, 0.0, Vega(100, 100, 0.01, 0, 0, 0.5))
	assert.Equal(t, 0.0, Gamma(100, 100, 0.01, 0, -0.1, 0.5))
	assert.Equal(t, 0.0, Theta(100, 100, 0.01, 0, 0, 0.5, Put))
}

func TestVega_MatchesFiniteDifference(t *testing.T) {
	s, k, r, q, sigma, tau := 100.0, 105.0, 0.01, 0.0, 0.3, 0.5

	h := 1e-5
	numeric := (Price(s, k, r, q, sigma+h, tau, Call) - Price(s, k, r, q, sigma-h, tau, Call)) / (2 * h)
	assert.InDelta(t, numeric, Vega(s, k, r, q, sigma, tau), 1e-4)
}

func TestGamma_MatchesFiniteDifference(t *testing.T) {
	s, k, r, q, sigma, tau := 100.0, 95.0, 0.01, 0.0, 0.25, 0.5

	h := 1e-3
	numeric := (Delta(s+h, k, r, q, sigma, tau, Call) - Delta(s-h, k, r, q, sigma, tau, Call)) / (2 * h)
	assert.InDelta(t, numeric, Gamma(s, k, r, q, sigma, tau), 1e-4)
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, Call.Valid())
	assert.True(t, Put.Valid())
	assert.False(t, Kind("straddle").Valid())
	assert.False(t, Kind("").Valid())
}
