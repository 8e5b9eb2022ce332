// Package pricing provides closed-form European option valuation and risk
// sensitivities under the Black-Scholes-Merton model, plus implied-volatility
// inversion. All functions are pure and never panic on degenerate input;
// out-of-domain parameters degrade to well-defined boundary values so that
// downstream consumers never see NaNs or negative prices.
package pricing

import (
	"math"

	gaussian "github.com/chobie/go-gaussian"
)

// Kind selects between the two exercise styles of a vanilla option.
type Kind string

// Option kinds
const (
	Call Kind = "call"
	Put  Kind = "put"
)

// Valid reports whether k is a recognized option kind.
func (k Kind) Valid() bool {
	return k == Call || k == Put
}

var stdNormal = gaussian.NewGaussian(0, 1)

// d1d2 returns the two normalized factors of the BSM closed form.
// Callers must guarantee S, K, sigma, T > 0.
func d1d2(s, k, r, q, sigma, t float64) (float64, float64) {
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	return d1, d1 - sigma*math.Sqrt(t)
}

// Price returns the theoretical value of a European option.
//
// At or past expiry (t <= 0) it returns the intrinsic payoff. At zero
// volatility it returns the discounted deterministic payoff.
func Price(s, k, r, q, sigma, t float64, kind Kind) float64 {
	if t <= 0 {
		if kind == Call {
			return math.Max(0, s-k)
		}
		return math.Max(0, k-s)
	}
	if sigma <= 0 {
		if kind == Call {
			return math.Max(0, s*math.Exp(-q*t)-k*math.Exp(-r*t))
		}
		return math.Max(0, k*math.Exp(-r*t)-s*math.Exp(-q*t))
	}

	d1, d2 := d1d2(s, k, r, q, sigma, t)
	if kind == Call {
		return s*math.Exp(-q*t)*stdNormal.Cdf(d1) - k*math.Exp(-r*t)*stdNormal.Cdf(d2)
	}
	return k*math.Exp(-r*t)*stdNormal.Cdf(-d2) - s*math.Exp(-q*t)*stdNormal.Cdf(-d1)
}

// Delta returns the first-order sensitivity of Price to the spot, with the
// same degenerate-time and degenerate-volatility boundaries as Price.
func Delta(s, k, r, q, sigma, t float64, kind Kind) float64 {
	if t <= 0 {
		if kind == Call {
			if s > k {
				return 1.0
			}
			return 0.0
		}
		if s < k {
			return -1.0
		}
		return 0.0
	}
	if sigma <= 0 {
		// deterministic forward: the option is either surely exercised or surely not
		inMoney := s*math.Exp(-q*t) > k*math.Exp(-r*t)
		if kind == Call {
			if inMoney {
				return math.Exp(-q * t)
			}
			return 0.0
		}
		if !inMoney {
			return -math.Exp(-q * t)
		}
		return 0.0
	}

	d1, _ := d1d2(s, k, r, q, sigma, t)
	if kind == Call {
		return math.Exp(-q*t) * stdNormal.Cdf(d1)
	}
	return math.Exp(-q*t) * (stdNormal.Cdf(d1) - 1.0)
}

// Vega returns the sensitivity of Price to volatility, or 0 when either
// time-to-expiry or volatility is non-positive.
func Vega(s, k, r, q, sigma, t float64) float64 {
	if t <= 0 || sigma <= 0 {
		return 0.0
	}
	d1, _ := d1d2(s, k, r, q, sigma, t)
	return s * math.Exp(-q*t) * stdNormal.Pdf(d1) * math.Sqrt(t)
}

// Gamma returns the second-order sensitivity of Price to the spot, or 0 when
// either time-to-expiry or volatility is non-positive.
func Gamma(s, k, r, q, sigma, t float64) float64 {
	if t <= 0 || sigma <= 0 {
		return 0.0
	}
	d1, _ := d1d2(s, k, r, q, sigma, t)
	return math.Exp(-q*t) * stdNormal.Pdf(d1) / (s * sigma * math.Sqrt(t))
}

// Theta returns the sensitivity of Price to the passage of time, or 0 when
// either time-to-expiry or volatility is non-positive.
func Theta(s, k, r, q, sigma, t float64, kind Kind) float64 {
	if t <= 0 || sigma <= 0 {
		return 0.0
	}
	d1, d2 := d1d2(s, k, r, q, sigma, t)
	decay := -s * stdNormal.Pdf(d1) * sigma * math.Exp(-q*t) / (2 * math.Sqrt(t))
	if kind == Call {
		carry := q * s * stdNormal.Cdf(d1) * math.Exp(-q*t)
		discount := -r * k * math.Exp(-r*t) * stdNormal.Cdf(d2)
		return decay + carry + discount
	}
	carry := -q * s * math.Exp(-q*t) * stdNormal.Cdf(-d1)
	discount := r * k * math.Exp(-r*t) * stdNormal.Cdf(-d2)
	return decay + carry + discount
}
