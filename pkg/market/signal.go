package market

import (
	"math/rand"
)

// Signal is the exogenous scalar-process contract: Advance moves the
// process one step, Current reads the latest value. The market only ever
// consumes the current scalar, never the generator's internals.
type Signal interface {
	Advance()
	Current() float64
}

// NewsProcess emits sporadic news shocks: with the configured probability a
// step carries a shock uniform in [-volatility, volatility], otherwise zero.
type NewsProcess struct {
	probability float64
	volatility  float64
	current     float64
	rng         *rand.Rand
}

// NewNewsProcess creates a news process driven by the given source.
func NewNewsProcess(probability, volatility float64, rng *rand.Rand) *NewsProcess {
	return &NewsProcess{
		probability: probability,
		volatility:  volatility,
		rng:         rng,
	}
}

// Advance implements Signal.
func (p *NewsProcess) Advance() {
	if p.rng.Float64() < p.probability {
		p.current = p.volatility * (2*p.rng.Float64() - 1)
		return
	}
	p.current = 0
}

// Current implements Signal.
func (p *NewsProcess) Current() float64 {
	return p.current
}

// FundamentalProcess is a slow random walk for the fundamental value: every
// interval steps the value moves by a gaussian increment around the drift.
type FundamentalProcess struct {
	value    float64
	drift    float64
	sigma    float64
	interval int
	counter  int
	rng      *rand.Rand
}

// NewFundamentalProcess creates a fundamental-value process starting at
// initial.
func NewFundamentalProcess(initial, drift, sigma float64, interval int, rng *rand.Rand) *FundamentalProcess {
	if interval < 1 {
		interval = 1
	}
	return &FundamentalProcess{
		value:    initial,
		drift:    drift,
		sigma:    sigma,
		interval: interval,
		rng:      rng,
	}
}

// Advance implements Signal.
func (p *FundamentalProcess) Advance() {
	p.counter++
	if p.counter >= p.interval {
		p.counter = 0
		p.value += p.drift + p.sigma*p.rng.NormFloat64()
	}
}

// Current implements Signal.
func (p *FundamentalProcess) Current() float64 {
	return p.value
}
