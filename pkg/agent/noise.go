package agent

import (
	"math/rand"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
)

// NoiseTrader submits a single random spot order around the current mid.
type NoiseTrader struct {
	id         string
	noiseLevel float64
	rng        *rand.Rand
}

// NewNoiseTrader creates a noise trader quoting within noiseLevel of the mid.
func NewNoiseTrader(id string, noiseLevel float64, rng *rand.Rand) *NoiseTrader {
	return &NoiseTrader{id: id, noiseLevel: noiseLevel, rng: rng}
}

func (a *NoiseTrader) ID() string { return a.id }

func (a *NoiseTrader) Act(state market.State) []book.Order {
	price := state.Spot * (1 + uniform(a.rng, -a.noiseLevel, a.noiseLevel))
	side := book.Sell
	if a.rng.Intn(2) == 0 {
		side = book.Buy
	}
	return []book.Order{{
		Owner:      a.id,
		Side:       side,
		Price:      price,
		Quantity:   randQty(a.rng, 5),
		Instrument: book.Spot,
	}}
}

var _ market.Participant = (*NoiseTrader)(nil)
