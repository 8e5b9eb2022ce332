package agent

import (
	"math/rand"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
	"github.com/erain9/marketsim/pkg/pricing"
)

// OptionsNoiseTrader flips a coin each step and, when it trades, picks a
// random strike and side and quotes around the posted mid.
type OptionsNoiseTrader struct {
	id     string
	maxQty int
	noise  float64
	rng    *rand.Rand
}

// NewOptionsNoiseTrader creates an options noise trader quoting within
// noise of the contract mid.
func NewOptionsNoiseTrader(id string, maxQty int, noise float64, rng *rand.Rand) *OptionsNoiseTrader {
	return &OptionsNoiseTrader{id: id, maxQty: maxQty, noise: noise, rng: rng}
}

func (a *OptionsNoiseTrader) ID() string { return a.id }

func (a *OptionsNoiseTrader) Act(state market.State) []book.Order {
	if a.rng.Intn(2) == 0 || len(state.Strikes) == 0 {
		return nil
	}

	strike := state.Strikes[a.rng.Intn(len(state.Strikes))]

	kind := pricing.Put
	mids := state.MidPuts
	if a.rng.Intn(2) == 0 {
		kind = pricing.Call
		mids = state.MidCalls
	}

	mid, ok := mids[strike]
	if !ok {
		mid = 1.0
	}
	price := mid * (1 + uniform(a.rng, -a.noise, a.noise))

	side := book.Sell
	if a.rng.Intn(2) == 0 {
		side = book.Buy
	}

	return []book.Order{{
		Owner:      a.id,
		Side:       side,
		Price:      price,
		Quantity:   randQty(a.rng, a.maxQty),
		Instrument: book.Option,
		Strike:     strike,
		Kind:       kind,
	}}
}

var _ market.Participant = (*OptionsNoiseTrader)(nil)
