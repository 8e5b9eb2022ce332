package agent

import (
	"math/rand"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
	"github.com/erain9/marketsim/pkg/pricing"
)

const minOptionQuote = 1e-4

// OptionsMarketMaker quotes both sides of every listed strike around the
// theoretical price. It tracks its option positions per contract and the
// spot inventory accumulated by delta hedging.
type OptionsMarketMaker struct {
	id               string
	spreadFactor     float64
	maxSpotInventory float64
	rng              *rand.Rand

	spotInventory float64
	byOption      map[book.OptionKey]float64
}

// NewOptionsMarketMaker creates an options market maker. spreadFactor is
// the fraction of the theoretical price quoted as spread.
func NewOptionsMarketMaker(id string, spreadFactor float64, rng *rand.Rand) *OptionsMarketMaker {
	return &OptionsMarketMaker{
		id:               id,
		spreadFactor:     spreadFactor,
		maxSpotInventory: 1000,
		rng:              rng,
		byOption:         make(map[book.OptionKey]float64),
	}
}

func (a *OptionsMarketMaker) ID() string { return a.id }

// AddSpotInventory applies a settled spot fill, typically a hedge.
func (a *OptionsMarketMaker) AddSpotInventory(qty float64) {
	a.spotInventory += qty
}

// AddOptionInventory applies a settled option fill for one contract.
func (a *OptionsMarketMaker) AddOptionInventory(key book.OptionKey, qty float64) {
	a.byOption[key] += qty
}

// OptionInventory returns the position per contract.
func (a *OptionsMarketMaker) OptionInventory() map[book.OptionKey]float64 {
	return a.byOption
}

// SpotInventory returns the accumulated spot position.
func (a *OptionsMarketMaker) SpotInventory() float64 {
	return a.spotInventory
}

func (a *OptionsMarketMaker) Act(state market.State) []book.Order {
	longLimitHit := a.spotInventory >= a.maxSpotInventory
	shortLimitHit := a.spotInventory <= -a.maxSpotInventory

	var orders []book.Order
	for _, strike := range state.Strikes {
		for _, kind := range []pricing.Kind{pricing.Call, pricing.Put} {
			theo := pricing.Price(state.Spot, strike, state.Rate, state.Div, state.Vol, state.Tau, kind)
			if theo < minOptionQuote {
				theo = minOptionQuote
			}

			spread := a.spreadFactor * theo
			if spread < minOptionQuote {
				spread = minOptionQuote
			}
			bid := theo - spread/2
			if bid < minOptionQuote {
				bid = minOptionQuote
			}
			ask := theo + spread/2

			qty := uniform(a.rng, 1, 3)

			if !longLimitHit {
				orders = append(orders, book.Order{
					Owner:      a.id,
					Side:       book.Buy,
					Price:      bid,
					Quantity:   qty,
					Instrument: book.Option,
					Strike:     strike,
					Kind:       kind,
				})
			}
			if !shortLimitHit {
				orders = append(orders, book.Order{
					Owner:      a.id,
					Side:       book.Sell,
					Price:      ask,
					Quantity:   qty,
					Instrument: book.Option,
					Strike:     strike,
					Kind:       kind,
				})
			}
		}
	}
	return orders
}

var (
	_ market.Participant     = (*OptionsMarketMaker)(nil)
	_ book.OptionInventoried = (*OptionsMarketMaker)(nil)
)
