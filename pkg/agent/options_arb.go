package agent

import (
	"math"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
	"github.com/erain9/marketsim/pkg/pricing"
)

// OptionsArbitrageur watches put-call parity. When the posted call and put
// mids drift apart from S - K*exp(-r*tau) by more than the threshold it
// sells the rich leg and buys the cheap one at the posted mids.
type OptionsArbitrageur struct {
	id        string
	threshold float64
	qty       float64
}

// NewOptionsArbitrageur creates a parity arbitrageur trading qty contracts
// per violated strike.
func NewOptionsArbitrageur(id string, threshold, qty float64) *OptionsArbitrageur {
	return &OptionsArbitrageur{id: id, threshold: threshold, qty: qty}
}

func (a *OptionsArbitrageur) ID() string { return a.id }

func (a *OptionsArbitrageur) Act(state market.State) []book.Order {
	var orders []book.Order
	for _, strike := range state.Strikes {
		callMid, okCall := state.MidCalls[strike]
		putMid, okPut := state.MidPuts[strike]
		if !okCall || !okPut {
			continue
		}

		callTheo := pricing.Price(state.Spot, strike, state.Rate, state.Div, state.Vol, state.Tau, pricing.Call)
		putTheo := pricing.Price(state.Spot, strike, state.Rate, state.Div, state.Vol, state.Tau, pricing.Put)
		if callTheo <= 0 || putTheo <= 0 {
			continue
		}

		parityDiff := (callMid - putMid) - (state.Spot - strike*math.Exp(-state.Rate*state.Tau))
		if math.Abs(parityDiff) <= a.threshold {
			continue
		}

		callSide, putSide := book.Buy, book.Sell
		if parityDiff > 0 {
			callSide, putSide = book.Sell, book.Buy
		}

		orders = append(orders,
			book.Order{
				Owner:      a.id,
				Side:       callSide,
				Price:      callMid,
				Quantity:   a.qty,
				Instrument: book.Option,
				Strike:     strike,
				Kind:       pricing.Call,
			},
			book.Order{
				Owner:      a.id,
				Side:       putSide,
				Price:      putMid,
				Quantity:   a.qty,
				Instrument: book.Option,
				Strike:     strike,
				Kind:       pricing.Put,
			},
		)
	}
	return orders
}

var _ market.Participant = (*OptionsArbitrageur)(nil)
