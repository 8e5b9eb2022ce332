package agent

import (
	"math"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
)

// InformedTrader trades in the direction of the news signal, sizing up as
// the signal strengthens.
type InformedTrader struct {
	id             string
	sensitivity    float64
	aggressiveness float64
}

// NewInformedTrader creates an informed trader. sensitivity scales how far
// from the mid it is willing to price, aggressiveness divides the signal
// into a quantity.
func NewInformedTrader(id string, sensitivity, aggressiveness float64) *InformedTrader {
	return &InformedTrader{id: id, sensitivity: sensitivity, aggressiveness: aggressiveness}
}

func (a *InformedTrader) ID() string { return a.id }

func (a *InformedTrader) Act(state market.State) []book.Order {
	side := book.Sell
	if state.News > 0 {
		side = book.Buy
	}
	qty := math.Max(1, math.Floor(math.Abs(state.News)/a.aggressiveness))
	return []book.Order{{
		Owner:      a.id,
		Side:       side,
		Price:      state.Spot + a.sensitivity*state.News,
		Quantity:   qty,
		Instrument: book.Spot,
	}}
}

var _ market.Participant = (*InformedTrader)(nil)
