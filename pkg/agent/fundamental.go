package agent

import (
	"math"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
)

// FundamentalTrader trades toward a fixed fundamental value, buying below
// it and selling above, with size growing in the deviation.
type FundamentalTrader struct {
	id             string
	fundamental    float64
	aggressiveness float64
}

// NewFundamentalTrader creates a trader anchored to the given fundamental
// price.
func NewFundamentalTrader(id string, fundamental, aggressiveness float64) *FundamentalTrader {
	return &FundamentalTrader{id: id, fundamental: fundamental, aggressiveness: aggressiveness}
}

func (a *FundamentalTrader) ID() string { return a.id }

// SetFundamental moves the anchor, letting a fundamental price process
// drive the trader over a run.
func (a *FundamentalTrader) SetFundamental(price float64) {
	a.fundamental = price
}

func (a *FundamentalTrader) Act(state market.State) []book.Order {
	deviation := a.fundamental - state.Spot
	side := book.Sell
	if deviation > 0 {
		side = book.Buy
	}
	qty := math.Max(1, math.Floor(math.Abs(deviation)/a.aggressiveness))
	return []book.Order{{
		Owner:      a.id,
		Side:       side,
		Price:      state.Spot + deviation*0.5,
		Quantity:   qty,
		Instrument: book.Spot,
	}}
}

var _ market.Participant = (*FundamentalTrader)(nil)
