package market

import (
	"github.com/rs/zerolog/log"

	"github.com/erain9/marketsim/pkg/book"
)

// SpotMarket wraps the underlying instrument's order book and its derived
// mid-price. Participants re-quote every step; hedge orders routed here by
// the options market rest until the next step's purge.
type SpotMarket struct {
	book *book.Book
	mid  float64
}

// NewSpotMarket creates the spot market at the given initial mid-price.
// Pass the options market's settler so spot fills update the same
// inventories as option fills.
func NewSpotMarket(initialPrice float64, settler book.Settler) *SpotMarket {
	opts := []book.BookOption{}
	if settler != nil {
		opts = append(opts, book.WithSettler(settler))
	}
	return &SpotMarket{
		book: book.NewSpotBook(initialPrice, opts...),
		mid:  initialPrice,
	}
}

// Book exposes the spot order book for hedge routing.
func (m *SpotMarket) Book() *book.Book {
	return m.book
}

// Mid returns the current spot mid-price.
func (m *SpotMarket) Mid() float64 {
	return m.mid
}

// Step purges each participant's resting orders, solicits fresh quotes with
// the current mid and news signal, and refreshes the mid-price from the
// resulting book state. Non-spot orders returned by participants are
// dropped here; option orders belong to the options market.
func (m *SpotMarket) Step(t int, participants []Participant, news float64) []book.Trade {
	m.book.SetStep(t)
	for _, p := range participants {
		m.book.Purge(p.ID())
	}

	state := State{Spot: m.mid, News: news}

	var trades []book.Trade
	for _, p := range participants {
		for _, order := range p.Act(state) {
			if order.Instrument != book.Spot {
				continue
			}
			filled, err := m.book.Submit(order)
			if err != nil {
				log.Debug().Err(err).Str("participant", p.ID()).Msg("Dropped spot order")
				continue
			}
			trades = append(trades, filled...)
		}
	}

	m.mid = m.book.MidPrice(m.mid)
	return trades
}
