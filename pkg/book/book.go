package book

import (
	"fmt"
	"sort"
	"strings"
)

// Book maintains one instrument's resting orders and executes midpoint
// crossing: whenever the best bid reaches the best ask, both fill at the
// average of their limit prices. Bids are kept sorted by price descending,
// asks ascending; arrival order breaks price ties on both sides.
type Book struct {
	instrument Instrument
	key        OptionKey

	bids []Entry
	asks []Entry

	lastPrice  float64
	priceFloor float64
	step       int
	trades     []Trade
	settler    Settler
}

// BookOption configures a Book at construction.
type BookOption func(*Book)

// WithSettler installs the settlement hook applied to every emitted trade.
func WithSettler(s Settler) BookOption {
	return func(b *Book) { b.settler = s }
}

// WithPriceFloor overrides the lower bound applied to MidPrice results.
func WithPriceFloor(floor float64) BookOption {
	return func(b *Book) { b.priceFloor = floor }
}

// NewSpotBook creates the order book for the underlying instrument.
func NewSpotBook(initialPrice float64, opts ...BookOption) *Book {
	b := &Book{
		instrument: Spot,
		lastPrice:  initialPrice,
		priceFloor: 1.0,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewOptionBook creates the order book for one (strike, kind) instrument.
func NewOptionBook(key OptionKey, initialPrice float64, opts ...BookOption) *Book {
	b := &Book{
		instrument: Option,
		key:        key,
		lastPrice:  initialPrice,
		priceFloor: 1e-4,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Instrument returns the instrument this book trades.
func (b *Book) Instrument() Instrument {
	return b.instrument
}

// SetStep records the current simulation step, stamped onto emitted trades.
func (b *Book) SetStep(t int) {
	b.step = t
}

// LastPrice returns the price of the most recent execution, or the initial
// price if the book has never traded.
func (b *Book) LastPrice() float64 {
	return b.lastPrice
}

// Trades returns the cumulative trade log.
func (b *Book) Trades() []Trade {
	return b.trades
}

// BestBid returns the highest resting bid, if any.
func (b *Book) BestBid() (Entry, bool) {
	if len(b.bids) == 0 {
		return Entry{}, false
	}
	return b.bids[0], true
}

// BestAsk returns the lowest resting ask, if any.
func (b *Book) BestAsk() (Entry, bool) {
	if len(b.asks) == 0 {
		return Entry{}, false
	}
	return b.asks[0], true
}

// Depth returns the number of resting bid and ask entries.
func (b *Book) Depth() (bids, asks int) {
	return len(b.bids), len(b.asks)
}

// Submit validates the order, rests it on the appropriate side and runs the
// matching loop. It returns the trades produced by this submission, possibly
// none. Invalid orders are rejected without touching the book.
func (b *Book) Submit(order Order) ([]Trade, error) {
	if err := order.Validate(); err != nil {
		return nil, fmt.Errorf("rejecting order from %s: %w", order.Owner, err)
	}

	entry := Entry{Price: order.Price, Quantity: order.Quantity, Owner: order.Owner}
	if order.Side == Buy {
		b.bids = append(b.bids, entry)
		// stable sort keeps arrival order within a price level
		sort.SliceStable(b.bids, func(i, j int) bool { return b.bids[i].Price > b.bids[j].Price })
	} else {
		b.asks = append(b.asks, entry)
		sort.SliceStable(b.asks, func(i, j int) bool { return b.asks[i].Price < b.asks[j].Price })
	}

	return b.match(), nil
}

// Purge removes every resting entry owned by the given participant from both
// sides. Calling it again is a no-op.
func (b *Book) Purge(owner string) {
	b.bids = dropOwner(b.bids, owner)
	b.asks = dropOwner(b.asks, owner)
}

func dropOwner(entries []Entry, owner string) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if e.Owner != owner {
			kept = append(kept, e)
		}
	}
	return kept
}

// MidPrice returns the midpoint of the best bid and ask, the best single
// side if only one is populated, or fallback for an empty book. The result
// is floored at the book's price floor so dependent pricing formulas always
// receive a usable positive price.
func (b *Book) MidPrice(fallback float64) float64 {
	var mid float64
	switch {
	case len(b.bids) > 0 && len(b.asks) > 0:
		mid = (b.bids[0].Price + b.asks[0].Price) / 2
	case len(b.bids) > 0:
		mid = b.bids[0].Price
	case len(b.asks) > 0:
		mid = b.asks[0].Price
	default:
		mid = fallback
	}
	if mid < b.priceFloor {
		mid = b.priceFloor
	}
	return mid
}

// match runs the continuous matching loop until no crossing remains.
//
// When the best bid and best ask belong to the same participant, the
// crossing quantity is cancelled from both sides without emitting a trade.
// This removes exactly the liquidity that would have self-traded and leaves
// any non-crossing remainder resting.
func (b *Book) match() []Trade {
	var trades []Trade
	for len(b.bids) > 0 && len(b.asks) > 0 && b.bids[0].Price >= b.asks[0].Price {
		bid := &b.bids[0]
		ask := &b.asks[0]

		qty := bid.Quantity
		if ask.Quantity < qty {
			qty = ask.Quantity
		}

		if bid.Owner == ask.Owner {
			// self-cross: consume the crossing quantity, trade nothing
			b.consume(qty)
			continue
		}

		trade := Trade{
			Price:      (bid.Price + ask.Price) / 2,
			Quantity:   qty,
			Buyer:      bid.Owner,
			Seller:     ask.Owner,
			Step:       b.step,
			Instrument: b.instrument,
			Strike:     b.key.Strike,
			Kind:       b.key.Kind,
		}
		if b.settler != nil {
			b.settler.Settle(trade)
		}
		trades = append(trades, trade)
		b.lastPrice = trade.Price

		b.consume(qty)
	}

	b.trades = append(b.trades, trades...)
	return trades
}

// consume decrements both best entries by qty and drops the exhausted ones.
func (b *Book) consume(qty float64) {
	b.bids[0].Quantity -= qty
	b.asks[0].Quantity -= qty
	if b.bids[0].Quantity <= 0 {
		b.bids = b.bids[1:]
	}
	if b.asks[0].Quantity <= 0 {
		b.asks = b.asks[1:]
	}
}

// String implements fmt.Stringer interface
func (b *Book) String() string {
	builder := strings.Builder{}

	builder.WriteString("Ask:")
	for _, e := range b.asks {
		builder.WriteString(fmt.Sprintf("\n%.4f -> qty: %.2f (%s)", e.Price, e.Quantity, e.Owner))
	}
	builder.WriteString("\nBid:")
	for _, e := range b.bids {
		builder.WriteString(fmt.Sprintf("\n%.4f -> qty: %.2f (%s)", e.Price, e.Quantity, e.Owner))
	}
	builder.WriteString("\n")

	return builder.String()
}
