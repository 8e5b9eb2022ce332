// Package book implements a single reusable limit-order book with strict
// price-time-priority matching. One Book instance serves one tradable
// instrument: the spot book and every (strike, kind) option book share the
// same matching loop, differing only in how fills are settled.
package book

import (
	"errors"

	"github.com/erain9/marketsim/pkg/pricing"
)

// Errors
var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")
)

// Side represents the buy or sell side of an order.
type Side int

// Order sides
const (
	Sell Side = iota
	Buy
)

// String returns side as string
func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Instrument identifies which leg of the market an order targets.
type Instrument string

// Instruments
const (
	Spot   Instrument = "spot"
	Option Instrument = "option"
)

// Order is a transient limit-order request. It is consumed by Submit and
// never persisted; only its resting remainder survives as a book Entry.
type Order struct {
	Owner      string
	Side       Side
	Price      float64
	Quantity   float64
	Instrument Instrument

	// Option leg only
	Strike float64
	Kind   pricing.Kind
}

// Validate checks the submission invariants: positive price and quantity.
func (o Order) Validate() error {
	if o.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if o.Price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// Entry is one resting order on a book side.
type Entry struct {
	Price    float64
	Quantity float64
	Owner    string
}

// Trade records one execution. It is immutable once emitted: appended to the
// book's trade log and returned to the submitting caller.
type Trade struct {
	Price      float64
	Quantity   float64
	Buyer      string
	Seller     string
	Step       int
	Instrument Instrument

	// Option leg only
	Strike float64
	Kind   pricing.Kind
}

// OptionKey identifies one option instrument on the strike ladder.
type OptionKey struct {
	Strike float64
	Kind   pricing.Kind
}
