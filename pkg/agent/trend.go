package agent

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
)

// TrendTrader follows momentum. It fits a line through its recent mid-price
// window and trades the slope once it clears a threshold.
type TrendTrader struct {
	id             string
	lookback       int
	threshold      float64
	aggressiveness float64
	maxQty         float64

	history []float64
}

// TrendTraderConfig holds the momentum parameters of a TrendTrader.
type TrendTraderConfig struct {
	Lookback       int
	Threshold      float64
	Aggressiveness float64
	MaxQty         float64
}

// DefaultTrendTraderConfig returns the standard momentum parameters.
func DefaultTrendTraderConfig() TrendTraderConfig {
	return TrendTraderConfig{
		Lookback:       20,
		Threshold:      0.0005,
		Aggressiveness: 0.0005,
		MaxQty:         10,
	}
}

// NewTrendTrader creates a momentum trader.
func NewTrendTrader(id string, cfg TrendTraderConfig) *TrendTrader {
	return &TrendTrader{
		id:             id,
		lookback:       cfg.Lookback,
		threshold:      cfg.Threshold,
		aggressiveness: cfg.Aggressiveness,
		maxQty:         cfg.MaxQty,
	}
}

func (a *TrendTrader) ID() string { return a.id }

func (a *TrendTrader) observe(mid float64) {
	a.history = append(a.history, mid)
	if len(a.history) > a.lookback {
		a.history = a.history[1:]
	}
}

// trend is the fitted slope normalized by the latest price.
func (a *TrendTrader) trend() float64 {
	if len(a.history) < 3 {
		return 0
	}
	xs := make([]float64, len(a.history))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, a.history, nil, false)
	return slope / a.history[len(a.history)-1]
}

func (a *TrendTrader) Act(state market.State) []book.Order {
	a.observe(state.Spot)

	trend := a.trend()
	if math.Abs(trend) < a.threshold {
		return nil
	}

	side := book.Sell
	price := state.Spot * 0.998
	if trend > 0 {
		side = book.Buy
		price = state.Spot * 1.002
	}

	qty := math.Max(1, math.Min(math.Floor(math.Abs(trend)/a.aggressiveness), a.maxQty))
	return []book.Order{{
		Owner:      a.id,
		Side:       side,
		Price:      price,
		Quantity:   qty,
		Instrument: book.Spot,
	}}
}

var _ market.Participant = (*TrendTrader)(nil)
