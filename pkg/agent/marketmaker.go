package agent

import (
	"math"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/market"
)

// MarketMaker quotes a two-sided spot market around the mid. Its spread
// widens and its sizes skew as inventory builds, pushing the position back
// toward flat.
type MarketMaker struct {
	id           string
	inventory    float64
	maxInventory float64
	baseSpread   float64
	riskAversion float64
	baseSize     float64
}

// MarketMakerConfig holds the quoting parameters of a MarketMaker.
type MarketMakerConfig struct {
	BaseSpread   float64
	RiskAversion float64
	MaxInventory float64
	BaseSize     float64
}

// DefaultMarketMakerConfig returns the standard quoting parameters.
func DefaultMarketMakerConfig() MarketMakerConfig {
	return MarketMakerConfig{
		BaseSpread:   0.2,
		RiskAversion: 0.5,
		MaxInventory: 50,
		BaseSize:     5,
	}
}

// NewMarketMaker creates an inventory-aware spot market maker.
func NewMarketMaker(id string, cfg MarketMakerConfig) *MarketMaker {
	return &MarketMaker{
		id:           id,
		maxInventory: cfg.MaxInventory,
		baseSpread:   cfg.BaseSpread,
		riskAversion: cfg.RiskAversion,
		baseSize:     cfg.BaseSize,
	}
}

func (a *MarketMaker) ID() string { return a.id }

// AddSpotInventory applies a settled fill to the maker's position.
func (a *MarketMaker) AddSpotInventory(qty float64) {
	a.inventory += qty
}

// Inventory returns the current spot position.
func (a *MarketMaker) Inventory() float64 {
	return a.inventory
}

func (a *MarketMaker) spread() float64 {
	penalty := a.riskAversion * math.Abs(a.inventory) / a.maxInventory
	return a.baseSpread * (1 + penalty)
}

func (a *MarketMaker) sizes() (bid, ask float64) {
	invFrac := a.inventory / a.maxInventory
	bid = math.Floor(a.baseSize * (1 - invFrac))
	ask = math.Floor(a.baseSize * (1 + invFrac))

	maxBuy := a.maxInventory - a.inventory
	maxSell := a.inventory + a.maxInventory

	bid = math.Max(0, math.Min(bid, maxBuy))
	ask = math.Max(0, math.Min(ask, maxSell))
	return bid, ask
}

func (a *MarketMaker) Act(state market.State) []book.Order {
	half := a.spread() / 2
	bidQty, askQty := a.sizes()

	var orders []book.Order
	if bidQty > 0 {
		orders = append(orders, book.Order{
			Owner:      a.id,
			Side:       book.Buy,
			Price:      state.Spot - half,
			Quantity:   bidQty,
			Instrument: book.Spot,
		})
	}
	if askQty > 0 {
		orders = append(orders, book.Order{
			Owner:      a.id,
			Side:       book.Sell,
			Price:      state.Spot + half,
			Quantity:   askQty,
			Instrument: book.Spot,
		})
	}
	return orders
}

var (
	_ market.Participant   = (*MarketMaker)(nil)
	_ book.SpotInventoried = (*MarketMaker)(nil)
)
