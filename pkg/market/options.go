package market

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/otel"
	"github.com/erain9/marketsim/pkg/pricing"
)

// minOptionPrice floors every derived option mid so dependent pricing calls
// never receive a non-positive price.
const minOptionPrice = 1e-4

// Config bundles the construction parameters of an options market.
type Config struct {
	Strikes     []float64
	InitialSpot float64
	Params      Params

	// HedgeInterval is the step period of the delta-hedging sweep.
	// Zero disables hedging.
	HedgeInterval int
	// HedgeTick is how far through the spot price hedge orders are
	// priced to make them marketable.
	HedgeTick float64
}

// OptionsMarket owns a call book and a put book per strike on a fixed
// ladder, the shared pricing parameters, and the derived mid-price caches.
// The caches are recomputed from book state every step and are never the
// source of truth.
type OptionsMarket struct {
	strikes []float64
	params  Params

	books    map[book.OptionKey]*book.Book
	midCalls map[float64]float64
	midPuts  map[float64]float64

	settler       *book.InventorySettler
	hedgeInterval int
	hedgeTick     float64
}

// NewOptionsMarket builds the full strike ladder. Each book starts at the
// instrument's theoretical value for the initial spot, which also seeds the
// mid-price caches.
func NewOptionsMarket(cfg Config) *OptionsMarket {
	m := &OptionsMarket{
		strikes:       append([]float64(nil), cfg.Strikes...),
		params:        cfg.Params,
		books:         make(map[book.OptionKey]*book.Book),
		midCalls:      make(map[float64]float64),
		midPuts:       make(map[float64]float64),
		settler:       book.NewInventorySettler(),
		hedgeInterval: cfg.HedgeInterval,
		hedgeTick:     cfg.HedgeTick,
	}
	if m.hedgeTick <= 0 {
		m.hedgeTick = 1e-4
	}

	p := cfg.Params
	for _, strike := range m.strikes {
		for _, kind := range []pricing.Kind{pricing.Call, pricing.Put} {
			theo := pricing.Price(cfg.InitialSpot, strike, p.Rate, p.Div, p.Vol, p.Tau, kind)
			if theo < minOptionPrice {
				theo = minOptionPrice
			}
			key := book.OptionKey{Strike: strike, Kind: kind}
			m.books[key] = book.NewOptionBook(key, theo, book.WithSettler(m.settler))
			if kind == pricing.Call {
				m.midCalls[strike] = theo
			} else {
				m.midPuts[strike] = theo
			}
		}
	}
	return m
}

// Settler returns the settlement hook shared by every option book, so the
// spot book can be constructed against the same participant registry.
func (m *OptionsMarket) Settler() *book.InventorySettler {
	return m.settler
}

// Register adds an inventory-holding participant to settlement. Participants
// without inventory need not be registered.
func (m *OptionsMarket) Register(id string, p book.SpotInventoried) {
	m.settler.Register(id, p)
}

// SetVolatility replaces the shared volatility parameter. The update is
// observed by the next Step's snapshot, never mid-step.
func (m *OptionsMarket) SetVolatility(vol float64) {
	if vol > 0 {
		m.params.Vol = vol
	}
}

// Params returns the current pricing parameter set.
func (m *OptionsMarket) Params() Params {
	return m.params
}

// Strikes returns the strike ladder.
func (m *OptionsMarket) Strikes() []float64 {
	return m.strikes
}

// MidCall returns the cached mid-price for the call at the given strike.
func (m *OptionsMarket) MidCall(strike float64) (float64, bool) {
	v, ok := m.midCalls[strike]
	return v, ok
}

// MidPut returns the cached mid-price for the put at the given strike.
func (m *OptionsMarket) MidPut(strike float64) (float64, bool) {
	v, ok := m.midPuts[strike]
	return v, ok
}

// Book returns the order book for one (strike, kind) instrument.
func (m *OptionsMarket) Book(key book.OptionKey) (*book.Book, bool) {
	b, ok := m.books[key]
	return b, ok
}

// TheoreticalPrice values one instrument at the current parameters.
func (m *OptionsMarket) TheoreticalPrice(spot, strike float64, kind pricing.Kind) float64 {
	return pricing.Price(spot, strike, m.params.Rate, m.params.Div, m.params.Vol, m.params.Tau, kind)
}

// Step runs one orchestration cycle at step t with spot mid-price s:
// purge every participant's resting option orders, solicit and route new
// orders, refresh the mid-price caches, and on hedge-interval ticks run the
// delta-hedging sweep against the spot book.
//
// Nothing here fails a step: orders referencing an unregistered strike,
// kind, or instrument are dropped, and a nil spot book merely disables spot
// routing and hedging.
func (m *OptionsMarket) Step(ctx context.Context, t int, s float64, participants []Participant, spot *book.Book) []book.Trade {
	ctx, span := otel.StartStepSpan(ctx, t, len(participants))
	defer span.End()

	snapshot := m.params

	for _, b := range m.books {
		b.SetStep(t)
		for _, p := range participants {
			b.Purge(p.ID())
		}
	}

	state := State{
		Spot:     s,
		Vol:      snapshot.Vol,
		Rate:     snapshot.Rate,
		Div:      snapshot.Div,
		Tau:      snapshot.Tau,
		Strikes:  m.strikes,
		MidCalls: m.midCalls,
		MidPuts:  m.midPuts,
	}

	var trades []book.Trade
	for _, p := range participants {
		for _, order := range p.Act(state) {
			switch order.Instrument {
			case book.Spot:
				if spot == nil {
					continue
				}
				filled, err := spot.Submit(order)
				if err != nil {
					log.Debug().Err(err).Str("participant", p.ID()).Msg("Dropped spot order")
					continue
				}
				otel.GetSimMetrics().RecordOrder(ctx, string(book.Spot))
				trades = append(trades, filled...)
			case book.Option:
				b, ok := m.books[book.OptionKey{Strike: order.Strike, Kind: order.Kind}]
				if !ok {
					log.Debug().
						Str("participant", p.ID()).
						Float64("strike", order.Strike).
						Str("kind", string(order.Kind)).
						Msg("Dropped order for unregistered instrument")
					continue
				}
				filled, err := b.Submit(order)
				if err != nil {
					log.Debug().Err(err).Str("participant", p.ID()).Msg("Dropped option order")
					continue
				}
				otel.GetSimMetrics().RecordOrder(ctx, string(book.Option))
				trades = append(trades, filled...)
			default:
				log.Debug().
					Str("participant", p.ID()).
					Str("instrument", string(order.Instrument)).
					Msg("Dropped order for unknown instrument")
			}
		}
	}

	m.refreshMids()

	if spot != nil && m.hedgeInterval > 0 && t%m.hedgeInterval == 0 {
		hedgeCtx, hedgeSpan := otel.StartHedgeSpan(ctx, t)
		trades = append(trades, m.hedgeSweep(hedgeCtx, t, s, snapshot, participants, spot)...)
		hedgeSpan.End()
	}

	otel.GetSimMetrics().RecordTrades(ctx, int64(len(trades)))
	return trades
}

// refreshMids recomputes every cache from its book, keeping the previous
// cached value as the fallback for an empty book.
func (m *OptionsMarket) refreshMids() {
	for _, strike := range m.strikes {
		call := m.books[book.OptionKey{Strike: strike, Kind: pricing.Call}]
		put := m.books[book.OptionKey{Strike: strike, Kind: pricing.Put}]

		m.midCalls[strike] = floorPrice(call.MidPrice(m.midCalls[strike]))
		m.midPuts[strike] = floorPrice(put.MidPrice(m.midPuts[strike]))
	}
}

func floorPrice(p float64) float64 {
	if p < minOptionPrice {
		return minOptionPrice
	}
	return p
}
