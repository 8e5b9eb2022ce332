package market

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/otel"
	"github.com/erain9/marketsim/pkg/pricing"
)

// hedgeSweep nets each option-inventoried participant's first-order
// directional exposure and submits one offsetting spot order: sell one tick
// below spot to offload positive delta, buy one tick above to cover negative
// delta. Exposures that round to zero are skipped.
func (m *OptionsMarket) hedgeSweep(ctx context.Context, t int, s float64, snapshot Params, participants []Participant, spot *book.Book) []book.Trade {
	var trades []book.Trade
	for _, p := range participants {
		holder, ok := p.(book.OptionInventoried)
		if !ok {
			continue
		}

		netDelta := m.netDelta(s, snapshot, holder.OptionInventory())
		qty := math.Round(math.Abs(netDelta))
		if qty <= 0 {
			continue
		}

		order := book.Order{
			Owner:      p.ID(),
			Quantity:   qty,
			Instrument: book.Spot,
		}
		if netDelta > 0 {
			order.Side = book.Sell
			order.Price = math.Max(m.hedgeTick, s-m.hedgeTick)
		} else {
			order.Side = book.Buy
			order.Price = s + m.hedgeTick
		}

		filled, err := spot.Submit(order)
		if err != nil {
			log.Debug().Err(err).Str("participant", p.ID()).Msg("Dropped hedge order")
			continue
		}

		log.Debug().
			Int("step", t).
			Str("participant", p.ID()).
			Float64("net_delta", netDelta).
			Str("side", order.Side.String()).
			Float64("qty", qty).
			Msg("Submitted delta hedge")
		otel.GetSimMetrics().RecordHedge(ctx, netDelta)
		trades = append(trades, filled...)
	}
	return trades
}

// netDelta aggregates delta exposure over a signed option position map.
// Keys are visited in sorted order so the float accumulation is identical
// between runs with the same positions.
func (m *OptionsMarket) netDelta(s float64, snapshot Params, positions map[book.OptionKey]float64) float64 {
	keys := make([]book.OptionKey, 0, len(positions))
	for key, qty := range positions {
		if qty == 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Strike != keys[j].Strike {
			return keys[i].Strike < keys[j].Strike
		}
		return keys[i].Kind < keys[j].Kind
	})

	var exposure float64
	for _, key := range keys {
		d := pricing.Delta(s, key.Strike, snapshot.Rate, snapshot.Div, snapshot.Vol, snapshot.Tau, key.Kind)
		exposure += positions[key] * d
	}
	return exposure
}
