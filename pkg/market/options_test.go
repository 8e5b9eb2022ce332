package market

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/pricing"
)

// scripted is a participant returning whatever its function produces.
type scripted struct {
	id string
	fn func(State) []book.Order
}

func (s *scripted) ID() string { return s.id }

func (s *scripted) Act(state State) []book.Order {
	if s.fn == nil {
		return nil
	}
	return s.fn(state)
}

// hedgingHolder holds a fixed option position and never quotes.
type hedgingHolder struct {
	id      string
	spotInv float64
	options map[book.OptionKey]float64
}

func (h *hedgingHolder) ID() string                  { return h.id }
func (h *hedgingHolder) Act(State) []book.Order      { return nil }
func (h *hedgingHolder) AddSpotInventory(q float64)  { h.spotInv += q }
func (h *hedgingHolder) AddOptionInventory(k book.OptionKey, q float64) {
	h.options[k] += q
}
func (h *hedgingHolder) OptionInventory() map[book.OptionKey]float64 {
	return h.options
}

func testMarket(strikes []float64, hedgeInterval int) *OptionsMarket {
	return NewOptionsMarket(Config{
		Strikes:     strikes,
		InitialSpot: 100.0,
		Params: Params{
			Vol:  0.2,
			Rate: 0.01,
			Div:  0.0,
			Tau:  0.25,
		},
		HedgeInterval: hedgeInterval,
		HedgeTick:     1e-4,
	})
}

func TestNewOptionsMarketSeedsTheoreticalMids(t *testing.T) {
	m := testMarket([]float64{90, 100, 110}, 0)

	for _, strike := range m.Strikes() {
		callMid, ok := m.MidCall(strike)
		require.True(t, ok)
		putMid, ok := m.MidPut(strike)
		require.True(t, ok)

		callTheo := pricing.Price(100, strike, 0.01, 0, 0.2, 0.25, pricing.Call)
		putTheo := pricing.Price(100, strike, 0.01, 0, 0.2, 0.25, pricing.Put)
		assert.InDelta(t, callTheo, callMid, 1e-12)
		assert.InDelta(t, putTheo, putMid, 1e-12)
	}
}

func TestStepPurgesRestingOrdersEachStep(t *testing.T) {
	m := testMarket([]float64{100}, 0)
	key := book.OptionKey{Strike: 100, Kind: pricing.Call}

	quoted := false
	p := &scripted{id: "p1", fn: func(State) []book.Order {
		if quoted {
			return nil
		}
		quoted = true
		return []book.Order{{
			Owner: "p1", Side: book.Buy, Price: 1.0, Quantity: 2,
			Instrument: book.Option, Strike: 100, Kind: pricing.Call,
		}}
	}}

	m.Step(context.Background(), 1, 100.0, []Participant{p}, nil)

	b, ok := m.Book(key)
	require.True(t, ok)
	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, 1.0, bid.Price)

	// Second step quotes nothing, so the purge leaves the book empty.
	m.Step(context.Background(), 2, 100.0, []Participant{p}, nil)
	_, ok = b.BestBid()
	assert.False(t, ok)
}

func TestStepRoutesByInstrument(t *testing.T) {
	m := testMarket([]float64{100}, 0)
	spot := book.NewSpotBook(100.0)

	p := &scripted{id: "p1", fn: func(State) []book.Order {
		return []book.Order{
			{Owner: "p1", Side: book.Buy, Price: 99.0, Quantity: 1, Instrument: book.Spot},
			{Owner: "p1", Side: book.Buy, Price: 2.0, Quantity: 1,
				Instrument: book.Option, Strike: 100, Kind: pricing.Put},
			// Unknown strike: dropped without failing the step.
			{Owner: "p1", Side: book.Buy, Price: 2.0, Quantity: 1,
				Instrument: book.Option, Strike: 123, Kind: pricing.Put},
		}
	}}

	trades := m.Step(context.Background(), 1, 100.0, []Participant{p}, spot)
	assert.Empty(t, trades)

	bid, ok := spot.BestBid()
	require.True(t, ok)
	assert.Equal(t, 99.0, bid.Price)

	putBook, ok := m.Book(book.OptionKey{Strike: 100, Kind: pricing.Put})
	require.True(t, ok)
	putBid, ok := putBook.BestBid()
	require.True(t, ok)
	assert.Equal(t, 2.0, putBid.Price)
}

func TestStepDropsSpotOrdersWithoutSpotBook(t *testing.T) {
	m := testMarket([]float64{100}, 1)

	p := &scripted{id: "p1", fn: func(State) []book.Order {
		return []book.Order{{Owner: "p1", Side: book.Buy, Price: 99.0, Quantity: 1, Instrument: book.Spot}}
	}}

	trades := m.Step(context.Background(), 1, 100.0, []Participant{p}, nil)
	assert.Empty(t, trades)
}

func TestStepRefreshesMidsFromBooks(t *testing.T) {
	m := testMarket([]float64{100}, 0)

	p := &scripted{id: "mm", fn: func(State) []book.Order {
		return []book.Order{
			{Owner: "mm", Side: book.Buy, Price: 4.0, Quantity: 1,
				Instrument: book.Option, Strike: 100, Kind: pricing.Call},
			{Owner: "mm", Side: book.Sell, Price: 6.0, Quantity: 1,
				Instrument: book.Option, Strike: 100, Kind: pricing.Call},
		}
	}}

	m.Step(context.Background(), 1, 100.0, []Participant{p}, nil)

	mid, ok := m.MidCall(100)
	require.True(t, ok)
	assert.InDelta(t, 5.0, mid, 1e-12)
}

func TestStepMidFallsBackToPreviousValue(t *testing.T) {
	m := testMarket([]float64{100}, 0)
	seeded, _ := m.MidCall(100)

	// Empty step: no orders anywhere, mids must not move.
	m.Step(context.Background(), 1, 100.0, []Participant{&scripted{id: "idle"}}, nil)

	mid, ok := m.MidCall(100)
	require.True(t, ok)
	assert.Equal(t, seeded, mid)
}

func TestSetVolatilityAppliesOnNextStep(t *testing.T) {
	m := testMarket([]float64{100}, 0)

	var seenVol float64
	p := &scripted{id: "p1", fn: func(s State) []book.Order {
		seenVol = s.Vol
		return nil
	}}

	m.SetVolatility(0.35)
	m.Step(context.Background(), 1, 100.0, []Participant{p}, nil)
	assert.Equal(t, 0.35, seenVol)

	// Non-positive updates are ignored.
	m.SetVolatility(0)
	m.SetVolatility(-1)
	assert.Equal(t, 0.35, m.Params().Vol)
}

func TestHedgeSweepOffsetsNetDelta(t *testing.T) {
	m := testMarket([]float64{100}, 1)
	spot := book.NewSpotBook(100.0, book.WithSettler(m.Settler()))

	holder := &hedgingHolder{id: "omm", options: map[book.OptionKey]float64{
		{Strike: 100, Kind: pricing.Call}: 10,
		{Strike: 100, Kind: pricing.Put}:  -5,
	}}
	m.Register("omm", holder)

	// Resting bid from a counterparty for the hedge to hit.
	_, err := spot.Submit(book.Order{
		Owner: "cp", Side: book.Buy, Price: 100.0, Quantity: 100, Instrument: book.Spot,
	})
	require.NoError(t, err)

	trades := m.Step(context.Background(), 1, 100.0, []Participant{holder}, spot)
	require.Len(t, trades, 1)

	callDelta := pricing.Delta(100, 100, 0.01, 0, 0.2, 0.25, pricing.Call)
	putDelta := pricing.Delta(100, 100, 0.01, 0, 0.2, 0.25, pricing.Put)
	wantQty := math.Round(math.Abs(10*callDelta - 5*putDelta))

	tr := trades[0]
	assert.Equal(t, wantQty, tr.Quantity)
	assert.Equal(t, "cp", tr.Buyer)
	assert.Equal(t, "omm", tr.Seller)
	// Midpoint of the resting bid and the one-tick-through sell.
	assert.InDelta(t, 100.0-0.5e-4, tr.Price, 1e-9)

	// Settlement moved the hedge fill into the holder's spot inventory.
	assert.Equal(t, -wantQty, holder.spotInv)
}

func TestHedgeSweepSkipsFlatPositions(t *testing.T) {
	m := testMarket([]float64{100}, 1)
	spot := book.NewSpotBook(100.0, book.WithSettler(m.Settler()))

	holder := &hedgingHolder{id: "omm", options: map[book.OptionKey]float64{}}
	m.Register("omm", holder)

	trades := m.Step(context.Background(), 1, 100.0, []Participant{holder}, spot)
	assert.Empty(t, trades)

	// No hedge order left resting either.
	_, hasBid := spot.BestBid()
	_, hasAsk := spot.BestAsk()
	assert.False(t, hasBid)
	assert.False(t, hasAsk)
}

func TestHedgeRunsOnIntervalTicksOnly(t *testing.T) {
	m := testMarket([]float64{100}, 2)
	spot := book.NewSpotBook(100.0, book.WithSettler(m.Settler()))

	holder := &hedgingHolder{id: "omm", options: map[book.OptionKey]float64{
		{Strike: 100, Kind: pricing.Call}: 10,
	}}
	m.Register("omm", holder)

	// t=1 is off-interval: no hedge order appears.
	m.Step(context.Background(), 1, 100.0, []Participant{holder}, spot)
	_, hasAsk := spot.BestAsk()
	assert.False(t, hasAsk)

	// t=2 hedges: the sell rests since there is no bid to hit.
	m.Step(context.Background(), 2, 100.0, []Participant{holder}, spot)
	ask, ok := spot.BestAsk()
	require.True(t, ok)
	assert.InDelta(t, 100.0-1e-4, ask.Price, 1e-12)
}

func TestHedgeBuysBackNegativeDelta(t *testing.T) {
	m := testMarket([]float64{100}, 1)
	spot := book.NewSpotBook(100.0, book.WithSettler(m.Settler()))

	// Short calls give negative delta, so the hedge must buy.
	holder := &hedgingHolder{id: "omm", options: map[book.OptionKey]float64{
		{Strike: 100, Kind: pricing.Call}: -10,
	}}
	m.Register("omm", holder)

	m.Step(context.Background(), 1, 100.0, []Participant{holder}, spot)

	bid, ok := spot.BestBid()
	require.True(t, ok)
	assert.InDelta(t, 100.0+1e-4, bid.Price, 1e-12)
}

// Exposure aggregation must not depend on map iteration order: repeated
// evaluations of the same position book give bit-identical sums, and the
// sum equals the one computed over strikes in ascending order.
func TestNetDeltaIsOrderIndependent(t *testing.T) {
	strikes := []float64{80, 85, 90, 95, 100, 105, 110, 115, 120}
	m := testMarket(strikes, 1)
	snapshot := m.Params()

	positions := make(map[book.OptionKey]float64)
	for i, strike := range strikes {
		positions[book.OptionKey{Strike: strike, Kind: pricing.Call}] = float64(i+1) * 3.7
		positions[book.OptionKey{Strike: strike, Kind: pricing.Put}] = -float64(i+7) * 0.13
	}

	first := m.netDelta(100.0, snapshot, positions)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, m.netDelta(100.0, snapshot, positions))
	}

	var want float64
	for _, strike := range strikes {
		for _, kind := range []pricing.Kind{pricing.Call, pricing.Put} {
			key := book.OptionKey{Strike: strike, Kind: kind}
			want += positions[key] * pricing.Delta(100.0, strike, snapshot.Rate, snapshot.Div, snapshot.Vol, snapshot.Tau, kind)
		}
	}
	assert.Equal(t, want, first)
}
