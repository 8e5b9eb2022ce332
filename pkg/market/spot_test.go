package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/pricing"
)

func TestSpotMarketStepMatchesQuotes(t *testing.T) {
	m := NewSpotMarket(100.0, nil)

	buyer := &scripted{id: "b", fn: func(s State) []book.Order {
		return []book.Order{{Owner: "b", Side: book.Buy, Price: s.Spot + 1, Quantity: 3, Instrument: book.Spot}}
	}}
	seller := &scripted{id: "s", fn: func(s State) []book.Order {
		return []book.Order{{Owner: "s", Side: book.Sell, Price: s.Spot - 1, Quantity: 3, Instrument: book.Spot}}
	}}

	trades := m.Step(1, []Participant{buyer, seller}, 0)
	require.Len(t, trades, 1)
	assert.Equal(t, 100.0, trades[0].Price)
	assert.Equal(t, 3.0, trades[0].Quantity)
	assert.Equal(t, "b", trades[0].Buyer)
	assert.Equal(t, "s", trades[0].Seller)
}

func TestSpotMarketStepUpdatesMidFromBook(t *testing.T) {
	m := NewSpotMarket(100.0, nil)

	mm := &scripted{id: "mm", fn: func(s State) []book.Order {
		return []book.Order{
			{Owner: "mm", Side: book.Buy, Price: 101.0, Quantity: 1, Instrument: book.Spot},
			{Owner: "mm", Side: book.Sell, Price: 105.0, Quantity: 1, Instrument: book.Spot},
		}
	}}

	m.Step(1, []Participant{mm}, 0)
	assert.InDelta(t, 103.0, m.Mid(), 1e-12)
}

func TestSpotMarketKeepsMidWhenBookEmpty(t *testing.T) {
	m := NewSpotMarket(100.0, nil)

	m.Step(1, []Participant{&scripted{id: "idle"}}, 0)
	assert.Equal(t, 100.0, m.Mid())
}

func TestSpotMarketPassesNewsToParticipants(t *testing.T) {
	m := NewSpotMarket(100.0, nil)

	var seen float64
	p := &scripted{id: "p", fn: func(s State) []book.Order {
		seen = s.News
		return nil
	}}

	m.Step(1, []Participant{p}, 0.7)
	assert.Equal(t, 0.7, seen)
}

func TestSpotMarketDropsNonSpotOrders(t *testing.T) {
	m := NewSpotMarket(100.0, nil)

	p := &scripted{id: "p", fn: func(s State) []book.Order {
		return []book.Order{{Owner: "p", Side: book.Buy, Price: 1.0, Quantity: 1,
			Instrument: book.Option, Strike: 100, Kind: pricing.Call}}
	}}

	m.Step(1, []Participant{p}, 0)
	_, hasBid := m.Book().BestBid()
	assert.False(t, hasBid)
}

func TestSpotMarketPurgesBetweenSteps(t *testing.T) {
	m := NewSpotMarket(100.0, nil)

	once := false
	p := &scripted{id: "p", fn: func(s State) []book.Order {
		if once {
			return nil
		}
		once = true
		return []book.Order{{Owner: "p", Side: book.Buy, Price: 99.0, Quantity: 1, Instrument: book.Spot}}
	}}

	m.Step(1, []Participant{p}, 0)
	_, hasBid := m.Book().BestBid()
	require.True(t, hasBid)

	m.Step(2, []Participant{p}, 0)
	_, hasBid = m.Book().BestBid()
	assert.False(t, hasBid)
}
