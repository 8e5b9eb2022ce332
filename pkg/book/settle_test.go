package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spotHolder tracks only the aggregate spot scalar.
type spotHolder struct {
	inventory float64
}

func (h *spotHolder) AddSpotInventory(qty float64) { h.inventory += qty }

// optionHolder tracks spot scalar plus per-instrument option positions.
type optionHolder struct {
	inventory float64
	positions map[OptionKey]float64
}

func newOptionHolder() *optionHolder {
	return &optionHolder{positions: make(map[OptionKey]float64)}
}

func (h *optionHolder) AddSpotInventory(qty float64) { h.inventory += qty }

func (h *optionHolder) AddOptionInventory(key OptionKey, qty float64) {
	h.positions[key] += qty
}

func (h *optionHolder) OptionInventory() map[OptionKey]float64 { return h.positions }

func TestSettle_SpotConservation(t *testing.T) {
	settler := NewInventorySettler()
	buyer := &spotHolder{}
	seller := &spotHolder{}
	settler.Register("buyer", buyer)
	settler.Register("seller", seller)

	b := NewSpotBook(100, WithSettler(settler))

	_, err := b.Submit(limitOrder("buyer", Buy, 100, 7))
	require.NoError(t, err)
	trades, err := b.Submit(limitOrder("seller", Sell, 100, 7))
	require.NoError(t, err)
	require.Len(t, trades, 1)

	assert.Equal(t, 7.0, buyer.inventory)
	assert.Equal(t, -7.0, seller.inventory)
}

func TestSettle_OptionUpdatesBothInventories(t *testing.T) {
	settler := NewInventorySettler()
	maker := newOptionHolder()
	settler.Register("mm", maker)

	key := OptionKey{Strike: 100, Kind: "call"}
	b := NewOptionBook(key, 5.0, WithSettler(settler))

	_, err := b.Submit(Order{Owner: "mm", Side: Buy, Price: 5, Quantity: 3, Instrument: Option})
	require.NoError(t, err)
	trades, err := b.Submit(Order{Owner: "taker", Side: Sell, Price: 5, Quantity: 3, Instrument: Option})
	require.NoError(t, err)
	require.Len(t, trades, 1)

	assert.Equal(t, 3.0, maker.inventory)
	assert.Equal(t, 3.0, maker.positions[key])
}

// A participant without inventory capability is simply skipped; the trade
// still settles for its counterparty.
func TestSettle_UnregisteredCounterparty(t *testing.T) {
	settler := NewInventorySettler()
	maker := newOptionHolder()
	settler.Register("mm", maker)

	key := OptionKey{Strike: 90, Kind: "put"}
	b := NewOptionBook(key, 2.0, WithSettler(settler))

	_, err := b.Submit(Order{Owner: "noise", Side: Buy, Price: 2, Quantity: 2, Instrument: Option})
	require.NoError(t, err)
	_, err = b.Submit(Order{Owner: "mm", Side: Sell, Price: 2, Quantity: 2, Instrument: Option})
	require.NoError(t, err)

	assert.Equal(t, -2.0, maker.inventory)
	assert.Equal(t, -2.0, maker.positions[key])
}

// A spot-only participant trading on an option book gets its scalar updated
// but never an option position.
func TestSettle_SpotOnlyHolderOnOptionBook(t *testing.T) {
	settler := NewInventorySettler()
	holder := &spotHolder{}
	settler.Register("spot-only", holder)

	b := NewOptionBook(OptionKey{Strike: 100, Kind: "call"}, 5.0, WithSettler(settler))

	_, err := b.Submit(Order{Owner: "spot-only", Side: Buy, Price: 5, Quantity: 1, Instrument: Option})
	require.NoError(t, err)
	_, err = b.Submit(Order{Owner: "other", Side: Sell, Price: 5, Quantity: 1, Instrument: Option})
	require.NoError(t, err)

	assert.Equal(t, 1.0, holder.inventory)
}

// Settlement happens once per emitted trade; a multi-fill submission settles
// each fill separately and the net position matches the total filled size.
func TestSettle_MultiFillNetsCorrectly(t *testing.T) {
	settler := NewInventorySettler()
	maker := newOptionHolder()
	taker := newOptionHolder()
	settler.Register("maker", maker)
	settler.Register("taker", taker)

	key := OptionKey{Strike: 100, Kind: "call"}
	b := NewOptionBook(key, 5.0, WithSettler(settler))

	_, err := b.Submit(Order{Owner: "maker", Side: Sell, Price: 5.0, Quantity: 2, Instrument: Option})
	require.NoError(t, err)
	_, err = b.Submit(Order{Owner: "maker", Side: Sell, Price: 5.1, Quantity: 2, Instrument: Option})
	require.NoError(t, err)

	trades, err := b.Submit(Order{Owner: "taker", Side: Buy, Price: 5.2, Quantity: 4, Instrument: Option})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, 4.0, taker.positions[key])
	assert.Equal(t, -4.0, maker.positions[key])
	assert.Equal(t, 4.0, taker.inventory)
	assert.Equal(t, -4.0, maker.inventory)
}
