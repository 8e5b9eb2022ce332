package book

// Settler applies the inventory side effects of an execution. The matching
// loop emits trades only; it never reaches into participant state itself.
type Settler interface {
	Settle(trade Trade)
}

// SpotInventoried is implemented by participants that track an aggregate
// spot-equivalent inventory scalar. AddSpotInventory must only ever be
// called by settlement.
type SpotInventoried interface {
	AddSpotInventory(qty float64)
}

// OptionInventoried is implemented by participants that additionally track
// signed per-instrument option positions.
type OptionInventoried interface {
	SpotInventoried
	AddOptionInventory(key OptionKey, qty float64)
	OptionInventory() map[OptionKey]float64
}

// InventorySettler dispatches fills to registered participants by their
// declared inventory capability. Buyer inventory grows by the traded
// quantity, seller inventory shrinks by the same amount; option trades
// update the (strike, kind) position alongside the spot scalar.
type InventorySettler struct {
	participants map[string]SpotInventoried
}

// NewInventorySettler creates an empty settler.
func NewInventorySettler() *InventorySettler {
	return &InventorySettler{
		participants: make(map[string]SpotInventoried),
	}
}

// Register associates a participant id with its inventory capability.
// Participants without inventory are simply never registered.
func (s *InventorySettler) Register(id string, p SpotInventoried) {
	s.participants[id] = p
}

// Settle implements Settler.
func (s *InventorySettler) Settle(trade Trade) {
	s.apply(trade.Buyer, trade, +trade.Quantity)
	s.apply(trade.Seller, trade, -trade.Quantity)
}

func (s *InventorySettler) apply(id string, trade Trade, signed float64) {
	p, ok := s.participants[id]
	if !ok {
		return
	}
	if trade.Instrument == Option {
		if oi, ok := p.(OptionInventoried); ok {
			oi.AddOptionInventory(OptionKey{Strike: trade.Strike, Kind: trade.Kind}, signed)
		}
	}
	p.AddSpotInventory(signed)
}
