package recorder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/pricing"
)

func TestRecorderAccumulates(t *testing.T) {
	r := New()

	r.RecordPrice(PriceRow{Step: 1, SpotMid: 100.5, Volatility: 0.2, NumTrades: 2})
	r.RecordTrades([]book.Trade{
		{Price: 100.25, Quantity: 3, Buyer: "a1", Seller: "a2", Step: 1, Instrument: book.Spot},
		{Price: 5.5, Quantity: 1, Buyer: "mm", Seller: "a1", Step: 1, Instrument: book.Option, Strike: 100, Kind: pricing.Call},
	})
	r.RecordSurface(SurfaceRow{Step: 1, Strike: 100, Kind: string(pricing.Call), Mid: 5.5, ImpliedVol: 0.21})

	require.Len(t, r.Prices(), 1)
	require.Len(t, r.Trades(), 2)
	require.Len(t, r.Surface(), 1)

	assert.Equal(t, "spot", r.Trades()[0].Instrument)
	assert.Equal(t, 100.0, r.Trades()[1].Strike)
	assert.Equal(t, "call", r.Trades()[1].Kind)
}

func TestRecorderFlush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	r := New()
	r.RecordPrice(PriceRow{Step: 1, SpotMid: 100.0})
	r.RecordPrice(PriceRow{Step: 2, SpotMid: 101.0})

	require.NoError(t, r.Flush(dir))

	data, err := os.ReadFile(filepath.Join(dir, "prices.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "step,spot_mid,news,volatility,num_trades", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,100"))

	// Empty row sets still produce header-only files.
	_, err = os.Stat(filepath.Join(dir, "trades.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "surface.csv"))
	assert.NoError(t, err)
}
