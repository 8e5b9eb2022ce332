// Package recorder accumulates per-step simulation output and persists it
// as CSV files for offline analysis.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/erain9/marketsim/pkg/book"
)

// PriceRow is one row of the per-step price history.
type PriceRow struct {
	Step       int64   `csv:"step"`
	SpotMid    float64 `csv:"spot_mid"`
	News       float64 `csv:"news"`
	Volatility float64 `csv:"volatility"`
	NumTrades  int64   `csv:"num_trades"`
}

// TradeRow is one executed trade.
type TradeRow struct {
	Step       int64   `csv:"step"`
	Instrument string  `csv:"instrument"`
	Strike     float64 `csv:"strike"`
	Kind       string  `csv:"kind"`
	Price      float64 `csv:"price"`
	Quantity   float64 `csv:"quantity"`
	Buyer      string  `csv:"buyer"`
	Seller     string  `csv:"seller"`
}

// SurfaceRow is one implied volatility observation for a strike at a step.
type SurfaceRow struct {
	Step       int64   `csv:"step"`
	Strike     float64 `csv:"strike"`
	Kind       string  `csv:"kind"`
	Mid        float64 `csv:"mid"`
	ImpliedVol float64 `csv:"implied_vol"`
}

// Recorder accumulates rows in memory and flushes them to a directory.
type Recorder struct {
	prices  []PriceRow
	trades  []TradeRow
	surface []SurfaceRow
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// RecordPrice appends one price history row.
func (r *Recorder) RecordPrice(row PriceRow) {
	r.prices = append(r.prices, row)
}

// RecordTrades appends the given trades, stamped with their step.
func (r *Recorder) RecordTrades(trades []book.Trade) {
	for _, tr := range trades {
		r.trades = append(r.trades, TradeRow{
			Step:       int64(tr.Step),
			Instrument: string(tr.Instrument),
			Strike:     tr.Strike,
			Kind:       string(tr.Kind),
			Price:      tr.Price,
			Quantity:   tr.Quantity,
			Buyer:      tr.Buyer,
			Seller:     tr.Seller,
		})
	}
}

// RecordSurface appends one implied volatility surface row.
func (r *Recorder) RecordSurface(row SurfaceRow) {
	r.surface = append(r.surface, row)
}

// Prices returns the accumulated price history.
func (r *Recorder) Prices() []PriceRow {
	return r.prices
}

// Trades returns the accumulated trade rows.
func (r *Recorder) Trades() []TradeRow {
	return r.trades
}

// Surface returns the accumulated implied volatility rows.
func (r *Recorder) Surface() []SurfaceRow {
	return r.surface
}

// Flush writes prices.csv, trades.csv and surface.csv under dir, creating
// the directory if needed. Empty row sets still produce header-only files.
func (r *Recorder) Flush(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := writeCSV(filepath.Join(dir, "prices.csv"), &r.prices); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, "trades.csv"), &r.trades); err != nil {
		return err
	}
	return writeCSV(filepath.Join(dir, "surface.csv"), &r.surface)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
