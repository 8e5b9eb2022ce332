package otel

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SimMetrics holds the counters and histograms recorded by the simulation
// step loop. All instruments come from the global meter provider, so before
// Init they are no-ops.
type SimMetrics struct {
	ordersTotal   metric.Int64Counter
	tradesTotal   metric.Int64Counter
	hedgesTotal   metric.Int64Counter
	hedgeDelta    metric.Float64Histogram
	stepDuration  metric.Float64Histogram
	impliedVolGap metric.Float64Histogram
}

var (
	simMetrics     *SimMetrics
	simMetricsOnce sync.Once
)

// GetSimMetrics returns the singleton simulation metrics instance.
func GetSimMetrics() *SimMetrics {
	simMetricsOnce.Do(func() {
		simMetrics = newSimMetrics()
	})
	return simMetrics
}

func newSimMetrics() *SimMetrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)
	m := &SimMetrics{}
	var err error

	m.ordersTotal, err = meter.Int64Counter(
		"marketsim.orders.total",
		metric.WithDescription("Total number of orders submitted to the books"),
	)
	if err != nil {
		log.Printf("Failed to create orders counter: %v", err)
	}

	m.tradesTotal, err = meter.Int64Counter(
		"marketsim.trades.total",
		metric.WithDescription("Total number of trades executed"),
	)
	if err != nil {
		log.Printf("Failed to create trades counter: %v", err)
	}

	m.hedgesTotal, err = meter.Int64Counter(
		"marketsim.hedges.total",
		metric.WithDescription("Total number of delta hedge orders submitted"),
	)
	if err != nil {
		log.Printf("Failed to create hedges counter: %v", err)
	}

	m.hedgeDelta, err = meter.Float64Histogram(
		"marketsim.hedge.net_delta",
		metric.WithDescription("Net option delta observed at hedge time"),
	)
	if err != nil {
		log.Printf("Failed to create hedge delta histogram: %v", err)
	}

	m.stepDuration, err = meter.Float64Histogram(
		"marketsim.step.duration_ms",
		metric.WithDescription("Wall time of a single simulation step in milliseconds"),
	)
	if err != nil {
		log.Printf("Failed to create step duration histogram: %v", err)
	}

	m.impliedVolGap, err = meter.Float64Histogram(
		"marketsim.iv.gap",
		metric.WithDescription("Absolute gap between implied and input volatility"),
	)
	if err != nil {
		log.Printf("Failed to create implied vol gap histogram: %v", err)
	}

	return m
}

// RecordOrder increments the order counter for the given instrument.
func (m *SimMetrics) RecordOrder(ctx context.Context, instrument string) {
	if m.ordersTotal == nil {
		return
	}
	m.ordersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("instrument", instrument),
	))
}

// RecordTrades adds count executed trades to the trade counter.
func (m *SimMetrics) RecordTrades(ctx context.Context, count int64) {
	if m.tradesTotal == nil || count == 0 {
		return
	}
	m.tradesTotal.Add(ctx, count)
}

// RecordHedge records one hedge sweep and the net delta it observed.
func (m *SimMetrics) RecordHedge(ctx context.Context, netDelta float64) {
	if m.hedgesTotal != nil {
		m.hedgesTotal.Add(ctx, 1)
	}
	if m.hedgeDelta != nil {
		m.hedgeDelta.Record(ctx, netDelta)
	}
}

// RecordStepDuration records the wall time of one simulation step.
func (m *SimMetrics) RecordStepDuration(ctx context.Context, millis float64) {
	if m.stepDuration == nil {
		return
	}
	m.stepDuration.Record(ctx, millis)
}

// RecordImpliedVolGap records the distance between an implied volatility
// read from option mids and the volatility the pricer was fed.
func (m *SimMetrics) RecordImpliedVolGap(ctx context.Context, gap float64) {
	if m.impliedVolGap == nil {
		return
	}
	m.impliedVolGap.Record(ctx, gap)
}
