// Package sim drives a full simulation run: the spot market, the options
// market layered on top of it, and the telemetry fan-out.
package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/erain9/marketsim/config"
	"github.com/erain9/marketsim/pkg/agent"
	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/logging"
	"github.com/erain9/marketsim/pkg/market"
	"github.com/erain9/marketsim/pkg/messaging"
	"github.com/erain9/marketsim/pkg/otel"
	"github.com/erain9/marketsim/pkg/pricing"
	"github.com/erain9/marketsim/pkg/recorder"
	redisstore "github.com/erain9/marketsim/pkg/store/redis"
)

// Fundamental anchor process parameters.
const (
	fundamentalDrift    = 0.0
	fundamentalSigma    = 0.5
	fundamentalInterval = 10
)

// Result summarizes a finished run.
type Result struct {
	RunID       string
	Steps       int
	FinalMid    float64
	FinalVol    float64
	TotalTrades int
	Elapsed     time.Duration
}

// Runner wires agents, markets and telemetry for one simulation run.
type Runner struct {
	cfg *config.Config
	rng *rand.Rand

	spot    *market.SpotMarket
	options *market.OptionsMarket

	spotAgents   []market.Participant
	optionAgents []market.Participant
	anchored     []*agent.FundamentalTrader

	news        *market.NewsProcess
	fundamental *market.FundamentalProcess

	rec    *recorder.Recorder
	sender messaging.MessageSender
	store  *redisstore.RunStore

	runID        string
	priceHistory []float64
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSender attaches a step telemetry sender.
func WithSender(s messaging.MessageSender) Option {
	return func(r *Runner) { r.sender = s }
}

// WithRecorder attaches a CSV recorder.
func WithRecorder(rec *recorder.Recorder) Option {
	return func(r *Runner) { r.rec = rec }
}

// WithRunStore attaches a Redis run store.
func WithRunStore(store *redisstore.RunStore) Option {
	return func(r *Runner) { r.store = store }
}

// NewRunner builds the markets and agent population described by cfg.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Sim.Seed)),
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.options = market.NewOptionsMarket(market.Config{
		Strikes:     cfg.Options.Strikes,
		InitialSpot: cfg.Sim.InitialPrice,
		Params: market.Params{
			Vol:  cfg.Options.Vol,
			Rate: cfg.Options.Rate,
			Div:  cfg.Options.Dividend,
			Tau:  cfg.Options.Tau,
		},
		HedgeInterval: cfg.Options.HedgeInterval,
		HedgeTick:     cfg.Options.HedgeTick,
	})
	r.spot = market.NewSpotMarket(cfg.Sim.InitialPrice, r.options.Settler())

	r.news = market.NewNewsProcess(cfg.News.Probability, cfg.News.Volatility, r.childRNG())
	r.fundamental = market.NewFundamentalProcess(
		cfg.Sim.InitialPrice, fundamentalDrift, fundamentalSigma, fundamentalInterval, r.childRNG())

	r.buildAgents()
	return r
}

// RunID returns the identifier of this run.
func (r *Runner) RunID() string {
	return r.runID
}

func (r *Runner) childRNG() *rand.Rand {
	return rand.New(rand.NewSource(r.rng.Int63()))
}

func (r *Runner) buildAgents() {
	cfg := r.cfg

	for i := 0; i < cfg.Agents.NoiseTraders; i++ {
		id := fmt.Sprintf("noise-%d", i+1)
		r.spotAgents = append(r.spotAgents, agent.NewNoiseTrader(id, cfg.Agents.NoiseLevel, r.childRNG()))
	}
	for i := 0; i < cfg.Agents.MarketMakers; i++ {
		id := fmt.Sprintf("mm-%d", i+1)
		mm := agent.NewMarketMaker(id, agent.DefaultMarketMakerConfig())
		r.options.Register(id, mm)
		r.spotAgents = append(r.spotAgents, mm)
	}
	for i := 0; i < cfg.Agents.InformedTraders; i++ {
		id := fmt.Sprintf("informed-%d", i+1)
		r.spotAgents = append(r.spotAgents, agent.NewInformedTrader(id, 0.5, 0.1))
	}
	for i := 0; i < cfg.Agents.TrendTraders; i++ {
		id := fmt.Sprintf("trend-%d", i+1)
		r.spotAgents = append(r.spotAgents, agent.NewTrendTrader(id, agent.DefaultTrendTraderConfig()))
	}
	for i := 0; i < cfg.Agents.FundamentalTraders; i++ {
		id := fmt.Sprintf("fundamental-%d", i+1)
		ft := agent.NewFundamentalTrader(id, cfg.Sim.InitialPrice, 0.1)
		r.anchored = append(r.anchored, ft)
		r.spotAgents = append(r.spotAgents, ft)
	}

	for i := 0; i < cfg.Agents.OptionMarketMakers; i++ {
		id := fmt.Sprintf("omm-%d", i+1)
		omm := agent.NewOptionsMarketMaker(id, cfg.Agents.OptionSpreadFactor, r.childRNG())
		r.options.Register(id, omm)
		r.optionAgents = append(r.optionAgents, omm)
	}
	for i := 0; i < cfg.Agents.OptionNoiseTraders; i++ {
		id := fmt.Sprintf("onoise-%d", i+1)
		r.optionAgents = append(r.optionAgents, agent.NewOptionsNoiseTrader(id, 2, 0.3, r.childRNG()))
	}
	for i := 0; i < cfg.Agents.OptionArbitrageurs; i++ {
		id := fmt.Sprintf("arb-%d", i+1)
		r.optionAgents = append(r.optionAgents, agent.NewOptionsArbitrageur(id, cfg.Agents.ArbThreshold, 5))
	}
}

// Run executes the configured warmup and main phases and returns the run
// summary. Recorder output is flushed before returning.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if r.store != nil {
		storeRunID, err := r.store.StartRun(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Run store unavailable, continuing without persistence")
			r.store = nil
		} else {
			r.runID = storeRunID
		}
	}

	ctx = logging.WithRunID(ctx, r.runID)
	logger := logging.FromContext(ctx)

	logger.Info().
		Int("steps", r.cfg.Sim.Steps).
		Int("warmup", r.cfg.Sim.WarmupSteps).
		Int("spot_agents", len(r.spotAgents)).
		Int("option_agents", len(r.optionAgents)).
		Msg("Starting simulation")

	totalTrades := 0

	for t := 0; t < r.cfg.Sim.WarmupSteps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.advanceSignals()
		r.spot.Step(t, r.spotAgents, r.news.Current())
	}

	for t := r.cfg.Sim.WarmupSteps; t < r.cfg.Sim.WarmupSteps+r.cfg.Sim.Steps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stepStart := time.Now()
		r.advanceSignals()

		spotTrades := r.spot.Step(t, r.spotAgents, r.news.Current())
		s := r.spot.Mid()
		r.priceHistory = append(r.priceHistory, s)

		if rv, ok := market.RealizedVol(r.priceHistory, r.cfg.Options.VolLookback, r.cfg.Options.Annualization); ok {
			r.options.SetVolatility(rv)
		}

		optionTrades := r.options.Step(ctx, t, s, r.optionAgents, r.spot.Book())
		numTrades := len(spotTrades) + len(optionTrades)
		totalTrades += numTrades

		r.sampleSurface(ctx, t, s)
		r.emitStep(ctx, t, s, spotTrades, optionTrades)

		otel.GetSimMetrics().RecordStepDuration(ctx, float64(time.Since(stepStart).Microseconds())/1000.0)

		logger.Debug().
			Int("step", t).
			Float64("mid", s).
			Float64("news", r.news.Current()).
			Int("trades", numTrades).
			Msg("Step complete")
	}

	if r.rec != nil {
		if err := r.rec.Flush(r.cfg.Sim.OutputDir); err != nil {
			return nil, fmt.Errorf("failed to flush recorder: %w", err)
		}
	}

	result := &Result{
		RunID:       r.runID,
		Steps:       r.cfg.Sim.Steps,
		FinalMid:    r.spot.Mid(),
		FinalVol:    r.options.Params().Vol,
		TotalTrades: totalTrades,
		Elapsed:     time.Since(start),
	}

	logger.Info().
		Float64("final_mid", result.FinalMid).
		Float64("final_vol", result.FinalVol).
		Int("total_trades", result.TotalTrades).
		Dur("elapsed", result.Elapsed).
		Msg("Simulation finished")

	return result, nil
}

func (r *Runner) advanceSignals() {
	r.news.Advance()
	r.fundamental.Advance()
	anchor := r.fundamental.Current()
	for _, ft := range r.anchored {
		ft.SetFundamental(anchor)
	}
}

// sampleSurface reads the implied volatility off every posted mid and feeds
// the recorder and metrics.
func (r *Runner) sampleSurface(ctx context.Context, t int, s float64) {
	p := r.options.Params()
	for _, strike := range r.options.Strikes() {
		if mid, ok := r.options.MidCall(strike); ok {
			if iv, ok := pricing.ImpliedVolatility(mid, s, strike, p.Rate, p.Div, p.Tau, pricing.Call); ok {
				r.recordSurface(ctx, t, strike, pricing.Call, mid, iv, p.Vol)
			}
		}
		if mid, ok := r.options.MidPut(strike); ok {
			if iv, ok := pricing.ImpliedVolatility(mid, s, strike, p.Rate, p.Div, p.Tau, pricing.Put); ok {
				r.recordSurface(ctx, t, strike, pricing.Put, mid, iv, p.Vol)
			}
		}
	}
}

func (r *Runner) recordSurface(ctx context.Context, t int, strike float64, kind pricing.Kind, mid, iv, vol float64) {
	otel.GetSimMetrics().RecordImpliedVolGap(ctx, math.Abs(iv-vol))
	if r.rec == nil {
		return
	}
	r.rec.RecordSurface(recorder.SurfaceRow{
		Step:       int64(t),
		Strike:     strike,
		Kind:       string(kind),
		Mid:        mid,
		ImpliedVol: iv,
	})
}

func (r *Runner) emitStep(ctx context.Context, t int, s float64, spotTrades, optionTrades []book.Trade) {
	numTrades := len(spotTrades) + len(optionTrades)

	if r.rec != nil {
		r.rec.RecordPrice(recorder.PriceRow{
			Step:       int64(t),
			SpotMid:    s,
			News:       r.news.Current(),
			Volatility: r.options.Params().Vol,
			NumTrades:  int64(numTrades),
		})
		r.rec.RecordTrades(spotTrades)
		r.rec.RecordTrades(optionTrades)
	}

	if r.sender == nil && r.store == nil {
		return
	}

	msg := &messaging.StepMessage{
		RunID:      r.runID,
		Step:       int64(t),
		SpotMid:    messaging.FormatDecimal(s),
		News:       messaging.FormatDecimal(r.news.Current()),
		Volatility: messaging.FormatDecimal(r.options.Params().Vol),
		NumTrades:  int64(numTrades),
	}
	for _, trades := range [][]book.Trade{spotTrades, optionTrades} {
		for _, tr := range trades {
			msg.Trades = append(msg.Trades, messaging.Trade{
				Instrument: string(tr.Instrument),
				Price:      messaging.FormatDecimal(tr.Price),
				Quantity:   messaging.FormatDecimal(tr.Quantity),
				Buyer:      tr.Buyer,
				Seller:     tr.Seller,
			})
		}
	}

	if r.sender != nil {
		if err := r.sender.SendStepMessage(msg); err != nil {
			log.Warn().Err(err).Int("step", t).Msg("Failed to publish step message")
		}
	}
	if r.store != nil {
		if err := r.store.AppendStep(ctx, r.runID, msg); err != nil {
			log.Warn().Err(err).Int("step", t).Msg("Failed to persist step record")
		}
	}
}
