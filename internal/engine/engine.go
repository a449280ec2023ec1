package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/hedge"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/instrument"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/marketdata"
	imetrics "github.com/karanshah0206/options-volatility-trading-bot/internal/metrics"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/position"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/pricing"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/risk"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/signal"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/vol"
)

// Publisher fans out per-tick instrument rows (dashboard, Redis stream).
type Publisher interface {
	PublishRows(ctx context.Context, tick int, rows []types.InstrumentRow) error
}

// Engine is the decision-and-risk core. One full pass per tick:
// vol update -> pricing -> signal -> position -> risk -> hedge -> risk.
// All state (position books, vol estimate) is touched only inside the pass,
// so the engine needs no locking.
type Engine struct {
	cfg *config.Config
	log *zap.Logger

	chain     *instrument.Chain
	tracker   *vol.Tracker
	positions *position.Manager
	hedger    *hedge.Hedger
	governor  *risk.Governor
	pub       Publisher
}

// New wires the core components. pub may be nil.
func New(cfg *config.Config, log *zap.Logger, pub Publisher) *Engine {
	return &Engine{
		cfg:       cfg,
		log:       log,
		chain:     instrument.BuildChain(cfg.Instruments.Underlying, cfg.Instruments.Strikes, cfg.Instruments.SharesPerContract),
		tracker:   vol.NewTracker(log, cfg.Session.TicksPerYear),
		positions: position.NewManager(cfg, log),
		hedger:    hedge.NewHedger(cfg, log),
		governor:  risk.NewGovernor(cfg, log),
		pub:       pub,
	}
}

func (e *Engine) Chain() *instrument.Chain { return e.chain }

// Run consumes snapshots one at a time and emits risk-approved orders until
// the feed closes or the market leaves the active state.
func (e *Engine) Run(ctx context.Context, in <-chan marketdata.Snapshot, out chan<- types.Order) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-in:
			if !ok {
				e.log.Info("engine: snapshot feed closed")
				return
			}
			if !snap.Active {
				e.log.Info("engine: market inactive, stopping", zap.Int("tick", snap.Tick))
				return
			}
			start := time.Now()
			orders := e.Tick(ctx, snap)
			imetrics.TickLatency.Observe(time.Since(start).Seconds())
			for _, o := range orders {
				select {
				case out <- o:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// Tick runs one full decision pass and returns the orders to submit.
func (e *Engine) Tick(ctx context.Context, snap marketdata.Snapshot) []types.Order {
	for _, n := range snap.News {
		if e.tracker.Update(n.ID, n.Headline+" "+n.Body) {
			cur, _ := e.tracker.Current()
			e.log.Info("engine: realized vol updated",
				zap.Int("news_id", n.ID),
				zap.Float64("vol", cur),
			)
		}
	}

	uq, ok := snap.Quotes[e.chain.Underlying.Ticker]
	if !ok || uq.Mid() <= 0 {
		e.log.Warn("engine: no underlying quote this tick", zap.Int("tick", snap.Tick))
		return nil
	}
	spot := uq.Mid()
	e.tracker.Observe(spot)
	imetrics.UnderlyingMid.Set(spot)
	if ov, ok := e.tracker.ObservedVol(); ok {
		imetrics.ObservedVol.Set(ov)
	}

	sigma, volKnown := e.tracker.Current()
	if !volKnown {
		// No realized-vol announcement yet; no basis for any decision.
		e.log.Debug("engine: realized vol unknown, skipping pass", zap.Int("tick", snap.Tick))
		return nil
	}
	tte := e.cfg.TimeToExpiry(snap.Tick)

	theos := make(map[string]types.Theoretical, len(e.chain.Options))
	for _, opt := range e.chain.Options {
		q, ok := snap.Quotes[opt.Ticker]
		if !ok || q.Mid() <= 0 {
			continue
		}
		value, delta, err := pricing.Price(spot, opt.Strike, tte, sigma, e.cfg.Trade.RiskFreeRate, opt.Kind)
		if err != nil {
			imetrics.PricingErrors.Inc()
			e.log.Warn("engine: pricing failed, instrument skipped",
				zap.String("ticker", opt.Ticker),
				zap.Error(err),
			)
			continue
		}
		theos[opt.Ticker] = types.Theoretical{Ticker: opt.Ticker, Value: value, Delta: delta}
	}

	// Net delta from confirmed fills only; intended orders never count.
	netDelta := e.hedger.NetDelta(e.chain, theos, snap.Positions)
	imetrics.NetDelta.Set(netDelta)

	var orders []types.Order
	rows := make([]types.InstrumentRow, 0, len(theos)+1)

	for _, opt := range e.chain.Options {
		th, ok := theos[opt.Ticker]
		if !ok {
			continue
		}
		q := snap.Quotes[opt.Ticker]
		mid := q.Mid()
		sig := signal.Evaluate(th.Value, mid, e.cfg.Trade.OpenThreshold)
		qty := snap.Positions[opt.Ticker]

		if ord := e.positions.Step(opt, qty, sig, mid); ord != nil {
			if ok := e.governor.Clip(ord, opt, qty, netDelta, th.Delta*opt.Multiplier); ok != nil {
				orders = append(orders, *ok)
			}
		}

		rows = append(rows, types.InstrumentRow{
			Ticker:    opt.Ticker,
			State:     string(e.positions.State(opt.Ticker)),
			Bid:       q.Bid,
			Ask:       q.Ask,
			Mid:       mid,
			Theo:      th.Value,
			Delta:     th.Delta,
			Magnitude: sig.Magnitude,
			Position:  qty,
			Tick:      snap.Tick,
			TsMs:      snap.Ts.UnixMilli(),
		})
	}

	uQty := snap.Positions[e.chain.Underlying.Ticker]
	if hord := e.hedger.Rehedge(netDelta, uQty, spot, uq.VWAP); hord != nil {
		if ok := e.governor.Clip(hord, e.chain.Underlying, uQty, netDelta, 1); ok != nil {
			orders = append(orders, *ok)
		}
	}

	rows = append(rows, types.InstrumentRow{
		Ticker:   e.chain.Underlying.Ticker,
		State:    "HEDGE",
		Bid:      uq.Bid,
		Ask:      uq.Ask,
		Mid:      spot,
		Delta:    netDelta,
		Position: uQty,
		Tick:     snap.Tick,
		TsMs:     snap.Ts.UnixMilli(),
	})

	if e.pub != nil {
		if err := e.pub.PublishRows(ctx, snap.Tick, rows); err != nil {
			e.log.Warn("engine: telemetry publish failed", zap.Error(err))
		}
	}
	return orders
}
