package hedge

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/instrument"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Hedger keeps the book delta-neutral by trading the underlying. There is no
// hedge ledger: the hedge is always a function of the net delta recomputed
// fresh each tick, so closed option positions release their hedge naturally.
type Hedger struct {
	cfg *config.Config
	log *zap.Logger
}

func NewHedger(cfg *config.Config, log *zap.Logger) *Hedger {
	return &Hedger{cfg: cfg, log: log}
}

// NetDelta aggregates option deltas in share terms plus the underlying
// position. Options without a theoretical this tick contribute nothing.
func (h *Hedger) NetDelta(chain *instrument.Chain, theos map[string]types.Theoretical, positions map[string]float64) float64 {
	net := positions[chain.Underlying.Ticker]
	for _, opt := range chain.Options {
		qty := positions[opt.Ticker]
		if qty == 0 {
			continue
		}
		th, ok := theos[opt.Ticker]
		if !ok {
			continue
		}
		net += th.Delta * qty * opt.Multiplier
	}
	return net
}

// Rehedge returns the underlying order for this tick, or nil.
//
// Past the limit it neutralizes the full exposure (-net, whole shares).
// Inside the limit it unwinds a standing hedge once the market has moved
// through the hedge's volume-weighted average price by more than the fee,
// provided losing the hedge leaves net delta within bounds.
func (h *Hedger) Rehedge(net, underlyingQty, mid, vwap float64) *types.Order {
	limit := h.cfg.Risk.NetDeltaLimit

	if math.Abs(net) > limit {
		qty := -math.Round(net)
		h.log.Info("hedge: neutralizing delta",
			zap.Float64("net_delta", net),
			zap.Float64("qty", qty),
		)
		return h.order(qty, "delta hedge")
	}

	if underlyingQty == 0 || vwap <= 0 || mid <= 0 {
		return nil
	}
	fee := h.cfg.Trade.MarketFee
	residual := net - underlyingQty

	if underlyingQty > 0 && vwap < mid-fee && math.Abs(residual) <= limit {
		h.log.Info("hedge: unwinding long hedge",
			zap.Float64("qty", underlyingQty),
			zap.Float64("vwap", vwap),
			zap.Float64("mid", mid),
		)
		return h.order(-underlyingQty, "hedge unwind")
	}
	if underlyingQty < 0 && vwap > mid+fee && math.Abs(residual) <= limit {
		h.log.Info("hedge: unwinding short hedge",
			zap.Float64("qty", underlyingQty),
			zap.Float64("vwap", vwap),
			zap.Float64("mid", mid),
		)
		return h.order(-underlyingQty, "hedge unwind")
	}
	return nil
}

func (h *Hedger) order(qty float64, reason string) *types.Order {
	if qty == 0 {
		return nil
	}
	return &types.Order{
		Ticker: h.cfg.Instruments.Underlying,
		Qty:    qty,
		Type:   types.Market,
		Reason: reason,
		Ts:     time.Now(),
	}
}
