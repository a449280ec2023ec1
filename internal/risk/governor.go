package risk

import (
	"math"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/instrument"
	imetrics "github.com/karanshah0206/options-volatility-trading-bot/internal/metrics"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Governor enforces the hard ceilings. Every order from the position manager
// or the hedger passes through Clip before submission; clips and vetoes are
// deterministic, logged, and counted, never silent.
type Governor struct {
	cfg *config.Config
	log *zap.Logger
}

func NewGovernor(cfg *config.Config, log *zap.Logger) *Governor {
	return &Governor{cfg: cfg, log: log}
}

// Clip applies, in order: the per-order quantity cap (clips), the
// per-instrument position cap (rejects), and the projected net-delta cap
// (scales down, or vetoes when the book is already breached and the order
// would make it worse). posQty is the current signed position in the order's
// instrument, netDelta the book's aggregate delta, unitDelta the delta
// contribution of one unit of the instrument (1 for the underlying,
// delta x multiplier for options). Returns nil on veto.
func (g *Governor) Clip(o *types.Order, ins instrument.Instrument, posQty, netDelta, unitDelta float64) *types.Order {
	if o == nil || o.Qty == 0 {
		return nil
	}
	out := *o

	perOrder := g.cfg.Risk.SharesOrderLimit
	if ins.Kind.IsOption() {
		perOrder = g.cfg.Trade.QtyPerTrade
	}
	if math.Abs(out.Qty) > perOrder {
		clipped := math.Copysign(perOrder, out.Qty)
		g.log.Warn("risk: order clipped to per-order cap",
			zap.String("ticker", out.Ticker),
			zap.Float64("requested", out.Qty),
			zap.Float64("clipped", clipped),
		)
		imetrics.RiskClips.Inc()
		out.Qty = clipped
	}

	if ins.Kind.IsOption() && math.Abs(posQty+out.Qty) > g.cfg.Risk.MaxOptionPosition {
		g.log.Warn("risk: order rejected, position cap",
			zap.String("ticker", out.Ticker),
			zap.Float64("qty", out.Qty),
			zap.Float64("position", posQty),
			zap.Float64("cap", g.cfg.Risk.MaxOptionPosition),
		)
		imetrics.RiskVetoes.Inc()
		return nil
	}

	limit := g.cfg.Risk.NetDeltaLimit
	projected := netDelta + unitDelta*out.Qty
	if math.Abs(projected) > limit && math.Abs(projected) > math.Abs(netDelta) {
		if math.Abs(netDelta) > limit {
			// The book is breached and this order worsens it. Nothing we can
			// scale to helps; flag for out-of-band intervention.
			g.log.Error("risk: order vetoed, net delta already breached",
				zap.String("ticker", out.Ticker),
				zap.Float64("net_delta", netDelta),
				zap.Float64("limit", limit),
			)
			imetrics.RiskVetoes.Inc()
			return nil
		}
		if unitDelta == 0 {
			return &out
		}
		bound := math.Copysign(limit, unitDelta*out.Qty)
		allowed := math.Trunc((bound - netDelta) / unitDelta)
		if allowed == 0 || (allowed > 0) != (out.Qty > 0) {
			g.log.Warn("risk: order vetoed, no quantity fits delta limit",
				zap.String("ticker", out.Ticker),
				zap.Float64("qty", out.Qty),
				zap.Float64("net_delta", netDelta),
			)
			imetrics.RiskVetoes.Inc()
			return nil
		}
		g.log.Warn("risk: order scaled to delta limit",
			zap.String("ticker", out.Ticker),
			zap.Float64("requested", out.Qty),
			zap.Float64("allowed", allowed),
			zap.Float64("net_delta", netDelta),
		)
		imetrics.RiskClips.Inc()
		out.Qty = allowed
	}

	return &out
}
