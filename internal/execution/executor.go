package execution

import (
	"context"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	imetrics "github.com/karanshah0206/options-volatility-trading-bot/internal/metrics"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

type submitter interface {
	PlaceOrder(ctx context.Context, ticker string, qty float64) error
}

// Executor drains risk-approved orders and hands them to the exchange. A
// failed submission is logged and dropped: the next tick's snapshot shows
// whatever actually filled, so there is no retry bookkeeping.
type Executor struct {
	cfg *config.Config
	sub submitter
	log *zap.Logger
}

func NewExecutor(cfg *config.Config, sub submitter, log *zap.Logger) *Executor {
	return &Executor{cfg: cfg, sub: sub, log: log}
}

func (e *Executor) Run(ctx context.Context, in <-chan types.Order) {
	for {
		select {
		case <-ctx.Done():
			return
		case o, ok := <-in:
			if !ok {
				return
			}
			if err := e.sub.PlaceOrder(ctx, o.Ticker, o.Qty); err != nil {
				imetrics.OrderErrors.Inc()
				e.log.Warn("execution: order failed",
					zap.String("ticker", o.Ticker),
					zap.Float64("qty", o.Qty),
					zap.String("reason", o.Reason),
					zap.Error(err),
				)
				continue
			}
			imetrics.OrdersSubmitted.Inc()
			e.log.Info("execution: order submitted",
				zap.String("ticker", o.Ticker),
				zap.Float64("qty", o.Qty),
				zap.String("type", string(o.Type)),
				zap.String("reason", o.Reason),
			)
		}
	}
}
