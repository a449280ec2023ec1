package marketdata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/connectors/rit"
	imetrics "github.com/karanshah0206/options-volatility-trading-bot/internal/metrics"
)

type Quote struct {
	Bid, Ask, Last, VWAP float64
}

// Mid prefers the top-of-book midpoint, falling back to the last trade when
// one side of the book is empty.
func (q Quote) Mid() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return 0.5 * (q.Bid + q.Ask)
	}
	return q.Last
}

// Snapshot is one tick's authoritative view of the market: quotes and signed
// positions keyed by ticker, plus unapplied news. Replaced wholesale each
// tick; the engine keeps no quote history.
type Snapshot struct {
	Tick      int
	Active    bool
	Quotes    map[string]Quote
	Positions map[string]float64
	News      []rit.NewsItem
	Ts        time.Time
}

type exchange interface {
	Case(ctx context.Context) (rit.CaseStatus, error)
	Securities(ctx context.Context) ([]rit.Security, error)
	News(ctx context.Context, sinceID int) ([]rit.NewsItem, error)
}

// Run polls the exchange and emits exactly one Snapshot per new tick while
// the session is ACTIVE. A fetch failure is "no data this tick": the poll
// continues and the engine sees nothing. Run closes out and returns when the
// session ends, so the consumer can finish cleanly.
func Run(ctx context.Context, cfg *config.Config, ex exchange, out chan<- Snapshot, log *zap.Logger) {
	defer close(out)

	t := time.NewTicker(cfg.PollInterval())
	defer t.Stop()

	lastTick := -1
	lastNewsID := 0
	wasActive := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			cs, err := ex.Case(ctx)
			if err != nil {
				log.Warn("marketdata: case fetch failed", zap.Error(err))
				continue
			}
			if !cs.Active() {
				if wasActive {
					log.Info("marketdata: session no longer active", zap.Int("tick", cs.Tick))
					send(out, Snapshot{Tick: cs.Tick, Active: false, Ts: time.Now()}, log)
					return
				}
				// Waiting for the session to start.
				continue
			}
			wasActive = true
			if cs.Tick == lastTick {
				continue
			}

			secs, err := ex.Securities(ctx)
			if err != nil {
				log.Warn("marketdata: securities fetch failed", zap.Error(err))
				continue
			}
			news, err := ex.News(ctx, lastNewsID)
			if err != nil {
				// Quotes are still usable without news.
				log.Warn("marketdata: news fetch failed", zap.Error(err))
				news = nil
			}
			for _, n := range news {
				if n.ID > lastNewsID {
					lastNewsID = n.ID
				}
			}

			snap := Snapshot{
				Tick:      cs.Tick,
				Active:    true,
				Quotes:    make(map[string]Quote, len(secs)),
				Positions: make(map[string]float64, len(secs)),
				News:      news,
				Ts:        time.Now(),
			}
			for _, s := range secs {
				snap.Quotes[s.Ticker] = Quote{Bid: s.Bid, Ask: s.Ask, Last: s.Last, VWAP: s.VWAP}
				snap.Positions[s.Ticker] = s.Position
			}

			lastTick = cs.Tick
			send(out, snap, log)

			if cs.Tick >= cfg.Session.MaxTicks {
				log.Info("marketdata: session tick cap reached", zap.Int("tick", cs.Tick))
				return
			}
		}
	}
}

// send never blocks: if the engine is still working on the previous tick the
// snapshot is dropped and the state is re-derived from the next one.
func send(out chan<- Snapshot, snap Snapshot, log *zap.Logger) {
	select {
	case out <- snap:
	default:
		log.Warn("marketdata: snapshot channel full; dropping", zap.Int("tick", snap.Tick))
		imetrics.SnapshotsDropped.Inc()
	}
}
