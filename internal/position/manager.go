package position

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/instrument"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

type State string

const (
	Flat      State = "FLAT"
	Opening   State = "OPENING"
	Held      State = "HELD"
	Scaling   State = "SCALING"
	Unwinding State = "UNWINDING"
)

// book is the in-memory record for one option instrument. Quantities are
// never tracked here: the snapshot is authoritative and fills are observed,
// not assumed.
type book struct {
	state    State
	dir      types.Direction
	entryMid float64
	entryMag float64 // |magnitude| when the position was opened or last scaled
	lastQty  float64 // position observed when the last add was issued
}

// Manager runs the per-instrument position state machine:
// FLAT -> OPENING -> HELD -> SCALING -> UNWINDING -> FLAT.
//
// Transitions between OPENING/SCALING/UNWINDING and their settled states are
// driven by observed fills (the snapshot's position quantity), never by
// order issuance, so a risk veto leaves the recorded state untouched.
type Manager struct {
	cfg   *config.Config
	log   *zap.Logger
	books map[string]*book
}

func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	return &Manager{cfg: cfg, log: log, books: make(map[string]*book, 16)}
}

func (m *Manager) State(ticker string) State {
	if b, ok := m.books[ticker]; ok {
		return b.state
	}
	return Flat
}

// Step advances one instrument by one tick. qty is the authoritative signed
// position from the snapshot, sig the fresh mispricing signal, mid the
// current market mid. The returned order, if any, still has to pass the risk
// governor before submission.
func (m *Manager) Step(ins instrument.Instrument, qty float64, sig types.Signal, mid float64) *types.Order {
	b, ok := m.books[ins.Ticker]
	if !ok {
		b = &book{state: Flat}
		m.books[ins.Ticker] = b
	}

	m.reconcile(ins.Ticker, b, qty, sig)

	switch b.state {
	case Flat:
		if sig.Direction == types.None {
			return nil
		}
		b.state = Opening
		b.dir = sig.Direction
		b.entryMid = mid
		b.entryMag = math.Abs(sig.Magnitude)
		m.log.Info("position: opening",
			zap.String("ticker", ins.Ticker),
			zap.String("direction", string(sig.Direction)),
			zap.Float64("mid", mid),
			zap.Float64("edge", sig.Magnitude),
		)
		return m.order(ins.Ticker, dirSign(b.dir)*m.cfg.Trade.QtyPerTrade, "open")

	case Opening:
		// No fill yet. Re-derive the open order while the edge persists;
		// a vetoed or lost order is simply issued again.
		if sig.Direction == b.dir {
			return m.order(ins.Ticker, dirSign(b.dir)*m.cfg.Trade.QtyPerTrade, "open")
		}
		return nil

	case Held, Scaling:
		if reason, exit := m.shouldExit(b, sig, mid); exit {
			b.state = Unwinding
			m.log.Info("position: unwinding",
				zap.String("ticker", ins.Ticker),
				zap.String("why", reason),
				zap.Float64("qty", qty),
				zap.Float64("edge", sig.Magnitude),
			)
			return m.order(ins.Ticker, -qty, reason)
		}
		if b.state == Held {
			if add := m.scaleQty(b, sig, qty); add != 0 {
				b.state = Scaling
				b.lastQty = qty
				b.entryMag = math.Abs(sig.Magnitude)
				m.log.Info("position: scaling",
					zap.String("ticker", ins.Ticker),
					zap.Float64("add", add),
					zap.Float64("edge", sig.Magnitude),
				)
				return m.order(ins.Ticker, add, "scale")
			}
		}
		return nil

	case Unwinding:
		// Partial fills: keep flattening whatever remains.
		return m.order(ins.Ticker, -qty, "unwind")
	}
	return nil
}

// reconcile folds the observed fill state into the state machine before any
// new decision is made.
func (m *Manager) reconcile(ticker string, b *book, qty float64, sig types.Signal) {
	switch b.state {
	case Opening:
		if qty != 0 {
			b.state = Held
			b.lastQty = qty
			m.log.Debug("position: fill observed, held", zap.String("ticker", ticker), zap.Float64("qty", qty))
		} else if sig.Direction != b.dir {
			// Edge gone before any fill arrived; nothing to manage.
			*b = book{state: Flat}
		}
	case Scaling:
		if math.Abs(qty) > math.Abs(b.lastQty) {
			b.state = Held
			b.lastQty = qty
		}
	case Held:
		if qty == 0 {
			*b = book{state: Flat}
		}
	case Unwinding:
		if qty == 0 {
			*b = book{state: Flat}
			m.log.Debug("position: flat", zap.String("ticker", ticker))
		}
	}
}

// shouldExit applies the close rules: signal reversal, convergence below the
// close threshold, or profit target (a configured fraction of the entry edge
// captured by the market).
func (m *Manager) shouldExit(b *book, sig types.Signal, mid float64) (string, bool) {
	if sig.Direction != types.None && sig.Direction != b.dir {
		return "reversal", true
	}
	if math.Abs(sig.Magnitude) < m.cfg.Trade.CloseThreshold {
		return "converged", true
	}
	captured := mid - b.entryMid
	if b.dir == types.Short {
		captured = b.entryMid - mid
	}
	if b.entryMag > 0 && captured >= m.cfg.Trade.ProfitTargetFrac*b.entryMag {
		return "target", true
	}
	return "", false
}

// scaleQty sizes an add when the edge has widened since entry, leaving the
// per-instrument cap to bound total exposure.
func (m *Manager) scaleQty(b *book, sig types.Signal, qty float64) float64 {
	if sig.Direction != b.dir {
		return 0
	}
	if math.Abs(sig.Magnitude) <= b.entryMag {
		return 0
	}
	room := m.cfg.Risk.MaxOptionPosition - math.Abs(qty)
	if room <= 0 {
		return 0
	}
	add := math.Min(m.cfg.Trade.QtyPerTrade, room)
	return dirSign(b.dir) * add
}

func (m *Manager) order(ticker string, qty float64, reason string) *types.Order {
	if qty == 0 {
		return nil
	}
	return &types.Order{
		Ticker: ticker,
		Qty:    qty,
		Type:   types.Market,
		Reason: reason,
		Ts:     time.Now(),
	}
}

func dirSign(d types.Direction) float64 {
	if d == types.Short {
		return -1
	}
	return 1
}
