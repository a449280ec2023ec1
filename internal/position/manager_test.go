package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/instrument"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return cfg
}

func testOption() instrument.Instrument {
	return instrument.Instrument{Ticker: "RTM50C", Kind: instrument.Call, Strike: 50, Multiplier: 100}
}

func long(mag float64) types.Signal  { return types.Signal{Direction: types.Long, Magnitude: mag} }
func short(mag float64) types.Signal { return types.Signal{Direction: types.Short, Magnitude: mag} }
func none(mag float64) types.Signal  { return types.Signal{Direction: types.None, Magnitude: mag} }

func TestStep_OpensOnSignal(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	ord := m.Step(ins, 0, long(0.87), 1.50)
	require.NotNil(t, ord)
	assert.Equal(t, "RTM50C", ord.Ticker)
	assert.Equal(t, 90.0, ord.Qty)
	assert.Equal(t, types.Market, ord.Type)
	assert.Equal(t, Opening, m.State("RTM50C"))
}

func TestStep_NoSignalStaysFlat(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ord := m.Step(testOption(), 0, none(0.01), 1.50)
	assert.Nil(t, ord)
	assert.Equal(t, Flat, m.State("RTM50C"))
}

func TestStep_FillMovesToHeld(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.87), 1.50))

	ord := m.Step(ins, 90, long(0.87), 1.50)
	assert.Nil(t, ord)
	assert.Equal(t, Held, m.State("RTM50C"))
}

func TestStep_VetoedOpenKeepsStateAndReissues(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.87), 1.50))
	assert.Equal(t, Opening, m.State("RTM50C"))

	// No fill arrived (order vetoed or lost) but the edge persists:
	// the state is unchanged and the order is re-derived.
	ord := m.Step(ins, 0, long(0.85), 1.52)
	require.NotNil(t, ord)
	assert.Equal(t, 90.0, ord.Qty)
	assert.Equal(t, Opening, m.State("RTM50C"))
}

func TestStep_OpeningAbandonedWhenEdgeGone(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.87), 1.50))
	ord := m.Step(ins, 0, none(0.005), 2.36)
	assert.Nil(t, ord)
	assert.Equal(t, Flat, m.State("RTM50C"))
}

func TestStep_ScalesWhenEdgeWidens(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.50), 1.50))
	assert.Nil(t, m.Step(ins, 90, long(0.50), 1.50))

	ord := m.Step(ins, 90, long(0.80), 1.40)
	require.NotNil(t, ord)
	assert.Equal(t, 90.0, ord.Qty)
	assert.Equal(t, Scaling, m.State("RTM50C"))

	// Fill observed: back to held.
	assert.Nil(t, m.Step(ins, 180, long(0.80), 1.40))
	assert.Equal(t, Held, m.State("RTM50C"))
}

func TestStep_ScaleRespectsPositionCap(t *testing.T) {
	cfg := newTestConfig()
	cfg.Risk.MaxOptionPosition = 120
	m := NewManager(cfg, zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.50), 1.50))
	assert.Nil(t, m.Step(ins, 90, long(0.50), 1.50))

	ord := m.Step(ins, 90, long(0.90), 1.30)
	require.NotNil(t, ord)
	assert.Equal(t, 30.0, ord.Qty)

	// At the cap there is no room left.
	assert.Nil(t, m.Step(ins, 120, long(1.20), 1.10))
}

func TestStep_UnwindsOnReversal(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.50), 1.50))
	assert.Nil(t, m.Step(ins, 90, long(0.50), 1.50))

	ord := m.Step(ins, 90, short(-0.30), 2.60)
	require.NotNil(t, ord)
	assert.Equal(t, -90.0, ord.Qty)
	assert.Equal(t, Unwinding, m.State("RTM50C"))
}

func TestStep_UnwindsOnConvergence(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.50), 1.50))
	assert.Nil(t, m.Step(ins, 90, long(0.50), 1.50))

	ord := m.Step(ins, 90, none(0.004), 1.99)
	require.NotNil(t, ord)
	assert.Equal(t, -90.0, ord.Qty)
	assert.Equal(t, Unwinding, m.State("RTM50C"))
}

func TestStep_UnwindsOnProfitTarget(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	// Entry edge 0.87 at mid 1.50; default target captures 80% of it.
	require.NotNil(t, m.Step(ins, 0, long(0.87), 1.50))
	assert.Nil(t, m.Step(ins, 90, long(0.87), 1.50))

	// Mid moved to 2.25: 0.75 of the 0.696 target captured.
	ord := m.Step(ins, 90, long(0.12), 2.25)
	require.NotNil(t, ord)
	assert.Equal(t, -90.0, ord.Qty)
	assert.Equal(t, Unwinding, m.State("RTM50C"))
}

func TestStep_ShortSideProfitTarget(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, short(-0.80), 2.50))
	assert.Nil(t, m.Step(ins, -90, short(-0.80), 2.50))

	ord := m.Step(ins, -90, short(-0.10), 1.80)
	require.NotNil(t, ord)
	assert.Equal(t, 90.0, ord.Qty)
	assert.Equal(t, Unwinding, m.State("RTM50C"))
}

func TestStep_UnwindSpansTicks(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.50), 1.50))
	assert.Nil(t, m.Step(ins, 90, long(0.50), 1.50))
	require.NotNil(t, m.Step(ins, 90, none(0.002), 2.00))

	// Partial fill: 30 remain, keep flattening.
	ord := m.Step(ins, 30, none(0.002), 2.00)
	require.NotNil(t, ord)
	assert.Equal(t, -30.0, ord.Qty)
	assert.Equal(t, Unwinding, m.State("RTM50C"))

	// Fully flat.
	assert.Nil(t, m.Step(ins, 0, none(0.002), 2.00))
	assert.Equal(t, Flat, m.State("RTM50C"))
}

func TestStep_NeverFlipsSignWithinARun(t *testing.T) {
	m := NewManager(newTestConfig(), zap.NewNop())
	ins := testOption()

	require.NotNil(t, m.Step(ins, 0, long(0.50), 1.50))
	qty := 90.0
	sigs := []types.Signal{long(0.60), long(0.70), short(-0.20), none(0.001)}
	for _, sig := range sigs {
		if ord := m.Step(ins, qty, sig, 1.50); ord != nil {
			// Any order either adds in the run's direction or reduces
			// toward zero; it never takes the position through zero.
			next := qty + ord.Qty
			assert.False(t, qty > 0 && next < 0, "long run flipped short")
		}
	}
}
