package marketdata

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/connectors/rit"
)

type fakeExchange struct {
	mu   sync.Mutex
	cs   rit.CaseStatus
	secs []rit.Security
	news []rit.NewsItem
}

func (f *fakeExchange) Case(context.Context) (rit.CaseStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cs, nil
}

func (f *fakeExchange) Securities(context.Context) ([]rit.Security, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secs, nil
}

func (f *fakeExchange) News(_ context.Context, sinceID int) ([]rit.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []rit.NewsItem
	for _, n := range f.news {
		if n.ID > sinceID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeExchange) setTick(tick int, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cs = rit.CaseStatus{Tick: tick, Status: status}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Instruments.Strikes = []float64{50}
	cfg.ApplyDefaults()
	cfg.Session.PollMs = 10
	return cfg
}

func TestQuoteMid(t *testing.T) {
	assert.Equal(t, 50.0, Quote{Bid: 49.99, Ask: 50.01, Last: 48}.Mid())
	assert.Equal(t, 48.0, Quote{Last: 48}.Mid())
	assert.Equal(t, 48.0, Quote{Bid: 49.99, Last: 48}.Mid())
}

func TestRun_EmitsOneSnapshotPerTick(t *testing.T) {
	ex := &fakeExchange{
		secs: []rit.Security{
			{Ticker: "RTM", Last: 50, Bid: 49.99, Ask: 50.01, Position: 300, VWAP: 49.5},
			{Ticker: "RTM50C", Last: 1.1, Bid: 1.05, Ask: 1.15},
		},
		news: []rit.NewsItem{{ID: 1, Headline: "vol"}},
	}
	ex.setTick(5, "ACTIVE")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Snapshot, 16)
	go Run(ctx, testConfig(), ex, out, zap.NewNop())

	snap := recv(t, out)
	assert.Equal(t, 5, snap.Tick)
	assert.True(t, snap.Active)
	assert.Equal(t, 49.99, snap.Quotes["RTM"].Bid)
	assert.Equal(t, 300.0, snap.Positions["RTM"])
	require.Len(t, snap.News, 1)

	// Same tick again: nothing new is emitted.
	select {
	case s := <-out:
		t.Fatalf("unexpected snapshot for repeated tick: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}

	ex.setTick(6, "ACTIVE")
	snap = recv(t, out)
	assert.Equal(t, 6, snap.Tick)
	// News id 1 was already consumed.
	assert.Empty(t, snap.News)
}

func TestRun_ClosesWhenSessionEnds(t *testing.T) {
	ex := &fakeExchange{secs: []rit.Security{{Ticker: "RTM", Last: 50}}}
	ex.setTick(10, "ACTIVE")

	out := make(chan Snapshot, 16)
	done := make(chan struct{})
	go func() {
		Run(context.Background(), testConfig(), ex, out, zap.NewNop())
		close(done)
	}()

	recv(t, out)
	ex.setTick(11, "STOPPED")

	snap := recv(t, out)
	assert.False(t, snap.Active)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not return after session end")
	}
	_, open := <-out
	assert.False(t, open)
}

func TestRun_IgnoresInactiveBeforeStart(t *testing.T) {
	ex := &fakeExchange{secs: []rit.Security{{Ticker: "RTM", Last: 50}}}
	ex.setTick(0, "STOPPED")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Snapshot, 16)
	go Run(ctx, testConfig(), ex, out, zap.NewNop())

	select {
	case s := <-out:
		t.Fatalf("unexpected snapshot before session start: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}

	ex.setTick(1, "ACTIVE")
	snap := recv(t, out)
	assert.Equal(t, 1, snap.Tick)
	assert.True(t, snap.Active)
}

func TestRun_StopsAtTickCap(t *testing.T) {
	cfg := testConfig()
	cfg.Session.MaxTicks = 20

	ex := &fakeExchange{secs: []rit.Security{{Ticker: "RTM", Last: 50}}}
	ex.setTick(20, "ACTIVE")

	out := make(chan Snapshot, 16)
	done := make(chan struct{})
	go func() {
		Run(context.Background(), cfg, ex, out, zap.NewNop())
		close(done)
	}()

	snap := recv(t, out)
	assert.Equal(t, 20, snap.Tick)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop at the tick cap")
	}
}

func TestRun_CancelStops(t *testing.T) {
	ex := &fakeExchange{secs: []rit.Security{{Ticker: "RTM", Last: 50}}}
	ex.setTick(3, "ACTIVE")

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Snapshot, 16)
	done := make(chan struct{})
	go func() {
		Run(ctx, testConfig(), ex, out, zap.NewNop())
		close(done)
	}()

	recv(t, out)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop on cancel")
	}
}

func recv(t *testing.T, out <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s := <-out:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return Snapshot{}
	}
}
