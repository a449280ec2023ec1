package rit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.API.BaseURL = srv.URL
	cfg.API.Key = "secret-key"
	return NewClient(cfg, zap.NewNop())
}

func TestCase(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/case", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-Key"))
		w.Write([]byte(`{"tick": 42, "period": 1, "status": "ACTIVE"}`))
	})

	cs, err := c.Case(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, cs.Tick)
	assert.True(t, cs.Active())
}

func TestCase_Inactive(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tick": 0, "period": 1, "status": "STOPPED"}`))
	})

	cs, err := c.Case(context.Background())
	require.NoError(t, err)
	assert.False(t, cs.Active())
}

func TestSecurities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/securities", r.URL.Path)
		w.Write([]byte(`[
			{"ticker": "RTM", "type": "STOCK", "last": 50.02, "bid": 49.99, "ask": 50.05, "position": 300, "vwap": 49.5},
			{"ticker": "RTM50C", "type": "OPTION", "last": 1.1, "bid": 1.05, "ask": 1.15, "position": -90, "vwap": 1.2}
		]`))
	})

	secs, err := c.Securities(context.Background())
	require.NoError(t, err)
	require.Len(t, secs, 2)
	assert.Equal(t, "RTM", secs[0].Ticker)
	assert.Equal(t, 49.99, secs[0].Bid)
	assert.Equal(t, 300.0, secs[0].Position)
	assert.Equal(t, -90.0, secs[1].Position)
}

func TestNews_FlipsToOldestFirstAndFilters(t *testing.T) {
	// The venue serves newest first.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("since"))
		w.Write([]byte(`[
			{"news_id": 5, "tick": 50, "headline": "five", "body": ""},
			{"news_id": 4, "tick": 40, "headline": "four", "body": ""},
			{"news_id": 2, "tick": 20, "headline": "two", "body": ""}
		]`))
	})

	items, err := c.News(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 4, items[0].ID)
	assert.Equal(t, 5, items[1].ID)
}

func TestPlaceOrder_SellNegatesQuantity(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.PlaceOrder(context.Background(), "RTM", -7000))
	require.NotNil(t, got)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/orders", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "RTM", q.Get("ticker"))
	assert.Equal(t, "MARKET", q.Get("type"))
	assert.Equal(t, "SELL", q.Get("action"))
	assert.Equal(t, "7000", q.Get("quantity"))
	assert.Equal(t, "secret-key", got.Header.Get("X-API-Key"))
}

func TestPlaceOrder_Buy(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, c.PlaceOrder(context.Background(), "RTM50C", 90))
	q := got.URL.Query()
	assert.Equal(t, "BUY", q.Get("action"))
	assert.Equal(t, "90", q.Get("quantity"))
}

func TestPlaceOrder_ZeroIsNoop(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	require.NoError(t, c.PlaceOrder(context.Background(), "RTM", 0))
	assert.False(t, called)
}

func TestPlaceOrder_HTTPErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "insufficient buying power", http.StatusBadRequest)
	})

	err := c.PlaceOrder(context.Background(), "RTM", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient buying power")
}

func TestTrader(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trader", r.URL.Path)
		w.Write([]byte(`{"trader_id": "t1", "nlv": 125034.5}`))
	})

	nlv, err := c.Trader(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 125034.5, nlv)
}
