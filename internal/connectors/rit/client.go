package rit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
)

// Client talks to the simulated exchange's REST API. Authentication is a
// static X-API-Key header on every request.
type Client struct {
	cfg  *config.Config
	log  *zap.Logger
	http *http.Client
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	return &Client{cfg: cfg, log: log, http: &http.Client{Timeout: 6 * time.Second}}
}

type CaseStatus struct {
	Tick   int    `json:"tick"`
	Period int    `json:"period"`
	Status string `json:"status"`
}

func (cs CaseStatus) Active() bool { return cs.Status == "ACTIVE" }

type Security struct {
	Ticker   string  `json:"ticker"`
	Type     string  `json:"type"`
	Last     float64 `json:"last"`
	Bid      float64 `json:"bid"`
	Ask      float64 `json:"ask"`
	Position float64 `json:"position"`
	VWAP     float64 `json:"vwap"`
}

type NewsItem struct {
	ID       int    `json:"news_id"`
	Tick     int    `json:"tick"`
	Headline string `json:"headline"`
	Body     string `json:"body"`
}

func (c *Client) Case(ctx context.Context) (CaseStatus, error) {
	var cs CaseStatus
	if err := c.get(ctx, "/case", nil, &cs); err != nil {
		return CaseStatus{}, fmt.Errorf("case: %w", err)
	}
	return cs, nil
}

func (c *Client) Securities(ctx context.Context) ([]Security, error) {
	var secs []Security
	if err := c.get(ctx, "/securities", nil, &secs); err != nil {
		return nil, fmt.Errorf("securities: %w", err)
	}
	return secs, nil
}

// News returns items newer than sinceID, oldest first. The venue serves
// newest-first; the order is flipped so announcements apply in sequence.
func (c *Client) News(ctx context.Context, sinceID int) ([]NewsItem, error) {
	var items []NewsItem
	q := url.Values{}
	if sinceID > 0 {
		q.Set("since", strconv.Itoa(sinceID))
	}
	if err := c.get(ctx, "/news", q, &items); err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}
	out := make([]NewsItem, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].ID > sinceID {
			out = append(out, items[i])
		}
	}
	return out, nil
}

// PlaceOrder submits a market order; the sign of qty picks the action.
func (c *Client) PlaceOrder(ctx context.Context, ticker string, qty float64) error {
	if qty == 0 {
		return nil
	}
	action := "BUY"
	if qty < 0 {
		action = "SELL"
		qty = -qty
	}
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("type", "MARKET")
	q.Set("quantity", strconv.FormatFloat(qty, 'f', -1, 64))
	q.Set("action", action)

	endpoint := c.cfg.API.BaseURL + "/orders?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.cfg.API.Key)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("orders: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("orders %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// Trader returns the account's net liquidation value.
func (c *Client) Trader(ctx context.Context) (float64, error) {
	var t struct {
		NLV float64 `json:"nlv"`
	}
	if err := c.get(ctx, "/trader", nil, &t); err != nil {
		return 0, fmt.Errorf("trader: %w", err)
	}
	return t.NLV, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	endpoint := c.cfg.API.BaseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", c.cfg.API.Key)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %d: %s", path, resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
