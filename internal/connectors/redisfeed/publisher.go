package redisfeed

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Publisher pushes one stream entry per tick with the engine's instrument
// rows. Telemetry fan-out only: the stream is never read back for recovery.
type Publisher struct {
	rdb    *redis.Client
	stream string
}

func NewPublisher(cfg *config.Config) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Publisher{rdb: rdb, stream: cfg.Redis.Stream}
}

func (p *Publisher) PublishRows(ctx context.Context, tick int, rows []types.InstrumentRow) error {
	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 2048,
		Approx: true,
		Values: map[string]interface{}{
			"tick": strconv.Itoa(tick),
			"rows": string(payload),
		},
	}).Err()
}

func (p *Publisher) Close() error { return p.rdb.Close() }
