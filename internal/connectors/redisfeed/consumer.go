package redisfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Consumer reads engine telemetry from the Redis stream for the dashboard
// process.
type Consumer struct {
	rdb    *redis.Client
	stream string
}

func NewConsumer(cfg *config.Config) *Consumer {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	return &Consumer{rdb: rdb, stream: cfg.Redis.Stream}
}

// StreamConsumeRows blocks reading tick entries and forwards the decoded
// rows. Create the group once: XGROUP CREATE vol:stream feed $ MKSTREAM.
func (c *Consumer) StreamConsumeRows(ctx context.Context, group, consumer string, out chan<- []types.InstrumentRow) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{c.stream, ">"},
			Count:    64,
			Block:    time.Second,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			time.Sleep(200 * time.Millisecond)
			continue
		}
		for _, s := range streams {
			for _, m := range s.Messages {
				if raw, ok := m.Values["rows"].(string); ok {
					var rows []types.InstrumentRow
					if json.Unmarshal([]byte(raw), &rows) == nil && len(rows) > 0 {
						select {
						case out <- rows:
						case <-ctx.Done():
							return ctx.Err()
						}
					}
				}
				_ = c.rdb.XAck(ctx, c.stream, group, m.ID).Err()
			}
		}
	}
}
