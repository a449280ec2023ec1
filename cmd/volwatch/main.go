package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/connectors/redisfeed"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/dash"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// volwatch serves the instrument monitor page, fed by the engine's Redis
// telemetry stream. It runs as a separate process so the trading loop never
// carries UI load.
func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	addr := flag.String("addr", "", "dashboard listen address (overrides config)")
	group := flag.String("group", "feed", "redis stream consumer group")
	name := flag.String("name", "volwatch", "redis stream consumer name")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	if cfg.Redis.Addr == "" {
		fmt.Println("[volwatch] redis.addr not configured; nothing to watch")
		return
	}
	listen := cfg.Dash.ListenAddr
	if *addr != "" {
		listen = *addr
	}
	if listen == "" {
		listen = ":8088"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		fmt.Println("[volwatch] signal received, exiting...")
		cancel()
	}()

	store := dash.NewStore()
	consumer := redisfeed.NewConsumer(cfg)

	rowCh := make(chan []types.InstrumentRow, 64)
	go func() {
		if err := consumer.StreamConsumeRows(ctx, *group, *name, rowCh); err != nil && ctx.Err() == nil {
			fmt.Printf("[volwatch] stream consume stopped: %v\n", err)
		}
	}()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case rows := <-rowCh:
				store.Update(rows)
			}
		}
	}()

	dash.StartHTTP(ctx, store, listen)
}
