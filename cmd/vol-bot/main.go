package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/bot"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/metrics"
)

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	dryRun := flag.Bool("dry-run", false, "log orders instead of submitting them")
	flag.Parse()

	logger, err := bot.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if *dryRun {
		cfg.DryRun = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.Serve(ctx, cfg.Metrics.ListenAddr, nil, logger)

	bot.New(cfg, logger).Run(ctx)
}
