package bot

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/connectors/redisfeed"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/connectors/rit"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/engine"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/execution"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/marketdata"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Bot manages the application's lifecycle and components.
type Bot struct {
	cfg *config.Config
	log *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Bot {
	return &Bot{cfg: cfg, log: log}
}

func (b *Bot) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		b.log.Warn("received signal, shutting down...")
		cancel()
	}()

	client := rit.NewClient(b.cfg, b.log)

	var pub engine.Publisher
	if b.cfg.Redis.Addr != "" {
		p := redisfeed.NewPublisher(b.cfg)
		defer p.Close()
		pub = p
	}

	eng := engine.New(b.cfg, b.log, pub)

	snapCh := make(chan marketdata.Snapshot, 1)
	ordCh := make(chan types.Order, 64)

	go marketdata.Run(ctx, b.cfg, client, snapCh, b.log)

	engDone := make(chan struct{})
	go func() {
		eng.Run(ctx, snapCh, ordCh)
		close(engDone)
	}()

	if b.cfg.DryRun {
		b.log.Warn("DRY-RUN: no real orders will be sent")
		go func() {
			for o := range ordCh {
				b.log.Info("order (dry)",
					zap.String("ticker", o.Ticker),
					zap.Float64("qty", o.Qty),
					zap.String("type", string(o.Type)),
					zap.String("reason", o.Reason),
					zap.Time("ts", o.Ts),
				)
			}
		}()
	} else {
		exec := execution.NewExecutor(b.cfg, client, b.log)
		go exec.Run(ctx, ordCh)
	}

	b.log.Info("vol-bot started",
		zap.String("underlying", b.cfg.Instruments.Underlying),
		zap.Int("options", len(eng.Chain().Options)),
		zap.Bool("dry_run", b.cfg.DryRun),
	)

	select {
	case <-ctx.Done():
	case <-engDone:
	}

	// Best-effort session result before exit.
	nlvCtx, nlvCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer nlvCancel()
	if nlv, err := client.Trader(nlvCtx); err == nil {
		b.log.Info("session finished", zap.Float64("nlv", nlv))
	} else {
		b.log.Info("session finished")
	}
}

func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	return cfg.Build()
}
