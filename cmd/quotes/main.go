package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/config"
	"github.com/karanshah0206/options-volatility-trading-bot/internal/connectors/rit"
)

// One-shot diagnostic: dump the case state and the securities table so the
// API endpoint, key, and instrument universe can be checked before a session.
func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	client := rit.NewClient(cfg, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cs, err := client.Case(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "case: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("tick=%d period=%d status=%s\n\n", cs.Tick, cs.Period, cs.Status)

	secs, err := client.Securities(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "securities: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tTYPE\tBID\tASK\tLAST\tPOSITION\tVWAP")
	for _, s := range secs {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.0f\t%.2f\n",
			s.Ticker, s.Type, s.Bid, s.Ask, s.Last, s.Position, s.VWAP)
	}
	w.Flush()
}
