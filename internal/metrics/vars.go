package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	UnderlyingMid = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vol_underlying_mid",
		Help: "Underlying mid price",
	})

	RealizedVol = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vol_realized_annualized",
		Help: "Current realized-volatility estimate (annualized, decimal)",
	})

	ObservedVol = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vol_observed_annualized",
		Help: "Sample volatility of observed tick returns (annualized, decimal)",
	})

	NetDelta = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vol_net_delta",
		Help: "Aggregate portfolio delta after the last tick pass",
	})

	OrdersSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_orders_submitted_total",
		Help: "Orders handed to the exchange",
	})

	OrderErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_order_errors_total",
		Help: "Order submissions that failed",
	})

	RiskClips = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_risk_clips_total",
		Help: "Orders reduced by the risk governor",
	})

	RiskVetoes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_risk_vetoes_total",
		Help: "Orders rejected outright by the risk governor",
	})

	ParseMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_news_parse_misses_total",
		Help: "News items that matched no volatility pattern",
	})

	PricingErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_pricing_errors_total",
		Help: "Per-instrument pricing failures (instrument skipped for the tick)",
	})

	SnapshotsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vol_snapshots_dropped_total",
		Help: "Ticks skipped because the engine was still busy",
	})

	TickLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "vol_tick_pass_seconds",
		Help:    "Time to run one full decision pass",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(
		UnderlyingMid,
		RealizedVol,
		ObservedVol,
		NetDelta,
		OrdersSubmitted,
		OrderErrors,
		RiskClips,
		RiskVetoes,
		ParseMisses,
		PricingErrors,
		SnapshotsDropped,
		TickLatency,
	)
}
