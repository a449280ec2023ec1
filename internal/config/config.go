package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type APICfg struct {
	BaseURL string `yaml:"base_url"`
	Key     string `yaml:"key"`
}

type InstrumentsCfg struct {
	Underlying        string    `yaml:"underlying"`
	Strikes           []float64 `yaml:"strikes"`
	SharesPerContract float64   `yaml:"shares_per_contract"`
}

type TradeCfg struct {
	QtyPerTrade float64 `yaml:"qty_per_trade"`
	// OpenThreshold and CloseThreshold are absolute price differences (theo - mid),
	// not percentages of premium. The same gap triggers on a cheap wing and an
	// expensive near-the-money leg alike.
	OpenThreshold    float64 `yaml:"open_threshold"`
	CloseThreshold   float64 `yaml:"close_threshold"`
	ProfitTargetFrac float64 `yaml:"profit_target_frac"`
	RiskFreeRate     float64 `yaml:"risk_free_rate"`
	MarketFee        float64 `yaml:"market_fee"`
}

type RiskCfg struct {
	NetDeltaLimit     float64 `yaml:"net_delta_limit"`
	SharesOrderLimit  float64 `yaml:"shares_order_limit"`
	MaxOptionPosition float64 `yaml:"max_option_position"`
}

type SessionCfg struct {
	MaxTicks     int     `yaml:"max_ticks"`
	TicksPerYear float64 `yaml:"ticks_per_year"`
	PollMs       int     `yaml:"poll_ms"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
}

type Config struct {
	DryRun bool `yaml:"dry_run"`

	API         APICfg         `yaml:"api"`
	Instruments InstrumentsCfg `yaml:"instruments"`
	Trade       TradeCfg       `yaml:"trade"`
	Risk        RiskCfg        `yaml:"risk"`
	Session     SessionCfg     `yaml:"session"`
	Redis       RedisCfg       `yaml:"redis"`

	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`

	Dash struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"dash"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if len(c.Instruments.Strikes) == 0 {
		return nil, fmt.Errorf("config: instruments.strikes is empty")
	}
	return &c, nil
}

// ApplyDefaults fills zero values with the venue's standard strategy constants.
func (c *Config) ApplyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:9999/v1"
	}
	if c.Instruments.Underlying == "" {
		c.Instruments.Underlying = "RTM"
	}
	if c.Instruments.SharesPerContract == 0 {
		c.Instruments.SharesPerContract = 100
	}
	if c.Trade.QtyPerTrade == 0 {
		c.Trade.QtyPerTrade = 90
	}
	if c.Trade.OpenThreshold == 0 {
		c.Trade.OpenThreshold = 0.04
	}
	if c.Trade.CloseThreshold == 0 {
		c.Trade.CloseThreshold = 0.01
	}
	if c.Trade.ProfitTargetFrac == 0 {
		c.Trade.ProfitTargetFrac = 0.8
	}
	if c.Trade.MarketFee == 0 {
		c.Trade.MarketFee = 0.02
	}
	if c.Risk.NetDeltaLimit == 0 {
		c.Risk.NetDeltaLimit = 5000
	}
	if c.Risk.SharesOrderLimit == 0 {
		c.Risk.SharesOrderLimit = 10000
	}
	if c.Risk.MaxOptionPosition == 0 {
		c.Risk.MaxOptionPosition = 270
	}
	if c.Session.MaxTicks == 0 {
		c.Session.MaxTicks = 300
	}
	if c.Session.TicksPerYear == 0 {
		c.Session.TicksPerYear = 3600
	}
	if c.Session.PollMs == 0 {
		c.Session.PollMs = 400
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "vol:stream"
	}
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Session.PollMs) * time.Millisecond
}

// TimeToExpiry converts the session tick into remaining option lifetime in years.
func (c *Config) TimeToExpiry(tick int) float64 {
	t := float64(c.Session.MaxTicks-tick) / c.Session.TicksPerYear
	if t < 0 {
		return 0
	}
	return t
}
