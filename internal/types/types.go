package types

import "time"

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
	None  Direction = "NONE"
)

// Signal is the per-instrument mispricing verdict for one tick.
// Magnitude is theoretical value minus market mid: positive means the
// option trades below fair value.
type Signal struct {
	Direction Direction
	Magnitude float64
}

type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
)

// Order is an ephemeral instruction for the order-submission adapter.
// Qty is signed: positive buys, negative sells.
type Order struct {
	Ticker string
	Qty    float64
	Type   OrderType
	Price  float64 // limit orders only
	Reason string
	Ts     time.Time
}

// Theoretical is the fair value and delta of one option, computed fresh
// every tick. Never cached across ticks.
type Theoretical struct {
	Ticker string
	Value  float64
	Delta  float64
}

// InstrumentRow is one dashboard/telemetry line: everything the engine
// knew about an instrument when it finished a tick pass.
type InstrumentRow struct {
	Ticker    string  `json:"ticker"`
	State     string  `json:"state"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Mid       float64 `json:"mid"`
	Theo      float64 `json:"theo"`
	Delta     float64 `json:"delta"`
	Magnitude float64 `json:"magnitude"`
	Position  float64 `json:"position"`
	Tick      int     `json:"tick"`
	TsMs      int64   `json:"ts"`
}
