package instrument

import (
	"sort"
	"strconv"
)

type Kind int

const (
	Underlying Kind = iota
	Call
	Put
)

func (k Kind) String() string {
	switch k {
	case Call:
		return "CALL"
	case Put:
		return "PUT"
	default:
		return "UNDERLYING"
	}
}

func (k Kind) IsOption() bool { return k == Call || k == Put }

// Instrument is immutable once defined.
type Instrument struct {
	Ticker     string
	Kind       Kind
	Strike     float64 // options only
	Multiplier float64 // shares per contract; 1 for the underlying
}

// Chain holds the underlying and its listed options for the session.
type Chain struct {
	Underlying Instrument
	Options    []Instrument

	byTicker map[string]Instrument
}

// BuildChain lists a call and a put per strike, tickers formed the venue's
// way: <underlying><strike>C / <underlying><strike>P.
func BuildChain(underlying string, strikes []float64, sharesPerContract float64) *Chain {
	c := &Chain{
		Underlying: Instrument{Ticker: underlying, Kind: Underlying, Multiplier: 1},
		byTicker:   make(map[string]Instrument, 2*len(strikes)+1),
	}
	sorted := append([]float64(nil), strikes...)
	sort.Float64s(sorted)
	for _, k := range sorted {
		ks := strconv.FormatFloat(k, 'f', -1, 64)
		call := Instrument{Ticker: underlying + ks + "C", Kind: Call, Strike: k, Multiplier: sharesPerContract}
		put := Instrument{Ticker: underlying + ks + "P", Kind: Put, Strike: k, Multiplier: sharesPerContract}
		c.Options = append(c.Options, call, put)
	}
	c.byTicker[c.Underlying.Ticker] = c.Underlying
	for _, o := range c.Options {
		c.byTicker[o.Ticker] = o
	}
	return c
}

func (c *Chain) Lookup(ticker string) (Instrument, bool) {
	ins, ok := c.byTicker[ticker]
	return ins, ok
}
