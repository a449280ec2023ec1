package vol

import (
	"math"
	"regexp"
	"strconv"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	imetrics "github.com/karanshah0206/options-volatility-trading-bot/internal/metrics"
)

// Recognized announcement phrasings, in priority order. Each pattern must
// capture exactly one numeric token. Kept data-driven so a new phrasing is a
// one-line change, not new parsing code.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)realized\s+volatility[^0-9%]*?(\d+(?:\.\d+)?)\s*%?`),
	regexp.MustCompile(`(?i)annualized\s+volatility[^0-9%]*?(\d+(?:\.\d+)?)\s*%?`),
	regexp.MustCompile(`(?i)volatility\s+(?:of|is|was|at|will\s+be)\s*(\d+(?:\.\d+)?)\s*%?`),
}

const maxReturnWindow = 600

// Tracker holds the current realized-volatility estimate, updated from
// periodic news announcements. It also accumulates underlying log returns to
// report an observed sample volatility for telemetry; the observed figure
// never feeds pricing.
//
// Touched only within the single tick pass, so no locking.
type Tracker struct {
	log          *zap.Logger
	ticksPerYear float64

	current float64
	known   bool
	lastID  int

	lastPrice float64
	returns   []float64
}

func NewTracker(log *zap.Logger, ticksPerYear float64) *Tracker {
	return &Tracker{log: log, ticksPerYear: ticksPerYear, lastID: -1}
}

// Update parses one announcement and reports whether the estimate changed.
// Older or duplicate announcements (by news id) are ignored, as is any text
// no pattern matches; a parse miss is counted, never raised as an error.
// A parsed value that is not strictly positive keeps the last valid estimate.
func (t *Tracker) Update(id int, text string) bool {
	if id <= t.lastID {
		return false
	}
	v, ok := parse(text)
	if !ok {
		imetrics.ParseMisses.Inc()
		t.log.Debug("vol: announcement did not match any pattern", zap.Int("news_id", id))
		return false
	}
	t.lastID = id
	if v <= 0 {
		t.log.Warn("vol: non-positive announcement ignored", zap.Int("news_id", id), zap.Float64("value", v))
		return false
	}
	changed := !t.known || v != t.current
	t.current = v
	t.known = true
	imetrics.RealizedVol.Set(v)
	return changed
}

// Current returns the annualized realized-volatility estimate and whether an
// announcement has been applied yet.
func (t *Tracker) Current() (float64, bool) {
	return t.current, t.known
}

// Observe records the underlying price for the observed-vol cross check.
func (t *Tracker) Observe(price float64) {
	if price <= 0 {
		return
	}
	if t.lastPrice > 0 {
		t.returns = append(t.returns, math.Log(price/t.lastPrice))
		if len(t.returns) > maxReturnWindow {
			t.returns = t.returns[len(t.returns)-maxReturnWindow:]
		}
	}
	t.lastPrice = price
}

// ObservedVol is the annualized sample volatility of observed tick returns.
func (t *Tracker) ObservedVol() (float64, bool) {
	if len(t.returns) < 2 {
		return 0, false
	}
	sd, err := stats.StandardDeviationSample(stats.Float64Data(t.returns))
	if err != nil {
		return 0, false
	}
	return sd * math.Sqrt(t.ticksPerYear), true
}

func parse(text string) (float64, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		// Announcements quote percentages ("21.5%"); anything above a
		// plausible decimal vol is normalized.
		if v > 3 {
			v /= 100
		}
		return v, true
	}
	return 0, false
}
