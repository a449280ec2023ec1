package signal

import (
	"github.com/karanshah0206/options-volatility-trading-bot/internal/types"
)

// Evaluate compares an option's theoretical value to its market mid.
// Magnitude is theo - mid. At or beyond +threshold the option is underpriced
// (go long); at or beyond -threshold it is overpriced (go short).
//
// The threshold is an absolute price difference, not a percentage of
// premium, so it bites harder on low-premium strikes.
func Evaluate(theo, mid, threshold float64) types.Signal {
	mag := theo - mid
	switch {
	case mag >= threshold:
		return types.Signal{Direction: types.Long, Magnitude: mag}
	case mag <= -threshold:
		return types.Signal{Direction: types.Short, Magnitude: mag}
	default:
		return types.Signal{Direction: types.None, Magnitude: mag}
	}
}
