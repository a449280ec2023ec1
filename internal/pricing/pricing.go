package pricing

import (
	"fmt"
	"math"

	"github.com/karanshah0206/options-volatility-trading-bot/internal/instrument"
)

// normCDF is the standard normal cumulative distribution, evaluated through
// math.Erf rather than a lookup table.
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// Price returns the Black-Scholes theoretical value and delta of an option.
// s is the underlying price, k the strike, t the time to expiry in years,
// sigma the annualized realized volatility, r the risk-free rate (zero on
// this venue, passed in rather than hardwired).
//
// At t <= 0 (or sigma <= 0) the closed form degenerates, so the value
// collapses to intrinsic and delta to a step function: {0,1} for calls,
// {-1,0} for puts.
//
// Pure function: identical inputs always yield identical outputs.
func Price(s, k, t, sigma, r float64, kind instrument.Kind) (value, delta float64, err error) {
	if !kind.IsOption() {
		return 0, 0, fmt.Errorf("pricing: %v is not an option", kind)
	}
	if s <= 0 || k <= 0 {
		return 0, 0, fmt.Errorf("pricing: non-positive input s=%v k=%v", s, k)
	}
	if math.IsNaN(s) || math.IsNaN(k) || math.IsNaN(t) || math.IsNaN(sigma) {
		return 0, 0, fmt.Errorf("pricing: NaN input")
	}

	if t <= 0 || sigma <= 0 {
		return intrinsic(s, k, kind)
	}

	sqrtT := math.Sqrt(t)
	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	disc := math.Exp(-r * t)

	if kind == instrument.Call {
		value = s*normCDF(d1) - k*disc*normCDF(d2)
		delta = normCDF(d1)
	} else {
		value = k*disc*normCDF(-d2) - s*normCDF(-d1)
		delta = normCDF(d1) - 1
	}
	return value, delta, nil
}

func intrinsic(s, k float64, kind instrument.Kind) (float64, float64, error) {
	if kind == instrument.Call {
		if s > k {
			return s - k, 1, nil
		}
		return 0, 0, nil
	}
	if s < k {
		return k - s, -1, nil
	}
	return 0, 0, nil
}
