// Package formulas provides technical indicator calculations for the
// chart overlays.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMASeries calculates a simple moving average over closing prices.
// The returned slice is aligned with the input. talib zero-pads the
// warmup positions before the window fills; those are blanked to NaN
// here so callers can tell them apart from real values.
//
// Returns nil if there is not enough data for a single window.
func SMASeries(closes []float64, length int) []float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}
	return blankWarmup(talib.Sma(closes, length), length-1)
}

// RSISeries calculates the Relative Strength Index over closing prices,
// aligned with the input the same way as SMASeries. RSI needs length+1
// closes before the first value, so the first length positions are NaN.
//
// RSI Formula:
//
//	RSI = 100 - (100 / (1 + RS))
//	where RS = Average Gain / Average Loss over N periods
func RSISeries(closes []float64, length int) []float64 {
	if length <= 0 || len(closes) < length+1 {
		return nil
	}
	return blankWarmup(talib.Rsi(closes, length), length)
}

// CalculateRSI calculates the current RSI value.
//
// Returns nil if there is insufficient data or the value is undefined.
func CalculateRSI(closes []float64, length int) *float64 {
	rsi := RSISeries(closes, length)
	if len(rsi) == 0 {
		return nil
	}

	last := rsi[len(rsi)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}

// CalculateSMA calculates the current simple moving average value.
//
// Returns nil if there is insufficient data.
func CalculateSMA(closes []float64, length int) *float64 {
	sma := SMASeries(closes, length)
	if len(sma) == 0 {
		return nil
	}

	last := sma[len(sma)-1]
	if math.IsNaN(last) {
		return nil
	}
	return &last
}

// blankWarmup overwrites the first n positions with NaN. talib pads the
// lookback period with 0.0, which is indistinguishable from a real
// zero-valued indicator reading.
func blankWarmup(series []float64, n int) []float64 {
	if n > len(series) {
		n = len(series)
	}
	for i := 0; i < n; i++ {
		series[i] = math.NaN()
	}
	return series
}
