package core

import (
	"math"

	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------

// MidLevel returns the 50% level of a timeframe's prior completed bar:
// the second-to-last bar of the resampled series. ok is false when the
// series is too short to have a prior bar.
func MidLevel(bars []models.MBar) (float64, bool) {
	if len(bars) < 2 {
		return 0, false
	}
	return bars[len(bars)-2].Mid(), true
}

// -----------------------------------------------------------------------------

// PercentDistance returns the signed percent distance from price to level.
// Positive when the level sits above price.
func PercentDistance(price, level float64) float64 {
	if price == 0 {
		return 0
	}
	return (level - price) / price * 100.0
}

// -----------------------------------------------------------------------------

// ATR computes the Wilder-smoothed average true range over period bars.
// Returns 0 when the series is shorter than two bars.
func ATR(bars []models.MBar, period int) float64 {
	if len(bars) < 2 || period <= 0 {
		return 0
	}

	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		trs = append(trs, math.Max(hl, math.Max(hc, lc)))
	}

	// Wilder smoothing: seed with the simple mean of the first period.
	n := period
	if n > len(trs) {
		n = len(trs)
	}
	atr := 0.0
	for i := 0; i < n; i++ {
		atr += trs[i]
	}
	atr /= float64(n)

	for i := n; i < len(trs); i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

// -----------------------------------------------------------------------------

// ChangePercent calculates the percentage change from previous to current.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100.0
}
