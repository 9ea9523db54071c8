package options

import (
	"math"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Trade levels and the A+..F quality grade.
// -----------------------------------------------------------------------------

const (
	maxTargetDistPct      = 20.0 // targets beyond this are bad data
	fallbackTargetMovePct = 2.0
	stopATRMultiplier     = 1.5
)

// -----------------------------------------------------------------------------

// ComputeTradeLevels derives entry/stop/target from the confluence
// snapshot's forecast, with a conservative fallback when the forecast
// target fails the sanity bound.
func ComputeTradeLevels(snapshot *models.MConfluenceSnapshot) models.MTradeLevels {
	out := models.MTradeLevels{}
	if snapshot == nil || snapshot.Price <= 0 {
		return out
	}
	price := snapshot.Price
	out.Entry = core.Round2(price)

	sign := 0.0
	switch snapshot.ForecastDirection {
	case "bullish":
		sign = 1
	case "bearish":
		sign = -1
	}
	if sign == 0 {
		return out
	}

	target := snapshot.TargetPrice
	if target <= 0 || math.Abs(core.PercentDistance(price, target)) > maxTargetDistPct {
		target = price * (1.0 + sign*fallbackTargetMovePct/100.0)
	}
	out.Target = core.Round2(target)

	stop := snapshot.StopPrice
	if stop <= 0 || (sign > 0 && stop >= price) || (sign < 0 && stop <= price) {
		atr := snapshot.ATR
		if atr <= 0 {
			atr = price * 0.01
		}
		stop = price - sign*stopATRMultiplier*atr
	}
	out.Stop = core.Round2(stop)

	risk := math.Abs(price - out.Stop)
	reward := math.Abs(out.Target - price)
	if risk > 0 {
		out.RiskReward = core.Round2(reward / risk)
	}
	return out
}

// -----------------------------------------------------------------------------

// ComputeGrade applies the weighted rubric: confluence stack 25, direction
// clarity 25, cluster count 15, forecast confidence 20, open-interest
// alignment up to +/-15 with a 5 point max-pain proximity bonus.
func ComputeGrade(snapshot *models.MConfluenceSnapshot, oi models.MOpenInterestAnalysis, direction string) (string, float64) {
	if snapshot == nil {
		return "F", 0
	}
	score := 0.0

	// Confluence stack, saturating at 7 active timeframes.
	score += 25.0 * core.Clamp(float64(snapshot.ActiveCount)/7.0, 0, 1)

	// Direction clarity.
	score += 25.0 * core.Clamp(math.Abs(snapshot.DirectionScore)/100.0, 0, 1)

	// Cluster count.
	switch {
	case snapshot.ClusterCount >= 3:
		score += 15
	case snapshot.ClusterCount == 2:
		score += 10
	case snapshot.ClusterCount == 1:
		score += 5
	}

	// Forecast confidence.
	score += 20.0 * core.Clamp(snapshot.ForecastConf/100.0, 0, 1)

	// Open-interest alignment.
	if oi.Sentiment != "neutral" && direction != "neutral" {
		if oi.Sentiment == direction {
			score += 15
		} else {
			score -= 15
		}
	}
	if oi.MaxPainValid && math.Abs(oi.MaxPainDistPct) <= 2.0 {
		score += 5
	}

	score = core.Clamp(score, 0, 105)
	return gradeLetter(score), core.Round2(score)
}

// -----------------------------------------------------------------------------

func gradeLetter(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 55:
		return "C"
	case score >= 40:
		return "D"
	default:
		return "F"
	}
}
