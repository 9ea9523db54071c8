package options

import (
	"math"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Cross-signal composite. Fixed weights, direction from the weighted sum of
// the directional components only; the IV environment contributes to
// confidence, never to direction. Conflicts are recorded, never resolved.
// -----------------------------------------------------------------------------

// ComputeComposite blends the options signals into one score.
func ComputeComposite(snapshot *models.MConfluenceSnapshot, unusual models.MUnusualActivity, oi models.MOpenInterestAnalysis, ivRank models.MIVRank, levels models.MTradeLevels, weights models.MOptionsWeights) models.MOptionsComposite {
	out := models.MOptionsComposite{
		Direction:  "neutral",
		Components: make(map[string]float64, 6),
		Conflicts:  []string{},
	}
	if snapshot == nil {
		return out
	}

	unusualScore := unusualComponent(unusual)
	oiScore := oiComponent(oi)
	timeScore := core.Clamp(snapshot.DirectionScore, -100, 100)
	maxPainScore := maxPainComponent(oi)
	rrScore := riskRewardComponent(levels, snapshot.ForecastDirection)

	out.Components["unusual_activity"] = core.Round2(unusualScore)
	out.Components["open_interest"] = core.Round2(oiScore)
	out.Components["time_confluence"] = core.Round2(timeScore)
	out.Components["iv_environment"] = ivRank.Rank
	out.Components["max_pain"] = core.Round2(maxPainScore)
	out.Components["risk_reward"] = core.Round2(rrScore)

	// Direction: weighted mean of the directional components, renormalized
	// over their weight mass so the scale stays -100..100.
	dirWeight := weights.UnusualActivity + weights.OpenInterest + weights.TimeConfluence + weights.MaxPain + weights.RiskReward
	norm := 0.0
	if dirWeight > 0 {
		norm = (weights.UnusualActivity*unusualScore +
			weights.OpenInterest*oiScore +
			weights.TimeConfluence*timeScore +
			weights.MaxPain*maxPainScore +
			weights.RiskReward*rrScore) / dirWeight
	}
	out.Score = core.Round2(norm)
	if norm > 15 {
		out.Direction = "bullish"
	} else if norm < -15 {
		out.Direction = "bearish"
	}

	// Confidence: component agreement magnitude plus the IV term.
	confidence := weights.UnusualActivity*math.Abs(unusualScore) +
		weights.OpenInterest*math.Abs(oiScore) +
		weights.TimeConfluence*math.Abs(timeScore) +
		weights.MaxPain*math.Abs(maxPainScore) +
		weights.RiskReward*math.Abs(rrScore) +
		weights.IVEnvironment*ivConfidence(ivRank)
	out.Confidence = core.Round2(core.Clamp(confidence, 0, 100))

	out.Conflicts = detectConflicts(unusual, oi, ivRank, levels, out.Direction)
	return out
}

// -----------------------------------------------------------------------------

// unusualComponent: signed premium-flow imbalance.
func unusualComponent(u models.MUnusualActivity) float64 {
	total := u.BullishPremium + u.BearishPremium
	if total <= 0 {
		return 0
	}
	return 100.0 * (u.BullishPremium - u.BearishPremium) / total
}

// -----------------------------------------------------------------------------

func oiComponent(oi models.MOpenInterestAnalysis) float64 {
	switch oi.Sentiment {
	case "bullish":
		return 75
	case "bearish":
		return -75
	default:
		return 0
	}
}

// -----------------------------------------------------------------------------

// maxPainComponent: price is pulled toward the max-pain strike, so max pain
// above spot reads bullish and below reads bearish.
func maxPainComponent(oi models.MOpenInterestAnalysis) float64 {
	if !oi.MaxPainValid {
		return 0
	}
	return core.Clamp(-oi.MaxPainDistPct*20.0, -100, 100)
}

// -----------------------------------------------------------------------------

// riskRewardComponent: good R:R amplifies the forecast direction, never
// creates one of its own.
func riskRewardComponent(levels models.MTradeLevels, forecastDirection string) float64 {
	if levels.RiskReward <= 0 {
		return 0
	}
	sign := 0.0
	switch forecastDirection {
	case "bullish":
		sign = 1
	case "bearish":
		sign = -1
	default:
		return 0
	}
	return sign * core.Clamp((levels.RiskReward-1.0)*50.0, 0, 100)
}

// -----------------------------------------------------------------------------

func ivConfidence(ivRank models.MIVRank) float64 {
	// Either extreme of the IV environment is informative; mid-range says
	// little.
	return core.Clamp(math.Abs(ivRank.Rank-50.0)*2.0, 0, 100)
}

// -----------------------------------------------------------------------------

// detectConflicts records disagreements for the caller instead of resolving
// them.
func detectConflicts(unusual models.MUnusualActivity, oi models.MOpenInterestAnalysis, ivRank models.MIVRank, levels models.MTradeLevels, direction string) []string {
	conflicts := []string{}

	if unusual.SmartMoney != "neutral" && oi.Sentiment != "neutral" && unusual.SmartMoney != oi.Sentiment {
		conflicts = append(conflicts, "unusual-activity flow disagrees with open-interest positioning")
	}
	if ivRank.Signal == "sell_premium" && direction != "neutral" {
		conflicts = append(conflicts, "high IV environment penalizes directional long-premium trades")
	}
	if levels.RiskReward > 0 && levels.RiskReward < 1.5 {
		conflicts = append(conflicts, "risk:reward below 1.5")
	}
	return conflicts
}
