package analysis

import (
	"math"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
	"confluence-engine/src/timeframe"
)

// -----------------------------------------------------------------------------
// Composite directional scorer. Every stage is a pure function over the
// pull/cluster inputs; the composite result is assembled once, not mutated
// across a long accumulation.
// -----------------------------------------------------------------------------

// CompositeConfig carries the confidence blend weights. The 0.55/0.45
// split is a stated constant with no documented calibration source.
type CompositeConfig struct {
	ClusterWeight float64
	DecompWeight  float64
}

func DefaultCompositeConfig() CompositeConfig {
	return CompositeConfig{ClusterWeight: 0.55, DecompWeight: 0.45}
}

// -----------------------------------------------------------------------------

// ComputeComposite blends direction, cluster and decompression scores into
// the final confidence, signal strength tier and banners.
func ComputeComposite(pulls []models.MDecompressionPull, clusters []models.MTemporalCluster, cc models.MCandleCloseConfluence, price float64, cfg CompositeConfig) models.MCompositeScore {
	if cfg.ClusterWeight <= 0 && cfg.DecompWeight <= 0 {
		cfg = DefaultCompositeConfig()
	}

	active := ActivePulls(pulls)

	direction := directionScore(active, clusters)
	clusterScore, dominantRatio := clusterWeightShare(clusters)
	decompScore := decompressionScore(active)

	confidence := core.Clamp(cfg.ClusterWeight*clusterScore+cfg.DecompWeight*decompScore, 10, 95)
	confidence = core.Clamp(confidence+cc.Boost, 10, 95)

	strength := signalStrength(confidence, active, dominantRatio)

	return models.MCompositeScore{
		DirectionScore:     core.Round2(direction),
		DirectionLabel:     DirectionLabel(direction),
		ClusterScore:       core.Round2(clusterScore),
		DecompressionScore: core.Round2(decompScore),
		Confidence:         core.Round2(confidence),
		SignalStrength:     strength,
		DominantRatio:      core.Round2(dominantRatio),
		ActiveCount:        len(active),
		Banners:            banners(direction, confidence, dominantRatio, clusterScore, active, clusters, price),
	}
}

// -----------------------------------------------------------------------------

// DirectionLabel maps a direction score to its discrete label.
// Bullish above +15, bearish below -15, else neutral.
func DirectionLabel(directionScore float64) string {
	switch {
	case directionScore > 15:
		return "bullish"
	case directionScore < -15:
		return "bearish"
	default:
		return "neutral"
	}
}

// -----------------------------------------------------------------------------

// directionScore: 100 * sum(weight*confidence*sign) / sum(weight*confidence),
// where weight is the timeframe hierarchy weight scaled by main-cluster
// membership. Direction sign comes only from here, never from the cluster
// or decompression magnitudes.
func directionScore(active []models.MDecompressionPull, clusters []models.MTemporalCluster) float64 {
	num := 0.0
	den := 0.0
	for _, p := range active {
		w := timeframe.HierarchyWeight(p.TimeframeID) * ClusterMultiplier(clusters, p.TimeframeID)
		c := math.Min(1, p.Strength/10.0)
		var sign float64
		switch p.Direction {
		case "up":
			sign = 1
		case "down":
			sign = -1
		}
		num += w * c * sign
		den += w * c
	}
	if den == 0 {
		return 0
	}
	return 100.0 * num / den
}

// -----------------------------------------------------------------------------

// clusterWeightShare: the dominant cluster's share of total cluster weight,
// scaled to 0..100, plus the raw ratio for the signal gates.
func clusterWeightShare(clusters []models.MTemporalCluster) (float64, float64) {
	main := MainCluster(clusters)
	if main == nil {
		return 0, 0
	}

	total := 0.0
	mainWeight := 0.0
	for _, cl := range clusters {
		w := 0.0
		for _, id := range cl.TimeframeIDs {
			w += timeframe.HierarchyWeight(id)
		}
		total += w
		if cl.IsMain {
			mainWeight = w
		}
	}
	if total == 0 {
		return 0, 0
	}
	ratio := mainWeight / total
	return 100.0 * ratio, ratio
}

// -----------------------------------------------------------------------------

// decompressionScore: weighted mean pull confidence, 0..100.
func decompressionScore(active []models.MDecompressionPull) float64 {
	num := 0.0
	den := 0.0
	for _, p := range active {
		w := timeframe.HierarchyWeight(p.TimeframeID)
		num += w * math.Min(1, p.Strength/10.0)
		den += w
	}
	if den == 0 {
		return 0
	}
	return 100.0 * num / den
}

// -----------------------------------------------------------------------------

// signalStrength applies the discrete gates. Confidence alone is never
// enough: each tier also requires breadth and cluster dominance.
func signalStrength(confidence float64, active []models.MDecompressionPull, dominantRatio float64) string {
	hasHourPlus := false
	for _, p := range active {
		if spec, ok := timeframe.Get(p.TimeframeID); ok && spec.Minutes >= 60 {
			hasHourPlus = true
			break
		}
	}

	switch {
	case confidence >= 75 && len(active) >= 4 && dominantRatio >= 0.70 && hasHourPlus:
		return "strong"
	case confidence >= 55 && len(active) >= 3 && dominantRatio >= 0.60:
		return "moderate"
	case confidence >= 40 && len(active) >= 2:
		return "weak"
	default:
		return "no_signal"
	}
}

// -----------------------------------------------------------------------------

// banners evaluates the deterministic banner rules in fixed order.
func banners(direction, confidence, dominantRatio, clusterScore float64, active []models.MDecompressionPull, clusters []models.MTemporalCluster, price float64) []string {
	out := make([]string, 0, 4)

	if len(active) >= 5 && dominantRatio >= 0.75 {
		out = append(out, "MEGA CONFLUENCE")
	}
	if math.Abs(direction) >= 70 && confidence >= 70 {
		if direction > 0 {
			out = append(out, "EXTREME BULLISH")
		} else {
			out = append(out, "EXTREME BEARISH")
		}
	}
	if clusterScore >= 70 && nearestClusterLevelWithin(active, clusters, price, 1.5) {
		out = append(out, "PRICE MAGNET")
	}
	if confidence >= 80 {
		out = append(out, "HIGH CONFIDENCE")
	}
	return out
}

// -----------------------------------------------------------------------------

// nearestClusterLevelWithin checks whether any main-cluster member's
// mid-level sits within pct of the current price.
func nearestClusterLevelWithin(active []models.MDecompressionPull, clusters []models.MTemporalCluster, price, pct float64) bool {
	main := MainCluster(clusters)
	if main == nil || price <= 0 {
		return false
	}
	for _, p := range active {
		for _, id := range main.TimeframeIDs {
			if p.TimeframeID == id && p.MidLevel > 0 {
				if math.Abs(core.PercentDistance(price, p.MidLevel)) <= pct {
					return true
				}
			}
		}
	}
	return false
}
