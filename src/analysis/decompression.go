package analysis

import (
	"math"
	"time"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
	"confluence-engine/src/timeframe"
)

// -----------------------------------------------------------------------------
// Decompression pull: per timeframe, decides whether price currently sits
// inside that timeframe's gravitational window toward its prior-bar
// midpoint, and how hard the level pulls.
// -----------------------------------------------------------------------------

type PullAnalyzer struct {
	Closes                *timeframe.CloseCalculator
	ProximityThresholdPct float64 // market-closed activation distance, percent
}

// -----------------------------------------------------------------------------

func NewPullAnalyzer(closes *timeframe.CloseCalculator, proximityPct float64) *PullAnalyzer {
	if proximityPct <= 0 {
		proximityPct = 1.5
	}
	return &PullAnalyzer{Closes: closes, ProximityThresholdPct: proximityPct}
}

// -----------------------------------------------------------------------------

// AnalyzePull evaluates one timeframe against the current price. bars is
// the series already resampled to the timeframe's width; the mid-level is
// taken from its second-to-last bar. When the market is closed the timing
// term is unavailable and activation degrades to mid-level proximity.
func (a *PullAnalyzer) AnalyzePull(now time.Time, spec models.MTimeframeSpec, bars []models.MBar, price float64, marketOpen bool) models.MDecompressionPull {
	pull := models.MDecompressionPull{
		TimeframeID: spec.ID,
		Label:       spec.Label,
		Direction:   "none",
	}

	mid, ok := core.MidLevel(bars)
	if !ok || price <= 0 {
		return pull
	}

	distPct := core.PercentDistance(price, mid)
	pull.MidLevel = mid
	pull.DistancePct = distPct

	switch {
	case mid > price:
		pull.Direction = "up"
	case mid < price:
		pull.Direction = "down"
	}

	tfWeight := math.Log2(spec.Minutes/5.0) * 0.5

	if !marketOpen {
		// Proximity-only mode: no close is coming, so a timeframe counts
		// as active when price is already hugging its mid-level.
		pull.ProximityMode = true
		absDist := math.Abs(distPct)
		if absDist > a.ProximityThresholdPct {
			return pull
		}
		pull.Active = true
		proximity := 5.0 * (1.0 - absDist/a.ProximityThresholdPct)
		pull.Strength = math.Min(10, math.Max(0, proximity+tfWeight))
		return pull
	}

	mtc, ok := a.Closes.MinutesUntilClose(now, spec)
	if !ok {
		return pull
	}
	pull.MinutesToClose = mtc

	if spec.DecompStart <= 0 || mtc <= 0 || mtc > spec.DecompStart {
		return pull
	}

	pull.Active = true
	closeness := 5.0 * (1.0 - mtc/spec.DecompStart)
	distance := math.Max(0, 2.0-math.Abs(distPct)*2.0)
	pull.Strength = math.Min(10, math.Max(0, closeness+tfWeight+distance))
	return pull
}

// -----------------------------------------------------------------------------

// AnalyzeAll evaluates every timeframe in the registry. barsByTF maps
// timeframe id to its resampled series; timeframes with no series produce
// inactive pulls rather than being skipped, so callers always see the full
// hierarchy.
func (a *PullAnalyzer) AnalyzeAll(now time.Time, barsByTF map[string][]models.MBar, price float64, marketOpen bool) []models.MDecompressionPull {
	specs := timeframe.All()
	pulls := make([]models.MDecompressionPull, 0, len(specs))
	for _, spec := range specs {
		pulls = append(pulls, a.AnalyzePull(now, spec, barsByTF[spec.ID], price, marketOpen))
	}
	return pulls
}

// -----------------------------------------------------------------------------

// ActivePulls filters to the currently decompressing timeframes.
func ActivePulls(pulls []models.MDecompressionPull) []models.MDecompressionPull {
	active := make([]models.MDecompressionPull, 0, len(pulls))
	for _, p := range pulls {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}

// -----------------------------------------------------------------------------

// MidLevels extracts the mid-level of every timeframe that has one.
func MidLevels(pulls []models.MDecompressionPull) []models.MMidLevel {
	levels := make([]models.MMidLevel, 0, len(pulls))
	for _, p := range pulls {
		if p.MidLevel <= 0 {
			continue
		}
		levels = append(levels, models.MMidLevel{
			TimeframeID: p.TimeframeID,
			Level:       p.MidLevel,
			DistancePct: p.DistancePct,
		})
	}
	return levels
}
