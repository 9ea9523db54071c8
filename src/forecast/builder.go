package forecast

import (
	"fmt"
	"math"
	"time"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/logger"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Forecast builder: turns the learned profile plus the live confluence read
// into a directional forecast with target, stop and time horizon. The
// learned statistics set the base rate; the live pulls tilt it.
// -----------------------------------------------------------------------------

const (
	// maxExpectedMovePct guards against learned magnitudes poisoned by bad
	// bars; anything above it falls back to a conservative 2% move.
	maxExpectedMovePct      = 20.0
	fallbackExpectedMovePct = 2.0

	minBucketEvents = 5
	stopATRMult     = 1.5
)

type Builder struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBuilder(log *logger.Logger) *Builder {
	return &Builder{Logger: log}
}

// -----------------------------------------------------------------------------

// Build assembles the forecast. outcomes may be nil when no trade-outcome
// history exists for the symbol.
func (b *Builder) Build(symbol string, profile *models.MSymbolLearning, composite models.MCompositeScore, active []models.MDecompressionPull, price, atr float64, outcomes *models.MOutcomeStats) *models.MForecast {
	if price <= 0 {
		return nil
	}

	f := &models.MForecast{Symbol: symbol, Notes: make([]string, 0, 4)}

	upRate, expectedMag, basisEvents, basis := b.learnedBias(profile, composite)
	f.BasisEvents = basisEvents
	if basis != "" {
		f.Notes = append(f.Notes, basis)
	}

	// Learned base rate and live direction blend 40/60; live pulls are the
	// fresher signal, the base rate keeps a dead tape from overreacting.
	learnedBias := (upRate - 0.5) * 200.0
	combined := 0.6*composite.DirectionScore + 0.4*learnedBias
	f.Direction = directionLabel(combined)

	confidence := composite.Confidence
	if basisEvents >= minBucketEvents {
		// Strong historical edge in either direction raises confidence.
		confidence += math.Abs(upRate-0.5) * 40.0
	}
	if outcomes != nil && outcomes.Trades > 0 {
		confidence = (confidence + outcomes.WinRate) / 2.0
		f.Notes = append(f.Notes, fmt.Sprintf("blended with %d recorded trade outcomes", outcomes.Trades))
	}
	f.Confidence = core.Round2(core.Clamp(confidence, 10, 95))

	if expectedMag <= 0 || expectedMag > maxExpectedMovePct {
		if expectedMag > maxExpectedMovePct {
			f.Notes = append(f.Notes, "learned move magnitude out of range, using conservative fallback")
		}
		expectedMag = fallbackExpectedMovePct
	}
	sign := 0.0
	switch f.Direction {
	case "bullish":
		sign = 1
	case "bearish":
		sign = -1
	}
	f.ExpectedMovePct = core.Round2(expectedMag * sign)

	f.TargetPrice = core.Round2(price * (1.0 + f.ExpectedMovePct/100.0))
	if atr > 0 {
		f.StopPrice = core.Round2(price - sign*stopATRMult*atr)
	}
	if sign == 0 {
		f.TargetPrice = core.Round2(price)
		f.StopPrice = 0
	}

	f.TimeHorizon = b.timeHorizon(active, outcomes)
	return f
}

// -----------------------------------------------------------------------------

// learnedBias picks the most specific historical split that has enough
// events: stack bucket first, then cluster/no-cluster, then hot zone.
func (b *Builder) learnedBias(profile *models.MSymbolLearning, composite models.MCompositeScore) (upRate, expectedMag float64, events int, basis string) {
	if profile == nil || profile.Neutral {
		return 0.5, 0, 0, "no learned history, neutral base rate"
	}

	if composite.ActiveCount >= 5 {
		bucket := composite.ActiveCount
		if bucket > 9 {
			bucket = 9
		}
		if st := profile.PerStack[bucket]; st != nil && st.Events >= minBucketEvents {
			return st.UpRate, st.AvgMovePct8, st.Events,
				fmt.Sprintf("based on %d historical events with %d timeframes stacked", st.Events, bucket)
		}
	}

	var split models.MOutcomeSplit
	var label string
	if mainClusterSize(composite) >= 2 {
		split = profile.WithCluster
		label = "clustered"
	} else {
		split = profile.WithoutCluster
		label = "unclustered"
	}
	if split.Events >= minBucketEvents {
		return split.UpRate, split.AvgMovePct, split.Events,
			fmt.Sprintf("based on %d historical %s confluence events", split.Events, label)
	}

	if profile.HotZone.Events >= minBucketEvents {
		return profile.HotZone.UpRate, profile.HotZone.AvgMovePct, profile.HotZone.Events,
			fmt.Sprintf("based on %d historical hot-zone events", profile.HotZone.Events)
	}

	return 0.5, 0, profile.TotalEvents, "too few comparable events, neutral base rate"
}

// -----------------------------------------------------------------------------

func mainClusterSize(composite models.MCompositeScore) int {
	// DominantRatio only exists when a main cluster does; breadth proxies
	// its size here because the forecast never sees the raw clusters.
	if composite.DominantRatio <= 0 {
		return 0
	}
	return composite.ActiveCount
}

// -----------------------------------------------------------------------------

// timeHorizon derives the forecast window from the nearest active close,
// preferring the observed time-to-move when trade outcomes exist.
func (b *Builder) timeHorizon(active []models.MDecompressionPull, outcomes *models.MOutcomeStats) string {
	minutes := math.Inf(1)
	for _, p := range active {
		if p.MinutesToClose > 0 && p.MinutesToClose < minutes {
			minutes = p.MinutesToClose
		}
	}
	if outcomes != nil && outcomes.Trades > 0 && outcomes.AvgTimeToMoveMinutes > 0 {
		minutes = outcomes.AvgTimeToMoveMinutes
	}
	switch {
	case minutes < 30:
		return "1h"
	case minutes < 60:
		return "2h"
	case minutes < 120:
		return "4h"
	default:
		return "8h"
	}
}

// -----------------------------------------------------------------------------

func directionLabel(score float64) string {
	switch {
	case score > 15:
		return "bullish"
	case score < -15:
		return "bearish"
	default:
		return "neutral"
	}
}

// -----------------------------------------------------------------------------

// Age reports how stale a profile is relative to now, for API reporting.
func Age(profile *models.MSymbolLearning, now time.Time) time.Duration {
	if profile == nil || profile.BuiltAt == 0 {
		return 0
	}
	return now.Sub(time.Unix(profile.BuiltAt, 0))
}
