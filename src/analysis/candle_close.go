package analysis

import (
	"math"
	"sort"
	"time"

	"confluence-engine/src/models"
	"confluence-engine/src/timeframe"
)

// -----------------------------------------------------------------------------
// Candle close confluence: the forward-looking variant. Scores how many and
// how significant upcoming timeframe closes coincide inside the clustering
// window, regardless of whether any decompression window is open yet.
// -----------------------------------------------------------------------------

type CandleCloseCalculator struct {
	Closes         *timeframe.CloseCalculator
	WindowMinutes  float64
	HorizonMinutes float64
}

// -----------------------------------------------------------------------------

func NewCandleCloseCalculator(closes *timeframe.CloseCalculator, windowMinutes float64) *CandleCloseCalculator {
	if windowMinutes <= 0 {
		windowMinutes = 5
	}
	return &CandleCloseCalculator{
		Closes:         closes,
		WindowMinutes:  windowMinutes,
		HorizonMinutes: 120,
	}
}

// -----------------------------------------------------------------------------

// Compute builds the upcoming close schedule over the horizon and scores
// its densest window.
func (c *CandleCloseCalculator) Compute(now time.Time) models.MCandleCloseConfluence {
	result := models.MCandleCloseConfluence{
		WindowMinutes: c.WindowMinutes,
		Tier:          "none",
	}

	upcoming := make([]models.MUpcomingClose, 0, 16)
	for _, spec := range timeframe.All() {
		mtc, ok := c.Closes.MinutesUntilClose(now, spec)
		if !ok || mtc <= 0 || mtc > c.HorizonMinutes {
			continue
		}
		upcoming = append(upcoming, models.MUpcomingClose{
			TimeframeID:    spec.ID,
			MinutesToClose: mtc,
			Weight:         timeframe.HierarchyWeight(spec.ID),
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].MinutesToClose < upcoming[j].MinutesToClose
	})
	result.UpcomingCloses = upcoming

	if len(upcoming) == 0 {
		return result
	}

	// Densest window: seed each close and count neighbours within range.
	bestCount := 0
	bestWeight := 0.0
	for i := range upcoming {
		count := 0
		weight := 0.0
		for j := range upcoming {
			if math.Abs(upcoming[j].MinutesToClose-upcoming[i].MinutesToClose) <= c.WindowMinutes {
				count++
				weight += upcoming[j].Weight
			}
		}
		if count > bestCount || (count == bestCount && weight > bestWeight) {
			bestCount = count
			bestWeight = weight
		}
	}

	result.ClusterCount = bestCount
	result.Score = math.Min(100, float64(bestCount)*12.0+bestWeight*4.0)
	result.Tier, result.Boost = candleCloseTier(bestCount, result.Score)
	return result
}

// -----------------------------------------------------------------------------

// candleCloseTier maps the densest-window score to a tier and the
// confidence boost carried into the composite scorer.
func candleCloseTier(count int, score float64) (string, float64) {
	switch {
	case count >= 6 || score >= 85:
		return "extreme", 15
	case count >= 4 && score >= 60:
		return "high", 10
	case count >= 3 && score >= 40:
		return "moderate", 5
	case count >= 2:
		return "low", 0
	default:
		return "none", 0
	}
}
