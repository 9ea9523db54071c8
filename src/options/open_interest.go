package options

import (
	"math"
	"sort"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Open interest positioning and max pain. Max pain walks every candidate
// settlement strike and picks the one minimizing total in-the-money
// notional, then sanity-checks the result against spot.
// -----------------------------------------------------------------------------

const (
	oiStrikeRangePct    = 30.0 // strikes considered for positioning
	maxPainMaxDistPct   = 35.0 // beyond this, the max-pain result is bad data
	putCallBullishBelow = 0.7
	putCallBearishAbove = 1.0
)

// -----------------------------------------------------------------------------

// AnalyzeOpenInterest summarizes chain positioning near spot.
func AnalyzeOpenInterest(chain *models.MOptionsChain, spot float64) models.MOpenInterestAnalysis {
	out := models.MOpenInterestAnalysis{Sentiment: "neutral"}
	if chain == nil || spot <= 0 {
		return out
	}

	calls := withinRange(chain.Calls, spot, oiStrikeRangePct)
	puts := withinRange(chain.Puts, spot, oiStrikeRangePct)

	for _, c := range calls {
		out.TotalCallOI += c.OpenInterest
	}
	for _, p := range puts {
		out.TotalPutOI += p.OpenInterest
	}

	if out.TotalCallOI > 0 {
		out.PutCallRatio = core.Round2(out.TotalPutOI / out.TotalCallOI)
		switch {
		case out.PutCallRatio < putCallBullishBelow:
			out.Sentiment = "bullish"
		case out.PutCallRatio > putCallBearishAbove:
			out.Sentiment = "bearish"
		}
	}

	pain, ok := maxPain(calls, puts)
	if ok {
		dist := core.PercentDistance(spot, pain)
		if math.Abs(dist) <= maxPainMaxDistPct {
			out.MaxPain = pain
			out.MaxPainValid = true
			out.MaxPainDistPct = core.Round2(dist)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// maxPain returns the settlement strike minimizing total ITM notional.
func maxPain(calls, puts []models.MOptionContract) (float64, bool) {
	strikes := make(map[float64]struct{})
	for _, c := range calls {
		strikes[c.Strike] = struct{}{}
	}
	for _, p := range puts {
		strikes[p.Strike] = struct{}{}
	}
	if len(strikes) == 0 {
		return 0, false
	}

	candidates := make([]float64, 0, len(strikes))
	for k := range strikes {
		candidates = append(candidates, k)
	}
	sort.Float64s(candidates)

	best := candidates[0]
	bestPain := math.Inf(1)
	for _, settle := range candidates {
		pain := 0.0
		for _, c := range calls {
			if settle > c.Strike {
				pain += c.OpenInterest * (settle - c.Strike)
			}
		}
		for _, p := range puts {
			if settle < p.Strike {
				pain += p.OpenInterest * (p.Strike - settle)
			}
		}
		if pain < bestPain {
			bestPain = pain
			best = settle
		}
	}
	return best, true
}

// -----------------------------------------------------------------------------

func withinRange(contracts []models.MOptionContract, spot, pct float64) []models.MOptionContract {
	out := make([]models.MOptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.Strike <= 0 {
			continue
		}
		if math.Abs(core.PercentDistance(spot, c.Strike)) <= pct {
			out = append(out, c)
		}
	}
	return out
}
