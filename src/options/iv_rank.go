package options

import (
	"math"

	"confluence-engine/src/analysis/core"
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// IV rank heuristic. A proper rank needs a 52-week IV history; the chain
// snapshot only carries the current surface, so absolute ATM IV bands stand
// in for the percentile.
// -----------------------------------------------------------------------------

const atmBandPct = 5.0 // strikes within 5% of spot count as ATM

// -----------------------------------------------------------------------------

// ComputeIVRank averages ATM implied volatility and maps it to a rank band.
func ComputeIVRank(chain *models.MOptionsChain, spot float64) models.MIVRank {
	out := models.MIVRank{Signal: "neutral"}
	if chain == nil || spot <= 0 {
		return out
	}

	sum := 0.0
	count := 0
	collect := func(contracts []models.MOptionContract) {
		for _, c := range contracts {
			if c.ImpliedVolatility <= 0 || c.Strike <= 0 {
				continue
			}
			if math.Abs(core.PercentDistance(spot, c.Strike)) <= atmBandPct {
				sum += c.ImpliedVolatility
				count++
			}
		}
	}
	collect(chain.Calls)
	collect(chain.Puts)

	if count == 0 {
		return out
	}

	out.AvgATMIV = core.Round2(sum / float64(count))
	out.Rank = rankForIV(out.AvgATMIV)
	out.Percentile = out.Rank

	switch {
	case out.Rank > 70:
		out.Signal = "sell_premium"
	case out.Rank < 30:
		out.Signal = "buy_premium"
	}
	return out
}

// -----------------------------------------------------------------------------

// rankForIV buckets absolute ATM IV into an approximate rank.
func rankForIV(iv float64) float64 {
	switch {
	case iv >= 1.00:
		return 95
	case iv >= 0.80:
		return 85
	case iv >= 0.60:
		return 72
	case iv >= 0.45:
		return 55
	case iv >= 0.30:
		return 40
	case iv >= 0.20:
		return 25
	default:
		return 10
	}
}
