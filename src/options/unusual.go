package options

import (
	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Unusual activity: strikes trading well above their standing open interest
// are fresh positioning, not rollovers. Premium flow decides which side the
// size is on.
// -----------------------------------------------------------------------------

const (
	minUnusualVolume   = 500.0
	minVolumeOIRatio   = 2.0
	unusualRangePct    = 15.0
	contractMultiplier = 100.0
	smartMoneyEdge     = 1.5 // dominant side must carry 1.5x the other's premium
)

// -----------------------------------------------------------------------------

// DetectUnusual flags high volume/OI strikes near spot and aggregates their
// premium flow.
func DetectUnusual(chain *models.MOptionsChain, spot float64) models.MUnusualActivity {
	out := models.MUnusualActivity{
		Flags:      []models.MUnusualFlag{},
		SmartMoney: "neutral",
		AlertTier:  "none",
	}
	if chain == nil || spot <= 0 {
		return out
	}

	scan := func(contracts []models.MOptionContract, side string) {
		for _, c := range withinRange(contracts, spot, unusualRangePct) {
			if c.Volume < minUnusualVolume || c.OpenInterest <= 0 {
				continue
			}
			ratio := c.Volume / c.OpenInterest
			if ratio < minVolumeOIRatio {
				continue
			}

			premium := c.Volume * c.Last * contractMultiplier
			out.Flags = append(out.Flags, models.MUnusualFlag{
				ContractID:    c.ContractID,
				Type:          side,
				Strike:        c.Strike,
				Volume:        c.Volume,
				OpenInterest:  c.OpenInterest,
				VolumeOIRatio: ratio,
				Premium:       premium,
			})
			if side == "call" {
				out.BullishPremium += premium
			} else {
				out.BearishPremium += premium
			}
			if ratio > out.MaxVolumeOIRate {
				out.MaxVolumeOIRate = ratio
			}
		}
	}
	scan(chain.Calls, "call")
	scan(chain.Puts, "put")

	switch {
	case out.BullishPremium > out.BearishPremium*smartMoneyEdge:
		out.SmartMoney = "bullish"
	case out.BearishPremium > out.BullishPremium*smartMoneyEdge:
		out.SmartMoney = "bearish"
	}

	switch {
	case out.MaxVolumeOIRate >= 5.0:
		out.AlertTier = "high"
	case out.MaxVolumeOIRate >= 3.0:
		out.AlertTier = "moderate"
	case out.MaxVolumeOIRate >= minVolumeOIRatio:
		out.AlertTier = "low"
	}
	return out
}
