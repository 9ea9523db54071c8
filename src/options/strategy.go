package options

import (
	"fmt"

	"confluence-engine/src/models"
)

// -----------------------------------------------------------------------------
// Strategy recommendation: the IV environment decides premium side, the
// confluence direction and confidence decide the structure.
// -----------------------------------------------------------------------------

// RecommendStrategy picks a defined-risk options structure.
func RecommendStrategy(direction string, confidence float64, ivRank models.MIVRank, strikes models.MStrikeSelection, expiration models.MExpirationSelection) models.MStrategyRecommendation {
	atm := strikes.ATMStrike
	exp := expiration.Expiration

	switch {
	case ivRank.Rank > 70:
		// Rich premium: be the seller, defined risk only.
		switch direction {
		case "bullish":
			return models.MStrategyRecommendation{
				Name: "bull put spread",
				Legs: []string{
					fmt.Sprintf("sell put %.2f exp %s", atm, exp),
					fmt.Sprintf("buy put %.2f exp %s", lowerWing(strikes), exp),
				},
				Rationale:   fmt.Sprintf("IV rank %.0f favors selling premium; bullish confluence makes the put side the short side", ivRank.Rank),
				DefinedRisk: true,
			}
		case "bearish":
			return models.MStrategyRecommendation{
				Name: "bear call spread",
				Legs: []string{
					fmt.Sprintf("sell call %.2f exp %s", atm, exp),
					fmt.Sprintf("buy call %.2f exp %s", upperWing(strikes), exp),
				},
				Rationale:   fmt.Sprintf("IV rank %.0f favors selling premium; bearish confluence makes the call side the short side", ivRank.Rank),
				DefinedRisk: true,
			}
		default:
			return models.MStrategyRecommendation{
				Name: "iron condor",
				Legs: []string{
					fmt.Sprintf("sell call %.2f / buy call %.2f exp %s", atm, upperWing(strikes), exp),
					fmt.Sprintf("sell put %.2f / buy put %.2f exp %s", atm, lowerWing(strikes), exp),
				},
				Rationale:   fmt.Sprintf("IV rank %.0f with no directional edge: collect premium on both sides", ivRank.Rank),
				DefinedRisk: true,
			}
		}

	case ivRank.Rank < 30:
		// Cheap premium: be the buyer.
		if direction != "neutral" && confidence > 70 {
			side := "call"
			if direction == "bearish" {
				side = "put"
			}
			return models.MStrategyRecommendation{
				Name: fmt.Sprintf("long %s", side),
				Legs: []string{fmt.Sprintf("buy %s %.2f exp %s", side, atm, exp)},
				Rationale: fmt.Sprintf("IV rank %.0f makes premium cheap and confidence %.0f supports an outright position",
					ivRank.Rank, confidence),
				DefinedRisk: true,
			}
		}
		return debitSpread(direction, atm, strikes, exp,
			fmt.Sprintf("IV rank %.0f favors buying premium; spread caps cost while confidence is moderate", ivRank.Rank))

	default:
		return debitSpread(direction, atm, strikes, exp,
			fmt.Sprintf("mid-range IV rank %.0f: spread keeps the premium bill proportional to confidence %.0f", ivRank.Rank, confidence))
	}
}

// -----------------------------------------------------------------------------

func debitSpread(direction string, atm float64, strikes models.MStrikeSelection, exp, rationale string) models.MStrategyRecommendation {
	switch direction {
	case "bullish":
		return models.MStrategyRecommendation{
			Name: "bull call spread",
			Legs: []string{
				fmt.Sprintf("buy call %.2f exp %s", atm, exp),
				fmt.Sprintf("sell call %.2f exp %s", upperWing(strikes), exp),
			},
			Rationale:   rationale,
			DefinedRisk: true,
		}
	case "bearish":
		return models.MStrategyRecommendation{
			Name: "bear put spread",
			Legs: []string{
				fmt.Sprintf("buy put %.2f exp %s", atm, exp),
				fmt.Sprintf("sell put %.2f exp %s", lowerWing(strikes), exp),
			},
			Rationale:   rationale,
			DefinedRisk: true,
		}
	default:
		return models.MStrategyRecommendation{
			Name:        "no trade",
			Legs:        []string{},
			Rationale:   "no directional edge and IV offers no premium-selling edge",
			DefinedRisk: true,
		}
	}
}

// -----------------------------------------------------------------------------

// upperWing / lowerWing pick the selected strike beyond ATM on each side,
// defaulting to a 5% offset when none was selected.
func upperWing(strikes models.MStrikeSelection) float64 {
	for _, s := range strikes.Strikes {
		if s > strikes.ATMStrike {
			return s
		}
	}
	return strikes.ATMStrike * 1.05
}

func lowerWing(strikes models.MStrikeSelection) float64 {
	for i := len(strikes.Strikes) - 1; i >= 0; i-- {
		if strikes.Strikes[i] < strikes.ATMStrike {
			return strikes.Strikes[i]
		}
	}
	return strikes.ATMStrike * 0.95
}
