package options

import (
	"testing"

	"confluence-engine/src/models"
)

func defaultWeights() models.MOptionsWeights {
	return models.MOptionsWeights{
		UnusualActivity: 0.25,
		OpenInterest:    0.20,
		TimeConfluence:  0.20,
		IVEnvironment:   0.15,
		MaxPain:         0.10,
		RiskReward:      0.10,
	}
}

func TestComputeCompositeAlignedBullish(t *testing.T) {
	snap := &models.MConfluenceSnapshot{
		DirectionScore:    80,
		ForecastDirection: "bullish",
	}
	unusual := models.MUnusualActivity{BullishPremium: 1_000_000, SmartMoney: "bullish"}
	oi := models.MOpenInterestAnalysis{Sentiment: "bullish", MaxPainValid: true, MaxPainDistPct: -2}
	iv := models.MIVRank{Rank: 40, Signal: "neutral"}
	levels := models.MTradeLevels{RiskReward: 2.0}

	got := ComputeComposite(snap, unusual, oi, iv, levels, defaultWeights())
	if got.Direction != "bullish" {
		t.Fatalf("aligned bullish inputs should read bullish, got %s (score %v)", got.Direction, got.Score)
	}
	if got.Score < 70 {
		t.Fatalf("aligned inputs should score high, got %v", got.Score)
	}
	if len(got.Conflicts) != 0 {
		t.Fatalf("no conflicts expected: %v", got.Conflicts)
	}
	if got.Components["iv_environment"] != 40 {
		t.Fatalf("IV component should carry the raw rank: %v", got.Components["iv_environment"])
	}
}

func TestComputeCompositeIVNeverSetsDirection(t *testing.T) {
	snap := &models.MConfluenceSnapshot{DirectionScore: 0}
	// Extreme IV with zero directional inputs must stay neutral.
	iv := models.MIVRank{Rank: 95, Signal: "sell_premium"}
	got := ComputeComposite(snap, models.MUnusualActivity{}, models.MOpenInterestAnalysis{Sentiment: "neutral"},
		iv, models.MTradeLevels{}, defaultWeights())
	if got.Direction != "neutral" || got.Score != 0 {
		t.Fatalf("IV alone must not create direction: %+v", got)
	}
	if got.Confidence <= 0 {
		t.Fatal("extreme IV should still contribute confidence")
	}
}

func TestComputeCompositeConflictDetection(t *testing.T) {
	snap := &models.MConfluenceSnapshot{DirectionScore: 60, ForecastDirection: "bullish"}
	unusual := models.MUnusualActivity{BullishPremium: 500_000, SmartMoney: "bullish"}
	oi := models.MOpenInterestAnalysis{Sentiment: "bearish"}
	iv := models.MIVRank{Rank: 85, Signal: "sell_premium"}
	levels := models.MTradeLevels{RiskReward: 1.2}

	got := ComputeComposite(snap, unusual, oi, iv, levels, defaultWeights())
	if len(got.Conflicts) != 3 {
		t.Fatalf("expected flow/IV/risk-reward conflicts, got %v", got.Conflicts)
	}
}

func TestComputeCompositeRiskRewardNeedsDirection(t *testing.T) {
	snap := &models.MConfluenceSnapshot{DirectionScore: 0, ForecastDirection: "neutral"}
	levels := models.MTradeLevels{RiskReward: 3.0}
	got := ComputeComposite(snap, models.MUnusualActivity{}, models.MOpenInterestAnalysis{},
		models.MIVRank{}, levels, defaultWeights())
	if got.Components["risk_reward"] != 0 {
		t.Fatalf("risk:reward must not create a direction of its own: %v", got.Components["risk_reward"])
	}
}

func TestComputeCompositeBearishFlow(t *testing.T) {
	snap := &models.MConfluenceSnapshot{DirectionScore: -70, ForecastDirection: "bearish"}
	unusual := models.MUnusualActivity{BearishPremium: 800_000, SmartMoney: "bearish"}
	oi := models.MOpenInterestAnalysis{Sentiment: "bearish"}
	got := ComputeComposite(snap, unusual, oi, models.MIVRank{Rank: 40}, models.MTradeLevels{}, defaultWeights())
	if got.Direction != "bearish" {
		t.Fatalf("bearish inputs should read bearish, got %s (score %v)", got.Direction, got.Score)
	}
}
