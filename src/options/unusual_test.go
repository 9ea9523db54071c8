package options

import (
	"testing"

	"confluence-engine/src/models"
)

func TestDetectUnusualFlagsHighVolumeOverOI(t *testing.T) {
	chain := &models.MOptionsChain{
		Calls: []models.MOptionContract{
			{ContractID: "C100", Strike: 100, Volume: 1000, OpenInterest: 200, Last: 2.0},
			{ContractID: "C105", Strike: 105, Volume: 400, OpenInterest: 100, Last: 1.0},  // volume below floor
			{ContractID: "C102", Strike: 102, Volume: 800, OpenInterest: 600, Last: 1.5},  // ratio below floor
			{ContractID: "C130", Strike: 130, Volume: 5000, OpenInterest: 100, Last: 0.2}, // 30% away, excluded
		},
		Puts: []models.MOptionContract{
			{ContractID: "P95", Strike: 95, Volume: 600, OpenInterest: 250, Last: 0.5},
		},
	}

	got := DetectUnusual(chain, 100)
	if len(got.Flags) != 2 {
		t.Fatalf("expected 2 flags, got %d: %+v", len(got.Flags), got.Flags)
	}
	if got.MaxVolumeOIRate != 5.0 {
		t.Fatalf("max volume/OI should be 5.0, got %v", got.MaxVolumeOIRate)
	}
	if got.AlertTier != "high" {
		t.Fatalf("ratio 5 should tier high, got %s", got.AlertTier)
	}

	// Call premium 1000*2*100 = 200k vs put premium 600*0.5*100 = 30k.
	if got.SmartMoney != "bullish" {
		t.Fatalf("call-heavy premium should read bullish, got %s", got.SmartMoney)
	}
}

func TestDetectUnusualSmartMoneyEdge(t *testing.T) {
	// Premiums 120k vs 100k: inside the 1.5x edge, stays neutral.
	chain := &models.MOptionsChain{
		Calls: []models.MOptionContract{{ContractID: "C", Strike: 100, Volume: 600, OpenInterest: 200, Last: 2.0}},
		Puts:  []models.MOptionContract{{ContractID: "P", Strike: 100, Volume: 500, OpenInterest: 200, Last: 2.0}},
	}
	got := DetectUnusual(chain, 100)
	if got.SmartMoney != "neutral" {
		t.Fatalf("premiums inside the 1.5x edge should stay neutral, got %s", got.SmartMoney)
	}
}

func TestDetectUnusualTiers(t *testing.T) {
	mk := func(volume, oi float64) *models.MOptionsChain {
		return &models.MOptionsChain{
			Calls: []models.MOptionContract{{ContractID: "C", Strike: 100, Volume: volume, OpenInterest: oi, Last: 1.0}},
		}
	}
	if got := DetectUnusual(mk(1000, 200), 100); got.AlertTier != "high" {
		t.Fatalf("ratio 5 should be high, got %s", got.AlertTier)
	}
	if got := DetectUnusual(mk(900, 300), 100); got.AlertTier != "moderate" {
		t.Fatalf("ratio 3 should be moderate, got %s", got.AlertTier)
	}
	if got := DetectUnusual(mk(600, 280), 100); got.AlertTier != "low" {
		t.Fatalf("ratio ~2.1 should be low, got %s", got.AlertTier)
	}
	if got := DetectUnusual(mk(400, 100), 100); got.AlertTier != "none" {
		t.Fatalf("sub-floor volume should not tier, got %s", got.AlertTier)
	}
}
